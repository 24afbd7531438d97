package pets

import "time"

// Species define las especies que reportan los wearables de la demo.
type Species string

const (
	SpeciesDog   Species = "Dog"
	SpeciesCat   Species = "Cat"
	SpeciesOther Species = "Other"
)

// Pet representa una mascota registrada con un wearable asociado.
type Pet struct {
	ID string

	Name    string
	Species string
	Breed   string
	Age     *float64
	Weight  *float64

	// LastActivity es el instante (UTC) de la última lectura ingerida.
	// Active se apaga vía MarkInactive cuando la mascota lleva demasiado
	// tiempo en silencio, y se reenciende con cada TouchActivity.
	LastActivity time.Time
	Active       bool

	CreatedAt time.Time
}
