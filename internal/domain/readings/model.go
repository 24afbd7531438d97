package readings

import "time"

// Reading es una instantánea de signos vitales enviada por un wearable.
// Inmutable una vez insertada: solo la borra el sweeper de retención o la
// cascada al eliminar la mascota.
type Reading struct {
	ID    string
	PetID string

	// Timestamp siempre en UTC; la zona de presentación se aplica recién
	// al renderizar la respuesta.
	Timestamp time.Time

	HeartRate         float64
	Temperature       float64
	ActivityLevel     float64
	RespiratoryRate   float64
	HydrationLevel    float64
	SleepDuration     float64
	HoursSinceFeeding float64

	Latitude  *float64
	Longitude *float64
}
