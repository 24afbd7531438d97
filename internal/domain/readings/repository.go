package readings

import (
	"context"
	"errors"
	"time"
)

// ErrPetNotFound señala una lectura que referencia una mascota inexistente
// (violación de la foreign key al insertar).
var ErrPetNotFound = errors.New("reading references unknown pet")

type Repository interface {
	// Insert persiste la lectura y actualiza last_activity de la mascota
	// dentro de la misma transacción: las dos escrituras commitean juntas
	// o ninguna.
	Insert(ctx context.Context, r Reading) error
	// ListByPet devuelve hasta limit lecturas, las más recientes primero.
	ListByPet(ctx context.Context, petID string, limit int) ([]Reading, error)
	// DeleteOlderThan borra en bloque las lecturas anteriores a cutoff y
	// devuelve cuántas eliminó. Idempotente.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
