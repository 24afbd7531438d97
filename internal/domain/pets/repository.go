package pets

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	// List devuelve todas las mascotas, o solo las activas.
	// El orden no está especificado pero es estable dentro de una llamada.
	List(ctx context.Context, activeOnly bool) ([]Pet, error)
	// Delete elimina la mascota y, en cascada, todas sus lecturas.
	Delete(ctx context.Context, id string) error

	// TouchActivity actualiza last_activity y reactiva la mascota.
	// No-op si la mascota no existe.
	TouchActivity(ctx context.Context, id string, at time.Time) error
	// MarkInactive desactiva en bloque las mascotas indicadas.
	MarkInactive(ctx context.Context, ids []string) error
	// ListSilentSince devuelve los ids de mascotas aún activas cuyo
	// last_activity es anterior a cutoff.
	ListSilentSince(ctx context.Context, cutoff time.Time) ([]string, error)
}
