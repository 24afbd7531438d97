package readings

import (
	"context"
	"strings"

	"pet-telemetry/internal/domain/pets"
)

const (
	DefaultHistoryLimit    = 10
	DefaultSmoothingWindow = 3
)

// HistoryEntry es una lectura enriquecida para la respuesta de historial.
// Smoothed queda nil cuando se pidió la serie cruda, o con campos nil en las
// posiciones donde la ventana aún no está completa.
type HistoryEntry struct {
	Reading  Reading
	Smoothed *Smoothed
}

type Service struct {
	repo   Repository
	pets   pets.Repository
	window int
}

func NewService(repo Repository, petsRepo pets.Repository, window int) *Service {
	if window < 1 {
		window = DefaultSmoothingWindow
	}
	return &Service{
		repo:   repo,
		pets:   petsRepo,
		window: window,
	}
}

// History devuelve las limit lecturas más recientes de la mascota, en orden
// descendente por timestamp. Con smooth=true cada vital lleva además su
// promedio móvil, calculado sobre el orden cronológico de la serie traída.
func (s *Service) History(ctx context.Context, petID string, limit int, smooth bool) ([]HistoryEntry, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, pets.ErrNotFound
	}
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rs, err := s.repo.ListByPet(ctx, petID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, len(rs))
	for i, r := range rs {
		entries[i].Reading = r
	}
	if !smooth || len(rs) == 0 {
		return entries, nil
	}

	// El suavizado se calcula en orden cronológico; la respuesta se
	// mantiene descendente, así que invertimos ida y vuelta.
	chrono := make([]Reading, len(rs))
	for i, r := range rs {
		chrono[len(rs)-1-i] = r
	}
	sm := Smooth(chrono, s.window)
	for i := range entries {
		v := sm[len(sm)-1-i]
		entries[i].Smoothed = &v
	}
	return entries, nil
}
