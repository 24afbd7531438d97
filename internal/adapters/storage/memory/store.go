package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-telemetry/internal/domain/pets"
	"pet-telemetry/internal/domain/readings"
)

// Store es el gateway de persistencia in-memory para dev y tests.
// Implementa pets.Repository y readings.Repository sobre el mismo mutex,
// así el insert de lectura + touch de actividad queda atómico igual que
// la transacción del adapter de Postgres.
type Store struct {
	mu         sync.RWMutex
	pets       map[string]pets.Pet
	readings   map[string]readings.Reading
	petSeq     map[string]int // orden de alta, para listados estables
	nextPetSeq int
}

func NewStore() *Store {
	return &Store{
		pets:     make(map[string]pets.Pet),
		readings: make(map[string]readings.Reading),
		petSeq:   make(map[string]int),
	}
}

func (s *Store) Create(ctx context.Context, p pets.Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := s.pets[p.ID]; exists {
		return errors.New("pet already exists")
	}

	s.pets[p.ID] = p
	s.petSeq[p.ID] = s.nextPetSeq
	s.nextPetSeq++
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (s *Store) List(ctx context.Context, activeOnly bool) ([]pets.Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]pets.Pet, 0, len(s.pets))
	for _, p := range s.pets {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}

	// Orden de alta, estable dentro de la llamada.
	sort.Slice(out, func(i, j int) bool {
		return s.petSeq[out[i].ID] < s.petSeq[out[j].ID]
	})

	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pets[id]; !ok {
		return pets.ErrNotFound
	}
	delete(s.pets, id)
	delete(s.petSeq, id)

	// Cascada: ninguna lectura sobrevive a su mascota.
	for rid, r := range s.readings {
		if r.PetID == id {
			delete(s.readings, rid)
		}
	}
	return nil
}

func (s *Store) TouchActivity(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touchLocked(id, at)
	return nil
}

func (s *Store) MarkInactive(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		p, ok := s.pets[id]
		if !ok {
			continue
		}
		p.Active = false
		s.pets[id] = p
	}
	return nil
}

func (s *Store) ListSilentSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0)
	for id, p := range s.pets {
		if p.Active && p.LastActivity.Before(cutoff) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Insert(ctx context.Context, r readings.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(r.ID) == "" {
		return errors.New("reading id required")
	}
	if _, ok := s.pets[r.PetID]; !ok {
		return readings.ErrPetNotFound
	}

	s.readings[r.ID] = r
	s.touchLocked(r.PetID, r.Timestamp)
	return nil
}

func (s *Store) ListByPet(ctx context.Context, petID string, limit int) ([]readings.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]readings.Reading, 0)
	for _, r := range s.readings {
		if r.PetID == petID {
			out = append(out, r)
		}
	}

	// Más recientes primero; desempate por id para orden estable.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, r := range s.readings {
		if r.Timestamp.Before(cutoff) {
			delete(s.readings, id)
			removed++
		}
	}
	return removed, nil
}

// touchLocked asume el lock tomado. No-op si la mascota no existe.
func (s *Store) touchLocked(id string, at time.Time) {
	p, ok := s.pets[id]
	if !ok {
		return
	}
	p.LastActivity = at.UTC()
	p.Active = true
	s.pets[id] = p
}
