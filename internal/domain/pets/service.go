package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name    string
	Species string
	Breed   string
	Age     *float64
	Weight  *float64
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Species) == "" {
		return Pet{}, ErrInvalidInput
	}
	if in.Age != nil && *in.Age < 0 {
		return Pet{}, ErrInvalidInput
	}
	if in.Weight != nil && *in.Weight <= 0 {
		return Pet{}, ErrInvalidInput
	}

	now := s.now().UTC()
	p := Pet{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(in.Name),
		Species: strings.TrimSpace(in.Species),
		Breed:   strings.TrimSpace(in.Breed),
		Age:     in.Age,
		Weight:  in.Weight,

		// Una mascota recién creada cuenta como activa hasta que el
		// tracker de liveness diga lo contrario.
		LastActivity: now,
		Active:       true,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Pet, error) {
	return s.repo.List(ctx, activeOnly)
}

// Delete borra la mascota y arrastra todas sus lecturas.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
