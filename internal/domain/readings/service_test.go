package readings_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pet-telemetry/internal/adapters/storage/memory"
	"pet-telemetry/internal/domain/pets"
	"pet-telemetry/internal/domain/readings"
)

func newPet(id string) pets.Pet {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return pets.Pet{
		ID:           id,
		Name:         "Max",
		Species:      "Dog",
		LastActivity: now,
		Active:       true,
		CreatedAt:    now,
	}
}

func seedReadings(t *testing.T, store *memory.Store, petID string, heartRates ...float64) {
	t.Helper()
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, hr := range heartRates {
		r := readings.Reading{
			ID:        fmt.Sprintf("r-%d", i),
			PetID:     petID,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			HeartRate: hr,
		}
		if err := store.Insert(context.Background(), r); err != nil {
			t.Fatalf("insert reading %d: %v", i, err)
		}
	}
}

func TestHistory_UnknownPet(t *testing.T) {
	store := memory.NewStore()
	svc := readings.NewService(store, store, 3)

	_, err := svc.History(context.Background(), "nope", 10, true)
	if !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected pets.ErrNotFound, got %v", err)
	}
}

func TestHistory_DescendingWithSmoothing(t *testing.T) {
	store := memory.NewStore()
	if err := store.Create(context.Background(), newPet("p1")); err != nil {
		t.Fatal(err)
	}
	seedReadings(t, store, "p1", 1, 2, 3, 4, 5)

	svc := readings.NewService(store, store, 3)
	entries, err := svc.History(context.Background(), "p1", 10, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}

	// Respuesta descendente: la más nueva primero.
	if entries[0].Reading.HeartRate != 5 {
		t.Errorf("newest first: got hr=%v", entries[0].Reading.HeartRate)
	}

	// El suavizado corre en orden cronológico: la más nueva promedia
	// (3+4+5)/3, las dos más viejas quedan sin promedio.
	if got := entries[0].Smoothed.HeartRate; got == nil || *got != 4 {
		t.Errorf("newest smoothed: got %v want 4", got)
	}
	for _, i := range []int{3, 4} {
		if entries[i].Smoothed.HeartRate != nil {
			t.Errorf("entry %d: expected absent average, got %v", i, *entries[i].Smoothed.HeartRate)
		}
	}
}

func TestHistory_RawSkipsSmoothing(t *testing.T) {
	store := memory.NewStore()
	if err := store.Create(context.Background(), newPet("p1")); err != nil {
		t.Fatal(err)
	}
	seedReadings(t, store, "p1", 1, 2, 3)

	svc := readings.NewService(store, store, 3)
	entries, err := svc.History(context.Background(), "p1", 10, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, e := range entries {
		if e.Smoothed != nil {
			t.Errorf("entry %d: expected no smoothing, got %+v", i, e.Smoothed)
		}
	}
}

func TestHistory_RespectsLimit(t *testing.T) {
	store := memory.NewStore()
	if err := store.Create(context.Background(), newPet("p1")); err != nil {
		t.Fatal(err)
	}
	seedReadings(t, store, "p1", 1, 2, 3, 4, 5)

	svc := readings.NewService(store, store, 3)
	entries, err := svc.History(context.Background(), "p1", 2, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Reading.HeartRate != 5 || entries[1].Reading.HeartRate != 4 {
		t.Errorf("expected the two newest readings, got %v %v",
			entries[0].Reading.HeartRate, entries[1].Reading.HeartRate)
	}
}
