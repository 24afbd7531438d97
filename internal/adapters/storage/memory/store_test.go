package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-telemetry/internal/domain/pets"
	"pet-telemetry/internal/domain/readings"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func addPet(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.Create(context.Background(), pets.Pet{
		ID: id, Name: id, Species: "Dog",
		LastActivity: base, Active: true, CreatedAt: base,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func addReading(t *testing.T, s *Store, id, petID string, ts time.Time) {
	t.Helper()
	err := s.Insert(context.Background(), readings.Reading{ID: id, PetID: petID, Timestamp: ts})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDelete_CascadesReadings(t *testing.T) {
	s := NewStore()
	addPet(t, s, "p1")
	addPet(t, s, "p2")
	addReading(t, s, "r1", "p1", base.Add(time.Minute))
	addReading(t, s, "r2", "p1", base.Add(2*time.Minute))
	addReading(t, s, "r3", "p2", base.Add(time.Minute))

	if err := s.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetByID(context.Background(), "p1"); !errors.Is(err, pets.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	rs, err := s.ListByPet(context.Background(), "p1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 0 {
		t.Errorf("expected no readings for deleted pet, got %d", len(rs))
	}

	// Las lecturas de otras mascotas no se tocan.
	rs, _ = s.ListByPet(context.Background(), "p2", 10)
	if len(rs) != 1 {
		t.Errorf("expected p2 readings untouched, got %d", len(rs))
	}
}

func TestInsert_UnknownPet(t *testing.T) {
	s := NewStore()

	err := s.Insert(context.Background(), readings.Reading{ID: "r1", PetID: "missing", Timestamp: base})
	if !errors.Is(err, readings.ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound, got %v", err)
	}
}

func TestInsert_TouchesActivityAtomically(t *testing.T) {
	s := NewStore()
	addPet(t, s, "p1")

	ts := base.Add(3 * time.Hour)
	addReading(t, s, "r1", "p1", ts)

	p, err := s.GetByID(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if !p.LastActivity.Equal(ts) {
		t.Errorf("last activity: got %v want %v", p.LastActivity, ts)
	}
}

func TestTouchActivity_AbsentPetIsNoop(t *testing.T) {
	s := NewStore()

	if err := s.TouchActivity(context.Background(), "missing", base); err != nil {
		t.Fatalf("touch on absent pet should be a no-op, got %v", err)
	}
}

func TestList_ActiveOnly(t *testing.T) {
	s := NewStore()
	addPet(t, s, "p1")
	addPet(t, s, "p2")
	if err := s.MarkInactive(context.Background(), []string{"p2"}); err != nil {
		t.Fatal(err)
	}

	all, err := s.List(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 pets, got %d", len(all))
	}

	active, err := s.List(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != "p1" {
		t.Errorf("expected only p1 active, got %+v", active)
	}
}

func TestListByPet_DescendingOrder(t *testing.T) {
	s := NewStore()
	addPet(t, s, "p1")
	addReading(t, s, "r1", "p1", base.Add(1*time.Minute))
	addReading(t, s, "r3", "p1", base.Add(3*time.Minute))
	addReading(t, s, "r2", "p1", base.Add(2*time.Minute))

	rs, err := s.ListByPet(context.Background(), "p1", 10)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"r3", "r2", "r1"}
	for i, id := range want {
		if rs[i].ID != id {
			t.Errorf("position %d: got %s want %s", i, rs[i].ID, id)
		}
	}
}

func TestDeleteOlderThan_StrictCutoff(t *testing.T) {
	s := NewStore()
	addPet(t, s, "p1")
	cutoff := base.Add(time.Hour)
	addReading(t, s, "older", "p1", cutoff.Add(-time.Second))
	addReading(t, s, "at-cutoff", "p1", cutoff)
	addReading(t, s, "newer", "p1", cutoff.Add(time.Second))

	removed, err := s.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	rs, _ := s.ListByPet(context.Background(), "p1", 10)
	if len(rs) != 2 {
		t.Errorf("expected 2 survivors, got %d", len(rs))
	}
}

func TestListSilentSince(t *testing.T) {
	s := NewStore()
	addPet(t, s, "p1")
	addPet(t, s, "p2")

	if err := s.TouchActivity(context.Background(), "p2", base.Add(48*time.Hour)); err != nil {
		t.Fatal(err)
	}

	ids, err := s.ListSilentSince(context.Background(), base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "p1" {
		t.Errorf("expected [p1], got %v", ids)
	}
}
