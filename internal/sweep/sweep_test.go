package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-telemetry/internal/adapters/storage/memory"
	"pet-telemetry/internal/domain/pets"
	"pet-telemetry/internal/domain/readings"
	"pet-telemetry/internal/platform/logger"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func addPet(t *testing.T, store *memory.Store, id string, lastActivity time.Time, active bool) {
	t.Helper()
	err := store.Create(context.Background(), pets.Pet{
		ID:           id,
		Name:         id,
		Species:      "Dog",
		LastActivity: lastActivity,
		Active:       active,
		CreatedAt:    lastActivity,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestLiveness_MarksExactlySilentPets(t *testing.T) {
	store := memory.NewStore()
	addPet(t, store, "silent", testNow.Add(-25*time.Hour), true)
	addPet(t, store, "recent", testNow.Add(-1*time.Hour), true)
	addPet(t, store, "already-inactive", testNow.Add(-48*time.Hour), false)

	job := NewLiveness(store, 24*time.Hour, logger.Nop())
	job.now = func() time.Time { return testNow }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for id, wantActive := range map[string]bool{
		"silent":           false,
		"recent":           true,
		"already-inactive": false,
	} {
		p, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if p.Active != wantActive {
			t.Errorf("%s: active=%v want %v", id, p.Active, wantActive)
		}
	}
}

func TestLiveness_IngestReactivates(t *testing.T) {
	store := memory.NewStore()
	addPet(t, store, "p1", testNow.Add(-30*time.Hour), true)

	job := NewLiveness(store, 24*time.Hour, logger.Nop())
	job.now = func() time.Time { return testNow }
	if err := job.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	p, _ := store.GetByID(context.Background(), "p1")
	if p.Active {
		t.Fatal("pet should be inactive after the sweep")
	}

	// Una lectura nueva reactiva a la mascota por el camino de ingesta,
	// no por el tracker.
	err := store.Insert(context.Background(), readings.Reading{
		ID:        "r1",
		PetID:     "p1",
		Timestamp: testNow,
	})
	if err != nil {
		t.Fatal(err)
	}

	p, _ = store.GetByID(context.Background(), "p1")
	if !p.Active {
		t.Error("pet should be active again after a fresh reading")
	}
	if !p.LastActivity.Equal(testNow) {
		t.Errorf("last activity: got %v want %v", p.LastActivity, testNow)
	}
}

func TestRetention_DeletesExactlyOldReadings(t *testing.T) {
	store := memory.NewStore()
	addPet(t, store, "p1", testNow, true)

	horizon := 30 * 24 * time.Hour
	cutoff := testNow.Add(-horizon)

	for id, ts := range map[string]time.Time{
		"old":      cutoff.Add(-time.Hour),
		"boundary": cutoff, // exactamente en el corte: se conserva
		"fresh":    cutoff.Add(time.Hour),
	} {
		err := store.Insert(context.Background(), readings.Reading{
			ID: id, PetID: "p1", Timestamp: ts,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	job := NewRetention(store, horizon, logger.Nop())
	job.now = func() time.Time { return testNow }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rs, err := store.ListByPet(context.Background(), "p1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 2 {
		t.Fatalf("expected 2 surviving readings, got %d", len(rs))
	}
	for _, r := range rs {
		if r.ID == "old" {
			t.Error("old reading should have been purged")
		}
	}

	// Idempotente: la segunda pasada no borra nada.
	removed, err := store.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Errorf("second sweep removed %d readings, want 0", removed)
	}
}

type countingJob struct {
	runs chan struct{}
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs <- struct{}{}
	return j.err
}

type panickyJob struct {
	runs chan struct{}
}

func (j *panickyJob) Name() string { return "panicky" }

func (j *panickyJob) Run(ctx context.Context) error {
	j.runs <- struct{}{}
	panic("boom")
}

func TestRunner_ContinuesAfterFailedRun(t *testing.T) {
	job := &countingJob{runs: make(chan struct{}, 8), err: errors.New("boom")}

	ctx, cancel := context.WithCancel(context.Background())
	done := NewRunner(job, 10*time.Millisecond, logger.Nop()).Start(ctx)

	// Dos pasadas: el fallo de la primera no frena la segunda.
	for i := 0; i < 2; i++ {
		select {
		case <-job.runs:
		case <-time.After(2 * time.Second):
			t.Fatalf("run %d never happened", i+1)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not drain after cancel")
	}
}

func TestRunner_SurvivesPanic(t *testing.T) {
	job := &panickyJob{runs: make(chan struct{}, 8)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := NewRunner(job, 10*time.Millisecond, logger.Nop()).Start(ctx)

	for i := 0; i < 2; i++ {
		select {
		case <-job.runs:
		case <-time.After(2 * time.Second):
			t.Fatalf("run %d never happened", i+1)
		}
	}

	cancel()
	<-done
}
