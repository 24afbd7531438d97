package sweep

import (
	"context"
	"time"

	"pet-telemetry/internal/domain/pets"
	"pet-telemetry/internal/platform/logger"
)

const DefaultLivenessThreshold = 24 * time.Hour

// LivenessJob marca como inactivas las mascotas que llevan más de threshold
// sin lecturas. Nunca borra nada; la reactivación ocurre sola cuando la
// ingesta vuelve a tocar last_activity.
type LivenessJob struct {
	repo      pets.Repository
	threshold time.Duration
	log       logger.Logger
	now       func() time.Time
}

func NewLiveness(repo pets.Repository, threshold time.Duration, log logger.Logger) *LivenessJob {
	if threshold <= 0 {
		threshold = DefaultLivenessThreshold
	}
	return &LivenessJob{
		repo:      repo,
		threshold: threshold,
		log:       log,
		now:       time.Now,
	}
}

func (j *LivenessJob) Name() string { return "liveness" }

func (j *LivenessJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.threshold)

	ids, err := j.repo.ListSilentSince(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	if err := j.repo.MarkInactive(ctx, ids); err != nil {
		return err
	}

	j.log.Info("pets marked inactive", map[string]any{"count": len(ids)})
	return nil
}
