package sweep

import (
	"context"
	"time"

	"pet-telemetry/internal/domain/readings"
	"pet-telemetry/internal/platform/logger"
)

const DefaultRetentionHorizon = 30 * 24 * time.Hour

// RetentionJob purga lecturas más viejas que el horizonte de retención,
// para todas las mascotas, activas o no.
type RetentionJob struct {
	repo    readings.Repository
	horizon time.Duration
	log     logger.Logger
	now     func() time.Time
}

func NewRetention(repo readings.Repository, horizon time.Duration, log logger.Logger) *RetentionJob {
	if horizon <= 0 {
		horizon = DefaultRetentionHorizon
	}
	return &RetentionJob{
		repo:    repo,
		horizon: horizon,
		log:     log,
		now:     time.Now,
	}
}

func (j *RetentionJob) Name() string { return "retention" }

func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.horizon)

	removed, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		j.log.Info("old readings purged", map[string]any{"count": removed})
	}
	return nil
}
