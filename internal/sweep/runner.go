package sweep

import (
	"context"
	"time"

	"pet-telemetry/internal/platform/logger"
)

// Job es una pasada de mantenimiento periódica sobre el almacén.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner ejecuta un Job a intervalo fijo hasta que el contexto se cancela.
// Una pasada que falla (o entra en pánico) se loggea y no impide el próximo
// tick; la cancelación espera a que termine la pasada en curso.
type Runner struct {
	job      Job
	interval time.Duration
	log      logger.Logger
}

func NewRunner(job Job, interval time.Duration, log logger.Logger) *Runner {
	return &Runner{
		job:      job,
		interval: interval,
		log:      log.With(map[string]any{"job": job.Name()}),
	}
}

// Start lanza el loop y devuelve un canal que se cierra cuando el loop
// terminó de drenar tras la cancelación.
func (r *Runner) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		t := time.NewTicker(r.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.runOnce(ctx)
			}
		}
	}()

	return done
}

func (r *Runner) runOnce(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("sweep panicked", map[string]any{"panic": rec})
		}
	}()

	if err := r.job.Run(ctx); err != nil {
		// Se reintenta recién en el próximo tick programado.
		r.log.Warn("sweep failed", map[string]any{"error": err.Error()})
	}
}
