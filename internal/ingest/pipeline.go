package ingest

import (
	"context"
	"errors"
	"time"

	"pet-telemetry/internal/domain/readings"
	"pet-telemetry/internal/platform/logger"

	"github.com/google/uuid"
)

// Sink recibe lecturas recién persistidas para retransmitirlas a los
// clientes en vivo. Best-effort: un fallo acá nunca revierte la escritura.
type Sink interface {
	Publish(r readings.Reading) error
}

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 200 * time.Millisecond
)

type Options struct {
	// Source es la zona horaria con la que se interpretan timestamps
	// sin offset. Nil equivale a UTC.
	Source *time.Location
	// MaxAttempts y Backoff acotan los reintentos ante fallos transitorios
	// del almacén, siempre en el borde de la transacción.
	MaxAttempts int
	Backoff     time.Duration
}

// Pipeline procesa mensajes del bus uno a la vez:
// validar → persistir (tx) → retransmitir. Cada fallo queda aislado en su
// mensaje; el loop del suscriptor nunca se cae por un payload malo.
type Pipeline struct {
	repo readings.Repository
	sink Sink
	log  logger.Logger

	source      *time.Location
	maxAttempts int
	backoff     time.Duration
	newID       func() string
}

func New(repo readings.Repository, sink Sink, log logger.Logger, opts Options) *Pipeline {
	source := opts.Source
	if source == nil {
		source = time.UTC
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}

	return &Pipeline{
		repo:        repo,
		sink:        sink,
		log:         log,
		source:      source,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		newID:       uuid.NewString,
	}
}

// Handle lleva un mensaje de punta a punta. Payloads malformados y lecturas
// de mascotas desconocidas se descartan con log, sin reintento ni reentrega.
func (p *Pipeline) Handle(ctx context.Context, payload []byte) {
	r, err := readings.ParsePayload(payload, p.source)
	if err != nil {
		p.log.Warn("reading rejected", map[string]any{
			"reason": "malformed_payload",
			"error":  err.Error(),
		})
		return
	}
	r.ID = p.newID()

	if err := p.insertWithRetry(ctx, r); err != nil {
		if errors.Is(err, readings.ErrPetNotFound) {
			p.log.Warn("reading rejected", map[string]any{
				"reason": "unknown_pet",
				"pet_id": r.PetID,
			})
			return
		}
		p.log.Error("reading dropped, store unavailable", map[string]any{
			"pet_id": r.PetID,
			"error":  err.Error(),
		})
		return
	}

	if err := p.sink.Publish(r); err != nil {
		// La persistencia manda; el broadcast se pierde y listo.
		p.log.Warn("broadcast failed", map[string]any{
			"pet_id": r.PetID,
			"error":  err.Error(),
		})
		return
	}

	p.log.Debug("reading ingested", map[string]any{
		"pet_id":     r.PetID,
		"reading_id": r.ID,
	})
}

// insertWithRetry reintenta solo fallos transitorios del almacén. La
// violación de FK es un rechazo definitivo y corta de inmediato.
func (p *Pipeline) insertWithRetry(ctx context.Context, r readings.Reading) error {
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err = p.repo.Insert(ctx, r)
		if err == nil || errors.Is(err, readings.ErrPetNotFound) {
			return err
		}
		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(p.backoff):
		}
	}
	return err
}
