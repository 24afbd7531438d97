package router

import (
	"net/http"
	"time"

	"pet-telemetry/internal/domain/pets"
	"pet-telemetry/internal/domain/readings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Pets     *pets.Service
	Readings *readings.Service

	// Display es la zona horaria de presentación de timestamps.
	// Nil equivale a UTC.
	Display *time.Location

	// Live es el endpoint de clientes en vivo (hub websocket).
	// Opcional: nil lo deja sin montar.
	Live http.Handler
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Rutas por módulo
	pets.RegisterRoutes(r, opts.Pets)
	readings.RegisterRoutes(r, opts.Readings, opts.Display)

	if opts.Live != nil {
		r.Handle("/ws", opts.Live)
	}

	return r
}
