package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pet-telemetry/internal/adapters/broadcast/ws"
	mqttbus "pet-telemetry/internal/adapters/bus/mqtt"
	"pet-telemetry/internal/adapters/storage/memory"
	"pet-telemetry/internal/adapters/storage/postgres"
	"pet-telemetry/internal/config"
	"pet-telemetry/internal/domain/pets"
	"pet-telemetry/internal/domain/readings"
	"pet-telemetry/internal/ingest"
	"pet-telemetry/internal/platform/logger"
	"pet-telemetry/internal/router"
	"pet-telemetry/internal/sweep"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "pet-telemetry",
	})

	sourceLoc, err := cfg.SourceLocation()
	if err != nil {
		log.Fatalf("source_timezone: %v", err)
	}
	displayLoc, err := cfg.DisplayLocation()
	if err != nil {
		log.Fatalf("display_timezone: %v", err)
	}

	// Con DSN usa Postgres; sin DSN, store in-memory para dev.
	var (
		petRepo     pets.Repository
		readingRepo readings.Repository
	)
	if cfg.DBDSN != "" {
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer func() { _ = db.Close() }()

		if err := postgres.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("postgres schema: %v", err)
		}

		petRepo = postgres.NewPetsRepo(db)
		readingRepo = postgres.NewReadingsRepo(db)
	} else {
		store := memory.NewStore()
		petRepo = store
		readingRepo = store
		logg.Warn("no db_dsn configured, using in-memory store", nil)
	}

	petsSvc := pets.NewService(petRepo)
	readingsSvc := readings.NewService(readingRepo, petRepo, cfg.SmoothingWindow)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(logg)
	go hub.Run(ctx)

	pipe := ingest.New(readingRepo, hub, logg, ingest.Options{Source: sourceLoc})

	sub := mqttbus.NewSubscriber(mqttbus.Config{
		BrokerURL: cfg.MQTTBrokerURL,
		ClientID:  cfg.MQTTClientID,
		Topic:     cfg.MQTTTopic,
		QoS:       1,
	}, pipe.Handle, logg)
	if err := sub.Start(ctx); err != nil {
		log.Fatalf("mqtt: %v", err)
	}

	livenessDone := sweep.NewRunner(
		sweep.NewLiveness(petRepo, cfg.LivenessThreshold, logg),
		cfg.LivenessInterval, logg,
	).Start(ctx)
	retentionDone := sweep.NewRunner(
		sweep.NewRetention(readingRepo, cfg.RetentionHorizon, logg),
		cfg.RetentionInterval, logg,
	).Start(ctx)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: router.NewRouter(router.Options{
			Pets:     petsSvc,
			Readings: readingsSvc,
			Display:  displayLoc,
			Live:     hub,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("starting server", map[string]any{"addr": cfg.HTTPAddr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error("server error", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	// Drenaje ordenado: primero el bus (no entran mensajes nuevos), después
	// los sweepers terminan su pasada en curso, al final el HTTP server.
	sub.Close()
	<-livenessDone
	<-retentionDone

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)

	logg.Info("shutdown complete", nil)
}
