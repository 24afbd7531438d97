package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre un pool a Postgres usando pgx detrás de database/sql.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables para la demo (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema crea las tablas si no existen. La FK de readings a pets lleva
// ON DELETE CASCADE: borrar la mascota arrastra todas sus lecturas.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pets (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			species       TEXT NOT NULL,
			breed         TEXT NOT NULL DEFAULT '',
			age           DOUBLE PRECISION,
			weight        DOUBLE PRECISION,
			last_activity TIMESTAMPTZ NOT NULL,
			active        BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS readings (
			id                  TEXT PRIMARY KEY,
			pet_id              TEXT NOT NULL REFERENCES pets(id) ON DELETE CASCADE,
			ts                  TIMESTAMPTZ NOT NULL,
			heart_rate          DOUBLE PRECISION NOT NULL,
			temperature         DOUBLE PRECISION NOT NULL,
			activity_level      DOUBLE PRECISION NOT NULL,
			respiratory_rate    DOUBLE PRECISION NOT NULL,
			hydration_level     DOUBLE PRECISION NOT NULL,
			sleep_duration      DOUBLE PRECISION NOT NULL,
			hours_since_feeding DOUBLE PRECISION NOT NULL,
			latitude            DOUBLE PRECISION,
			longitude           DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_pet_ts ON readings (pet_id, ts DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_ts ON readings (ts)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
