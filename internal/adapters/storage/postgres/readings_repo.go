package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pet-telemetry/internal/domain/readings"

	"github.com/jackc/pgx/v5/pgconn"
)

// fkViolation es el SQLSTATE de foreign_key_violation.
const fkViolation = "23503"

type ReadingsRepo struct {
	db *sql.DB
}

func NewReadingsRepo(db *sql.DB) *ReadingsRepo {
	return &ReadingsRepo{db: db}
}

// Insert persiste la lectura y el touch de last_activity en una sola
// transacción: commitean juntos o se revierte todo.
func (r *ReadingsRepo) Insert(ctx context.Context, rd readings.Reading) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO readings (
			id, pet_id, ts,
			heart_rate, temperature, activity_level, respiratory_rate,
			hydration_level, sleep_duration, hours_since_feeding,
			latitude, longitude
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		rd.ID,
		rd.PetID,
		rd.Timestamp,
		rd.HeartRate,
		rd.Temperature,
		rd.ActivityLevel,
		rd.RespiratoryRate,
		rd.HydrationLevel,
		rd.SleepDuration,
		rd.HoursSinceFeeding,
		toNullFloat(rd.Latitude),
		toNullFloat(rd.Longitude),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return readings.ErrPetNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE pets SET last_activity = $2, active = TRUE WHERE id = $1
	`, rd.PetID, rd.Timestamp); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ReadingsRepo) ListByPet(ctx context.Context, petID string, limit int) ([]readings.Reading, error) {
	if limit <= 0 {
		limit = readings.DefaultHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, pet_id, ts,
			heart_rate, temperature, activity_level, respiratory_rate,
			hydration_level, sleep_duration, hours_since_feeding,
			latitude, longitude
		FROM readings
		WHERE pet_id = $1
		ORDER BY ts DESC, id DESC
		LIMIT $2
	`, petID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]readings.Reading, 0)
	for rows.Next() {
		var rd readings.Reading
		var lat, lon sql.NullFloat64
		if err := rows.Scan(
			&rd.ID,
			&rd.PetID,
			&rd.Timestamp,
			&rd.HeartRate,
			&rd.Temperature,
			&rd.ActivityLevel,
			&rd.RespiratoryRate,
			&rd.HydrationLevel,
			&rd.SleepDuration,
			&rd.HoursSinceFeeding,
			&lat,
			&lon,
		); err != nil {
			return nil, err
		}

		rd.Timestamp = rd.Timestamp.UTC()
		if lat.Valid {
			v := lat.Float64
			rd.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			rd.Longitude = &v
		}

		out = append(out, rd)
	}

	return out, rows.Err()
}

func (r *ReadingsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM readings WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
