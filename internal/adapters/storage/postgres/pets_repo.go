package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"pet-telemetry/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, name, species, breed,
			age, weight,
			last_activity, active, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		p.ID,
		p.Name,
		p.Species,
		p.Breed,
		toNullFloat(p.Age),
		toNullFloat(p.Weight),
		p.LastActivity,
		p.Active,
		p.CreatedAt,
	)
	return err
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, species, breed, age, weight, last_activity, active, created_at
		FROM pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) List(ctx context.Context, activeOnly bool) ([]pets.Pet, error) {
	q := `
		SELECT id, name, species, breed, age, weight, last_activity, active, created_at
		FROM pets
	`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	// La cascada de lecturas la resuelve la FK (ON DELETE CASCADE).
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return pets.ErrNotFound
	}
	return nil
}

func (r *PetsRepo) TouchActivity(ctx context.Context, id string, at time.Time) error {
	// Sin chequeo de filas afectadas: tocar una mascota ausente es no-op.
	_, err := r.db.ExecContext(ctx, `
		UPDATE pets SET last_activity = $2, active = TRUE WHERE id = $1
	`, id, at)
	return err
}

func (r *PetsRepo) MarkInactive(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE pets SET active = FALSE WHERE id = ANY($1)
	`, ids)
	return err
}

func (r *PetsRepo) ListSilentSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM pets WHERE active AND last_activity < $1 ORDER BY id
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}

	return out, rows.Err()
}

func scanPet(scan func(dest ...any) error) (pets.Pet, error) {
	var p pets.Pet
	var age, weight sql.NullFloat64
	if err := scan(
		&p.ID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&age,
		&weight,
		&p.LastActivity,
		&p.Active,
		&p.CreatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	if age.Valid {
		v := age.Float64
		p.Age = &v
	}
	if weight.Valid {
		v := weight.Float64
		p.Weight = &v
	}
	return p, nil
}

func toNullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
