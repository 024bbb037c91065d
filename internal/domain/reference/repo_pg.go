package reference

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PGSource reads reference data from the city, specialty and doctor tables.
// Rows come back in feed order (the position column).
type PGSource struct{ pool *pgxpool.Pool }

func NewPGSource(pool *pgxpool.Pool) *PGSource {
	return &PGSource{pool: pool}
}

var _ Repository = (*PGSource)(nil)

func (r *PGSource) Cities(ctx context.Context) ([]City, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM city ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query cities: %w", err)
	}
	defer rows.Close()

	var out []City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGSource) Specialties(ctx context.Context) ([]Specialty, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, gender_restriction FROM specialty ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query specialties: %w", err)
	}
	defer rows.Close()

	var out []Specialty
	for rows.Next() {
		var (
			sp     Specialty
			gender *string
		)
		if err := rows.Scan(&sp.ID, &sp.Name, &gender); err != nil {
			return nil, fmt.Errorf("scan specialty: %w", err)
		}
		if gender != nil {
			sp.GenderRestriction = Gender(*gender)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (r *PGSource) Doctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, surname, city_id, specialty_id, is_pediatrician
		FROM doctor ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Surname, &d.CityID, &d.SpecialtyID, &d.IsPediatrician); err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Replace swaps the stored snapshot for the given one in a single
// transaction. Doctor city and specialty ids are not foreign keys; stale ids
// are legal in the feed.
func (r *PGSource) Replace(ctx context.Context, cities []City, specialties []Specialty, doctors []Doctor) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := replaceRows(ctx, tx, cities, specialties, doctors); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceRows(ctx context.Context, q queryable, cities []City, specialties []Specialty, doctors []Doctor) error {
	for _, table := range []string{"doctor", "specialty", "city"} {
		if _, err := q.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for i, c := range cities {
		if _, err := q.Exec(ctx,
			`INSERT INTO city (id, name, position) VALUES ($1, $2, $3)`,
			c.ID, c.Name, i); err != nil {
			return fmt.Errorf("insert city %d: %w", c.ID, err)
		}
	}
	for i, sp := range specialties {
		var gender *string
		if sp.GenderRestriction != GenderUnset {
			g := string(sp.GenderRestriction)
			gender = &g
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO specialty (id, name, gender_restriction, position) VALUES ($1, $2, $3, $4)`,
			sp.ID, sp.Name, gender, i); err != nil {
			return fmt.Errorf("insert specialty %d: %w", sp.ID, err)
		}
	}
	for i, d := range doctors {
		if _, err := q.Exec(ctx, `
			INSERT INTO doctor (id, name, surname, city_id, specialty_id, is_pediatrician, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			d.ID, d.Name, d.Surname, d.CityID, d.SpecialtyID, d.IsPediatrician, i); err != nil {
			return fmt.Errorf("insert doctor %d: %w", d.ID, err)
		}
	}
	return nil
}
