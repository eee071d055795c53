package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// AirportRepo provides CRUD over airports joined with their place.
type AirportRepo struct {
	db *sql.DB
}

func NewAirportRepo(db *sql.DB) *AirportRepo { return &AirportRepo{db: db} }

const selectAirport = `SELECT a.id, a.place_id, a.name, a.full_name, a.is_deleted, p.name
	FROM airports a
	JOIN places p ON p.id = a.place_id`

func scanAirport(sc interface{ Scan(...any) error }) (model.Airport, error) {
	var a model.Airport
	err := sc.Scan(&a.ID, &a.PlaceID, &a.Name, &a.FullName, &a.IsDeleted, &a.PlaceName)
	return a, err
}

func (r *AirportRepo) Create(ctx context.Context, a *model.Airport) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO airports (place_id, name, full_name) VALUES (?, ?, ?)`, a.PlaceID, a.Name, a.FullName)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func (r *AirportRepo) GetByID(ctx context.Context, id uint64) (*model.Airport, error) {
	a, err := scanAirport(r.db.QueryRowContext(ctx, selectAirport+` WHERE a.id = ? AND a.is_deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAirportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns non-deleted airports, optionally restricted to one place.
func (r *AirportRepo) List(ctx context.Context, placeID uint64) ([]model.Airport, error) {
	q := selectAirport + ` WHERE a.is_deleted = 0`
	args := []any{}
	if placeID != 0 {
		q += ` AND a.place_id = ?`
		args = append(args, placeID)
	}
	q += ` ORDER BY p.name, a.name`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Airport{}
	for rows.Next() {
		a, err := scanAirport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AirportRepo) Update(ctx context.Context, a *model.Airport) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE airports SET place_id = ?, name = ?, full_name = ? WHERE id = ? AND is_deleted = 0`,
		a.PlaceID, a.Name, a.FullName, a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAirportNotFound
	}
	return nil
}

func (r *AirportRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE airports SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAirportNotFound
	}
	return nil
}
