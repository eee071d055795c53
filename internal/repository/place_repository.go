package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// PlaceRepo provides CRUD over places.
type PlaceRepo struct {
	db *sql.DB
}

func NewPlaceRepo(db *sql.DB) *PlaceRepo { return &PlaceRepo{db: db} }

func (r *PlaceRepo) Create(ctx context.Context, p *model.Place) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO places (name, latitude, longitude) VALUES (?, ?, ?)`, p.Name, p.Latitude, p.Longitude)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

func (r *PlaceRepo) GetByID(ctx context.Context, id uint64) (*model.Place, error) {
	var p model.Place
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, latitude, longitude, is_deleted FROM places WHERE id = ? AND is_deleted = 0`, id).
		Scan(&p.ID, &p.Name, &p.Latitude, &p.Longitude, &p.IsDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlaceRepo) List(ctx context.Context) ([]model.Place, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, latitude, longitude, is_deleted FROM places WHERE is_deleted = 0 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Place{}
	for rows.Next() {
		var p model.Place
		if err := rows.Scan(&p.ID, &p.Name, &p.Latitude, &p.Longitude, &p.IsDeleted); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PlaceRepo) Update(ctx context.Context, p *model.Place) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE places SET name = ?, latitude = ?, longitude = ? WHERE id = ? AND is_deleted = 0`,
		p.Name, p.Latitude, p.Longitude, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlaceNotFound
	}
	return nil
}

func (r *PlaceRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE places SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlaceNotFound
	}
	return nil
}
