package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// ManufacturerRepo provides CRUD over the manufacturers table.
type ManufacturerRepo struct {
	db *sql.DB
}

func NewManufacturerRepo(db *sql.DB) *ManufacturerRepo { return &ManufacturerRepo{db: db} }

// Create inserts a manufacturer and populates its ID.
func (r *ManufacturerRepo) Create(ctx context.Context, m *model.Manufacturer) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO manufacturers (name) VALUES (?)`, m.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID returns a non-deleted manufacturer.
func (r *ManufacturerRepo) GetByID(ctx context.Context, id uint64) (*model.Manufacturer, error) {
	const q = `SELECT id, name, is_deleted, created_at, updated_at
	           FROM manufacturers WHERE id = ? AND is_deleted = 0`
	var m model.Manufacturer
	err := r.db.QueryRowContext(ctx, q, id).Scan(&m.ID, &m.Name, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrManufacturerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns every non-deleted manufacturer ordered by name.
func (r *ManufacturerRepo) List(ctx context.Context) ([]model.Manufacturer, error) {
	const q = `SELECT id, name, is_deleted, created_at, updated_at
	           FROM manufacturers WHERE is_deleted = 0 ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Manufacturer{}
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update renames a manufacturer.
func (r *ManufacturerRepo) Update(ctx context.Context, m *model.Manufacturer) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE manufacturers SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND is_deleted = 0`,
		m.Name, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrManufacturerNotFound
	}
	return nil
}

// SoftDelete flags a manufacturer as deleted.
func (r *ManufacturerRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE manufacturers SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrManufacturerNotFound
	}
	return nil
}
