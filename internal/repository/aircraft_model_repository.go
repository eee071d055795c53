package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// AircraftModelRepo provides CRUD over aircraft_models. Reads join the
// manufacturer name for display.
type AircraftModelRepo struct {
	db *sql.DB
}

func NewAircraftModelRepo(db *sql.DB) *AircraftModelRepo { return &AircraftModelRepo{db: db} }

const selectModel = `SELECT am.id, am.manufacturer_id, am.name, am.is_deleted, am.created_at, am.updated_at,
	       COALESCE(m.name, '')
	FROM aircraft_models am
	LEFT JOIN manufacturers m ON m.id = am.manufacturer_id`

func scanModel(sc interface{ Scan(...any) error }) (model.AircraftModel, error) {
	var (
		m     model.AircraftModel
		manID sql.NullInt64
	)
	err := sc.Scan(&m.ID, &manID, &m.Name, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt, &m.ManufacturerName)
	m.ManufacturerID = idPtr(manID)
	return m, err
}

// Create inserts a model. An unknown manufacturer surfaces as the driver's
// foreign key error.
func (r *AircraftModelRepo) Create(ctx context.Context, m *model.AircraftModel) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO aircraft_models (manufacturer_id, name) VALUES (?, ?)`,
		nullID(m.ManufacturerID), m.Name)
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

func (r *AircraftModelRepo) GetByID(ctx context.Context, id uint64) (*model.AircraftModel, error) {
	m, err := scanModel(r.db.QueryRowContext(ctx, selectModel+` WHERE am.id = ? AND am.is_deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrModelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns non-deleted models, optionally restricted to a manufacturer.
func (r *AircraftModelRepo) List(ctx context.Context, manufacturerID uint64) ([]model.AircraftModel, error) {
	q := selectModel + ` WHERE am.is_deleted = 0`
	args := []any{}
	if manufacturerID != 0 {
		q += ` AND am.manufacturer_id = ?`
		args = append(args, manufacturerID)
	}
	q += ` ORDER BY am.name, am.id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AircraftModel{}
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *AircraftModelRepo) Update(ctx context.Context, m *model.AircraftModel) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE aircraft_models SET manufacturer_id = ?, name = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_deleted = 0`,
		nullID(m.ManufacturerID), m.Name, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrModelNotFound
	}
	return nil
}

func (r *AircraftModelRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE aircraft_models SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrModelNotFound
	}
	return nil
}
