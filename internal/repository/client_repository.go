package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// ClientRepo stores the passenger profile attached to client users.
type ClientRepo struct {
	db *sql.DB
}

func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

// CreateTx inserts the profile for a freshly registered user.
func (r *ClientRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.Client) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO clients (user_id, phone) VALUES (?, ?)`, c.UserID, c.Phone)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByUserID resolves the caller's client profile.
func (r *ClientRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Client, error) {
	var c model.Client
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, phone, is_deleted FROM clients WHERE user_id = ? AND is_deleted = 0`, userID).
		Scan(&c.ID, &c.UserID, &c.Phone, &c.IsDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
