package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// BoardRepo provides access to the boards table. LockTx is the
// serialization point for layout publication.
type BoardRepo struct {
	db *sql.DB
}

func NewBoardRepo(db *sql.DB) *BoardRepo { return &BoardRepo{db: db} }

const selectBoard = `SELECT id, model_id, board_number, year, seats_amount, is_deleted, created_at, updated_at FROM boards`

func scanBoard(sc interface{ Scan(...any) error }) (model.Board, error) {
	var (
		b       model.Board
		modelID sql.NullInt64
	)
	err := sc.Scan(&b.ID, &modelID, &b.BoardNumber, &b.Year, &b.SeatsAmount, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt)
	b.ModelID = idPtr(modelID)
	return b, err
}

// Create inserts a board. A taken board number yields ErrConflict.
func (r *BoardRepo) Create(ctx context.Context, b *model.Board) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO boards (model_id, board_number, year) VALUES (?, ?, ?)`,
		nullID(b.ModelID), b.BoardNumber, b.Year)
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
	b.ID = uint64(id)
	return nil
}

func (r *BoardRepo) GetByID(ctx context.Context, id uint64) (*model.Board, error) {
	b, err := scanBoard(r.db.QueryRowContext(ctx, selectBoard+` WHERE id = ? AND is_deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDTx reads a board inside tx without locking it.
func (r *BoardRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Board, error) {
	b, err := scanBoard(tx.QueryRowContext(ctx, selectBoard+` WHERE id = ? AND is_deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// LockTx takes a row lock on the board for the lifetime of tx. Concurrent
// publishers on the same board queue behind it.
func (r *BoardRepo) LockTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Board, error) {
	b, err := scanBoard(tx.QueryRowContext(ctx, selectBoard+` WHERE id = ? AND is_deleted = 0 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns non-deleted boards, optionally filtered by model.
func (r *BoardRepo) List(ctx context.Context, modelID uint64) ([]model.Board, error) {
	q := selectBoard + ` WHERE is_deleted = 0`
	args := []any{}
	if modelID != 0 {
		q += ` AND model_id = ?`
		args = append(args, modelID)
	}
	q += ` ORDER BY board_number`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update changes the descriptive fields. Seats amount is owned by layout
// publication and is not touched here.
func (r *BoardRepo) Update(ctx context.Context, b *model.Board) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE boards SET model_id = ?, board_number = ?, year = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_deleted = 0`,
		nullID(b.ModelID), b.BoardNumber, b.Year, b.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBoardNotFound
	}
	return nil
}

// SetSeatsAmountTx records the capacity of the freshly published layout.
func (r *BoardRepo) SetSeatsAmountTx(ctx context.Context, tx *sql.Tx, id uint64, amount int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE boards SET seats_amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, amount, id)
	return err
}

// SoftDelete flags the board as deleted. Boards with upcoming flights are
// refused with ErrConflict.
func (r *BoardRepo) SoftDelete(ctx context.Context, id uint64) error {
	var upcoming int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM flights WHERE board_id = ? AND is_deleted = 0 AND departure_time >= UTC_TIMESTAMP()`,
		id).Scan(&upcoming); err != nil {
		return err
	}
	if upcoming > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `UPDATE boards SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBoardNotFound
	}
	return nil
}
