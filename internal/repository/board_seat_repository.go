package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// BoardSeatRepo stores seat layout generations. Every published generation
// consists of one board_layouts header and its board_seats rows; rows of an
// older generation are never rewritten.
type BoardSeatRepo struct {
	db *sql.DB
}

func NewBoardSeatRepo(db *sql.DB) *BoardSeatRepo { return &BoardSeatRepo{db: db} }

// bulkChunk caps the rows per multi-row INSERT to stay well below the
// server's placeholder limit.
const bulkChunk = 1000

// MaxVersionTx returns the highest seats_version ever used for the board,
// counting deleted rows and headers, or 0 when none exists.
func (r *BoardSeatRepo) MaxVersionTx(ctx context.Context, tx *sql.Tx, boardID uint64) (int, error) {
	const q = `SELECT GREATEST(
	             COALESCE((SELECT MAX(seats_version) FROM board_seats WHERE board_id = ?), 0),
	             COALESCE((SELECT MAX(seats_version) FROM board_layouts WHERE board_id = ?), 0))`
	var v int
	if err := tx.QueryRowContext(ctx, q, boardID, boardID).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// DeleteVersionTx removes leftovers stamped with version, so a generation
// is always written onto a clean slate.
func (r *BoardSeatRepo) DeleteVersionTx(ctx context.Context, tx *sql.Tx, boardID uint64, version int) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM board_seats WHERE board_id = ? AND seats_version = ?`, boardID, version); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM board_layouts WHERE board_id = ? AND seats_version = ?`, boardID, version)
	return err
}

// CreateLayoutTx inserts the generation header. A duplicate
// (board_id, seats_version) yields ErrVersionConflict.
func (r *BoardSeatRepo) CreateLayoutTx(ctx context.Context, tx *sql.Tx, l *model.BoardLayout) error {
	const q = `INSERT INTO board_layouts (board_id, seats_version, rows_count, seats_per_row, business_rows, published_by, published_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		l.BoardID, l.SeatsVersion, l.Rows, l.SeatsPerRow, l.BusinessRows, nullID(l.PublishedBy), l.PublishedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrVersionConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return nil
}

// CreateBulkTx inserts seats with multi-row INSERT statements.
func (r *BoardSeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.BoardSeat) error {
	for start := 0; start < len(seats); start += bulkChunk {
		end := min(start+bulkChunk, len(seats))
		chunk := seats[start:end]

		var sb strings.Builder
		sb.WriteString(`INSERT INTO board_seats (board_id, seat_type, row_num, seat_number, seats_version) VALUES `)
		args := make([]any, 0, len(chunk)*5)
		for i, s := range chunk {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?, ?, ?, ?, ?)")
			args = append(args, s.BoardID, string(s.SeatType), s.RowNumber, s.SeatNumber, s.SeatsVersion)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			if isDuplicateKey(err) {
				return ErrVersionConflict
			}
			return err
		}
	}
	return nil
}

const currentLayoutQuery = `SELECT id, board_id, seat_type, row_num, seat_number, seats_version, is_deleted
	FROM board_seats
	WHERE board_id = ? AND is_deleted = 0
	  AND seats_version = (SELECT MAX(seats_version) FROM board_seats WHERE board_id = ? AND is_deleted = 0)
	ORDER BY row_num, seat_number`

func scanBoardSeats(rows *sql.Rows) (int, []model.BoardSeat, error) {
	defer rows.Close()
	var (
		version int
		out     []model.BoardSeat
	)
	for rows.Next() {
		var s model.BoardSeat
		var st string
		if err := rows.Scan(&s.ID, &s.BoardID, &st, &s.RowNumber, &s.SeatNumber, &s.SeatsVersion, &s.IsDeleted); err != nil {
			return 0, nil, err
		}
		s.SeatType = model.SeatType(st)
		version = s.SeatsVersion
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}
	return version, out, nil
}

// CurrentLayout returns the version and seats of the newest non-deleted
// generation. A board without layout yields version 0 and no seats.
func (r *BoardSeatRepo) CurrentLayout(ctx context.Context, boardID uint64) (int, []model.BoardSeat, error) {
	rows, err := r.db.QueryContext(ctx, currentLayoutQuery, boardID, boardID)
	if err != nil {
		return 0, nil, err
	}
	return scanBoardSeats(rows)
}

// CurrentLayoutTx is CurrentLayout read through tx.
func (r *BoardSeatRepo) CurrentLayoutTx(ctx context.Context, tx *sql.Tx, boardID uint64) (int, []model.BoardSeat, error) {
	rows, err := tx.QueryContext(ctx, currentLayoutQuery, boardID, boardID)
	if err != nil {
		return 0, nil, err
	}
	return scanBoardSeats(rows)
}

// ListLayouts returns the generation headers of a board, newest first.
func (r *BoardSeatRepo) ListLayouts(ctx context.Context, boardID uint64) ([]model.BoardLayout, error) {
	const q = `SELECT id, board_id, seats_version, rows_count, seats_per_row, business_rows, published_by, published_at
	           FROM board_layouts WHERE board_id = ? ORDER BY seats_version DESC`
	rows, err := r.db.QueryContext(ctx, q, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.BoardLayout{}
	for rows.Next() {
		var (
			l  model.BoardLayout
			by sql.NullInt64
		)
		if err := rows.Scan(&l.ID, &l.BoardID, &l.SeatsVersion, &l.Rows, &l.SeatsPerRow, &l.BusinessRows, &by, &l.PublishedAt); err != nil {
			return nil, err
		}
		l.PublishedBy = idPtr(by)
		out = append(out, l)
	}
	return out, rows.Err()
}
