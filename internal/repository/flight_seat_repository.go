package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// FlightSeatRepo encapsulates database operations for flight_seats. Status
// changes are conditional updates: they only apply when the seat is still
// in the expected state.
type FlightSeatRepo struct {
	db *sql.DB
}

func NewFlightSeatRepo(db *sql.DB) *FlightSeatRepo { return &FlightSeatRepo{db: db} }

const selectFlightSeat = `SELECT id, flight_id, seat, row_num, seat_type, status, price_cents, is_deleted FROM flight_seats`

func scanFlightSeat(sc interface{ Scan(...any) error }) (model.FlightSeat, error) {
	var (
		s          model.FlightSeat
		st, status string
	)
	err := sc.Scan(&s.ID, &s.FlightID, &s.Seat, &s.RowNumber, &st, &status, &s.PriceCents, &s.IsDeleted)
	s.SeatType = model.SeatType(st)
	s.Status = model.SeatStatus(status)
	return s, err
}

// CreateBulkTx inserts flight seats with multi-row INSERT statements inside
// tx. IDs of the passed seats are not populated.
func (r *FlightSeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.FlightSeat) error {
	for start := 0; start < len(seats); start += bulkChunk {
		chunk := seats[start:min(start+bulkChunk, len(seats))]

		var sb strings.Builder
		sb.WriteString(`INSERT INTO flight_seats (flight_id, seat, row_num, seat_type, status, price_cents) VALUES `)
		args := make([]any, 0, len(chunk)*6)
		for i, s := range chunk {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?, ?, ?, ?, ?, ?)")
			args = append(args, s.FlightID, s.Seat, s.RowNumber, string(s.SeatType), string(s.Status), s.PriceCents)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return err
		}
	}
	return nil
}

// ListByFlight returns the flight's seats ordered by row and seat.
func (r *FlightSeatRepo) ListByFlight(ctx context.Context, flightID uint64) ([]model.FlightSeat, error) {
	rows, err := r.db.QueryContext(ctx,
		selectFlightSeat+` WHERE flight_id = ? AND is_deleted = 0 ORDER BY row_num, seat`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.FlightSeat{}
	for rows.Next() {
		s, err := scanFlightSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *FlightSeatRepo) GetByID(ctx context.Context, id uint64) (*model.FlightSeat, error) {
	s, err := scanFlightSeat(r.db.QueryRowContext(ctx, selectFlightSeat+` WHERE id = ? AND is_deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFlightSeatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkSoldTx moves a seat from available to sold. The update joins the
// flight so seats of a deleted flight are never sold. When no row changes it
// tells a missing seat (ErrFlightSeatNotFound) from one that is taken or
// disabled (ErrSeatUnavailable).
func (r *FlightSeatRepo) MarkSoldTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE flight_seats fs JOIN flights f ON f.id = fs.flight_id
		 SET fs.status = 'sold'
		 WHERE fs.id = ? AND fs.status = 'available' AND fs.is_deleted = 0 AND f.is_deleted = 0`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	return r.missOrTaken(ctx, tx, id)
}

// ReleaseTx returns a sold seat to available. It reports whether the seat
// was actually freed; a seat in any other state is left alone.
func (r *FlightSeatRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE flight_seats SET status = 'available' WHERE id = ? AND status = 'sold'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetStatus moves a seat from one status to another, failing with
// ErrSeatUnavailable when the seat is no longer in from.
func (r *FlightSeatRepo) SetStatus(ctx context.Context, id uint64, from, to model.SeatStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE flight_seats SET status = ? WHERE id = ? AND status = ? AND is_deleted = 0`,
		string(to), id, string(from))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM flight_seats WHERE id = ? AND is_deleted = 0`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrFlightSeatNotFound
	}
	if err != nil {
		return err
	}
	return ErrSeatUnavailable
}

func (r *FlightSeatRepo) missOrTaken(ctx context.Context, tx *sql.Tx, id uint64) error {
	var exists int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM flight_seats fs JOIN flights f ON f.id = fs.flight_id
		 WHERE fs.id = ? AND fs.is_deleted = 0 AND f.is_deleted = 0`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrFlightSeatNotFound
	}
	if err != nil {
		return err
	}
	return ErrSeatUnavailable
}
