package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// FlightRepo manages persistence for flights.
type FlightRepo struct {
	db *sql.DB
}

func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions that
// span several repositories.
func (r *FlightRepo) DB() *sql.DB { return r.db }

const flightColumns = `f.id, f.name, f.board_id, f.departure_time, f.arrival_time, f.delay_time, f.gate, f.terminal,
	f.departure_airport_id, f.arrival_airport_id, f.business_price_cents, f.economy_price_cents,
	f.seats_version, f.is_deleted, f.created_at, f.updated_at`

type flightScan struct {
	name, gate, terminal   sql.NullString
	delay                  sql.NullTime
	depAirport, arrAirport sql.NullInt64
	version                sql.NullInt64
}

func (fs *flightScan) dest(f *model.Flight) []any {
	return []any{
		&f.ID, &fs.name, &f.BoardID, &f.DepartureTime, &f.ArrivalTime, &fs.delay, &fs.gate, &fs.terminal,
		&fs.depAirport, &fs.arrAirport, &f.BusinessPriceCents, &f.EconomyPriceCents,
		&fs.version, &f.IsDeleted, &f.CreatedAt, &f.UpdatedAt,
	}
}

func (fs *flightScan) apply(f *model.Flight) {
	f.Name = stringPtr(fs.name)
	f.Gate = stringPtr(fs.gate)
	f.Terminal = stringPtr(fs.terminal)
	f.DelayTime = timePtr(fs.delay)
	f.DepartureAirportID = idPtr(fs.depAirport)
	f.ArrivalAirportID = idPtr(fs.arrAirport)
	f.SeatsVersion = intPtr(fs.version)
}

func scanFlight(sc interface{ Scan(...any) error }) (model.Flight, error) {
	var (
		f  model.Flight
		fs flightScan
	)
	if err := sc.Scan(fs.dest(&f)...); err != nil {
		return f, err
	}
	fs.apply(&f)
	return f, nil
}

// CreateTx inserts a flight inside tx. The caller commits or rolls back.
func (r *FlightRepo) CreateTx(ctx context.Context, tx *sql.Tx, f *model.Flight) error {
	const q = `INSERT INTO flights (name, board_id, departure_time, arrival_time, delay_time, gate, terminal,
	             departure_airport_id, arrival_airport_id, business_price_cents, economy_price_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		nullString(f.Name), f.BoardID, f.DepartureTime.UTC(), f.ArrivalTime.UTC(), nullTime(f.DelayTime),
		nullString(f.Gate), nullString(f.Terminal), nullID(f.DepartureAirportID), nullID(f.ArrivalAirportID),
		f.BusinessPriceCents, f.EconomyPriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// SetSeatsVersionTx stamps the layout generation the flight's seats were
// copied from.
func (r *FlightRepo) SetSeatsVersionTx(ctx context.Context, tx *sql.Tx, flightID uint64, version int) error {
	_, err := tx.ExecContext(ctx, `UPDATE flights SET seats_version = ? WHERE id = ?`, version, flightID)
	return err
}

func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (*model.Flight, error) {
	f, err := scanFlight(r.db.QueryRowContext(ctx,
		`SELECT `+flightColumns+` FROM flights f WHERE f.id = ? AND f.is_deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListByBoard returns the board's non-deleted flights by departure time.
// A zero boardID lists every flight.
func (r *FlightRepo) ListByBoard(ctx context.Context, boardID uint64) ([]model.Flight, error) {
	q := `SELECT ` + flightColumns + ` FROM flights f WHERE f.is_deleted = 0`
	args := []any{}
	if boardID != 0 {
		q += ` AND f.board_id = ?`
		args = append(args, boardID)
	}
	q += ` ORDER BY f.departure_time`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Flight{}
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Update rewrites the schedule, boarding info and fares. The board and
// the materialized seats are left untouched.
func (r *FlightRepo) Update(ctx context.Context, f *model.Flight) error {
	const q = `UPDATE flights SET name = ?, departure_time = ?, arrival_time = ?, delay_time = ?, gate = ?, terminal = ?,
	             departure_airport_id = ?, arrival_airport_id = ?, business_price_cents = ?, economy_price_cents = ?,
	             updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, q,
		nullString(f.Name), f.DepartureTime.UTC(), f.ArrivalTime.UTC(), nullTime(f.DelayTime),
		nullString(f.Gate), nullString(f.Terminal), nullID(f.DepartureAirportID), nullID(f.ArrivalAirportID),
		f.BusinessPriceCents, f.EconomyPriceCents, f.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFlightNotFound
	}
	return nil
}

// SoftDeleteTx flags a flight and its seats as deleted. The flight row is
// locked first so a concurrent booking either commits before the live ticket
// count or sees the flight as deleted. Flights with live tickets are refused
// with ErrConflict.
func (r *FlightRepo) SoftDeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	var locked uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM flights WHERE id = ? AND is_deleted = 0 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrFlightNotFound
	}
	if err != nil {
		return err
	}

	var live int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets t JOIN flight_seats fs ON fs.id = t.flight_seat_id
		 WHERE fs.flight_id = ? AND t.is_canceled = 0 AND t.is_deleted = 0`, id).Scan(&live); err != nil {
		return err
	}
	if live > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, `UPDATE flights SET is_deleted = 1 WHERE id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE flight_seats SET is_deleted = 1 WHERE flight_id = ?`, id)
	return err
}
