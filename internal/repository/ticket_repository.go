package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// TicketRepo provides persistence for tickets. All timestamps are UTC.
type TicketRepo struct {
	db *sql.DB
}

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const selectTicket = `SELECT id, reference, client_id, flight_seat_id, is_deleted, is_canceled, is_paid,
	created_at, paid_at, canceled_at FROM tickets`

func scanTicket(sc interface{ Scan(...any) error }) (model.Ticket, error) {
	var (
		t              model.Ticket
		paid, canceled sql.NullTime
	)
	err := sc.Scan(&t.ID, &t.Reference, &t.ClientID, &t.FlightSeatID, &t.IsDeleted, &t.IsCanceled, &t.IsPaid,
		&t.CreatedAt, &paid, &canceled)
	t.PaidAt = timePtr(paid)
	t.CanceledAt = timePtr(canceled)
	return t, err
}

// CreateTx inserts a ticket inside tx and populates its ID. Reference and
// CreatedAt are supplied by the caller.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO tickets (reference, client_id, flight_seat_id, created_at) VALUES (?, ?, ?, ?)`,
		t.Reference, t.ClientID, t.FlightSeatID, t.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx, selectTicket+` WHERE id = ? AND is_deleted = 0`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetForUpdateTx reads a ticket and locks its row until tx ends.
func (r *TicketRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Ticket, error) {
	t, err := scanTicket(tx.QueryRowContext(ctx, selectTicket+` WHERE id = ? AND is_deleted = 0 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkPaid flags a live, unpaid ticket as paid. It reports whether a row
// changed; callers inspect the ticket to explain a refusal.
func (r *TicketRepo) MarkPaid(ctx context.Context, id uint64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET is_paid = 1, paid_at = ?
		 WHERE id = ? AND is_paid = 0 AND is_canceled = 0 AND is_deleted = 0`, at.UTC(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkCanceledTx flags a ticket as canceled inside tx.
func (r *TicketRepo) MarkCanceledTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE tickets SET is_canceled = 1, canceled_at = ? WHERE id = ? AND is_canceled = 0`, at.UTC(), id)
	return err
}

const selectTicketDetail = `SELECT t.id, t.reference, t.client_id, t.flight_seat_id, t.is_deleted, t.is_canceled, t.is_paid,
	t.created_at, t.paid_at, t.canceled_at,
	f.id, f.name, f.departure_time, f.arrival_time,
	fs.row_num, fs.seat, fs.seat_type, fs.price_cents,
	u.login, COALESCE(u.last_name, ''), COALESCE(u.first_name, ''), c.phone
	FROM tickets t
	JOIN flight_seats fs ON fs.id = t.flight_seat_id
	JOIN flights f       ON f.id = fs.flight_id
	JOIN clients c       ON c.id = t.client_id
	JOIN users u         ON u.id = c.user_id`

func scanTicketDetails(rows *sql.Rows) ([]model.TicketDetail, error) {
	defer rows.Close()
	out := []model.TicketDetail{}
	for rows.Next() {
		var (
			d                   model.TicketDetail
			paid, canceled      sql.NullTime
			flightName          sql.NullString
			seatType            string
			lastName, firstName string
		)
		if err := rows.Scan(
			&d.ID, &d.Reference, &d.ClientID, &d.FlightSeatID, &d.IsDeleted, &d.IsCanceled, &d.IsPaid,
			&d.CreatedAt, &paid, &canceled,
			&d.FlightID, &flightName, &d.DepartureTime, &d.ArrivalTime,
			&d.RowNumber, &d.Seat, &seatType, &d.PriceCents,
			&d.ClientLogin, &lastName, &firstName, &d.ClientPhone,
		); err != nil {
			return nil, err
		}
		d.PaidAt = timePtr(paid)
		d.CanceledAt = timePtr(canceled)
		d.FlightName = stringPtr(flightName)
		d.SeatType = model.SeatType(seatType)
		d.SeatLabel = model.SeatLabel(d.RowNumber, d.Seat)
		d.ClientName = model.User{LastName: lastName, FirstName: firstName}.FullName()
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDetailsByClient returns the client's live tickets ordered by
// departure time.
func (r *TicketRepo) ListDetailsByClient(ctx context.Context, clientID uint64) ([]model.TicketDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		selectTicketDetail+` WHERE t.client_id = ? AND t.is_deleted = 0 AND t.is_canceled = 0
		ORDER BY f.departure_time, fs.row_num, fs.seat`, clientID)
	if err != nil {
		return nil, err
	}
	return scanTicketDetails(rows)
}

// ListDetailsByFlight returns every non-deleted ticket of a flight,
// canceled ones included, ordered by seat.
func (r *TicketRepo) ListDetailsByFlight(ctx context.Context, flightID uint64) ([]model.TicketDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		selectTicketDetail+` WHERE f.id = ? AND t.is_deleted = 0 ORDER BY fs.row_num, fs.seat, t.id`, flightID)
	if err != nil {
		return nil, err
	}
	return scanTicketDetails(rows)
}
