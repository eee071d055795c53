package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/queue"
	"github.com/iliyamo/osaka-airlines/internal/repository"
)

const testRef = "0b4c2a6e-0000-4000-8000-000000000001"

var (
	clientActor = Actor{UserID: 3, Role: model.RoleClient}
	staffActor  = Actor{UserID: 1, Role: model.RoleRevenue}
)

func expectClient(f *fixture, userID, clientID uint64) {
	f.mock.ExpectQuery(`FROM clients WHERE user_id = \?`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow(clientID, userID, "+81-6-1234", false))
}

func ticketRow(paid, canceled bool) *sqlmock.Rows {
	return sqlmock.NewRows(ticketCols).AddRow(100, testRef, 9, 5, false, canceled, paid, fixedNow, nil, nil)
}

func TestBook(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	expectClient(f, 3, 9)
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`SET fs.status = 'sold'`).WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`INSERT INTO tickets`).
		WithArgs(testRef, uint64(9), uint64(5), fixedNow).
		WillReturnResult(sqlmock.NewResult(100, 1))
	f.mock.ExpectCommit()

	tk, err := s.Book(context.Background(), clientActor, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), tk.ID)
	assert.Equal(t, testRef, tk.Reference)
	assert.False(t, tk.IsPaid)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Bookings.WithLabelValues("ok")))
	assert.Equal(t, []queue.EventType{queue.EventTicketBooked}, f.pub.types())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBook_SeatAlreadySold(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	expectClient(f, 3, 9)
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`SET fs.status = 'sold'`).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(`SELECT 1 FROM flight_seats fs JOIN flights f`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	f.mock.ExpectRollback()

	_, err := s.Book(context.Background(), clientActor, 5)
	assert.ErrorIs(t, err, repository.ErrSeatUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Bookings.WithLabelValues("unavailable")))
	assert.Empty(t, f.pub.types())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBook_UnknownSeat(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	expectClient(f, 3, 9)
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`SET fs.status = 'sold'`).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(`SELECT 1 FROM flight_seats`).WillReturnRows(sqlmock.NewRows([]string{"1"}))
	f.mock.ExpectRollback()

	_, err := s.Book(context.Background(), clientActor, 5)
	assert.ErrorIs(t, err, repository.ErrFlightSeatNotFound)
}

func TestBook_DeletedFlight(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	expectClient(f, 3, 9)
	f.mock.ExpectBegin()
	f.mock.ExpectExec(`JOIN flights f ON f.id = fs.flight_id\s+SET fs.status = 'sold'\s+WHERE .* AND f.is_deleted = 0`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(`SELECT 1 FROM flight_seats fs JOIN flights f .* AND f.is_deleted = 0`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	f.mock.ExpectRollback()

	_, err := s.Book(context.Background(), clientActor, 5)
	assert.ErrorIs(t, err, repository.ErrFlightSeatNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Bookings.WithLabelValues("not_found")))
	assert.Empty(t, f.pub.types())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBook_StaffWithoutClientProfile(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	f.mock.ExpectQuery(`FROM clients WHERE user_id = \?`).WillReturnRows(sqlmock.NewRows(clientCols))

	_, err := s.Book(context.Background(), staffActor, 5)
	assert.ErrorIs(t, err, repository.ErrClientNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	f.mock.ExpectQuery(`FROM tickets WHERE id = \?`).WithArgs(uint64(100)).WillReturnRows(ticketRow(false, false))
	expectClient(f, 3, 9)
	f.mock.ExpectExec(`UPDATE tickets SET is_paid = 1`).WithArgs(fixedNow, uint64(100)).WillReturnResult(sqlmock.NewResult(0, 1))

	tk, err := s.Pay(context.Background(), clientActor, 100)
	require.NoError(t, err)
	assert.True(t, tk.IsPaid)
	require.NotNil(t, tk.PaidAt)
	assert.Equal(t, fixedNow, *tk.PaidAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TicketsPaid))
	assert.Equal(t, []queue.EventType{queue.EventTicketPaid}, f.pub.types())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_Twice(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	f.mock.ExpectQuery(`FROM tickets WHERE id = \?`).WillReturnRows(ticketRow(true, false))
	expectClient(f, 3, 9)
	f.mock.ExpectExec(`UPDATE tickets SET is_paid = 1`).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(`FROM tickets WHERE id = \?`).WillReturnRows(ticketRow(true, false))

	_, err := s.Pay(context.Background(), clientActor, 100)
	assert.ErrorIs(t, err, ErrTicketAlreadyPaid)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.TicketsPaid))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPay_CanceledTicket(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	f.mock.ExpectQuery(`FROM tickets WHERE id = \?`).WillReturnRows(ticketRow(false, true))
	f.mock.ExpectExec(`UPDATE tickets SET is_paid = 1`).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectQuery(`FROM tickets WHERE id = \?`).WillReturnRows(ticketRow(false, true))

	_, err := s.Pay(context.Background(), staffActor, 100)
	assert.ErrorIs(t, err, ErrTicketCanceled)
}

func TestPay_ForeignTicketLooksMissing(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	f.mock.ExpectQuery(`FROM tickets WHERE id = \?`).WillReturnRows(ticketRow(false, false))
	expectClient(f, 3, 10)

	_, err := s.Pay(context.Background(), clientActor, 100)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancel_FreesSeat(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	expectClient(f, 3, 9)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM tickets WHERE id = \? AND is_deleted = 0 FOR UPDATE`).
		WithArgs(uint64(100)).
		WillReturnRows(ticketRow(true, false))
	f.mock.ExpectExec(`UPDATE tickets SET is_canceled = 1`).WithArgs(fixedNow, uint64(100)).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`UPDATE flight_seats SET status = 'available'`).WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	tk, err := s.Cancel(context.Background(), clientActor, 100)
	require.NoError(t, err)
	assert.True(t, tk.IsCanceled)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TicketsCanceled))
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, queue.EventTicketCanceled, f.pub.events[0].Type)
	assert.Contains(t, string(f.pub.events[0].Payload), `"seat_freed":true`)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancel_ForeignTicketLooksMissing(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	expectClient(f, 3, 77)
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(ticketRow(true, false))
	f.mock.ExpectRollback()

	_, err := s.Cancel(context.Background(), clientActor, 100)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.TicketsCanceled))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancel_ClientWithoutProfile(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	f.mock.ExpectQuery(`FROM clients WHERE user_id = \?`).WillReturnRows(sqlmock.NewRows(clientCols))

	_, err := s.Cancel(context.Background(), clientActor, 100)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancel_DisabledSeatStaysDisabled(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(ticketRow(false, false))
	f.mock.ExpectExec(`UPDATE tickets SET is_canceled = 1`).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(`UPDATE flight_seats SET status = 'available'`).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectCommit()

	tk, err := s.Cancel(context.Background(), staffActor, 100)
	require.NoError(t, err)
	assert.True(t, tk.IsCanceled)
	assert.NotContains(t, string(f.pub.events[0].Payload), `"seat_freed"`)
}

func TestCancel_Twice(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(ticketRow(false, true))
	f.mock.ExpectRollback()

	_, err := s.Cancel(context.Background(), staffActor, 100)
	assert.ErrorIs(t, err, ErrTicketAlreadyCanceled)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.TicketsCanceled))
	assert.Empty(t, f.pub.types())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCancel_UnknownTicket(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows(ticketCols))
	f.mock.ExpectRollback()

	_, err := s.Cancel(context.Background(), staffActor, 100)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
}

func TestClientTickets_SplitsByDeparture(t *testing.T) {
	f := newFixture(t)
	s := f.bookingService()

	cols := []string{"id", "reference", "client_id", "flight_seat_id", "is_deleted", "is_canceled", "is_paid",
		"created_at", "paid_at", "canceled_at", "fid", "fname", "departure_time", "arrival_time",
		"row_num", "seat", "seat_type", "price_cents", "login", "last_name", "first_name", "phone"}
	past := fixedNow.Add(-72 * time.Hour)
	future := fixedNow.Add(72 * time.Hour)

	expectClient(f, 3, 9)
	f.mock.ExpectQuery(`FROM tickets t`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "r1", 9, 5, false, false, true, past, past, nil, 40, "OS100", past, past.Add(time.Hour),
				1, 1, "Business", 50000, "kenji", "Sato", "Kenji", "+81").
			AddRow(2, "r2", 9, 6, false, false, false, fixedNow, nil, nil, 42, nil, future, future.Add(time.Hour),
				3, 2, "Economy", 20000, "kenji", "Sato", "Kenji", "+81"))

	out, err := s.ClientTickets(context.Background(), clientActor)
	require.NoError(t, err)
	require.Len(t, out.Past, 1)
	require.Len(t, out.Upcoming, 1)
	assert.Equal(t, "A1", out.Past[0].SeatLabel)
	assert.Equal(t, "C2", out.Upcoming[0].SeatLabel)
	assert.Nil(t, out.Upcoming[0].FlightName)
}
