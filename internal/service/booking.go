package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/osaka-airlines/internal/database"
	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/metrics"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/queue"
	"github.com/iliyamo/osaka-airlines/internal/repository"
)

// BookingService sells, pays and cancels tickets.
type BookingService struct {
	db          *sql.DB
	clients     *repository.ClientRepo
	flightSeats *repository.FlightSeatRepo
	tickets     *repository.TicketRepo
	events      EventPublisher
	metrics     *metrics.Metrics
	log         logger.Logger
	now         func() time.Time
	newRef      func() string
}

func NewBookingService(db *sql.DB, clients *repository.ClientRepo, flightSeats *repository.FlightSeatRepo,
	tickets *repository.TicketRepo, events EventPublisher, m *metrics.Metrics, log logger.Logger) *BookingService {
	return &BookingService{
		db: db, clients: clients, flightSeats: flightSeats, tickets: tickets,
		events: events, metrics: m, log: log, now: time.Now, newRef: uuid.NewString,
	}
}

// Book sells an available seat to the calling client. The seat moves from
// available to sold with a conditional update; if another booking won the
// race the caller gets ErrSeatUnavailable and nothing is written.
func (s *BookingService) Book(ctx context.Context, actor Actor, flightSeatID uint64) (*model.Ticket, error) {
	client, err := s.clients.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	t := &model.Ticket{
		Reference:    s.newRef(),
		ClientID:     client.ID,
		FlightSeatID: flightSeatID,
		CreatedAt:    s.now().UTC(),
	}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.flightSeats.MarkSoldTx(ctx, tx, flightSeatID); err != nil {
			return err
		}
		return s.tickets.CreateTx(ctx, tx, t)
	})
	if err != nil {
		s.metrics.Bookings.WithLabelValues(bookingResult(err)).Inc()
		return nil, err
	}

	s.metrics.Bookings.WithLabelValues("ok").Inc()
	s.log.Info("ticket booked", "ticket_id", t.ID, "reference", t.Reference, "client_id", client.ID, "flight_seat_id", flightSeatID)
	emit(ctx, s.events, s.log, queue.EventTicketBooked, queue.TicketChanged{
		TicketID:     t.ID,
		Reference:    t.Reference,
		ClientID:     t.ClientID,
		FlightSeatID: t.FlightSeatID,
		ActorID:      actor.UserID,
	}, t.CreatedAt)
	return t, nil
}

func bookingResult(err error) string {
	switch {
	case errors.Is(err, repository.ErrSeatUnavailable):
		return "unavailable"
	case errors.Is(err, repository.ErrFlightSeatNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// ticketOwner resolves the client whose tickets the actor may act on. Staff
// get zero and may act on any ticket. A client without a profile owns none.
func (s *BookingService) ticketOwner(ctx context.Context, actor Actor) (uint64, error) {
	if actor.Role.IsStaff() {
		return 0, nil
	}
	client, err := s.clients.GetByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return 0, repository.ErrTicketNotFound
		}
		return 0, err
	}
	return client.ID, nil
}

// owns hides tickets of other clients behind ErrTicketNotFound.
func owns(owner uint64, t *model.Ticket) error {
	if owner != 0 && owner != t.ClientID {
		return repository.ErrTicketNotFound
	}
	return nil
}

// Pay marks a ticket as paid. Paying twice or paying a canceled ticket is
// refused.
func (s *BookingService) Pay(ctx context.Context, actor Actor, ticketID uint64) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	owner, err := s.ticketOwner(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := owns(owner, t); err != nil {
		return nil, err
	}

	at := s.now().UTC()
	changed, err := s.tickets.MarkPaid(ctx, ticketID, at)
	if err != nil {
		return nil, err
	}
	if !changed {
		cur, err := s.tickets.GetByID(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		switch {
		case cur.IsCanceled:
			return nil, ErrTicketCanceled
		case cur.IsPaid:
			return nil, ErrTicketAlreadyPaid
		}
		return nil, repository.ErrTicketNotFound
	}

	t.IsPaid = true
	t.PaidAt = &at
	s.metrics.TicketsPaid.Inc()
	s.log.Info("ticket paid", "ticket_id", t.ID, "reference", t.Reference, "actor_id", actor.UserID)
	emit(ctx, s.events, s.log, queue.EventTicketPaid, queue.TicketChanged{
		TicketID:     t.ID,
		Reference:    t.Reference,
		ClientID:     t.ClientID,
		FlightSeatID: t.FlightSeatID,
		ActorID:      actor.UserID,
	}, at)
	return t, nil
}

// Cancel cancels a ticket and returns its seat to sale. The ticket row is
// locked so two cancellations cannot both free the seat; the second one
// gets ErrTicketAlreadyCanceled. A seat that is no longer sold (e.g.
// disabled by staff) is left as is. The caller's client profile is resolved
// before the transaction so no other read runs while the ticket is locked.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, ticketID uint64) (*model.Ticket, error) {
	owner, err := s.ticketOwner(ctx, actor)
	if err != nil {
		return nil, err
	}
	var (
		t     *model.Ticket
		freed bool
	)
	at := s.now().UTC()
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		t, err = s.tickets.GetForUpdateTx(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if err := owns(owner, t); err != nil {
			return err
		}
		if t.IsCanceled {
			return ErrTicketAlreadyCanceled
		}
		if err := s.tickets.MarkCanceledTx(ctx, tx, ticketID, at); err != nil {
			return err
		}
		freed, err = s.flightSeats.ReleaseTx(ctx, tx, t.FlightSeatID)
		return err
	})
	if err != nil {
		return nil, err
	}

	t.IsCanceled = true
	t.CanceledAt = &at
	s.metrics.TicketsCanceled.Inc()
	s.log.Info("ticket canceled", "ticket_id", t.ID, "reference", t.Reference, "seat_freed", freed, "actor_id", actor.UserID)
	emit(ctx, s.events, s.log, queue.EventTicketCanceled, queue.TicketChanged{
		TicketID:     t.ID,
		Reference:    t.Reference,
		ClientID:     t.ClientID,
		FlightSeatID: t.FlightSeatID,
		ActorID:      actor.UserID,
		SeatFreed:    freed,
	}, at)
	return t, nil
}

// ClientTickets is the profile view of a client's live tickets.
type ClientTickets struct {
	Upcoming []model.TicketDetail `json:"upcoming"`
	Past     []model.TicketDetail `json:"past"`
}

// ClientTickets splits the caller's live tickets by whether the flight has
// departed.
func (s *BookingService) ClientTickets(ctx context.Context, actor Actor) (*ClientTickets, error) {
	client, err := s.clients.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	list, err := s.tickets.ListDetailsByClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := &ClientTickets{Upcoming: []model.TicketDetail{}, Past: []model.TicketDetail{}}
	for _, d := range list {
		if d.DepartureTime.After(now) {
			out.Upcoming = append(out.Upcoming, d)
		} else {
			out.Past = append(out.Past, d)
		}
	}
	return out, nil
}
