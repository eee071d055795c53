package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/osaka-airlines/internal/database"
	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/metrics"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/queue"
	"github.com/iliyamo/osaka-airlines/internal/repository"
)

// FlightService owns the flight lifecycle and the flight seat inventory.
type FlightService struct {
	db           *sql.DB
	boards       *repository.BoardRepo
	flights      *repository.FlightRepo
	flightSeats  *repository.FlightSeatRepo
	tickets      *repository.TicketRepo
	materializer *Materializer
	events       EventPublisher
	metrics      *metrics.Metrics
	log          logger.Logger
	now          func() time.Time
}

func NewFlightService(db *sql.DB, boards *repository.BoardRepo, flights *repository.FlightRepo,
	flightSeats *repository.FlightSeatRepo, tickets *repository.TicketRepo, materializer *Materializer,
	events EventPublisher, m *metrics.Metrics, log logger.Logger) *FlightService {
	return &FlightService{
		db: db, boards: boards, flights: flights, flightSeats: flightSeats, tickets: tickets,
		materializer: materializer, events: events, metrics: m, log: log, now: time.Now,
	}
}

func validateFlight(f *model.Flight) error {
	switch {
	case f.BoardID == 0:
		return invalid("board_id is required")
	case f.DepartureTime.IsZero() || f.ArrivalTime.IsZero():
		return invalid("departure_time and arrival_time are required")
	case !f.ArrivalTime.After(f.DepartureTime):
		return invalid("arrival_time must be after departure_time")
	case f.BusinessPriceCents < 0 || f.EconomyPriceCents < 0:
		return invalid("prices must not be negative")
	case f.Name != nil && len(*f.Name) > 10:
		return invalid("name must be at most 10 characters")
	case f.Gate != nil && len(*f.Gate) > 10, f.Terminal != nil && len(*f.Terminal) > 10:
		return invalid("gate and terminal must be at most 10 characters")
	}
	return nil
}

// Create inserts a flight and materializes its seats from the board's
// current layout in one transaction. It returns the number of seats
// created.
func (s *FlightService) Create(ctx context.Context, f *model.Flight) (int, error) {
	if err := validateFlight(f); err != nil {
		return 0, err
	}

	var count int
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.boards.GetByIDTx(ctx, tx, f.BoardID); err != nil {
			return err
		}
		if err := s.flights.CreateTx(ctx, tx, f); err != nil {
			return err
		}
		n, err := s.materializer.MaterializeTx(ctx, tx, f)
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		var me *MaterializationError
		if errors.As(err, &me) {
			s.metrics.MaterializationFailed.Inc()
			s.log.Error("flight seat materialization failed",
				"board_id", f.BoardID, "attempted", me.Attempted, "error", me.Err)
		}
		s.metrics.ErrorsCount.WithLabelValues("create_flight").Inc()
		f.ID = 0
		f.SeatsVersion = nil
		return 0, err
	}

	s.metrics.SeatsMaterialized.Add(float64(count))
	s.log.Info("flight created", "flight_id", f.ID, "board_id", f.BoardID, "seats", count, "seats_version", f.SeatsVersion)
	emit(ctx, s.events, s.log, queue.EventFlightCreated, queue.FlightCreated{
		FlightID:     f.ID,
		BoardID:      f.BoardID,
		SeatsVersion: f.SeatsVersion,
		Seats:        count,
		Departure:    f.DepartureTime,
	}, s.now())
	return count, nil
}

func (s *FlightService) Get(ctx context.Context, id uint64) (*model.Flight, error) {
	return s.flights.GetByID(ctx, id)
}

// List returns flights of one board, or all when boardID is zero.
func (s *FlightService) List(ctx context.Context, boardID uint64) ([]model.Flight, error) {
	return s.flights.ListByBoard(ctx, boardID)
}

// Update changes schedule and fares. The board cannot be changed.
func (s *FlightService) Update(ctx context.Context, f *model.Flight) error {
	cur, err := s.flights.GetByID(ctx, f.ID)
	if err != nil {
		return err
	}
	if f.BoardID != 0 && f.BoardID != cur.BoardID {
		return invalid("board of a flight cannot be changed")
	}
	f.BoardID = cur.BoardID
	if err := validateFlight(f); err != nil {
		return err
	}
	return s.flights.Update(ctx, f)
}

// Delete soft-deletes a flight together with its seats, so none of them can
// be sold afterwards. Flights with live tickets are refused.
func (s *FlightService) Delete(ctx context.Context, id uint64) error {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.flights.SoftDeleteTx(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("flight deleted", "flight_id", id)
	return nil
}

// Search runs the public flight search.
func (s *FlightService) Search(ctx context.Context, q repository.FlightSearchQuery) ([]repository.FlightSearchRow, error) {
	if q.Start != nil && q.End != nil && q.End.Before(*q.Start) {
		return nil, invalid("end must not be before start")
	}
	q.Now = s.now()
	return s.flights.Search(ctx, q)
}

// SeatRow is one row of a seat map.
type SeatRow struct {
	Row    int                `json:"row"`
	Letter string             `json:"letter"`
	Seats  []model.FlightSeat `json:"seats"`
}

// SeatMap is the seat selection view of a flight.
type SeatMap struct {
	FlightID  uint64    `json:"flight_id"`
	Available int       `json:"available"`
	Total     int       `json:"total"`
	Rows      []SeatRow `json:"rows"`
}

// SeatMap groups the flight's seats by row.
func (s *FlightService) SeatMap(ctx context.Context, flightID uint64) (*SeatMap, error) {
	if _, err := s.flights.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	seats, err := s.flightSeats.ListByFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	return buildSeatMap(flightID, seats), nil
}

func buildSeatMap(flightID uint64, seats []model.FlightSeat) *SeatMap {
	sm := &SeatMap{FlightID: flightID, Total: len(seats), Rows: []SeatRow{}}
	for _, st := range seats {
		if st.Status == model.SeatAvailable {
			sm.Available++
		}
		if n := len(sm.Rows); n == 0 || sm.Rows[n-1].Row != st.RowNumber {
			sm.Rows = append(sm.Rows, SeatRow{Row: st.RowNumber, Letter: model.RowLetter(st.RowNumber)})
		}
		last := &sm.Rows[len(sm.Rows)-1]
		last.Seats = append(last.Seats, st)
	}
	return sm
}

// SetSeatStatus lets staff take a seat out of sale or put it back. Only
// available and disabled are accepted targets; sold seats stay sold.
func (s *FlightService) SetSeatStatus(ctx context.Context, seatID uint64, target model.SeatStatus) (*model.FlightSeat, error) {
	if target != model.SeatAvailable && target != model.SeatDisabled {
		return nil, ErrInvalidSeatStatus
	}
	seat, err := s.flightSeats.GetByID(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if seat.Status == target {
		return seat, nil
	}
	// sold seats are only released by ticket cancellation
	if seat.Status == model.SeatSold || !seat.Status.CanTransition(target) {
		return nil, repository.ErrSeatUnavailable
	}
	if err := s.flightSeats.SetStatus(ctx, seatID, seat.Status, target); err != nil {
		return nil, err
	}
	s.log.Info("flight seat status changed", "flight_seat_id", seatID, "from", seat.Status, "to", target)
	seat.Status = target
	return seat, nil
}

// Tickets lists every ticket of a flight for staff.
func (s *FlightService) Tickets(ctx context.Context, flightID uint64) ([]model.TicketDetail, error) {
	if _, err := s.flights.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	return s.tickets.ListDetailsByFlight(ctx, flightID)
}
