package service

import (
	"context"
	"database/sql"

	"github.com/iliyamo/osaka-airlines/internal/config"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/repository"
)

// Materializer copies a board's current layout into flight seats. It only
// works inside a caller-owned transaction so that a flight and its seats
// commit together.
type Materializer struct {
	boardSeats  *repository.BoardSeatRepo
	flightSeats *repository.FlightSeatRepo
	flights     *repository.FlightRepo
	policy      string
}

// NewMaterializer builds a materializer. policy is one of
// config.PricingBusinessFlat or config.PricingTiered.
func NewMaterializer(boardSeats *repository.BoardSeatRepo, flightSeats *repository.FlightSeatRepo,
	flights *repository.FlightRepo, policy string) *Materializer {
	return &Materializer{
		boardSeats:  boardSeats,
		flightSeats: flightSeats,
		flights:     flights,
		policy:      config.ParsePricingPolicy(policy),
	}
}

// Price returns the fare of a seat of type t on flight f.
func (m *Materializer) Price(f *model.Flight, t model.SeatType) int64 {
	if m.policy == config.PricingTiered && t == model.SeatTypeEconomy {
		return f.EconomyPriceCents
	}
	return f.BusinessPriceCents
}

// MaterializeTx creates one available flight seat per seat of the board's
// current layout and stamps the flight with that layout version. A board
// without a layout yields zero seats and no error. Any failure is wrapped
// in a MaterializationError; the caller must roll tx back.
func (m *Materializer) MaterializeTx(ctx context.Context, tx *sql.Tx, f *model.Flight) (int, error) {
	version, layout, err := m.boardSeats.CurrentLayoutTx(ctx, tx, f.BoardID)
	if err != nil {
		return 0, &MaterializationError{BoardID: f.BoardID, Err: err}
	}
	if len(layout) == 0 {
		return 0, nil
	}

	seats := make([]model.FlightSeat, 0, len(layout))
	for _, bs := range layout {
		seats = append(seats, model.FlightSeat{
			FlightID:   f.ID,
			Seat:       bs.SeatNumber,
			RowNumber:  bs.RowNumber,
			SeatType:   bs.SeatType,
			Status:     model.SeatAvailable,
			PriceCents: m.Price(f, bs.SeatType),
		})
	}
	if err := m.flightSeats.CreateBulkTx(ctx, tx, seats); err != nil {
		return 0, &MaterializationError{BoardID: f.BoardID, Attempted: len(seats), Err: err}
	}
	if err := m.flights.SetSeatsVersionTx(ctx, tx, f.ID, version); err != nil {
		return 0, &MaterializationError{BoardID: f.BoardID, Attempted: len(seats), Err: err}
	}
	f.SeatsVersion = &version
	return len(seats), nil
}
