package model

import (
	"strings"
	"time"
)

// SeatStatus is the sale state of a flight seat.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatSold      SeatStatus = "sold"
	SeatCancelled SeatStatus = "cancelled"
	SeatDisabled  SeatStatus = "disabled"
)

// ParseSeatStatus accepts the status names case-insensitively.
func ParseSeatStatus(s string) (SeatStatus, bool) {
	switch st := SeatStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case SeatAvailable, SeatSold, SeatCancelled, SeatDisabled:
		return st, true
	}
	return "", false
}

// CanTransition reports whether a seat may move from s to next.
// available -> sold happens on booking, sold -> available on cancellation,
// available <-> disabled is a staff action. Everything else is refused.
func (s SeatStatus) CanTransition(next SeatStatus) bool {
	switch s {
	case SeatAvailable:
		return next == SeatSold || next == SeatDisabled
	case SeatSold:
		return next == SeatAvailable
	case SeatDisabled:
		return next == SeatAvailable
	case SeatCancelled:
		return false
	}
	return false
}

// Flight is a scheduled departure of a board. The board is fixed at creation
// and SeatsVersion records the layout generation its seats were copied from
// (nil when the board had no layout).
//
// Fields:
//  ID                 – primary key.
//  Name               – optional flight code (e.g. OS101).
//  BoardID            – FK to boards.id, immutable.
//  DepartureTime      – scheduled departure (UTC).
//  ArrivalTime        – scheduled arrival (UTC).
//  DelayTime          – revised departure when delayed.
//  Gate, Terminal     – optional boarding info.
//  DepartureAirportID – optional FK to airports.id.
//  ArrivalAirportID   – optional FK to airports.id.
//  BusinessPriceCents – business fare.
//  EconomyPriceCents  – economy fare.
//  SeatsVersion       – materialized layout generation.
//  IsDeleted          – soft delete flag.
type Flight struct {
	ID                 uint64     `json:"id"`
	Name               *string    `json:"name,omitempty"`
	BoardID            uint64     `json:"board_id"`
	DepartureTime      time.Time  `json:"departure_time"`
	ArrivalTime        time.Time  `json:"arrival_time"`
	DelayTime          *time.Time `json:"delay_time,omitempty"`
	Gate               *string    `json:"gate,omitempty"`
	Terminal           *string    `json:"terminal,omitempty"`
	DepartureAirportID *uint64    `json:"departure_airport_id,omitempty"`
	ArrivalAirportID   *uint64    `json:"arrival_airport_id,omitempty"`
	BusinessPriceCents int64      `json:"business_price_cents"`
	EconomyPriceCents  int64      `json:"economy_price_cents"`
	SeatsVersion       *int       `json:"seats_version,omitempty"`
	IsDeleted          bool       `json:"is_deleted"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Duration is the scheduled block time.
func (f Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// Progress returns the elapsed share of the flight at now, clamped to [0, 1].
func (f Flight) Progress(now time.Time) float64 {
	d := f.Duration()
	if d <= 0 || now.Before(f.DepartureTime) {
		return 0
	}
	if now.After(f.ArrivalTime) {
		return 1
	}
	return float64(now.Sub(f.DepartureTime)) / float64(d)
}

// FlightSeat is one sellable seat of one flight, copied from the board
// layout when the flight was created.
//
// Fields:
//  ID         – primary key.
//  FlightID   – FK to flights.id.
//  Seat       – seat number within the row.
//  RowNumber  – 1-based row.
//  SeatType   – cabin class copied from the board seat.
//  Status     – available | sold | cancelled | disabled.
//  PriceCents – fare at materialization time.
//  IsDeleted  – soft delete flag.
type FlightSeat struct {
	ID         uint64     `json:"id"`
	FlightID   uint64     `json:"flight_id"`
	Seat       int        `json:"seat"`
	RowNumber  int        `json:"row_number"`
	SeatType   SeatType   `json:"seat_type"`
	Status     SeatStatus `json:"status"`
	PriceCents int64      `json:"price_cents"`
	IsDeleted  bool       `json:"is_deleted"`
}

// Label renders the seat as "<row letter><seat>".
func (s FlightSeat) Label() string {
	return SeatLabel(s.RowNumber, s.Seat)
}
