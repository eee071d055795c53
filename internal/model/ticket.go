package model

import "time"

// Ticket is a client's claim on one flight seat. A canceled ticket frees the
// seat for rebooking.
//
// Fields:
//  ID           – primary key.
//  Reference    – public booking reference (UUID).
//  ClientID     – FK to clients.id.
//  FlightSeatID – FK to flight_seats.id.
//  IsDeleted    – soft delete flag.
//  IsCanceled   – set once by cancellation.
//  IsPaid       – set once by payment.
type Ticket struct {
	ID           uint64     `json:"id"`
	Reference    string     `json:"reference"`
	ClientID     uint64     `json:"client_id"`
	FlightSeatID uint64     `json:"flight_seat_id"`
	IsDeleted    bool       `json:"is_deleted"`
	IsCanceled   bool       `json:"is_canceled"`
	IsPaid       bool       `json:"is_paid"`
	CreatedAt    time.Time  `json:"created_at"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CanceledAt   *time.Time `json:"canceled_at,omitempty"`
}

// TicketDetail is a ticket joined with its seat and flight, used by the
// client profile and the staff manifest.
type TicketDetail struct {
	Ticket
	FlightID      uint64    `json:"flight_id"`
	FlightName    *string   `json:"flight_name,omitempty"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	RowNumber     int       `json:"row_number"`
	Seat          int       `json:"seat"`
	SeatLabel     string    `json:"seat_label"`
	SeatType      SeatType  `json:"seat_type"`
	PriceCents    int64     `json:"price_cents"`
	ClientLogin   string    `json:"client_login,omitempty"`
	ClientName    string    `json:"client_name,omitempty"`
	ClientPhone   string    `json:"client_phone,omitempty"`
}
