// Package queue carries domain events over RabbitMQ: a publisher used by
// the services and a consumer that appends every event to the audit log.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType names a domain event. It doubles as the AMQP message type.
type EventType string

const (
	EventLayoutPublished EventType = "layout.published"
	EventFlightCreated   EventType = "flight.created"
	EventTicketBooked    EventType = "ticket.booked"
	EventTicketPaid      EventType = "ticket.paid"
	EventTicketCanceled  EventType = "ticket.canceled"
)

// Event is the envelope published to the broker. Payload holds one of the
// payload structs below, encoded as JSON.
type Event struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// LayoutPublished is emitted after a new seat layout generation commits.
type LayoutPublished struct {
	BoardID      uint64  `json:"board_id"`
	Version      int     `json:"version"`
	Rows         int     `json:"rows"`
	SeatsPerRow  int     `json:"seats_per_row"`
	BusinessRows int     `json:"business_rows"`
	PublishedBy  *uint64 `json:"published_by,omitempty"`
}

// FlightCreated is emitted after a flight and its seats commit.
type FlightCreated struct {
	FlightID     uint64    `json:"flight_id"`
	BoardID      uint64    `json:"board_id"`
	SeatsVersion *int      `json:"seats_version,omitempty"`
	Seats        int       `json:"seats"`
	Departure    time.Time `json:"departure_time"`
}

// TicketChanged is the payload of the ticket.* events.
type TicketChanged struct {
	TicketID     uint64 `json:"ticket_id"`
	Reference    string `json:"reference"`
	ClientID     uint64 `json:"client_id"`
	FlightSeatID uint64 `json:"flight_seat_id"`
	ActorID      uint64 `json:"actor_id,omitempty"`
	SeatFreed    bool   `json:"seat_freed,omitempty"`
}

// NewEvent wraps payload into an envelope with a fresh id.
func NewEvent(t EventType, payload any, at time.Time) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: at.UTC(),
		Payload:    body,
	}, nil
}

// Fields flattens the payload into key/value pairs for structured logging.
// Unknown or malformed payloads are logged raw.
func (e Event) Fields() []interface{} {
	kv := []interface{}{"event_id", e.ID, "event_type", string(e.Type), "occurred_at", e.OccurredAt}
	var m map[string]interface{}
	if err := json.Unmarshal(e.Payload, &m); err != nil {
		return append(kv, "payload", string(e.Payload))
	}
	for k, v := range m {
		kv = append(kv, k, v)
	}
	return kv
}
