// Package service implements the airline use cases on top of the
// repositories: layout publication, flight creation with seat
// materialization, booking and ticket lifecycle, and accounts.
package service

import (
	"context"
	"time"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/queue"
)

// EventPublisher hands domain events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.Event) error { return nil }

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID uint64
	Role   model.Role
}

// emit publishes an event after a successful commit. Broker failures are
// logged and never fail the use case.
func emit(ctx context.Context, pub EventPublisher, log logger.Logger, t queue.EventType, payload any, at time.Time) {
	ev, err := queue.NewEvent(t, payload, at)
	if err != nil {
		log.Error("build event failed", "event_type", t, "error", err)
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		log.Warn("publish event failed", "event_type", t, "event_id", ev.ID, "error", err)
	}
}
