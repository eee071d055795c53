package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/metrics"
)

const (
	dialTimeout   = 2 * time.Second
	redialBackoff = 5 * time.Second
)

// ErrBrokerBackoff is returned while a publisher waits out the pause after a
// failed dial.
var ErrBrokerBackoff = errors.New("rabbitmq: waiting before redial")

// Publisher sends events to a durable queue over one long-lived
// connection. A broken connection is dropped and redialed on the next
// publish. Dials are bounded by dialTimeout and a failed dial is not retried
// for redialBackoff, so an unreachable broker stalls publishers briefly and
// then fails them fast.
type Publisher struct {
	url     string
	queue   string
	log     logger.Logger
	metrics *metrics.Metrics
	dial    func(url string) (*amqp.Connection, error)
	now     func() time.Time

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

func NewPublisher(url, queue string, log logger.Logger, m *metrics.Metrics) *Publisher {
	return &Publisher{url: url, queue: queue, log: log, metrics: m, dial: dialBroker, now: time.Now}
}

func dialBroker(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
}

// Publish sends ev as a persistent JSON message. Errors are logged and
// returned so callers may ignore them without failing the request.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	msg, err := toPublishing(ev)
	if err != nil {
		p.count(ev.Type, "error")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.count(ev.Type, "error")
		p.log.Warn("rabbitmq: channel unavailable", "error", err, "event_type", ev.Type)
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.reset()
		p.count(ev.Type, "error")
		p.log.Warn("rabbitmq: publish failed", "error", err, "event_type", ev.Type)
		return err
	}
	p.count(ev.Type, "ok")
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if p.now().Before(p.retryAt) {
		return nil, ErrBrokerBackoff
	}

	conn, err := p.dial(p.url)
	if err != nil {
		p.retryAt = p.now().Add(redialBackoff)
		return nil, fmt.Errorf("dial: %w", err)
	}
	p.retryAt = time.Time{}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) count(t EventType, result string) {
	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(string(t), result).Inc()
	}
}

func toPublishing(ev Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}, nil
}
