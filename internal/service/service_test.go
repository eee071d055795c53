package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/metrics"
	"github.com/iliyamo/osaka-airlines/internal/queue"
	"github.com/iliyamo/osaka-airlines/internal/repository"
)

var fixedNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	db      *sql.DB
	mock    sqlmock.Sqlmock
	pub     *recordingPublisher
	metrics *metrics.Metrics
	log     logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &fixture{
		db:      db,
		mock:    mock,
		pub:     &recordingPublisher{},
		metrics: metrics.NewMetricsWith(prometheus.NewRegistry(), "test"),
		log:     logger.Nop(),
	}
}

func (f *fixture) layoutService() *LayoutService {
	s := NewLayoutService(f.db, repository.NewBoardRepo(f.db), repository.NewBoardSeatRepo(f.db), f.pub, f.metrics, f.log)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (f *fixture) flightService(policy string) *FlightService {
	m := NewMaterializer(repository.NewBoardSeatRepo(f.db), repository.NewFlightSeatRepo(f.db), repository.NewFlightRepo(f.db), policy)
	s := NewFlightService(f.db, repository.NewBoardRepo(f.db), repository.NewFlightRepo(f.db), repository.NewFlightSeatRepo(f.db),
		repository.NewTicketRepo(f.db), m, f.pub, f.metrics, f.log)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (f *fixture) bookingService() *BookingService {
	s := NewBookingService(f.db, repository.NewClientRepo(f.db), repository.NewFlightSeatRepo(f.db), repository.NewTicketRepo(f.db),
		f.pub, f.metrics, f.log)
	s.now = func() time.Time { return fixedNow }
	s.newRef = func() string { return "0b4c2a6e-0000-4000-8000-000000000001" }
	return s
}

var (
	boardCols     = []string{"id", "model_id", "board_number", "year", "seats_amount", "is_deleted", "created_at", "updated_at"}
	boardSeatCols = []string{"id", "board_id", "seat_type", "row_num", "seat_number", "seats_version", "is_deleted"}
	clientCols    = []string{"id", "user_id", "phone", "is_deleted"}
	ticketCols    = []string{"id", "reference", "client_id", "flight_seat_id", "is_deleted", "is_canceled", "is_paid", "created_at", "paid_at", "canceled_at"}
)

func boardRow(id uint64) *sqlmock.Rows {
	return sqlmock.NewRows(boardCols).AddRow(id, nil, "JA01OS", 2019, 0, false, fixedNow, fixedNow)
}
