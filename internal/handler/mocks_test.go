package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/repository"
	"github.com/iliyamo/osaka-airlines/internal/service"
)

type mockLayouts struct{ mock.Mock }

func (m *mockLayouts) Publish(ctx context.Context, boardID uint64, in service.LayoutInput, by *uint64) (*model.BoardLayout, error) {
	args := m.Called(ctx, boardID, in, by)
	l, _ := args.Get(0).(*model.BoardLayout)
	return l, args.Error(1)
}

func (m *mockLayouts) Current(ctx context.Context, boardID uint64) (int, []model.BoardSeat, error) {
	args := m.Called(ctx, boardID)
	seats, _ := args.Get(1).([]model.BoardSeat)
	return args.Int(0), seats, args.Error(2)
}

func (m *mockLayouts) Versions(ctx context.Context, boardID uint64) ([]model.BoardLayout, error) {
	args := m.Called(ctx, boardID)
	list, _ := args.Get(0).([]model.BoardLayout)
	return list, args.Error(1)
}

func (m *mockLayouts) Summary(ctx context.Context, boardID uint64) (*service.LayoutSummary, error) {
	args := m.Called(ctx, boardID)
	s, _ := args.Get(0).(*service.LayoutSummary)
	return s, args.Error(1)
}

type mockFlights struct{ mock.Mock }

func (m *mockFlights) Create(ctx context.Context, f *model.Flight) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *mockFlights) Get(ctx context.Context, id uint64) (*model.Flight, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*model.Flight)
	return f, args.Error(1)
}

func (m *mockFlights) List(ctx context.Context, boardID uint64) ([]model.Flight, error) {
	args := m.Called(ctx, boardID)
	list, _ := args.Get(0).([]model.Flight)
	return list, args.Error(1)
}

func (m *mockFlights) Update(ctx context.Context, f *model.Flight) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFlights) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockFlights) Search(ctx context.Context, q repository.FlightSearchQuery) ([]repository.FlightSearchRow, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]repository.FlightSearchRow)
	return rows, args.Error(1)
}

func (m *mockFlights) SeatMap(ctx context.Context, flightID uint64) (*service.SeatMap, error) {
	args := m.Called(ctx, flightID)
	sm, _ := args.Get(0).(*service.SeatMap)
	return sm, args.Error(1)
}

func (m *mockFlights) SetSeatStatus(ctx context.Context, seatID uint64, target model.SeatStatus) (*model.FlightSeat, error) {
	args := m.Called(ctx, seatID, target)
	s, _ := args.Get(0).(*model.FlightSeat)
	return s, args.Error(1)
}

func (m *mockFlights) Tickets(ctx context.Context, flightID uint64) ([]model.TicketDetail, error) {
	args := m.Called(ctx, flightID)
	list, _ := args.Get(0).([]model.TicketDetail)
	return list, args.Error(1)
}

func (m *mockFlights) Manifest(ctx context.Context, flightID uint64) ([]byte, *model.Flight, error) {
	args := m.Called(ctx, flightID)
	data, _ := args.Get(0).([]byte)
	f, _ := args.Get(1).(*model.Flight)
	return data, f, args.Error(2)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Book(ctx context.Context, a service.Actor, seatID uint64) (*model.Ticket, error) {
	args := m.Called(ctx, a, seatID)
	t, _ := args.Get(0).(*model.Ticket)
	return t, args.Error(1)
}

func (m *mockBookings) Pay(ctx context.Context, a service.Actor, ticketID uint64) (*model.Ticket, error) {
	args := m.Called(ctx, a, ticketID)
	t, _ := args.Get(0).(*model.Ticket)
	return t, args.Error(1)
}

func (m *mockBookings) Cancel(ctx context.Context, a service.Actor, ticketID uint64) (*model.Ticket, error) {
	args := m.Called(ctx, a, ticketID)
	t, _ := args.Get(0).(*model.Ticket)
	return t, args.Error(1)
}

func (m *mockBookings) ClientTickets(ctx context.Context, a service.Actor) (*service.ClientTickets, error) {
	args := m.Called(ctx, a)
	out, _ := args.Get(0).(*service.ClientTickets)
	return out, args.Error(1)
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) Register(ctx context.Context, r service.Registration) (*model.User, error) {
	args := m.Called(ctx, r)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockAccounts) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	args := m.Called(ctx, login, password)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockAccounts) ActiveUser(ctx context.Context, id uint64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockAccounts) ListStaff(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.User)
	return list, args.Error(1)
}

func (m *mockAccounts) AssignRole(ctx context.Context, userID uint64, role model.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, userID uint64, hash string, exp time.Time) error {
	return m.Called(ctx, userID, hash, exp).Error(0)
}

func (m *mockTokens) ValidateRefresh(ctx context.Context, hash string, now time.Time) (uint64, error) {
	args := m.Called(ctx, hash, now)
	id, _ := args.Get(0).(uint64)
	return id, args.Error(1)
}

func (m *mockTokens) RevokeByHash(ctx context.Context, hash string) error {
	return m.Called(ctx, hash).Error(0)
}

func (m *mockTokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockBoards struct{ mock.Mock }

func (m *mockBoards) Create(ctx context.Context, b *model.Board) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBoards) GetByID(ctx context.Context, id uint64) (*model.Board, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Board)
	return b, args.Error(1)
}

func (m *mockBoards) List(ctx context.Context, modelID uint64) ([]model.Board, error) {
	args := m.Called(ctx, modelID)
	list, _ := args.Get(0).([]model.Board)
	return list, args.Error(1)
}

func (m *mockBoards) Update(ctx context.Context, b *model.Board) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBoards) SoftDelete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockPlaces struct{ mock.Mock }

func (m *mockPlaces) Create(ctx context.Context, p *model.Place) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPlaces) GetByID(ctx context.Context, id uint64) (*model.Place, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Place)
	return p, args.Error(1)
}

func (m *mockPlaces) List(ctx context.Context) ([]model.Place, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Place)
	return list, args.Error(1)
}

func (m *mockPlaces) Update(ctx context.Context, p *model.Place) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPlaces) SoftDelete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockAirports struct{ mock.Mock }

func (m *mockAirports) Create(ctx context.Context, a *model.Airport) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAirports) GetByID(ctx context.Context, id uint64) (*model.Airport, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Airport)
	return a, args.Error(1)
}

func (m *mockAirports) List(ctx context.Context, placeID uint64) ([]model.Airport, error) {
	args := m.Called(ctx, placeID)
	list, _ := args.Get(0).([]model.Airport)
	return list, args.Error(1)
}

func (m *mockAirports) Update(ctx context.Context, a *model.Airport) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAirports) SoftDelete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}
