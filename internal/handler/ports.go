package handler

import (
	"context"
	"time"

	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/repository"
	"github.com/iliyamo/osaka-airlines/internal/service"
)

type ManufacturerStore interface {
	Create(ctx context.Context, m *model.Manufacturer) error
	GetByID(ctx context.Context, id uint64) (*model.Manufacturer, error)
	List(ctx context.Context) ([]model.Manufacturer, error)
	Update(ctx context.Context, m *model.Manufacturer) error
	SoftDelete(ctx context.Context, id uint64) error
}

type ModelStore interface {
	Create(ctx context.Context, m *model.AircraftModel) error
	GetByID(ctx context.Context, id uint64) (*model.AircraftModel, error)
	List(ctx context.Context, manufacturerID uint64) ([]model.AircraftModel, error)
	Update(ctx context.Context, m *model.AircraftModel) error
	SoftDelete(ctx context.Context, id uint64) error
}

type BoardStore interface {
	Create(ctx context.Context, b *model.Board) error
	GetByID(ctx context.Context, id uint64) (*model.Board, error)
	List(ctx context.Context, modelID uint64) ([]model.Board, error)
	Update(ctx context.Context, b *model.Board) error
	SoftDelete(ctx context.Context, id uint64) error
}

type PlaceStore interface {
	Create(ctx context.Context, p *model.Place) error
	GetByID(ctx context.Context, id uint64) (*model.Place, error)
	List(ctx context.Context) ([]model.Place, error)
	Update(ctx context.Context, p *model.Place) error
	SoftDelete(ctx context.Context, id uint64) error
}

type AirportStore interface {
	Create(ctx context.Context, a *model.Airport) error
	GetByID(ctx context.Context, id uint64) (*model.Airport, error)
	List(ctx context.Context, placeID uint64) ([]model.Airport, error)
	Update(ctx context.Context, a *model.Airport) error
	SoftDelete(ctx context.Context, id uint64) error
}

type LayoutService interface {
	Publish(ctx context.Context, boardID uint64, in service.LayoutInput, publishedBy *uint64) (*model.BoardLayout, error)
	Current(ctx context.Context, boardID uint64) (int, []model.BoardSeat, error)
	Versions(ctx context.Context, boardID uint64) ([]model.BoardLayout, error)
	Summary(ctx context.Context, boardID uint64) (*service.LayoutSummary, error)
}

type FlightService interface {
	Create(ctx context.Context, f *model.Flight) (int, error)
	Get(ctx context.Context, id uint64) (*model.Flight, error)
	List(ctx context.Context, boardID uint64) ([]model.Flight, error)
	Update(ctx context.Context, f *model.Flight) error
	Delete(ctx context.Context, id uint64) error
	Search(ctx context.Context, q repository.FlightSearchQuery) ([]repository.FlightSearchRow, error)
	SeatMap(ctx context.Context, flightID uint64) (*service.SeatMap, error)
	SetSeatStatus(ctx context.Context, seatID uint64, target model.SeatStatus) (*model.FlightSeat, error)
	Tickets(ctx context.Context, flightID uint64) ([]model.TicketDetail, error)
	Manifest(ctx context.Context, flightID uint64) ([]byte, *model.Flight, error)
}

type BookingService interface {
	Book(ctx context.Context, actor service.Actor, flightSeatID uint64) (*model.Ticket, error)
	Pay(ctx context.Context, actor service.Actor, ticketID uint64) (*model.Ticket, error)
	Cancel(ctx context.Context, actor service.Actor, ticketID uint64) (*model.Ticket, error)
	ClientTickets(ctx context.Context, actor service.Actor) (*service.ClientTickets, error)
}

type AccountService interface {
	Register(ctx context.Context, r service.Registration) (*model.User, error)
	Authenticate(ctx context.Context, login, password string) (*model.User, error)
	ActiveUser(ctx context.Context, id uint64) (*model.User, error)
	ListStaff(ctx context.Context) ([]model.User, error)
	AssignRole(ctx context.Context, userID uint64, role model.Role) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}
