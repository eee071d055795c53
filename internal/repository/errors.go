// Package repository holds the MySQL data access for the fleet catalog,
// seat layouts, flights and tickets. Sentinel errors defined here let the
// service and handler layers tell failure scenarios apart: a missing row is
// reported per entity (ErrBoardNotFound, ErrFlightNotFound, ...), a lost
// compare-and-swap on a seat is ErrSeatUnavailable and a duplicate layout
// generation is ErrVersionConflict.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrManufacturerNotFound = errors.New("manufacturer not found")
	ErrModelNotFound        = errors.New("aircraft model not found")
	ErrBoardNotFound        = errors.New("board not found")
	ErrPlaceNotFound        = errors.New("place not found")
	ErrAirportNotFound      = errors.New("airport not found")
	ErrFlightNotFound       = errors.New("flight not found")
	ErrFlightSeatNotFound   = errors.New("seat does not exist")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrUserNotFound         = errors.New("user not found")
)

// ErrSeatUnavailable is returned when a seat exists but is no longer in the
// state the caller expected (typically someone else booked it first).
var ErrSeatUnavailable = errors.New("seat no longer available")

// ErrVersionConflict is returned when a layout generation collides with an
// existing (board_id, seats_version) key.
var ErrVersionConflict = errors.New("layout version conflict")

// ErrConflict is returned when a write violates a unique key or cannot
// proceed because of dependent records. Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// ErrLoginExists is returned when registering a login that is taken.
var ErrLoginExists = errors.New("login already exists")

// ErrTokenInvalid is returned for unknown, revoked or expired refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")

const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
