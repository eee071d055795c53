package model

import (
	"fmt"
	"time"
)

// SeatType is the cabin class of a seat.
type SeatType string

const (
	SeatTypeEconomy  SeatType = "Economy"
	SeatTypeBusiness SeatType = "Business"
)

// Valid reports whether t is a known cabin class.
func (t SeatType) Valid() bool {
	return t == SeatTypeEconomy || t == SeatTypeBusiness
}

// BoardSeat is one seat slot in one version of a board's layout. Rows of the
// same (BoardID, SeatsVersion) form an immutable generation.
//
// Fields:
//  ID           – primary key.
//  BoardID      – FK to boards.id.
//  SeatType     – Economy or Business.
//  RowNumber    – 1-based row.
//  SeatNumber   – 1-based position within the row.
//  SeatsVersion – layout generation, strictly increasing per board.
//  IsDeleted    – soft delete flag.
type BoardSeat struct {
	ID           uint64   `json:"id"`
	BoardID      uint64   `json:"board_id"`
	SeatType     SeatType `json:"seat_type"`
	RowNumber    int      `json:"row_number"`
	SeatNumber   int      `json:"seat_number"`
	SeatsVersion int      `json:"seats_version"`
	IsDeleted    bool     `json:"is_deleted"`
}

// BoardLayout is the header row written once per published generation.
// Its (BoardID, SeatsVersion) pair is unique.
type BoardLayout struct {
	ID           uint64    `json:"id"`
	BoardID      uint64    `json:"board_id"`
	SeatsVersion int       `json:"seats_version"`
	Rows         int       `json:"rows"`
	SeatsPerRow  int       `json:"seats_per_row"`
	BusinessRows int       `json:"business_rows"`
	PublishedBy  *uint64   `json:"published_by,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
}

// RowLetter maps a 1-based row number to its letter: 1 -> A, 26 -> Z,
// 27 -> AA.
func RowLetter(row int) string {
	if row < 1 {
		return ""
	}
	var out []byte
	for row > 0 {
		row--
		out = append([]byte{byte('A' + row%26)}, out...)
		row /= 26
	}
	return string(out)
}

// SeatLabel renders a seat as row letter followed by seat number, e.g. "C4".
func SeatLabel(row, seat int) string {
	return fmt.Sprintf("%s%d", RowLetter(row), seat)
}
