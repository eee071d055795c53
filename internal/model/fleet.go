package model

import "time"

// Manufacturer is an aircraft maker as stored in the `manufacturers` table.
//
// Fields:
//  ID        – primary key.
//  Name      – display name (e.g. Airbus).
//  IsDeleted – soft delete flag.
type Manufacturer struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AircraftModel is a type of aircraft built by a manufacturer. The
// manufacturer is optional to allow models entered before their maker.
//
// Fields:
//  ID             – primary key.
//  ManufacturerID – optional FK to manufacturers.id.
//  Name           – model name (e.g. A320neo).
//  IsDeleted      – soft delete flag.
type AircraftModel struct {
	ID             uint64    `json:"id"`
	ManufacturerID *uint64   `json:"manufacturer_id,omitempty"`
	Name           string    `json:"name"`
	IsDeleted      bool      `json:"is_deleted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	ManufacturerName string `json:"manufacturer_name,omitempty"` // joined, read-only
}

// Board is a physical aircraft tail. SeatsAmount mirrors the size of the
// current seat layout and is refreshed whenever a layout is published.
//
// Fields:
//  ID          – primary key.
//  ModelID     – optional FK to aircraft_models.id.
//  BoardNumber – registration/tail number, unique.
//  Year        – year of manufacture.
//  SeatsAmount – capacity of the current layout.
//  IsDeleted   – soft delete flag.
type Board struct {
	ID          uint64    `json:"id"`
	ModelID     *uint64   `json:"model_id,omitempty"`
	BoardNumber string    `json:"board_number"`
	Year        int       `json:"year"`
	SeatsAmount int       `json:"seats_amount"`
	IsDeleted   bool      `json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
