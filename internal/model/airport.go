package model

// Place is a city or area served by one or more airports.
type Place struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsDeleted bool    `json:"is_deleted"`
}

// Airport belongs to a place. Flight search matches on the place name.
type Airport struct {
	ID        uint64 `json:"id"`
	PlaceID   uint64 `json:"place_id"`
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
	IsDeleted bool   `json:"is_deleted"`

	PlaceName string `json:"place_name,omitempty"` // joined, read-only
}
