package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

// FlightSearchQuery filters flights by departure/arrival place name. When
// both Start and End are set the departure time must fall inside them;
// otherwise only flights departing at or after Now are returned.
type FlightSearchQuery struct {
	DeparturePlace string
	ArrivalPlace   string
	Start          *time.Time
	End            *time.Time
	Now            time.Time
}

// FlightSearchRow is a flight with its route names and live availability.
type FlightSearchRow struct {
	model.Flight
	DepartureAirport string `json:"departure_airport"`
	DeparturePlace   string `json:"departure_place"`
	ArrivalAirport   string `json:"arrival_airport"`
	ArrivalPlace     string `json:"arrival_place"`
	AvailableSeats   int    `json:"available_seats"`
	MinPriceCents    *int64 `json:"min_price_cents,omitempty"`
}

// Search runs the public flight search.
func (r *FlightRepo) Search(ctx context.Context, q FlightSearchQuery) ([]FlightSearchRow, error) {
	where := []string{"f.is_deleted = 0"}
	args := []any{}

	if q.Start != nil && q.End != nil {
		where = append(where, "f.departure_time BETWEEN ? AND ?")
		args = append(args, q.Start.UTC(), q.End.UTC())
	} else {
		where = append(where, "f.departure_time >= ?")
		args = append(args, q.Now.UTC())
	}
	if s := strings.TrimSpace(q.DeparturePlace); s != "" {
		where = append(where, "LOWER(dp.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(q.ArrivalPlace); s != "" {
		where = append(where, "LOWER(ap.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(s)+"%")
	}

	dataSQL := `SELECT ` + flightColumns + `,
			COALESCE(da.name, ''), COALESCE(dp.name, ''),
			COALESCE(aa.name, ''), COALESCE(ap.name, ''),
			(SELECT COUNT(*) FROM flight_seats fs
			  WHERE fs.flight_id = f.id AND fs.status = 'available' AND fs.is_deleted = 0),
			(SELECT MIN(fs.price_cents) FROM flight_seats fs
			  WHERE fs.flight_id = f.id AND fs.status = 'available' AND fs.is_deleted = 0)
		FROM flights f
		LEFT JOIN airports da ON da.id = f.departure_airport_id
		LEFT JOIN places dp   ON dp.id = da.place_id
		LEFT JOIN airports aa ON aa.id = f.arrival_airport_id
		LEFT JOIN places ap   ON ap.id = aa.place_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY f.departure_time ASC`

	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FlightSearchRow{}
	for rows.Next() {
		var (
			d        FlightSearchRow
			fs       flightScan
			minPrice sql.NullInt64
		)
		dest := append(fs.dest(&d.Flight),
			&d.DepartureAirport, &d.DeparturePlace, &d.ArrivalAirport, &d.ArrivalPlace,
			&d.AvailableSeats, &minPrice)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		fs.apply(&d.Flight)
		if minPrice.Valid {
			v := minPrice.Int64
			d.MinPriceCents = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
