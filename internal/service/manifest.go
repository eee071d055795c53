package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/osaka-airlines/internal/model"
)

const (
	manifestSheet = "Passengers"
	summarySheet  = "Summary"
)

var manifestHeader = []string{"Seat", "Class", "Passenger", "Login", "Phone", "Reference", "Paid", "Price", "Booked At"}

var manifestWidths = []float64{8, 10, 28, 14, 16, 38, 8, 12, 20}

// Manifest renders the passenger list of a flight as an xlsx workbook.
func (s *FlightService) Manifest(ctx context.Context, flightID uint64) ([]byte, *model.Flight, error) {
	f, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.tickets.ListDetailsByFlight(ctx, flightID)
	if err != nil {
		return nil, nil, err
	}
	data, err := BuildManifest(f, list)
	if err != nil {
		return nil, nil, err
	}
	return data, f, nil
}

// BuildManifest writes live tickets to a Passengers sheet and the sales
// totals to a Summary sheet. Canceled tickets are skipped.
func BuildManifest(f *model.Flight, tickets []model.TicketDetail) ([]byte, error) {
	x := excelize.NewFile()

	index, err := x.NewSheet(manifestSheet)
	if err != nil {
		x.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := x.NewSheet(summarySheet); err != nil {
		x.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	x.DeleteSheet("Sheet1")
	x.SetActiveSheet(index)

	headerStyle, err := x.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		x.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, h := range manifestHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			x.Close()
			return nil, err
		}
		if err := x.SetCellValue(manifestSheet, cell, h); err != nil {
			x.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := x.SetCellStyle(manifestSheet, cell, cell, headerStyle); err != nil {
			x.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			x.Close()
			return nil, err
		}
		if err := x.SetColWidth(manifestSheet, name, name, manifestWidths[col]); err != nil {
			x.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	var (
		row                  = 2
		sold, paid           int
		soldCents, paidCents int64
	)
	for _, t := range tickets {
		if t.IsCanceled {
			continue
		}
		values := []interface{}{
			t.SeatLabel, string(t.SeatType), t.ClientName, t.ClientLogin, t.ClientPhone, t.Reference,
			yesNo(t.IsPaid), float64(t.PriceCents) / 100, t.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			if err := setCell(x, manifestSheet, col+1, row, v); err != nil {
				x.Close()
				return nil, fmt.Errorf("failed to set cell at row %d, col %d: %w", row, col+1, err)
			}
		}
		row++
		sold++
		soldCents += t.PriceCents
		if t.IsPaid {
			paid++
			paidCents += t.PriceCents
		}
	}

	if err := x.SetPanes(manifestSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		x.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	flightName := ""
	if f.Name != nil {
		flightName = *f.Name
	}
	summary := [][2]interface{}{
		{"Flight", flightName},
		{"Flight ID", f.ID},
		{"Board ID", f.BoardID},
		{"Departure (UTC)", f.DepartureTime.UTC().Format("2006-01-02 15:04")},
		{"Arrival (UTC)", f.ArrivalTime.UTC().Format("2006-01-02 15:04")},
		{"Tickets", sold},
		{"Paid tickets", paid},
		{"Booked revenue", float64(soldCents) / 100},
		{"Paid revenue", float64(paidCents) / 100},
	}
	for i, kv := range summary {
		if err := setCell(x, summarySheet, 1, i+1, kv[0]); err != nil {
			x.Close()
			return nil, err
		}
		if err := setCell(x, summarySheet, 2, i+1, kv[1]); err != nil {
			x.Close()
			return nil, err
		}
	}
	if err := x.SetColWidth(summarySheet, "A", "B", 20); err != nil {
		x.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := x.WriteTo(&buf); err != nil {
		x.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := x.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(x *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return x.SetCellValue(sheet, cell, value)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
