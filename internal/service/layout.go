package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/osaka-airlines/internal/database"
	"github.com/iliyamo/osaka-airlines/internal/logger"
	"github.com/iliyamo/osaka-airlines/internal/metrics"
	"github.com/iliyamo/osaka-airlines/internal/model"
	"github.com/iliyamo/osaka-airlines/internal/queue"
	"github.com/iliyamo/osaka-airlines/internal/repository"
)

// MaxLayoutRows and MaxSeatsPerRow bound a single layout.
const (
	MaxLayoutRows  = 200
	MaxSeatsPerRow = 20
)

// LayoutInput is the requested geometry of a new layout generation.
type LayoutInput struct {
	Rows         int `json:"rows"`
	SeatsPerRow  int `json:"seats_per_row"`
	BusinessRows int `json:"business_rows"`
}

// ParseLayoutInput parses form-style dimensions strictly: anything that is
// not a base-10 integer is rejected instead of being read as zero. An empty
// business row count means no business class.
func ParseLayoutInput(rows, seatsPerRow, businessRows string) (LayoutInput, error) {
	var in LayoutInput
	var err error
	if in.Rows, err = parseDim("rows", rows); err != nil {
		return in, err
	}
	if in.SeatsPerRow, err = parseDim("seats_per_row", seatsPerRow); err != nil {
		return in, err
	}
	if strings.TrimSpace(businessRows) != "" {
		if in.BusinessRows, err = parseDim("business_rows", businessRows); err != nil {
			return in, err
		}
	}
	return in, in.Validate()
}

func parseDim(field, v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &InvalidLayoutError{Field: field, Reason: fmt.Sprintf("%q is not an integer", v)}
	}
	return n, nil
}

// Validate checks the dimensions of a layout.
func (in LayoutInput) Validate() error {
	switch {
	case in.Rows <= 0:
		return &InvalidLayoutError{Field: "rows", Reason: "must be positive"}
	case in.SeatsPerRow <= 0:
		return &InvalidLayoutError{Field: "seats_per_row", Reason: "must be positive"}
	case in.Rows > MaxLayoutRows:
		return &InvalidLayoutError{Field: "rows", Reason: fmt.Sprintf("must not exceed %d", MaxLayoutRows)}
	case in.SeatsPerRow > MaxSeatsPerRow:
		return &InvalidLayoutError{Field: "seats_per_row", Reason: fmt.Sprintf("must not exceed %d", MaxSeatsPerRow)}
	case in.BusinessRows < 0:
		return &InvalidLayoutError{Field: "business_rows", Reason: "must not be negative"}
	case in.BusinessRows > in.Rows:
		return &InvalidLayoutError{Field: "business_rows", Reason: "must not exceed rows"}
	}
	return nil
}

// GenerateSeats expands a layout into rows x seatsPerRow board seats. Rows
// up to BusinessRows are Business, the rest Economy.
func GenerateSeats(boardID uint64, version int, in LayoutInput) []model.BoardSeat {
	seats := make([]model.BoardSeat, 0, in.Rows*in.SeatsPerRow)
	for row := 1; row <= in.Rows; row++ {
		st := model.SeatTypeEconomy
		if row <= in.BusinessRows {
			st = model.SeatTypeBusiness
		}
		for seat := 1; seat <= in.SeatsPerRow; seat++ {
			seats = append(seats, model.BoardSeat{
				BoardID:      boardID,
				SeatType:     st,
				RowNumber:    row,
				SeatNumber:   seat,
				SeatsVersion: version,
			})
		}
	}
	return seats
}

// LayoutSummary describes the current layout of a board.
type LayoutSummary struct {
	BoardID      uint64 `json:"board_id"`
	Version      int    `json:"version"`
	Rows         int    `json:"rows"`
	SeatsPerRow  int    `json:"seats_per_row"`
	BusinessRows int    `json:"business_rows"`
	Seats        int    `json:"seats"`
}

// LayoutService publishes and reads board seat layout generations.
type LayoutService struct {
	db      *sql.DB
	boards  *repository.BoardRepo
	seats   *repository.BoardSeatRepo
	events  EventPublisher
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
}

func NewLayoutService(db *sql.DB, boards *repository.BoardRepo, seats *repository.BoardSeatRepo,
	events EventPublisher, m *metrics.Metrics, log logger.Logger) *LayoutService {
	return &LayoutService{db: db, boards: boards, seats: seats, events: events, metrics: m, log: log, now: time.Now}
}

// Publish writes a new layout generation for the board and returns its
// header. The board row is locked for the duration of the transaction so
// concurrent publishers on one board are serialized; the unique keys on
// (board, version) back this up and surface as ErrVersionConflict.
func (s *LayoutService) Publish(ctx context.Context, boardID uint64, in LayoutInput, publishedBy *uint64) (*model.BoardLayout, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var layout *model.BoardLayout
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.boards.LockTx(ctx, tx, boardID); err != nil {
			return err
		}
		maxVersion, err := s.seats.MaxVersionTx(ctx, tx, boardID)
		if err != nil {
			return fmt.Errorf("max version: %w", err)
		}
		next := maxVersion + 1
		if err := s.seats.DeleteVersionTx(ctx, tx, boardID, next); err != nil {
			return fmt.Errorf("clear version %d: %w", next, err)
		}

		l := &model.BoardLayout{
			BoardID:      boardID,
			SeatsVersion: next,
			Rows:         in.Rows,
			SeatsPerRow:  in.SeatsPerRow,
			BusinessRows: in.BusinessRows,
			PublishedBy:  publishedBy,
			PublishedAt:  s.now().UTC(),
		}
		if err := s.seats.CreateLayoutTx(ctx, tx, l); err != nil {
			return err
		}
		if err := s.seats.CreateBulkTx(ctx, tx, GenerateSeats(boardID, next, in)); err != nil {
			return err
		}
		if err := s.boards.SetSeatsAmountTx(ctx, tx, boardID, in.Rows*in.SeatsPerRow); err != nil {
			return fmt.Errorf("update seats amount: %w", err)
		}
		layout = l
		return nil
	})
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("publish_layout").Inc()
		return nil, err
	}

	s.metrics.LayoutsPublished.Inc()
	s.log.Info("seat layout published",
		"board_id", boardID, "version", layout.SeatsVersion,
		"rows", in.Rows, "seats_per_row", in.SeatsPerRow, "business_rows", in.BusinessRows)
	emit(ctx, s.events, s.log, queue.EventLayoutPublished, queue.LayoutPublished{
		BoardID:      boardID,
		Version:      layout.SeatsVersion,
		Rows:         in.Rows,
		SeatsPerRow:  in.SeatsPerRow,
		BusinessRows: in.BusinessRows,
		PublishedBy:  publishedBy,
	}, layout.PublishedAt)
	return layout, nil
}

// Current returns the newest generation of the board. A board without a
// layout yields version 0 and no seats.
func (s *LayoutService) Current(ctx context.Context, boardID uint64) (int, []model.BoardSeat, error) {
	if _, err := s.boards.GetByID(ctx, boardID); err != nil {
		return 0, nil, err
	}
	return s.seats.CurrentLayout(ctx, boardID)
}

// Versions lists the published generations, newest first.
func (s *LayoutService) Versions(ctx context.Context, boardID uint64) ([]model.BoardLayout, error) {
	if _, err := s.boards.GetByID(ctx, boardID); err != nil {
		return nil, err
	}
	return s.seats.ListLayouts(ctx, boardID)
}

// Summary derives the geometry of the current layout from its seats.
func (s *LayoutService) Summary(ctx context.Context, boardID uint64) (*LayoutSummary, error) {
	version, seats, err := s.Current(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return summarize(boardID, version, seats), nil
}

func summarize(boardID uint64, version int, seats []model.BoardSeat) *LayoutSummary {
	sum := &LayoutSummary{BoardID: boardID, Version: version, Seats: len(seats)}
	business := map[int]bool{}
	for _, st := range seats {
		sum.Rows = max(sum.Rows, st.RowNumber)
		sum.SeatsPerRow = max(sum.SeatsPerRow, st.SeatNumber)
		if st.SeatType == model.SeatTypeBusiness {
			business[st.RowNumber] = true
		}
	}
	sum.BusinessRows = len(business)
	return sum
}
