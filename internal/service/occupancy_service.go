package service

import (
	"context"
	"sort"
	"time"

	"gympoint/internal/db"
	"gympoint/internal/entities"
)

type OccupancyStore interface {
	Intersecting(ctx context.Context, gymID int, start, end time.Time) ([]db.CheckIn, error)
}

// OccupancyService reconstructs occupancy-over-time from stored check-in
// intervals. Pure read path.
type OccupancyService struct {
	store OccupancyStore
}

func NewOccupancyService(store OccupancyStore) *OccupancyService {
	return &OccupancyService{store: store}
}

// Report returns the open-check-in count at every hour boundary in
// [start, end].
func (s *OccupancyService) Report(ctx context.Context, gymID int, start, end time.Time) (*entities.OccupancyReport, error) {
	if end.Before(start) {
		return nil, ErrInvalidInterval
	}
	records, err := s.store.Intersecting(ctx, gymID, start, end)
	if err != nil {
		return nil, err
	}
	return &entities.OccupancyReport{
		GymID:     gymID,
		StartDate: start,
		EndDate:   end,
		Points:    buildOccupancySeries(records, start, end),
	}, nil
}

// buildOccupancySeries is a sweep-line over entry/exit events. At a boundary
// dt a record counts iff entry <= dt and (exit is nil or exit > dt): entry
// and exit events at exactly dt are both applied before emitting, which
// gives the half-open semantics (an exit at dt means no longer present, an
// entry at dt means present).
func buildOccupancySeries(records []db.CheckIn, start, end time.Time) []entities.OccupancyPoint {
	type event struct {
		at    time.Time
		delta int
	}
	events := make([]event, 0, 2*len(records))
	for _, rec := range records {
		events = append(events, event{at: rec.EntryTime, delta: 1})
		if rec.ExitTime != nil {
			events = append(events, event{at: *rec.ExitTime, delta: -1})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].at.Before(events[j].at) })

	var points []entities.OccupancyPoint
	running := 0
	next := 0
	for dt := start; !dt.After(end); dt = dt.Add(time.Hour) {
		for next < len(events) && !events[next].at.After(dt) {
			running += events[next].delta
			next++
		}
		points = append(points, entities.OccupancyPoint{Timestamp: dt, Occupancy: running})
	}
	return points
}
