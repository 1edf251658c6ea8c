package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gympoint/internal/db"
)

func ts(hour int) time.Time {
	return time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
}

func closedAt(hour, min int) *time.Time {
	t := time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
	return &t
}

func TestBuildOccupancySeries(t *testing.T) {
	records := []db.CheckIn{
		{ID: "a", EntryTime: ts(8).Add(30 * time.Minute), ExitTime: closedAt(10, 30)},
		{ID: "b", EntryTime: ts(9), ExitTime: closedAt(11, 0)}, // exit exactly on a boundary
		{ID: "c", EntryTime: ts(10)},                           // still open
	}

	points := buildOccupancySeries(records, ts(8), ts(12))
	require.Len(t, points, 5)

	// 08:00 nobody, 09:00 a+b, 10:00 a+b+c, 11:00 c only (b's exit at 11:00
	// means not present at 11:00, half-open), 12:00 c only.
	expected := []int{0, 2, 3, 1, 1}
	for i, point := range points {
		assert.Equal(t, ts(8+i), point.Timestamp)
		assert.Equal(t, expected[i], point.Occupancy, "boundary %s", point.Timestamp)
	}
}

func TestBuildOccupancySeriesEntryOnBoundary(t *testing.T) {
	records := []db.CheckIn{
		{ID: "a", EntryTime: ts(9), ExitTime: closedAt(9, 0)},
	}
	// Entry and exit at the same instant: present never.
	points := buildOccupancySeries(records, ts(9), ts(9))
	require.Len(t, points, 1)
	assert.Equal(t, 0, points[0].Occupancy)
}

func TestOccupancyReport(t *testing.T) {
	store := &fakeCheckInStore{}
	entry := ts(7)
	exit := ts(9)
	store.records = []*db.CheckIn{
		{ID: "a", GymID: 1, UserID: 10, EntryTime: entry, ExitTime: &exit},
		{ID: "b", GymID: 2, UserID: 11, EntryTime: entry}, // other gym, excluded
	}
	svc := NewOccupancyService(store)

	report, err := svc.Report(context.Background(), 1, ts(8), ts(10))
	require.NoError(t, err)
	assert.Equal(t, 1, report.GymID)
	require.Len(t, report.Points, 3)
	assert.Equal(t, 1, report.Points[0].Occupancy) // 08:00
	assert.Equal(t, 0, report.Points[1].Occupancy) // 09:00, exit boundary
	assert.Equal(t, 0, report.Points[2].Occupancy) // 10:00
}

func TestOccupancyReportInvalidRange(t *testing.T) {
	svc := NewOccupancyService(&fakeCheckInStore{})
	_, err := svc.Report(context.Background(), 1, ts(10), ts(8))
	assert.ErrorIs(t, err, ErrInvalidInterval)
}
