package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gympoint/internal/db"
	"gympoint/internal/entities"
	"gympoint/internal/repository"
)

func newReservationFixture() (*ReservationService, *fakeReservationStore, *fakeDirectory, *fakeNotifier) {
	store := &fakeReservationStore{}
	dir := newFakeDirectory()
	dir.resources[1] = &db.Resource{ID: 1, GymID: 1, Name: "Leg press", Kind: db.KindMachine, Available: true}
	dir.resources[2] = &db.Resource{ID: 2, GymID: 1, Name: "Rowing machine", Kind: db.KindMachine, Available: false}
	dir.users[10] = &db.User{ID: 10, Name: "Ana"}
	dir.users[11] = &db.User{ID: 11, Name: "Bruno"}
	notifier := &fakeNotifier{}
	svc := NewReservationService(store, dir, notifier)
	return svc, store, dir, notifier
}

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func TestReserveBackToBackIsNotAConflict(t *testing.T) {
	svc, _, _, _ := newReservationFixture()
	ctx := context.Background()

	first, err := svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 10, StartTime: at(10, 0), EndTime: at(11, 0)})
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, first.Status)
	assert.NotEmpty(t, first.Code)

	// [11:00, 12:00) touches [10:00, 11:00) only at the boundary.
	_, err = svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 11, StartTime: at(11, 0), EndTime: at(12, 0)})
	require.NoError(t, err)

	// [10:30, 10:45) lands inside the first interval.
	_, err = svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 11, StartTime: at(10, 30), EndTime: at(10, 45)})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestReserveValidation(t *testing.T) {
	svc, _, _, _ := newReservationFixture()
	ctx := context.Background()

	_, err := svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 10, StartTime: at(11, 0), EndTime: at(10, 0)})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 10, StartTime: at(10, 0), EndTime: at(10, 0)})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 99, UserID: 10, StartTime: at(10, 0), EndTime: at(11, 0)})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 2, UserID: 10, StartTime: at(10, 0), EndTime: at(11, 0)})
	assert.ErrorIs(t, err, ErrResourceUnavailable)

	_, err = svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 99, StartTime: at(10, 0), EndTime: at(11, 0)})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReserveCancelledIntervalDoesNotBlock(t *testing.T) {
	svc, store, _, _ := newReservationFixture()
	ctx := context.Background()

	first, err := svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 10, StartTime: at(10, 0), EndTime: at(11, 0)})
	require.NoError(t, err)
	require.NoError(t, store.Cancel(ctx, first.Code, at(9, 0)))

	_, err = svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 11, StartTime: at(10, 0), EndTime: at(11, 0)})
	assert.NoError(t, err)
}

func TestReserveConcurrentOverlapAdmitsOne(t *testing.T) {
	svc, _, _, _ := newReservationFixture()
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 10, StartTime: at(10, 0), EndTime: at(11, 0)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		default:
			require.ErrorIs(t, err, repository.ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
}

func TestConfirmAttendanceSetOnce(t *testing.T) {
	svc, store, _, _ := newReservationFixture()
	ctx := context.Background()

	res, err := svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 10, StartTime: at(10, 0), EndTime: at(11, 0)})
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmAttendance(ctx, res.Code))
	stored, err := store.GetByCode(ctx, res.Code)
	require.NoError(t, err)
	require.NotNil(t, stored.Attended)
	assert.True(t, *stored.Attended)
	assert.Equal(t, db.StatusCompleted, stored.Status)

	err = svc.ConfirmAttendance(ctx, res.Code)
	assert.ErrorIs(t, err, repository.ErrAttendanceSet)
}

func TestCancelNotifiesMember(t *testing.T) {
	svc, _, _, notifier := newReservationFixture()
	ctx := context.Background()

	res, err := svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 10, StartTime: at(10, 0), EndTime: at(11, 0)})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, res.Code))
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, 10, notifier.sent[0].UserID)
	assert.Equal(t, entities.NotificationReservationChange, notifier.sent[0].Type)

	err = svc.Cancel(ctx, res.Code)
	assert.ErrorIs(t, err, repository.ErrNotActive)
}

func TestValidateRoutineDay(t *testing.T) {
	svc, _, _, _ := newReservationFixture()
	ctx := context.Background()

	_, err := svc.Reserve(ctx, entities.ReservationRequest{ResourceID: 1, UserID: 10, StartTime: at(10, 0), EndTime: at(11, 0)})
	require.NoError(t, err)

	validation, err := svc.ValidateRoutineDay(ctx, []entities.RoutineDayItem{
		{ResourceID: 1, StartTime: at(11, 0), EndTime: at(11, 30)},
		{ResourceID: 1, StartTime: at(10, 30), EndTime: at(11, 30)},
		{ResourceID: 2, StartTime: at(12, 0), EndTime: at(13, 0)},
		{ResourceID: 99, StartTime: at(12, 0), EndTime: at(13, 0)},
	})
	require.NoError(t, err)
	require.Len(t, validation.Items, 4)
	assert.False(t, validation.IsOverallAvailable)
	assert.True(t, validation.Items[0].Available)
	assert.False(t, validation.Items[1].Available)
	assert.False(t, validation.Items[2].Available)
	assert.False(t, validation.Items[3].Available)
}
