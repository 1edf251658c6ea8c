package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"gympoint/internal/db"
	"gympoint/internal/entities"
	"gympoint/internal/repository"
)

// ReservationStore is the slice of the reservation repository this service
// needs. CreateIfFree is the atomic admission: overlap check and insert as
// one unit, ErrConflict when a confirmed interval overlaps.
type ReservationStore interface {
	CreateIfFree(ctx context.Context, res *db.Reservation) error
	HasConflict(ctx context.Context, resourceID int, start, end time.Time) (bool, error)
	GetByCode(ctx context.Context, code string) (*db.Reservation, error)
	Cancel(ctx context.Context, code string, at time.Time) error
	SetAttended(ctx context.Context, code string, at time.Time) error
	List(ctx context.Context, resourceID int, status, date string) ([]db.Reservation, error)
}

type ResourceDirectory interface {
	ResourceByID(ctx context.Context, id int) (*db.Resource, error)
	UserExists(ctx context.Context, id int) (bool, error)
}

type ReservationService struct {
	store    ReservationStore
	dir      ResourceDirectory
	notifier Notifier
	now      func() time.Time
}

func NewReservationService(store ReservationStore, dir ResourceDirectory, notifier Notifier) *ReservationService {
	return &ReservationService{
		store:    store,
		dir:      dir,
		notifier: notifier,
		now:      time.Now,
	}
}

// Reserve admits a [start, end) interval on a resource. Validation failures
// never reach the store; the no-overlap decision itself happens inside the
// store's atomic CreateIfFree.
func (s *ReservationService) Reserve(ctx context.Context, req entities.ReservationRequest) (*db.Reservation, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidInterval
	}

	resource, err := s.dir.ResourceByID(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	if !resource.Available {
		return nil, ErrResourceUnavailable
	}

	exists, err := s.dir.UserExists(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrNotFound
	}

	now := s.now().UTC()
	reservation := &db.Reservation{
		Code:       uuid.NewString(),
		ResourceID: req.ResourceID,
		UserID:     req.UserID,
		StartTime:  req.StartTime.UTC(),
		EndTime:    req.EndTime.UTC(),
		Status:     db.StatusConfirmed,
		CreatedAt:  now,
	}
	if err := s.store.CreateIfFree(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *ReservationService) GetByCode(ctx context.Context, code string) (*db.Reservation, error) {
	return s.store.GetByCode(ctx, code)
}

func (s *ReservationService) Cancel(ctx context.Context, code string) error {
	reservation, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := s.store.Cancel(ctx, code, s.now().UTC()); err != nil {
		return err
	}

	notification := entities.Notification{
		UserID:      reservation.UserID,
		Type:        entities.NotificationReservationChange,
		Title:       "Reservation cancelled",
		Description: fmt.Sprintf("Your reservation %s for %s was cancelled.", reservation.Code, reservation.StartTime.Format("02 Jan 2006 15:04 MST")),
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		log.Printf("Notify: cancellation notice for reservation %s failed: %v", code, err)
	}
	return nil
}

// ConfirmAttendance records that the member showed up. The store enforces
// the set-at-most-once rule; a second submission surfaces as
// repository.ErrAttendanceSet.
func (s *ReservationService) ConfirmAttendance(ctx context.Context, code string) error {
	return s.store.SetAttended(ctx, code, s.now().UTC())
}

func (s *ReservationService) List(ctx context.Context, resourceID int, status, date string) (*entities.ReservationsList, error) {
	reservations, err := s.store.List(ctx, resourceID, status, date)
	if err != nil {
		return nil, err
	}
	list := &entities.ReservationsList{Total: len(reservations)}
	for _, res := range reservations {
		list.Reservations = append(list.Reservations, toReservationResponse(&res))
	}
	return list, nil
}

// ValidateRoutineDay reports, per planned interval, whether it could be
// booked right now. Read-only: nothing is reserved and no lock is taken, so
// the answer can go stale the moment it is produced.
func (s *ReservationService) ValidateRoutineDay(ctx context.Context, items []entities.RoutineDayItem) (*entities.RoutineDayValidation, error) {
	result := &entities.RoutineDayValidation{IsOverallAvailable: true}
	for _, item := range items {
		availability := entities.RoutineItemAvailability{
			ResourceID: item.ResourceID,
			StartTime:  item.StartTime,
			EndTime:    item.EndTime,
			Available:  true,
		}

		switch {
		case !item.EndTime.After(item.StartTime):
			availability.Available = false
			availability.Reason = ErrInvalidInterval.Error()
		default:
			resource, err := s.dir.ResourceByID(ctx, item.ResourceID)
			if errors.Is(err, repository.ErrNotFound) {
				availability.Available = false
				availability.Reason = "unknown resource"
			} else if err != nil {
				return nil, err
			} else if !resource.Available {
				availability.Available = false
				availability.Reason = ErrResourceUnavailable.Error()
			} else {
				conflict, err := s.store.HasConflict(ctx, item.ResourceID, item.StartTime, item.EndTime)
				if err != nil {
					return nil, err
				}
				if conflict {
					availability.Available = false
					availability.Reason = repository.ErrConflict.Error()
				}
			}
		}

		if !availability.Available {
			result.IsOverallAvailable = false
		}
		result.Items = append(result.Items, availability)
	}
	return result, nil
}

func toReservationResponse(res *db.Reservation) entities.ReservationResponse {
	return entities.ReservationResponse{
		ID:         res.ID,
		Code:       res.Code,
		ResourceID: res.ResourceID,
		UserID:     res.UserID,
		StartTime:  res.StartTime,
		EndTime:    res.EndTime,
		Status:     res.Status,
		Attended:   res.Attended,
		CreatedAt:  res.CreatedAt,
		UpdatedAt:  res.UpdatedAt,
	}
}
