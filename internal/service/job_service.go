package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gympoint/internal/db"
	"gympoint/internal/entities"
	"gympoint/internal/repository"
)

// DefaultGracePeriod is how long after a reservation's start attendance may
// still be confirmed before the sweep marks it a no-show.
const DefaultGracePeriod = 15 * time.Minute

type SweepStore interface {
	OverdueUnattended(ctx context.Context, cutoff time.Time) ([]db.Reservation, error)
	MarkNoShow(ctx context.Context, ids []int) error
}

type MemberDirectory interface {
	UserByID(ctx context.Context, id int) (*db.User, error)
}

// JobService runs the periodic no-show sweep. One sweep at a time; the cron
// wiring in main skips a tick while the previous one is in flight.
type JobService struct {
	store    SweepStore
	dir      MemberDirectory
	notifier Notifier
	grace    time.Duration
	now      func() time.Time
}

func NewJobService(store SweepStore, dir MemberDirectory, notifier Notifier) *JobService {
	return &JobService{
		store:    store,
		dir:      dir,
		notifier: notifier,
		grace:    DefaultGracePeriod,
		now:      time.Now,
	}
}

// SweepMissedReservations marks overdue, unattended reservations as no-shows
// and notifies the members afterwards. The selection predicate excludes rows
// whose attendance is already set, so re-running after a partial failure
// never double-processes a row. A returned error means the whole batch is
// retried on the next tick.
func (s *JobService) SweepMissedReservations(ctx context.Context) error {
	cutoff := s.now().UTC().Add(-s.grace)

	overdue, err := s.store.OverdueUnattended(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("sweep: select overdue reservations: %w", err)
	}
	if len(overdue) == 0 {
		return nil
	}
	log.Printf("Sweep: found %d reservations past the grace period", len(overdue))

	ids := make([]int, 0, len(overdue))
	for _, res := range overdue {
		ids = append(ids, res.ID)
	}
	if err := s.store.MarkNoShow(ctx, ids); err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	// Notifications come after persistence and are best-effort: a failed
	// delivery is logged, never retried here, and never undoes the marking.
	for _, res := range overdue {
		s.notifyMissed(ctx, res)
	}
	return nil
}

func (s *JobService) notifyMissed(ctx context.Context, res db.Reservation) {
	notification := entities.Notification{
		UserID:      res.UserID,
		Type:        entities.NotificationMissedReservation,
		Title:       "Missed reservation",
		Description: fmt.Sprintf("Your reservation %s scheduled for %s was marked as missed.", res.Code, res.StartTime.Format("02 Jan 2006 15:04 MST")),
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		log.Printf("Sweep: missed-reservation notice for %s failed: %v", res.Code, err)
	}

	user, err := s.dir.UserByID(ctx, res.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Sweep: user lookup for reservation %s failed: %v", res.Code, err)
		}
		return
	}
	if user.Phone == "" {
		return
	}
	message := fmt.Sprintf("GymPoint: your reservation %s was marked as missed. Book a new slot any time.", res.Code)
	if err := SendSMS(user.Phone, message); err != nil {
		log.Printf("Sweep: missed-reservation SMS for %s failed: %v", res.Code, err)
	}
}
