package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"gympoint/internal/db"
	"gympoint/internal/entities"
	"gympoint/internal/repository"
)

// Warning threshold as a fraction of max capacity, and the minimum distance
// between two capacity alerts for the same gym.
const (
	DefaultWarnFraction   = 0.8
	DefaultCooldownWindow = 30 * time.Minute
)

// CheckInStore is the admission contract: AdmitIfBelowCapacity performs the
// open-record check, the occupancy count and the insert as one atomic unit
// and returns the occupancy after the insert.
type CheckInStore interface {
	AdmitIfBelowCapacity(ctx context.Context, rec *db.CheckIn, maxCapacity int) (int, error)
	CloseMostRecent(ctx context.Context, userID, gymID int, exit time.Time) error
}

type GymDirectory interface {
	GymByID(ctx context.Context, id int) (*db.Gym, error)
	UserExists(ctx context.Context, id int) (bool, error)
	GymAdmins(ctx context.Context, gymID int) ([]db.User, error)
}

type CheckInService struct {
	store        CheckInStore
	dir          GymDirectory
	gate         CooldownGate
	notifier     Notifier
	warnFraction float64
	now          func() time.Time
}

func NewCheckInService(store CheckInStore, dir GymDirectory, gate CooldownGate, notifier Notifier) *CheckInService {
	return &CheckInService{
		store:        store,
		dir:          dir,
		gate:         gate,
		notifier:     notifier,
		warnFraction: DefaultWarnFraction,
		now:          time.Now,
	}
}

// CheckIn admits a user onto the gym floor. The existence checks are plain
// validation; the capacity decision itself lives in the store's atomic
// admission, so two concurrent check-ins at max-1 occupancy admit exactly
// one. The capacity warning runs after the admission and never affects it.
func (s *CheckInService) CheckIn(ctx context.Context, userID, gymID int) (*db.CheckIn, error) {
	gym, err := s.dir.GymByID(ctx, gymID)
	if err != nil {
		return nil, err
	}
	exists, err := s.dir.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrNotFound
	}

	rec := &db.CheckIn{
		ID:        uuid.NewString(),
		UserID:    userID,
		GymID:     gymID,
		EntryTime: s.now().UTC(),
	}
	occupancy, err := s.store.AdmitIfBelowCapacity(ctx, rec, gym.MaxCapacity)
	if err != nil {
		return nil, err
	}

	s.evaluateCapacityWarning(ctx, gym, occupancy)
	return rec, nil
}

// CheckOut closes the user's open check-in.
func (s *CheckInService) CheckOut(ctx context.Context, userID, gymID int) error {
	if _, err := s.dir.GymByID(ctx, gymID); err != nil {
		return err
	}
	return s.store.CloseMostRecent(ctx, userID, gymID, s.now().UTC())
}

// evaluateCapacityWarning alerts the gym's admins when occupancy reaches the
// warning threshold, at most once per cooldown window. Admin deliveries are
// independent: one failing does not block the rest.
func (s *CheckInService) evaluateCapacityWarning(ctx context.Context, gym *db.Gym, occupancy int) {
	threshold := int(float64(gym.MaxCapacity) * s.warnFraction)
	if occupancy < threshold {
		return
	}

	ok, err := s.gate.Acquire(ctx, fmt.Sprintf("gym:%d:capacity", gym.ID), s.now())
	if err != nil {
		log.Printf("Notify: cooldown gate for gym %d failed: %v", gym.ID, err)
		return
	}
	if !ok {
		return
	}

	admins, err := s.dir.GymAdmins(ctx, gym.ID)
	if err != nil {
		log.Printf("Notify: admin lookup for gym %d failed: %v", gym.ID, err)
		return
	}

	title := fmt.Sprintf("%s is filling up", gym.Name)
	description := fmt.Sprintf("Occupancy at %s is %d of %d.", gym.Name, occupancy, gym.MaxCapacity)
	for _, admin := range admins {
		notification := entities.Notification{
			UserID:      admin.ID,
			Type:        entities.NotificationCapacityWarning,
			Title:       title,
			Description: description,
		}
		if err := s.notifier.Notify(ctx, notification); err != nil {
			log.Printf("Notify: capacity warning to admin %d of gym %d failed: %v", admin.ID, gym.ID, err)
		}
		if admin.Email != "" {
			if err := SendEmailWithSendGrid(admin.Email, admin.Name, title, description); err != nil {
				log.Printf("Notify: capacity warning email to %s failed: %v", admin.Email, err)
			}
		}
	}
}
