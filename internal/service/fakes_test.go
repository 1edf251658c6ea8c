package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"gympoint/internal/db"
	"gympoint/internal/entities"
	"gympoint/internal/repository"
)

// fakeNotifier records deliveries and optionally fails them.
type fakeNotifier struct {
	mu      sync.Mutex
	sent    []entities.Notification
	failAll bool
}

func (n *fakeNotifier) Notify(_ context.Context, notification entities.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failAll {
		return errors.New("delivery failed")
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// fakeDirectory serves the existence lookups for every service.
type fakeDirectory struct {
	resources map[int]*db.Resource
	gyms      map[int]*db.Gym
	users     map[int]*db.User
	admins    map[int][]db.User
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		resources: make(map[int]*db.Resource),
		gyms:      make(map[int]*db.Gym),
		users:     make(map[int]*db.User),
		admins:    make(map[int][]db.User),
	}
}

func (d *fakeDirectory) ResourceByID(_ context.Context, id int) (*db.Resource, error) {
	res, ok := d.resources[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return res, nil
}

func (d *fakeDirectory) GymByID(_ context.Context, id int) (*db.Gym, error) {
	gym, ok := d.gyms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return gym, nil
}

func (d *fakeDirectory) UserExists(_ context.Context, id int) (bool, error) {
	_, ok := d.users[id]
	return ok, nil
}

func (d *fakeDirectory) UserByID(_ context.Context, id int) (*db.User, error) {
	user, ok := d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (d *fakeDirectory) GymAdmins(_ context.Context, gymID int) ([]db.User, error) {
	return d.admins[gymID], nil
}

// fakeReservationStore keeps intervals in memory behind a mutex so the
// check+insert is one critical section, the same contract the SQL
// implementation provides with its per-resource advisory lock.
type fakeReservationStore struct {
	mu           sync.Mutex
	nextID       int
	reservations []*db.Reservation
}

func (s *fakeReservationStore) CreateIfFree(_ context.Context, res *db.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.reservations {
		if e.ResourceID == res.ResourceID && e.Status == db.StatusConfirmed &&
			e.StartTime.Before(res.EndTime) && e.EndTime.After(res.StartTime) {
			return repository.ErrConflict
		}
	}
	s.nextID++
	res.ID = s.nextID
	res.UpdatedAt = res.CreatedAt
	s.reservations = append(s.reservations, res)
	return nil
}

func (s *fakeReservationStore) HasConflict(_ context.Context, resourceID int, start, end time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.reservations {
		if e.ResourceID == resourceID && e.Status == db.StatusConfirmed &&
			e.StartTime.Before(end) && e.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReservationStore) GetByCode(_ context.Context, code string) (*db.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.reservations {
		if e.Code == code {
			return e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeReservationStore) Cancel(_ context.Context, code string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.reservations {
		if e.Code == code {
			if e.Status != db.StatusConfirmed {
				return repository.ErrNotActive
			}
			e.Status = db.StatusCancelled
			e.UpdatedAt = at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeReservationStore) SetAttended(_ context.Context, code string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.reservations {
		if e.Code == code {
			if e.Attended != nil {
				return repository.ErrAttendanceSet
			}
			if e.Status != db.StatusConfirmed {
				return repository.ErrNotActive
			}
			attended := true
			e.Attended = &attended
			e.Status = db.StatusCompleted
			e.UpdatedAt = at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeReservationStore) List(_ context.Context, resourceID int, status, _ string) ([]db.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Reservation
	for _, e := range s.reservations {
		if resourceID > 0 && e.ResourceID != resourceID {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

// fakeCheckInStore mirrors the atomic admission contract of the SQL
// repository: the whole decide-and-insert runs under one lock.
type fakeCheckInStore struct {
	mu      sync.Mutex
	records []*db.CheckIn
}

func (s *fakeCheckInStore) AdmitIfBelowCapacity(_ context.Context, rec *db.CheckIn, maxCapacity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	occupancy := 0
	for _, e := range s.records {
		if e.GymID != rec.GymID || e.ExitTime != nil {
			continue
		}
		if e.UserID == rec.UserID {
			return 0, repository.ErrAlreadyCheckedIn
		}
		occupancy++
	}
	if occupancy >= maxCapacity {
		return 0, repository.ErrCapacityReached
	}
	s.records = append(s.records, rec)
	return occupancy + 1, nil
}

func (s *fakeCheckInStore) CloseMostRecent(_ context.Context, userID, gymID int, exit time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *db.CheckIn
	for _, e := range s.records {
		if e.UserID == userID && e.GymID == gymID && e.ExitTime == nil {
			if newest == nil || e.EntryTime.After(newest.EntryTime) {
				newest = e
			}
		}
	}
	if newest == nil {
		return repository.ErrNotFound
	}
	newest.ExitTime = &exit
	return nil
}

func (s *fakeCheckInStore) Intersecting(_ context.Context, gymID int, start, end time.Time) ([]db.CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.CheckIn
	for _, e := range s.records {
		if e.GymID != gymID {
			continue
		}
		if e.EntryTime.After(end) {
			continue
		}
		if e.ExitTime != nil && e.ExitTime.Before(start) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

// fakeSweepStore serves the reconciler against the same reservation slice.
type fakeSweepStore struct {
	mu           sync.Mutex
	reservations []*db.Reservation
}

func (s *fakeSweepStore) OverdueUnattended(_ context.Context, cutoff time.Time) ([]db.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Reservation
	for _, e := range s.reservations {
		if e.Status == db.StatusConfirmed && e.Attended == nil && !e.StartTime.After(cutoff) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *fakeSweepStore) MarkNoShow(_ context.Context, ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := make(map[int]bool, len(ids))
	for _, id := range ids {
		marked[id] = true
	}
	for _, e := range s.reservations {
		if marked[e.ID] && e.Attended == nil {
			attended := false
			e.Attended = &attended
			e.Status = db.StatusNoShow
		}
	}
	return nil
}
