package db

import "time"

// Reservation statuses. Rows are never deleted; terminal states keep the
// historical record.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

// Resource kinds.
const (
	KindMachine = "machine"
	KindTrainer = "trainer"
)

// Reservation is an exclusive [StartTime, EndTime) interval on a resource.
// Attended stays nil until an attendance update or the no-show sweep sets it,
// exactly once.
type Reservation struct {
	ID         int
	Code       string
	ResourceID int
	UserID     int
	StartTime  time.Time
	EndTime    time.Time
	Status     string
	Attended   *bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CheckIn is a presence interval at a gym. ExitTime nil means the user is
// currently inside.
type CheckIn struct {
	ID        string
	UserID    int
	GymID     int
	EntryTime time.Time
	ExitTime  *time.Time
}

type Gym struct {
	ID          int
	Name        string
	MaxCapacity int
}

type Resource struct {
	ID        int
	GymID     int
	Name      string
	Kind      string
	Available bool
}

type User struct {
	ID    int
	Name  string
	Email string
	Phone string
}

type Staff struct {
	ID           int
	Email        string
	PasswordHash string
}
