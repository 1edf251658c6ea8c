package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gympoint/internal/db"
)

// Sentinel admission outcomes. Callers branch with errors.Is instead of
// parsing messages.
var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("interval overlaps a confirmed reservation")
	ErrNotActive        = errors.New("reservation is not confirmed")
	ErrAttendanceSet    = errors.New("attendance already recorded")
	ErrAlreadyCheckedIn = errors.New("user already has an open check-in")
	ErrCapacityReached  = errors.New("gym is at maximum capacity")
)

// Advisory lock key classes. The second lock key is the resource or gym id,
// so admissions serialize per resource, not globally.
const (
	lockClassReservation = 1
	lockClassCheckIn     = 2
)

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: db}
}

// CreateIfFree inserts the reservation unless a confirmed interval on the
// same resource overlaps [StartTime, EndTime). The transaction-scoped
// advisory lock serializes the overlap check and the insert per resource,
// also across service instances sharing the database, so two concurrent
// requests for overlapping windows cannot both pass the check.
func (r *ReservationRepository) CreateIfFree(ctx context.Context, res *db.Reservation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reservation tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lockClassReservation, res.ResourceID); err != nil {
		return fmt.Errorf("lock resource %d: %w", res.ResourceID, err)
	}

	// Half-open intervals: e.end == start is back-to-back, not a conflict.
	var clashes int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE resource_id = $1 AND status = $2
		  AND start_time < $3 AND end_time > $4`,
		res.ResourceID, db.StatusConfirmed, res.EndTime, res.StartTime,
	).Scan(&clashes)
	if err != nil {
		return fmt.Errorf("overlap check for resource %d: %w", res.ResourceID, err)
	}
	if clashes > 0 {
		return ErrConflict
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reservations (code, resource_id, user_id, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`,
		res.Code, res.ResourceID, res.UserID, res.StartTime, res.EndTime, res.Status, res.CreatedAt,
	).Scan(&res.ID)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	res.UpdatedAt = res.CreatedAt
	return tx.Commit()
}

// HasConflict is the read-only half of the admission check, used by the
// routine-day validation. It takes no lock; the answer is advisory.
func (r *ReservationRepository) HasConflict(ctx context.Context, resourceID int, start, end time.Time) (bool, error) {
	var clashes int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE resource_id = $1 AND status = $2
		  AND start_time < $3 AND end_time > $4`,
		resourceID, db.StatusConfirmed, end, start,
	).Scan(&clashes)
	if err != nil {
		return false, fmt.Errorf("conflict check for resource %d: %w", resourceID, err)
	}
	return clashes > 0, nil
}

func (r *ReservationRepository) GetByCode(ctx context.Context, code string) (*db.Reservation, error) {
	var res db.Reservation
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, code, resource_id, user_id, start_time, end_time, status, attended, created_at, updated_at
		FROM reservations WHERE code = $1`, code,
	).Scan(&res.ID, &res.Code, &res.ResourceID, &res.UserID, &res.StartTime, &res.EndTime,
		&res.Status, &res.Attended, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query reservation %s: %w", code, err)
	}
	return &res, nil
}

// Cancel moves a confirmed reservation to cancelled. Terminal rows are left
// untouched and reported as ErrNotActive.
func (r *ReservationRepository) Cancel(ctx context.Context, code string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE reservations SET status = $1, updated_at = $2
		WHERE code = $3 AND status = $4`,
		db.StatusCancelled, at, code, db.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("cancel reservation %s: %w", code, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		if _, err := r.GetByCode(ctx, code); err != nil {
			return err
		}
		return ErrNotActive
	}
	return nil
}

// SetAttended records attendance exactly once: the attended IS NULL guard in
// the predicate is the arbiter, a second submission affects zero rows.
func (r *ReservationRepository) SetAttended(ctx context.Context, code string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE reservations SET attended = TRUE, status = $1, updated_at = $2
		WHERE code = $3 AND status = $4 AND attended IS NULL`,
		db.StatusCompleted, at, code, db.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("set attendance for %s: %w", code, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		res, err := r.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if res.Attended != nil {
			return ErrAttendanceSet
		}
		return ErrNotActive
	}
	return nil
}

// List returns reservations filtered by optional resource, status and day of
// start_time, newest first.
func (r *ReservationRepository) List(ctx context.Context, resourceID int, status, date string) ([]db.Reservation, error) {
	query := `
		SELECT id, code, resource_id, user_id, start_time, end_time, status, attended, created_at, updated_at
		FROM reservations WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if resourceID > 0 {
		query += " AND resource_id = $" + strconv.Itoa(idx)
		args = append(args, resourceID)
		idx++
	}
	if status != "" {
		query += " AND status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	if date != "" {
		query += " AND DATE(start_time) = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	query += " ORDER BY start_time DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []db.Reservation
	for rows.Next() {
		var res db.Reservation
		err := rows.Scan(&res.ID, &res.Code, &res.ResourceID, &res.UserID, &res.StartTime, &res.EndTime,
			&res.Status, &res.Attended, &res.CreatedAt, &res.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}
