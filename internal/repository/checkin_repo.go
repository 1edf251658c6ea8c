package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gympoint/internal/db"
)

type CheckInRepository struct {
	DB *sql.DB
}

func NewCheckInRepository(db *sql.DB) *CheckInRepository {
	return &CheckInRepository{DB: db}
}

// AdmitIfBelowCapacity inserts an open check-in unless the user already has
// one or the gym is full, and returns the occupancy after the insert. The
// gym-scoped advisory lock makes the open-record check, the occupancy count
// and the insert one atomic unit: at occupancy max-1 two concurrent check-ins
// admit exactly one.
func (r *CheckInRepository) AdmitIfBelowCapacity(ctx context.Context, rec *db.CheckIn, maxCapacity int) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin check-in tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lockClassCheckIn, rec.GymID); err != nil {
		return 0, fmt.Errorf("lock gym %d: %w", rec.GymID, err)
	}

	var open int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM check_ins
		WHERE user_id = $1 AND gym_id = $2 AND exit_time IS NULL`,
		rec.UserID, rec.GymID,
	).Scan(&open)
	if err != nil {
		return 0, fmt.Errorf("open check-in lookup: %w", err)
	}
	if open > 0 {
		return 0, ErrAlreadyCheckedIn
	}

	var occupancy int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM check_ins
		WHERE gym_id = $1 AND exit_time IS NULL`,
		rec.GymID,
	).Scan(&occupancy)
	if err != nil {
		return 0, fmt.Errorf("occupancy count for gym %d: %w", rec.GymID, err)
	}
	if occupancy >= maxCapacity {
		return 0, ErrCapacityReached
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO check_ins (id, user_id, gym_id, entry_time)
		VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.UserID, rec.GymID, rec.EntryTime)
	if err != nil {
		return 0, fmt.Errorf("insert check-in: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit check-in: %w", err)
	}
	return occupancy + 1, nil
}

// CloseMostRecent sets exit_time on the newest open record for the user at
// the gym. The invariant allows only one open record; ordering by entry_time
// is a defensive tie-break.
func (r *CheckInRepository) CloseMostRecent(ctx context.Context, userID, gymID int, exit time.Time) error {
	var id string
	err := r.DB.QueryRowContext(ctx, `
		UPDATE check_ins SET exit_time = $1
		WHERE id = (
			SELECT id FROM check_ins
			WHERE user_id = $2 AND gym_id = $3 AND exit_time IS NULL
			ORDER BY entry_time DESC
			LIMIT 1
		)
		RETURNING id`,
		exit, userID, gymID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("close check-in for user %d at gym %d: %w", userID, gymID, err)
	}
	return nil
}

// Intersecting returns every check-in whose presence interval touches
// [start, end], open records included.
func (r *CheckInRepository) Intersecting(ctx context.Context, gymID int, start, end time.Time) ([]db.CheckIn, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, gym_id, entry_time, exit_time
		FROM check_ins
		WHERE gym_id = $1 AND entry_time <= $2
		  AND (exit_time IS NULL OR exit_time >= $3)
		ORDER BY entry_time`,
		gymID, end, start)
	if err != nil {
		return nil, fmt.Errorf("query check-ins for gym %d: %w", gymID, err)
	}
	defer rows.Close()

	var records []db.CheckIn
	for rows.Next() {
		var rec db.CheckIn
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.GymID, &rec.EntryTime, &rec.ExitTime); err != nil {
			return nil, fmt.Errorf("scan check-in row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
