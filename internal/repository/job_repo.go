package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"gympoint/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// OverdueUnattended returns confirmed reservations whose start time passed
// the cutoff and whose attendance was never recorded. Rows with attended
// already set are excluded, which is what makes the sweep idempotent.
func (r *JobRepository) OverdueUnattended(ctx context.Context, cutoff time.Time) ([]db.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, code, resource_id, user_id, start_time, end_time
		FROM reservations
		WHERE status = $1 AND attended IS NULL AND start_time <= $2`,
		db.StatusConfirmed, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query overdue reservations: %w", err)
	}
	defer rows.Close()

	var overdue []db.Reservation
	for rows.Next() {
		var res db.Reservation
		if err := rows.Scan(&res.ID, &res.Code, &res.ResourceID, &res.UserID, &res.StartTime, &res.EndTime); err != nil {
			return nil, fmt.Errorf("scan overdue reservation: %w", err)
		}
		overdue = append(overdue, res)
	}
	return overdue, rows.Err()
}

// MarkNoShow flips a batch of reservations to no_show with attended = false.
// The attended IS NULL guard is kept in the predicate so a concurrent
// attendance update wins over the sweep.
func (r *JobRepository) MarkNoShow(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := r.DB.ExecContext(ctx, `
		UPDATE reservations
		SET status = $1, attended = FALSE, updated_at = NOW()
		WHERE id = ANY($2) AND attended IS NULL`,
		db.StatusNoShow, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark reservations as no_show: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Sweep: could not get rows affected: %v", err)
	} else {
		log.Printf("Sweep: marked %d reservations as %s", rowsAffected, db.StatusNoShow)
	}
	return nil
}
