package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gympoint/internal/db"
)

// DirectoryRepository reads the user/gym/resource records owned by the
// external member-management system. This core never writes them except for
// the staff-facing capacity update.
type DirectoryRepository struct {
	DB *sql.DB
}

func NewDirectoryRepository(db *sql.DB) *DirectoryRepository {
	return &DirectoryRepository{DB: db}
}

func (r *DirectoryRepository) UserExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user existence check: %w", err)
	}
	return exists, nil
}

func (r *DirectoryRepository) UserByID(ctx context.Context, id int) (*db.User, error) {
	var u db.User
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, email, phone FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}
	return &u, nil
}

func (r *DirectoryRepository) GymByID(ctx context.Context, id int) (*db.Gym, error) {
	var g db.Gym
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, max_capacity FROM gyms WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.MaxCapacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query gym %d: %w", id, err)
	}
	return &g, nil
}

func (r *DirectoryRepository) ResourceByID(ctx context.Context, id int) (*db.Resource, error) {
	var res db.Resource
	err := r.DB.QueryRowContext(ctx, `SELECT id, gym_id, name, kind, available FROM resources WHERE id = $1`, id).
		Scan(&res.ID, &res.GymID, &res.Name, &res.Kind, &res.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query resource %d: %w", id, err)
	}
	return &res, nil
}

func (r *DirectoryRepository) GymAdmins(ctx context.Context, gymID int) ([]db.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.phone
		FROM gym_admins ga
		JOIN users u ON u.id = ga.user_id
		WHERE ga.gym_id = $1`, gymID)
	if err != nil {
		return nil, fmt.Errorf("query admins for gym %d: %w", gymID, err)
	}
	defer rows.Close()

	var admins []db.User
	for rows.Next() {
		var u db.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone); err != nil {
			return nil, fmt.Errorf("scan gym admin: %w", err)
		}
		admins = append(admins, u)
	}
	return admins, rows.Err()
}

func (r *DirectoryRepository) UpdateGymCapacity(ctx context.Context, gymID, maxCapacity int) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE gyms SET max_capacity = $1 WHERE id = $2`, maxCapacity, gymID)
	if err != nil {
		return fmt.Errorf("update capacity for gym %d: %w", gymID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
