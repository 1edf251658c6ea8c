package repository

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"gympoint/internal/db"
)

type StaffAuthRepository interface {
	GetByEmail(email string) (*db.Staff, error)
	CreateStaff(email, password string) error
}

type staffAuthRepository struct {
	db *sql.DB
}

func NewStaffAuthRepository(db *sql.DB) StaffAuthRepository {
	return &staffAuthRepository{db: db}
}

func (r *staffAuthRepository) GetByEmail(email string) (*db.Staff, error) {
	var staff db.Staff
	err := r.db.QueryRow("SELECT id, email, password_hash FROM staff WHERE email = $1", email).
		Scan(&staff.ID, &staff.Email, &staff.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

func (r *staffAuthRepository) CreateStaff(email, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = r.db.Exec("INSERT INTO staff (email, password_hash) VALUES ($1, $2)", email, hashedPassword)
	return err
}
