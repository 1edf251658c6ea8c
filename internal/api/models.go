package api

import "time"

// Check-in
type CheckInRequest struct {
	UserID int `json:"user_id"`
}
type CheckInResponse struct {
	CheckInID string    `json:"check_in_id"`
	EntryTime time.Time `json:"entry_time"`
}

// Reservation
type CreateReservationResponse struct {
	ReservationID   int    `json:"reservation_id"`
	ReservationCode string `json:"reservation_code"`
	Message         string `json:"message"`
}

// Staff auth
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type LoginResponse struct {
	Token string `json:"token"`
}
