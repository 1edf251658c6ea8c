package entities

import "time"

type ReservationRequest struct {
	ResourceID int       `json:"resource_id"`
	UserID     int       `json:"user_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

type ReservationResponse struct {
	ID         int       `json:"id"`
	Code       string    `json:"code"`
	ResourceID int       `json:"resource_id"`
	UserID     int       `json:"user_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	Attended   *bool     `json:"attended,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
