package service

import "errors"

// Validation outcomes, rejected before any admission attempt.
var (
	ErrInvalidInterval     = errors.New("end time must be after start time")
	ErrResourceUnavailable = errors.New("resource is not open for booking")
)
