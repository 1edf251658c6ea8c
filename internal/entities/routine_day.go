package entities

import "time"

// RoutineDayItem is one machine interval of a planned routine day.
type RoutineDayItem struct {
	ResourceID int       `json:"resource_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

type RoutineItemAvailability struct {
	ResourceID int       `json:"resource_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Available  bool      `json:"available"`
	Reason     string    `json:"reason,omitempty"`
}

type RoutineDayValidation struct {
	IsOverallAvailable bool                      `json:"is_overall_available"`
	Items              []RoutineItemAvailability `json:"items"`
}
