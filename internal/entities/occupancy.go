package entities

import "time"

// OccupancyPoint is the number of open check-ins at one hour boundary.
type OccupancyPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Occupancy int       `json:"occupancy"`
}

type OccupancyReport struct {
	GymID     int              `json:"gym_id"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	Points    []OccupancyPoint `json:"points"`
}
