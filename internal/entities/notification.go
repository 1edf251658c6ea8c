package entities

// Notification is the outbound payload sent to the external notification
// endpoint. Delivery is fire-and-forget; failures are logged only.
type Notification struct {
	UserID      int    `json:"userId"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notification types.
const (
	NotificationCapacityWarning   = "capacity_warning"
	NotificationMissedReservation = "missed_reservation"
	NotificationReservationChange = "reservation_change"
)
