package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"gympoint/internal/entities"
)

// Notifier delivers a notification to one user. Delivery is best-effort:
// callers log a failure and move on, an admission or status change is never
// rolled back because a notification did not go out.
type Notifier interface {
	Notify(ctx context.Context, n entities.Notification) error
}

// NotifyService posts notifications to the external notification endpoint
// configured by NOTIFY_URL.
type NotifyService struct {
	client *http.Client
}

func NewNotifyService() *NotifyService {
	return &NotifyService{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *NotifyService) Notify(ctx context.Context, n entities.Notification) error {
	endpoint := os.Getenv("NOTIFY_URL")
	if endpoint == "" {
		return fmt.Errorf("NOTIFY_URL not set, notification for user %d dropped", n.UserID)
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification to user %d: %w", n.UserID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned %d for user %d", resp.StatusCode, n.UserID)
	}
	return nil
}
