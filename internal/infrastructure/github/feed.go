package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"BacklogStatus/internal/domain"
	"BacklogStatus/internal/ports"
)

// FeedSource pages through the notifications API, read and unread alike.
type FeedSource struct {
	client *Client
}

var _ ports.NotificationFeedSource = (*FeedSource)(nil)

// NewFeedSource wires the shared client.
func NewFeedSource(client *Client) *FeedSource {
	return &FeedSource{client: client}
}

type notificationDTO struct {
	ID        string `json:"id"`
	UpdatedAt string `json:"updated_at"`
	Unread    *bool  `json:"unread"`
}

// FetchPage requests notifications updated before the cursor, or the newest
// page when before is zero.
func (f *FeedSource) FetchPage(ctx context.Context, token string, before time.Time) (domain.NotificationPage, error) {
	pageURL, err := buildNotificationsURL(f.client.apiBase, before)
	if err != nil {
		return domain.NotificationPage{}, err
	}

	resp, err := f.client.do(ctx, http.MethodGet, pageURL, nil, tokenHeader(token))
	if err != nil {
		return domain.NotificationPage{}, err
	}
	defer resp.Body.Close()

	if !ok(resp) {
		return domain.NotificationPage{}, &domain.FeedFetchError{Status: resp.StatusCode, StatusText: statusText(resp)}
	}

	var raw []notificationDTO
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return domain.NotificationPage{}, fmt.Errorf("decode notifications: %w", err)
	}

	records, err := toRecords(raw)
	if err != nil {
		return domain.NotificationPage{}, err
	}
	return domain.NewNotificationPage(records), nil
}

func toRecords(raw []notificationDTO) ([]domain.NotificationRecord, error) {
	records := make([]domain.NotificationRecord, 0, len(raw))
	for i, n := range raw {
		if n.ID == "" {
			return nil, fmt.Errorf("notification %d: missing id", i)
		}
		if n.Unread == nil {
			return nil, fmt.Errorf("notification %s: missing unread flag", n.ID)
		}
		updatedAt, err := time.Parse(time.RFC3339, n.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("notification %s: invalid updated_at %q: %w", n.ID, n.UpdatedAt, err)
		}
		records = append(records, domain.NotificationRecord{
			ID:        n.ID,
			UpdatedAt: updatedAt,
			Unread:    *n.Unread,
		})
	}
	return records, nil
}

func buildNotificationsURL(base string, before time.Time) (string, error) {
	parsed, err := url.Parse(base + "/notifications")
	if err != nil {
		return "", fmt.Errorf("invalid api url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("all", "true")
	if !before.IsZero() {
		query.Set("before", before.UTC().Format(time.RFC3339))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
