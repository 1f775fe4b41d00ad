package ports

import (
	"context"
	"time"

	"BacklogStatus/internal/domain"
)

// NotificationFeedSource returns one page of notifications. A zero before
// requests the newest page; otherwise only records updated before it.
type NotificationFeedSource interface {
	FetchPage(ctx context.Context, token string, before time.Time) (domain.NotificationPage, error)
}

// CredentialProvider resolves who we publish as and the short-lived token the
// status form requires. Session-backed providers ignore creds.
type CredentialProvider interface {
	ResolveIdentity(ctx context.Context, creds domain.Credentials) (string, error)
	ResolvePublishToken(ctx context.Context, username string) (string, error)
}

// StatusPublisher submits a status on behalf of the user.
type StatusPublisher interface {
	Publish(ctx context.Context, token string, status domain.StatusDescriptor) error
}

// WebhookNotifier pings a URL after a successful publish. It never fails the caller.
type WebhookNotifier interface {
	Ping(ctx context.Context, url string)
}

// KeyValueStore persists small settings (token, webhook, last run).
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Scheduler controls when cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
