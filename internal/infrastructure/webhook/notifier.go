package webhook

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"BacklogStatus/internal/ports"
)

// Notifier pings a user-provided URL once a status has been published.
type Notifier struct {
	client *http.Client
	logger logrus.FieldLogger
}

var _ ports.WebhookNotifier = (*Notifier)(nil)

// NewNotifier uses a short-timeout client when client is nil.
func NewNotifier(client *http.Client, logger logrus.FieldLogger) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Notifier{client: client, logger: logger}
}

// Ping issues a single GET and logs the outcome. It never fails the caller.
func (n *Notifier) Ping(ctx context.Context, rawURL string) {
	log := n.logger.WithField("webhook", redact(rawURL))

	if u, err := url.Parse(rawURL); err != nil || !u.IsAbs() {
		log.Warn("webhook is missing or malformed, skipping ping")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		log.WithError(err).Warn("build webhook request")
		return
	}

	resp, err := n.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("webhook request failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		log.Info("notified webhook")
		return
	}
	log.WithField("status", resp.Status).Warn("got error response from webhook")
}

// redact drops query strings, which commonly carry secrets.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}
