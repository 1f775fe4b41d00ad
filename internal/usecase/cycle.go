package usecase

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"BacklogStatus/internal/domain"
	"BacklogStatus/internal/ports"
)

// CycleDeps wires all driven adapters into the cycle.
type CycleDeps struct {
	Feed        ports.NotificationFeedSource
	Credentials ports.CredentialProvider
	Publisher   ports.StatusPublisher
	Webhook     ports.WebhookNotifier
	Now         func() time.Time
	Logger      logrus.FieldLogger
}

// CycleOptions holds per-run settings.
type CycleOptions struct {
	WebhookURL string
	// DryRun stops after the status has been derived.
	DryRun bool
}

// CycleReport summarizes a completed cycle.
type CycleReport struct {
	Skipped       bool
	Notifications int
	Estimate      domain.BacklogEstimate
	Status        domain.StatusDescriptor
	Username      string
	Published     bool
}

// Cycle fetches, estimates and publishes the backlog status.
type Cycle struct {
	fetcher   *PaginationFetcher
	estimator *BacklogEstimator
	policy    StatusPolicy
	creds     ports.CredentialProvider
	publisher ports.StatusPublisher
	webhook   ports.WebhookNotifier
	logger    logrus.FieldLogger
}

// NewCycle constructs the orchestration component.
func NewCycle(deps CycleDeps) *Cycle {
	logger := orDiscard(deps.Logger)
	return &Cycle{
		fetcher:   NewPaginationFetcher(deps.Feed, logger.WithField("step", "fetch")),
		estimator: NewBacklogEstimator(deps.Now),
		creds:     deps.Credentials,
		publisher: deps.Publisher,
		webhook:   deps.Webhook,
		logger:    logger,
	}
}

// Run performs one cycle. Any failure aborts the remaining steps; a missing or
// malformed token is not a failure and leaves everything untouched.
func (c *Cycle) Run(ctx context.Context, creds domain.Credentials, opts CycleOptions) (CycleReport, error) {
	if !creds.Valid() {
		c.logger.Info("not updating status as API token is missing or malformed")
		return CycleReport{Skipped: true}, nil
	}

	feed, err := c.fetcher.FetchAll(ctx, creds)
	if err != nil {
		return CycleReport{}, fmt.Errorf("fetch notifications: %w", err)
	}

	estimate, err := c.estimator.Estimate(feed)
	if err != nil {
		return CycleReport{}, fmt.Errorf("estimate backlog: %w", err)
	}
	c.logger.WithField("days", math.Floor(estimate.Days)).Info("estimated response time")

	status := c.policy.Describe(estimate)
	report := CycleReport{
		Notifications: len(feed),
		Estimate:      estimate,
		Status:        status,
	}
	if opts.DryRun {
		return report, nil
	}

	c.logger.Debug("determining username")
	username, err := c.creds.ResolveIdentity(ctx, creds)
	if err != nil {
		return CycleReport{}, fmt.Errorf("resolve identity: %w", err)
	}
	report.Username = username

	c.logger.WithField("username", username).Debug("fetching token for profile status form")
	token, err := c.creds.ResolvePublishToken(ctx, username)
	if err != nil {
		return CycleReport{}, fmt.Errorf("resolve publish token: %w", err)
	}

	if err := c.publisher.Publish(ctx, token, status); err != nil {
		return CycleReport{}, fmt.Errorf("publish status: %w", err)
	}
	report.Published = true
	c.logger.WithFields(logrus.Fields{
		"message": status.Message,
		"icon":    status.Icon,
		"busy":    status.Busy,
	}).Info("updated status")

	if opts.WebhookURL == "" {
		c.logger.Debug("webhook is not configured, skipping ping")
	} else if c.webhook != nil {
		c.webhook.Ping(ctx, opts.WebhookURL)
	}

	return report, nil
}

func orDiscard(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
