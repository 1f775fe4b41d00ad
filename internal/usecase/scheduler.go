package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"BacklogStatus/internal/domain"
	"BacklogStatus/internal/ports"
)

// RunResult is the persisted outcome of the last attempted cycle.
type RunResult struct {
	At            time.Time `json:"at"`
	Skipped       bool      `json:"skipped,omitempty"`
	Notifications int       `json:"notifications,omitempty"`
	Days          float64   `json:"days,omitempty"`
	Message       string    `json:"message,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	Busy          bool      `json:"busy,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// SchedulerDeps wires the runner.
type SchedulerDeps struct {
	Driver    ports.Scheduler
	Cycle     *Cycle
	Store     ports.KeyValueStore
	Settings  *SettingsSource
	RunPeriod time.Duration
	Now       func() time.Time
	Logger    logrus.FieldLogger
}

// Scheduler wires the cron-like driver with the cycle and enforces the run
// period through the last-run timestamp kept in the store.
type Scheduler struct {
	driver    ports.Scheduler
	cycle     *Cycle
	store     ports.KeyValueStore
	settings  *SettingsSource
	runPeriod time.Duration
	now       func() time.Time
	logger    logrus.FieldLogger
}

// NewScheduler returns a helper to start/stop recurring cycles.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	settings := deps.Settings
	if settings == nil {
		settings = NewSettingsSource(deps.Store, Settings{})
	}
	return &Scheduler{
		driver:    deps.Driver,
		cycle:     deps.Cycle,
		store:     deps.Store,
		settings:  settings,
		runPeriod: deps.RunPeriod,
		now:       now,
		logger:    orDiscard(deps.Logger),
	}
}

// Start registers the tick with the provided driver. Cancelling ctx stops
// further ticks; a cycle already in flight runs to completion so its result
// is recorded before shutdown.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.cycle == nil {
		return nil
	}

	jobCtx := context.WithoutCancel(ctx)
	return s.driver.Start(ctx, func(trigger time.Time) {
		s.Tick(jobCtx, trigger)
	})
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

// Tick runs a cycle if the run period has elapsed. Failures are logged and
// discarded; the next due tick starts again from scratch.
func (s *Scheduler) Tick(ctx context.Context, trigger time.Time) {
	due, err := s.ShouldRun(ctx)
	if err != nil {
		s.logger.WithError(err).Error("check last run")
		return
	}
	if !due {
		s.logger.WithField("trigger", trigger.Format(time.RFC3339)).Debug("run period not elapsed, skipping")
		return
	}

	if _, err := s.RunNow(ctx, false); err != nil {
		s.logger.WithError(err).Error("cycle failed")
	}
}

// ShouldRun reports whether a cycle is due and, if so, stamps the current time
// before returning so the period is counted from the attempt.
func (s *Scheduler) ShouldRun(ctx context.Context) (bool, error) {
	now := s.now()
	if s.store == nil {
		return true, nil
	}

	raw, ok, err := s.store.Get(ctx, KeyTimestamp)
	if err != nil {
		return false, fmt.Errorf("load last run: %w", err)
	}
	if ok {
		if last, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			if now.Sub(time.UnixMilli(last)) < s.runPeriod {
				return false, nil
			}
		}
	}

	if err := s.store.Set(ctx, KeyTimestamp, strconv.FormatInt(now.UnixMilli(), 10)); err != nil {
		return false, fmt.Errorf("save last run: %w", err)
	}
	return true, nil
}

// RunNow executes a cycle immediately with the stored settings and records
// its outcome.
func (s *Scheduler) RunNow(ctx context.Context, dryRun bool) (CycleReport, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return CycleReport{}, fmt.Errorf("load settings: %w", err)
	}

	report, runErr := s.cycle.Run(ctx,
		domain.Credentials{APIToken: settings.APIToken},
		CycleOptions{WebhookURL: settings.WebhookURL, DryRun: dryRun},
	)
	if dryRun {
		return report, runErr
	}

	if err := s.record(ctx, report, runErr); err != nil {
		s.logger.WithError(err).Warn("record run result")
	}
	return report, runErr
}

// LastResult returns the outcome stored by the previous RunNow.
func (s *Scheduler) LastResult(ctx context.Context) (RunResult, bool, error) {
	if s.store == nil {
		return RunResult{}, false, nil
	}
	raw, ok, err := s.store.Get(ctx, KeyLastResult)
	if err != nil || !ok {
		return RunResult{}, false, err
	}
	var result RunResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return RunResult{}, false, fmt.Errorf("decode last result: %w", err)
	}
	return result, true, nil
}

func (s *Scheduler) record(ctx context.Context, report CycleReport, runErr error) error {
	if s.store == nil {
		return nil
	}

	result := RunResult{
		At:            s.now().UTC(),
		Skipped:       report.Skipped,
		Notifications: report.Notifications,
		Days:          report.Estimate.Days,
		Message:       report.Status.Message,
		Icon:          string(report.Status.Icon),
		Busy:          report.Status.Busy,
	}
	if runErr != nil {
		result.Error = runErr.Error()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return s.store.Set(ctx, KeyLastResult, string(payload))
}
