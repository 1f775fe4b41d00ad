package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"BacklogStatus/internal/config"
	"BacklogStatus/internal/infrastructure/github"
	"BacklogStatus/internal/infrastructure/scheduler"
	"BacklogStatus/internal/infrastructure/storage"
	"BacklogStatus/internal/infrastructure/webhook"
	"BacklogStatus/internal/logging"
	"BacklogStatus/internal/ports"
	"BacklogStatus/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *logrus.Logger
	store     *storage.SQLStore
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance. The caller owns Close.
func New(ctx context.Context, cfg config.Config, baseLogger *logrus.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Environment)
	}

	for _, warning := range cfg.Warnings() {
		baseLogger.Warn(warning)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client, err := github.NewClient(cfg.GitHub)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("github client: %w", err)
	}

	cycle := usecase.NewCycle(usecase.CycleDeps{
		Feed:        github.NewFeedSource(client),
		Credentials: github.NewCredentialProvider(client, github.IdentityMode(cfg.GitHub.Identity), baseLogger.WithField("component", "credentials")),
		Publisher:   github.NewStatusPublisher(client),
		Webhook:     webhook.NewNotifier(nil, baseLogger.WithField("component", "webhook")),
		Logger:      baseLogger.WithField("component", "cycle"),
	})

	sched := usecase.NewScheduler(usecase.SchedulerDeps{
		Driver: scheduler.NewCronScheduler(
			cfg.Scheduler.CronExpression,
			cfg.Scheduler.Location(),
			baseLogger.WithField("component", "cron"),
		),
		Cycle: cycle,
		Store: store,
		Settings: usecase.NewSettingsSource(store, usecase.Settings{
			APIToken:   cfg.Status.APIToken,
			WebhookURL: cfg.Status.WebhookURL,
		}),
		RunPeriod: cfg.Status.RunPeriod,
		Logger:    baseLogger.WithField("component", "scheduler"),
	})

	return &Application{cfg: cfg, logger: baseLogger, store: store, scheduler: sched}, nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.WithField("runPeriod", a.cfg.Status.RunPeriod.String()).Info("backlog status service running")

	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// RunOnce executes a single cycle now, bypassing the run period.
func (a *Application) RunOnce(ctx context.Context, dryRun bool) (usecase.CycleReport, error) {
	return a.scheduler.RunNow(ctx, dryRun)
}

// LastResult returns the outcome of the previous recorded run.
func (a *Application) LastResult(ctx context.Context) (usecase.RunResult, bool, error) {
	return a.scheduler.LastResult(ctx)
}

// Store exposes the settings store to the CLI.
func (a *Application) Store() ports.KeyValueStore {
	return a.store
}

// Close releases the store.
func (a *Application) Close() error {
	return a.store.Close()
}
