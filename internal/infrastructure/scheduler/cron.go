package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"BacklogStatus/internal/ports"
)

// CronScheduler triggers the job on a cron expression. Overlapping triggers are
// skipped while a job is still running.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   logrus.FieldLogger

	mu      sync.Mutex
	c       *cron.Cron
	stopped chan struct{}
	initial sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler configured via cron expression string.
func NewCronScheduler(spec string, location *time.Location, logger logrus.FieldLogger) *CronScheduler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CronScheduler{spec: spec, location: location, logger: logger}
}

// Start registers the job and fires it once immediately.
func (s *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithChain(cron.Recover(cronLogger{s.logger}), cron.SkipIfStillRunning(cronLogger{s.logger})),
	)
	run := cron.FuncJob(func() { job(time.Now().In(s.location)) })
	if _, err := c.AddJob(s.spec, run); err != nil {
		return fmt.Errorf("add cron job %q: %w", s.spec, err)
	}

	s.c = c
	s.stopped = make(chan struct{})
	c.Start()
	s.logger.WithField("spec", s.spec).Info("scheduler started")

	// The chain wraps the job, so the first run also respects SkipIfStillRunning.
	// cron does not track it, Stop waits on initial instead.
	first := c.Entries()[0].WrappedJob
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		first.Run()
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop(context.Background())
	}()
	return nil
}

// Stop halts the cron engine and waits for running jobs, including the
// immediate first run, to finish. Concurrent callers all wait for the same
// shutdown.
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c, stopped := s.c, s.stopped
	if c != nil {
		s.c = nil
		go func() {
			<-c.Stop().Done()
			s.initial.Wait()
			s.logger.Info("scheduler stopped")
			close(stopped)
		}()
	}
	s.mu.Unlock()
	if stopped == nil {
		return nil
	}

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	logger logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
