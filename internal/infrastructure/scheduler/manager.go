// Package scheduler runs the billing maintenance jobs using gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/biztime"
	"github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

const (
	// DefaultExpirySweepInterval is used when no interval is configured.
	DefaultExpirySweepInterval = time.Hour

	expireLapsedJobName = "subscription-expire-lapsed"
)

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	mu      sync.Mutex
	started bool
}

// NewSchedulerManager creates a scheduler in the business timezone.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log.Named("scheduler"),
	}, nil
}

// maxSweepRuntime bounds a single sweep run.
const maxSweepRuntime = 10 * time.Minute

// RegisterSubscriptionJobs registers the lapsed subscription sweep. The first run happens at
// Start, later runs every interval, and a slow run delays the next instead of overlapping it.
func (m *SchedulerManager) RegisterSubscriptionJobs(expireLapsedJob BatchJob, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultExpirySweepInterval
	}
	timeout := min(interval, maxSweepRuntime)

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			m.sweep(ctx, expireLapsedJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("subscription", "expire"),
		gocron.WithName(expireLapsedJobName),
		gocron.WithEventListeners(
			gocron.AfterJobRunsWithPanic(func(_ uuid.UUID, jobName string, recoverData any) {
				m.logger.Errorw("scheduled job panicked", "job", jobName, "panic", recoverData)
			}),
		),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered subscription jobs", "job", expireLapsedJobName, "interval", interval)
	return nil
}

func (m *SchedulerManager) sweep(ctx context.Context, job BatchJob) {
	started := biztime.NowUTC()

	expired, err := job.Execute(ctx)
	log := m.logger.With("job", expireLapsedJobName, "duration", time.Since(started))
	switch {
	case err != nil && ctx.Err() != nil:
		log.Warnw("lapsed subscription sweep cut short", "expired", expired, "error", ctx.Err())
	case err != nil:
		log.Errorw("lapsed subscription sweep failed", "error", err)
	case expired > 0:
		log.Infow("lapsed subscriptions expired", "count", expired)
	default:
		log.Debugw("no lapsed subscriptions")
	}
}

// Start is idempotent.
func (m *SchedulerManager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler started", "jobs", len(m.scheduler.Jobs()))
}

// Stop waits for a running sweep to return. Calling it before Start is a no-op.
func (m *SchedulerManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	m.started = false

	if err := m.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown: %w", err)
	}
	m.logger.Infow("scheduler stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
