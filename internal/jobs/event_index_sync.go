package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"maatram_portal_backend/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const syncTimeout = 5 * time.Minute

// Reindexer copies every stored event into the search index.
type Reindexer interface {
	ReindexAll(ctx context.Context) (int, error)
}

// IndexEnsurer creates the search index when it is missing.
type IndexEnsurer interface {
	EnsureIndex(ctx context.Context) error
}

// EventIndexSyncJob periodically resyncs the event search index with the
// document store.
type EventIndexSyncJob struct {
	reindexer     Reindexer
	ensurer       IndexEnsurer
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron

	mu      sync.Mutex
	started bool
}

// NewEventIndexSyncJob creates the job. ensurer may be nil.
func NewEventIndexSyncJob(reindexer Reindexer, ensurer IndexEnsurer, logger *zap.Logger, cfg *config.Config) *EventIndexSyncJob {
	cl := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)
	return &EventIndexSyncJob{
		reindexer:     reindexer,
		ensurer:       ensurer,
		logger:        logger.Named("EventIndexSyncJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job. It is a no-op when search
// is disabled or no schedule is configured.
func (j *EventIndexSyncJob) SetupAndStart() error {
	if !j.cfg.SearchEnabled() {
		j.logger.Info("Search disabled (ELASTICSEARCH_URL unset). Event index sync will not run.")
		return nil
	}
	jobSpec := j.cfg.EventIndexSyncSchedule
	if jobSpec == "" {
		j.logger.Warn("Event index sync schedule not defined (EVENT_INDEX_SYNC_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule event index sync", zap.String("spec", jobSpec), zap.Error(err))
		return fmt.Errorf("scheduling event index sync %q: %w", jobSpec, err)
	}

	j.logger.Info("Event index sync scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.mu.Lock()
	j.started = true
	j.mu.Unlock()
	j.cronScheduler.Start()
	return nil
}

// RunOnce ensures the index exists and reindexes every event.
func (j *EventIndexSyncJob) RunOnce(ctx context.Context) (int, error) {
	if j.ensurer != nil {
		if err := j.ensurer.EnsureIndex(ctx); err != nil {
			return 0, fmt.Errorf("ensuring events index: %w", err)
		}
	}
	return j.reindexer.ReindexAll(ctx)
}

func (j *EventIndexSyncJob) runJob() {
	j.logger.Info("Starting event index sync run...")
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	n, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("Event index sync run failed", zap.Int("events_indexed", n), zap.Error(err))
		return
	}
	j.logger.Info("Event index sync run completed", zap.Int("events_indexed", n))
}

// Started reports whether the scheduler is running.
func (j *EventIndexSyncJob) Started() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.started
}

// Stop gracefully stops the cron scheduler.
func (j *EventIndexSyncJob) Stop() {
	j.mu.Lock()
	started := j.started
	j.started = false
	j.mu.Unlock()
	if !started {
		return
	}

	j.logger.Info("Stopping event index sync scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Event index sync scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Event index sync scheduler stop timed out.")
	}
}
