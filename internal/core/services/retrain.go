package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// retrainLockName is the distributed lock guarding the sweep across
// scheduler instances.
const retrainLockName = "retrain-sweep"

// RetrainScheduler periodically re-enqueues eligible auto-retrain
// sources. A source qualifies when it completed, opted into retraining,
// is of a re-crawlable type, and its cool-down has elapsed; the owning
// project must be active on a plan that includes retraining.
//
// The sweep enqueues durable tasks instead of processing inline, so a
// scheduler crash mid-sweep loses nothing that was already enqueued.
type RetrainScheduler struct {
	sources   driven.SourceStore
	projects  driven.ProjectStore
	taskQueue driven.TaskQueue
	lock      driven.DistributedLock
	logger    *slog.Logger

	interval   time.Duration
	cooldown   time.Duration
	batchLimit int
	lockTTL    time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// RetrainSchedulerConfig holds configuration for the retrain scheduler.
type RetrainSchedulerConfig struct {
	Sources   driven.SourceStore
	Projects  driven.ProjectStore
	TaskQueue driven.TaskQueue
	Lock      driven.DistributedLock // Optional: multi-instance coordination
	Logger    *slog.Logger

	Interval   time.Duration // How often to sweep (default: 1h)
	Cooldown   time.Duration // Minimum gap between retrains per source (default: 24h)
	BatchLimit int           // Max sources enqueued per sweep (default: 50)
	LockTTL    time.Duration // TTL for the distributed lock (default: 2x interval cap 5m)
}

// NewRetrainScheduler creates a retrain scheduler.
func NewRetrainScheduler(cfg RetrainSchedulerConfig) *RetrainScheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = 24 * time.Hour
	}
	batchLimit := cfg.BatchLimit
	if batchLimit <= 0 {
		batchLimit = 50
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 2 * interval
		if lockTTL > 5*time.Minute {
			lockTTL = 5 * time.Minute
		}
	}
	return &RetrainScheduler{
		sources:    cfg.Sources,
		projects:   cfg.Projects,
		taskQueue:  cfg.TaskQueue,
		lock:       cfg.Lock,
		logger:     logger,
		interval:   interval,
		cooldown:   cooldown,
		batchLimit: batchLimit,
		lockTTL:    lockTTL,
	}
}

// Start begins the sweep loop. It runs until Stop is called or the
// context is cancelled.
func (s *RetrainScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("retrain scheduler starting",
		"interval", s.interval,
		"cooldown", s.cooldown,
	)
	go s.run(ctx)
	return nil
}

// Stop gracefully stops the scheduler.
func (s *RetrainScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("retrain scheduler stopped")
}

func (s *RetrainScheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweepWithLock(ctx)
		}
	}
}

// sweepWithLock runs one sweep under the distributed lock, when one is
// configured. A held lock means another instance is sweeping; skip.
func (s *RetrainScheduler) sweepWithLock(ctx context.Context) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, retrainLockName, s.lockTTL)
		if err != nil {
			s.logger.Warn("failed to acquire retrain lock", "error", err)
			return
		}
		if !acquired {
			return
		}
		defer func() {
			if err := s.lock.Release(ctx, retrainLockName); err != nil {
				s.logger.Warn("failed to release retrain lock", "error", err)
			}
		}()
	}

	enqueued, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("retrain sweep failed", "error", err)
		return
	}
	if enqueued > 0 {
		s.logger.Info("retrain sweep enqueued sources", "count", enqueued)
	}
}

// Sweep enqueues one retrain task per eligible source and returns how
// many were enqueued. A single source's eligibility check or enqueue
// failure never aborts the batch.
func (s *RetrainScheduler) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.cooldown)
	candidates, err := s.sources.ListRetrainCandidates(ctx, cutoff, s.batchLimit)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, source := range candidates {
		if err := ctx.Err(); err != nil {
			return enqueued, err
		}
		if !source.RetrainDue(s.cooldown) {
			continue
		}

		eligible, err := s.projectEligible(ctx, source.ProjectID)
		if err != nil {
			s.logger.Warn("retrain eligibility check failed",
				"source_id", source.ID,
				"error", err,
			)
			continue
		}
		if !eligible {
			continue
		}

		task := domain.NewRetrainSourceTask(source.ProjectID, source.ID)
		if err := s.taskQueue.Enqueue(ctx, task); err != nil {
			s.logger.Error("failed to enqueue retrain task",
				"source_id", source.ID,
				"error", err,
			)
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// projectEligible checks the plan and subscription gates for a source's
// owning project.
func (s *RetrainScheduler) projectEligible(ctx context.Context, projectID string) (bool, error) {
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return false, err
	}
	if !project.Active {
		return false, nil
	}

	org, err := s.projects.GetOrganization(ctx, project.OrganizationID)
	if err != nil {
		return false, err
	}
	return org.SubscriptionActive && domain.PlanEligibleForRetrain(org.Plan), nil
}
