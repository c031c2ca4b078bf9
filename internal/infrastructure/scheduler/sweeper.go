// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/storage"
	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/telemetry"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepPrefix is the root of every object the closet owns
const sweepPrefix = "clients/"

var (
	ErrInvalidConfig  = errors.New("scheduler: invalid sweeper configuration")
	ErrAlreadyStarted = errors.New("scheduler: sweeper already running")
)

// Sweep decisions reported to metrics
const (
	decisionKept    = "kept"
	decisionYoung   = "young"
	decisionDeleted = "deleted"
	decisionFailed  = "failed"
)

// ObjectStore is the part of object storage the sweeper needs
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string, fn func(storage.ObjectInfo) error) error
	DeleteObject(ctx context.Context, key string) error
}

// KeyReferrer reports whether a stored object is still referenced by a record
type KeyReferrer interface {
	KeyExists(ctx context.Context, key string) (bool, error)
}

// SweepResult summarizes one sweep
type SweepResult struct {
	Scanned int
	Kept    int
	Young   int
	Deleted int
	Failed  int
}

// OrphanSweeper deletes stored images that no item or outfit references.
// Such objects are left behind when a process dies between storing an upload and saving its record.
type OrphanSweeper struct {
	store     ObjectStore
	referrers []KeyReferrer
	cfg       config.SchedulerConfig
	metrics   *telemetry.ClosetMetrics
	logger    *zap.Logger
	now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewOrphanSweeper creates a sweeper. Every referrer is consulted before an object is deleted.
func NewOrphanSweeper(store ObjectStore, cfg config.SchedulerConfig, metrics *telemetry.ClosetMetrics, logger *zap.Logger, referrers ...KeyReferrer) (*OrphanSweeper, error) {
	if store == nil || len(referrers) == 0 {
		return nil, fmt.Errorf("%w: store and at least one referrer are required", ErrInvalidConfig)
	}
	if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
		return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidConfig, cfg.SweepSchedule, err)
	}
	if cfg.SweepMinAge <= 0 {
		return nil, fmt.Errorf("%w: sweep min age must be positive", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrphanSweeper{
		store:     store,
		referrers: referrers,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger.Named("sweeper"),
		now:       time.Now,
	}, nil
}

// Start schedules the sweep. Overlapping runs are skipped.
func (s *OrphanSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return ErrAlreadyStarted
	}

	cronLogger := cronZapLogger{s.logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	if _, err := c.AddFunc(s.cfg.SweepSchedule, s.runScheduled); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("Orphan sweeper started",
		zap.String("schedule", s.cfg.SweepSchedule),
		zap.Duration("min_age", s.cfg.SweepMinAge),
	)
	return nil
}

// Stop unschedules the sweep and waits for a running sweep or ctx, whichever ends first.
func (s *OrphanSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		s.logger.Info("Orphan sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *OrphanSweeper) runScheduled() {
	ctx := context.Background()
	if s.cfg.SweepJobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SweepJobTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.Sweep(ctx)
	fields := []zap.Field{
		zap.Int("scanned", res.Scanned),
		zap.Int("deleted", res.Deleted),
		zap.Int("failed", res.Failed),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		s.logger.Error("Orphan sweep aborted", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Info("Orphan sweep finished", fields...)
}

// Sweep walks every closet object once. Failures to delete one object are counted, not returned.
func (s *OrphanSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	cutoff := s.now().Add(-s.cfg.SweepMinAge)

	err := s.store.ListObjects(ctx, sweepPrefix, func(obj storage.ObjectInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Scanned++

		if !strings.HasPrefix(obj.Key, sweepPrefix) || obj.LastModified.After(cutoff) {
			res.Young++
			s.metrics.RecordSweep(ctx, decisionYoung)
			return nil
		}

		referenced, err := s.isReferenced(ctx, obj.Key)
		if err != nil {
			// a failed lookup must never turn into a delete
			return err
		}
		if referenced {
			res.Kept++
			s.metrics.RecordSweep(ctx, decisionKept)
			return nil
		}

		if err := s.store.DeleteObject(ctx, obj.Key); err != nil {
			res.Failed++
			s.metrics.RecordSweep(ctx, decisionFailed)
			s.logger.Warn("Failed to delete orphaned object", zap.String("key", obj.Key), zap.Error(err))
			return nil
		}
		res.Deleted++
		s.metrics.RecordSweep(ctx, decisionDeleted)
		s.logger.Debug("Deleted orphaned object", zap.String("key", obj.Key), zap.Int64("size", obj.Size))
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("sweep stopped after %d objects: %w", res.Scanned, err)
	}
	return res, nil
}

func (s *OrphanSweeper) isReferenced(ctx context.Context, key string) (bool, error) {
	for _, r := range s.referrers {
		ok, err := r.KeyExists(ctx, key)
		if err != nil {
			return false, fmt.Errorf("failed to check references for %s: %w", key, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// cronZapLogger adapts zap to cron.Logger
type cronZapLogger struct {
	s *zap.SugaredLogger
}

func (l cronZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronZapLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
