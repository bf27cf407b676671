package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-hub/internal/application/port"
	"github.com/garyjia/procurement-hub/internal/domain/entity"
)

// StatusPublisher receives the request count per status
type StatusPublisher interface {
	SetStatusCounts(counts map[entity.Status]int)
}

// SnapshotWorkerConfig holds configuration for the status snapshot worker
type SnapshotWorkerConfig struct {
	Interval time.Duration
}

// DefaultSnapshotWorkerConfig returns default configuration
func DefaultSnapshotWorkerConfig() SnapshotWorkerConfig {
	return SnapshotWorkerConfig{
		Interval: 30 * time.Second,
	}
}

// StatusSnapshotWorker periodically counts requests per status and publishes the counts
type StatusSnapshotWorker struct {
	config    SnapshotWorkerConfig
	repo      port.RequestRepository
	publisher StatusPublisher
	logger    *zap.Logger

	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	runs      int
	lastRun   time.Time
	lastError error
}

// NewStatusSnapshotWorker creates a new snapshot worker
func NewStatusSnapshotWorker(config SnapshotWorkerConfig, repo port.RequestRepository, publisher StatusPublisher, logger *zap.Logger) *StatusSnapshotWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultSnapshotWorkerConfig().Interval
	}
	return &StatusSnapshotWorker{
		config:    config,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Start takes a first snapshot and keeps refreshing it in the background
func (w *StatusSnapshotWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("snapshot worker already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true
	w.mu.Unlock()

	w.logger.Info("StatusSnapshotWorker started", zap.Duration("interval", w.config.Interval))

	w.snapshot(runCtx)
	go w.loop(runCtx)

	return nil
}

// Stop terminates the loop and waits for it to exit
func (w *StatusSnapshotWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.logger.Info("StatusSnapshotWorker stopped", zap.Int("runs", w.Runs()))
	return nil
}

// Name returns the worker name for identification
func (w *StatusSnapshotWorker) Name() string {
	return "StatusSnapshotWorker"
}

// Runs returns how many snapshots have been taken
func (w *StatusSnapshotWorker) Runs() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.runs
}

// LastError returns the error of the most recent snapshot, if any
func (w *StatusSnapshotWorker) LastError() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastError
}

func (w *StatusSnapshotWorker) loop(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.snapshot(ctx)
		}
	}
}

func (w *StatusSnapshotWorker) snapshot(ctx context.Context) {
	counts, err := w.count(ctx)

	w.mu.Lock()
	w.runs++
	w.lastRun = time.Now()
	w.lastError = err
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("Failed to take status snapshot", zap.Error(err))
		return
	}
	w.publisher.SetStatusCounts(counts)
	w.logger.Debug("Status snapshot published", zap.Any("counts", counts))
}

func (w *StatusSnapshotWorker) count(ctx context.Context) (map[entity.Status]int, error) {
	requests, err := w.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	counts := make(map[entity.Status]int, len(entity.Statuses))
	for _, req := range requests {
		counts[req.Status]++
	}
	return counts, nil
}
