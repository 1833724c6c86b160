package reconcile

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mercatto/catalog-sync/internal/repo"
	"github.com/mercatto/catalog-sync/internal/usecase"
	"github.com/mercatto/catalog-sync/pkg/logger"
)

// Worker runs the periodic storage maintenance: orphan reconciliation against
// a fresh valid-path set, and expiry of abandoned staging uploads. Both tasks
// are full recomputations, so a missed tick costs nothing but delay.
type Worker struct {
	cleanup usecase.CleanupUseCase
	staging repo.StagingImageRepo
	logger  logger.Interface

	reconcileInterval time.Duration
	stagingInterval   time.Duration
	runTimeout        time.Duration
	stagingTTLDays    int
	dryRun            bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	cleanup usecase.CleanupUseCase,
	staging repo.StagingImageRepo,
	l logger.Interface,
	reconcileInterval time.Duration,
	stagingInterval time.Duration,
	runTimeout time.Duration,
	stagingTTLDays int,
	dryRun bool,
) *Worker {
	return &Worker{
		cleanup:           cleanup,
		staging:           staging,
		logger:            l,
		reconcileInterval: reconcileInterval,
		stagingInterval:   stagingInterval,
		runTimeout:        runTimeout,
		stagingTTLDays:    stagingTTLDays,
		dryRun:            dryRun,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("ReconcileWorker - Start - worker already started")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)

	// 1. orphan reconciliation
	w.worker(w.reconcileInterval, func() {
		runCtx, runCancel := context.WithTimeout(w.ctx, w.runTimeout)
		w.reconcile(runCtx)
		runCancel()
	})

	// 2. staging expiry
	w.worker(w.stagingInterval, func() {
		runCtx, runCancel := context.WithTimeout(w.ctx, w.runTimeout)
		w.expireStaging(runCtx)
		runCancel()
	})

	return nil
}

func (w *Worker) reconcile(ctx context.Context) {
	orphans, deleted, err := w.cleanup.Cleanup(ctx, w.dryRun)
	if err != nil {
		w.logger.Error(err, "ReconcileWorker - reconcile - w.cleanup.Cleanup")

		return
	}

	if len(orphans) == 0 {
		return
	}

	if w.dryRun {
		w.logger.Info("reconcile: found %d orphaned objects (dry run)", len(orphans))

		return
	}

	w.logger.Info("reconcile: removed %d orphaned objects", deleted)
}

func (w *Worker) expireStaging(ctx context.Context) {
	removed, err := w.staging.DeleteOlderThan(ctx, w.stagingTTLDays)
	if err != nil {
		w.logger.Error(err, "ReconcileWorker - expireStaging - w.staging.DeleteOlderThan")

		return
	}

	if removed > 0 {
		w.logger.Info("reconcile: expired %d staging uploads older than %d days", removed, w.stagingTTLDays)
	}
}

func (w *Worker) worker(interval time.Duration, task func()) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (w *Worker) Shutdown(ctx context.Context) error {
	if !w.started.Load() {
		return nil
	}

	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})

	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
