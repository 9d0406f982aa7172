package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reconciler reactivates every account whose suspension has lapsed.
type Reconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// ReconcileWorker runs the expiry sweep on a cron schedule.
type ReconcileWorker struct {
	cron       *cron.Cron
	reconciler Reconciler
	logger     *zap.Logger
	timeout    time.Duration
}

// NewReconcileWorker schedules the sweep. An empty schedule returns a nil worker.
func NewReconcileWorker(schedule string, reconciler Reconciler, logger *zap.Logger) (*ReconcileWorker, error) {
	if schedule == "" || reconciler == nil {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &ReconcileWorker{
		cron:       cron.New(),
		reconciler: reconciler,
		logger:     logger,
		timeout:    30 * time.Second,
	}
	if _, err := w.cron.AddFunc(schedule, w.RunOnce); err != nil {
		return nil, err
	}
	return w, nil
}

// Start begins running the schedule in the background.
func (w *ReconcileWorker) Start() {
	if w == nil {
		return
	}
	w.cron.Start()
	w.logger.Info("reconcile worker started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *ReconcileWorker) Stop() {
	if w == nil {
		return
	}
	<-w.cron.Stop().Done()
}

// RunOnce performs a single sweep.
func (w *ReconcileWorker) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	n, err := w.reconciler.ReconcileAll(ctx)
	if err != nil {
		w.logger.Error("reconcile sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Info("reconcile sweep reactivated accounts", zap.Int("count", n))
	}
}
