package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/appointy/booking-api/internal/service/scheduling"
	"github.com/appointy/booking-api/pkg/logger"
	"github.com/appointy/booking-api/pkg/metrics"
)

// DayResetWorker fires the day-boundary reset on a cron schedule. Failures
// are logged and counted, never propagated: the sweep is idempotent, so the
// next tick simply retries.
type DayResetWorker struct {
	scheduling *scheduling.Service
	logger     *logger.Logger
	metrics    *metrics.Metrics
	schedule   string
	cron       *cron.Cron
}

func NewDayResetWorker(schedulingSvc *scheduling.Service, logger *logger.Logger, m *metrics.Metrics, schedule string) *DayResetWorker {
	return &DayResetWorker{
		scheduling: schedulingSvc,
		logger:     logger,
		metrics:    m,
		schedule:   schedule,
		cron:       cron.New(cron.WithSeconds()),
	}
}

// Start registers the sweep and runs the cron loop until ctx is cancelled.
func (w *DayResetWorker) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.schedule, func() {
		w.run(ctx)
	}); err != nil {
		return fmt.Errorf("invalid day reset schedule %q: %w", w.schedule, err)
	}

	w.logger.WithFields(map[string]interface{}{"schedule": w.schedule}).
		Info("day reset worker started")
	w.cron.Start()

	<-ctx.Done()
	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		w.logger.Warn(nil, "timed out waiting for running sweep to finish")
	}
	w.logger.Info("day reset worker stopped")
	return nil
}

func (w *DayResetWorker) run(ctx context.Context) {
	timer := prometheus.NewTimer(w.metrics.DayResetDuration)
	defer timer.ObserveDuration()

	w.metrics.DayResetRuns.Inc()

	if err := w.scheduling.RunDayBoundaryReset(ctx); err != nil {
		w.metrics.DayResetFailures.Inc()
		w.logger.Error(err, "day-boundary reset failed, will retry on next tick")
	}
}
