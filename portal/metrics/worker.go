package metrics

import (
	"context"
	"time"

	"accesshub/pkg/log"
	"accesshub/pkg/loop"
	"accesshub/portal/model"

	"gorm.io/gorm"
)

// QueueWorker refreshes the approval-queue depth gauges. Each cycle is a
// full resample, so a queue drained out of band converges to zero on the
// next tick.
type QueueWorker struct {
	gdb    *gorm.DB
	runner *loop.Runner
	logger *log.Logger
}

func NewQueueWorker(gdb *gorm.DB, interval time.Duration) *QueueWorker {
	w := &QueueWorker{
		gdb:    gdb,
		logger: log.NewLogger(log.Loglevel, "metrics-worker"),
	}
	w.runner = loop.NewRunner(interval, w.collect)
	return w
}

func (w *QueueWorker) Start(ctx context.Context) {
	w.runner.Start(ctx)
}

func (w *QueueWorker) Stop() {
	w.runner.Stop()
}

func (w *QueueWorker) collect(ctx context.Context) error {
	counts := []struct {
		queue string
		model interface{}
		where string
	}{
		{"registrations_pending", &model.RegistrationRequest{}, "status = 'PENDING' AND token IS NULL"},
		{"registrations_awaiting", &model.RegistrationRequest{}, "status = 'APPROVED' AND token IS NOT NULL"},
		{"requests_pending", &model.PermissionRequest{}, "status = 'PENDING'"},
	}
	for _, c := range counts {
		var n int64
		if err := w.gdb.WithContext(ctx).Model(c.model).Where(c.where).Count(&n).Error; err != nil {
			w.logger.Warningf("queue depth sample for %s failed: %v", c.queue, err)
			return err
		}
		QueueDepth.WithLabelValues(c.queue).Set(float64(n))
	}
	return nil
}
