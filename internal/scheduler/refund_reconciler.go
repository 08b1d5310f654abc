// Package scheduler runs the service's periodic background jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type refundResumer interface {
	ResumeStuckRefunds(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error)
}

// RefundReconciler finishes cancellations whose refund was left pending,
// typically by a crash between the gateway call and the final commit.
type RefundReconciler struct {
	service  refundResumer
	interval time.Duration
	after    time.Duration
	logger   *zap.Logger
}

// NewRefundReconciler creates a reconciler that runs every interval and picks
// up refunds pending for longer than after.
func NewRefundReconciler(service refundResumer, interval, after time.Duration, logger *zap.Logger) *RefundReconciler {
	return &RefundReconciler{
		service:  service,
		interval: interval,
		after:    after,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled. A non-positive interval disables the
// reconciler.
func (r *RefundReconciler) Start(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Warn("refund reconciler disabled", zap.Duration("interval", r.interval))
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("refund reconciler started",
		zap.Duration("interval", r.interval),
		zap.Duration("after", r.after),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refund reconciler stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *RefundReconciler) tick(ctx context.Context) {
	resumed, err := r.service.ResumeStuckRefunds(ctx, r.after)
	if err != nil {
		r.logger.Error("failed to resume stuck refunds", zap.Error(err))
		return
	}

	for _, id := range resumed {
		r.logger.Info("stuck refund resumed", zap.String("booking_id", id.String()))
	}
}
