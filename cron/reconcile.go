package cron

import (
	"context"
	"time"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// HistoryReconciler rebuilds every customer's booking history.
type HistoryReconciler interface {
	ReconcileAll(ctx context.Context) (int, error)
}

// NewReconcileScheduler runs the history sweep on spec (standard cron syntax or a
// descriptor such as "@every 6h"). Runs never overlap.
func NewReconcileScheduler(spec string, reconciler HistoryReconciler, logger *zap.Logger) (*robfig.Cron, error) {
	c := robfig.New(robfig.WithChain(
		robfig.Recover(robfig.DefaultLogger),
		robfig.SkipIfStillRunning(robfig.DefaultLogger),
	))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		started := time.Now()
		n, err := reconciler.ReconcileAll(ctx)
		if err != nil {
			logger.Warn("booking history sweep finished with errors",
				zap.Int("customers", n),
				zap.Error(err),
			)
			return
		}
		logger.Info("booking history sweep finished",
			zap.Int("customers", n),
			zap.Duration("took", time.Since(started)),
		)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
