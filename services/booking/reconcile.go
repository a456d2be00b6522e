package booking

import (
	"context"
	"errors"

	"slotly/utils"

	"go.uber.org/zap"
)

// ReconcileHistory rebuilds a customer's booking history from the bookings themselves.
func (w *DefaultBookingWriter) ReconcileHistory(ctx context.Context, customerID string) ([]string, error) {
	ids, err := w.Repo.ActiveIDsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := w.Customers.SetBookingHistory(ctx, customerID, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ReconcileAll rebuilds the history of every customer that has bookings. Customers that
// no longer exist are skipped. It returns the number of histories rewritten.
func (w *DefaultBookingWriter) ReconcileAll(ctx context.Context) (int, error) {
	customers, err := w.Repo.DistinctCustomers(ctx)
	if err != nil {
		return 0, err
	}

	var (
		done int
		errs []error
	)
	for _, customerID := range customers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := w.ReconcileHistory(ctx, customerID); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				w.logger().Debug("skipping unknown customer", zap.String("customerID", customerID))
				continue
			}
			w.logger().Warn("failed to reconcile booking history",
				zap.String("customerID", customerID),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}
