package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"slotly/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newReconcileCmd() *cobra.Command {
	var customerID string

	c := &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild customer booking histories from the bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.GetLogger()
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			repos, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(logger)

			a := newApp(repos, newLocker(), nil, logger)

			if customerID != "" {
				ids, err := a.Bookings.ReconcileHistory(ctx, customerID)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "customer=%s bookings=%d\n", customerID, len(ids))
				return nil
			}

			n, err := a.Bookings.ReconcileAll(ctx)
			fmt.Fprintf(os.Stdout, "reconciled customers=%d\n", n)
			if err != nil {
				logger.Warn("some histories were not rebuilt", zap.Error(err))
			}
			return err
		},
	}

	c.Flags().StringVar(&customerID, "customer", "", "only rebuild this customer's history")
	return c
}
