package cmd

import (
	"context"

	"slotly/utils"

	"github.com/spf13/cobra"
)

func newEnsureIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes of every collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.GetLogger()
			ctx := context.Background()

			repos, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(logger)

			if err := ensureIndexes(ctx, repos); err != nil {
				return err
			}
			logger.Info("indexes ensured")
			return nil
		},
	}
}
