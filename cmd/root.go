package cmd

import (
	"fmt"
	"os"

	"slotly/config"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slotly",
		Short: "Vendor slot scheduling and booking service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
		},
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newEnsureIndexesCmd())
	root.AddCommand(newReconcileCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("slotly %s (commit=%s)\n", Version, CommitSHA)
		},
	}
}
