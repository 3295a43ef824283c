// Package main is the headless skyhull tool: it steps scenes without a
// window and answers height and ray queries against a heightmap.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/skyhull/internal/logger"
)

func main() {
	var (
		logLevel string
		logFile  string
	)

	rootCmd := &cobra.Command{
		Use:           "skyhull-sim",
		Short:         "Headless terrain and flight simulation tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return logger.Init(logLevel, logFile)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			logger.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(probeCmd())
	rootCmd.AddCommand(rayCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
