package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel string // Log verbosity level

	// version is written to the $version line of every trace. Set at link
	// time with -ldflags "-X github.com/logicsim/logicsim/cmd.version=...".
	version = "logicsim dev"
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "logicsim",
	Short: "Discrete-time simulator for tri-state logic networks",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
