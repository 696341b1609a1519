package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <circuit.yaml>",
	Short: "Re-run a circuit every time its description changes",
	Long: "Simulate the circuit once, then again after every write to the description file. " +
		"Accepts the trace and end time flags of run. Stops on interrupt.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := runConfig{until: runUntil, trace: runTrace, outDir: runOutDir}
		if cmd.Flags().Changed("seed") {
			cfg.seed = &runSeed
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		path := args[0]
		err := watchFile(ctx, path, func() {
			r, err := runCircuit(path, cfg)
			if err != nil {
				logrus.Errorf("Simulation of %s failed: %v", path, err)
				return
			}
			logrus.Infof("%s: %d steps, %d value changes -> %s",
				path, r.Metrics.Steps, r.Metrics.Changes, r.TracePath)
		})
		if err != nil {
			logrus.Fatalf("Watching %s: %v", path, err)
		}
	},
}

// watchFile calls fn once, then after every write to path, until ctx is
// done. The parent directory is watched so that editors replacing the file
// are noticed too.
func watchFile(ctx context.Context, path string, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(target))
	}
	logrus.Debugf("Watching %s", target)

	fn()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logrus.Infof("%s changed, re-running", target)
			fn()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.Warnf("Watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func init() {
	watchCmd.Flags().Int64Var(&runUntil, "until", -1, "Simulated end time in ticks (default: the circuit's until)")
	watchCmd.Flags().Int64Var(&runSeed, "seed", 0, "Seed for random initial states (default: the circuit's seed)")
	watchCmd.Flags().StringVar(&runTrace, "trace", "", "Trace file, - for stdout")
	watchCmd.Flags().StringVar(&runOutDir, "out-dir", ".", "Directory receiving <circuit>.vcd traces")

	rootCmd.AddCommand(watchCmd)
}
