package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/logicsim/logicsim/sim"
	"github.com/logicsim/logicsim/sim/circuit"
)

var (
	runUntil       int64  // Simulated end time, overrides the circuit's
	runSeed        int64  // Seed, overrides the circuit's
	runTrace       string // Trace file for a single circuit, "-" for stdout
	runOutDir      string // Directory for <circuit>.vcd traces
	runJobs        int    // Circuits simulated concurrently
	runMetricsFile string // Prometheus textfile output
)

// runConfig carries the run flags into runCircuit.
type runConfig struct {
	until  int64  // < 0 keeps the circuit's end time
	seed   *int64 // nil keeps the circuit's seed
	trace  string
	outDir string
	jobs   int
}

// runResult is the outcome of one simulated circuit.
type runResult struct {
	Path      string
	RunID     string
	TracePath string
	Metrics   *sim.Metrics
}

// tracePath returns where the trace of the circuit in path is written.
func (c runConfig) tracePath(path string) string {
	if c.trace != "" {
		return c.trace
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".vcd"
	return filepath.Join(c.outDir, base)
}

var runCmd = &cobra.Command{
	Use:   "run <circuit.yaml>...",
	Short: "Simulate circuits and write their traces",
	Long: "Build each circuit description, simulate it up to its end time and write a VCD trace. " +
		"Several circuits are simulated concurrently; each gets its own trace in --out-dir.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if runTrace != "" && len(args) > 1 {
			logrus.Fatalf("--trace takes a single circuit, got %d; use --out-dir", len(args))
		}
		cfg := runConfig{until: runUntil, trace: runTrace, outDir: runOutDir, jobs: runJobs}
		if cmd.Flags().Changed("seed") {
			cfg.seed = &runSeed
		}

		results, err := runAll(cmd.Context(), args, cfg)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		out := os.Stdout
		if runTrace == "-" {
			out = os.Stderr
		}
		for _, r := range results {
			fmt.Fprintf(out, "%s (run %s) -> %s\n", r.Path, r.RunID, r.TracePath)
			r.Metrics.Print(out)
		}

		if runMetricsFile != "" {
			reg := prometheus.NewRegistry()
			collector := newRunCollector(reg)
			for _, r := range results {
				collector.observe(r.Path, r.Metrics)
			}
			if err := prometheus.WriteToTextfile(runMetricsFile, reg); err != nil {
				logrus.Fatalf("Writing metrics to %s: %v", runMetricsFile, err)
			}
		}
		logrus.Info("Simulation complete.")
	},
}

// runAll simulates the circuits concurrently, at most cfg.jobs at a time.
// Results are in the order of paths. The first failure cancels circuits
// that have not started yet.
func runAll(ctx context.Context, paths []string, cfg runConfig) ([]runResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	jobs := cfg.jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	results := make([]runResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := runCircuit(path, cfg)
			if err != nil {
				return errors.Wrap(err, path)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runCircuit loads, builds and simulates one circuit.
func runCircuit(path string, cfg runConfig) (runResult, error) {
	c, err := circuit.Load(path)
	if err != nil {
		return runResult{}, err
	}
	log := logrus.WithField("circuit", filepath.Base(path))
	opts := []sim.Option{sim.WithLogger(log), sim.WithVersion(version)}
	if cfg.seed != nil {
		opts = append(opts, sim.WithSeed(*cfg.seed))
	}
	sys, err := circuit.Build(c, opts...)
	if err != nil {
		return runResult{}, err
	}
	until := c.Until
	if cfg.until >= 0 {
		until = cfg.until
	}

	tracePath := cfg.tracePath(path)
	w, err := createTrace(tracePath)
	if err != nil {
		return runResult{}, err
	}
	if err := sys.Open(w); err != nil {
		_ = w.Close()
		return runResult{}, err
	}
	if err := sys.RunUntil(until); err != nil {
		_ = sys.Close()
		return runResult{}, err
	}
	if err := sys.Close(); err != nil {
		return runResult{}, err
	}
	return runResult{Path: path, RunID: sys.RunID(), TracePath: tracePath, Metrics: sys.Metrics()}, nil
}

// createTrace opens the trace sink. "-" is stdout, which is never closed.
func createTrace(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating trace directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating trace")
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func init() {
	runCmd.Flags().Int64Var(&runUntil, "until", -1, "Simulated end time in ticks (default: the circuit's until)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Seed for random initial states (default: the circuit's seed)")
	runCmd.Flags().StringVar(&runTrace, "trace", "", "Trace file for a single circuit, - for stdout")
	runCmd.Flags().StringVar(&runOutDir, "out-dir", ".", "Directory receiving <circuit>.vcd traces")
	runCmd.Flags().IntVar(&runJobs, "jobs", runtime.NumCPU(), "Circuits simulated concurrently")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")

	rootCmd.AddCommand(runCmd)
}
