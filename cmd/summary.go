package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/logicsim/logicsim/sim/trace"
)

var summaryTop int // Signals listed, busiest first; 0 lists all in declaration order

var summaryCmd = &cobra.Command{
	Use:   "summary <trace.vcd>",
	Short: "Summarize the signal activity of a trace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			logrus.Fatalf("Failed to open trace: %v", err)
		}
		defer f.Close()
		d, err := trace.Read(f)
		if err != nil {
			logrus.Fatalf("Failed to read trace %s: %v", args[0], err)
		}
		writeSummary(os.Stdout, d, summaryTop)
	},
}

func writeSummary(w io.Writer, d *trace.Dump, top int) {
	s := trace.Summarize(d)
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Version              : %s\n", d.Version)
	fmt.Fprintf(w, "Date                 : %s\n", d.Date)
	fmt.Fprintf(w, "Signals              : %d\n", len(s.Signals))
	fmt.Fprintf(w, "Frames               : %d\n", s.Frames)
	fmt.Fprintf(w, "End Time             : %d\n", s.EndTime)

	signals := s.Signals
	if top > 0 {
		signals = s.Busiest(top)
	}
	if len(signals) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%-32s %7s %6s %7s  %s\n", "signal", "changes", "rising", "falling", "last")
	for _, sig := range signals {
		name := sig.Label
		if sig.Scope != "" {
			name = sig.Scope + "." + sig.Label
		}
		fmt.Fprintf(w, "%-32s %7d %6d %7d  %s\n", name, sig.Changes, sig.Rising, sig.Falling, sig.Last)
	}
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 0, "List only the n busiest signals")

	rootCmd.AddCommand(summaryCmd)
}
