package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/logicsim/logicsim/sim"
	"github.com/logicsim/logicsim/sim/devices"
)

var tableFill string // Fill for the words padding the table to a power of two

var tableCmd = &cobra.Command{
	Use:   "table <file>",
	Short: "Print the words of a table file as a ROM would hold them",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fill, err := sim.ParseFill(tableFill)
		if err != nil {
			logrus.Fatalf("Invalid --fill: %v", err)
		}
		td, err := devices.LoadTable(args[0])
		if err != nil {
			logrus.Fatalf("Failed to load table %s: %v", args[0], err)
		}
		if err := writeTable(os.Stdout, td, fill); err != nil {
			logrus.Fatalf("Invalid table %s: %v", args[0], err)
		}
	},
}

// writeTable prints one line per word, address first, bits MSB first.
// Padding words are marked.
func writeTable(w io.Writer, td devices.TableData, fill sim.Fill) error {
	t, err := sim.ParseTable(td.Bits, td.Width, fill, sim.NewPartitionedRNG(sim.NewSimulationKey(0)).ForSubsystem(sim.SubsystemTables))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d words x %d bits, %d address bits\n", t.Len(), t.Width(), t.AddressBits())
	for i := 0; i < t.Len(); i++ {
		word := t.Word(i)
		line := fmt.Sprintf("%*d  %s", digits(t.Len()-1), i, word.MSBString())
		if n, ok := word.Uint64(); ok {
			line += fmt.Sprintf("  0x%X", n)
		}
		if i >= td.Words {
			line += "  (fill)"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}

func init() {
	tableCmd.Flags().StringVar(&tableFill, "fill", "U", "Padding fill: 0, 1, U or R")

	rootCmd.AddCommand(tableCmd)
}
