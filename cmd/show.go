package cmd

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/logicsim/logicsim/sim"
	"github.com/logicsim/logicsim/sim/circuit"
)

var showDetail bool // Print each device's own description after the tree

// showStyles colours the device tree.
type showStyles struct {
	Device lipgloss.Style
	Kind   lipgloss.Style
	Output lipgloss.Style
	Input  lipgloss.Style
	Muted  lipgloss.Style
}

var (
	colorDevice = lipgloss.Color("#2CD7C7")
	colorOutput = lipgloss.Color("#F4D03F")
	colorInput  = lipgloss.Color("#20B9B4")
	colorMuted  = lipgloss.Color("#5C7A84")
)

func colourStyles() showStyles {
	return showStyles{
		Device: lipgloss.NewStyle().Bold(true).Foreground(colorDevice),
		Kind:   lipgloss.NewStyle().Foreground(colorMuted),
		Output: lipgloss.NewStyle().Foreground(colorOutput),
		Input:  lipgloss.NewStyle().Foreground(colorInput),
		Muted:  lipgloss.NewStyle().Foreground(colorMuted),
	}
}

func plainStyles() showStyles {
	s := lipgloss.NewStyle()
	return showStyles{Device: s, Kind: s, Output: s, Input: s, Muted: s}
}

// stylesFor returns coloured styles only when f is a terminal.
func stylesFor(f *os.File) showStyles {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return colourStyles()
	}
	return plainStyles()
}

var showCmd = &cobra.Command{
	Use:   "show <circuit.yaml>",
	Short: "Print the device tree of a circuit",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c, err := circuit.Load(args[0])
		if err != nil {
			logrus.Fatalf("Failed to load circuit %s: %v", args[0], err)
		}
		sys, err := circuit.Build(c, sim.WithVersion(version))
		if err != nil {
			logrus.Fatalf("Failed to build circuit %s: %v", args[0], err)
		}
		fmt.Fprintln(os.Stdout, renderTree(sys, stylesFor(os.Stdout)))
		if showDetail {
			fmt.Fprintln(os.Stdout)
			sys.Display(os.Stdout)
		}
	},
}

// renderTree draws the device hierarchy with the ports of every device.
func renderTree(sys *sim.System, st showStyles) string {
	t := tree.Root(st.Device.Render(sys.Root().Name())).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(st.Muted)
	for _, d := range sys.Root().Children() {
		t.Child(deviceNode(d, st))
	}
	return t.String()
}

func deviceNode(d *sim.Device, st showStyles) *tree.Tree {
	name := d.Name()
	if name == "" {
		name = "~"
	}
	t := tree.Root(st.Device.Render(name) + " " + st.Kind.Render(kindOf(d.Behavior())))
	for _, p := range d.Inputs() {
		t.Child(st.Input.Render(inputLabel(p)))
	}
	for _, p := range d.Outputs() {
		t.Child(st.Output.Render(outputLabel(p)))
	}
	for _, c := range d.Children() {
		t.Child(deviceNode(c, st))
	}
	return t
}

func inputLabel(p *sim.Port) string {
	src := p.Source().Path()
	if taps := p.Taps(); taps != nil {
		parts := make([]string, len(taps))
		for i, b := range taps {
			parts[i] = fmt.Sprint(b)
		}
		src += "[" + strings.Join(parts, ",") + "]"
	}
	return fmt.Sprintf("%s[%d] <- %s", portName(p), p.Size(), src)
}

func outputLabel(p *sim.Port) string {
	return fmt.Sprintf("%s[%d] = %s", portName(p), p.Size(), p.Get().MSBString())
}

func portName(p *sim.Port) string {
	if p.Name() == "" {
		return p.ID().String()
	}
	return p.Name()
}

// kindOf names a behavior by its type, e.g. "counter".
func kindOf(b sim.Behavior) string {
	t := reflect.TypeOf(b)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}

func init() {
	showCmd.Flags().BoolVar(&showDetail, "detail", false, "Also print the description of every device")

	rootCmd.AddCommand(showCmd)
}
