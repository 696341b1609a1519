package trace

import "sort"

// SignalSummary aggregates the activity of one traced signal.
type SignalSummary struct {
	Var
	Scope   string
	Changes int    // value changes after the first frame it appears in
	Rising  int    // single-bit 0→1 transitions
	Falling int    // single-bit 1→0 transitions
	Last    string // final value, MSB first
}

// Summary aggregates statistics from a Dump.
type Summary struct {
	Frames  int
	EndTime int64
	Signals []SignalSummary // in declaration order
}

// Summarize computes per-signal statistics from a Dump.
// Safe for nil or empty dumps (returns zero-value fields).
func Summarize(d *Dump) *Summary {
	s := &Summary{}
	if d == nil {
		return s
	}
	s.Frames = len(d.Frames)
	if s.Frames > 0 {
		s.EndTime = d.Frames[s.Frames-1].Time
	}

	index := make(map[string]int, len(d.Vars))
	for i, v := range d.Vars {
		index[v.ID] = i
		s.Signals = append(s.Signals, SignalSummary{Var: v, Scope: d.Scopes[v.ID]})
	}
	seen := make([]bool, len(d.Vars))
	for _, f := range d.Frames {
		for _, c := range f.Changes {
			i, ok := index[c.ID]
			if !ok {
				continue
			}
			sig := &s.Signals[i]
			if seen[i] {
				sig.Changes++
				switch {
				case sig.Last == "0" && c.Bits == "1":
					sig.Rising++
				case sig.Last == "1" && c.Bits == "0":
					sig.Falling++
				}
			}
			seen[i] = true
			sig.Last = c.Bits
		}
	}
	return s
}

// Busiest returns up to n signals sorted by decreasing number of changes.
func (s *Summary) Busiest(n int) []SignalSummary {
	out := append([]SignalSummary(nil), s.Signals...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Changes > out[j].Changes })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
