// Package trace renders one cycle's full machine state for debugging
// and golden-file comparison (spec.md §4.F "Trace"): register file,
// condition codes, every stage register's latched content, and every
// named HCL signal computed that cycle.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/y86pipe/y86pipe-go/register"
	"github.com/y86pipe/y86pipe-go/signal"
	"github.com/y86pipe/y86pipe-go/stage"
)

// StageSnapshot is one stage register's state at the end of a cycle.
type StageSnapshot struct {
	Status stage.Status  `json:"status"`
	Fields stage.Fields  `json:"fields"`
}

// Snapshot is the complete, serializable state of a machine after one
// Tick: enough to reconstruct everything a human or a golden-file
// comparison needs, without reaching back into the running Instance.
type Snapshot struct {
	Architecture string                   `json:"architecture"`
	Cycle        uint64                   `json:"cycle"`
	Halted       bool                     `json:"halted"`
	HaltStatus   stage.Status             `json:"halt_status"`
	Registers    [register.NumRegisters]uint64 `json:"registers"`
	CC           signal.CC                `json:"cc"`
	Stages       map[string]StageSnapshot `json:"stages"`
	Signals      map[string]signal.Value  `json:"signals"`
}

// Render writes a fixed-width tabular rendering of s to w. verbose also
// includes every named HCL signal; the default view is just PC,
// registers, condition codes and stage registers, matching the level of
// detail spec.md §6's CLI describes for an ordinary run.
func Render(w io.Writer, s Snapshot, verbose bool) error {
	fmt.Fprintf(w, "cycle %-6d arch=%-12s halted=%v", s.Cycle, s.Architecture, s.Halted)
	if s.Halted {
		fmt.Fprintf(w, " (%s)", s.HaltStatus)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  cc: ZF=%v SF=%v OF=%v\n", s.CC.ZF, s.CC.SF, s.CC.OF)

	fmt.Fprint(w, "  registers:")
	for i, v := range s.Registers {
		if i%4 == 0 {
			fmt.Fprint(w, "\n   ")
		}
		fmt.Fprintf(w, " r%-2d=0x%016x", i, v)
	}
	fmt.Fprintln(w)

	names := make([]string, 0, len(s.Stages))
	for name := range s.Stages {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "  stages:")
	for _, name := range names {
		st := s.Stages[name]
		fmt.Fprintf(w, "    %-6s status=%-4s fields=%s\n", name, st.Status, formatFields(st.Fields))
	}

	if verbose {
		fmt.Fprintln(w, "  signals:")
		sigNames := make([]string, 0, len(s.Signals))
		for name := range s.Signals {
			sigNames = append(sigNames, name)
		}
		sort.Strings(sigNames)
		for _, name := range sigNames {
			fmt.Fprintf(w, "    %-20s = %s\n", name, s.Signals[name])
		}
		fmt.Fprintln(w, spew.Sdump(s.Signals))
	}
	return nil
}

// JSON marshals s for scripted / golden-file consumption (spec.md §6's
// "--export json").
func JSON(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func formatFields(f stage.Fields) string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=0x%x", name, f[name]))
	}
	return strings.Join(parts, " ")
}
