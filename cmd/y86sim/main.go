// Command y86sim runs a Y86-64 object-code image against one of the
// registered architectures and prints its cycle-by-cycle state, the
// CLI spec.md §6 describes as the simulator's "external interface".
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/y86pipe/y86pipe-go/loader"
	"github.com/y86pipe/y86pipe-go/machine"
	"github.com/y86pipe/y86pipe-go/trace"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "y86sim",
		Short: "Cycle-accurate Y86-64 processor simulator",
	}
	root.AddCommand(newRunCmd(), newListArchCmd())
	return root
}

func newListArchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-arch",
		Short: "List the registered architectures",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := machine.Architectures()
			sort.Strings(names)
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var (
		archName   string
		objPath    string
		objHex     string
		verbose    bool
		maxCycles  uint64
		exportFmt  string
		capacity   int
		traceEvery bool
	)
	cmd := &cobra.Command{
		Use:   "run [object-file]",
		Short: "Run an object-code image to completion (or a cycle limit)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if objPath != "" {
					return fmt.Errorf("y86sim: give the object file as an argument or with --obj, not both")
				}
				objPath = args[0]
			}
			image, err := readImage(objPath, objHex)
			if err != nil {
				return err
			}
			m, err := machine.New(archName, image, capacity)
			if err != nil {
				return err
			}

			for !m.Halted() {
				if maxCycles > 0 && m.Cycle() >= maxCycles {
					return fmt.Errorf("y86sim: %w", &cycleLimitError{maxCycles})
				}
				if err := m.Tick(); err != nil {
					return err
				}
				if traceEvery {
					if err := emit(m.Snapshot(), verbose, exportFmt); err != nil {
						return err
					}
				}
			}
			if !traceEvery {
				return emit(m.Snapshot(), verbose, exportFmt)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&archName, "arch", "seq_std", "Architecture: seq_std, seq_plus_std, or pipe_std")
	cmd.Flags().StringVar(&objPath, "obj", "", "Path to a raw Y86-64 object-code file")
	cmd.Flags().StringVar(&objHex, "hex", "", "Inline object code as a hex string, e.g. 30f2ba0c000000000000")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include every named HCL signal in the trace")
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0, "Cycle budget; 0 means unlimited")
	cmd.Flags().StringVar(&exportFmt, "export", "text", "Output format: text or json")
	cmd.Flags().IntVar(&capacity, "mem", loader.DefaultCapacity, "Address-space capacity in bytes")
	cmd.Flags().BoolVar(&traceEvery, "trace", false, "Print a snapshot after every cycle instead of just the final one")
	return cmd
}

type cycleLimitError struct{ limit uint64 }

func (e *cycleLimitError) Error() string {
	return fmt.Sprintf("exceeded %d-cycle limit without halting", e.limit)
}

func readImage(objPath, objHex string) ([]byte, error) {
	switch {
	case objPath != "" && objHex != "":
		return nil, fmt.Errorf("y86sim: --obj and --hex are mutually exclusive")
	case objPath != "":
		return os.ReadFile(objPath)
	case objHex != "":
		return hex.DecodeString(strings.TrimSpace(objHex))
	default:
		return nil, fmt.Errorf("y86sim: an object file (argument or --obj) or --hex is required")
	}
}

func emit(snap trace.Snapshot, verbose bool, format string) error {
	switch format {
	case "json":
		b, err := trace.JSON(snap)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	case "text":
		return trace.Render(os.Stdout, snap, verbose)
	default:
		return fmt.Errorf("y86sim: unknown --export format %q", format)
	}
}
