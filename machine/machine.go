// Package machine is the top-level façade spec.md §1 describes as "the
// simulator": load an object image, pick an architecture, and drive it
// cycle by cycle or to completion, reading back state through
// package trace. Nothing below this layer is exported API surface for
// end users — cmd/y86sim is the only other caller.
package machine

import (
	"fmt"

	"github.com/y86pipe/y86pipe-go/arch"
	"github.com/y86pipe/y86pipe-go/loader"
	"github.com/y86pipe/y86pipe-go/memory"
	"github.com/y86pipe/y86pipe-go/trace"
)

// Machine binds a compiled architecture Instance to a running PC trace.
type Machine struct {
	arch *arch.Instance
}

// New loads image into a fresh address space of the given capacity
// (loader.DefaultCapacity if 0) and compiles architecture archName
// against it.
func New(archName string, image []byte, capacity int) (*Machine, error) {
	mem, _, err := loader.Load(image, capacity)
	if err != nil {
		return nil, fmt.Errorf("machine: %w", err)
	}
	inst, err := arch.Build(archName, mem)
	if err != nil {
		return nil, fmt.Errorf("machine: %w", err)
	}
	return &Machine{arch: inst}, nil
}

// Architectures lists every architecture name machine.New accepts.
func Architectures() []string { return arch.Names() }

// Tick advances the machine by exactly one cycle. A no-op once Halted.
func (m *Machine) Tick() error { return m.arch.Engine.Tick() }

// Run ticks until halted or cycleLimit cycles have elapsed (0 = no
// limit), returning an *engine.RunawayError in the latter case.
func (m *Machine) Run(cycleLimit uint64) error { return m.arch.Engine.Run(cycleLimit) }

// Halted reports whether the machine has reached a terminal status.
func (m *Machine) Halted() bool { return m.arch.Engine.Halted() }

// Cycle returns the number of cycles ticked so far.
func (m *Machine) Cycle() uint64 { return m.arch.Engine.Cycle() }

// Memory returns the machine's backing address space, for callers that
// need to inspect data written by rmmovq/pushq/call rather than just
// register state.
func (m *Machine) Memory() *memory.Bank { return m.arch.Memory }

// Snapshot captures the machine's complete state as of the most recent
// Tick, for rendering or export via package trace.
func (m *Machine) Snapshot() trace.Snapshot {
	stages := make(map[string]trace.StageSnapshot, len(m.arch.Stages))
	for name, reg := range m.arch.Stages {
		stages[name] = trace.StageSnapshot{Status: reg.Status(), Fields: reg.Snapshot()}
	}
	return trace.Snapshot{
		Architecture: m.arch.Name,
		Cycle:        m.arch.Engine.Cycle(),
		Halted:       m.arch.Engine.Halted(),
		HaltStatus:   m.arch.Engine.HaltStatus(),
		Registers:    m.arch.Registers.Snapshot(),
		CC:           m.arch.CondCodes.Read(),
		Stages:       stages,
		Signals:      m.arch.Engine.Signals(),
	}
}
