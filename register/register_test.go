package register

import (
	"testing"

	"github.com/y86pipe/y86pipe-go/isa"
)

func TestWriteDeferredUntilCommit(t *testing.T) {
	f := New()
	f.Propose(isa.RAX, 0xCBA)
	if f.Read(isa.RAX) != 0 {
		t.Fatalf("Read before Commit = 0x%x, want 0", f.Read(isa.RAX))
	}
	f.Commit()
	if f.Read(isa.RAX) != 0xCBA {
		t.Fatalf("Read after Commit = 0x%x, want 0xcba", f.Read(isa.RAX))
	}
}

func TestRNoneWriteDropped(t *testing.T) {
	f := New()
	f.Propose(isa.RNONE, 0xDEAD)
	f.Commit()
	if snap := f.Snapshot(); snap != [NumRegisters]uint64{} {
		t.Fatalf("writing RNONE mutated state: %v", snap)
	}
}

func TestIndependentSimultaneousWrites(t *testing.T) {
	f := New()
	f.Propose(isa.RAX, 1)
	f.Propose(isa.RCX, 2)
	f.Commit()
	if f.Read(isa.RAX) != 1 || f.Read(isa.RCX) != 2 {
		t.Fatalf("got rax=%d rcx=%d, want 1, 2", f.Read(isa.RAX), f.Read(isa.RCX))
	}
}
