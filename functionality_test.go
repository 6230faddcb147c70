// Package functionality does end-to-end verification of every
// registered architecture against small hand-assembled Y86-64 object
// images, the way the teacher's root-level functionality package does
// for its 6502 variants.
package functionality

import (
	"encoding/binary"
	"testing"

	"github.com/go-test/deep"

	"github.com/y86pipe/y86pipe-go/isa"
	"github.com/y86pipe/y86pipe-go/machine"
	"github.com/y86pipe/y86pipe-go/stage"
)

const allArchCapacity = 256

var allArchitectures = []string{"seq_std", "seq_plus_std", "pipe_std"}

// irmovq encodes "irmovq $imm, %dst".
func irmovq(dst byte, imm uint64) []byte {
	b := make([]byte, 10)
	b[0] = byte(isa.IIRMovQ) << 4
	b[1] = isa.RNONE<<4 | dst
	binary.LittleEndian.PutUint64(b[2:], imm)
	return b
}

// rrmovq encodes "rrmovq %src, %dst".
func rrmovq(src, dst byte) []byte {
	return []byte{byte(isa.ICMovXX) << 4, src<<4 | dst}
}

// addq encodes "addq %src, %dst" (dst += src).
func addq(src, dst byte) []byte {
	return []byte{byte(isa.IOpQ)<<4 | isa.AluAdd, src<<4 | dst}
}

// mrmovqDisp encodes "mrmovq disp, %dst" with no base register
// (address == disp).
func mrmovqDisp(dst byte, disp uint64) []byte {
	b := make([]byte, 10)
	b[0] = byte(isa.IMRMovQ) << 4
	b[1] = dst<<4 | isa.RNONE
	binary.LittleEndian.PutUint64(b[2:], disp)
	return b
}

// jne encodes "jne target".
func jne(target uint64) []byte {
	b := make([]byte, 9)
	b[0] = byte(isa.IJXX)<<4 | isa.JmpNE
	binary.LittleEndian.PutUint64(b[1:], target)
	return b
}

// rmmovqDisp encodes "rmmovq %src, disp" with no base register
// (address == disp).
func rmmovqDisp(src byte, disp uint64) []byte {
	b := make([]byte, 10)
	b[0] = byte(isa.IRMMovQ) << 4
	b[1] = src<<4 | isa.RNONE
	binary.LittleEndian.PutUint64(b[2:], disp)
	return b
}

// call encodes "call target".
func call(target uint64) []byte {
	b := make([]byte, 9)
	b[0] = byte(isa.ICall) << 4
	binary.LittleEndian.PutUint64(b[1:], target)
	return b
}

var haltInsn = []byte{byte(isa.IHalt) << 4}
var retInsn = []byte{byte(isa.IRet) << 4}

func at(image []byte, offset int, bytes []byte) {
	copy(image[offset:], bytes)
}

func runToHalt(t *testing.T, archName string, image []byte, cycleLimit uint64) *machine.Machine {
	t.Helper()
	m, err := machine.New(archName, image, 0)
	if err != nil {
		t.Fatalf("%s: New: %v", archName, err)
	}
	if err := m.Run(cycleLimit); err != nil {
		t.Fatalf("%s: Run: %v", archName, err)
	}
	return m
}

func TestHaltOnly(t *testing.T) {
	for _, arch := range allArchitectures {
		image := make([]byte, allArchCapacity)
		at(image, 0, haltInsn)
		m := runToHalt(t, arch, image, 20)
		if got := m.Snapshot().HaltStatus; got != stage.Hlt {
			t.Errorf("%s: HaltStatus = %v, want Hlt", arch, got)
		}
	}
}

func TestImmediateToRegister(t *testing.T) {
	for _, arch := range allArchitectures {
		image := make([]byte, allArchCapacity)
		at(image, 0, irmovq(isa.RAX, 10))
		at(image, 10, haltInsn)
		m := runToHalt(t, arch, image, 20)
		snap := m.Snapshot()
		if snap.HaltStatus != stage.Hlt {
			t.Errorf("%s: HaltStatus = %v, want Hlt", arch, snap.HaltStatus)
		}
		if snap.Registers[isa.RAX] != 10 {
			t.Errorf("%s: %%rax = %d, want 10", arch, snap.Registers[isa.RAX])
		}
	}
}

func TestRegisterCopyProgram(t *testing.T) {
	for _, arch := range allArchitectures {
		image := make([]byte, allArchCapacity)
		off := 0
		off += copy(image[off:], irmovq(isa.RAX, 10))
		off += copy(image[off:], irmovq(isa.RBX, 20))
		off += copy(image[off:], rrmovq(isa.RAX, isa.RCX))
		copy(image[off:], haltInsn)
		m := runToHalt(t, arch, image, 40)
		snap := m.Snapshot()
		want := [3]uint64{10, 20, 10} // rax, rbx, rcx
		got := [3]uint64{snap.Registers[isa.RAX], snap.Registers[isa.RBX], snap.Registers[isa.RCX]}
		if diff := deep.Equal(got, want); diff != nil {
			t.Errorf("%s: register mismatch: %v", arch, diff)
		}
	}
}

// TestSwapProgram is the README swap: load two words from memory,
// write each back to the other's address, the way spec.md §8 scenario
// 3 describes it.
func TestSwapProgram(t *testing.T) {
	const nums = 200
	const first = 0xcba
	const second = 0xbca

	for _, arch := range allArchitectures {
		image := make([]byte, allArchCapacity)
		binary.LittleEndian.PutUint64(image[nums:], first)
		binary.LittleEndian.PutUint64(image[nums+8:], second)

		off := 0
		off += copy(image[off:], mrmovqDisp(isa.RAX, nums))
		off += copy(image[off:], mrmovqDisp(isa.RBX, nums+8))
		off += copy(image[off:], rmmovqDisp(isa.RAX, nums+8))
		off += copy(image[off:], rmmovqDisp(isa.RBX, nums))
		copy(image[off:], haltInsn)

		m := runToHalt(t, arch, image, 40)
		if got := m.Snapshot().HaltStatus; got != stage.Hlt {
			t.Errorf("%s: HaltStatus = %v, want Hlt", arch, got)
		}
		gotFirst, err := m.Memory().ReadWord(nums)
		if err != nil {
			t.Fatalf("%s: ReadWord(nums): %v", arch, err)
		}
		gotSecond, err := m.Memory().ReadWord(nums + 8)
		if err != nil {
			t.Fatalf("%s: ReadWord(nums+8): %v", arch, err)
		}
		if gotFirst != second || gotSecond != first {
			t.Errorf("%s: nums = [0x%x, 0x%x], want [0x%x, 0x%x]", arch, gotFirst, gotSecond, second, first)
		}
	}
}

func TestInvalidInstructionHalts(t *testing.T) {
	for _, arch := range allArchitectures {
		image := make([]byte, allArchCapacity)
		image[0] = 0xF0 // icode 0xF: not a valid Y86-64 instruction class
		m := runToHalt(t, arch, image, 20)
		if got := m.Snapshot().HaltStatus; got != stage.Ins {
			t.Errorf("%s: HaltStatus = %v, want Ins", arch, got)
		}
	}
}

// TestLoadUseHazardForwardsCorrectly loads a value from memory into
// %rdx and immediately adds it into %rax on the very next instruction,
// the canonical load/use hazard. If pipe_std's load-use stall or its
// forwarding network were wrong, the addq would read the register
// file's stale (pre-load) %rdx instead of the freshly loaded 55, and
// %rax would come out as 0.
func TestLoadUseHazardForwardsCorrectly(t *testing.T) {
	const loadedValue = 55
	const dataAddr = 240

	image := make([]byte, allArchCapacity)
	binary.LittleEndian.PutUint64(image[dataAddr:], loadedValue)
	off := 0
	off += copy(image[off:], mrmovqDisp(isa.RDX, dataAddr))
	off += copy(image[off:], addq(isa.RDX, isa.RAX))
	copy(image[off:], haltInsn)

	m := runToHalt(t, "pipe_std", image, 40)
	snap := m.Snapshot()
	if snap.HaltStatus != stage.Hlt {
		t.Fatalf("HaltStatus = %v, want Hlt", snap.HaltStatus)
	}
	if snap.Registers[isa.RDX] != loadedValue {
		t.Errorf("%%rdx = %d, want %d", snap.Registers[isa.RDX], loadedValue)
	}
	if snap.Registers[isa.RAX] != loadedValue {
		t.Errorf("%%rax = %d, want %d (load-use hazard not forwarded)", snap.Registers[isa.RAX], loadedValue)
	}
}

// TestMispredictedBranchRecovers sets up a conditional jump that is
// NOT taken (predict-taken therefore mispredicts) and gives the
// wrongly-predicted path a different, decisive effect (%rbx=777) than
// the correct fall-through path (%rbx=99). If the two-bubble squash of
// D and E on misprediction were missing or wrong, the wrong-path
// instructions would execute and corrupt %rbx (or worse, run off into
// unrelated bytes).
func TestMispredictedBranchRecovers(t *testing.T) {
	const trapTarget = 200

	image := make([]byte, allArchCapacity)
	off := 0
	off += copy(image[off:], addq(isa.RAX, isa.RAX)) // 0 + 0 = 0, sets ZF
	off += copy(image[off:], jne(trapTarget))         // !ZF is false: not taken
	off += copy(image[off:], irmovq(isa.RBX, 99)) // correct fall-through path
	copy(image[off:], haltInsn)

	trapOff := trapTarget
	trapOff += copy(image[trapOff:], irmovq(isa.RBX, 777)) // wrongly-predicted path
	copy(image[trapOff:], haltInsn)

	m := runToHalt(t, "pipe_std", image, 40)
	snap := m.Snapshot()
	if snap.HaltStatus != stage.Hlt {
		t.Fatalf("HaltStatus = %v, want Hlt", snap.HaltStatus)
	}
	if snap.Registers[isa.RBX] != 99 {
		t.Errorf("%%rbx = %d, want 99 (mispredicted-branch recovery failed)", snap.Registers[isa.RBX])
	}
}

// TestReturnHazardProducesExactlyThreeBubbles calls a subroutine that
// immediately returns, then checks two things: Decode sees exactly
// three bubbles while ret drains through D, E, and M (spec.md §8's "a
// ret incurs exactly three bubbles"), and the instruction following
// the call still runs correctly once the real return address reaches
// Writeback.
func TestReturnHazardProducesExactlyThreeBubbles(t *testing.T) {
	const stackTop = 248
	const procAddr = 64

	image := make([]byte, allArchCapacity)
	off := 0
	off += copy(image[off:], irmovq(isa.RSP, stackTop))
	off += copy(image[off:], call(procAddr))
	off += copy(image[off:], irmovq(isa.RCX, 1))
	copy(image[off:], haltInsn)
	copy(image[procAddr:], retInsn)

	m, err := machine.New("pipe_std", image, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sawRet := false
	countingDone := false
	bubbles := 0
	for cycles := 0; cycles < 40 && !m.Halted() && !countingDone; cycles++ {
		if err := m.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
		d := m.Snapshot().Stages["D"]
		if !sawRet {
			if d.Fields["icode"] == uint64(isa.IRet) {
				sawRet = true
			}
			continue
		}
		if d.Status == stage.Bub {
			bubbles++
			continue
		}
		countingDone = true
	}
	if !sawRet {
		t.Fatalf("ret never reached Decode")
	}
	if !countingDone {
		t.Fatalf("Decode never left the return-hazard bubble window")
	}
	if bubbles != 3 {
		t.Errorf("ret hazard produced %d bubbles in Decode, want 3", bubbles)
	}

	if err := m.Run(40); err != nil {
		t.Fatalf("Run: %v", err)
	}
	snap := m.Snapshot()
	if snap.HaltStatus != stage.Hlt {
		t.Fatalf("HaltStatus = %v, want Hlt", snap.HaltStatus)
	}
	if snap.Registers[isa.RCX] != 1 {
		t.Errorf("%%rcx = %d, want 1 (instruction after call did not run correctly)", snap.Registers[isa.RCX])
	}
}
