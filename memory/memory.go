// Package memory implements the byte-addressable, fixed-capacity memory
// shared by instruction fetch and the data-memory stage (spec.md §3,
// §4.B InstructionMemory/DataMemory). It is adapted from the teacher's
// memory.Bank abstraction (github.com/jmchacon/6502/memory): instead of
// 64KB-aliased banks chained by a Parent(), Y86-64 has one flat,
// fixed-size address space with no aliasing and an explicit
// out-of-range error rather than address masking.
package memory

import "fmt"

// ErrOutOfRange reports an access at or beyond the memory's capacity.
// Per spec.md §3/§4.F, this becomes the Adr stage status; it never
// wraps around the way the teacher's ram.Read/Write mask addr to fit.
type ErrOutOfRange struct {
	Addr uint64
	Size int
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("memory: address 0x%x out of range (capacity %d)", e.Addr, e.Size)
}

// Bank is a flat, byte-addressable, little-endian memory of fixed
// capacity. Unlike the teacher's Bank, there is no Parent()/DatabusVal()
// chaining: Y86-64 has a single unified address space for both
// instruction and data access, and no aliasing semantics depend on a
// databus side channel.
type Bank struct {
	bytes []byte
}

// New allocates a zero-filled Bank of the given capacity.
func New(capacity int) *Bank {
	return &Bank{bytes: make([]byte, capacity)}
}

// NewFromImage allocates a Bank of the given capacity and copies image
// into its start (the loader's responsibility in a full system; exposed
// here so tests and the machine package can build memory without a
// separate loader round-trip). Regions beyond len(image) default to
// zero, per spec.md §6.
func NewFromImage(capacity int, image []byte) (*Bank, error) {
	if len(image) > capacity {
		return nil, fmt.Errorf("memory: image of %d bytes exceeds capacity %d", len(image), capacity)
	}
	b := New(capacity)
	copy(b.bytes, image)
	return b, nil
}

// Len returns the memory's capacity in bytes.
func (b *Bank) Len() int { return len(b.bytes) }

// ReadByte reads a single byte. Returns ErrOutOfRange if addr >= Len().
func (b *Bank) ReadByte(addr uint64) (byte, error) {
	if addr >= uint64(len(b.bytes)) {
		return 0, ErrOutOfRange{Addr: addr, Size: len(b.bytes)}
	}
	return b.bytes[addr], nil
}

// ReadWord reads 8 little-endian bytes starting at addr. Returns
// ErrOutOfRange if any of the 8 bytes falls at or beyond Len() — no
// partial reads, no wrap-around (spec.md §3 invariant).
func (b *Bank) ReadWord(addr uint64) (uint64, error) {
	if addr+8 > uint64(len(b.bytes)) || addr+8 < addr {
		return 0, ErrOutOfRange{Addr: addr, Size: len(b.bytes)}
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b.bytes[addr+uint64(i)]) << (8 * uint(i))
	}
	return v, nil
}

// WriteWord writes val as 8 little-endian bytes starting at addr.
// Returns ErrOutOfRange under the same conditions as ReadWord, and
// leaves the memory unchanged when it does (no partial writes).
func (b *Bank) WriteWord(addr, val uint64) error {
	if addr+8 > uint64(len(b.bytes)) || addr+8 < addr {
		return ErrOutOfRange{Addr: addr, Size: len(b.bytes)}
	}
	for i := 0; i < 8; i++ {
		b.bytes[addr+uint64(i)] = byte(val >> (8 * uint(i)))
	}
	return nil
}

// ReadRange returns a copy of n bytes starting at addr, for trace/export
// use (e.g. dumping the region around a symbol). Returns ErrOutOfRange
// if the range isn't fully in bounds.
func (b *Bank) ReadRange(addr uint64, n int) ([]byte, error) {
	if n < 0 || addr+uint64(n) > uint64(len(b.bytes)) {
		return nil, ErrOutOfRange{Addr: addr, Size: len(b.bytes)}
	}
	out := make([]byte, n)
	copy(out, b.bytes[addr:addr+uint64(n)])
	return out, nil
}

// Bytes returns the entire backing array, for comparing memory against
// an initial image (spec.md §8: "memory outside the written range
// equals the initial image"). Callers must not mutate the result.
func (b *Bank) Bytes() []byte { return b.bytes }
