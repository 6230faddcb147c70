// Package loader turns a raw Y86-64 object-code byte image into the
// memory.Bank a machine starts from (spec.md §1: "an assembler/loader
// producing object code is an external collaborator"; this package is
// the minimal concrete implementation of the loader half of that
// boundary — nothing here assembles source, it only places an already
// assembled image at address 0 of a fixed-capacity address space).
package loader

import (
	"fmt"

	"github.com/y86pipe/y86pipe-go/memory"
)

// DefaultCapacity is used when a caller does not need a larger address
// space than the reference Y86-64 simulator's default (CS:APP's ysim
// defaults to 64KiB).
const DefaultCapacity = 1 << 16

// Load builds a memory.Bank of capacity bytes (DefaultCapacity if 0)
// with image copied to address 0 and the start address returned as
// entry (always 0: Y86-64 object code has no separate entry-point
// header, execution always begins at address 0, per spec.md §6).
func Load(image []byte, capacity int) (mem *memory.Bank, entry uint64, err error) {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if len(image) > capacity {
		return nil, 0, fmt.Errorf("loader: image of %d bytes exceeds capacity %d", len(image), capacity)
	}
	mem, err = memory.NewFromImage(capacity, image)
	if err != nil {
		return nil, 0, err
	}
	return mem, 0, nil
}
