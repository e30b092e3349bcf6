package cpu

import (
	"slices"
)

const (
	MEMORY_DENSE_LIMIT = 1 << 20 // Addresses below this are held contiguously.
)

// Memory is a zero-initialized, growable array of words addressed from 0.
// Words below MEMORY_DENSE_LIMIT are held in Data; words above it are held
// sparsely, so that a single distant write stays cheap.
type Memory struct {
	Data   []int64
	Sparse map[int64]int64

	top int64 // One past the highest sparse address written.
}

// NewMemory creates a memory holding a copy of image at address 0.
func NewMemory(image []int64) (mem *Memory) {
	mem = &Memory{
		Data: slices.Clone(image),
	}

	return
}

// Len returns one past the highest address ever written, or loaded.
func (mem *Memory) Len() int64 {
	if mem.top > 0 {
		return mem.top
	}

	return int64(len(mem.Data))
}

// Read returns the word at addr. Words never written read as zero, and
// reading them does not extend the memory.
func (mem *Memory) Read(addr int64) (value int64, err error) {
	if addr < 0 {
		err = ErrAddressValue(addr)
		return
	}

	if addr < int64(len(mem.Data)) {
		value = mem.Data[addr]
		return
	}

	if addr >= MEMORY_DENSE_LIMIT {
		value = mem.Sparse[addr]
	}

	return
}

// Write stores value at addr, growing the memory with zeros as needed.
func (mem *Memory) Write(addr int64, value int64) (err error) {
	if addr < 0 {
		err = ErrAddressValue(addr)
		return
	}

	if addr < int64(len(mem.Data)) {
		mem.Data[addr] = value
		return
	}

	if addr < MEMORY_DENSE_LIMIT {
		grow := int(addr) + 1 - len(mem.Data)
		mem.Data = append(mem.Data, make([]int64, grow)...)
		mem.Data[addr] = value
		return
	}

	if mem.Sparse == nil {
		mem.Sparse = make(map[int64]int64)
	}
	mem.Sparse[addr] = value
	mem.top = max(mem.top, addr+1)

	return
}

// Words returns a copy of the contiguous words, from address 0.
func (mem *Memory) Words() []int64 {
	return slices.Clone(mem.Data)
}
