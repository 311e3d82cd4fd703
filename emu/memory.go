// Package emu provides functional VR4300 emulation.
package emu

import "encoding/binary"

// Physical memory map of the reference machine.
const (
	// DefaultRDRAMSize is the RDRAM size with the memory expansion fitted.
	DefaultRDRAMSize uint32 = 8 * 1024 * 1024

	// SPMemBase is the physical base of the RSP data/instruction memory.
	SPMemBase uint32 = 0x04000000
	// SPMemSize covers DMEM and IMEM.
	SPMemSize uint32 = 0x2000
)

// Memory is a big-endian physical memory made of RDRAM at address zero and
// the RSP memory bank. Accesses outside both regions read as zero and
// discard writes.
type Memory struct {
	rdram []byte
	spmem []byte
}

// NewMemory creates a memory with the default RDRAM size.
func NewMemory() *Memory {
	return NewMemoryWithSize(DefaultRDRAMSize)
}

// NewMemoryWithSize creates a memory with the given RDRAM size in bytes.
func NewMemoryWithSize(rdramSize uint32) *Memory {
	return &Memory{
		rdram: make([]byte, rdramSize),
		spmem: make([]byte, SPMemSize),
	}
}

// RDRAMSize returns the RDRAM size in bytes.
func (m *Memory) RDRAMSize() uint32 {
	return uint32(len(m.rdram))
}

// slice returns the backing bytes for [addr, addr+size) or nil if the range
// is not fully inside one region.
func (m *Memory) slice(addr uint32, size uint32) []byte {
	if uint64(addr)+uint64(size) <= uint64(len(m.rdram)) {
		return m.rdram[addr : addr+size]
	}
	if addr >= SPMemBase && addr-SPMemBase+size <= SPMemSize {
		off := addr - SPMemBase
		return m.spmem[off : off+size]
	}
	return nil
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) uint8 {
	if b := m.slice(addr, 1); b != nil {
		return b[0]
	}
	return 0
}

// Read16 reads a big-endian halfword.
func (m *Memory) Read16(addr uint32) uint16 {
	if b := m.slice(addr, 2); b != nil {
		return binary.BigEndian.Uint16(b)
	}
	return 0
}

// Read32 reads a big-endian word.
func (m *Memory) Read32(addr uint32) uint32 {
	if b := m.slice(addr, 4); b != nil {
		return binary.BigEndian.Uint32(b)
	}
	return 0
}

// Read64 reads a big-endian doubleword.
func (m *Memory) Read64(addr uint32) uint64 {
	if b := m.slice(addr, 8); b != nil {
		return binary.BigEndian.Uint64(b)
	}
	return 0
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) {
	if b := m.slice(addr, 1); b != nil {
		b[0] = value
	}
}

// Write16 writes a big-endian halfword.
func (m *Memory) Write16(addr uint32, value uint16) {
	if b := m.slice(addr, 2); b != nil {
		binary.BigEndian.PutUint16(b, value)
	}
}

// Write32 writes a big-endian word.
func (m *Memory) Write32(addr uint32, value uint32) {
	if b := m.slice(addr, 4); b != nil {
		binary.BigEndian.PutUint32(b, value)
	}
}

// Write64 writes a big-endian doubleword.
func (m *Memory) Write64(addr uint32, value uint64) {
	if b := m.slice(addr, 8); b != nil {
		binary.BigEndian.PutUint64(b, value)
	}
}

// LoadProgram copies program bytes into memory starting at addr.
func (m *Memory) LoadProgram(addr uint32, program []byte) {
	for i, b := range program {
		m.Write8(addr+uint32(i), b)
	}
}
