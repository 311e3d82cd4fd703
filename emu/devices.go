// Package emu provides functional VR4300 emulation.
package emu

import "github.com/sarchlab/m64sim/insts"

// Device is a register-mapped collaborator. Coprocessors, the MMU and the
// timer are all reached through indexed 32-bit reads and writes.
type Device interface {
	Read32(index uint32) uint32
	Write32(index uint32, value uint32)
}

// Device64 is implemented by devices that support 64-bit register access.
// Doubleword coprocessor transfers fall back to an even/odd pair of 32-bit
// accesses when a device does not implement it.
type Device64 interface {
	Read64(index uint32) uint64
	Write64(index uint32, value uint64)
}

// Timer is the clocked collaborator that schedules hardware events.
type Timer interface {
	Device

	// Clock advances the timer by the given number of CPU cycles.
	Clock(cycles uint32)
}

// Bus provides physical memory access. All multi-byte accesses are
// big-endian.
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Read64(addr uint32) uint64
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
	Write64(addr uint32, value uint64)
}

// CycleModel reports extra stall cycles on top of the base cycle multiplier.
type CycleModel interface {
	Fetch(phys uint32) uint32
	Data(phys uint32, write bool) uint32
	Execute(inst *insts.Instruction) uint32
}

// COP0 register indices. 0-31 are architectural, the rest are pseudo
// registers of the coprocessor collaborator.
const (
	Cop0RegBadVAddr uint32 = 8
	Cop0RegCount    uint32 = 9
	Cop0RegCompare  uint32 = 11
	Cop0RegStatus   uint32 = 12
	Cop0RegCause    uint32 = 13
	Cop0RegEPC      uint32 = 14

	// Cop0RegException receives an exception code to raise.
	Cop0RegException uint32 = 32
	// Cop0RegPermanentLoop reads nonzero when the program can never leave
	// an idle loop.
	Cop0RegPermanentLoop uint32 = 33
	// Cop0RegSafeIdle reads nonzero when emulated time may be skipped.
	Cop0RegSafeIdle uint32 = 34
	// Cop0RegAdvance advances the coprocessor clock by the written cycles.
	Cop0RegAdvance uint32 = 35
	// Cop0RegMultiplier receives the cycle-per-instruction multiplier.
	Cop0RegMultiplier uint32 = 36
	// Cop0RegCommand receives the function field of CO operations.
	Cop0RegCommand uint32 = 37
)

// COP1 register indices.
const (
	// Cop1RegControl is the base of the FCR space (CFC1/CTC1).
	Cop1RegControl uint32 = 32
	// Cop1RegExecute receives arithmetic instruction words.
	Cop1RegExecute uint32 = 64

	cop1CondBit = 1 << 23
)

// TimerRegNextEvent reads the signed cycle distance to the next scheduled
// event. Writing reprograms that distance.
const TimerRegNextEvent uint32 = 4

// Exception codes written to Cop0RegException.
const (
	ExcAddressLoad  uint32 = 4
	ExcAddressStore uint32 = 5
	ExcSyscall      uint32 = 8
	ExcBreakpoint   uint32 = 9
)

// DirectMapper is the default MMU. It maps KSEG0/KSEG1 style addresses by
// dropping the segment bits.
type DirectMapper struct{}

// Read32 translates a virtual address to a physical one.
func (DirectMapper) Read32(vaddr uint32) uint32 {
	return vaddr & 0x1FFFFFFF
}

// Write32 is ignored.
func (DirectMapper) Write32(uint32, uint32) {}

type nullDevice struct{}

func (nullDevice) Read32(uint32) uint32   { return 0 }
func (nullDevice) Write32(uint32, uint32) {}
func (nullDevice) Clock(uint32)           {}
