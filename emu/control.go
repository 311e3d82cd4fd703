// Package emu provides functional VR4300 emulation.
package emu

import "github.com/sirupsen/logrus"

// Size is the width of a control surface access in bytes.
type Size uint8

// Access sizes.
const (
	Size8  Size = 1
	Size16 Size = 2
	Size32 Size = 4
	Size64 Size = 8
)

// Control surface indices above the general-purpose registers.
const (
	RegPC          uint32 = 32
	RegTicks       uint32 = 33
	RegLLBit       uint32 = 35
	RegBranchState uint32 = 37
	RegInterrupts  uint32 = 38
	RegIdleProbe   uint32 = 39
	RegInstruction uint32 = 40
	RegHILow       uint32 = 41
	RegHIHigh      uint32 = 42
	RegLOLow       uint32 = 43
	RegLOHigh      uint32 = 44
	RegJump        uint32 = 64
)

func (s Size) mask() uint64 {
	if s >= Size64 {
		return ^uint64(0)
	}
	return 1<<(8*uint(s)) - 1
}

// Read reads a control surface register.
func (e *Emulator) Read(index uint32, size Size) uint64 {
	var v uint64

	switch {
	case index < 32:
		v = e.regFile.ReadReg(uint8(index))
	case index == RegPC:
		v = uint64(e.regFile.PC)
	case index == RegTicks:
		v = e.elapsedTicks
		e.elapsedTicks = 0
	case index == RegLLBit:
		v = boolToReg(e.regFile.LLBit)
	case index == RegBranchState:
		v = uint64(e.branchUnit.State)
	case index == RegInterrupts:
		v = uint64(e.cop0.Read32(Cop0RegCause) & e.cop0.Read32(Cop0RegStatus))
	case index == RegIdleProbe:
		v = boolToReg(e.idle(e.lastWord.Rs(), e.lastWord.Rt()))
	case index == RegInstruction:
		v = uint64(e.lastWord)
	case index == RegHILow:
		v = e.regFile.HI
	case index == RegHIHigh:
		v = e.regFile.HI >> 32
	case index == RegLOLow:
		v = e.regFile.LO
	case index == RegLOHigh:
		v = e.regFile.LO >> 32
	default:
		e.logger.WithField("index", index).Debug("read of unknown CPU register")
		return 0
	}

	return v & size.mask()
}

// Write writes a control surface register.
func (e *Emulator) Write(index uint32, size Size, value uint64) {
	value &= size.mask()

	switch {
	case index < 32:
		if size == Size32 {
			e.regFile.WriteReg32(uint8(index), uint32(value))
		} else {
			e.regFile.WriteReg(uint8(index), value)
		}
	case index == RegPC:
		if e.stepping {
			e.branchUnit.Schedule(uint32(value))
		} else {
			e.regFile.PC = uint32(value)
		}
	case index == RegTicks:
		e.setMultiplier(uint32(value))
	case index == RegLLBit:
		e.regFile.LLBit = value != 0
	case index == RegBranchState, index == RegInstruction:
		if value == 0 {
			e.branchUnit.Nullify()
		} else {
			e.branchUnit.ForceDelaySlot()
		}
	case index == RegHILow:
		e.regFile.HI = writeLow(e.regFile.HI, size, value)
	case index == RegHIHigh:
		e.regFile.HI = e.regFile.HI&0xFFFFFFFF | value<<32
	case index == RegLOLow:
		e.regFile.LO = writeLow(e.regFile.LO, size, value)
	case index == RegLOHigh:
		e.regFile.LO = e.regFile.LO&0xFFFFFFFF | value<<32
	case index == RegJump:
		e.pendingJump = true
		e.pendingTarget = uint32(value)
	default:
		e.logger.WithFields(logrus.Fields{
			"index": index,
			"value": value,
		}).Debug("write to unknown CPU register")
	}
}

// writeLow replaces the low half of a 64-bit register, or all of it for a
// 64-bit access.
func writeLow(reg uint64, size Size, value uint64) uint64 {
	if size == Size64 {
		return value
	}
	return reg&^0xFFFFFFFF | value&0xFFFFFFFF
}

// Read32 reads a control surface register as a word.
func (e *Emulator) Read32(index uint32) uint32 {
	return uint32(e.Read(index, Size32))
}

// Write32 writes a word to a control surface register.
func (e *Emulator) Write32(index uint32, value uint32) {
	e.Write(index, Size32, uint64(value))
}

// Read64 reads a control surface register as a doubleword.
func (e *Emulator) Read64(index uint32) uint64 {
	return e.Read(index, Size64)
}

// Write64 writes a doubleword to a control surface register.
func (e *Emulator) Write64(index uint32, value uint64) {
	e.Write(index, Size64, value)
}
