// Package emu provides functional VR4300 emulation.
package emu

// RegFile represents the VR4300 register file.
// It contains 32 general-purpose 64-bit registers, the program counter,
// the HI/LO multiply/divide result registers and the load-link bit.
type RegFile struct {
	// GPR holds general-purpose registers $0-$31.
	// GPR[0] is kept at zero by handler discipline: WriteReg ignores it.
	GPR [32]uint64

	// PC is the address of the instruction being executed.
	PC uint32

	// HI and LO hold multiply/divide results.
	HI uint64
	LO uint64

	// LLBit is the load-link reservation flag set by LL/LLD.
	LLBit bool
}

// ReadReg reads a register value.
func (r *RegFile) ReadReg(reg uint8) uint64 {
	return r.GPR[reg&0x1F]
}

// WriteReg writes a value to a register. Writes to $0 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint64) {
	if reg == 0 {
		return
	}
	r.GPR[reg&0x1F] = value
}

// ReadReg32 reads the lower 32 bits of a register.
func (r *RegFile) ReadReg32(reg uint8) uint32 {
	return uint32(r.ReadReg(reg))
}

// WriteReg32 writes a 32-bit result sign-extended to 64 bits, the canonical
// form of every 32-bit operation on a 64-bit MIPS register.
func (r *RegFile) WriteReg32(reg uint8, value uint32) {
	r.WriteReg(reg, signExtend32(value))
}

// Reset clears all registers.
func (r *RegFile) Reset() {
	*r = RegFile{}
}

func signExtend32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}
