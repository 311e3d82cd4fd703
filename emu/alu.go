// Package emu provides functional VR4300 emulation.
package emu

import "math"

// UnsignedCompare compares the unsigned interpretation of two 64-bit
// register values. It returns -1, 0 or +1. Flipping the sign bit maps the
// unsigned order onto the signed order, so the comparison does not depend on
// how the host treats signedness.
func UnsignedCompare(a, b int64) int {
	ua := a ^ math.MinInt64
	ub := b ^ math.MinInt64
	switch {
	case ua < ub:
		return -1
	case ua > ub:
		return 1
	default:
		return 0
	}
}

// MultiplyU128 computes the 128-bit product of two unsigned 64-bit values
// from four 32x32 partial products with explicit carry propagation.
func MultiplyU128(a, b uint64) (hi, lo uint64) {
	aLo, aHi := a&0xFFFFFFFF, a>>32
	bLo, bHi := b&0xFFFFFFFF, b>>32

	p0 := aLo * bLo
	p1 := aLo * bHi
	p2 := aHi * bLo
	p3 := aHi * bHi

	// Middle limb: at most three 32-bit quantities, so it cannot overflow.
	mid := (p0 >> 32) + (p1 & 0xFFFFFFFF) + (p2 & 0xFFFFFFFF)

	lo = (p0 & 0xFFFFFFFF) | (mid << 32)
	hi = p3 + (p1 >> 32) + (p2 >> 32) + (mid >> 32)
	return hi, lo
}

// Multiply128 computes the signed 128-bit product of two 64-bit values.
func Multiply128(a, b int64) (hi, lo uint64) {
	negative := (a < 0) != (b < 0)

	ua, ub := uint64(a), uint64(b)
	if a < 0 {
		ua = -ua
	}
	if b < 0 {
		ub = -ub
	}

	hi, lo = MultiplyU128(ua, ub)
	if negative {
		// Two's complement negate across both limbs.
		lo = ^lo + 1
		hi = ^hi
		if lo == 0 {
			hi++
		}
	}
	return hi, lo
}

// ALU implements the multiply/divide unit writing HI/LO.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// Mult performs a signed 32x32 multiply.
func (a *ALU) Mult(rs, rt uint8) {
	result := int64(int32(a.regFile.ReadReg32(rs))) * int64(int32(a.regFile.ReadReg32(rt)))
	a.regFile.LO = signExtend32(uint32(result))
	a.regFile.HI = signExtend32(uint32(result >> 32))
}

// Multu performs an unsigned 32x32 multiply.
func (a *ALU) Multu(rs, rt uint8) {
	result := uint64(a.regFile.ReadReg32(rs)) * uint64(a.regFile.ReadReg32(rt))
	a.regFile.LO = signExtend32(uint32(result))
	a.regFile.HI = signExtend32(uint32(result >> 32))
}

// Div performs a signed 32-bit divide. Division by zero leaves the dividend
// in HI and +1/-1 in LO, as the hardware divider does.
func (a *ALU) Div(rs, rt uint8) {
	n := int32(a.regFile.ReadReg32(rs))
	d := int32(a.regFile.ReadReg32(rt))

	switch {
	case d == 0:
		a.regFile.HI = signExtend32(uint32(n))
		if n >= 0 {
			a.regFile.LO = math.MaxUint64
		} else {
			a.regFile.LO = 1
		}
	case n == math.MinInt32 && d == -1:
		a.regFile.LO = signExtend32(uint32(n))
		a.regFile.HI = 0
	default:
		a.regFile.LO = signExtend32(uint32(n / d))
		a.regFile.HI = signExtend32(uint32(n % d))
	}
}

// Divu performs an unsigned 32-bit divide.
func (a *ALU) Divu(rs, rt uint8) {
	n := a.regFile.ReadReg32(rs)
	d := a.regFile.ReadReg32(rt)

	if d == 0 {
		a.regFile.LO = math.MaxUint64
		a.regFile.HI = signExtend32(n)
		return
	}
	a.regFile.LO = signExtend32(n / d)
	a.regFile.HI = signExtend32(n % d)
}

// DMult performs a signed 64x64 multiply.
func (a *ALU) DMult(rs, rt uint8) {
	a.regFile.HI, a.regFile.LO = Multiply128(int64(a.regFile.ReadReg(rs)), int64(a.regFile.ReadReg(rt)))
}

// DMultu performs an unsigned 64x64 multiply.
func (a *ALU) DMultu(rs, rt uint8) {
	a.regFile.HI, a.regFile.LO = MultiplyU128(a.regFile.ReadReg(rs), a.regFile.ReadReg(rt))
}

// DDiv performs a signed 64-bit divide.
func (a *ALU) DDiv(rs, rt uint8) {
	n := int64(a.regFile.ReadReg(rs))
	d := int64(a.regFile.ReadReg(rt))

	switch {
	case d == 0:
		a.regFile.HI = uint64(n)
		if n >= 0 {
			a.regFile.LO = math.MaxUint64
		} else {
			a.regFile.LO = 1
		}
	case n == math.MinInt64 && d == -1:
		a.regFile.LO = uint64(n)
		a.regFile.HI = 0
	default:
		a.regFile.LO = uint64(n / d)
		a.regFile.HI = uint64(n % d)
	}
}

// DDivu performs an unsigned 64-bit divide.
func (a *ALU) DDivu(rs, rt uint8) {
	n := a.regFile.ReadReg(rs)
	d := a.regFile.ReadReg(rt)

	if d == 0 {
		a.regFile.LO = math.MaxUint64
		a.regFile.HI = n
		return
	}
	a.regFile.LO = n / d
	a.regFile.HI = n % d
}
