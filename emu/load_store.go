// Package emu provides functional VR4300 emulation.
package emu

// Merge tables for the unaligned load/store instructions, indexed by the
// low address bits. A mask selects the register (loads) or memory (stores)
// bytes that survive; the shift positions the incoming bytes.
var (
	lwlMask  = [4]uint32{0x00000000, 0x000000FF, 0x0000FFFF, 0x00FFFFFF}
	lwlShift = [4]uint32{0, 8, 16, 24}
	lwrMask  = [4]uint32{0xFFFFFF00, 0xFFFF0000, 0xFF000000, 0x00000000}
	lwrShift = [4]uint32{24, 16, 8, 0}
	swlMask  = [4]uint32{0x00000000, 0xFF000000, 0xFFFF0000, 0xFFFFFF00}
	swlShift = [4]uint32{0, 8, 16, 24}
	swrMask  = [4]uint32{0x00FFFFFF, 0x0000FFFF, 0x000000FF, 0x00000000}
	swrShift = [4]uint32{24, 16, 8, 0}

	ldlMask = [8]uint64{
		0x0000000000000000, 0x00000000000000FF, 0x000000000000FFFF, 0x0000000000FFFFFF,
		0x00000000FFFFFFFF, 0x000000FFFFFFFFFF, 0x0000FFFFFFFFFFFF, 0x00FFFFFFFFFFFFFF,
	}
	ldlShift = [8]uint64{0, 8, 16, 24, 32, 40, 48, 56}
	ldrMask  = [8]uint64{
		0xFFFFFFFFFFFFFF00, 0xFFFFFFFFFFFF0000, 0xFFFFFFFFFF000000, 0xFFFFFFFF00000000,
		0xFFFFFF0000000000, 0xFFFF000000000000, 0xFF00000000000000, 0x0000000000000000,
	}
	ldrShift = [8]uint64{56, 48, 40, 32, 24, 16, 8, 0}
	sdlMask  = [8]uint64{
		0x0000000000000000, 0xFF00000000000000, 0xFFFF000000000000, 0xFFFFFF0000000000,
		0xFFFFFFFF00000000, 0xFFFFFFFFFF000000, 0xFFFFFFFFFFFF0000, 0xFFFFFFFFFFFFFF00,
	}
	sdlShift = [8]uint64{0, 8, 16, 24, 32, 40, 48, 56}
	sdrMask  = [8]uint64{
		0x00FFFFFFFFFFFFFF, 0x0000FFFFFFFFFFFF, 0x000000FFFFFFFFFF, 0x00000000FFFFFFFF,
		0x0000000000FFFFFF, 0x000000000000FFFF, 0x00000000000000FF, 0x0000000000000000,
	}
	sdrShift = [8]uint64{56, 48, 40, 32, 24, 16, 8, 0}
)

// LoadStoreUnit implements VR4300 loads and stores. Every access is
// translated through the MMU; every store invalidates the decode cache
// entries it overlaps.
type LoadStoreUnit struct {
	regFile *RegFile
	bus     Bus
	mmu     Device
	cop0    Device
	cop1    Device
	icache  *DecodeCache

	// onData is notified of each physical data access.
	onData func(phys uint32, write bool)
}

// NewLoadStoreUnit creates a new LoadStoreUnit.
func NewLoadStoreUnit(regFile *RegFile, bus Bus, mmu, cop0, cop1 Device, icache *DecodeCache) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		bus:     bus,
		mmu:     mmu,
		cop0:    cop0,
		cop1:    cop1,
		icache:  icache,
	}
}

// aligned checks natural alignment and raises an address error through COP0
// when it does not hold.
func (l *LoadStoreUnit) aligned(vaddr uint32, size uint32, code uint32) bool {
	if vaddr&(size-1) == 0 {
		return true
	}
	l.cop0.Write32(Cop0RegBadVAddr, vaddr)
	l.cop0.Write32(Cop0RegException, code)
	return false
}

func (l *LoadStoreUnit) translate(vaddr uint32, write bool) uint32 {
	phys := l.mmu.Read32(vaddr)
	if l.onData != nil {
		l.onData(phys, write)
	}
	return phys
}

func (l *LoadStoreUnit) stored(phys uint32, size uint32) {
	l.icache.Invalidate(phys)
	if size == 8 {
		l.icache.Invalidate(phys + 4)
	}
}

// LB loads a sign-extended byte.
func (l *LoadStoreUnit) LB(rt uint8, vaddr uint32) {
	v := l.bus.Read8(l.translate(vaddr, false))
	l.regFile.WriteReg(rt, uint64(int64(int8(v))))
}

// LBU loads a zero-extended byte.
func (l *LoadStoreUnit) LBU(rt uint8, vaddr uint32) {
	v := l.bus.Read8(l.translate(vaddr, false))
	l.regFile.WriteReg(rt, uint64(v))
}

// LH loads a sign-extended halfword.
func (l *LoadStoreUnit) LH(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 2, ExcAddressLoad) {
		return
	}
	v := l.bus.Read16(l.translate(vaddr, false))
	l.regFile.WriteReg(rt, uint64(int64(int16(v))))
}

// LHU loads a zero-extended halfword.
func (l *LoadStoreUnit) LHU(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 2, ExcAddressLoad) {
		return
	}
	v := l.bus.Read16(l.translate(vaddr, false))
	l.regFile.WriteReg(rt, uint64(v))
}

// LW loads a sign-extended word.
func (l *LoadStoreUnit) LW(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 4, ExcAddressLoad) {
		return
	}
	l.regFile.WriteReg32(rt, l.bus.Read32(l.translate(vaddr, false)))
}

// LWU loads a zero-extended word.
func (l *LoadStoreUnit) LWU(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 4, ExcAddressLoad) {
		return
	}
	l.regFile.WriteReg(rt, uint64(l.bus.Read32(l.translate(vaddr, false))))
}

// LD loads a doubleword.
func (l *LoadStoreUnit) LD(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 8, ExcAddressLoad) {
		return
	}
	l.regFile.WriteReg(rt, l.bus.Read64(l.translate(vaddr, false)))
}

// LL loads a word and sets the load-link bit.
func (l *LoadStoreUnit) LL(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 4, ExcAddressLoad) {
		return
	}
	l.regFile.WriteReg32(rt, l.bus.Read32(l.translate(vaddr, false)))
	l.regFile.LLBit = true
}

// LLD loads a doubleword and sets the load-link bit.
func (l *LoadStoreUnit) LLD(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 8, ExcAddressLoad) {
		return
	}
	l.regFile.WriteReg(rt, l.bus.Read64(l.translate(vaddr, false)))
	l.regFile.LLBit = true
}

// LWL merges the most significant bytes of an unaligned word into rt.
func (l *LoadStoreUnit) LWL(rt uint8, vaddr uint32) {
	a := vaddr & 3
	mem := l.bus.Read32(l.translate(vaddr&^3, false))
	reg := l.regFile.ReadReg32(rt)
	l.regFile.WriteReg32(rt, reg&lwlMask[a]|mem<<lwlShift[a])
}

// LWR merges the least significant bytes of an unaligned word into rt.
func (l *LoadStoreUnit) LWR(rt uint8, vaddr uint32) {
	a := vaddr & 3
	mem := l.bus.Read32(l.translate(vaddr&^3, false))
	reg := l.regFile.ReadReg32(rt)
	l.regFile.WriteReg32(rt, reg&lwrMask[a]|mem>>lwrShift[a])
}

// LDL merges the most significant bytes of an unaligned doubleword into rt.
func (l *LoadStoreUnit) LDL(rt uint8, vaddr uint32) {
	a := vaddr & 7
	mem := l.bus.Read64(l.translate(vaddr&^7, false))
	reg := l.regFile.ReadReg(rt)
	l.regFile.WriteReg(rt, reg&ldlMask[a]|mem<<ldlShift[a])
}

// LDR merges the least significant bytes of an unaligned doubleword into rt.
func (l *LoadStoreUnit) LDR(rt uint8, vaddr uint32) {
	a := vaddr & 7
	mem := l.bus.Read64(l.translate(vaddr&^7, false))
	reg := l.regFile.ReadReg(rt)
	l.regFile.WriteReg(rt, reg&ldrMask[a]|mem>>ldrShift[a])
}

// SB stores a byte.
func (l *LoadStoreUnit) SB(rt uint8, vaddr uint32) {
	phys := l.translate(vaddr, true)
	l.bus.Write8(phys, uint8(l.regFile.ReadReg(rt)))
	l.stored(phys&^3, 1)
}

// SH stores a halfword.
func (l *LoadStoreUnit) SH(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 2, ExcAddressStore) {
		return
	}
	phys := l.translate(vaddr, true)
	l.bus.Write16(phys, uint16(l.regFile.ReadReg(rt)))
	l.stored(phys&^3, 2)
}

// SW stores a word.
func (l *LoadStoreUnit) SW(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 4, ExcAddressStore) {
		return
	}
	phys := l.translate(vaddr, true)
	l.bus.Write32(phys, l.regFile.ReadReg32(rt))
	l.stored(phys, 4)
}

// SD stores a doubleword.
func (l *LoadStoreUnit) SD(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 8, ExcAddressStore) {
		return
	}
	phys := l.translate(vaddr, true)
	l.bus.Write64(phys, l.regFile.ReadReg(rt))
	l.stored(phys, 8)
}

// SC stores a word if the load-link bit is still set and reports success
// in rt.
func (l *LoadStoreUnit) SC(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 4, ExcAddressStore) {
		return
	}
	if !l.regFile.LLBit {
		l.regFile.WriteReg(rt, 0)
		return
	}
	phys := l.translate(vaddr, true)
	l.bus.Write32(phys, l.regFile.ReadReg32(rt))
	l.stored(phys, 4)
	l.regFile.WriteReg(rt, 1)
}

// SCD is the doubleword form of SC.
func (l *LoadStoreUnit) SCD(rt uint8, vaddr uint32) {
	if !l.aligned(vaddr, 8, ExcAddressStore) {
		return
	}
	if !l.regFile.LLBit {
		l.regFile.WriteReg(rt, 0)
		return
	}
	phys := l.translate(vaddr, true)
	l.bus.Write64(phys, l.regFile.ReadReg(rt))
	l.stored(phys, 8)
	l.regFile.WriteReg(rt, 1)
}

// SWL stores the most significant bytes of rt to an unaligned word.
func (l *LoadStoreUnit) SWL(rt uint8, vaddr uint32) {
	a := vaddr & 3
	phys := l.translate(vaddr&^3, true)
	mem := l.bus.Read32(phys)
	l.bus.Write32(phys, mem&swlMask[a]|l.regFile.ReadReg32(rt)>>swlShift[a])
	l.stored(phys, 4)
}

// SWR stores the least significant bytes of rt to an unaligned word.
func (l *LoadStoreUnit) SWR(rt uint8, vaddr uint32) {
	a := vaddr & 3
	phys := l.translate(vaddr&^3, true)
	mem := l.bus.Read32(phys)
	l.bus.Write32(phys, mem&swrMask[a]|l.regFile.ReadReg32(rt)<<swrShift[a])
	l.stored(phys, 4)
}

// SDL stores the most significant bytes of rt to an unaligned doubleword.
func (l *LoadStoreUnit) SDL(rt uint8, vaddr uint32) {
	a := vaddr & 7
	phys := l.translate(vaddr&^7, true)
	mem := l.bus.Read64(phys)
	l.bus.Write64(phys, mem&sdlMask[a]|l.regFile.ReadReg(rt)>>sdlShift[a])
	l.stored(phys, 8)
}

// SDR stores the least significant bytes of rt to an unaligned doubleword.
func (l *LoadStoreUnit) SDR(rt uint8, vaddr uint32) {
	a := vaddr & 7
	phys := l.translate(vaddr&^7, true)
	mem := l.bus.Read64(phys)
	l.bus.Write64(phys, mem&sdrMask[a]|l.regFile.ReadReg(rt)<<sdrShift[a])
	l.stored(phys, 8)
}

// LWC1 loads a word into an FPU register.
func (l *LoadStoreUnit) LWC1(ft uint8, vaddr uint32) {
	if !l.aligned(vaddr, 4, ExcAddressLoad) {
		return
	}
	l.cop1.Write32(uint32(ft), l.bus.Read32(l.translate(vaddr, false)))
}

// LDC1 loads a doubleword into an FPU register.
func (l *LoadStoreUnit) LDC1(ft uint8, vaddr uint32) {
	if !l.aligned(vaddr, 8, ExcAddressLoad) {
		return
	}
	writeDevice64(l.cop1, uint32(ft), l.bus.Read64(l.translate(vaddr, false)))
}

// SWC1 stores a word from an FPU register.
func (l *LoadStoreUnit) SWC1(ft uint8, vaddr uint32) {
	if !l.aligned(vaddr, 4, ExcAddressStore) {
		return
	}
	phys := l.translate(vaddr, true)
	l.bus.Write32(phys, l.cop1.Read32(uint32(ft)))
	l.stored(phys, 4)
}

// SDC1 stores a doubleword from an FPU register.
func (l *LoadStoreUnit) SDC1(ft uint8, vaddr uint32) {
	if !l.aligned(vaddr, 8, ExcAddressStore) {
		return
	}
	phys := l.translate(vaddr, true)
	l.bus.Write64(phys, readDevice64(l.cop1, uint32(ft)))
	l.stored(phys, 8)
}

func readDevice64(d Device, index uint32) uint64 {
	if d64, ok := d.(Device64); ok {
		return d64.Read64(index)
	}
	return uint64(d.Read32(index|1))<<32 | uint64(d.Read32(index&^1))
}

func writeDevice64(d Device, index uint32, value uint64) {
	if d64, ok := d.(Device64); ok {
		d64.Write64(index, value)
		return
	}
	d.Write32(index&^1, uint32(value))
	d.Write32(index|1, uint32(value>>32))
}
