// Package emu provides functional VR4300 emulation.
package emu

import "github.com/sarchlab/m64sim/insts"

// Register-to-register operations. 32-bit results are sign-extended;
// ADD/SUB/DADD/DSUB share the handlers of their non-trapping forms.

func opSLL(e *Emulator, w insts.Word) {
	e.regFile.WriteReg32(w.Rd(), e.regFile.ReadReg32(w.Rt())<<w.Sa())
}

func opSRL(e *Emulator, w insts.Word) {
	e.regFile.WriteReg32(w.Rd(), e.regFile.ReadReg32(w.Rt())>>w.Sa())
}

func opSRA(e *Emulator, w insts.Word) {
	e.regFile.WriteReg32(w.Rd(), uint32(int32(e.regFile.ReadReg32(w.Rt()))>>w.Sa()))
}

func opSLLV(e *Emulator, w insts.Word) {
	sa := e.regFile.ReadReg32(w.Rs()) & 31
	e.regFile.WriteReg32(w.Rd(), e.regFile.ReadReg32(w.Rt())<<sa)
}

func opSRLV(e *Emulator, w insts.Word) {
	sa := e.regFile.ReadReg32(w.Rs()) & 31
	e.regFile.WriteReg32(w.Rd(), e.regFile.ReadReg32(w.Rt())>>sa)
}

func opSRAV(e *Emulator, w insts.Word) {
	sa := e.regFile.ReadReg32(w.Rs()) & 31
	e.regFile.WriteReg32(w.Rd(), uint32(int32(e.regFile.ReadReg32(w.Rt()))>>sa))
}

func opDSLLV(e *Emulator, w insts.Word) {
	sa := e.regFile.ReadReg(w.Rs()) & 63
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rt())<<sa)
}

func opDSRLV(e *Emulator, w insts.Word) {
	sa := e.regFile.ReadReg(w.Rs()) & 63
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rt())>>sa)
}

func opDSRAV(e *Emulator, w insts.Word) {
	sa := e.regFile.ReadReg(w.Rs()) & 63
	e.regFile.WriteReg(w.Rd(), uint64(int64(e.regFile.ReadReg(w.Rt()))>>sa))
}

func opDSLL(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rt())<<w.Sa())
}

func opDSRL(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rt())>>w.Sa())
}

func opDSRA(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), uint64(int64(e.regFile.ReadReg(w.Rt()))>>w.Sa()))
}

func opDSLL32(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rt())<<(w.Sa()+32))
}

func opDSRL32(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rt())>>(w.Sa()+32))
}

func opDSRA32(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), uint64(int64(e.regFile.ReadReg(w.Rt()))>>(w.Sa()+32)))
}

func opMFHI(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.HI)
}

func opMTHI(e *Emulator, w insts.Word) {
	e.regFile.HI = e.regFile.ReadReg(w.Rs())
}

func opMFLO(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.LO)
}

func opMTLO(e *Emulator, w insts.Word) {
	e.regFile.LO = e.regFile.ReadReg(w.Rs())
}

func opADDU(e *Emulator, w insts.Word) {
	e.regFile.WriteReg32(w.Rd(), e.regFile.ReadReg32(w.Rs())+e.regFile.ReadReg32(w.Rt()))
}

func opSUBU(e *Emulator, w insts.Word) {
	e.regFile.WriteReg32(w.Rd(), e.regFile.ReadReg32(w.Rs())-e.regFile.ReadReg32(w.Rt()))
}

func opDADDU(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rs())+e.regFile.ReadReg(w.Rt()))
}

func opDSUBU(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rs())-e.regFile.ReadReg(w.Rt()))
}

func opAND(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rs())&e.regFile.ReadReg(w.Rt()))
}

func opOR(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rs())|e.regFile.ReadReg(w.Rt()))
}

func opXOR(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), e.regFile.ReadReg(w.Rs())^e.regFile.ReadReg(w.Rt()))
}

func opNOR(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rd(), ^(e.regFile.ReadReg(w.Rs()) | e.regFile.ReadReg(w.Rt())))
}

func opSLT(e *Emulator, w insts.Word) {
	rs := int64(e.regFile.ReadReg(w.Rs()))
	rt := int64(e.regFile.ReadReg(w.Rt()))
	e.regFile.WriteReg(w.Rd(), boolToReg(rs < rt))
}

func opSLTU(e *Emulator, w insts.Word) {
	rs := int64(e.regFile.ReadReg(w.Rs()))
	rt := int64(e.regFile.ReadReg(w.Rt()))
	e.regFile.WriteReg(w.Rd(), boolToReg(UnsignedCompare(rs, rt) < 0))
}

// Immediate operations.

func opADDIU(e *Emulator, w insts.Word) {
	e.regFile.WriteReg32(w.Rt(), e.regFile.ReadReg32(w.Rs())+uint32(w.SImm()))
}

func opDADDIU(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rt(), e.regFile.ReadReg(w.Rs())+uint64(w.SImm()))
}

func opSLTI(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rt(), boolToReg(int64(e.regFile.ReadReg(w.Rs())) < w.SImm()))
}

func opSLTIU(e *Emulator, w insts.Word) {
	rs := int64(e.regFile.ReadReg(w.Rs()))
	e.regFile.WriteReg(w.Rt(), boolToReg(UnsignedCompare(rs, w.SImm()) < 0))
}

func opANDI(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rt(), e.regFile.ReadReg(w.Rs())&w.Imm())
}

func opORI(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rt(), e.regFile.ReadReg(w.Rs())|w.Imm())
}

func opXORI(e *Emulator, w insts.Word) {
	e.regFile.WriteReg(w.Rt(), e.regFile.ReadReg(w.Rs())^w.Imm())
}

func opLUI(e *Emulator, w insts.Word) {
	e.regFile.WriteReg32(w.Rt(), uint32(w.Imm())<<16)
}

// Jumps and branches.

func opJ(e *Emulator, w insts.Word) {
	e.jump(e.branchUnit.JumpTarget(w.Target()), 0, 0)
}

func opJAL(e *Emulator, w insts.Word) {
	target := e.branchUnit.JumpTarget(w.Target())
	e.branchUnit.Link(31)
	e.branchUnit.Resolve(true, false, target)
}

func opJR(e *Emulator, w insts.Word) {
	e.jump(e.regFile.ReadReg32(w.Rs()), w.Rs(), w.Rs())
}

func opJALR(e *Emulator, w insts.Word) {
	target := e.regFile.ReadReg32(w.Rs())
	e.branchUnit.Link(w.Rd())
	e.branchUnit.Resolve(true, false, target)
}

func opBEQ(e *Emulator, w insts.Word) {
	e.branch(w, e.regFile.ReadReg(w.Rs()) == e.regFile.ReadReg(w.Rt()), false, false)
}

func opBNE(e *Emulator, w insts.Word) {
	e.branch(w, e.regFile.ReadReg(w.Rs()) != e.regFile.ReadReg(w.Rt()), false, false)
}

func opBLEZ(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) <= 0, false, false)
}

func opBGTZ(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) > 0, false, false)
}

func opBEQL(e *Emulator, w insts.Word) {
	e.branch(w, e.regFile.ReadReg(w.Rs()) == e.regFile.ReadReg(w.Rt()), true, false)
}

func opBNEL(e *Emulator, w insts.Word) {
	e.branch(w, e.regFile.ReadReg(w.Rs()) != e.regFile.ReadReg(w.Rt()), true, false)
}

func opBLEZL(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) <= 0, true, false)
}

func opBGTZL(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) > 0, true, false)
}

func opBLTZ(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) < 0, false, false)
}

func opBGEZ(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) >= 0, false, false)
}

func opBLTZL(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) < 0, true, false)
}

func opBGEZL(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) >= 0, true, false)
}

func opBLTZAL(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) < 0, false, true)
}

func opBGEZAL(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) >= 0, false, true)
}

func opBLTZALL(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) < 0, true, true)
}

func opBGEZALL(e *Emulator, w insts.Word) {
	e.branch(w, int64(e.regFile.ReadReg(w.Rs())) >= 0, true, true)
}

// branch resolves a PC-relative branch. The condition is evaluated by the
// caller before the link register is written.
func (e *Emulator) branch(w insts.Word, taken, likely, link bool) {
	target := e.branchUnit.BranchTarget(w.SImm())
	if link {
		e.branchUnit.Link(31)
	}
	e.branchUnit.Resolve(taken, likely, target)
	if taken && !link {
		rs, rt := w.Rs(), w.Rt()
		if w.Op() == insts.OpcodeRegimm {
			rt = rs
		}
		e.probeIdle(target, rs, rt)
	}
}

// jump resolves an unconditional non-linking jump.
func (e *Emulator) jump(target uint32, rs, rt uint8) {
	e.branchUnit.Resolve(true, false, target)
	e.probeIdle(target, rs, rt)
}

// System operations.

func opSYSCALL(e *Emulator, _ insts.Word) {
	e.cop0.Write32(Cop0RegException, ExcSyscall)
}

func opBREAK(e *Emulator, _ insts.Word) {
	e.cop0.Write32(Cop0RegException, ExcBreakpoint)
}

// Coprocessor transfers.

func opCOP0(e *Emulator, w insts.Word) {
	rd := uint32(w.Rd())
	switch sub := w.Rs(); {
	case sub&insts.CopCO != 0:
		e.cop0.Write32(Cop0RegCommand, w.Funct())
	case sub == insts.CopMF:
		e.regFile.WriteReg32(w.Rt(), e.cop0.Read32(rd))
	case sub == insts.CopDMF:
		e.regFile.WriteReg(w.Rt(), readDevice64(e.cop0, rd))
	case sub == insts.CopMT:
		e.cop0.Write32(rd, e.regFile.ReadReg32(w.Rt()))
	case sub == insts.CopDMT:
		writeDevice64(e.cop0, rd, e.regFile.ReadReg(w.Rt()))
	default:
		opReserved(e, w)
	}
}

func opCOP1(e *Emulator, w insts.Word) {
	fs := uint32(w.Rd())
	switch sub := w.Rs(); {
	case sub&insts.CopCO != 0:
		e.cop1.Write32(Cop1RegExecute, uint32(w))
	case sub == insts.CopMF:
		e.regFile.WriteReg32(w.Rt(), e.cop1.Read32(fs))
	case sub == insts.CopDMF:
		e.regFile.WriteReg(w.Rt(), readDevice64(e.cop1, fs))
	case sub == insts.CopCF:
		e.regFile.WriteReg32(w.Rt(), e.cop1.Read32(Cop1RegControl+fs))
	case sub == insts.CopMT:
		e.cop1.Write32(fs, e.regFile.ReadReg32(w.Rt()))
	case sub == insts.CopDMT:
		writeDevice64(e.cop1, fs, e.regFile.ReadReg(w.Rt()))
	case sub == insts.CopCT:
		e.cop1.Write32(Cop1RegControl+fs, e.regFile.ReadReg32(w.Rt()))
	case sub == insts.CopBC:
		cond := e.cop1.Read32(Cop1RegControl+31)&cop1CondBit != 0
		wantTrue := w.Rt()&1 != 0
		likely := w.Rt()&2 != 0
		e.branchUnit.Resolve(cond == wantTrue, likely, e.branchUnit.BranchTarget(w.SImm()))
	default:
		opReserved(e, w)
	}
}

func boolToReg(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
