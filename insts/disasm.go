package insts

import "fmt"

// String renders the instruction in assembler syntax. Branch offsets are
// shown in bytes relative to the delay slot.
func (i *Instruction) String() string {
	switch i.Op {
	case OpUnknown:
		return fmt.Sprintf(".word 0x%08x", uint32(i.Word))
	case OpSLL:
		if i.Word == Nop {
			return "nop"
		}
		return fmt.Sprintf("%s $%d, $%d, %d", i.Op, i.Rd, i.Rt, i.Sa)
	case OpSRL, OpSRA, OpDSLL, OpDSRL, OpDSRA, OpDSLL32, OpDSRL32, OpDSRA32:
		return fmt.Sprintf("%s $%d, $%d, %d", i.Op, i.Rd, i.Rt, i.Sa)
	case OpSLLV, OpSRLV, OpSRAV, OpDSLLV, OpDSRLV, OpDSRAV:
		return fmt.Sprintf("%s $%d, $%d, $%d", i.Op, i.Rd, i.Rt, i.Rs)
	case OpJR, OpMTHI, OpMTLO:
		return fmt.Sprintf("%s $%d", i.Op, i.Rs)
	case OpJALR:
		return fmt.Sprintf("%s $%d, $%d", i.Op, i.Rd, i.Rs)
	case OpMFHI, OpMFLO:
		return fmt.Sprintf("%s $%d", i.Op, i.Rd)
	case OpSYSCALL, OpBREAK, OpSYNC, OpERET, OpTLBR, OpTLBWI, OpTLBWR, OpTLBP, OpCOP1:
		return i.Op.String()
	case OpJ, OpJAL:
		return fmt.Sprintf("%s 0x%07x", i.Op, i.Target<<2)
	case OpBEQ, OpBNE, OpBEQL, OpBNEL:
		return fmt.Sprintf("%s $%d, $%d, %d", i.Op, i.Rs, i.Rt, i.SImm<<2)
	case OpLUI:
		return fmt.Sprintf("%s $%d, 0x%x", i.Op, i.Rt, i.Imm)
	case OpMFC0, OpDMFC0, OpMTC0, OpDMTC0, OpMFC1, OpDMFC1, OpCFC1, OpMTC1, OpDMTC1, OpCTC1:
		return fmt.Sprintf("%s $%d, $%d", i.Op, i.Rt, i.Rd)
	case OpBC1F, OpBC1T, OpBC1FL, OpBC1TL:
		return fmt.Sprintf("%s %d", i.Op, i.SImm<<2)
	}

	switch i.Class {
	case ClassALU:
		return fmt.Sprintf("%s $%d, $%d, $%d", i.Op, i.Rd, i.Rs, i.Rt)
	case ClassMulDiv, ClassSystem:
		if i.Format == FormatI {
			return fmt.Sprintf("%s $%d, %d", i.Op, i.Rs, i.SImm)
		}
		return fmt.Sprintf("%s $%d, $%d", i.Op, i.Rs, i.Rt)
	case ClassALUImm:
		return fmt.Sprintf("%s $%d, $%d, %d", i.Op, i.Rt, i.Rs, i.SImm)
	case ClassLoad, ClassStore, ClassCop1:
		return fmt.Sprintf("%s $%d, %d($%d)", i.Op, i.Rt, i.SImm, i.Rs)
	case ClassCache:
		return fmt.Sprintf("%s 0x%x, %d($%d)", i.Op, i.Rt, i.SImm, i.Rs)
	case ClassBranch:
		return fmt.Sprintf("%s $%d, %d", i.Op, i.Rs, i.SImm<<2)
	}
	return i.Op.String()
}
