// Package emu provides functional VR4300 emulation.
package emu

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/m64sim/insts"
)

// handler executes one instruction word.
type handler func(e *Emulator, w insts.Word)

// opTables maps instruction fields to handlers. The tables are built once
// per emulator and never change afterwards.
type opTables struct {
	primary [64]handler
	special [64]handler
	regimm  [32]handler
}

func newOpTables() *opTables {
	t := &opTables{}
	for i := range t.primary {
		t.primary[i] = opReserved
	}
	for i := range t.special {
		t.special[i] = opReserved
	}
	for i := range t.regimm {
		t.regimm[i] = opReserved
	}

	t.primary[insts.OpcodeJ] = opJ
	t.primary[insts.OpcodeJAL] = opJAL
	t.primary[insts.OpcodeBEQ] = opBEQ
	t.primary[insts.OpcodeBNE] = opBNE
	t.primary[insts.OpcodeBLEZ] = opBLEZ
	t.primary[insts.OpcodeBGTZ] = opBGTZ
	t.primary[insts.OpcodeADDI] = opADDIU
	t.primary[insts.OpcodeADDIU] = opADDIU
	t.primary[insts.OpcodeSLTI] = opSLTI
	t.primary[insts.OpcodeSLTIU] = opSLTIU
	t.primary[insts.OpcodeANDI] = opANDI
	t.primary[insts.OpcodeORI] = opORI
	t.primary[insts.OpcodeXORI] = opXORI
	t.primary[insts.OpcodeLUI] = opLUI
	t.primary[insts.OpcodeCop0] = opCOP0
	t.primary[insts.OpcodeCop1] = opCOP1
	t.primary[insts.OpcodeBEQL] = opBEQL
	t.primary[insts.OpcodeBNEL] = opBNEL
	t.primary[insts.OpcodeBLEZL] = opBLEZL
	t.primary[insts.OpcodeBGTZL] = opBGTZL
	t.primary[insts.OpcodeDADDI] = opDADDIU
	t.primary[insts.OpcodeDADDIU] = opDADDIU
	t.primary[insts.OpcodeLDL] = memOp((*LoadStoreUnit).LDL)
	t.primary[insts.OpcodeLDR] = memOp((*LoadStoreUnit).LDR)
	t.primary[insts.OpcodeLB] = memOp((*LoadStoreUnit).LB)
	t.primary[insts.OpcodeLH] = memOp((*LoadStoreUnit).LH)
	t.primary[insts.OpcodeLWL] = memOp((*LoadStoreUnit).LWL)
	t.primary[insts.OpcodeLW] = memOp((*LoadStoreUnit).LW)
	t.primary[insts.OpcodeLBU] = memOp((*LoadStoreUnit).LBU)
	t.primary[insts.OpcodeLHU] = memOp((*LoadStoreUnit).LHU)
	t.primary[insts.OpcodeLWR] = memOp((*LoadStoreUnit).LWR)
	t.primary[insts.OpcodeLWU] = memOp((*LoadStoreUnit).LWU)
	t.primary[insts.OpcodeSB] = memOp((*LoadStoreUnit).SB)
	t.primary[insts.OpcodeSH] = memOp((*LoadStoreUnit).SH)
	t.primary[insts.OpcodeSWL] = memOp((*LoadStoreUnit).SWL)
	t.primary[insts.OpcodeSW] = memOp((*LoadStoreUnit).SW)
	t.primary[insts.OpcodeSDL] = memOp((*LoadStoreUnit).SDL)
	t.primary[insts.OpcodeSDR] = memOp((*LoadStoreUnit).SDR)
	t.primary[insts.OpcodeSWR] = memOp((*LoadStoreUnit).SWR)
	t.primary[insts.OpcodeCACHE] = opNop
	t.primary[insts.OpcodeLL] = memOp((*LoadStoreUnit).LL)
	t.primary[insts.OpcodeLWC1] = memOp((*LoadStoreUnit).LWC1)
	t.primary[insts.OpcodeLLD] = memOp((*LoadStoreUnit).LLD)
	t.primary[insts.OpcodeLDC1] = memOp((*LoadStoreUnit).LDC1)
	t.primary[insts.OpcodeLD] = memOp((*LoadStoreUnit).LD)
	t.primary[insts.OpcodeSC] = memOp((*LoadStoreUnit).SC)
	t.primary[insts.OpcodeSWC1] = memOp((*LoadStoreUnit).SWC1)
	t.primary[insts.OpcodeSCD] = memOp((*LoadStoreUnit).SCD)
	t.primary[insts.OpcodeSDC1] = memOp((*LoadStoreUnit).SDC1)
	t.primary[insts.OpcodeSD] = memOp((*LoadStoreUnit).SD)

	t.special[insts.FunctSLL] = opSLL
	t.special[insts.FunctSRL] = opSRL
	t.special[insts.FunctSRA] = opSRA
	t.special[insts.FunctSLLV] = opSLLV
	t.special[insts.FunctSRLV] = opSRLV
	t.special[insts.FunctSRAV] = opSRAV
	t.special[insts.FunctJR] = opJR
	t.special[insts.FunctJALR] = opJALR
	t.special[insts.FunctSYSCALL] = opSYSCALL
	t.special[insts.FunctBREAK] = opBREAK
	t.special[insts.FunctSYNC] = opNop
	t.special[insts.FunctMFHI] = opMFHI
	t.special[insts.FunctMTHI] = opMTHI
	t.special[insts.FunctMFLO] = opMFLO
	t.special[insts.FunctMTLO] = opMTLO
	t.special[insts.FunctDSLLV] = opDSLLV
	t.special[insts.FunctDSRLV] = opDSRLV
	t.special[insts.FunctDSRAV] = opDSRAV
	t.special[insts.FunctMULT] = mulDivOp((*ALU).Mult)
	t.special[insts.FunctMULTU] = mulDivOp((*ALU).Multu)
	t.special[insts.FunctDIV] = mulDivOp((*ALU).Div)
	t.special[insts.FunctDIVU] = mulDivOp((*ALU).Divu)
	t.special[insts.FunctDMULT] = mulDivOp((*ALU).DMult)
	t.special[insts.FunctDMULTU] = mulDivOp((*ALU).DMultu)
	t.special[insts.FunctDDIV] = mulDivOp((*ALU).DDiv)
	t.special[insts.FunctDDIVU] = mulDivOp((*ALU).DDivu)
	t.special[insts.FunctADD] = opADDU
	t.special[insts.FunctADDU] = opADDU
	t.special[insts.FunctSUB] = opSUBU
	t.special[insts.FunctSUBU] = opSUBU
	t.special[insts.FunctAND] = opAND
	t.special[insts.FunctOR] = opOR
	t.special[insts.FunctXOR] = opXOR
	t.special[insts.FunctNOR] = opNOR
	t.special[insts.FunctSLT] = opSLT
	t.special[insts.FunctSLTU] = opSLTU
	t.special[insts.FunctDADD] = opDADDU
	t.special[insts.FunctDADDU] = opDADDU
	t.special[insts.FunctDSUB] = opDSUBU
	t.special[insts.FunctDSUBU] = opDSUBU
	t.special[insts.FunctTGE] = opNop
	t.special[insts.FunctTGEU] = opNop
	t.special[insts.FunctTLT] = opNop
	t.special[insts.FunctTLTU] = opNop
	t.special[insts.FunctTEQ] = opNop
	t.special[insts.FunctTNE] = opNop
	t.special[insts.FunctDSLL] = opDSLL
	t.special[insts.FunctDSRL] = opDSRL
	t.special[insts.FunctDSRA] = opDSRA
	t.special[insts.FunctDSLL32] = opDSLL32
	t.special[insts.FunctDSRL32] = opDSRL32
	t.special[insts.FunctDSRA32] = opDSRA32

	t.regimm[insts.RegimmBLTZ] = opBLTZ
	t.regimm[insts.RegimmBGEZ] = opBGEZ
	t.regimm[insts.RegimmBLTZL] = opBLTZL
	t.regimm[insts.RegimmBGEZL] = opBGEZL
	t.regimm[insts.RegimmTGEI] = opNop
	t.regimm[insts.RegimmTGEIU] = opNop
	t.regimm[insts.RegimmTLTI] = opNop
	t.regimm[insts.RegimmTLTIU] = opNop
	t.regimm[insts.RegimmTEQI] = opNop
	t.regimm[insts.RegimmTNEI] = opNop
	t.regimm[insts.RegimmBLTZAL] = opBLTZAL
	t.regimm[insts.RegimmBGEZAL] = opBGEZAL
	t.regimm[insts.RegimmBLTZALL] = opBLTZALL
	t.regimm[insts.RegimmBGEZALL] = opBGEZALL

	return t
}

// resolve returns the handler for a word. SPECIAL and REGIMM words are
// re-dispatched on their function and rt fields.
func (t *opTables) resolve(w insts.Word) handler {
	switch w.Op() {
	case insts.OpcodeSpecial:
		return t.special[w.Funct()]
	case insts.OpcodeRegimm:
		return t.regimm[w.Rt()]
	default:
		return t.primary[w.Op()]
	}
}

// opReserved handles every unassigned slot. There is no reserved
// instruction trap at this level, so the emulator stops.
func opReserved(e *Emulator, w insts.Word) {
	pc := e.regFile.PC
	e.logger.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("0x%08X", pc),
		"word": fmt.Sprintf("0x%08X", uint32(w)),
	}).Error("unknown instruction")
	e.fail(fmt.Errorf("%w 0x%08X at pc 0x%08X", ErrUnknownInstruction, uint32(w), pc))
}

func opNop(*Emulator, insts.Word) {}

func memOp(op func(*LoadStoreUnit, uint8, uint32)) handler {
	return func(e *Emulator, w insts.Word) {
		vaddr := uint32(int64(e.regFile.ReadReg(w.Rs())) + w.SImm())
		op(e.lsu, w.Rt(), vaddr)
	}
}

func mulDivOp(op func(*ALU, uint8, uint8)) handler {
	return func(e *Emulator, w insts.Word) {
		op(e.alu, w.Rs(), w.Rt())
	}
}
