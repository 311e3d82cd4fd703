package insts

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR              // SPECIAL register format
	FormatI              // Immediate format (including REGIMM)
	FormatJ              // Jump format
	FormatCop            // Coprocessor format
)

// Class groups operations by their architectural side effects.
type Class uint8

// Instruction classes.
const (
	ClassOther     Class = iota
	ClassALU             // register-to-register ALU, shift and HI/LO moves
	ClassMulDiv          // multiply and divide, writes only HI/LO
	ClassALUImm          // immediate ALU
	ClassLoad            // integer loads
	ClassStore           // integer stores
	ClassBranch          // branches and jumps
	ClassCop0Read        // MFC0, DMFC0
	ClassCop0Write       // MTC0, DMTC0
	ClassCop0Op          // TLB operations and ERET
	ClassCop1            // any COP1 transfer, branch or operation
	ClassCache           // CACHE maintenance
	ClassSystem          // SYSCALL, BREAK, SYNC and traps
)

// Instruction represents a decoded VR4300 instruction.
type Instruction struct {
	Word   Word   // Raw instruction word
	Op     Op     // Operation
	Format Format // Encoding format
	Class  Class  // Side-effect class

	Rs uint8  // First source register
	Rt uint8  // Second source or immediate destination register
	Rd uint8  // Register-format destination register
	Sa uint32 // Shift amount

	Imm    uint64 // Zero-extended immediate
	SImm   int64  // Sign-extended immediate
	Target uint32 // 26-bit jump target

	Likely bool // Branch-likely form (delay slot annulled when not taken)
	Link   bool // Writes a return address
}

// Dest returns the general-purpose register written by the instruction.
// The second result is false when no GPR is written.
func (i *Instruction) Dest() (uint8, bool) {
	switch i.Class {
	case ClassALU:
		switch i.Op {
		case OpMTHI, OpMTLO:
			return 0, false
		}
		return i.Rd, true
	case ClassALUImm, ClassLoad, ClassCop0Read:
		return i.Rt, true
	case ClassStore:
		if i.Op == OpSC || i.Op == OpSCD {
			return i.Rt, true
		}
	case ClassBranch:
		if i.Op == OpJALR {
			return i.Rd, true
		}
		if i.Link {
			return 31, true
		}
	case ClassCop1:
		switch i.Op {
		case OpMFC1, OpDMFC1, OpCFC1:
			return i.Rt, true
		}
	}
	return 0, false
}

// IsBranch returns true if the instruction has a delay slot.
func (i *Instruction) IsBranch() bool {
	return i.Class == ClassBranch || (i.Op >= OpBC1F && i.Op <= OpBC1TL)
}

type opInfo struct {
	op     Op
	class  Class
	likely bool
	link   bool
}

// Decoder decodes VR4300 machine words into instructions.
type Decoder struct {
	primary [64]opInfo
	special [64]opInfo
	regimm  [32]opInfo
}

// NewDecoder creates a new VR4300 instruction decoder.
func NewDecoder() *Decoder {
	d := &Decoder{}

	alu := func(f uint32, op Op) { d.special[f] = opInfo{op: op, class: ClassALU} }
	for f, op := range map[uint32]Op{
		FunctSLL: OpSLL, FunctSRL: OpSRL, FunctSRA: OpSRA,
		FunctSLLV: OpSLLV, FunctSRLV: OpSRLV, FunctSRAV: OpSRAV,
		FunctMFHI: OpMFHI, FunctMTHI: OpMTHI, FunctMFLO: OpMFLO, FunctMTLO: OpMTLO,
		FunctDSLLV: OpDSLLV, FunctDSRLV: OpDSRLV, FunctDSRAV: OpDSRAV,
		FunctADD: OpADD, FunctADDU: OpADDU, FunctSUB: OpSUB, FunctSUBU: OpSUBU,
		FunctAND: OpAND, FunctOR: OpOR, FunctXOR: OpXOR, FunctNOR: OpNOR,
		FunctSLT: OpSLT, FunctSLTU: OpSLTU,
		FunctDADD: OpDADD, FunctDADDU: OpDADDU, FunctDSUB: OpDSUB, FunctDSUBU: OpDSUBU,
		FunctDSLL: OpDSLL, FunctDSRL: OpDSRL, FunctDSRA: OpDSRA,
		FunctDSLL32: OpDSLL32, FunctDSRL32: OpDSRL32, FunctDSRA32: OpDSRA32,
	} {
		alu(f, op)
	}
	for f, op := range map[uint32]Op{
		FunctMULT: OpMULT, FunctMULTU: OpMULTU, FunctDIV: OpDIV, FunctDIVU: OpDIVU,
		FunctDMULT: OpDMULT, FunctDMULTU: OpDMULTU, FunctDDIV: OpDDIV, FunctDDIVU: OpDDIVU,
	} {
		d.special[f] = opInfo{op: op, class: ClassMulDiv}
	}
	for f, op := range map[uint32]Op{
		FunctSYSCALL: OpSYSCALL, FunctBREAK: OpBREAK, FunctSYNC: OpSYNC,
		FunctTGE: OpTGE, FunctTGEU: OpTGEU, FunctTLT: OpTLT, FunctTLTU: OpTLTU,
		FunctTEQ: OpTEQ, FunctTNE: OpTNE,
	} {
		d.special[f] = opInfo{op: op, class: ClassSystem}
	}
	d.special[FunctJR] = opInfo{op: OpJR, class: ClassBranch}
	d.special[FunctJALR] = opInfo{op: OpJALR, class: ClassBranch, link: true}

	d.regimm[RegimmBLTZ] = opInfo{op: OpBLTZ, class: ClassBranch}
	d.regimm[RegimmBGEZ] = opInfo{op: OpBGEZ, class: ClassBranch}
	d.regimm[RegimmBLTZL] = opInfo{op: OpBLTZL, class: ClassBranch, likely: true}
	d.regimm[RegimmBGEZL] = opInfo{op: OpBGEZL, class: ClassBranch, likely: true}
	d.regimm[RegimmBLTZAL] = opInfo{op: OpBLTZAL, class: ClassBranch, link: true}
	d.regimm[RegimmBGEZAL] = opInfo{op: OpBGEZAL, class: ClassBranch, link: true}
	d.regimm[RegimmBLTZALL] = opInfo{op: OpBLTZALL, class: ClassBranch, likely: true, link: true}
	d.regimm[RegimmBGEZALL] = opInfo{op: OpBGEZALL, class: ClassBranch, likely: true, link: true}
	for rt, op := range map[uint32]Op{
		RegimmTGEI: OpTGEI, RegimmTGEIU: OpTGEIU, RegimmTLTI: OpTLTI,
		RegimmTLTIU: OpTLTIU, RegimmTEQI: OpTEQI, RegimmTNEI: OpTNEI,
	} {
		d.regimm[rt] = opInfo{op: op, class: ClassSystem}
	}

	d.primary[OpcodeJ] = opInfo{op: OpJ, class: ClassBranch}
	d.primary[OpcodeJAL] = opInfo{op: OpJAL, class: ClassBranch, link: true}
	d.primary[OpcodeBEQ] = opInfo{op: OpBEQ, class: ClassBranch}
	d.primary[OpcodeBNE] = opInfo{op: OpBNE, class: ClassBranch}
	d.primary[OpcodeBLEZ] = opInfo{op: OpBLEZ, class: ClassBranch}
	d.primary[OpcodeBGTZ] = opInfo{op: OpBGTZ, class: ClassBranch}
	d.primary[OpcodeBEQL] = opInfo{op: OpBEQL, class: ClassBranch, likely: true}
	d.primary[OpcodeBNEL] = opInfo{op: OpBNEL, class: ClassBranch, likely: true}
	d.primary[OpcodeBLEZL] = opInfo{op: OpBLEZL, class: ClassBranch, likely: true}
	d.primary[OpcodeBGTZL] = opInfo{op: OpBGTZL, class: ClassBranch, likely: true}
	for o, op := range map[uint32]Op{
		OpcodeADDI: OpADDI, OpcodeADDIU: OpADDIU, OpcodeSLTI: OpSLTI, OpcodeSLTIU: OpSLTIU,
		OpcodeANDI: OpANDI, OpcodeORI: OpORI, OpcodeXORI: OpXORI, OpcodeLUI: OpLUI,
		OpcodeDADDI: OpDADDI, OpcodeDADDIU: OpDADDIU,
	} {
		d.primary[o] = opInfo{op: op, class: ClassALUImm}
	}
	for o, op := range map[uint32]Op{
		OpcodeLDL: OpLDL, OpcodeLDR: OpLDR, OpcodeLB: OpLB, OpcodeLH: OpLH,
		OpcodeLWL: OpLWL, OpcodeLW: OpLW, OpcodeLBU: OpLBU, OpcodeLHU: OpLHU,
		OpcodeLWR: OpLWR, OpcodeLWU: OpLWU, OpcodeLL: OpLL, OpcodeLLD: OpLLD, OpcodeLD: OpLD,
	} {
		d.primary[o] = opInfo{op: op, class: ClassLoad}
	}
	for o, op := range map[uint32]Op{
		OpcodeSB: OpSB, OpcodeSH: OpSH, OpcodeSWL: OpSWL, OpcodeSW: OpSW,
		OpcodeSDL: OpSDL, OpcodeSDR: OpSDR, OpcodeSWR: OpSWR,
		OpcodeSC: OpSC, OpcodeSCD: OpSCD, OpcodeSD: OpSD,
	} {
		d.primary[o] = opInfo{op: op, class: ClassStore}
	}
	for o, op := range map[uint32]Op{
		OpcodeLWC1: OpLWC1, OpcodeLDC1: OpLDC1, OpcodeSWC1: OpSWC1, OpcodeSDC1: OpSDC1,
	} {
		d.primary[o] = opInfo{op: op, class: ClassCop1}
	}
	d.primary[OpcodeCACHE] = opInfo{op: OpCACHE, class: ClassCache}

	return d
}

// Decode decodes a 32-bit VR4300 instruction word.
func (d *Decoder) Decode(word Word) *Instruction {
	inst := &Instruction{
		Word:   word,
		Rs:     word.Rs(),
		Rt:     word.Rt(),
		Rd:     word.Rd(),
		Sa:     word.Sa(),
		Imm:    word.Imm(),
		SImm:   word.SImm(),
		Target: word.Target(),
	}

	var info opInfo
	switch word.Op() {
	case OpcodeSpecial:
		info = d.special[word.Funct()]
		inst.Format = FormatR
	case OpcodeRegimm:
		info = d.regimm[word.Rt()]
		inst.Format = FormatI
	case OpcodeCop0:
		info = d.decodeCop0(word)
		inst.Format = FormatCop
	case OpcodeCop1:
		info = d.decodeCop1(word)
		inst.Format = FormatCop
	case OpcodeJ, OpcodeJAL:
		info = d.primary[word.Op()]
		inst.Format = FormatJ
	default:
		info = d.primary[word.Op()]
		inst.Format = FormatI
	}

	if info.op == OpUnknown {
		inst.Format = FormatUnknown
	}
	inst.Op = info.op
	inst.Class = info.class
	inst.Likely = info.likely
	inst.Link = info.link

	return inst
}

func (d *Decoder) decodeCop0(word Word) opInfo {
	rs := word.Rs()
	if rs&CopCO != 0 {
		switch word.Funct() {
		case Cop0TLBR:
			return opInfo{op: OpTLBR, class: ClassCop0Op}
		case Cop0TLBWI:
			return opInfo{op: OpTLBWI, class: ClassCop0Op}
		case Cop0TLBWR:
			return opInfo{op: OpTLBWR, class: ClassCop0Op}
		case Cop0TLBP:
			return opInfo{op: OpTLBP, class: ClassCop0Op}
		case Cop0ERET:
			return opInfo{op: OpERET, class: ClassCop0Op}
		}
		return opInfo{}
	}

	switch rs {
	case CopMF:
		return opInfo{op: OpMFC0, class: ClassCop0Read}
	case CopDMF:
		return opInfo{op: OpDMFC0, class: ClassCop0Read}
	case CopMT:
		return opInfo{op: OpMTC0, class: ClassCop0Write}
	case CopDMT:
		return opInfo{op: OpDMTC0, class: ClassCop0Write}
	}
	return opInfo{}
}

func (d *Decoder) decodeCop1(word Word) opInfo {
	rs := word.Rs()
	if rs&CopCO != 0 {
		return opInfo{op: OpCOP1, class: ClassCop1}
	}

	switch rs {
	case CopMF:
		return opInfo{op: OpMFC1, class: ClassCop1}
	case CopDMF:
		return opInfo{op: OpDMFC1, class: ClassCop1}
	case CopCF:
		return opInfo{op: OpCFC1, class: ClassCop1}
	case CopMT:
		return opInfo{op: OpMTC1, class: ClassCop1}
	case CopDMT:
		return opInfo{op: OpDMTC1, class: ClassCop1}
	case CopCT:
		return opInfo{op: OpCTC1, class: ClassCop1}
	case CopBC:
		switch word.Rt() & 0x3 {
		case 0:
			return opInfo{op: OpBC1F, class: ClassCop1}
		case 1:
			return opInfo{op: OpBC1T, class: ClassCop1}
		case 2:
			return opInfo{op: OpBC1FL, class: ClassCop1, likely: true}
		default:
			return opInfo{op: OpBC1TL, class: ClassCop1, likely: true}
		}
	}
	return opInfo{}
}
