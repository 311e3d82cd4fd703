package insts

// Primary opcode field values (bits [31:26]).
const (
	OpcodeJ      uint32 = 0x02
	OpcodeJAL    uint32 = 0x03
	OpcodeBEQ    uint32 = 0x04
	OpcodeBNE    uint32 = 0x05
	OpcodeBLEZ   uint32 = 0x06
	OpcodeBGTZ   uint32 = 0x07
	OpcodeADDI   uint32 = 0x08
	OpcodeADDIU  uint32 = 0x09
	OpcodeSLTI   uint32 = 0x0A
	OpcodeSLTIU  uint32 = 0x0B
	OpcodeANDI   uint32 = 0x0C
	OpcodeORI    uint32 = 0x0D
	OpcodeXORI   uint32 = 0x0E
	OpcodeLUI    uint32 = 0x0F
	OpcodeBEQL   uint32 = 0x14
	OpcodeBNEL   uint32 = 0x15
	OpcodeBLEZL  uint32 = 0x16
	OpcodeBGTZL  uint32 = 0x17
	OpcodeDADDI  uint32 = 0x18
	OpcodeDADDIU uint32 = 0x19
	OpcodeLDL    uint32 = 0x1A
	OpcodeLDR    uint32 = 0x1B
	OpcodeLB     uint32 = 0x20
	OpcodeLH     uint32 = 0x21
	OpcodeLWL    uint32 = 0x22
	OpcodeLW     uint32 = 0x23
	OpcodeLBU    uint32 = 0x24
	OpcodeLHU    uint32 = 0x25
	OpcodeLWR    uint32 = 0x26
	OpcodeLWU    uint32 = 0x27
	OpcodeSB     uint32 = 0x28
	OpcodeSH     uint32 = 0x29
	OpcodeSWL    uint32 = 0x2A
	OpcodeSW     uint32 = 0x2B
	OpcodeSDL    uint32 = 0x2C
	OpcodeSDR    uint32 = 0x2D
	OpcodeSWR    uint32 = 0x2E
	OpcodeCACHE  uint32 = 0x2F
	OpcodeLL     uint32 = 0x30
	OpcodeLWC1   uint32 = 0x31
	OpcodeLLD    uint32 = 0x34
	OpcodeLDC1   uint32 = 0x35
	OpcodeLD     uint32 = 0x37
	OpcodeSC     uint32 = 0x38
	OpcodeSWC1   uint32 = 0x39
	OpcodeSCD    uint32 = 0x3C
	OpcodeSDC1   uint32 = 0x3D
	OpcodeSD     uint32 = 0x3F
)

// SPECIAL function field values (bits [5:0]).
const (
	FunctSLL     uint32 = 0x00
	FunctSRL     uint32 = 0x02
	FunctSRA     uint32 = 0x03
	FunctSLLV    uint32 = 0x04
	FunctSRLV    uint32 = 0x06
	FunctSRAV    uint32 = 0x07
	FunctJR      uint32 = 0x08
	FunctJALR    uint32 = 0x09
	FunctSYSCALL uint32 = 0x0C
	FunctBREAK   uint32 = 0x0D
	FunctSYNC    uint32 = 0x0F
	FunctMFHI    uint32 = 0x10
	FunctMTHI    uint32 = 0x11
	FunctMFLO    uint32 = 0x12
	FunctMTLO    uint32 = 0x13
	FunctDSLLV   uint32 = 0x14
	FunctDSRLV   uint32 = 0x16
	FunctDSRAV   uint32 = 0x17
	FunctMULT    uint32 = 0x18
	FunctMULTU   uint32 = 0x19
	FunctDIV     uint32 = 0x1A
	FunctDIVU    uint32 = 0x1B
	FunctDMULT   uint32 = 0x1C
	FunctDMULTU  uint32 = 0x1D
	FunctDDIV    uint32 = 0x1E
	FunctDDIVU   uint32 = 0x1F
	FunctADD     uint32 = 0x20
	FunctADDU    uint32 = 0x21
	FunctSUB     uint32 = 0x22
	FunctSUBU    uint32 = 0x23
	FunctAND     uint32 = 0x24
	FunctOR      uint32 = 0x25
	FunctXOR     uint32 = 0x26
	FunctNOR     uint32 = 0x27
	FunctSLT     uint32 = 0x2A
	FunctSLTU    uint32 = 0x2B
	FunctDADD    uint32 = 0x2C
	FunctDADDU   uint32 = 0x2D
	FunctDSUB    uint32 = 0x2E
	FunctDSUBU   uint32 = 0x2F
	FunctTGE     uint32 = 0x30
	FunctTGEU    uint32 = 0x31
	FunctTLT     uint32 = 0x32
	FunctTLTU    uint32 = 0x33
	FunctTEQ     uint32 = 0x34
	FunctTNE     uint32 = 0x36
	FunctDSLL    uint32 = 0x38
	FunctDSRL    uint32 = 0x3A
	FunctDSRA    uint32 = 0x3B
	FunctDSLL32  uint32 = 0x3C
	FunctDSRL32  uint32 = 0x3E
	FunctDSRA32  uint32 = 0x3F
)

// REGIMM sub-opcode values (bits [20:16]).
const (
	RegimmBLTZ    uint32 = 0x00
	RegimmBGEZ    uint32 = 0x01
	RegimmBLTZL   uint32 = 0x02
	RegimmBGEZL   uint32 = 0x03
	RegimmTGEI    uint32 = 0x08
	RegimmTGEIU   uint32 = 0x09
	RegimmTLTI    uint32 = 0x0A
	RegimmTLTIU   uint32 = 0x0B
	RegimmTEQI    uint32 = 0x0C
	RegimmTNEI    uint32 = 0x0E
	RegimmBLTZAL  uint32 = 0x10
	RegimmBGEZAL  uint32 = 0x11
	RegimmBLTZALL uint32 = 0x12
	RegimmBGEZALL uint32 = 0x13
)

// Coprocessor rs-field sub-opcodes shared by COP0 and COP1.
const (
	CopMF  uint8 = 0x00
	CopDMF uint8 = 0x01
	CopCF  uint8 = 0x02
	CopMT  uint8 = 0x04
	CopDMT uint8 = 0x05
	CopCT  uint8 = 0x06
	CopBC  uint8 = 0x08
	CopCO  uint8 = 0x10
)

// COP0 CO function values.
const (
	Cop0TLBR  uint32 = 0x01
	Cop0TLBWI uint32 = 0x02
	Cop0TLBWR uint32 = 0x06
	Cop0TLBP  uint32 = 0x08
	Cop0ERET  uint32 = 0x18
)

// Op represents a decoded VR4300 operation.
type Op uint16

// VR4300 operations.
const (
	OpUnknown Op = iota

	// SPECIAL
	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpSRAV
	OpJR
	OpJALR
	OpSYSCALL
	OpBREAK
	OpSYNC
	OpMFHI
	OpMTHI
	OpMFLO
	OpMTLO
	OpDSLLV
	OpDSRLV
	OpDSRAV
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpDMULT
	OpDMULTU
	OpDDIV
	OpDDIVU
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU
	OpDADD
	OpDADDU
	OpDSUB
	OpDSUBU
	OpTGE
	OpTGEU
	OpTLT
	OpTLTU
	OpTEQ
	OpTNE
	OpDSLL
	OpDSRL
	OpDSRA
	OpDSLL32
	OpDSRL32
	OpDSRA32

	// REGIMM
	OpBLTZ
	OpBGEZ
	OpBLTZL
	OpBGEZL
	OpTGEI
	OpTGEIU
	OpTLTI
	OpTLTIU
	OpTEQI
	OpTNEI
	OpBLTZAL
	OpBGEZAL
	OpBLTZALL
	OpBGEZALL

	// Primary
	OpJ
	OpJAL
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI
	OpBEQL
	OpBNEL
	OpBLEZL
	OpBGTZL
	OpDADDI
	OpDADDIU
	OpLDL
	OpLDR
	OpLB
	OpLH
	OpLWL
	OpLW
	OpLBU
	OpLHU
	OpLWR
	OpLWU
	OpSB
	OpSH
	OpSWL
	OpSW
	OpSDL
	OpSDR
	OpSWR
	OpCACHE
	OpLL
	OpLWC1
	OpLLD
	OpLDC1
	OpLD
	OpSC
	OpSWC1
	OpSCD
	OpSDC1
	OpSD

	// COP0
	OpMFC0
	OpDMFC0
	OpMTC0
	OpDMTC0
	OpTLBR
	OpTLBWI
	OpTLBWR
	OpTLBP
	OpERET

	// COP1
	OpMFC1
	OpDMFC1
	OpCFC1
	OpMTC1
	OpDMTC1
	OpCTC1
	OpBC1F
	OpBC1T
	OpBC1FL
	OpBC1TL
	OpCOP1

	opCount
)

var opNames = [opCount]string{
	OpUnknown: "???",
	OpSLL:     "sll", OpSRL: "srl", OpSRA: "sra", OpSLLV: "sllv", OpSRLV: "srlv", OpSRAV: "srav",
	OpJR: "jr", OpJALR: "jalr", OpSYSCALL: "syscall", OpBREAK: "break", OpSYNC: "sync",
	OpMFHI: "mfhi", OpMTHI: "mthi", OpMFLO: "mflo", OpMTLO: "mtlo",
	OpDSLLV: "dsllv", OpDSRLV: "dsrlv", OpDSRAV: "dsrav",
	OpMULT: "mult", OpMULTU: "multu", OpDIV: "div", OpDIVU: "divu",
	OpDMULT: "dmult", OpDMULTU: "dmultu", OpDDIV: "ddiv", OpDDIVU: "ddivu",
	OpADD: "add", OpADDU: "addu", OpSUB: "sub", OpSUBU: "subu",
	OpAND: "and", OpOR: "or", OpXOR: "xor", OpNOR: "nor", OpSLT: "slt", OpSLTU: "sltu",
	OpDADD: "dadd", OpDADDU: "daddu", OpDSUB: "dsub", OpDSUBU: "dsubu",
	OpTGE: "tge", OpTGEU: "tgeu", OpTLT: "tlt", OpTLTU: "tltu", OpTEQ: "teq", OpTNE: "tne",
	OpDSLL: "dsll", OpDSRL: "dsrl", OpDSRA: "dsra",
	OpDSLL32: "dsll32", OpDSRL32: "dsrl32", OpDSRA32: "dsra32",
	OpBLTZ: "bltz", OpBGEZ: "bgez", OpBLTZL: "bltzl", OpBGEZL: "bgezl",
	OpTGEI: "tgei", OpTGEIU: "tgeiu", OpTLTI: "tlti", OpTLTIU: "tltiu", OpTEQI: "teqi", OpTNEI: "tnei",
	OpBLTZAL: "bltzal", OpBGEZAL: "bgezal", OpBLTZALL: "bltzall", OpBGEZALL: "bgezall",
	OpJ: "j", OpJAL: "jal", OpBEQ: "beq", OpBNE: "bne", OpBLEZ: "blez", OpBGTZ: "bgtz",
	OpADDI: "addi", OpADDIU: "addiu", OpSLTI: "slti", OpSLTIU: "sltiu",
	OpANDI: "andi", OpORI: "ori", OpXORI: "xori", OpLUI: "lui",
	OpBEQL: "beql", OpBNEL: "bnel", OpBLEZL: "blezl", OpBGTZL: "bgtzl",
	OpDADDI: "daddi", OpDADDIU: "daddiu", OpLDL: "ldl", OpLDR: "ldr",
	OpLB: "lb", OpLH: "lh", OpLWL: "lwl", OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu",
	OpLWR: "lwr", OpLWU: "lwu", OpSB: "sb", OpSH: "sh", OpSWL: "swl", OpSW: "sw",
	OpSDL: "sdl", OpSDR: "sdr", OpSWR: "swr", OpCACHE: "cache",
	OpLL: "ll", OpLWC1: "lwc1", OpLLD: "lld", OpLDC1: "ldc1", OpLD: "ld",
	OpSC: "sc", OpSWC1: "swc1", OpSCD: "scd", OpSDC1: "sdc1", OpSD: "sd",
	OpMFC0: "mfc0", OpDMFC0: "dmfc0", OpMTC0: "mtc0", OpDMTC0: "dmtc0",
	OpTLBR: "tlbr", OpTLBWI: "tlbwi", OpTLBWR: "tlbwr", OpTLBP: "tlbp", OpERET: "eret",
	OpMFC1: "mfc1", OpDMFC1: "dmfc1", OpCFC1: "cfc1", OpMTC1: "mtc1", OpDMTC1: "dmtc1", OpCTC1: "ctc1",
	OpBC1F: "bc1f", OpBC1T: "bc1t", OpBC1FL: "bc1fl", OpBC1TL: "bc1tl", OpCOP1: "cop1",
}

// String returns the assembler mnemonic of the operation.
func (o Op) String() string {
	if o >= opCount {
		return opNames[OpUnknown]
	}
	return opNames[o]
}
