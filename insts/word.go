package insts

// Word is a raw 32-bit MIPS instruction word.
type Word uint32

// Primary opcode groups that re-dispatch on another field.
const (
	OpcodeSpecial uint32 = 0x00
	OpcodeRegimm  uint32 = 0x01
	OpcodeCop0    uint32 = 0x10
	OpcodeCop1    uint32 = 0x11
)

// Nop is the canonical no-op encoding (SLL $0, $0, 0).
const Nop Word = 0

// Op returns the primary opcode in bits [31:26].
func (w Word) Op() uint32 {
	return uint32(w) >> 26
}

// Rs returns the register index in bits [25:21].
func (w Word) Rs() uint8 {
	return uint8((uint32(w) >> 21) & 0x1F)
}

// Rt returns the register index in bits [20:16].
func (w Word) Rt() uint8 {
	return uint8((uint32(w) >> 16) & 0x1F)
}

// Rd returns the register index in bits [15:11].
func (w Word) Rd() uint8 {
	return uint8((uint32(w) >> 11) & 0x1F)
}

// Sa returns the shift amount in bits [10:6].
func (w Word) Sa() uint32 {
	return (uint32(w) >> 6) & 0x1F
}

// Funct returns the SPECIAL function field in bits [5:0].
func (w Word) Funct() uint32 {
	return uint32(w) & 0x3F
}

// Imm returns the zero-extended 16-bit immediate.
func (w Word) Imm() uint64 {
	return uint64(uint32(w) & 0xFFFF)
}

// SImm returns the sign-extended 16-bit immediate.
func (w Word) SImm() int64 {
	return int64(int16(uint32(w) & 0xFFFF))
}

// Target returns the 26-bit jump target field.
func (w Word) Target() uint32 {
	return uint32(w) & 0x03FFFFFF
}

// EncodeR builds a SPECIAL (R-type) instruction word.
func EncodeR(funct uint32, rs, rt, rd uint8, sa uint32) Word {
	return Word(uint32(rs)<<21 | uint32(rt)<<16 | uint32(rd)<<11 | (sa&0x1F)<<6 | funct&0x3F)
}

// EncodeI builds an I-type instruction word.
func EncodeI(op uint32, rs, rt uint8, imm uint16) Word {
	return Word(op<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(imm))
}

// EncodeJ builds a J-type instruction word.
func EncodeJ(op uint32, target uint32) Word {
	return Word(op<<26 | target&0x03FFFFFF)
}

// EncodeRegimm builds a REGIMM instruction word.
func EncodeRegimm(rt uint8, rs uint8, imm uint16) Word {
	return EncodeI(OpcodeRegimm, rs, rt, imm)
}
