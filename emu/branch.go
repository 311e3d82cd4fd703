// Package emu provides functional VR4300 emulation.
package emu

// BranchState tracks where the next fetch comes from.
type BranchState uint8

// Branch states.
const (
	// BranchNormal fetches the next sequential instruction.
	BranchNormal BranchState = iota
	// BranchDelaySlot means a branch resolved in this step; the following
	// instruction is its delay slot.
	BranchDelaySlot
	// BranchJump lands on the pending target after this step.
	BranchJump
)

func (s BranchState) String() string {
	switch s {
	case BranchNormal:
		return "normal"
	case BranchDelaySlot:
		return "delay-slot"
	case BranchJump:
		return "jump"
	default:
		return "unknown"
	}
}

// BranchUnit holds the delay-slot state machine. Branch handlers never
// write the PC; they record a target that takes effect after the delay slot.
type BranchUnit struct {
	regFile *RegFile

	State  BranchState
	Target uint32
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// BranchTarget returns the PC-relative target of a conditional branch.
func (b *BranchUnit) BranchTarget(offset int64) uint32 {
	return uint32(int64(b.regFile.PC) + 4 + offset<<2)
}

// JumpTarget returns the target of J/JAL: the 256 MiB region of the delay
// slot combined with the 26-bit instruction index.
func (b *BranchUnit) JumpTarget(index uint32) uint32 {
	return (b.regFile.PC+4)&0xF0000000 | index<<2
}

// Link writes the return address, the instruction after the delay slot.
func (b *BranchUnit) Link(reg uint8) {
	b.regFile.WriteReg32(reg, b.regFile.PC+8)
}

// Resolve records the outcome of a branch. A taken branch schedules its
// target behind the delay slot. A likely branch that is not taken annuls
// its delay slot by jumping straight past it.
func (b *BranchUnit) Resolve(taken, likely bool, target uint32) {
	switch {
	case taken:
		b.State = BranchDelaySlot
		b.Target = target
	case likely:
		b.Nullify()
	}
}

// Nullify skips the instruction after the current one.
func (b *BranchUnit) Nullify() {
	b.State = BranchJump
	b.Target = b.regFile.PC + 8
}

// ForceDelaySlot makes the next instruction a delay slot of the pending
// target.
func (b *BranchUnit) ForceDelaySlot() {
	b.State = BranchDelaySlot
}

// Schedule lands on target after the current instruction.
func (b *BranchUnit) Schedule(target uint32) {
	b.State = BranchJump
	b.Target = target
}

// Advance applies the state transition that follows an executed
// instruction. It reports whether the PC landed on a branch target.
func (b *BranchUnit) Advance() bool {
	switch b.State {
	case BranchDelaySlot:
		b.State = BranchJump
		b.regFile.PC += 4
	case BranchJump:
		b.State = BranchNormal
		b.regFile.PC = b.Target
		return true
	default:
		b.regFile.PC += 4
	}
	return false
}

// Reset returns the unit to sequential fetch.
func (b *BranchUnit) Reset() {
	b.State = BranchNormal
	b.Target = 0
}
