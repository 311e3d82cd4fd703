// Package latency provides instruction timing for the VR4300 cycle model.
//
// The latency values can be configured via TimingConfig. A latency of one
// cycle costs nothing beyond the interpreter's per-instruction cycle
// multiplier; anything above that is reported as a stall.
package latency

import (
	"github.com/sarchlab/m64sim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default VR4300 timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given instruction.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Op {
	case insts.OpMULT, insts.OpMULTU:
		return t.config.MultiplyLatency
	case insts.OpDMULT, insts.OpDMULTU:
		return t.config.DoubleMultiplyLatency
	case insts.OpDIV, insts.OpDIVU:
		return t.config.DivideLatency
	case insts.OpDDIV, insts.OpDDIVU:
		return t.config.DoubleDivideLatency
	case insts.OpLWC1, insts.OpLDC1:
		return t.config.LoadLatency
	case insts.OpSWC1, insts.OpSDC1:
		return t.config.StoreLatency
	}

	switch inst.Class {
	case insts.ClassALU, insts.ClassALUImm:
		return t.config.ALULatency
	case insts.ClassBranch:
		return t.config.BranchLatency
	case insts.ClassLoad:
		return t.config.LoadLatency
	case insts.ClassStore:
		return t.config.StoreLatency
	case insts.ClassCop0Read, insts.ClassCop0Write, insts.ClassCop0Op:
		return t.config.Cop0Latency
	case insts.ClassSystem:
		return t.config.SyscallLatency
	default:
		return 1
	}
}

// Stall returns the cycles the instruction costs beyond a single cycle.
func (t *Table) Stall(inst *insts.Instruction) uint64 {
	if l := t.GetLatency(inst); l > 1 {
		return l - 1
	}
	return 0
}

// IsMemoryOp returns true if the instruction accesses memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	return t.IsLoadOp(inst) || t.IsStoreOp(inst)
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpLWC1, insts.OpLDC1:
		return true
	}
	return inst.Class == insts.ClassLoad
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpSWC1, insts.OpSDC1:
		return true
	}
	return inst.Class == insts.ClassStore
}

// IsBranchOp returns true if the instruction has a delay slot.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	return inst.IsBranch()
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
