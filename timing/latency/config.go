package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds latency values for different instruction types.
// Values follow the VR4300 user's manual pipeline tables.
type TimingConfig struct {
	// ALULatency is the execution latency for ALU, shift and HI/LO moves.
	// Default: 1 cycle.
	ALULatency uint64 `json:"alu_latency"`

	// BranchLatency is the execution latency for branches and jumps.
	// The delay slot hides the taken-branch bubble. Default: 1 cycle.
	BranchLatency uint64 `json:"branch_latency"`

	// LoadLatency is the latency of an integer load on a D-cache hit.
	// Default: 2 cycles (one load-delay interlock).
	LoadLatency uint64 `json:"load_latency"`

	// StoreLatency is the latency of an integer store on a D-cache hit.
	// Default: 1 cycle.
	StoreLatency uint64 `json:"store_latency"`

	// MultiplyLatency is the latency of MULT/MULTU. Default: 5 cycles.
	MultiplyLatency uint64 `json:"multiply_latency"`

	// DoubleMultiplyLatency is the latency of DMULT/DMULTU.
	// Default: 8 cycles.
	DoubleMultiplyLatency uint64 `json:"double_multiply_latency"`

	// DivideLatency is the latency of DIV/DIVU. Default: 37 cycles.
	DivideLatency uint64 `json:"divide_latency"`

	// DoubleDivideLatency is the latency of DDIV/DDIVU. Default: 69 cycles.
	DoubleDivideLatency uint64 `json:"double_divide_latency"`

	// Cop0Latency is the latency of COP0 moves and operations.
	// Default: 1 cycle.
	Cop0Latency uint64 `json:"cop0_latency"`

	// SyscallLatency is the latency for SYSCALL, BREAK, SYNC and traps.
	// Default: 1 cycle (handling is external).
	SyscallLatency uint64 `json:"syscall_latency"`
}

// DefaultTimingConfig returns a TimingConfig with VR4300 default values.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		ALULatency:            1,
		BranchLatency:         1,
		LoadLatency:           2,
		StoreLatency:          1,
		MultiplyLatency:       5,
		DoubleMultiplyLatency: 8,
		DivideLatency:         37,
		DoubleDivideLatency:   69,
		Cop0Latency:           1,
		SyscallLatency:        1,
	}
}

// LoadConfig loads a TimingConfig from a JSON file.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing config file: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a TimingConfig to a JSON file.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write timing config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are valid (> 0).
func (c *TimingConfig) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.BranchLatency == 0 {
		return fmt.Errorf("branch_latency must be > 0")
	}
	if c.LoadLatency == 0 {
		return fmt.Errorf("load_latency must be > 0")
	}
	if c.StoreLatency == 0 {
		return fmt.Errorf("store_latency must be > 0")
	}
	if c.MultiplyLatency == 0 || c.DoubleMultiplyLatency == 0 {
		return fmt.Errorf("multiply latencies must be > 0")
	}
	if c.DivideLatency == 0 || c.DoubleDivideLatency == 0 {
		return fmt.Errorf("divide latencies must be > 0")
	}
	if c.Cop0Latency == 0 {
		return fmt.Errorf("cop0_latency must be > 0")
	}
	if c.SyscallLatency == 0 {
		return fmt.Errorf("syscall_latency must be > 0")
	}
	if c.MultiplyLatency > c.DoubleMultiplyLatency {
		return fmt.Errorf("multiply_latency must be <= double_multiply_latency")
	}
	if c.DivideLatency > c.DoubleDivideLatency {
		return fmt.Errorf("divide_latency must be <= double_divide_latency")
	}
	return nil
}

// Clone returns a copy of the TimingConfig.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
