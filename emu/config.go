// Package emu provides functional VR4300 emulation.
package emu

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the interpreter settings that can be loaded from JSON.
type Config struct {
	// InstructionCache enables the decode cache.
	// Default: true.
	InstructionCache bool `json:"instructioncache"`

	// RDRAMSize is the size of the RDRAM region in bytes. It bounds the
	// decode cache and sizes the default memory.
	// Default: 8 MiB.
	RDRAMSize uint32 `json:"rdramsize"`

	// CycleMultiplier is the number of CPU cycles charged per instruction.
	// Default: 1.
	CycleMultiplier uint32 `json:"cyclemultiplier"`

	// MaxInstructions stops Run after this many instructions. 0 means no
	// limit.
	MaxInstructions uint64 `json:"maxinstructions"`
}

// DefaultConfig returns the default interpreter configuration.
func DefaultConfig() *Config {
	return &Config{
		InstructionCache: true,
		RDRAMSize:        DefaultRDRAMSize,
		CycleMultiplier:  1,
	}
}

// LoadConfig loads a Config from a JSON file. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read emulator config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse emulator config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize emulator config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write emulator config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a usable machine.
func (c *Config) Validate() error {
	if c.RDRAMSize == 0 || c.RDRAMSize%4096 != 0 {
		return fmt.Errorf("rdramsize must be a nonzero multiple of 4096")
	}
	if c.RDRAMSize > SPMemBase {
		return fmt.Errorf("rdramsize must not overlap SP memory at 0x%08X", SPMemBase)
	}
	if c.CycleMultiplier == 0 {
		return fmt.Errorf("cyclemultiplier must be > 0")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
