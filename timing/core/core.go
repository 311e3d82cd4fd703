// Package core provides the VR4300 cycle model.
// It combines the cache and latency models into the stall hook the
// interpreter calls on every fetch, data access and instruction.
package core

import (
	"github.com/sarchlab/m64sim/insts"
	"github.com/sarchlab/m64sim/timing/cache"
	"github.com/sarchlab/m64sim/timing/latency"
)

// UncachedBase is the first physical address outside RDRAM. Accesses at or
// above it bypass both caches and cost no extra cycles.
const UncachedBase uint32 = 0x03F00000

// Stats holds performance statistics for the model.
type Stats struct {
	// Instructions is the number of instructions executed.
	Instructions uint64
	// FetchStalls is the number of cycles lost to I-cache misses.
	FetchStalls uint64
	// DataStalls is the number of cycles lost to D-cache misses.
	DataStalls uint64
	// ExecStalls is the number of cycles lost to multi-cycle operations.
	ExecStalls uint64
}

// Stalls returns the total number of stall cycles.
func (s Stats) Stalls() uint64 {
	return s.FetchStalls + s.DataStalls + s.ExecStalls
}

// Model charges VR4300 cache and execution stalls.
type Model struct {
	latency *latency.Table
	icache  *cache.Cache
	dcache  *cache.Cache

	stats Stats
}

// NewModel creates a Model from a latency table and cache configurations.
func NewModel(table *latency.Table, icache, dcache cache.Config) *Model {
	return &Model{
		latency: table,
		icache:  cache.New(icache),
		dcache:  cache.New(dcache),
	}
}

// NewDefaultModel creates a Model with the VR4300 defaults.
func NewDefaultModel() *Model {
	return NewModel(
		latency.NewTable(),
		cache.DefaultICacheConfig(),
		cache.DefaultDCacheConfig(),
	)
}

// Fetch charges an instruction fetch.
func (m *Model) Fetch(phys uint32) uint32 {
	if phys >= UncachedBase {
		return 0
	}

	stall := m.icache.Read(uint64(phys)).Latency
	m.stats.FetchStalls += stall
	return uint32(stall)
}

// Data charges a load or store.
func (m *Model) Data(phys uint32, write bool) uint32 {
	if phys >= UncachedBase {
		return 0
	}

	var result cache.AccessResult
	if write {
		result = m.dcache.Write(uint64(phys))
	} else {
		result = m.dcache.Read(uint64(phys))
	}
	m.stats.DataStalls += result.Latency
	return uint32(result.Latency)
}

// Execute charges the pipeline stall of a decoded instruction.
func (m *Model) Execute(inst *insts.Instruction) uint32 {
	m.stats.Instructions++

	stall := m.latency.Stall(inst)
	m.stats.ExecStalls += stall
	return uint32(stall)
}

// ICache returns the instruction cache model.
func (m *Model) ICache() *cache.Cache {
	return m.icache
}

// DCache returns the data cache model.
func (m *Model) DCache() *cache.Cache {
	return m.dcache
}

// Stats returns performance statistics for the model.
func (m *Model) Stats() Stats {
	return m.stats
}

// Reset clears all cache state and statistics.
func (m *Model) Reset() {
	m.icache.Reset()
	m.dcache.Reset()
	m.stats = Stats{}
}
