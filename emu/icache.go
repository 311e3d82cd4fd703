// Package emu provides functional VR4300 emulation.
package emu

import "github.com/sarchlab/m64sim/insts"

const (
	decodePageShift = 10
	decodePageSize  = 1 << decodePageShift // entries per 4 KiB of code
	decodePageMask  = decodePageSize - 1
)

type decodeEntry struct {
	addr    uint32
	word    insts.Word
	handler handler
	valid   bool
}

// DecodeCache remembers the word and resolved handler of every fetched
// instruction in RDRAM and SP memory. SP memory is indexed after RDRAM.
// Stores must invalidate the words they write.
type DecodeCache struct {
	enabled   bool
	rdramSize uint32
	bus       Bus
	tables    *opTables

	pages [][]decodeEntry

	hits   uint64
	misses uint64
}

func newDecodeCache(bus Bus, tables *opTables, rdramSize uint32, enabled bool) *DecodeCache {
	c := &DecodeCache{
		enabled:   enabled,
		rdramSize: rdramSize,
		bus:       bus,
		tables:    tables,
	}
	c.Reset()
	return c
}

// Enabled reports whether lookups are cached.
func (c *DecodeCache) Enabled() bool {
	return c.enabled
}

// index maps a physical address to a slot number.
func (c *DecodeCache) index(phys uint32) (uint32, bool) {
	switch {
	case phys < c.rdramSize:
		return phys >> 2, true
	case phys >= SPMemBase && phys < SPMemBase+SPMemSize:
		return (phys - SPMemBase + c.rdramSize) >> 2, true
	default:
		return 0, false
	}
}

func (c *DecodeCache) resolve(phys uint32) (insts.Word, handler) {
	word := insts.Word(c.bus.Read32(phys))
	return word, c.tables.resolve(word)
}

// Fetch returns the instruction word at phys and its handler.
func (c *DecodeCache) Fetch(phys uint32) (insts.Word, handler) {
	if !c.enabled {
		return c.resolve(phys)
	}

	slot, ok := c.index(phys)
	if !ok {
		return c.resolve(phys)
	}

	page := c.pages[slot>>decodePageShift]
	if page == nil {
		page = make([]decodeEntry, decodePageSize)
		c.pages[slot>>decodePageShift] = page
	}

	entry := &page[slot&decodePageMask]
	if entry.valid && entry.addr == phys {
		c.hits++
		return entry.word, entry.handler
	}

	c.misses++
	entry.addr = phys
	entry.word, entry.handler = c.resolve(phys)
	entry.valid = true
	return entry.word, entry.handler
}

// Invalidate drops the entry holding the word at phys.
func (c *DecodeCache) Invalidate(phys uint32) {
	if !c.enabled {
		return
	}
	slot, ok := c.index(phys)
	if !ok {
		return
	}
	if page := c.pages[slot>>decodePageShift]; page != nil {
		page[slot&decodePageMask].valid = false
	}
}

// InvalidateRange drops every entry overlapping [phys, phys+n). DMA
// collaborators call this after writing memory behind the CPU.
func (c *DecodeCache) InvalidateRange(phys, n uint32) {
	if n == 0 {
		return
	}
	end := uint64(phys) + uint64(n)
	for a := uint64(phys &^ 3); a < end; a += 4 {
		c.Invalidate(uint32(a))
	}
}

// Reset invalidates every entry.
func (c *DecodeCache) Reset() {
	slots := (c.rdramSize + SPMemSize) >> 2
	c.pages = make([][]decodeEntry, (slots+decodePageMask)>>decodePageShift)
	c.hits = 0
	c.misses = 0
}

// Hits returns the number of lookups served from the cache.
func (c *DecodeCache) Hits() uint64 {
	return c.hits
}

// Misses returns the number of lookups that decoded from memory.
func (c *DecodeCache) Misses() uint64 {
	return c.misses
}
