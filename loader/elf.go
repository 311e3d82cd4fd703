// Package loader provides ELF binary loading for big-endian MIPS executables.
package loader

import (
	"debug/elf"
	"fmt"
	"io"

	"github.com/sarchlab/m64sim/emu"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackTop is the initial stack pointer: the top of the first
// 4 MiB of RDRAM seen through KSEG0, less a 16-byte argument area.
const DefaultStackTop = 0x803FFFF0

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// EntryPoint is the virtual address where execution should begin.
	EntryPoint uint64
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
	// InitialSP is the initial stack pointer value.
	InitialSP uint64
}

// Load parses a big-endian MIPS ELF binary, 32- or 64-bit, and returns a
// Program ready for installing into the emulator's memory.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Data != elf.ELFDATA2MSB {
		return nil, fmt.Errorf("not a big-endian ELF file")
	}

	if f.Machine != elf.EM_MIPS {
		return nil, fmt.Errorf("not a MIPS ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		EntryPoint: f.Entry,
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: phdr.Vaddr,
			Data:     data,
			MemSize:  phdr.Memsz,
			Flags:    flags,
		})
	}

	return prog, nil
}

// Install copies every segment into the emulator's memory through the
// direct KSEG0/KSEG1 mapping, zero-fills the BSS tail, and sets the PC and
// stack pointer.
func (p *Program) Install(e *emu.Emulator) error {
	mapper := emu.DirectMapper{}
	limit := uint64(emu.DefaultRDRAMSize)
	if m := e.Memory(); m != nil {
		limit = uint64(m.RDRAMSize())
	}

	for _, seg := range p.Segments {
		phys := mapper.Read32(uint32(seg.VirtAddr))
		if uint64(phys)+seg.MemSize > limit {
			return fmt.Errorf("segment at 0x%x (%d bytes) does not fit in RDRAM", seg.VirtAddr, seg.MemSize)
		}

		image := make([]byte, seg.MemSize)
		copy(image, seg.Data)
		e.LoadProgram(e.RegFile().PC, phys, image)
	}

	e.RegFile().PC = uint32(p.EntryPoint)
	e.RegFile().WriteReg32(29, uint32(p.InitialSP))

	return nil
}
