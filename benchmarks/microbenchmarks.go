package benchmarks

import (
	"github.com/sarchlab/m64sim/emu"
	"github.com/sarchlab/m64sim/insts"
)

// Data regions used by the memory kernels.
const (
	sourceBase uint32 = 0x80010000
	copyWords         = 64

	// destOffset keeps the destination out of the source's D-cache sets.
	destOffset = 0x1000
)

// GetMicrobenchmarks returns the standard set of kernels. Each one targets a
// specific interpreter or cycle model behavior.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		branchTaken(),
		multiplyDivide(),
		memcpy(),
		selfModifying(),
		spinWait(),
	}
}

// GetCoreBenchmarks returns a minimal set of kernels for quick validation:
// a loop, a memory copy and the idle loop.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		branchTaken(),
		memcpy(),
		spinWait(),
	}
}

var syscall = insts.EncodeR(insts.FunctSYSCALL, 0, 0, 0, 0)

func addiu(rt, rs uint8, imm int16) insts.Word {
	return insts.EncodeI(insts.OpcodeADDIU, rs, rt, uint16(imm))
}

// branchOffset returns the immediate of a branch at index from that lands
// on index to.
func branchOffset(from, to int) uint16 {
	return uint16(int16(to - from - 1))
}

// jumpIndex returns the J/JAL target field for word index i of the program.
func jumpIndex(i int) uint32 {
	return (ProgramBase + uint32(4*i)) & 0x0FFFFFFF >> 2
}

// 1. Arithmetic Sequential - independent ALU operations
func arithmeticSequential() Benchmark {
	words := make([]insts.Word, 0, 21)
	for i := 0; i < 4; i++ {
		for rt := uint8(4); rt <= 8; rt++ {
			words = append(words, addiu(rt, rt, 1))
		}
	}
	words = append(words, syscall)

	return Benchmark{
		Name:         "arithmetic_sequential",
		Description:  "20 independent ADDIU operations - measures ALU throughput",
		Program:      BuildProgram(words...),
		ExpectedExit: 4,
	}
}

// 2. Dependency Chain - every instruction reads the previous result
func dependencyChain() Benchmark {
	words := make([]insts.Word, 0, 21)
	for i := 0; i < 20; i++ {
		words = append(words, addiu(4, 4, 1))
	}
	words = append(words, syscall)

	return Benchmark{
		Name:         "dependency_chain",
		Description:  "20 dependent ADDIU operations - measures chained ALU latency",
		Program:      BuildProgram(words...),
		ExpectedExit: 20,
	}
}

// 3. Memory Sequential - stores followed by loads of the same words
func memorySequential() Benchmark {
	return Benchmark{
		Name:        "memory_sequential",
		Description: "4 stores then 4 loads - measures D-cache allocation and hits",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg32(8, sourceBase)
		},
		Program: BuildProgram(
			addiu(9, 0, 42),
			insts.EncodeI(insts.OpcodeSW, 8, 9, 0),
			insts.EncodeI(insts.OpcodeSW, 8, 9, 4),
			insts.EncodeI(insts.OpcodeSW, 8, 9, 8),
			insts.EncodeI(insts.OpcodeSW, 8, 9, 12),
			insts.EncodeI(insts.OpcodeLW, 8, 10, 0),
			insts.EncodeI(insts.OpcodeLW, 8, 11, 4),
			insts.EncodeI(insts.OpcodeLW, 8, 12, 8),
			insts.EncodeI(insts.OpcodeLW, 8, 13, 12),
			insts.EncodeR(insts.FunctADDU, 13, 0, 4, 0),
			syscall,
		),
		ExpectedExit: 42,
	}
}

// 4. Function Calls - JAL/JR with work in the return delay slot
func functionCalls() Benchmark {
	const fn = 7

	return Benchmark{
		Name:        "function_calls",
		Description: "3 JAL/JR pairs - measures call and return overhead",
		Program: BuildProgram(
			insts.EncodeJ(insts.OpcodeJAL, jumpIndex(fn)),
			insts.Nop,
			insts.EncodeJ(insts.OpcodeJAL, jumpIndex(fn)),
			insts.Nop,
			insts.EncodeJ(insts.OpcodeJAL, jumpIndex(fn)),
			insts.Nop,
			syscall,
			insts.EncodeR(insts.FunctJR, 31, 0, 0, 0),
			addiu(4, 4, 1),
		),
		ExpectedExit: 3,
	}
}

// 5. Branch Taken - a counted loop
func branchTaken() Benchmark {
	return Benchmark{
		Name:        "branch_taken",
		Description: "10-iteration BNE loop - measures taken branch and delay slot cost",
		Program: BuildProgram(
			addiu(8, 0, 10),
			addiu(4, 4, 1),
			addiu(8, 8, -1),
			insts.EncodeI(insts.OpcodeBNE, 8, 0, branchOffset(3, 1)),
			insts.Nop,
			syscall,
		),
		ExpectedExit: 10,
	}
}

// 6. Multiply Divide - HI/LO unit latency
func multiplyDivide() Benchmark {
	return Benchmark{
		Name:        "multiply_divide",
		Description: "MULT then DIVU - measures multi-cycle HI/LO operations",
		Program: BuildProgram(
			addiu(8, 0, 7),
			addiu(9, 0, 6),
			insts.EncodeR(insts.FunctMULT, 8, 9, 0, 0),
			insts.EncodeR(insts.FunctMFLO, 0, 0, 10, 0),
			addiu(11, 0, 5),
			insts.EncodeR(insts.FunctDIVU, 10, 11, 0, 0),
			insts.EncodeR(insts.FunctMFLO, 0, 0, 4, 0),
			syscall,
		),
		ExpectedExit: 8,
	}
}

// 7. Memcpy - word copy loop between two RDRAM regions
func memcpy() Benchmark {
	return Benchmark{
		Name:        "memcpy",
		Description: "64-word copy loop - measures load/store throughput and D-cache misses",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			src := emu.DirectMapper{}.Read32(sourceBase)
			for i := uint32(0); i < copyWords; i++ {
				memory.Write32(src+4*i, i+1)
			}
		},
		Program: BuildProgram(
			insts.EncodeI(insts.OpcodeLUI, 0, 8, uint16(sourceBase>>16)),
			addiu(9, 8, destOffset),
			addiu(10, 0, copyWords),
			insts.EncodeI(insts.OpcodeLW, 8, 11, 0),
			addiu(8, 8, 4),
			insts.EncodeI(insts.OpcodeSW, 9, 11, 0),
			addiu(10, 10, -1),
			insts.EncodeI(insts.OpcodeBNE, 10, 0, branchOffset(7, 3)),
			addiu(9, 9, 4),
			insts.EncodeI(insts.OpcodeLW, 9, 4, 0xFFFC),
			syscall,
		),
		ExpectedExit: copyWords,
	}
}

// 8. Self Modifying - a store patches an instruction the loop has already run
func selfModifying() Benchmark {
	const patched = 1

	return Benchmark{
		Name:        "self_modifying",
		Description: "Store over a decoded instruction - measures decode cache invalidation",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg32(5, uint32(addiu(4, 4, 100)))
			regFile.WriteReg32(6, ProgramBase+4*patched)
		},
		Program: BuildProgram(
			addiu(7, 0, 2),
			addiu(4, 4, 1),
			insts.EncodeI(insts.OpcodeSW, 6, 5, 0),
			addiu(7, 7, -1),
			insts.EncodeI(insts.OpcodeBNE, 7, 0, branchOffset(4, patched)),
			insts.Nop,
			syscall,
		),
		ExpectedExit: 101,
	}
}

// 9. Spin Wait - a self-branch waiting for the Compare interrupt
func spinWait() Benchmark {
	return Benchmark{
		Name:        "spin_wait",
		Description: "Idle self-branch with Compare armed - measures idle loop skipping",
		Program: BuildProgram(
			insts.EncodeI(insts.OpcodeLUI, 0, 8, 0x3400),
			insts.EncodeI(insts.OpcodeORI, 8, 8, 0x8001),
			insts.Word(0x40886000), // mtc0 $8, Status
			addiu(9, 0, 5000),
			insts.Word(0x40895800), // mtc0 $9, Compare
			insts.EncodeI(insts.OpcodeBEQ, 0, 0, 0xFFFF),
			insts.Nop,
		),
		MaxInstructions: 1000,
	}
}
