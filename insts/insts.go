// Package insts provides VR4300 (MIPS III) instruction definitions and decoding.
//
// This package implements decoding of big-endian MIPS machine words into
// structured instruction representations. It covers:
//   - the integer ISA: ALU, shifts, multiply/divide, loads and stores
//     including the unaligned left/right forms
//   - branches and jumps, including the branch-likely and linking forms
//   - COP0 moves and TLB/ERET operations, COP1 transfers and branches
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x24420001) // ADDIU $2, $2, 1
//	fmt.Printf("Op: %v, Rt: %d, Rs: %d, Imm: %d\n", inst.Op, inst.Rt, inst.Rs, inst.Imm)
package insts
