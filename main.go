// Package main provides the entry point for M64Sim.
// M64Sim is a VR4300 MIPS interpreter with an optional cycle model.
//
// For the full CLI, use: go run ./cmd/m64sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("M64Sim - VR4300 MIPS Interpreter")
	fmt.Println("")
	fmt.Println("Usage: m64sim [options] <program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --config           Path to interpreter configuration JSON file")
	fmt.Println("  --timing           Charge cache and execution stalls")
	fmt.Println("  --timing-config    Path to timing configuration JSON file")
	fmt.Println("  --max-instructions Stop after this many instructions")
	fmt.Println("  --no-icache        Disable the decode cache")
	fmt.Println("  --clock            CPU clock in MHz")
	fmt.Println("  -v, --verbose      Verbose output")
	fmt.Println("  --trace            Log every executed instruction")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/m64sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/m64sim' instead.")
	}
}
