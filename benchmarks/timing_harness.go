// Package benchmarks provides the kernel harness used to compare interpreter
// configurations on M64Sim.
package benchmarks

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/m64sim/cop"
	"github.com/sarchlab/m64sim/emu"
	"github.com/sarchlab/m64sim/insts"
	"github.com/sarchlab/m64sim/timing/core"
	"github.com/sarchlab/m64sim/timing/timer"
)

// ProgramBase is the virtual address every benchmark is loaded at.
const ProgramBase uint32 = 0x80001000

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Ticks is the number of CPU cycles charged, skipped cycles included
	Ticks uint64 `json:"ticks"`

	// Instructions is the number of executed instructions
	Instructions uint64 `json:"instructions"`

	// CPI is ticks per instruction
	CPI float64 `json:"cpi"`

	// SkippedCycles is the time fast-forwarded by the idle loop optimizer
	SkippedCycles uint64 `json:"skipped_cycles"`

	// Stall breakdown (timing runs only)
	FetchStalls uint64 `json:"fetch_stalls,omitempty"`
	DataStalls  uint64 `json:"data_stalls,omitempty"`
	ExecStalls  uint64 `json:"exec_stalls,omitempty"`

	// Decode cache traffic
	DecodeHits   uint64 `json:"decode_hits"`
	DecodeMisses uint64 `json:"decode_misses"`

	// ICacheHits/Misses (timing runs only)
	ICacheHits   uint64 `json:"icache_hits,omitempty"`
	ICacheMisses uint64 `json:"icache_misses,omitempty"`

	// DCacheHits/Misses (timing runs only)
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	// Exited is set when the program ended with SYSCALL or BREAK
	Exited bool `json:"exited"`

	// ExitCode is $a0 at exit
	ExitCode int64 `json:"exit_code"`

	// ExpectedExit is the benchmark's expected exit code
	ExpectedExit int64 `json:"expected_exit"`

	// Err is the fatal condition that stopped the run, if any
	Err error `json:"-"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the emulator state (e.g., initialize registers, memory)
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the big-endian MIPS machine code to execute
	Program []byte

	// ExpectedExit is the expected exit code (for validation)
	ExpectedExit int64

	// MaxInstructions bounds programs that never exit. 0 means no limit.
	MaxInstructions uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableDecodeCache enables the interpreter's decode cache
	EnableDecodeCache bool

	// EnableTiming charges cache and execution stalls from the cycle model
	EnableTiming bool

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableDecodeCache: true,
		EnableTiming:      true,
		Output:            os.Stdout,
		Verbose:           false,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
	logger     *logrus.Logger
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	logger := logrus.New()
	logger.SetOutput(config.Output)
	logger.SetLevel(logrus.WarnLevel)
	if config.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
		logger:     logger,
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:         bench.Name,
		Description:  bench.Description,
		ExpectedExit: bench.ExpectedExit,
	}

	config := emu.DefaultConfig()
	config.InstructionCache = h.config.EnableDecodeCache
	config.MaxInstructions = bench.MaxInstructions

	var e *emu.Emulator
	t := timer.New()
	cop0 := cop.NewCop0(
		cop.WithTimer(t),
		cop.WithLogger(h.logger),
		cop.WithExceptionHandler(func(code uint32) bool {
			if code != emu.ExcSyscall && code != emu.ExcBreakpoint {
				return false
			}
			result.Exited = true
			result.ExitCode = int64(int32(e.RegFile().ReadReg(4)))
			e.Stop()
			return true
		}),
	)

	opts := []emu.EmulatorOption{
		emu.WithConfig(config),
		emu.WithCop0(cop0),
		emu.WithCop1(cop.NewCop1(h.logger)),
		emu.WithTimer(t),
		emu.WithLogger(h.logger),
	}

	var model *core.Model
	if h.config.EnableTiming {
		model = core.NewDefaultModel()
		opts = append(opts, emu.WithCycleModel(model))
	}

	e = emu.NewEmulator(opts...)
	cop0.Attach(e)

	phys := emu.DirectMapper{}.Read32(ProgramBase)
	e.LoadProgram(ProgramBase, phys, bench.Program)
	e.RegFile().WriteReg32(29, 0x803FFFF0)

	if bench.Setup != nil {
		bench.Setup(e.RegFile(), e.Memory())
	}

	// Run simulation and measure time
	start := time.Now()
	err := e.Run()
	result.WallTime = time.Since(start)

	if err != nil && !errors.Is(err, emu.ErrMaxInstructions) {
		result.Err = err
	}

	// Collect statistics
	result.Ticks = e.Read64(emu.RegTicks)
	result.Instructions = e.InstructionCount()
	if result.Instructions > 0 {
		result.CPI = float64(result.Ticks) / float64(result.Instructions)
	}
	result.SkippedCycles = e.SkippedCycles()
	result.DecodeHits = e.DecodeCache().Hits()
	result.DecodeMisses = e.DecodeCache().Misses()

	if model != nil {
		stats := model.Stats()
		result.FetchStalls = stats.FetchStalls
		result.DataStalls = stats.DataStalls
		result.ExecStalls = stats.ExecStalls

		icStats := model.ICache().Stats()
		result.ICacheHits = icStats.Hits
		result.ICacheMisses = icStats.Misses
		dcStats := model.DCache().Stats()
		result.DCacheHits = dcStats.Hits
		result.DCacheMisses = dcStats.Misses
	}

	return result
}

// PrintResults outputs benchmark results as a table.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	t := table.NewWriter()
	t.SetOutputMirror(h.config.Output)
	t.SetTitle("M64Sim Benchmark Results")
	t.AppendHeader(table.Row{
		"Benchmark", "Exit", "Insts", "Ticks", "CPI", "Skipped",
		"Fetch", "Data", "Exec", "Decode Hits", "Decode Misses", "Wall Time",
	})

	for _, r := range results {
		exit := "-"
		switch {
		case r.Err != nil:
			exit = "error"
		case r.Exited:
			exit = fmt.Sprintf("%d", r.ExitCode)
		}

		t.AppendRow(table.Row{
			r.Name, exit, r.Instructions, r.Ticks, fmt.Sprintf("%.3f", r.CPI), r.SkippedCycles,
			r.FetchStalls, r.DataStalls, r.ExecStalls, r.DecodeHits, r.DecodeMisses, r.WallTime,
		})
	}

	t.Render()
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,ticks,instructions,cpi,skipped,fetch_stalls,data_stalls,exec_stalls,decode_hits,decode_misses,icache_hits,icache_misses,dcache_hits,dcache_misses,exit_code")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Ticks,
			r.Instructions,
			r.CPI,
			r.SkippedCycles,
			r.FetchStalls,
			r.DataStalls,
			r.ExecStalls,
			r.DecodeHits,
			r.DecodeMisses,
			r.ICacheHits,
			r.ICacheMisses,
			r.DCacheHits,
			r.DCacheMisses,
			r.ExitCode,
		)
	}
}

// BuildProgram assembles instruction words into a big-endian byte slice.
func BuildProgram(words ...insts.Word) []byte {
	program := make([]byte, 0, len(words)*4)
	for _, w := range words {
		program = binary.BigEndian.AppendUint32(program, uint32(w))
	}
	return program
}
