// Package emu provides functional VR4300 emulation.
package emu

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/m64sim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Err is set if a fatal condition stopped execution.
	Err error
}

// Emulator interprets VR4300 instructions.
type Emulator struct {
	config  *Config
	regFile *RegFile
	memory  *Memory
	bus     Bus
	decoder *insts.Decoder

	// Collaborators
	mmu   Device
	cop0  Device
	cop1  Device
	timer Timer

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit
	tables     *opTables
	icache     *DecodeCache

	cycleModel CycleModel
	logger     logrus.FieldLogger
	trace      bool

	// Execution state
	lastWord         insts.Word
	stepping         bool
	pendingJump      bool
	pendingTarget    uint32
	fatal            error
	stopRequested    atomic.Bool
	instructionCount uint64
	maxInstructions  uint64

	// Time keeping
	multiplier      uint32
	stall           uint32
	cyclesSinceSync uint32
	elapsedTicks    uint64
	skippedCycles   uint64
	interrupts      uint32
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithConfig sets the interpreter configuration.
func WithConfig(config *Config) EmulatorOption {
	return func(e *Emulator) {
		e.config = config.Clone()
	}
}

// WithBus replaces the built-in memory with a custom physical bus.
func WithBus(bus Bus) EmulatorOption {
	return func(e *Emulator) {
		e.bus = bus
	}
}

// WithMMU sets the address translation collaborator.
func WithMMU(mmu Device) EmulatorOption {
	return func(e *Emulator) {
		e.mmu = mmu
	}
}

// WithCop0 sets the system control coprocessor.
func WithCop0(cop0 Device) EmulatorOption {
	return func(e *Emulator) {
		e.cop0 = cop0
	}
}

// WithCop1 sets the floating-point coprocessor.
func WithCop1(cop1 Device) EmulatorOption {
	return func(e *Emulator) {
		e.cop1 = cop1
	}
}

// WithTimer sets the clocked timer collaborator.
func WithTimer(timer Timer) EmulatorOption {
	return func(e *Emulator) {
		e.timer = timer
	}
}

// WithCycleModel adds stall cycles from a timing model.
func WithCycleModel(model CycleModel) EmulatorOption {
	return func(e *Emulator) {
		e.cycleModel = model
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger logrus.FieldLogger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithTrace logs every executed instruction at trace level.
func WithTrace(trace bool) EmulatorOption {
	return func(e *Emulator) {
		e.trace = trace
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a new VR4300 interpreter.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		config:  DefaultConfig(),
		regFile: &RegFile{},
		decoder: insts.NewDecoder(),
		mmu:     DirectMapper{},
		cop0:    nullDevice{},
		cop1:    nullDevice{},
		timer:   nullDevice{},
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.maxInstructions == 0 {
		e.maxInstructions = e.config.MaxInstructions
	}
	if e.bus == nil {
		e.memory = NewMemoryWithSize(e.config.RDRAMSize)
		e.bus = e.memory
	}

	e.tables = newOpTables()
	e.icache = newDecodeCache(e.bus, e.tables, e.config.RDRAMSize, e.config.InstructionCache)
	e.alu = NewALU(e.regFile)
	e.branchUnit = NewBranchUnit(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.bus, e.mmu, e.cop0, e.cop1, e.icache)
	e.lsu.onData = e.dataAccess

	e.setMultiplier(e.config.CycleMultiplier)

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the built-in memory, or nil when a custom bus is used.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Bus returns the physical bus.
func (e *Emulator) Bus() Bus {
	return e.bus
}

// DecodeCache returns the instruction decode cache.
func (e *Emulator) DecodeCache() *DecodeCache {
	return e.icache
}

// BranchState returns the delay-slot state.
func (e *Emulator) BranchState() BranchState {
	return e.branchUnit.State
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// SkippedCycles returns the cycles fast-forwarded by the idle optimizer.
func (e *Emulator) SkippedCycles() uint64 {
	return e.skippedCycles
}

// Interrupts returns the interrupt status sampled at the last branch landing.
func (e *Emulator) Interrupts() uint32 {
	return e.interrupts
}

// LoadProgram copies a program to physical memory and sets the entry point.
func (e *Emulator) LoadProgram(entry uint32, phys uint32, program []byte) {
	for i, b := range program {
		e.bus.Write8(phys+uint32(i), b)
	}
	e.icache.InvalidateRange(phys, uint32(len(program)))
	e.regFile.PC = entry
}

// Reset returns the CPU to its power-on state. Memory is kept.
func (e *Emulator) Reset() {
	e.regFile.Reset()
	e.branchUnit.Reset()
	e.icache.Reset()

	e.lastWord = 0
	e.pendingJump = false
	e.fatal = nil
	e.stopRequested.Store(false)
	e.instructionCount = 0
	e.stall = 0
	e.cyclesSinceSync = 0
	e.elapsedTicks = 0
	e.skippedCycles = 0
	e.interrupts = 0
}

// Step executes a single instruction and applies the delay-slot transition.
func (e *Emulator) Step() StepResult {
	if e.fatal != nil {
		return StepResult{Err: e.fatal}
	}
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: fmt.Errorf("%w (%d)", ErrMaxInstructions, e.maxInstructions)}
	}

	if e.pendingJump {
		e.pendingJump = false
		e.regFile.PC = e.pendingTarget
		e.branchUnit.Reset()
		e.sync()
	}

	e.stepping = true
	e.execute()
	e.stepping = false

	cycles := e.multiplier + e.stall
	e.stall = 0
	e.instructionCount++
	e.cyclesSinceSync += cycles
	e.elapsedTicks += uint64(cycles)

	if e.fatal != nil {
		return StepResult{Err: e.fatal}
	}

	if e.branchUnit.Advance() {
		e.sync()
	}

	return StepResult{}
}

// execute fetches and runs the instruction at PC.
func (e *Emulator) execute() {
	pc := e.regFile.PC
	if pc&3 != 0 {
		e.cop0.Write32(Cop0RegBadVAddr, pc)
		e.cop0.Write32(Cop0RegException, ExcAddressLoad)
		return
	}

	phys := e.mmu.Read32(pc)
	word, h := e.icache.Fetch(phys)
	e.lastWord = word

	if e.cycleModel != nil || e.trace {
		inst := e.decoder.Decode(word)
		if e.cycleModel != nil {
			e.stall += e.cycleModel.Fetch(phys) + e.cycleModel.Execute(inst)
		}
		if e.trace {
			e.logger.WithFields(logrus.Fields{
				"pc":   fmt.Sprintf("0x%08X", pc),
				"word": fmt.Sprintf("0x%08X", uint32(word)),
			}).Trace(inst.String())
		}
	}

	h(e, word)
}

// Run executes instructions until Stop is called or a fatal condition
// occurs.
func (e *Emulator) Run() error {
	for {
		if e.stopRequested.Swap(false) {
			return nil
		}
		if result := e.Step(); result.Err != nil {
			return result.Err
		}
	}
}

// Stop asks Run to return before the next instruction. It is safe to call
// from another goroutine.
func (e *Emulator) Stop() {
	e.stopRequested.Store(true)
}

// sync hands the pending cycles to the timer and samples the interrupt
// lines.
func (e *Emulator) sync() {
	e.timer.Clock(e.cyclesSinceSync)
	e.cyclesSinceSync = 0
	e.interrupts = e.cop0.Read32(Cop0RegCause) & e.cop0.Read32(Cop0RegStatus)
}

func (e *Emulator) dataAccess(phys uint32, write bool) {
	if e.cycleModel != nil {
		e.stall += e.cycleModel.Data(phys, write)
	}
}

func (e *Emulator) setMultiplier(m uint32) {
	if m == 0 {
		m = 1
	}
	e.multiplier = m
	e.cop0.Write32(Cop0RegMultiplier, m)
}

// fail records a fatal condition. The current step completes and Run
// returns it.
func (e *Emulator) fail(err error) {
	if e.fatal == nil {
		e.fatal = err
	}
}
