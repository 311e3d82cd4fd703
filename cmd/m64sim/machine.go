package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/m64sim/cop"
	"github.com/sarchlab/m64sim/emu"
	"github.com/sarchlab/m64sim/loader"
	"github.com/sarchlab/m64sim/timing/cache"
	"github.com/sarchlab/m64sim/timing/core"
	"github.com/sarchlab/m64sim/timing/latency"
	"github.com/sarchlab/m64sim/timing/timer"
)

// options are the machine settings collected from the command line.
type options struct {
	config          *emu.Config
	timing          *latency.TimingConfig
	maxInstructions uint64
	trace           bool
	clock           sim.Freq
}

// machine is an interpreter wired to the reference coprocessors and
// timer, plus an optional cycle model.
type machine struct {
	emu   *emu.Emulator
	cop0  *cop.Cop0
	cop1  *cop.Cop1
	timer *timer.Timer
	model *core.Model
	clock sim.Freq

	logger   logrus.FieldLogger
	exited   bool
	exitCode int32
}

func newMachine(prog *loader.Program, opts options, logger logrus.FieldLogger) (*machine, error) {
	m := &machine{
		timer:  timer.New(),
		clock:  opts.clock,
		logger: logger,
	}

	m.cop0 = cop.NewCop0(
		cop.WithTimer(m.timer),
		cop.WithLogger(logger),
		cop.WithExceptionHandler(m.exception),
	)
	m.cop1 = cop.NewCop1(logger)

	emuOpts := []emu.EmulatorOption{
		emu.WithConfig(opts.config),
		emu.WithCop0(m.cop0),
		emu.WithCop1(m.cop1),
		emu.WithTimer(m.timer),
		emu.WithLogger(logger),
		emu.WithTrace(opts.trace),
		emu.WithMaxInstructions(opts.maxInstructions),
	}
	if opts.timing != nil {
		m.model = core.NewModel(
			latency.NewTableWithConfig(opts.timing),
			cache.DefaultICacheConfig(),
			cache.DefaultDCacheConfig(),
		)
		emuOpts = append(emuOpts, emu.WithCycleModel(m.model))
	}

	m.emu = emu.NewEmulator(emuOpts...)
	m.cop0.Attach(m.emu)

	if err := prog.Install(m.emu); err != nil {
		return nil, fmt.Errorf("failed to install program: %w", err)
	}

	return m, nil
}

// exception ends the run on SYSCALL and BREAK with $a0 as the exit code.
// Every other exception is vectored normally.
func (m *machine) exception(code uint32) bool {
	if code != emu.ExcSyscall && code != emu.ExcBreakpoint {
		return false
	}

	m.exited = true
	m.exitCode = int32(m.emu.RegFile().ReadReg(4))
	m.emu.Stop()
	m.logger.WithFields(logrus.Fields{
		"code":     code,
		"exitCode": m.exitCode,
	}).Debug("program exited")

	return true
}

// run executes the program until it exits. Reaching the instruction limit
// is reported but not treated as a failure.
func (m *machine) run() error {
	err := m.emu.Run()
	if errors.Is(err, emu.ErrMaxInstructions) {
		m.logger.WithField("instructions", m.emu.InstructionCount()).
			Warn("instruction limit reached")
		return nil
	}

	return err
}

// report summarizes a finished run.
type report struct {
	Program       string
	Exited        bool
	ExitCode      int32
	Instructions  uint64
	Ticks         uint64
	SkippedCycles uint64
	Exceptions    uint64
	DecodeHits    uint64
	DecodeMisses  uint64
	Seconds       float64
	Timing        *core.Stats
}

// CPI returns the ticks charged per instruction.
func (r report) CPI() float64 {
	if r.Instructions == 0 {
		return 0
	}
	return float64(r.Ticks) / float64(r.Instructions)
}

func (m *machine) report(program string) report {
	ticks := m.emu.Read64(emu.RegTicks)

	r := report{
		Program:       program,
		Exited:        m.exited,
		ExitCode:      m.exitCode,
		Instructions:  m.emu.InstructionCount(),
		Ticks:         ticks,
		SkippedCycles: m.emu.SkippedCycles(),
		Exceptions:    m.cop0.Exceptions(),
		DecodeHits:    m.emu.DecodeCache().Hits(),
		DecodeMisses:  m.emu.DecodeCache().Misses(),
	}
	if m.clock > 0 {
		r.Seconds = float64(ticks) / float64(m.clock)
	}
	if m.model != nil {
		stats := m.model.Stats()
		r.Timing = &stats
	}

	return r
}

func (r report) render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(r.Program)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	exit := "-"
	if r.Exited {
		exit = fmt.Sprintf("%d", r.ExitCode)
	}

	t.AppendRows([]table.Row{
		{"Exit code", exit},
		{"Instructions", r.Instructions},
		{"Ticks", r.Ticks},
		{"CPI", fmt.Sprintf("%.2f", r.CPI())},
		{"Skipped cycles", r.SkippedCycles},
		{"Exceptions", r.Exceptions},
		{"Decode cache hits", r.DecodeHits},
		{"Decode cache misses", r.DecodeMisses},
		{"Emulated time (s)", fmt.Sprintf("%.6f", r.Seconds)},
	})

	if r.Timing != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Fetch stalls", r.Timing.FetchStalls},
			{"Data stalls", r.Timing.DataStalls},
			{"Execute stalls", r.Timing.ExecStalls},
		})
	}

	t.Render()
}
