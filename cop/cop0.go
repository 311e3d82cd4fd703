// Package cop provides reference coprocessors for the interpreter: a COP0
// with Count/Compare, exception entry and ERET, and a COP1 register file.
// They implement the collaborator register contract, not the full
// VR4300 system control unit.
package cop

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/m64sim/emu"
	"github.com/sarchlab/m64sim/timing/timer"
)

// Status and Cause bits.
const (
	StatusIE  uint32 = 1 << 0
	StatusEXL uint32 = 1 << 1
	StatusERL uint32 = 1 << 2
	StatusIM  uint32 = 0xFF00

	CauseIP      uint32 = 0xFF00
	CauseIP7     uint32 = 1 << 15
	CauseExcCode uint32 = 0x7C
)

// Architectural registers not named by the interpreter.
const (
	RegRandom   uint32 = 1
	RegPRId     uint32 = 15
	RegErrorEPC uint32 = 30
)

// Function fields of COP0 CO operations.
const (
	CmdTLBR  uint32 = 0x01
	CmdTLBWI uint32 = 0x02
	CmdTLBWR uint32 = 0x06
	CmdTLBP  uint32 = 0x08
	CmdERET  uint32 = 0x18
)

// ExceptionVector is the general exception entry point.
const ExceptionVector uint32 = 0x80000180

const compareEvent = "cop0.compare"

// ExceptionHandler may claim an exception before it is vectored. It returns
// true when the exception was handled.
type ExceptionHandler func(code uint32) bool

// Cop0 is the reference system control coprocessor.
type Cop0 struct {
	regs      [32]uint32
	halfCycle uint64

	cpu     emu.Device
	timer   *timer.Timer
	logger  logrus.FieldLogger
	handler ExceptionHandler

	multiplier uint32
	exceptions uint64
	skipped    uint64
}

// Option configures a Cop0.
type Option func(*Cop0)

// WithTimer drives Count from the timer and schedules the Compare
// interrupt on it.
func WithTimer(t *timer.Timer) Option {
	return func(c *Cop0) {
		c.timer = t
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Cop0) {
		c.logger = logger
	}
}

// WithExceptionHandler installs a handler that sees every exception first.
func WithExceptionHandler(h ExceptionHandler) Option {
	return func(c *Cop0) {
		c.handler = h
	}
}

// NewCop0 creates a Cop0 in its power-on state.
func NewCop0(opts ...Option) *Cop0 {
	c := &Cop0{
		logger:     logrus.StandardLogger(),
		multiplier: 1,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Reset()
	if c.timer != nil {
		c.timer.OnClock(c.tick)
		c.timer.Hold(func() bool { return c.pending() != 0 })
	}

	return c
}

// Attach connects the CPU whose PC and pending-jump registers the
// coprocessor drives on exception entry and ERET.
func (c *Cop0) Attach(cpu emu.Device) {
	c.cpu = cpu
}

// Reset restores the power-on register values.
func (c *Cop0) Reset() {
	c.regs = [32]uint32{}
	c.regs[RegRandom] = 31
	c.regs[emu.Cop0RegStatus] = 0x34000000
	c.regs[RegPRId] = 0x00000B22
	c.halfCycle = 0
	c.exceptions = 0
	c.skipped = 0
	c.scheduleCompare()
}

// Exceptions returns the number of exceptions raised.
func (c *Cop0) Exceptions() uint64 {
	return c.exceptions
}

// SkippedCycles returns the cycles added through idle skips.
func (c *Cop0) SkippedCycles() uint64 {
	return c.skipped
}

// Multiplier returns the CPU cycle multiplier last reported by the CPU.
func (c *Cop0) Multiplier() uint32 {
	return c.multiplier
}

// SetInterrupt raises or clears an external interrupt line (IP2 to IP6).
func (c *Cop0) SetInterrupt(line uint, on bool) {
	bit := uint32(1) << (8 + 2 + line)
	if on {
		c.regs[emu.Cop0RegCause] |= bit
	} else {
		c.regs[emu.Cop0RegCause] &^= bit
	}
}

// Read32 reads a COP0 register.
func (c *Cop0) Read32(index uint32) uint32 {
	switch {
	case index < 32:
		return c.regs[index]
	case index == emu.Cop0RegPermanentLoop:
		return boolToReg(!c.interruptible())
	case index == emu.Cop0RegSafeIdle:
		return boolToReg(c.interruptible() && c.pending() == 0)
	case index == emu.Cop0RegMultiplier:
		return c.multiplier
	default:
		return 0
	}
}

// Write32 writes a COP0 register.
func (c *Cop0) Write32(index uint32, value uint32) {
	switch {
	case index == emu.Cop0RegCount:
		c.regs[index] = value
		c.scheduleCompare()
	case index == emu.Cop0RegCompare:
		c.regs[index] = value
		c.regs[emu.Cop0RegCause] &^= CauseIP7
		c.scheduleCompare()
	case index == emu.Cop0RegCause:
		c.regs[index] = c.regs[index]&^0x300 | value&0x300
	case index == RegRandom || index == RegPRId:
	case index < 32:
		c.regs[index] = value
	case index == emu.Cop0RegException:
		c.raise(value)
	case index == emu.Cop0RegAdvance:
		if c.pending() != 0 {
			c.logger.WithField("cycles", value).Debug("idle skip ignored with an interrupt pending")
			return
		}
		c.tick(value)
		c.skipped += uint64(value)
	case index == emu.Cop0RegMultiplier:
		c.multiplier = value
	case index == emu.Cop0RegCommand:
		c.command(value)
	default:
		c.logger.WithField("index", index).Debug("write to unknown COP0 register")
	}
}

// Read64 reads a COP0 register sign-extended to 64 bits.
func (c *Cop0) Read64(index uint32) uint64 {
	return uint64(int64(int32(c.Read32(index))))
}

// Write64 writes the low word of a COP0 register.
func (c *Cop0) Write64(index uint32, value uint64) {
	c.Write32(index, uint32(value))
}

// tick advances Count, which runs at half the CPU clock.
func (c *Cop0) tick(cycles uint32) {
	total := c.halfCycle + uint64(cycles)
	c.regs[emu.Cop0RegCount] += uint32(total / 2)
	c.halfCycle = total % 2
}

func (c *Cop0) scheduleCompare() {
	if c.timer == nil {
		return
	}

	d := uint64(c.regs[emu.Cop0RegCompare] - c.regs[emu.Cop0RegCount])
	if d == 0 {
		d = 1 << 32
	}
	c.timer.Schedule(compareEvent, 2*d-c.halfCycle, c.compareHit)
}

func (c *Cop0) compareHit(uint64) {
	c.regs[emu.Cop0RegCause] |= CauseIP7
	c.scheduleCompare()
}

func (c *Cop0) interruptible() bool {
	s := c.regs[emu.Cop0RegStatus]
	return s&StatusIE != 0 && s&(StatusEXL|StatusERL) == 0 && s&StatusIM != 0
}

func (c *Cop0) pending() uint32 {
	return c.regs[emu.Cop0RegCause] & c.regs[emu.Cop0RegStatus] & CauseIP
}

func (c *Cop0) raise(code uint32) {
	c.exceptions++
	c.regs[emu.Cop0RegCause] = c.regs[emu.Cop0RegCause]&^CauseExcCode | code<<2&CauseExcCode

	if c.handler != nil && c.handler(code) {
		return
	}
	if c.cpu == nil {
		c.logger.WithField("code", code).Warn("exception with no CPU attached")
		return
	}

	if c.regs[emu.Cop0RegStatus]&StatusEXL == 0 {
		c.regs[emu.Cop0RegEPC] = c.cpu.Read32(emu.RegPC)
	}
	c.regs[emu.Cop0RegStatus] |= StatusEXL
	c.cpu.Write32(emu.RegPC, ExceptionVector)
}

func (c *Cop0) command(funct uint32) {
	switch funct {
	case CmdERET:
		c.eret()
	case CmdTLBR, CmdTLBWI, CmdTLBWR, CmdTLBP:
		c.logger.WithField("funct", fmt.Sprintf("0x%02X", funct)).Debug("TLB operation ignored")
	default:
		c.logger.WithField("funct", fmt.Sprintf("0x%02X", funct)).Debug("unknown COP0 operation")
	}
}

func (c *Cop0) eret() {
	status := c.regs[emu.Cop0RegStatus]

	var target uint32
	if status&StatusERL != 0 {
		target = c.regs[RegErrorEPC]
		c.regs[emu.Cop0RegStatus] = status &^ StatusERL
	} else {
		target = c.regs[emu.Cop0RegEPC]
		c.regs[emu.Cop0RegStatus] = status &^ StatusEXL
	}

	if c.cpu == nil {
		return
	}
	c.cpu.Write32(emu.RegLLBit, 0)
	c.cpu.Write32(emu.RegJump, target)
}

func boolToReg(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
