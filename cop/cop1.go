package cop

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/m64sim/emu"
)

// FCR indices relative to emu.Cop1RegControl.
const (
	FCRRevision uint32 = 0
	FCRStatus   uint32 = 31
)

// Cop1 is a floating-point register file. Registers are 64 bits wide;
// 32-bit transfers use the low word. Arithmetic is not modeled.
type Cop1 struct {
	fpr    [32]uint64
	fcr31  uint32
	logger logrus.FieldLogger

	executed uint64
}

// NewCop1 creates an empty COP1.
func NewCop1(logger logrus.FieldLogger) *Cop1 {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Cop1{logger: logger}
}

// Executed returns the number of arithmetic words received.
func (c *Cop1) Executed() uint64 {
	return c.executed
}

// Read32 reads an FPR low word or a control register.
func (c *Cop1) Read32(index uint32) uint32 {
	switch {
	case index < 32:
		return uint32(c.fpr[index])
	case index == emu.Cop1RegControl+FCRRevision:
		return 0x00000A00
	case index == emu.Cop1RegControl+FCRStatus:
		return c.fcr31
	default:
		return 0
	}
}

// Write32 writes an FPR low word or a control register. Writes to the
// execute index count the operation.
func (c *Cop1) Write32(index uint32, value uint32) {
	switch {
	case index < 32:
		c.fpr[index] = c.fpr[index]&^0xFFFFFFFF | uint64(value)
	case index == emu.Cop1RegControl+FCRStatus:
		c.fcr31 = value
	case index == emu.Cop1RegExecute:
		c.executed++
		c.logger.WithField("word", fmt.Sprintf("0x%08X", value)).Trace("FPU operation")
	}
}

// Read64 reads a whole FPR.
func (c *Cop1) Read64(index uint32) uint64 {
	if index < 32 {
		return c.fpr[index]
	}
	return uint64(c.Read32(index))
}

// Write64 writes a whole FPR.
func (c *Cop1) Write64(index uint32, value uint64) {
	if index < 32 {
		c.fpr[index] = value
		return
	}
	c.Write32(index, uint32(value))
}
