// Package emu provides functional VR4300 emulation.
package emu

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/m64sim/insts"
)

// IdleSkipSlack is added to the pending cycles when the timer is brought up
// to date before a skip.
const IdleSkipSlack = 2

// probeIdle runs the idle optimizer for a branch that lands on itself.
// rs and rt are the registers feeding the branch condition.
func (e *Emulator) probeIdle(target uint32, rs, rt uint8) bool {
	if target != e.regFile.PC {
		return false
	}
	return e.idle(rs, rt)
}

// idle checks that the instruction after the current one cannot change the
// outcome of the branch and, if the coprocessor agrees the machine is only
// waiting, fast-forwards to the next timer event.
func (e *Emulator) idle(rs, rt uint8) bool {
	if !e.idleSafe(rs, rt) {
		return false
	}

	if e.cop0.Read32(Cop0RegPermanentLoop) != 0 {
		pc := e.regFile.PC
		e.logger.WithField("pc", fmt.Sprintf("0x%08X", pc)).Error("permanent idle loop")
		e.fail(fmt.Errorf("%w at pc 0x%08X", ErrPermanentLoop, pc))
		return true
	}

	if e.cop0.Read32(Cop0RegSafeIdle) == 0 {
		return true
	}

	e.timer.Clock(e.cyclesSinceSync + IdleSkipSlack)
	e.cyclesSinceSync = 0

	next := int32(e.timer.Read32(TimerRegNextEvent))
	if next > 0 {
		e.cop0.Write32(Cop0RegAdvance, uint32(next))
		e.timer.Write32(TimerRegNextEvent, 0)
		e.skippedCycles += uint64(next)
		e.elapsedTicks += uint64(next)
		e.logger.WithFields(logrus.Fields{
			"pc":     fmt.Sprintf("0x%08X", e.regFile.PC),
			"cycles": next,
		}).Debug("idle skip")
	}
	return true
}

// idleSafe classifies the delay slot at pc+4. It is fetched through the
// decode cache like any other instruction.
func (e *Emulator) idleSafe(rs, rt uint8) bool {
	phys := e.mmu.Read32(e.regFile.PC + 4)
	word, _ := e.icache.Fetch(phys)
	inst := e.decoder.Decode(word)

	switch inst.Class {
	case insts.ClassMulDiv:
		return true
	case insts.ClassALU, insts.ClassALUImm, insts.ClassLoad, insts.ClassCop0Read:
		dest, ok := inst.Dest()
		if !ok || dest == 0 {
			return true
		}
		return dest != rs && dest != rt
	default:
		return false
	}
}
