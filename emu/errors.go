// Package emu provides functional VR4300 emulation.
package emu

import "errors"

// Fatal conditions. Run stops and returns an error wrapping one of these.
var (
	// ErrUnknownInstruction is returned when a word resolves to no handler.
	ErrUnknownInstruction = errors.New("unknown instruction")

	// ErrPermanentLoop is returned when the program spins in an idle loop
	// that no hardware event can ever end.
	ErrPermanentLoop = errors.New("permanent idle loop")

	// ErrMaxInstructions is returned when the instruction limit is reached.
	ErrMaxInstructions = errors.New("max instructions reached")
)
