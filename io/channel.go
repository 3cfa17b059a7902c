// Package io provides the character I/O devices of the id16 machine.
// The CPU sees them only as two ports: an Input it polls, and an Output it
// writes words to. The Keyboard is a non-blocking input queue filled from
// an io.Reader, the Console buffers output until a flush word arrives, and
// the Terminal adapts a TTY for both.
package io

import (
	"fmt"
	"iter"
	"maps"
)

// FLUSH is the output word that flushes buffered console output.
const FLUSH = int16(-1)

// Input is polled by the CPU for the next input word.
type Input interface {
	// Poll returns the next queued word, or 0 if none is queued.
	// It never blocks.
	Poll() int16
}

// Output accepts words written by the CPU.
type Output interface {
	// Accept a word. It never blocks.
	Accept(value int16)
}

var _io_defines = map[string]string{
	"FLUSH": fmt.Sprintf("%d", FLUSH),
}

// Defines returns the assembler equates for the I/O devices.
func Defines() iter.Seq2[string, string] {
	return maps.All(_io_defines)
}
