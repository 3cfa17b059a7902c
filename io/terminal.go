package io

import (
	"bytes"
	"os"

	"golang.org/x/term"
)

const (
	keyCtrlC     = 0x03
	keyBackspace = 0x08
	keyDelete    = 0x7f
)

// Terminal adapts a console TTY for the keyboard and console devices.
//
// When the input is a terminal it is switched to raw mode, so that the
// machine receives every keystroke as it is typed. In raw mode Enter is
// delivered as a line feed, Delete as a backspace, line feeds written are
// expanded to CR LF, and Ctrl-C ends input with ErrInterrupted.
type Terminal struct {
	In  *os.File
	Out *os.File

	state *term.State
}

// OpenTerminal attaches to in and out, entering raw mode if in is a TTY.
func OpenTerminal(in, out *os.File) (tm *Terminal, err error) {
	tm = &Terminal{
		In:  in,
		Out: out,
	}

	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	tm.state, err = term.MakeRaw(fd)
	if err != nil {
		tm = nil
		return
	}

	return
}

// Raw is true if the terminal is in raw mode.
func (tm *Terminal) Raw() bool {
	return tm.state != nil
}

// Read keystrokes.
func (tm *Terminal) Read(p []byte) (n int, err error) {
	n, err = tm.In.Read(p)
	if !tm.Raw() {
		return
	}

	for i := range n {
		switch p[i] {
		case '\r':
			p[i] = '\n'
		case keyDelete:
			p[i] = keyBackspace
		case keyCtrlC:
			return i, ErrInterrupted
		}
	}

	return
}

// Write console output.
func (tm *Terminal) Write(p []byte) (n int, err error) {
	if !tm.Raw() {
		return tm.Out.Write(p)
	}

	_, err = tm.Out.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n")))
	if err != nil {
		return
	}

	return len(p), nil
}

// Close restores the terminal mode.
func (tm *Terminal) Close() (err error) {
	if tm.state == nil {
		return
	}

	err = term.Restore(int(tm.In.Fd()), tm.state)
	tm.state = nil

	return
}
