package io

import (
	"bufio"
	"context"
	"errors"
	"io"
)

const (
	// KEYBOARD_DEFAULT_CAPACITY is the default depth of the keyboard queue.
	KEYBOARD_DEFAULT_CAPACITY = 4096
)

// Keyboard is a first-in first-out queue of input characters, filled by a
// single producer and polled without blocking by the CPU.
type Keyboard struct {
	queue chan int16
}

var _ Input = (*Keyboard)(nil)

// NewKeyboard creates a keyboard queue holding up to capacity characters.
func NewKeyboard(capacity int) *Keyboard {
	if capacity <= 0 {
		capacity = KEYBOARD_DEFAULT_CAPACITY
	}
	return &Keyboard{
		queue: make(chan int16, capacity),
	}
}

// Poll returns the oldest queued character, or 0 if the queue is empty.
func (kb *Keyboard) Poll() (value int16) {
	select {
	case value = <-kb.queue:
	default:
	}
	return
}

// Push queues a character. Returns false if the queue is full, and the
// character was dropped.
func (kb *Keyboard) Push(value int16) bool {
	select {
	case kb.queue <- value:
		return true
	default:
		return false
	}
}

// Len is the number of queued characters.
func (kb *Keyboard) Len() int {
	return len(kb.queue)
}

// Feed queues every byte read from input, one character per byte, until
// input ends or ctx is done. A full queue applies back pressure to the
// reader. The end of input is not an error.
func (kb *Keyboard) Feed(ctx context.Context, input io.Reader) (err error) {
	reader := bufio.NewReader(input)
	for {
		var b byte
		b, err = reader.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, ErrInterrupted) {
			return
		}
		if err != nil {
			return errors.Join(ErrInputFailed, err)
		}

		select {
		case kb.queue <- int16(b):
		case <-ctx.Done():
			return nil
		}
	}
}
