package io

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/id16/internal"
)

const (
	// CONSOLE_DEFAULT_CHUNK is the default character capacity of a console chunk.
	CONSOLE_DEFAULT_CHUNK = 8192
)

// Console buffers characters written by the CPU, and writes them to Output
// when the FLUSH word is written.
//
// Buffered characters are kept in a list of fixed capacity chunks, which are
// reused after a flush.
type Console struct {
	Output    io.Writer          // Destination of flushed characters.
	ChunkSize int                // Characters per chunk, CONSOLE_DEFAULT_CHUNK if 0.
	Log       logrus.FieldLogger // Diagnostics sink, may be nil.

	mutex  sync.Mutex
	chunks [][]rune
	index  int
}

var _ Output = (*Console)(nil)

// Accept a character, or flush on FLUSH.
func (con *Console) Accept(value int16) {
	if value == FLUSH {
		err := con.Flush()
		if err != nil {
			internal.LoggerOr(con.Log).WithError(err).Error("console flush")
		}
		return
	}

	con.mutex.Lock()
	defer con.mutex.Unlock()

	size := con.ChunkSize
	if size <= 0 {
		size = CONSOLE_DEFAULT_CHUNK
	}

	if len(con.chunks) == 0 {
		con.chunks = append(con.chunks, make([]rune, 0, size))
	}

	if len(con.chunks[con.index]) >= size {
		con.index++
		if con.index == len(con.chunks) {
			con.chunks = append(con.chunks, make([]rune, 0, size))
		}
	}

	con.chunks[con.index] = append(con.chunks[con.index], rune(uint16(value)))
}

// Buffered returns the characters waiting for a flush.
func (con *Console) Buffered() string {
	con.mutex.Lock()
	defer con.mutex.Unlock()

	var text []rune
	for _, chunk := range con.chunks {
		text = append(text, chunk...)
	}
	return string(text)
}

// Flush writes every buffered character to Output, in the order written,
// and empties the buffer.
func (con *Console) Flush() (err error) {
	con.mutex.Lock()
	defer con.mutex.Unlock()

	for n, chunk := range con.chunks {
		if len(chunk) != 0 && con.Output != nil && err == nil {
			_, err = io.WriteString(con.Output, string(chunk))
		}
		con.chunks[n] = chunk[:0]
	}
	con.index = 0

	return
}
