package io

import (
	"bytes"
	"errors"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func accept(con *Console, text string) {
	for _, r := range text {
		con.Accept(int16(r))
	}
}

func TestConsole_Flush(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	con := &Console{Output: out}

	accept(con, "Hello")
	assert.Equal("", out.String())
	assert.Equal("Hello", con.Buffered())

	con.Accept(FLUSH)
	assert.Equal("Hello", out.String())
	assert.Equal("", con.Buffered())

	accept(con, ", world\n")
	con.Accept(FLUSH)
	assert.Equal("Hello, world\n", out.String())

	// Flushing nothing writes nothing.
	con.Accept(FLUSH)
	assert.Equal("Hello, world\n", out.String())
}

func TestConsole_Chunks(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	con := &Console{Output: out, ChunkSize: 4}

	accept(con, "abcdefghij")
	assert.Len(con.chunks, 3)
	assert.Equal(2, con.index)

	con.Accept(FLUSH)
	assert.Equal("abcdefghij", out.String())
	assert.Len(con.chunks, 3)
	assert.Equal(0, con.index)

	// Chunks are reused, and order is kept.
	accept(con, "0123456")
	assert.Len(con.chunks, 3)
	con.Accept(FLUSH)
	assert.Equal("abcdefghij0123456", out.String())
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken")
}

func TestConsole_FlushError(t *testing.T) {
	assert := assert.New(t)

	log, hook := logtest.NewNullLogger()
	con := &Console{Output: brokenWriter{}, Log: log}

	accept(con, "lost")
	con.Accept(FLUSH)

	assert.Len(hook.AllEntries(), 1)
	assert.Equal("", con.Buffered())
}
