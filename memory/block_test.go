package memory

import (
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestBlock(t *testing.T) {
	assert := assert.New(t)

	block := NewBlock("ram", false, 4)
	assert.Equal("ram", block.Name())
	assert.Equal(4, block.Size())
	assert.False(block.ReadOnly())
	assert.Equal([]int16{0, 0, 0, 0}, block.Content())

	block.Write(0, 0x1234)
	block.Write(3, -1)
	assert.Equal(int16(0x1234), block.Read(0))
	assert.Equal(int16(-1), block.Read(3))
}

func TestBlock_OutOfBounds(t *testing.T) {
	assert := assert.New(t)

	log, hook := logtest.NewNullLogger()

	block := NewBlock("ram", false, 4)
	block.Log = log

	for _, address := range []int{-1, 4, 0x10000} {
		block.Write(address, 7)
		assert.Equal(int16(0), block.Read(address), address)
	}

	assert.Equal([]int16{0, 0, 0, 0}, block.Content())
	assert.Len(hook.AllEntries(), 6)
	assert.Equal(logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal("ram", hook.LastEntry().Data["block"])
}

func TestBlock_ReadOnly(t *testing.T) {
	assert := assert.New(t)

	block := NewBlockFrom("rom", true, []int16{1, 2, 3})
	assert.True(block.ReadOnly())
	assert.Equal(3, block.Size())

	for n := range block.Size() {
		block.Write(n, 0x55)
	}

	for n := range block.Size() {
		assert.Equal(int16(n+1), block.Read(n))
	}
}

func TestBlock_NilLogger(t *testing.T) {
	block := NewBlockFrom("empty", false, nil)

	assert.Equal(t, 0, block.Size())
	assert.Equal(t, int16(0), block.Read(0))
}
