package cpu

import (
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

var aluSamples = []int16{0, 1, -1, 2, -2, 3, 7, -7, 100, -100, 0x1234, 0x7fff, -0x8000, 0x7ffe, -0x7fff}

func TestAlu_Wraparound(t *testing.T) {
	assert := assert.New(t)

	alu := &Alu{}

	for _, a := range aluSamples {
		for _, b := range aluSamples {
			out := alu.Compute(OP_ADD, a, b)
			assert.Equal(a+b, out.Primary, "%d + %d", a, b)
			assert.Equal(int16(0), out.Secondary)
			assert.False(out.Compare)

			out = alu.Compute(OP_SUB, a, b)
			assert.Equal(a-b, out.Primary, "%d - %d", a, b)

			out = alu.Compute(OP_MUL, a, b)
			assert.Equal(a*b, out.Primary, "%d * %d", a, b)
		}
	}
}

func TestAlu_DivMod(t *testing.T) {
	assert := assert.New(t)

	alu := &Alu{}

	for _, a := range aluSamples {
		out := alu.Compute(OP_DIV, a, 0)
		assert.Equal(int16(-1), out.Primary)
		assert.Equal(int16(0), out.Secondary)

		out = alu.Compute(OP_MOD, a, 0)
		assert.Equal(int16(0), out.Primary)
		assert.Equal(int16(-1), out.Secondary)

		for _, b := range aluSamples {
			if b == 0 {
				continue
			}
			div := alu.Compute(OP_DIV, a, b)
			q, r := div.Primary, div.Secondary
			assert.Equal(a, q*b+r, "%d / %d", a, b)

			mod := alu.Compute(OP_MOD, a, b)
			assert.Equal(r, mod.Primary, "%d %% %d", a, b)
			assert.Equal(q, mod.Secondary, "%d %% %d", a, b)
		}
	}

	out := alu.Compute(OP_DIV, -7, 2)
	assert.Equal(int16(-3), out.Primary)
	assert.Equal(int16(-1), out.Secondary)
}

func TestAlu_Logic(t *testing.T) {
	assert := assert.New(t)

	alu := &Alu{}

	table := [](struct {
		op       Op
		a, b     int16
		expected int16
	}){
		{OP_AND, 0x0ff0, 0x00ff, 0x00f0},
		{OP_OR, 0x0ff0, 0x00ff, 0x0fff},
		{OP_XOR, 0x0ff0, 0x00ff, 0x0f0f},
		{OP_SHL, 0x0001, 4, 0x0010},
		{OP_SHL, 0x4000, 1, -0x8000},
		{OP_SHL, 0x0001, 16, 0},
		{OP_SHR, 0x0100, 4, 0x0010},
		{OP_SHR, -0x8000, 15, -1},
		{OP_NOOP, 5, 6, 5},
	}

	for _, entry := range table {
		out := alu.Compute(entry.op, entry.a, entry.b)
		assert.Equal(entry.expected, out.Primary, "%v %d %d", entry.op, entry.a, entry.b)
	}

	out := alu.Compute(OP_NOOP, 5, 6)
	assert.Equal(int16(6), out.Secondary)
}

func TestAlu_Flags(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name                 string
		in0, in1, out0, out1 int16
		expected             int16
	}){
		{"zero", 0, 0, 0, 0, FLAG_EQUAL | FLAG_NOT_LESS},
		{"less", 1, 2, 0, 0, 0},
		{"greater", 2, 1, 0, 0, FLAG_NOT_LESS},
		{"out0 positive", 1, 2, 5, 0, FLAG_OUT0_NONZERO | FLAG_OUT0_POSITIVE},
		{"out0 negative", 1, 2, -5, 0, FLAG_OUT0_NONZERO | FLAG_OUT0_NEGATIVE},
		{"out1 positive", 1, 2, 0, 5, FLAG_OUT1_NONZERO | FLAG_OUT1_POSITIVE},
		{"out1 negative", 1, 2, 0, -5, FLAG_OUT1_NONZERO | FLAG_OUT1_NEGATIVE},
		{"all", 3, 3, -1, 1, 0xf5},
	}

	for _, entry := range table {
		flags := Flags(entry.in0, entry.in1, entry.out0, entry.out1)
		assert.Equal(entry.expected, flags, entry.name)
	}
}

func TestAlu_FlagsProperties(t *testing.T) {
	assert := assert.New(t)

	alu := &Alu{}

	for _, a := range aluSamples {
		for _, b := range aluSamples {
			out := alu.Compute(OP_SUB, a, b)
			flags := out.Flags

			assert.Equal(a == b, flags&FLAG_EQUAL != 0)
			// Set when input0 is NOT less than input1.
			assert.Equal(a < b, flags&FLAG_NOT_LESS == 0)
			assert.Equal(out.Primary != 0, flags&FLAG_OUT0_NONZERO != 0)
			assert.False(flags&FLAG_OUT0_NEGATIVE != 0 && flags&FLAG_OUT0_POSITIVE != 0)
			assert.Equal(out.Primary < 0, flags&FLAG_OUT0_NEGATIVE != 0)
			assert.Equal(out.Primary > 0, flags&FLAG_OUT0_POSITIVE != 0)
			assert.Equal(int16(0), flags & ^int16(0xff))
		}
	}
}

func TestAlu_Compare(t *testing.T) {
	assert := assert.New(t)

	alu := &Alu{}

	table := [](struct {
		op       Op
		a, b     int16
		expected bool
	}){
		{OP_JEQ, 1, 1, true},
		{OP_JEQ, 1, 2, false},
		{OP_JLT, -1, 0, true},
		{OP_JLT, 0, 0, false},
		{OP_JLE, 0, 0, true},
		{OP_JLE, 1, 0, false},
		{OP_JGT, 1, -1, true},
		{OP_JGT, 0, 0, false},
		{OP_JGE, 0, 0, true},
		{OP_JGE, -0x8000, 0x7fff, false},
	}

	for _, entry := range table {
		out := alu.Compute(entry.op, entry.a, entry.b)
		assert.True(out.Compare)
		assert.Equal(entry.expected, out.True, "%v %d %d", entry.op, entry.a, entry.b)
		assert.Equal(int16(0), out.Primary)
		assert.Equal(int16(0), out.Secondary)
		assert.Equal(Flags(entry.a, entry.b, entry.a, entry.b), out.Flags)
	}
}

func TestAlu_Unknown(t *testing.T) {
	assert := assert.New(t)

	log, hook := logtest.NewNullLogger()
	alu := &Alu{Log: log}

	out := alu.Compute(Op(0x0b), 3, 4)
	assert.Equal(int16(3), out.Primary)
	assert.Equal(int16(4), out.Secondary)
	assert.Len(hook.AllEntries(), 1)

	hook.Reset()
	out = alu.Compute(Op(0x1f), 3, 3)
	assert.True(out.Compare)
	assert.True(out.True)
	assert.Len(hook.AllEntries(), 1)
}
