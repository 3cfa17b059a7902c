package cpu

import (
	"github.com/sirupsen/logrus"

	"github.com/ezrec/id16/internal"
)

// AluOp is an ALU operation, the low 4 bits of a math opcode.
type AluOp int16

const (
	ALU_OP_NOOP = AluOp(OP_NOOP)
	ALU_OP_ADD  = AluOp(OP_ADD)
	ALU_OP_SUB  = AluOp(OP_SUB)
	ALU_OP_DIV  = AluOp(OP_DIV)
	ALU_OP_MUL  = AluOp(OP_MUL)
	ALU_OP_MOD  = AluOp(OP_MOD)
	ALU_OP_AND  = AluOp(OP_AND)
	ALU_OP_OR   = AluOp(OP_OR)
	ALU_OP_XOR  = AluOp(OP_XOR)
	ALU_OP_SHL  = AluOp(OP_SHL)
	ALU_OP_SHR  = AluOp(OP_SHR)
)

// AluCmp is an ALU comparison, the low 4 bits of a jump opcode.
type AluCmp int16

const (
	ALU_CMP_EQ = AluCmp(OP_JEQ & 0xf)
	ALU_CMP_LT = AluCmp(OP_JLT & 0xf)
	ALU_CMP_LE = AluCmp(OP_JLE & 0xf)
	ALU_CMP_GT = AluCmp(OP_JGT & 0xf)
	ALU_CMP_GE = AluCmp(OP_JGE & 0xf)
)

const (
	ALU_COMPARE = 0x10 // Opcode bit requesting a comparison.
	ALU_OP_MASK = 0x0f // Opcode bits selecting the operation or comparison.
)

// Flag register bits, MSB first.
const (
	FLAG_EQUAL         = 1 << 7 // input0 == input1
	FLAG_NOT_LESS      = 1 << 6 // !(input0 < input1)
	FLAG_OUT0_NONZERO  = 1 << 5 // output0 != 0
	FLAG_OUT0_NEGATIVE = 1 << 4 // output0 < 0
	FLAG_OUT0_POSITIVE = 1 << 3 // output0 > 0
	FLAG_OUT1_NONZERO  = 1 << 2 // output1 != 0
	FLAG_OUT1_NEGATIVE = 1 << 1 // output1 < 0
	FLAG_OUT1_POSITIVE = 1 << 0 // output1 > 0
)

// AluOut is the result of an ALU computation.
type AluOut struct {
	Primary   int16 // Primary result, stored to acc0.
	Secondary int16 // Secondary result, stored to acc1.
	Flags     int16 // Flags register value.
	Compare   bool  // A comparison was requested.
	True      bool  // Outcome of the comparison.
}

// Alu is the stateless arithmetic and logic unit.
type Alu struct {
	Log logrus.FieldLogger // Diagnostics sink, may be nil.
}

// Flags computes the flags register for a pair of inputs and outputs.
func Flags(input0, input1, output0, output1 int16) (flags int16) {
	bit := func(cond bool, mask int16) {
		if cond {
			flags |= mask
		}
	}

	bit(input0 == input1, FLAG_EQUAL)
	bit(!(input0 < input1), FLAG_NOT_LESS)
	bit(output0 != 0, FLAG_OUT0_NONZERO)
	bit(output0 < 0, FLAG_OUT0_NEGATIVE)
	bit(output0 > 0, FLAG_OUT0_POSITIVE)
	bit(output1 != 0, FLAG_OUT1_NONZERO)
	bit(output1 < 0, FLAG_OUT1_NEGATIVE)
	bit(output1 > 0, FLAG_OUT1_POSITIVE)

	return
}

// Compute the result of op on a and b. Only the low 5 bits of op are used.
func (alu *Alu) Compute(op Op, a, b int16) (out AluOut) {
	if (op & ALU_COMPARE) != 0 {
		out.Compare = true
		out.Flags = Flags(a, b, a, b)
		out.True = alu.compare(AluCmp(op&ALU_OP_MASK), a, b)
		return
	}

	out.Primary, out.Secondary = alu.operate(AluOp(op&ALU_OP_MASK), a, b)
	out.Flags = Flags(a, b, out.Primary, out.Secondary)

	return
}

func (alu *Alu) compare(cmp AluCmp, a, b int16) bool {
	switch cmp {
	case ALU_CMP_EQ:
		return a == b
	case ALU_CMP_LT:
		return a < b
	case ALU_CMP_LE:
		return a <= b
	case ALU_CMP_GT:
		return a > b
	case ALU_CMP_GE:
		return a >= b
	}

	internal.LoggerOr(alu.Log).WithField("comparison", int16(cmp)).Error("unknown comparison")
	return a == b
}

func (alu *Alu) operate(op AluOp, a, b int16) (primary, secondary int16) {
	wa, wb := int32(a), int32(b)
	shift := uint32(b) & 0x1f

	switch op {
	case ALU_OP_NOOP:
		return a, b
	case ALU_OP_ADD:
		primary = int16(wa + wb)
	case ALU_OP_SUB:
		primary = int16(wa - wb)
	case ALU_OP_MUL:
		primary = int16(wa * wb)
	case ALU_OP_DIV:
		if b == 0 {
			return -1, 0
		}
		primary, secondary = int16(wa/wb), int16(wa%wb)
	case ALU_OP_MOD:
		if b == 0 {
			return 0, -1
		}
		primary, secondary = int16(wa%wb), int16(wa/wb)
	case ALU_OP_AND:
		primary = a & b
	case ALU_OP_OR:
		primary = a | b
	case ALU_OP_XOR:
		primary = a ^ b
	case ALU_OP_SHL:
		primary = int16(wa << shift)
	case ALU_OP_SHR:
		primary = int16(wa >> shift)
	default:
		internal.LoggerOr(alu.Log).WithField("operation", int16(op)).Error("unknown operation")
		return a, b
	}

	return
}
