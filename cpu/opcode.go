package cpu

import (
	"fmt"
	"strings"
)

// Op is the 10-bit operation of an instruction word.
type Op int16

const (
	OP_NOOP = Op(0x00) // noop
	OP_ADD  = Op(0x01) // add
	OP_SUB  = Op(0x02) // sub
	OP_DIV  = Op(0x03) // div
	OP_MUL  = Op(0x04) // mul
	OP_MOD  = Op(0x05) // mod
	OP_AND  = Op(0x06) // and
	OP_OR   = Op(0x07) // or
	OP_XOR  = Op(0x08) // xor
	OP_SHL  = Op(0x09) // shl
	OP_SHR  = Op(0x0a) // shr

	OP_MATH_LIMIT = Op(0x0f) // Opcodes below this are ALU operations.

	OP_JEQ = Op(0x10) // jeq
	OP_JLT = Op(0x11) // jlt
	OP_JLE = Op(0x12) // jle
	OP_JGT = Op(0x13) // jgt
	OP_JGE = Op(0x14) // jge

	OP_MOVE      = Op(0x20) // mov
	OP_INTERRUPT = Op(0x21) // int
)

var opNames = map[Op]string{
	OP_NOOP:      "noop",
	OP_ADD:       "add",
	OP_SUB:       "sub",
	OP_DIV:       "div",
	OP_MUL:       "mul",
	OP_MOD:       "mod",
	OP_AND:       "and",
	OP_OR:        "or",
	OP_XOR:       "xor",
	OP_SHL:       "shl",
	OP_SHR:       "shr",
	OP_JEQ:       "jeq",
	OP_JLT:       "jlt",
	OP_JLE:       "jle",
	OP_JGT:       "jgt",
	OP_JGE:       "jge",
	OP_MOVE:      "mov",
	OP_INTERRUPT: "int",
}

func (op Op) String() string {
	name, ok := opNames[op]
	if !ok {
		return fmt.Sprintf("op(0x%03x)", int16(op))
	}
	return name
}

// CodeClass is the handler class of an operation.
type CodeClass int

const (
	CLASS_UNKNOWN   = CodeClass(0) // unknown
	CLASS_MATH      = CodeClass(1) // math
	CLASS_JUMP      = CodeClass(2) // jump
	CLASS_MOVE      = CodeClass(3) // move
	CLASS_INTERRUPT = CodeClass(4) // interrupt
)

func (class CodeClass) String() string {
	switch class {
	case CLASS_MATH:
		return "math"
	case CLASS_JUMP:
		return "jump"
	case CLASS_MOVE:
		return "move"
	case CLASS_INTERRUPT:
		return "interrupt"
	}
	return "unknown"
}

// Class returns the handler class of the operation.
func (op Op) Class() CodeClass {
	switch {
	case op >= 0 && op < OP_MATH_LIMIT:
		return CLASS_MATH
	case op >= OP_JEQ && op <= OP_JGE:
		return CLASS_JUMP
	case op == OP_MOVE:
		return CLASS_MOVE
	case op == OP_INTERRUPT:
		return CLASS_INTERRUPT
	}
	return CLASS_UNKNOWN
}

// Mode is the set of addressing mode bits of an instruction word.
type Mode uint16

const (
	MODE_P0_IMMEDIATE = Mode(1 << 15) // param0 is an immediate value
	MODE_P1_IMMEDIATE = Mode(1 << 14) // param1 is an immediate value
	MODE_P0_POINTER   = Mode(1 << 13) // param0 names an endpoint holding a memory address
	MODE_P1_POINTER   = Mode(1 << 12) // param1 names an endpoint holding a memory address
	MODE_P0_MEMORY    = Mode(1 << 11) // param0 is a memory address
	MODE_P1_MEMORY    = Mode(1 << 10) // param1 is a memory address

	MODE_MASK   = Mode(0xfc00) // Mask of all mode bits.
	OPCODE_MASK = 0x03ff       // Mask of the operation bits.
)

// Addressing is the decoded addressing mode of a single parameter.
type Addressing struct {
	Immediate bool
	Pointer   bool
	Memory    bool
}

// Mode returns the mode bits for parameter n (0 or 1).
func (ad Addressing) Mode(n int) (mode Mode) {
	if ad.Immediate {
		mode |= MODE_P0_IMMEDIATE >> n
	}
	if ad.Pointer {
		mode |= MODE_P0_POINTER >> n
	}
	if ad.Memory {
		mode |= MODE_P0_MEMORY >> n
	}
	return
}

// Endpoint is a fixed address selecting a register, the stack, or a port.
type Endpoint int16

const (
	EP_R0             = Endpoint(0x0) // r0
	EP_R1             = Endpoint(0x1) // r1
	EP_R2             = Endpoint(0x2) // r2
	EP_R3             = Endpoint(0x3) // r3
	EP_ACCU0          = Endpoint(0x4) // acc0
	EP_ACCU1          = Endpoint(0x5) // acc1
	EP_FLAGS          = Endpoint(0x6) // flags
	EP_SPTR           = Endpoint(0x7) // sp
	EP_EXPTR          = Endpoint(0x8) // ep
	EP_MEM_EXTENSION  = Endpoint(0x9) // ext
	EP_INTERRUPT_CODE = Endpoint(0xa) // icode
	EP_STACK          = Endpoint(0xb) // stack
	EP_IN             = Endpoint(0xc) // in
	EP_OUT            = Endpoint(0xd) // out

	REGISTER_COUNT = int(EP_INTERRUPT_CODE) + 1 // Size of the register file.
)

// Fixed memory addresses.
const (
	MEM_INTERRUPT = 0x0e // Interrupt service entry point.
	MEM_START     = 0x19 // Start of general program and data memory.
)

var endpointNames = map[Endpoint]string{
	EP_R0:             "r0",
	EP_R1:             "r1",
	EP_R2:             "r2",
	EP_R3:             "r3",
	EP_ACCU0:          "acc0",
	EP_ACCU1:          "acc1",
	EP_FLAGS:          "flags",
	EP_SPTR:           "sp",
	EP_EXPTR:          "ep",
	EP_MEM_EXTENSION:  "ext",
	EP_INTERRUPT_CODE: "icode",
	EP_STACK:          "stack",
	EP_IN:             "in",
	EP_OUT:            "out",
}

func (ep Endpoint) String() string {
	name, ok := endpointNames[ep]
	if !ok {
		return fmt.Sprintf("0x%x", uint16(ep))
	}
	return name
}

// IsRegister is true if the endpoint selects the register file.
func (ep Endpoint) IsRegister() bool {
	return ep >= 0 && int(ep) < REGISTER_COUNT
}

// InterruptCode is a well known interrupt code value.
//
// The CPU stores any interrupt code as given; these values are a convention
// for interrupt handlers.
type InterruptCode int16

const (
	INT_NONE      = InterruptCode(0x0) // none
	INT_END_OF_EX = InterruptCode(0x1) // end of execution
	INT_PAUSE_EX  = InterruptCode(0x2) // pause execution
)

func (ic InterruptCode) String() string {
	switch ic {
	case INT_NONE:
		return "none"
	case INT_END_OF_EX:
		return "end of execution"
	case INT_PAUSE_EX:
		return "pause execution"
	}
	return fmt.Sprintf("interrupt(%d)", int16(ic))
}

// CODE_WORDS is the number of words in an instruction.
const CODE_WORDS = 3

// Code is a single instruction: the instruction word and its two parameters.
type Code struct {
	Word   int16
	Params [2]int16
}

// MakeCode creates an instruction.
func MakeCode(op Op, mode Mode, param0, param1 int16) Code {
	return Code{
		Word:   int16(uint16(mode&MODE_MASK) | (uint16(op) & OPCODE_MASK)),
		Params: [2]int16{param0, param1},
	}
}

// Op returns the operation of the instruction, without mode bits.
func (code Code) Op() Op {
	return Op(uint16(code.Word) & OPCODE_MASK)
}

// Mode returns the addressing mode bits of the instruction.
func (code Code) Mode() Mode {
	return Mode(uint16(code.Word)) & MODE_MASK
}

// Addressing decodes the addressing mode of parameter n (0 or 1).
func (code Code) Addressing(n int) Addressing {
	mode := code.Mode() << n
	return Addressing{
		Immediate: (mode & MODE_P0_IMMEDIATE) != 0,
		Pointer:   (mode & MODE_P0_POINTER) != 0,
		Memory:    (mode & MODE_P0_MEMORY) != 0,
	}
}

// Decode returns the operation, and the addressing modes of both parameters.
func (code Code) Decode() (op Op, ad [2]Addressing) {
	op = code.Op()
	ad[0] = code.Addressing(0)
	ad[1] = code.Addressing(1)
	return
}

// Words returns the instruction as it is laid out in memory.
func (code Code) Words() []int16 {
	return []int16{code.Word, code.Params[0], code.Params[1]}
}

// operand formats parameter n in assembler syntax.
func (code Code) operand(n int) string {
	value := code.Params[n]
	ad := code.Addressing(n)
	switch {
	case ad.Immediate:
		return fmt.Sprintf("#%d", value)
	case ad.Pointer:
		return fmt.Sprintf("[%v]", Endpoint(value))
	case ad.Memory:
		return fmt.Sprintf("[0x%04x]", uint16(value))
	}
	return Endpoint(value).String()
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	op := code.Op()
	words := []string{op.String()}
	switch op.Class() {
	case CLASS_INTERRUPT:
		words = append(words, code.operand(0))
	default:
		words = append(words, code.operand(0), code.operand(1))
	}
	return strings.Join(words, " ")
}
