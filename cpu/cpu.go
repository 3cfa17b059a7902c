package cpu

import (
	"fmt"
	"iter"
	"maps"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/id16/internal"
	"github.com/ezrec/id16/io"
	"github.com/ezrec/id16/memory"
)

// Input is the CPU input port.
type Input io.Input

// Output is the CPU output port.
type Output io.Output

// Memory is the flat and banked address space the CPU executes from.
type Memory interface {
	// Read a word at a flat address.
	Read(address int) int16
	// ReadBanked reads a word at a (bank, offset) address.
	ReadBanked(bank, offset int16) int16
	// WriteBanked writes a word at a (bank, offset) address.
	WriteBanked(bank, offset int16, value int16)
}

var _ Memory = (*memory.Mapper)(nil)

var _cpu_defines = map[string]string{
	"MEM_INTERRUPT": fmt.Sprintf("0x%x", MEM_INTERRUPT),
	"MEM_START":     fmt.Sprintf("0x%x", MEM_START),
	"STACK_SIZE":    fmt.Sprintf("0x%x", STACK_SIZE),
	"INT_NONE":      fmt.Sprintf("%d", INT_NONE),
	"INT_END_OF_EX": fmt.Sprintf("%d", INT_END_OF_EX),
	"INT_PAUSE_EX":  fmt.Sprintf("%d", INT_PAUSE_EX),
	"FLAG_EQUAL":    fmt.Sprintf("0x%x", FLAG_EQUAL),
	"FLAG_NOT_LESS": fmt.Sprintf("0x%x", FLAG_NOT_LESS),
}

// Defines returns the assembler equates for the CPU.
func Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Cpu is the simulation context of the id16 processor.
//
// A Cpu is not safe for concurrent use; exactly one driver may call Tick.
type Cpu struct {
	Log logrus.FieldLogger // Diagnostics sink, may be nil.

	Memory Memory // Program and data memory.
	Input  Input  // Input port, may be nil.
	Output Output // Output port, may be nil.

	Register [REGISTER_COUNT]Register // Register file, indexed by Endpoint.
	Stack    Stack                    // Hardware stack, using the sp register.
	Alu      Alu                      // Arithmetic and logic unit.

	Ticks int // Cycles since reset.

	pending bool // Interrupt pending.
}

// NewCpu creates a reset CPU attached to memory and the I/O ports.
func NewCpu(mem Memory, input Input, output Output) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
		Input:  input,
		Output: output,
	}

	cpu.Stack = Stack{
		Storage: memory.NewBlock("stack", false, STACK_SIZE),
		Pointer: &cpu.Register[EP_SPTR],
	}

	cpu.Reset()

	return
}

// SetLogger sets the diagnostics sink of the CPU and its components.
func (cpu *Cpu) SetLogger(log logrus.FieldLogger) {
	cpu.Log = log
	cpu.Alu.Log = log
	if block, ok := cpu.Stack.Storage.(*memory.Block); ok {
		block.Log = log
	}
}

func (cpu *Cpu) logger() logrus.FieldLogger {
	return internal.LoggerOr(cpu.Log)
}

// Reset the CPU state.
// - Clears all registers and any pending interrupt.
// - Zeros the tick counter.
// - Sets the execution pointer to MEM_START.
func (cpu *Cpu) Reset() {
	clear(cpu.Register[:])
	cpu.pending = false
	cpu.Ticks = 0
	cpu.Register[EP_EXPTR].Set(MEM_START)
}

// Get the value of a register endpoint.
func (cpu *Cpu) Get(ep Endpoint) int16 {
	return cpu.Register[ep].Get()
}

// Set the value of a register endpoint.
func (cpu *Cpu) Set(ep Endpoint, value int16) {
	cpu.Register[ep].Set(value)
}

// Registers returns a snapshot of the register file.
func (cpu *Cpu) Registers() (regs [REGISTER_COUNT]int16) {
	for n := range cpu.Register {
		regs[n] = cpu.Register[n].Get()
	}
	return
}

// Pending is true if an interrupt will be serviced on the next cycle.
func (cpu *Cpu) Pending() bool {
	return cpu.pending
}

// Interrupt raises an interrupt with the given code. It is serviced on the
// next cycle.
func (cpu *Cpu) Interrupt(code int16) {
	cpu.Register[EP_INTERRUPT_CODE].Set(code)
	cpu.pending = true
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder
	for ep := range Endpoint(REGISTER_COUNT) {
		val := uint16(cpu.Register[ep].Get())
		fmt.Fprintf(&sb, "% 6s: %04X\n", ep.String(), val)
	}
	fmt.Fprintf(&sb, "% 6s: %v\n", "irq", cpu.pending)

	return sb.String()
}

// fetch reads an instruction stream word.
func (cpu *Cpu) fetch(address int16) int16 {
	return cpu.Memory.Read(int(uint16(address)))
}

// FetchCode reads the instruction at the execution pointer, leaving the
// execution pointer at the following instruction.
func (cpu *Cpu) FetchCode() (code Code) {
	ep := &cpu.Register[EP_EXPTR]

	code.Word = cpu.fetch(ep.Get())
	code.Params[0] = cpu.fetch(ep.Increment())
	code.Params[1] = cpu.fetch(ep.Increment())
	ep.Increment()

	return
}

// Tick executes a single CPU cycle: either interrupt entry, or one
// instruction.
func (cpu *Cpu) Tick() {
	cpu.Ticks++

	if cpu.pending {
		cpu.pending = false
		cpu.Register[EP_EXPTR].Set(MEM_INTERRUPT)
		cpu.logger().WithField("code", cpu.Register[EP_INTERRUPT_CODE].Get()).Debug("interrupt entry")
		return
	}

	ip := cpu.Register[EP_EXPTR].Get()
	code := cpu.FetchCode()

	cpu.logger().WithFields(logrus.Fields{
		"ep":     fmt.Sprintf("%04x", uint16(ip)),
		"opcode": fmt.Sprintf("%04x", uint16(code.Word)),
		"param0": fmt.Sprintf("%04x", uint16(code.Params[0])),
		"param1": fmt.Sprintf("%04x", uint16(code.Params[1])),
	}).Debug(code.String())

	cpu.Execute(code)
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(code Code) {
	op := code.Op()

	switch op.Class() {
	case CLASS_MATH:
		a := cpu.getValue(code.Params[0], code.Addressing(0))
		b := cpu.getValue(code.Params[1], code.Addressing(1))
		out := cpu.Alu.Compute(op, a, b)
		cpu.Register[EP_ACCU0].Set(out.Primary)
		cpu.Register[EP_ACCU1].Set(out.Secondary)
		cpu.Register[EP_FLAGS].Set(out.Flags)
		cpu.logger().WithFields(logrus.Fields{
			"a": a, "b": b, "primary": out.Primary, "secondary": out.Secondary,
		}).Debug("math")
	case CLASS_JUMP:
		a := cpu.getValue(code.Params[0], code.Addressing(0))
		b := cpu.getValue(code.Params[1], code.Addressing(1))
		out := cpu.Alu.Compute(op, a, b)
		if out.True {
			cpu.Register[EP_EXPTR].Set(cpu.Register[EP_R3].Get())
		}
		cpu.Register[EP_FLAGS].Set(out.Flags)
		cpu.logger().WithFields(logrus.Fields{
			"a": a, "b": b, "taken": out.True,
		}).Debug("compare")
	case CLASS_MOVE:
		ad := code.Addressing(1)
		value := cpu.getValue(code.Params[0], code.Addressing(0))
		address := cpu.getAddress(code.Params[1], ad.Pointer)
		cpu.logger().WithFields(logrus.Fields{
			"value": value, "address": address,
		}).Debug("move")
		cpu.setValueAt(value, address, ad.Memory || ad.Pointer)
	case CLASS_INTERRUPT:
		value := cpu.getValue(code.Params[0], code.Addressing(0))
		cpu.Interrupt(value)
	default:
		cpu.logger().WithField("opcode", fmt.Sprintf("0x%03x", int16(op))).Error("unknown instruction")
	}
}

// getValue resolves a source operand.
func (cpu *Cpu) getValue(param int16, ad Addressing) int16 {
	switch {
	case ad.Immediate:
		return param
	case ad.Pointer:
		address := cpu.valueAt(param, false)
		return cpu.valueAt(address, true)
	case ad.Memory:
		return cpu.valueAt(param, true)
	}

	return cpu.valueAt(param, false)
}

// getAddress resolves a destination operand to the address written.
func (cpu *Cpu) getAddress(param int16, pointer bool) int16 {
	if pointer {
		return cpu.valueAt(param, false)
	}

	return param
}

// valueAt reads from memory (through the bank extension register), or
// from an endpoint.
func (cpu *Cpu) valueAt(address int16, isMemory bool) (value int16) {
	ep := Endpoint(address)
	switch {
	case isMemory:
		value = cpu.Memory.ReadBanked(cpu.Register[EP_MEM_EXTENSION].Get(), address)
	case ep.IsRegister():
		value = cpu.Register[ep].Get()
	case ep == EP_STACK:
		value = cpu.Stack.Pop()
	case ep == EP_IN:
		if cpu.Input != nil {
			value = cpu.Input.Poll()
		}
	}

	return
}

// setValueAt writes to memory (through the bank extension register), or
// to an endpoint.
func (cpu *Cpu) setValueAt(value int16, address int16, isMemory bool) {
	ep := Endpoint(address)
	switch {
	case isMemory:
		cpu.Memory.WriteBanked(cpu.Register[EP_MEM_EXTENSION].Get(), address, value)
	case ep.IsRegister():
		cpu.Register[ep].Set(value)
	case ep == EP_STACK:
		cpu.Stack.Push(value)
	case ep == EP_OUT && cpu.Output != nil:
		cpu.Output.Accept(value)
	default:
		cpu.logger().WithFields(logrus.Fields{
			"value":   value,
			"address": address,
		}).Error("value going nowhere")
	}
}
