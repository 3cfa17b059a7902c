// Package cpu implements the processor and assembler for the id16 machine.
//
// The CPU has four general purpose registers (r0-r3), two accumulators, a
// flags register, stack and execution pointers, a memory bank extension
// register and an interrupt code register, all 16 bits wide. Every
// instruction is three words: an instruction word holding six addressing
// mode bits and a 10-bit opcode, followed by two parameter words.
//
// Operands are resolved as immediates, register/stack/port endpoints,
// memory addresses (through the bank extension register), or pointers held
// in an endpoint. Results of the math class land in the accumulators, with
// the flags register describing the inputs and outputs of the ALU.
//
// The assembler provides a small assembly language for the instruction set,
// supporting labels, equates, origin control and compile-time expression
// evaluation.
package cpu
