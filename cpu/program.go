package cpu

import (
	"iter"
)

// Opcode is a single assembled statement: an instruction or a data
// directive, placed at Ip.
type Opcode struct {
	LineNo int      // Source line number.
	Ip     int      // Address of the first word.
	Words  []string // Source words, after equate and expression expansion.
	Data   []int16  // Assembled words.
}

// Program is an assembled program.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the statement holding a word address.
type Debug struct {
	*Opcode
	Index int // Word index into Opcode.Data
}

// Debug returns the statement assembled at the word address ip.
// Opcode is nil if no statement covers ip.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Data) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// Words returns every assembled word with its address.
func (prog *Program) Words() iter.Seq2[int, int16] {
	return func(yield func(ip int, word int16) bool) {
		for _, op := range prog.Opcodes {
			for n, word := range op.Data {
				if !yield(op.Ip+n, word) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image of the program, starting at address 0.
// Addresses no statement covers are zero.
func (prog *Program) Binary() (bins []int16) {
	size := 0
	for _, op := range prog.Opcodes {
		size = max(size, op.Ip+len(op.Data))
	}

	bins = make([]int16, size)
	for ip, word := range prog.Words() {
		bins[ip] = word
	}

	return
}
