package cpu

const (
	STACK_SIZE = 0x7fff // Words of stack storage.
)

// Storage is word storage addressed from zero.
type Storage interface {
	Read(address int) int16
	Write(address int, value int16)
}

// Stack is push/pop access to a storage, through a stack pointer register.
//
// The stack grows upwards; the pointer addresses the next free word. There
// is no overflow protection beyond the bounds checks of the storage.
type Stack struct {
	Storage Storage
	Pointer *Register
}

// Push writes value at the stack pointer, then increments it.
func (s *Stack) Push(value int16) {
	s.Storage.Write(int(s.Pointer.Get()), value)
	s.Pointer.Increment()
}

// Pop decrements the stack pointer, then reads the value there.
func (s *Stack) Pop() int16 {
	return s.Storage.Read(int(s.Pointer.Decrement()))
}

// Peek reads the value below the stack pointer without moving it.
func (s *Stack) Peek() int16 {
	return s.Storage.Read(int(s.Pointer.Get()) - 1)
}
