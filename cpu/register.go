package cpu

// Register is a single 16-bit cell. Arithmetic wraps silently.
type Register struct {
	value int16
}

// Get the register value.
func (r *Register) Get() int16 {
	return r.value
}

// Set the register value.
func (r *Register) Set(value int16) {
	r.value = value
}

// Increment the register, returning the new value.
func (r *Register) Increment() int16 {
	r.value++
	return r.value
}

// Decrement the register, returning the new value.
func (r *Register) Decrement() int16 {
	r.value--
	return r.value
}
