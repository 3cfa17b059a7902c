// Package memory implements the word addressed storage of the id16 machine.
//
// A Block is a named, fixed size array of 16-bit words. A Mapper concatenates
// an ordered list of blocks into one flat address space, and also accepts
// banked (bank, offset) addresses that reach beyond the first 64K words.
// Out of range accesses are logged and degrade: reads return zero, writes are
// dropped.
//
// The Layout type describes the blocks of a machine as JSON, and loads or
// saves the persistent blocks from state files of big-endian words.
package memory
