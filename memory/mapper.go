package memory

import (
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/id16/internal"
)

// DEFAULT_BLOCK is the name of the single block of a default mapper.
const DEFAULT_BLOCK = "_default"

// Mapper presents an ordered list of blocks as one flat address space.
type Mapper struct {
	Log logrus.FieldLogger // Diagnostics sink, may be nil.

	blocks []*Block
	size   int
}

// NewMapper creates a mapper over blocks, in order.
func NewMapper(blocks ...*Block) (mm *Mapper) {
	mm = &Mapper{
		blocks: blocks,
	}
	for _, block := range blocks {
		mm.size += block.Size()
	}

	return
}

// NewDefaultMapper creates a mapper with a single writable block of size words.
func NewDefaultMapper(size int) *Mapper {
	return NewMapper(NewBlock(DEFAULT_BLOCK, false, size))
}

// SetLogger sets the diagnostics sink of the mapper and all of its blocks.
func (mm *Mapper) SetLogger(log logrus.FieldLogger) {
	mm.Log = log
	for _, block := range mm.blocks {
		block.Log = log
	}
}

// Size is the total number of words in the flat address space.
func (mm *Mapper) Size() int {
	return mm.size
}

// Blocks iterates over the blocks in address order.
func (mm *Mapper) Blocks() iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		for _, block := range mm.blocks {
			if !yield(block) {
				return
			}
		}
	}
}

// Block finds a block by name.
func (mm *Mapper) Block(name string) (block *Block, ok bool) {
	for _, block = range mm.blocks {
		if block.Name() == name {
			ok = true
			return
		}
	}

	block = nil
	return
}

// Address computes the linear address of a banked address.
func Address(bank, offset int16) int {
	return int((int32(bank) << 16) | int32(uint16(offset)))
}

// locate finds the block servicing address, and the offset within it.
func (mm *Mapper) locate(address int) (block *Block, offset int, ok bool) {
	offset = address
	for _, block = range mm.blocks {
		if offset < block.Size() {
			ok = true
			return
		}
		offset -= block.Size()
	}

	internal.LoggerOr(mm.Log).WithFields(logrus.Fields{
		"address": address,
		"size":    mm.size,
	}).Error("memory block not found for address")

	block = nil
	return
}

// Read the word at a flat address.
func (mm *Mapper) Read(address int) (value int16) {
	block, offset, ok := mm.locate(address)
	if !ok {
		return
	}

	return block.Read(offset)
}

// Write the word at a flat address.
func (mm *Mapper) Write(address int, value int16) {
	block, offset, ok := mm.locate(address)
	if !ok {
		return
	}

	block.Write(offset, value)
}

// ReadBanked reads the word at a banked address.
func (mm *Mapper) ReadBanked(bank, offset int16) int16 {
	return mm.Read(Address(bank, offset))
}

// WriteBanked writes the word at a banked address.
func (mm *Mapper) WriteBanked(bank, offset int16, value int16) {
	mm.Write(Address(bank, offset), value)
}
