package memory

import (
	"github.com/sirupsen/logrus"

	"github.com/ezrec/id16/internal"
)

// Block is a named array of 16-bit words.
type Block struct {
	Log logrus.FieldLogger // Diagnostics sink, may be nil.

	name     string
	readOnly bool
	content  []int16
}

// NewBlock creates a zero filled block of size words.
func NewBlock(name string, readOnly bool, size int) *Block {
	return &Block{
		name:     name,
		readOnly: readOnly,
		content:  make([]int16, max(size, 0)),
	}
}

// NewBlockFrom creates a block holding content. The block takes ownership of
// the slice.
func NewBlockFrom(name string, readOnly bool, content []int16) *Block {
	if content == nil {
		content = []int16{}
	}
	return &Block{
		name:     name,
		readOnly: readOnly,
		content:  content,
	}
}

// Name of the block, used to match persisted state.
func (b *Block) Name() string {
	return b.name
}

// ReadOnly is true if writes to the block are dropped.
func (b *Block) ReadOnly() bool {
	return b.readOnly
}

// Size in words.
func (b *Block) Size() int {
	return len(b.content)
}

// Content returns the backing words of the block.
func (b *Block) Content() []int16 {
	return b.content
}

// Read the word at address, or zero if address is out of bounds.
func (b *Block) Read(address int) (value int16) {
	if !b.inBounds(address) {
		return
	}

	value = b.content[address]
	return
}

// Write value at address. Writes to read-only blocks, or out of bounds,
// are dropped.
func (b *Block) Write(address int, value int16) {
	if b.readOnly || !b.inBounds(address) {
		return
	}

	b.content[address] = value
}

func (b *Block) inBounds(address int) bool {
	if address < 0 || address >= len(b.content) {
		internal.LoggerOr(b.Log).WithFields(logrus.Fields{
			"block":   b.name,
			"address": address,
			"size":    len(b.content),
		}).Error("memory block address overflow")
		return false
	}

	return true
}
