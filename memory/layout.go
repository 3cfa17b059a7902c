package memory

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ezrec/id16/internal"
)

// Descriptor describes one memory block of a layout.
type Descriptor struct {
	Name       string `json:"name"`
	Size       int    `json:"size"`
	ReadOnly   bool   `json:"readonly"`
	Persistent bool   `json:"persistent"`
	StateFile  string `json:"stateFile,omitempty"`
}

// Layout is the ordered list of blocks making up the flat address space.
type Layout []Descriptor

// ReadLayout decodes a JSON array of descriptors.
func ReadLayout(r io.Reader) (layout Layout, err error) {
	err = json.NewDecoder(r).Decode(&layout)
	if err != nil {
		return
	}

	if len(layout) == 0 {
		err = ErrLayoutEmpty
		return
	}

	for _, desc := range layout {
		if len(desc.Name) == 0 || desc.Size < 0 {
			err = &ErrBlock{Name: desc.Name, Err: ErrLayoutBlock}
			return
		}
	}

	return
}

// OpenLayout reads the layout at path. State files named by the layout are
// resolved relative to the directory of path.
func OpenLayout(path string) (layout Layout, store DirStorage, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	layout, err = ReadLayout(file)
	if err != nil {
		return
	}

	store = DirStorage(filepath.Dir(path))
	return
}

// Build creates the blocks of the layout, loading initial content from the
// state files, and returns a mapper over them.
//
// A persistent descriptor without a state file is logged, and treated as
// not persistent. A persistent descriptor whose state file does not yet
// exist starts zero filled.
func (layout Layout) Build(store Storage, log logrus.FieldLogger) (mm *Mapper, err error) {
	log = internal.LoggerOr(log)

	if len(layout) == 0 {
		err = ErrLayoutEmpty
		return
	}

	blocks := make([]*Block, 0, len(layout))
	for _, desc := range layout {
		var block *Block
		block, err = desc.build(store, log)
		if err != nil {
			err = &ErrBlock{Name: desc.Name, Err: err}
			return
		}
		blocks = append(blocks, block)
	}

	mm = NewMapper(blocks...)
	mm.SetLogger(log)

	return
}

func (desc Descriptor) build(store Storage, log logrus.FieldLogger) (block *Block, err error) {
	if len(desc.StateFile) == 0 {
		if desc.Persistent {
			log.WithField("block", desc.Name).Error("no state file provided, setting block as non persistent")
		}
		block = NewBlock(desc.Name, desc.ReadOnly, desc.Size)
		return
	}

	words, err := loadWords(store, desc.StateFile)
	if errors.Is(err, fs.ErrNotExist) && desc.Persistent {
		log.WithFields(logrus.Fields{
			"block": desc.Name,
			"file":  desc.StateFile,
		}).Warn("state file missing, block starts zeroed")
		block = NewBlock(desc.Name, desc.ReadOnly, desc.Size)
		err = nil
		return
	}
	if err != nil {
		return
	}

	block = NewBlockFrom(desc.Name, desc.ReadOnly, words)
	return
}

// Persisted reports whether the descriptor is written back on Save.
func (desc Descriptor) Persisted() bool {
	return desc.Persistent && len(desc.StateFile) != 0
}

// Save writes the content of every persisted block of the layout back to its
// state file. Blocks are matched to descriptors by name.
func (layout Layout) Save(mm *Mapper, store Storage) (err error) {
	for _, desc := range layout {
		if !desc.Persisted() {
			continue
		}

		block, ok := mm.Block(desc.Name)
		if !ok {
			continue
		}

		err = saveWords(store, desc.StateFile, block.Content())
		if err != nil {
			err = &ErrBlock{Name: desc.Name, Err: err}
			return
		}
	}

	return
}
