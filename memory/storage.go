package memory

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Storage opens and creates state files by name.
type Storage interface {
	// Open a state file for reading.
	Open(name string) (io.ReadCloser, error)
	// Create (or truncate) a state file for writing.
	Create(name string) (io.WriteCloser, error)
}

// DirStorage resolves relative state file names against a directory.
type DirStorage string

var _ Storage = DirStorage("")

func (dir DirStorage) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(string(dir), name)
}

// Open a state file for reading.
func (dir DirStorage) Open(name string) (io.ReadCloser, error) {
	return os.Open(dir.path(name))
}

// Create a state file for writing.
func (dir DirStorage) Create(name string) (io.WriteCloser, error) {
	return os.Create(dir.path(name))
}

// ReadWords reads big-endian 16-bit words until EOF.
func ReadWords(r io.Reader) (words []int16, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}

	if len(data)%2 != 0 {
		err = ErrStateOdd
		return
	}

	words = make([]int16, len(data)/2)
	for n := range words {
		words[n] = int16(binary.BigEndian.Uint16(data[n*2:]))
	}

	return
}

// WriteWords writes words as big-endian 16-bit values.
func WriteWords(w io.Writer, words []int16) (err error) {
	data := make([]byte, len(words)*2)
	for n, word := range words {
		binary.BigEndian.PutUint16(data[n*2:], uint16(word))
	}

	_, err = w.Write(data)
	return
}

// loadWords reads a whole state file from storage.
func loadWords(store Storage, name string) (words []int16, err error) {
	file, err := store.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	return ReadWords(file)
}

// saveWords writes a whole state file to storage.
func saveWords(store Storage, name string, words []int16) (err error) {
	file, err := store.Create(name)
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	return WriteWords(file, words)
}
