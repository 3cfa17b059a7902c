package memory

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage keeps state files in memory.
type memStorage map[string][]byte

type memFile struct {
	bytes.Buffer
	name  string
	store memStorage
}

func (mf *memFile) Close() error {
	mf.store[mf.name] = mf.Bytes()
	return nil
}

func (ms memStorage) Open(name string) (io.ReadCloser, error) {
	data, ok := ms[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (ms memStorage) Create(name string) (io.WriteCloser, error) {
	return &memFile{name: name, store: ms}, nil
}

const layoutJSON = `[
	{"name": "boot", "size": 0, "readonly": true, "persistent": false, "stateFile": "boot.bin"},
	{"name": "ram", "size": 8, "readonly": false, "persistent": false},
	{"name": "disk", "size": 4, "readonly": false, "persistent": true, "stateFile": "disk.bin"},
	{"name": "lost", "size": 2, "readonly": false, "persistent": true}
]`

func TestReadLayout(t *testing.T) {
	assert := assert.New(t)

	layout, err := ReadLayout(strings.NewReader(layoutJSON))
	assert.NoError(err)
	assert.Equal(Layout{
		{Name: "boot", ReadOnly: true, StateFile: "boot.bin"},
		{Name: "ram", Size: 8},
		{Name: "disk", Size: 4, Persistent: true, StateFile: "disk.bin"},
		{Name: "lost", Size: 2, Persistent: true},
	}, layout)

	assert.False(layout[0].Persisted())
	assert.True(layout[2].Persisted())
	assert.False(layout[3].Persisted())

	_, err = ReadLayout(strings.NewReader(`[]`))
	assert.ErrorIs(err, ErrLayoutEmpty)

	_, err = ReadLayout(strings.NewReader(`[{"size": 3}]`))
	assert.ErrorIs(err, ErrLayoutBlock)

	_, err = ReadLayout(strings.NewReader(`{`))
	assert.Error(err)
}

func TestLayout_Build(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	log, hook := logtest.NewNullLogger()

	store := memStorage{
		"boot.bin": {0x80, 0x01, 0x00, 0x05, 0xff, 0xff},
	}

	layout, err := ReadLayout(strings.NewReader(layoutJSON))
	require.NoError(err)

	mm, err := layout.Build(store, log)
	require.NoError(err)

	assert.Equal(3+8+4+2, mm.Size())
	assert.Equal(int16(-0x7fff), mm.Read(0))
	assert.Equal(int16(5), mm.Read(1))
	assert.Equal(int16(-1), mm.Read(2))

	// The missing persistent disk, and the state-less persistent block.
	var messages []string
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Data["block"].(string))
	}
	assert.Equal([]string{"disk", "lost"}, messages)

	// Read-only boot block ignores writes.
	mm.Write(0, 0)
	assert.Equal(int16(-0x7fff), mm.Read(0))
}

func TestLayout_SaveReload(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	store := memStorage{
		"boot.bin": {0x00, 0x01},
		"disk.bin": {0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	}

	layout, err := ReadLayout(strings.NewReader(layoutJSON))
	require.NoError(err)

	mm, err := layout.Build(store, nil)
	require.NoError(err)

	// disk lives after boot (1 word) and ram (8 words).
	for n := range 4 {
		mm.Write(9+n, int16(0x1111*(n+1)))
	}
	// ram and lost are not persistent.
	mm.Write(1, 0x77)
	mm.Write(13, 0x77)

	require.NoError(layout.Save(mm, store))
	assert.Equal([]byte{0x11, 0x11, 0x22, 0x22, 0x33, 0x33, 0x44, 0x44}, store["disk.bin"])
	assert.Equal([]byte{0x00, 0x01}, store["boot.bin"])
	assert.Len(store, 2)

	reloaded, err := layout.Build(store, nil)
	require.NoError(err)

	disk, _ := mm.Block("disk")
	again, _ := reloaded.Block("disk")
	assert.Equal(disk.Content(), again.Content())

	ram, _ := reloaded.Block("ram")
	assert.Equal(make([]int16, 8), ram.Content())
}

func TestLayout_BuildErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Layout{}.Build(memStorage{}, nil)
	assert.ErrorIs(err, ErrLayoutEmpty)

	layout := Layout{{Name: "odd", StateFile: "odd.bin"}}
	_, err = layout.Build(memStorage{"odd.bin": {1, 2, 3}}, nil)
	assert.ErrorIs(err, ErrStateOdd)

	var eb *ErrBlock
	assert.ErrorAs(err, &eb)
	assert.Equal("odd", eb.Name)

	// Non-persistent blocks require their state file.
	_, err = layout.Build(memStorage{}, nil)
	assert.ErrorIs(err, fs.ErrNotExist)
}

func TestOpenLayout(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "mmap.json")
	require.NoError(os.WriteFile(path, []byte(`[{"name": "disk", "size": 2, "persistent": true, "stateFile": "disk.bin"}]`), 0o644))

	layout, store, err := OpenLayout(path)
	require.NoError(err)
	assert.Equal(DirStorage(dir), store)

	mm, err := layout.Build(store, nil)
	require.NoError(err)

	mm.Write(0, 0x0102)
	mm.Write(1, -2)
	require.NoError(layout.Save(mm, store))

	data, err := os.ReadFile(filepath.Join(dir, "disk.bin"))
	require.NoError(err)
	assert.Equal([]byte{0x01, 0x02, 0xff, 0xfe}, data)

	_, _, err = OpenLayout(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(err, fs.ErrNotExist)
}

func TestWords(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	assert.NoError(WriteWords(buf, []int16{0, 1, -1, 0x7fff, -0x8000}))
	assert.Equal([]byte{0, 0, 0, 1, 0xff, 0xff, 0x7f, 0xff, 0x80, 0x00}, buf.Bytes())

	words, err := ReadWords(buf)
	assert.NoError(err)
	assert.Equal([]int16{0, 1, -1, 0x7fff, -0x8000}, words)
}
