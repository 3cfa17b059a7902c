package memory

import (
	"errors"

	"github.com/ezrec/id16/translate"
)

var f = translate.From

var (
	ErrLayoutEmpty = errors.New(f("memory layout has no blocks"))
	ErrLayoutBlock = errors.New(f("memory layout block invalid"))
	ErrStateOdd    = errors.New(f("state file has an odd byte count"))
)

// ErrBlock locates an error to a named memory block.
type ErrBlock struct {
	Name string
	Err  error
}

func (err *ErrBlock) Error() string {
	return f("block %q: %v", err.Name, err.Err)
}

func (err *ErrBlock) Unwrap() error {
	return err.Err
}
