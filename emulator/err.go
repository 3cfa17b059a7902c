package emulator

import (
	"errors"

	"github.com/ezrec/id16/translate"
)

var f = translate.From

var (
	// Emulator errors
	ErrSave = errors.New(f("memory save failed"))
)
