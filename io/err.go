package io

import (
	"errors"

	"github.com/ezrec/id16/translate"
)

var f = translate.From

var (
	// Device errors
	ErrInterrupted = errors.New(f("interrupted"))
	ErrInputFailed = errors.New(f("input failed"))
)
