package internal

import (
	"io"

	"github.com/sirupsen/logrus"
)

var discard = func() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}()

// Discard returns a logger that drops everything.
func Discard() logrus.FieldLogger {
	return discard
}

// LoggerOr returns log, or the discarding logger if log is nil.
func LoggerOr(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return discard
	}
	return log
}
