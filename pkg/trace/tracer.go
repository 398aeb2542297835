package trace

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrBreak is returned by BreakHere so callers can distinguish a
// debugger stop from a fatal decode error.
var ErrBreak = errors.New("debugger break")

// LogTracer reports tracer events through a logrus logger.
type LogTracer struct {
	Log *logrus.Logger
}

// NewLogTracer wraps the given logger; a nil logger uses the logrus
// standard logger.
func NewLogTracer(log *logrus.Logger) *LogTracer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogTracer{Log: log}
}

func (t *LogTracer) Panic(msg string) error {
	t.Log.WithField("source", "vu").Error(msg)
	return fmt.Errorf("vu: %s", msg)
}

func (t *LogTracer) BreakHere(msg string) error {
	t.Log.WithField("source", "vu").Warn(msg)
	return fmt.Errorf("%w: %s", ErrBreak, msg)
}

// NopTracer swallows messages and returns bare errors. Used by tests.
type NopTracer struct{}

func (NopTracer) Panic(msg string) error     { return fmt.Errorf("vu: %s", msg) }
func (NopTracer) BreakHere(msg string) error { return fmt.Errorf("%w: %s", ErrBreak, msg) }
