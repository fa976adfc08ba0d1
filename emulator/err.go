package emulator

import (
	"errors"

	"github.com/kylemather-34/ARM64-Assembly-Emulator/translate"
)

var f = translate.From

// ErrMaxSteps indicates the driving loop exceeded its step-count ceiling.
// This is a caller-level abort, never a core engine error.
var ErrMaxSteps = errors.New(f("max step count exceeded"))

// ErrRuntime indicates the source location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
