package cpu

import (
	"errors"

	"github.com/kylemather-34/ARM64-Assembly-Emulator/translate"
)

var f = translate.From

var (
	// Decoder errors
	ErrOperandCount   = errors.New(f("operand count"))
	ErrOperandType    = errors.New(f("operand type"))
	ErrOperandInvalid = errors.New(f("operand invalid"))

	// Register file errors
	ErrRegisterInvalid = errors.New(f("register invalid"))

	// Builder errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrInput           = errors.New(f("input read"))
)

// ErrLabelMissing indicates a branch target that resolved to no known label.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

func (el ErrLabelMissing) Is(err error) (ok bool) {
	_, ok = err.(ErrLabelMissing)
	return
}

// ErrPcInvalid indicates a program counter that matches no instruction
// address and is not the end-of-program sentinel.
type ErrPcInvalid uint64

func (ep ErrPcInvalid) Error() string {
	return f("pc 0x%x matches no instruction", uint64(ep))
}

func (ep ErrPcInvalid) Is(err error) (ok bool) {
	_, ok = err.(ErrPcInvalid)
	return
}

// ErrStackBounds indicates a stack access whose byte window is not fully
// contained in the stack buffer.
type ErrStackBounds struct {
	Addr  uint64
	Width uint64
}

func (eb ErrStackBounds) Error() string {
	return f("access 0x%x width %d out of stack bounds", eb.Addr, eb.Width)
}

func (eb ErrStackBounds) Is(err error) (ok bool) {
	_, ok = err.(ErrStackBounds)
	return
}

// ErrSyntax locates a build error on its source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrMnemonic names the mnemonic whose validation failed.
type ErrMnemonic string

func (em ErrMnemonic) Error() string {
	return f("%v operands", string(em))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
