package cpu

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	STACK_SIZE = uint64(256) // Stack memory size in bytes
)

// Stack is a fixed-size byte buffer with a configurable base address.
// Access is bounds-checked at byte granularity; wider accesses are composed
// from the byte primitives by the execution engine.
type Stack struct {
	base uint64
	data []byte
}

// NewStack creates a zeroed stack with the given base address.
func NewStack(base uint64) *Stack {
	return &Stack{
		base: base,
		data: make([]byte, STACK_SIZE),
	}
}

// Base returns the base address of the stack window.
func (s *Stack) Base() uint64 { return s.base }

// Size returns the stack size in bytes.
func (s *Stack) Size() uint64 { return uint64(len(s.data)) }

// Read8 reads one byte at the given offset from the base.
func (s *Stack) Read8(offset uint64) (value byte, err error) {
	if offset >= s.Size() {
		err = ErrStackBounds{Addr: s.base + offset, Width: 1}
		return
	}
	value = s.data[offset]
	return
}

// Write8 writes one byte at the given offset from the base.
func (s *Stack) Write8(offset uint64, value byte) (err error) {
	if offset >= s.Size() {
		return ErrStackBounds{Addr: s.base + offset, Width: 1}
	}
	s.data[offset] = value
	return
}

// Reset zero-fills the stack.
func (s *Stack) Reset() {
	clear(s.data)
}

// FillRandom fills the stack with seeded pseudo-random bytes.
func (s *Stack) FillRandom(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for n := range s.data {
		s.data[n] = byte(rng.Intn(256))
	}
}

// String returns a hexdump of the stack: 16 bytes per row with an ASCII
// gutter, followed by the end offset.
func (s *Stack) String() string {
	var sb strings.Builder

	const perLine = 16
	for off := 0; off < len(s.data); off += perLine {
		fmt.Fprintf(&sb, "%08x ", off)
		for i := range perLine {
			fmt.Fprintf(&sb, "%02x", s.data[off+i])
			if i != perLine-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(" |")
		for i := range perLine {
			c := s.data[off+i]
			if c >= 0x20 && c <= 0x7e {
				sb.WriteByte(c)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}
	fmt.Fprintf(&sb, "%08x\n", len(s.data))

	return sb.String()
}
