package cpu

import (
	"fmt"
	"strings"
)

const (
	REG_COUNT = 31       // X0..X30
	ZR_INDEX  = uint(31) // XZR/WZR sentinel index
)

// RegClass distinguishes the three addressable register classes.
type RegClass int

const (
	REG_GENERAL = RegClass(0) // Xn / Wn
	REG_SP      = RegClass(1) // stack pointer
	REG_ZERO    = RegClass(2) // XZR / WZR
)

// RegRef is a decoded register reference. Wide is true for the 64-bit X
// form, false for the 32-bit W alias.
type RegRef struct {
	Class RegClass
	Index uint
	Wide  bool
}

// Flags are the NZCV condition bits, set only by CMP.
type Flags struct {
	N bool // Negative
	Z bool // Zero
	C bool // Carry (no-borrow on subtraction)
	V bool // Signed overflow
}

// Registers is the mutable register file: X0..X30, SP, PC, and flags.
// Index 31 is the zero register: reads as 0, writes are discarded.
type Registers struct {
	Flags Flags

	x  [REG_COUNT]uint64
	sp uint64
	pc uint64
}

// Reset clears all registers and flags.
func (regs *Registers) Reset() {
	clear(regs.x[:])
	regs.sp = 0
	regs.pc = 0
	regs.Flags = Flags{}
}

// ReadX reads the 64-bit Xn register, n = 0..30. n == 31 reads XZR (0).
func (regs *Registers) ReadX(n uint) (value uint64, err error) {
	if n == ZR_INDEX {
		return
	}
	if n > 30 {
		err = ErrRegisterInvalid
		return
	}
	value = regs.x[n]
	return
}

// WriteX writes the 64-bit Xn register, n = 0..30. Writes to index 31 are
// silently discarded.
func (regs *Registers) WriteX(n uint, value uint64) (err error) {
	if n == ZR_INDEX {
		return
	}
	if n > 30 {
		err = ErrRegisterInvalid
		return
	}
	regs.x[n] = value
	return
}

// ReadW reads the low 32 bits of Xn.
func (regs *Registers) ReadW(n uint) (value uint32, err error) {
	x, err := regs.ReadX(n)
	value = uint32(x)
	return
}

// WriteW writes Wn, zero-extending into the 64-bit backing register.
func (regs *Registers) WriteW(n uint, value uint32) (err error) {
	return regs.WriteX(n, uint64(value))
}

// ReadSP reads the stack pointer.
func (regs *Registers) ReadSP() uint64 { return regs.sp }

// WriteSP writes the stack pointer.
func (regs *Registers) WriteSP(value uint64) { regs.sp = value }

// ReadPC reads the program counter.
func (regs *Registers) ReadPC() uint64 { return regs.pc }

// WritePC writes the program counter.
func (regs *Registers) WritePC(value uint64) { regs.pc = value }

// ReadRef reads a register reference as a 64-bit value. W references read
// the low 32 bits zero-extended.
func (regs *Registers) ReadRef(ref RegRef) (value uint64, err error) {
	switch ref.Class {
	case REG_ZERO:
		return
	case REG_SP:
		value = regs.sp
		return
	}
	value, err = regs.ReadX(ref.Index)
	if err != nil {
		return
	}
	if !ref.Wide {
		value = uint64(uint32(value))
	}
	return
}

// WriteRef writes a register reference. W references write the low 32 bits,
// zero-extending into the backing register. Zero-register writes are
// discarded.
func (regs *Registers) WriteRef(ref RegRef, value uint64) (err error) {
	switch ref.Class {
	case REG_ZERO:
		return
	case REG_SP:
		regs.sp = value
		return
	}
	if !ref.Wide {
		value = uint64(uint32(value))
	}
	return regs.WriteX(ref.Index, value)
}

func hex64(v uint64) string {
	return fmt.Sprintf("0x%016x", v)
}

// String returns the register file as a three-column dump followed by
// SP/PC/X30 and the flag bits.
func (regs *Registers) String() string {
	var sb strings.Builder

	for base := uint(0); base < 10; base++ {
		x0, _ := regs.ReadX(base)
		x1, _ := regs.ReadX(base + 10)
		x2, _ := regs.ReadX(base + 20)
		fmt.Fprintf(&sb, "X%d: %v X%d: %v X%d: %v\n",
			base, hex64(x0), base+10, hex64(x1), base+20, hex64(x2))
	}

	x30, _ := regs.ReadX(30)
	fmt.Fprintf(&sb, "SP: %v PC: %v X30: %v\n",
		hex64(regs.sp), hex64(regs.pc), hex64(x30))

	bit := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	fmt.Fprintf(&sb, "N: %d Z: %d C: %d V: %d\n",
		bit(regs.Flags.N), bit(regs.Flags.Z), bit(regs.Flags.C), bit(regs.Flags.V))

	return sb.String()
}
