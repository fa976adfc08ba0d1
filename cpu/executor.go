package cpu

import (
	"errors"
	"strconv"
	"strings"
)

// subFlags64 sets NZCV from a 64-bit two's-complement subtraction a - b.
// C follows the no-borrow convention: set iff unsigned a >= b.
func subFlags64(flags *Flags, a, b, res uint64) {
	flags.N = (res >> 63) != 0
	flags.Z = res == 0
	flags.C = a >= b
	sa := (a >> 63) != 0
	sb := (b >> 63) != 0
	sr := (res >> 63) != 0
	flags.V = (sa != sb) && (sr != sa)
}

// subFlags32 sets NZCV from a 32-bit subtraction a - b.
func subFlags32(flags *Flags, a, b, res uint32) {
	flags.N = (res >> 31) != 0
	flags.Z = res == 0
	flags.C = a >= b
	sa := (a >> 31) != 0
	sb := (b >> 31) != 0
	sr := (res >> 31) != 0
	flags.V = (sa != sb) && (sr != sa)
}

// regRef decodes a register operand, failing with ErrOperandInvalid for
// anything that is not a register.
func regRef(op Operand) (ref RegRef, err error) {
	if op.Kind != OPERAND_REGISTER {
		err = errors.Join(ErrOperandInvalid, ErrOperandType)
		return
	}
	ref, err = ParseRegRef(op.Raw)
	return
}

// readSrc reads a register operand as 64 bits; W registers zero-extend.
func readSrc(regs *Registers, op Operand) (value uint64, err error) {
	ref, err := regRef(op)
	if err != nil {
		return
	}
	return regs.ReadRef(ref)
}

// readValue reads a register-or-immediate operand.
func readValue(regs *Registers, op Operand) (value uint64, err error) {
	if op.Kind == OPERAND_IMMEDIATE {
		value = uint64(op.Imm)
		return
	}
	return readSrc(regs, op)
}

// writeDest writes a register operand at its own width.
func writeDest(regs *Registers, op Operand, value uint64) (err error) {
	ref, err := regRef(op)
	if err != nil {
		return
	}
	return regs.WriteRef(ref, value)
}

// offsetImm parses a memory-offset immediate: decimal or 0x hex, optional
// '#' prefix. Negative values wrap, matching two's-complement address
// arithmetic.
func offsetImm(text string) (value uint64, err error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "#")
	if v, uerr := strconv.ParseUint(s, 0, 64); uerr == nil {
		value = v
		return
	}
	v, serr := strconv.ParseInt(s, 0, 64)
	if serr != nil {
		err = errors.Join(ErrOperandInvalid, ErrParseNumber(text))
		return
	}
	value = uint64(v)
	return
}

// resolveOffset computes the offset contribution of a memory operand: an
// immediate, or an index register optionally scaled by 'LSL #imm'.
func resolveOffset(regs *Registers, text string) (value uint64, err error) {
	part, shift, _ := strings.Cut(text, ",")
	part = strings.TrimSpace(part)
	shift = strings.TrimSpace(shift)

	if !looksLikeReg(part) {
		if shift != "" {
			err = ErrOperandInvalid
			return
		}
		return offsetImm(part)
	}

	ref, rerr := ParseRegRef(part)
	if rerr != nil {
		err = errors.Join(ErrOperandInvalid, rerr)
		return
	}
	value, err = regs.ReadRef(ref)
	if err != nil {
		return
	}

	if shift != "" {
		fields := strings.Fields(shift)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "LSL") {
			err = ErrOperandInvalid
			return
		}
		var amount uint64
		amount, err = offsetImm(fields[1])
		if err != nil {
			return
		}
		value <<= amount & 63
	}

	return
}

// effectiveAddr resolves a memory operand to an address: base register value
// plus optional offset. The base must be SP, the zero register, or a general
// register.
func effectiveAddr(regs *Registers, op Operand) (addr uint64, err error) {
	if op.Kind != OPERAND_MEMORY || op.Mem == nil {
		err = errors.Join(ErrOperandInvalid, ErrOperandType)
		return
	}

	ref, rerr := ParseRegRef(op.Mem.Base)
	if rerr != nil {
		err = errors.Join(ErrOperandInvalid, rerr)
		return
	}
	base, err := regs.ReadRef(RegRef{Class: ref.Class, Index: ref.Index, Wide: true})
	if err != nil {
		return
	}

	var off uint64
	if op.Mem.Offset != "" {
		off, err = resolveOffset(regs, op.Mem.Offset)
		if err != nil {
			return
		}
	}

	addr = base + off
	return
}

// checkWindow verifies that [addr, addr+width) lies fully inside the stack.
func checkWindow(stack *Stack, addr, width uint64) error {
	if addr < stack.Base() || addr+width > stack.Base()+stack.Size() {
		return ErrStackBounds{Addr: addr, Width: width}
	}
	return nil
}

// loadBytes reads width bytes little-endian from the stack.
func loadBytes(stack *Stack, addr, width uint64) (value uint64, err error) {
	if err = checkWindow(stack, addr, width); err != nil {
		return
	}
	off := addr - stack.Base()
	for i := uint64(0); i < width; i++ {
		var b byte
		b, err = stack.Read8(off + i)
		if err != nil {
			return
		}
		value |= uint64(b) << (i * 8)
	}
	return
}

// storeBytes writes the low width bytes of value little-endian to the stack.
func storeBytes(stack *Stack, addr, width, value uint64) (err error) {
	if err = checkWindow(stack, addr, width); err != nil {
		return
	}
	off := addr - stack.Base()
	for i := uint64(0); i < width; i++ {
		err = stack.Write8(off+i, byte(value>>(i*8)))
		if err != nil {
			return
		}
	}
	return
}

// accessWidth returns the transfer width in bytes for a load/store: 1 for
// the byte forms, otherwise 8 or 4 by the Rt operand's register width.
func accessWidth(mnem string, rt Operand) (width uint64, err error) {
	if strings.HasSuffix(mnem, "B") {
		width = 1
		return
	}
	ref, err := regRef(rt)
	if err != nil {
		return
	}
	if ref.Wide {
		width = 8
	} else {
		width = 4
	}
	return
}

// Step executes exactly one instruction at pc, mutating the register file
// and stack, and writes the computed next PC into the register file. It
// returns false when execution halts: at the end-of-program sentinel, or
// immediately on RET. Unknown mnemonics execute as no-ops.
func Step(prog *Program, regs *Registers, stack *Stack, pc uint64) (cont bool, err error) {
	if len(prog.Code) == 0 {
		return
	}
	end := prog.EndAddr()
	if pc == end {
		return
	}

	ai, ok := prog.At(pc)
	if !ok {
		err = ErrPcInvalid(pc)
		return
	}

	// Default next-PC is sequential fall-through.
	next := pc + 4

	up := strings.ToUpper(ai.Inst.Mnemonic)
	ops := ai.Inst.Operands

	switch up {
	case "NOP":
		// no state change

	case "MOV":
		if len(ops) != 2 {
			err = errors.Join(ErrOperandCount, ErrMnemonic(up))
			return
		}
		var v uint64
		v, err = readValue(regs, ops[1])
		if err != nil {
			return
		}
		err = writeDest(regs, ops[0], v)
		if err != nil {
			return
		}

	case "ADD", "SUB", "AND", "EOR", "MUL":
		if len(ops) != 3 {
			err = errors.Join(ErrOperandCount, ErrMnemonic(up))
			return
		}
		var a, b uint64
		a, err = readSrc(regs, ops[1])
		if err != nil {
			return
		}
		b, err = readValue(regs, ops[2])
		if err != nil {
			return
		}
		var res uint64
		switch up {
		case "ADD":
			res = a + b
		case "SUB":
			res = a - b
		case "AND":
			res = a & b
		case "EOR":
			res = a ^ b
		case "MUL":
			res = a * b // low 64 bits
		}
		err = writeDest(regs, ops[0], res)
		if err != nil {
			return
		}
		// Plain forms never touch flags; only CMP does.

	case "CMP":
		if len(ops) != 2 {
			err = errors.Join(ErrOperandCount, ErrMnemonic(up))
			return
		}
		var ref RegRef
		ref, err = regRef(ops[0])
		if err != nil {
			return
		}
		var a, b uint64
		a, err = regs.ReadRef(ref)
		if err != nil {
			return
		}
		b, err = readValue(regs, ops[1])
		if err != nil {
			return
		}
		if ref.Wide {
			subFlags64(&regs.Flags, a, b, a-b)
		} else {
			aa := uint32(a)
			bb := uint32(b)
			subFlags32(&regs.Flags, aa, bb, aa-bb)
		}

	case "LDR", "LDRB":
		if len(ops) != 2 {
			err = errors.Join(ErrOperandCount, ErrMnemonic(up))
			return
		}
		var addr, width uint64
		width, err = accessWidth(up, ops[0])
		if err != nil {
			return
		}
		addr, err = effectiveAddr(regs, ops[1])
		if err != nil {
			return
		}
		var v uint64
		v, err = loadBytes(stack, addr, width)
		if err != nil {
			return
		}
		// Zero-extend into the destination at its own width.
		err = writeDest(regs, ops[0], v)
		if err != nil {
			return
		}

	case "STR", "STRB":
		if len(ops) != 2 {
			err = errors.Join(ErrOperandCount, ErrMnemonic(up))
			return
		}
		var addr, width uint64
		width, err = accessWidth(up, ops[0])
		if err != nil {
			return
		}
		addr, err = effectiveAddr(regs, ops[1])
		if err != nil {
			return
		}
		var v uint64
		v, err = readSrc(regs, ops[0])
		if err != nil {
			return
		}
		err = storeBytes(stack, addr, width, v)
		if err != nil {
			return
		}

	case "B", "B.GT", "B.LE":
		if len(ops) != 1 || ops[0].Kind != OPERAND_LABEL {
			err = errors.Join(ErrOperandInvalid, ErrOperandType)
			return
		}
		flags := regs.Flags
		take := true
		switch up {
		case "B.GT":
			take = !flags.Z && (flags.N == flags.V)
		case "B.LE":
			take = flags.Z || (flags.N != flags.V)
		}
		if take {
			next, err = prog.Target(ops[0].Raw)
			if err != nil {
				return
			}
		}

	case "RET":
		// Halt immediately, irrespective of PC position.
		return

	default:
		// Unknown mnemonics are no-ops by policy, not an error.
	}

	regs.WritePC(next)
	cont = next != end
	return
}
