package cpu

import (
	"strconv"
	"strings"
)

// OperandKind is the operand classification.
type OperandKind int

const (
	OPERAND_REGISTER  = OperandKind(0) // register
	OPERAND_IMMEDIATE = OperandKind(1) // immediate
	OPERAND_MEMORY    = OperandKind(2) // memory
	OPERAND_LABEL     = OperandKind(3) // label
)

func (k OperandKind) String() string {
	switch k {
	case OPERAND_REGISTER:
		return "register"
	case OPERAND_IMMEDIATE:
		return "immediate"
	case OPERAND_MEMORY:
		return "memory"
	case OPERAND_LABEL:
		return "label"
	}
	return "unknown"
}

// MemOperand is the interior of a bracketed memory operand, split on the
// first comma into a base register token and an optional offset expression.
// The offset is resolved against the register file at execution time.
type MemOperand struct {
	Base   string
	Offset string
}

// Operand is a classified instruction operand. Imm is the decoded value for
// immediates; Mem is set for memory operands.
type Operand struct {
	Kind OperandKind
	Raw  string
	Imm  int64
	Mem  *MemOperand
}

func (op Operand) String() string {
	return op.Raw
}

// looksLikeReg reports whether the token has the shape of a register name:
// SP, XZR, WZR, or X/W followed by digits. Range checking happens in
// ParseRegRef.
func looksLikeReg(token string) bool {
	u := strings.ToUpper(token)
	if u == "SP" || u == "XZR" || u == "WZR" {
		return true
	}
	if len(u) < 2 || (u[0] != 'X' && u[0] != 'W') {
		return false
	}
	for _, c := range u[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParseRegRef decodes a register token to a tagged reference. Names whose
// index falls outside 0..30 fail with ErrRegisterInvalid.
func ParseRegRef(token string) (ref RegRef, err error) {
	u := strings.ToUpper(strings.TrimSpace(token))

	switch u {
	case "SP":
		ref = RegRef{Class: REG_SP, Wide: true}
		return
	case "XZR":
		ref = RegRef{Class: REG_ZERO, Index: ZR_INDEX, Wide: true}
		return
	case "WZR":
		ref = RegRef{Class: REG_ZERO, Index: ZR_INDEX, Wide: false}
		return
	}

	if len(u) < 2 || (u[0] != 'X' && u[0] != 'W') {
		err = ErrRegisterInvalid
		return
	}
	n, nerr := strconv.ParseUint(u[1:], 10, 32)
	if nerr != nil || n > 30 {
		err = ErrRegisterInvalid
		return
	}

	ref = RegRef{Class: REG_GENERAL, Index: uint(n), Wide: u[0] == 'X'}
	return
}

// parseImmediate decodes the text after a '#' marker: decimal or 0x-prefixed
// hex, sign-preserving.
func parseImmediate(text string) (value int64, err error) {
	neg := false
	s := text
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var v uint64
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		err = ErrParseNumber(text)
		return
	}
	value = int64(v)
	if neg {
		value = -value
	}
	return
}

// Classify turns a raw operand token into a typed Operand. A leading '#'
// marks an immediate, a [...] wrapper marks a memory operand, register-shaped
// tokens are registers, and anything else is a label.
func Classify(token string) (op Operand, err error) {
	tok := strings.TrimSpace(token)
	op = Operand{Raw: tok}

	switch {
	case len(tok) >= 2 && tok[0] == '[' && tok[len(tok)-1] == ']':
		op.Kind = OPERAND_MEMORY
		inside := strings.TrimSpace(tok[1 : len(tok)-1])
		mem := &MemOperand{Base: inside}
		if comma := strings.IndexByte(inside, ','); comma >= 0 {
			mem.Base = strings.TrimSpace(inside[:comma])
			mem.Offset = strings.TrimSpace(inside[comma+1:])
		}
		op.Mem = mem
	case looksLikeReg(tok):
		op.Kind = OPERAND_REGISTER
	case len(tok) >= 1 && tok[0] == '#':
		op.Kind = OPERAND_IMMEDIATE
		op.Imm, err = parseImmediate(tok[1:])
	default:
		op.Kind = OPERAND_LABEL
	}

	return
}
