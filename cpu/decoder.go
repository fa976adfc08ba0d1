package cpu

import (
	"errors"
	"strings"
)

// DecodedInstruction is a normalized mnemonic with its classified operands.
// Created once by DecodeLine and immutable thereafter.
type DecodedInstruction struct {
	Mnemonic string
	Operands []Operand
}

func (inst DecodedInstruction) String() string {
	if len(inst.Operands) == 0 {
		return inst.Mnemonic
	}
	raws := make([]string, len(inst.Operands))
	for n, op := range inst.Operands {
		raws[n] = op.Raw
	}
	return inst.Mnemonic + " " + strings.Join(raws, ", ")
}

// stripComment removes '//' and ';' line comments.
func stripComment(line string) string {
	if n := strings.Index(line, "//"); n >= 0 {
		line = line[:n]
	}
	if n := strings.IndexByte(line, ';'); n >= 0 {
		line = line[:n]
	}
	return strings.TrimSpace(line)
}

// splitOperands splits an operand list on commas, ignoring commas inside
// bracketed memory operands.
func splitOperands(text string) (tokens []string) {
	var cur strings.Builder
	bracket := 0
	for _, c := range text {
		switch {
		case c == '[':
			bracket++
			cur.WriteRune(c)
		case c == ']':
			if bracket > 0 {
				bracket--
			}
			cur.WriteRune(c)
		case c == ',' && bracket == 0:
			tokens = append(tokens, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		tokens = append(tokens, cur.String())
	}
	return
}

// validator checks operand arity and types for one mnemonic.
type validator func(ops []Operand) error

func needKind(ops []Operand, n int, kinds ...OperandKind) error {
	for _, kind := range kinds {
		if ops[n].Kind == kind {
			return nil
		}
	}
	return ErrOperandType
}

func validateDataOp3(ops []Operand) (err error) {
	if len(ops) != 3 {
		return ErrOperandCount
	}
	err = errors.Join(
		needKind(ops, 0, OPERAND_REGISTER),
		needKind(ops, 1, OPERAND_REGISTER),
		needKind(ops, 2, OPERAND_REGISTER, OPERAND_IMMEDIATE),
	)
	return
}

func validateMov(ops []Operand) (err error) {
	if len(ops) != 2 {
		return ErrOperandCount
	}
	err = errors.Join(
		needKind(ops, 0, OPERAND_REGISTER),
		needKind(ops, 1, OPERAND_REGISTER, OPERAND_IMMEDIATE),
	)
	return
}

func validateCmp(ops []Operand) (err error) {
	if len(ops) != 2 {
		return ErrOperandCount
	}
	err = errors.Join(
		needKind(ops, 0, OPERAND_REGISTER),
		needKind(ops, 1, OPERAND_REGISTER, OPERAND_IMMEDIATE),
	)
	return
}

func validateMemOp(ops []Operand) (err error) {
	if len(ops) != 2 {
		return ErrOperandCount
	}
	err = errors.Join(
		needKind(ops, 0, OPERAND_REGISTER),
		needKind(ops, 1, OPERAND_MEMORY),
	)
	return
}

func validateBranch(ops []Operand) (err error) {
	if len(ops) != 1 {
		return ErrOperandCount
	}
	return needKind(ops, 0, OPERAND_LABEL)
}

func validateBare(ops []Operand) (err error) {
	if len(ops) != 0 {
		return ErrOperandCount
	}
	return
}

// validators maps mnemonics to their operand checks. Mnemonics not listed
// here decode permissively and execute as no-ops.
var validators = map[string]validator{
	"ADD":  validateDataOp3,
	"SUB":  validateDataOp3,
	"AND":  validateDataOp3,
	"EOR":  validateDataOp3,
	"MUL":  validateDataOp3,
	"MOV":  validateMov,
	"CMP":  validateCmp,
	"LDR":  validateMemOp,
	"LDRB": validateMemOp,
	"STR":  validateMemOp,
	"STRB": validateMemOp,
	"B":    validateBranch,
	"B.GT": validateBranch,
	"B.LE": validateBranch,
	"NOP":  validateBare,
	"RET":  validateBare,
}

// DecodeLine decodes a single source line into an instruction. Blank lines
// and comments return nil without error.
func DecodeLine(text string) (inst *DecodedInstruction, err error) {
	line := stripComment(text)
	if line == "" {
		return
	}

	mnem := strings.Fields(line)[0]
	rest := strings.TrimSpace(strings.TrimPrefix(line, mnem))

	var ops []Operand
	if rest != "" {
		for _, token := range splitOperands(rest) {
			var op Operand
			op, err = Classify(token)
			if err != nil {
				return
			}
			ops = append(ops, op)
		}
	}

	up := strings.ToUpper(mnem)
	if validate, ok := validators[up]; ok {
		err = validate(ops)
		if err != nil {
			err = errors.Join(err, ErrMnemonic(up))
			return
		}
	}

	inst = &DecodedInstruction{Mnemonic: up, Operands: ops}
	return
}
