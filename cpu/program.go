package cpu

import (
	"iter"
	"strconv"
	"strings"
)

// AsmInst is a decoded instruction placed at an address. Index is the
// 1-based sequence number, LineNo the source line it came from.
type AsmInst struct {
	Addr   uint64
	Index  int
	LineNo int
	Inst   DecodedInstruction
}

// Program is an immutable instruction sequence with label and address
// lookups. Addresses are always Index*4 in insertion order; the address map
// is a derived, non-owning view over Code.
type Program struct {
	Code   []AsmInst
	Labels map[string]uint64

	addr2idx map[uint64]int
}

// EndAddr returns the end-of-program sentinel: the address immediately past
// the last instruction.
func (prog *Program) EndAddr() uint64 {
	return uint64(len(prog.Code)) * 4
}

// At resolves an address to its instruction.
func (prog *Program) At(addr uint64) (ai *AsmInst, ok bool) {
	n, ok := prog.addr2idx[addr]
	if !ok {
		return
	}
	ai = &prog.Code[n]
	return
}

// Target resolves a branch target: a known label name (case-insensitive) or
// a literal hex address token.
func (prog *Program) Target(token string) (addr uint64, err error) {
	key := strings.ToUpper(strings.TrimSpace(token))

	addr, ok := prog.Labels[key]
	if ok {
		return
	}

	if strings.HasPrefix(key, "0X") {
		addr, nerr := strconv.ParseUint(key[2:], 16, 64)
		if nerr == nil {
			return addr, nil
		}
	}

	err = ErrLabelMissing(token)
	return
}

// Instructions iterates the program in address order.
func (prog *Program) Instructions() iter.Seq2[uint64, *AsmInst] {
	return func(yield func(addr uint64, ai *AsmInst) bool) {
		for n := range prog.Code {
			if !yield(prog.Code[n].Addr, &prog.Code[n]) {
				return
			}
		}
	}
}
