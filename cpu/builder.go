package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":     "0",
	"STACK_SIZE": fmt.Sprintf("%v", STACK_SIZE),
}

var (
	labelRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	wordRe  = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	parenRe = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Builder assembles source lines into a Program: labels map to the address
// of the next emitted instruction, equates and $() expressions expand before
// decoding, and each decoded instruction is placed at index*4.
type Builder struct {
	Verbose bool // If set, verbosely logs the build.

	Equate map[string]string // Map of equates.

	predefine map[string]string
	labels    map[string]uint64
}

// Predefine defines an equate before the build starts.
func (b *Builder) Predefine(equ string, value string) {
	if b.predefine == nil {
		b.predefine = map[string]string{equ: value}
	} else {
		b.predefine[equ] = value
	}
}

// valueOf returns the integer value of a simple word.
func (b *Builder) valueOf(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// parenEval does compile-time $(...) evaluations.
func (b *Builder) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range b.Equate {
		v, verr := b.valueOf(str)
		if verr != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	rcInt, ok := rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = rcInt.Int64()
	if !ok {
		err = ErrParseExpression(expr)
	}
	return
}

// expandLine strips comments, evaluates $() expressions, and substitutes
// equates.
func (b *Builder) expandLine(line string, lineno int) (out string, err error) {
	out = stripComment(line)
	if out == "" {
		return
	}

	b.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	out = parenRe.ReplaceAllStringFunc(out, func(str string) string {
		value, perr := b.parenEval(str[2 : len(str)-1])
		if perr != nil {
			err = perr
		}
		return fmt.Sprintf("%v", value)
	})

	return
}

// substEquates replaces equate names with their values.
func (b *Builder) substEquates(line string) string {
	return wordRe.ReplaceAllStringFunc(line, func(word string) string {
		if equ, ok := b.Equate[word]; ok {
			return equ
		}
		return word
	})
}

// collectLabels strips zero or more leading 'label:' prefixes, recording
// each as targeting the next instruction address. Only bare identifier
// tokens are accepted as labels.
func (b *Builder) collectLabels(line string, next uint64) (rest string, err error) {
	rest = strings.TrimSpace(line)
	for {
		colon := strings.IndexByte(rest, ':')
		if colon < 0 {
			return
		}
		label := strings.TrimSpace(rest[:colon])
		if !labelRe.MatchString(label) {
			return
		}
		key := strings.ToUpper(label)
		if _, ok := b.labels[key]; ok {
			err = ErrLabelDuplicate
			return
		}
		b.labels[key] = next
		rest = strings.TrimSpace(rest[colon+1:])
		if rest == "" {
			return
		}
	}
}

// Build parses an input stream into a Program.
func (b *Builder) Build(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	b.Equate = maps.Clone(sysEquate)
	for equ, val := range b.predefine {
		b.Equate[equ] = val
	}
	b.labels = make(map[string]uint64, 16)

	prog = &Program{
		addr2idx: make(map[uint64]int),
	}

	var lineno int
	for scanner.Scan() {
		text := scanner.Text()
		lineno++

		if b.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		fail := func(ferr error) error {
			prog = nil
			return ErrSyntax{LineNo: lineno, Line: text, Err: ferr}
		}

		line, eerr := b.expandLine(text, lineno)
		if eerr != nil {
			err = fail(eerr)
			return
		}
		if line == "" {
			continue
		}

		// .equ CONST VALUE
		if words := strings.Fields(line); len(words) > 0 && words[0] == ".equ" {
			if len(words) != 3 {
				err = fail(ErrEquateSyntax)
				return
			}
			if _, ok := b.Equate[words[1]]; ok {
				err = fail(ErrEquateDuplicate)
				return
			}
			b.Equate[words[1]] = words[2]
			continue
		}

		line = b.substEquates(line)

		next := uint64(len(prog.Code)) * 4
		rest, lerr := b.collectLabels(line, next)
		if lerr != nil {
			err = fail(lerr)
			return
		}

		inst, derr := DecodeLine(rest)
		if derr != nil {
			err = fail(derr)
			return
		}
		if inst == nil {
			continue
		}

		ai := AsmInst{
			Addr:   next,
			Index:  len(prog.Code) + 1,
			LineNo: lineno,
			Inst:   *inst,
		}
		prog.addr2idx[ai.Addr] = len(prog.Code)
		prog.Code = append(prog.Code, ai)
	}

	if serr := scanner.Err(); serr != nil {
		prog = nil
		err = errors.Join(ErrInput, serr)
		return
	}

	prog.Labels = b.labels
	return
}
