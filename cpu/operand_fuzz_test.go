package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzClassify(f *testing.F) {
	seeds := []string{
		"X0", "W30", "SP", "XZR", "WZR", "x99",
		"#42", "#-8", "#0x10", "#zz",
		"[SP]", "[SP, #8]", "[X0, X1, LSL #3]", "[", "[]",
		"loop", "0x10", "", "   ", "X0]",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, token string) {
		assert := assert.New(t)

		op, err := Classify(token)
		if err != nil {
			return
		}

		assert.Equal(strings.TrimSpace(token), op.Raw)

		switch op.Kind {
		case OPERAND_MEMORY:
			assert.NotNil(op.Mem)
		case OPERAND_IMMEDIATE:
			assert.True(strings.HasPrefix(op.Raw, "#"))
		case OPERAND_REGISTER:
			assert.True(looksLikeReg(op.Raw))
		}
	})
}

func FuzzDecodeLine(f *testing.F) {
	seeds := []string{
		"ADD X0, X1, X2",
		"LDR X0, [SP, #8]",
		"LOOP: B LOOP",
		"MOV X0, #0x10 // comment",
		"; just a comment",
		".equ A 1",
		"RET",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, line string) {
		assert := assert.New(t)

		inst, err := DecodeLine(line)
		if err != nil || inst == nil {
			return
		}

		assert.Equal(strings.ToUpper(inst.Mnemonic), inst.Mnemonic)
	})
}
