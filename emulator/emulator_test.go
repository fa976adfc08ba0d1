package emulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kylemather-34/ARM64-Assembly-Emulator/cpu"
)

func load(t *testing.T, emu *Emulator, lines ...string) {
	t.Helper()

	b := &cpu.Builder{}
	prog, err := b.Build(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	emu.Program = prog
}

func TestEmulator_Run(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu,
		"MOV X0, #40",
		"ADD X0, X0, #2",
	)

	assert.NoError(emu.Run())

	x0, _ := emu.Registers.ReadX(0)
	assert.Equal(uint64(42), x0)
	assert.Equal(uint64(8), emu.Pc())
	assert.Equal(2, emu.Steps())
}

func TestEmulator_RunRet(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu,
		"MOV X0, #1",
		"RET",
		"MOV X0, #2",
	)

	assert.NoError(emu.Run())

	x0, _ := emu.Registers.ReadX(0)
	assert.Equal(uint64(1), x0)
}

func TestEmulator_CountdownLoop(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu,
		"MOV X0, #5",
		"MOV X1, #0",
		"LOOP: ADD X1, X1, X0",
		"SUB X0, X0, #1",
		"CMP X0, #0",
		"B.GT LOOP",
	)

	assert.NoError(emu.Run())

	x1, _ := emu.Registers.ReadX(1)
	assert.Equal(uint64(15), x1)
}

func TestEmulator_MaxSteps(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.MaxSteps = 10
	load(t, emu, "LOOP: B LOOP")

	err := emu.Run()
	assert.ErrorIs(err, ErrMaxSteps)
	assert.Equal(10, emu.Steps())
}

func TestEmulator_RuntimeErrorLine(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu,
		"MOV X0, #1",
		"LDR X1, [SP, #512]",
	)

	err := emu.Run()
	assert.ErrorIs(err, cpu.ErrStackBounds{})

	var rt *ErrRuntime
	assert.True(errors.As(err, &rt))
	assert.Equal(2, rt.LineNo)
}

func TestEmulator_StackRoundTrip(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu,
		"MOV X5, #0x1234",
		"STR X5, [SP, #16]",
		"LDR X6, [SP, #16]",
	)

	assert.NoError(emu.Run())

	x6, _ := emu.Registers.ReadX(6)
	assert.Equal(uint64(0x1234), x6)
}

func TestEmulator_Reset(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu, "MOV X0, #1")
	assert.NoError(emu.Run())

	emu.Reset()
	x0, _ := emu.Registers.ReadX(0)
	assert.Equal(uint64(0), x0)
	assert.Equal(uint64(0), emu.Pc())
	assert.Equal(0, emu.Steps())
}

func TestEmulator_Inst(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	load(t, emu, "MOV X0, #1", "RET")

	ai := emu.Inst()
	assert.NotNil(ai)
	assert.Equal("MOV", ai.Inst.Mnemonic)
	assert.Equal(1, emu.LineNo())

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(2, emu.LineNo())
}

func TestEmulator_EmptyProgram(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}
