// Package emulator owns the fetch-decode-execute loop around the cpu core:
// it holds the program, register file, and stack memory, steps the engine
// one instruction at a time, and enforces an external step-count ceiling so
// backward branches cannot run unbounded.
package emulator

import (
	"log"

	"github.com/kylemather-34/ARM64-Assembly-Emulator/cpu"
)

const (
	MAX_STEPS  = 100000 // Default step-count ceiling.
	STACK_BASE = 0x0    // Default stack base address.
)

// Emulator state. Program + register file + stack memory.
type Emulator struct {
	Verbose bool // If set, enables verbose logging.

	Program   *cpu.Program   // The program under execution, read-only.
	Registers *cpu.Registers // Mutable register file.
	Stack     *cpu.Stack     // Mutable stack memory.

	MaxSteps int // Step ceiling enforced by Tick.

	steps int
}

// NewEmulator creates an emulator with an empty program and zeroed state.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Program:   &cpu.Program{},
		Registers: &cpu.Registers{},
		Stack:     cpu.NewStack(STACK_BASE),
		MaxSteps:  MAX_STEPS,
	}

	return
}

// Reset clears registers, stack, and the step counter.
func (emu *Emulator) Reset() {
	emu.Registers.Reset()
	emu.Stack.Reset()
	emu.steps = 0
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() uint64 {
	return emu.Registers.ReadPC()
}

// Steps returns the number of instructions executed since Reset.
func (emu *Emulator) Steps() int {
	return emu.steps
}

// Inst returns the instruction at the current PC, or nil between programs.
func (emu *Emulator) Inst() *cpu.AsmInst {
	ai, _ := emu.Program.At(emu.Pc())
	return ai
}

// LineNo returns the source line number for the instruction at the current
// PC.
func (emu *Emulator) LineNo() int {
	if ai := emu.Inst(); ai != nil {
		return ai.LineNo
	}
	return 0
}

// Tick executes a single instruction. It returns done when the program has
// halted, and fails with ErrMaxSteps once the step ceiling is reached.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.steps >= emu.MaxSteps {
		err = ErrMaxSteps
		return
	}
	emu.steps++

	pc := emu.Pc()

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if emu.Verbose {
		if ai := emu.Inst(); ai != nil {
			log.Printf("%08x: %v", pc, ai.Inst)
		}
	}

	cont, err := cpu.Step(emu.Program, emu.Registers, emu.Stack, pc)
	if err != nil {
		return
	}

	done = !cont
	return
}

// Run steps until the program halts, a step fails, or the step ceiling is
// exceeded.
func (emu *Emulator) Run() (err error) {
	for {
		done, terr := emu.Tick()
		if terr != nil {
			return terr
		}
		if done {
			return
		}
	}
}
