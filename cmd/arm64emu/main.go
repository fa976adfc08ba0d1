package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kylemather-34/ARM64-Assembly-Emulator/cpu"
	"github.com/kylemather-34/ARM64-Assembly-Emulator/emulator"
)

const separator = "-------------------------------------------------------------------------------------------------------------------------------"

// memArrow renders a memory operand with its base + offset annotation.
func memArrow(raw string) string {
	if len(raw) < 2 || raw[0] != '[' || raw[len(raw)-1] != ']' {
		return raw
	}
	inside := strings.TrimSpace(raw[1 : len(raw)-1])

	base, off, found := strings.Cut(inside, ",")
	if !found {
		return "[" + inside + "]"
	}
	base = strings.TrimSpace(base)
	off = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(off), "#"))

	return "[" + inside + "] --> " + base + " + " + off
}

// printDecoded pretty-prints a single decoded instruction.
func printDecoded(ai *cpu.AsmInst) {
	fmt.Println(separator)
	fmt.Printf("Instruction #%d:\n\n", ai.Index)
	fmt.Println(separator)
	fmt.Println()

	fmt.Printf("Instruction: %v\n\n", ai.Inst.Mnemonic)

	for n, op := range ai.Inst.Operands {
		out := op.Raw
		if op.Kind == cpu.OPERAND_MEMORY {
			out = memArrow(op.Raw)
		}
		fmt.Printf("Operand #%d: %v\n\n", n+1, out)
	}
}

func main() {
	var steps int
	var base uint64
	var random bool
	var trace bool
	var dump bool
	var verbose bool

	flag.IntVar(&steps, "s", emulator.MAX_STEPS, "Maximum step count")
	flag.Uint64Var(&base, "b", emulator.STACK_BASE, "Stack base address")
	flag.BoolVar(&random, "r", false, "Fill stack with random bytes before running")
	flag.BoolVar(&trace, "t", false, "Print each instruction as it executes")
	flag.BoolVar(&dump, "d", false, "Dump registers and stack after the run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: %v [flags] <input.asm>", os.Args[0])
	}

	input := flag.Arg(0)
	inf := os.Stdin
	if input != "-" {
		var err error
		inf, err = os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
	}

	builder := &cpu.Builder{Verbose: verbose}
	prog, err := builder.Build(inf)
	if err != nil {
		log.Fatalf("%v: %v", input, err)
	}

	emu := emulator.NewEmulator()
	emu.Program = prog
	emu.Verbose = verbose
	emu.MaxSteps = steps
	emu.Stack = cpu.NewStack(base)
	emu.Registers.WriteSP(base)

	if random {
		emu.Stack.FillRandom(0xC0FFEE)
	}

	for {
		if trace {
			if ai := emu.Inst(); ai != nil {
				fmt.Printf("PC: 0x%016x\n", emu.Pc())
				printDecoded(ai)
			}
		}

		done, err := emu.Tick()
		if err != nil {
			log.Fatal(err)
		}
		if done {
			break
		}
	}

	fmt.Printf("Program finished. Final PC = 0x%016x\n", emu.Pc())

	if dump {
		fmt.Println(separator)
		fmt.Println("Registers:")
		fmt.Println(separator)
		fmt.Print(emu.Registers)
		fmt.Println(separator)
		fmt.Println("Stack:")
		fmt.Println(separator)
		fmt.Print(emu.Stack)
	}
}
