// Package cpu implements a restricted ARM64 interpreter: a text decoder,
// program builder, and single-step execution engine.
//
// The machine state consists of 31 64-bit general-purpose registers (X0-X30,
// with W0-W30 as their zero-extending 32-bit aliases), the XZR/WZR zero
// register, a dedicated stack pointer and program counter, the NZCV condition
// flags, and a fixed-size bounds-checked stack memory.
//
// The Builder assembles source text into an immutable Program: one
// instruction per non-empty line, addresses assigned at 4-byte strides, with
// label, equate, and compile-time expression support. Step executes exactly
// one instruction against the register file and stack, returning whether
// execution continues.
package cpu
