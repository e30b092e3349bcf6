// Package cpu implements the Intcode processor, its program loader, and an
// assembler for the Intcode instruction set.
//
// The processor consists of an instruction pointer (IP), a relative base
// register (RB), and a single growable memory of signed 64-bit words shared
// by code and data, so programs may rewrite their own instructions. Input
// and output go through two word-level channels.
//
// The assembler provides a small assembly language for the instruction set,
// supporting labels, equates, raw data, and compile-time expression
// evaluation.
package cpu
