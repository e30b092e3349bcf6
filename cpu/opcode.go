package cpu

import (
	"fmt"
	"strings"
)

// Opcode is an operation selector, the two low decimal digits of a Code.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_ADD  = Opcode(1)  // add
	OP_MUL  = Opcode(2)  // mul
	OP_IN   = Opcode(3)  // in
	OP_OUT  = Opcode(4)  // out
	OP_JNZ  = Opcode(5)  // jnz
	OP_JZ   = Opcode(6)  // jz
	OP_LT   = Opcode(7)  // lt
	OP_EQ   = Opcode(8)  // eq
	OP_ARB  = Opcode(9)  // arb
	OP_HALT = Opcode(99) // halt
)

// Opcodes lists every valid opcode, in numeric order.
var Opcodes = []Opcode{
	OP_ADD, OP_MUL, OP_IN, OP_OUT, OP_JNZ, OP_JZ, OP_LT, OP_EQ, OP_ARB, OP_HALT,
}

// opcodeParams is the parameter count, and the index of the written
// parameter (or -1), of each opcode.
var opcodeParams = map[Opcode][2]int{
	OP_ADD:  {3, 2},
	OP_MUL:  {3, 2},
	OP_IN:   {1, 0},
	OP_OUT:  {1, -1},
	OP_JNZ:  {2, -1},
	OP_JZ:   {2, -1},
	OP_LT:   {3, 2},
	OP_EQ:   {3, 2},
	OP_ARB:  {1, -1},
	OP_HALT: {0, -1},
}

// Valid returns true if the opcode is in the instruction set.
func (op Opcode) Valid() (ok bool) {
	_, ok = opcodeParams[op]
	return
}

// Params returns the number of parameters that follow the opcode.
func (op Opcode) Params() int {
	return opcodeParams[op][0]
}

// Writes returns true if parameter n is a write target.
func (op Opcode) Writes(n int) bool {
	info, ok := opcodeParams[op]
	return ok && info[1] == n
}

// Mode is a parameter addressing mode.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_POSITION  = Mode(0) // pos
	MODE_IMMEDIATE = Mode(1) // imm
	MODE_RELATIVE  = Mode(2) // rel
)

// Valid returns true if the mode is a known addressing mode.
func (mode Mode) Valid() bool {
	return mode >= MODE_POSITION && mode <= MODE_RELATIVE
}

// State is an execution state of the processor.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
	STATE_FAILED  = State(2) // failed
)

// CodeChannel is an IO channel index type.
type CodeChannel int

//go:generate go tool stringer -linecomment -type=CodeChannel
const (
	CHANNEL_ID_INPUT  = CodeChannel(0) // input
	CHANNEL_ID_OUTPUT = CodeChannel(1) // output
)

// Code is a single raw instruction word.
type Code int64

// MakeCode creates an instruction word from an opcode and its parameter modes.
// Missing modes are position mode.
func MakeCode(op Opcode, modes ...Mode) Code {
	word := int64(op)
	scale := int64(100)
	for _, mode := range modes {
		word += int64(mode) * scale
		scale *= 10
	}

	return Code(word)
}

// Opcode returns the operation selector of the instruction word.
// Negative words never decode to a valid opcode.
func (code Code) Opcode() Opcode {
	return Opcode(int64(code) % 100)
}

// Mode returns the addressing mode of parameter n, counting from 0.
func (code Code) Mode(n int) Mode {
	digits := int64(code) / 100
	for range n {
		digits /= 10
	}

	return Mode(digits % 10)
}

// Modes returns the addressing mode of every parameter of the instruction.
func (code Code) Modes() (modes []Mode) {
	params := code.Opcode().Params()
	modes = make([]Mode, params)
	for n := range params {
		modes[n] = code.Mode(n)
	}

	return
}

// Check verifies that the word decodes to a valid opcode, with valid modes
// for all of its parameters.
func (code Code) Check() (err error) {
	op := code.Opcode()
	if !op.Valid() {
		err = ErrOpcodeInvalid
		return
	}

	for n, mode := range code.Modes() {
		if !mode.Valid() || (mode == MODE_IMMEDIATE && op.Writes(n)) {
			err = ErrOperandInvalid
			return
		}
	}

	return
}

// String returns the decoded representation of this instruction word.
func (code Code) String() (out string) {
	op := code.Opcode()
	if !op.Valid() {
		out = fmt.Sprintf("?(%d)", int64(code))
		return
	}

	words := []string{op.String()}
	for _, mode := range code.Modes() {
		words = append(words, mode.String())
	}

	out = strings.Join(words, ".")

	return
}
