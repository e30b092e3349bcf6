package cpu

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/intcode/internal"
)

// Source is a line of assembled code with its location and generated words.
type Source struct {
	LineNo int
	Ip     int64
	Words  []string
	Codes  []int64
}

// Program is an initial memory image, with an optional source listing.
type Program struct {
	Words  []int64
	Source []Source
}

type Debug struct {
	*Source
	Index int
}

// ParseProgram reads comma-separated signed decimal integers from input.
func ParseProgram(input io.Reader) (prog *Program, err error) {
	text, err := io.ReadAll(input)
	if err != nil {
		return
	}

	return ParseProgramString(string(text))
}

// ParseProgramString parses comma-separated signed decimal integers.
// Whitespace around the text and around each token is ignored.
func ParseProgramString(text string) (prog *Program, err error) {
	text = strings.TrimSpace(text)

	var words []int64
	for n, token := range internal.SplitSeq(text, ",") {
		var word int64
		word, err = strconv.ParseInt(token, 10, 64)
		if err != nil {
			err = ErrProgramToken{Index: n, Token: token}
			return
		}
		words = append(words, word)
	}

	prog = &Program{
		Words: words,
	}

	return
}

// String returns the program image as comma-separated text.
func (prog *Program) String() string {
	tokens := make([]string, len(prog.Words))
	for n, word := range prog.Words {
		tokens[n] = strconv.FormatInt(word, 10)
	}

	return strings.Join(tokens, ",")
}

// Binary returns a copy of the memory image.
func (prog *Program) Binary() []int64 {
	return slices.Clone(prog.Words)
}

// Debug returns the source line that generated the word at ip.
func (prog *Program) Debug(ip int64) (dbg Debug) {
	for n, src := range prog.Source {
		if ip >= src.Ip && ip < src.Ip+int64(len(src.Codes)) {
			dbg = Debug{
				Source: &prog.Source[n],
				Index:  int(ip - src.Ip),
			}
			break
		}
	}

	return
}

// Instruction is a decoded instruction, or a raw data word.
type Instruction struct {
	Code     Code
	Operands []int64
	Data     bool
}

// Len returns the number of words occupied by the instruction.
func (inst Instruction) Len() int {
	return 1 + len(inst.Operands)
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() string {
	if inst.Data {
		return fmt.Sprintf(".data %d", int64(inst.Code))
	}

	op := inst.Code.Opcode()
	args := make([]string, len(inst.Operands))
	for n, operand := range inst.Operands {
		var prefix string
		switch inst.Code.Mode(n) {
		case MODE_IMMEDIATE:
			prefix = "#"
		case MODE_RELATIVE:
			prefix = "@"
		}
		args[n] = fmt.Sprintf("%v%d", prefix, operand)
	}

	if len(args) == 0 {
		return op.String()
	}

	return op.String() + " " + strings.Join(args, ", ")
}

// Codes sweeps the program image from address 0, yielding each instruction
// and its address. Words that do not decode, and instructions truncated by
// the end of the image, are yielded as data.
func (prog *Program) Codes() iter.Seq2[int64, Instruction] {
	return func(yield func(ip int64, inst Instruction) bool) {
		for ip := 0; ip < len(prog.Words); {
			code := Code(prog.Words[ip])
			inst := Instruction{Code: code}
			params := code.Opcode().Params()
			switch {
			case code.Check() != nil, ip+params >= len(prog.Words):
				inst.Data = true
			case MakeCode(code.Opcode(), code.Modes()...) != code:
				// Surplus mode digits would not survive reassembly.
				inst.Data = true
			default:
				inst.Operands = slices.Clone(prog.Words[ip+1 : ip+1+params])
			}

			if !yield(int64(ip), inst) {
				return
			}
			ip += inst.Len()
		}
	}
}

// Disassemble writes an assembly listing of the program to output.
// The listing assembles back to the same image.
func (prog *Program) Disassemble(output io.Writer) (err error) {
	for ip, inst := range prog.Codes() {
		_, err = fmt.Fprintf(output, "%-24v ; %04d\n", inst.String(), ip)
		if err != nil {
			return
		}
	}

	return
}
