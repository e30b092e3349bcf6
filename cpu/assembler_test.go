package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/intcode/io"
)

func assemble(t *testing.T, program []string) (prog *Program, err error) {
	t.Helper()

	asm := &Assembler{}
	return asm.Parse(strings.NewReader(strings.Join(program, "\n")))
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Words))
	assert.Equal(0, len(prog.Source))

	assert.Equal("1048576", asm.Equate["MEMORY_DENSE_LIMIT"])
}

func TestAssemblerEcho(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"; echo numbers until a zero",
		".equ ZERO 0",
		"start:",
		"    in value",
		"    jz value, #done",
		"    out value",
		"    jz #ZERO, #start",
		"done:  halt",
		"value: .data 0",
	}

	prog, err := assemble(t, program)
	require.NoError(t, err)

	assert.Equal([]int64{3, 11, 1006, 11, 10, 4, 11, 1106, 0, 0, 99, 0}, prog.Words)

	expected := []Source{
		{4, 0, []string{"in", "value"}, []int64{3, 11}},
		{5, 2, []string{"jz", "value", "#done"}, []int64{1006, 11, 10}},
		{6, 5, []string{"out", "value"}, []int64{4, 11}},
		{7, 7, []string{"jz", "#ZERO", "#start"}, []int64{1106, 0, 0}},
		{8, 10, []string{"halt"}, []int64{99}},
		{9, 11, []string{".data", "0"}, []int64{0}},
	}
	assert.Equal(expected, prog.Source)

	// Run the result.
	cpu := NewCpu(prog.Binary())
	output := &io.Queue{}
	cpu.SetChannel(CHANNEL_ID_INPUT, io.NewQueue(5, -3, 0, 8))
	cpu.SetChannel(CHANNEL_ID_OUTPUT, output)
	for cpu.State == STATE_RUNNING {
		require.NoError(t, cpu.Tick())
	}
	assert.Equal([]int64{5, -3}, output.Values())
}

func TestAssemblerModes(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"arb #10",
		"add @1, #-2, @3",
		"mul 0x10, 7, 8",
		"lt #1, @0, 100",
		"eq 1, 2, @-3",
		"jnz @1, 2",
		"out #'a'", // not a number
	}

	prog, err := assemble(t, program[:len(program)-1])
	require.NoError(t, err)

	assert.Equal([]int64{
		109, 10,
		21201, 1, -2, 3,
		2, 16, 7, 8,
		2107, 1, 0, 100,
		20008, 1, 2, -3,
		205, 1, 2,
	}, prog.Words)

	_, err = assemble(t, program)
	assert.ErrorIs(err, ErrParseNumber("'a'"))
}

func TestAssemblerExpression(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ NEXT $(BASE + 1)",
		".equ BASE $(2 * 50)",
		"    arb #BASE",
		"    out #$(NEXT * 2)",
		"    out $(end - 1)",
		"    halt",
		"end:",
		"    .data $(len([1, 2, 3])), NEXT, BASE_NEG",
		".equ BASE_NEG 5",
	}

	prog, err := assemble(t, program)
	require.NoError(t, err)

	assert.Equal([]int64{109, 100, 104, 202, 4, 6, 99, 3, 101, 5}, prog.Words)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("COUNT", "5")
	asm.Predefine("COUNT", "6")
	asm.Predefine("TWICE", "$(COUNT * 2)")

	prog, err := asm.Parse(strings.NewReader("out #COUNT\nout #TWICE\nhalt"))
	assert.NoError(err)
	assert.Equal([]int64{104, 6, 104, 12, 99}, prog.Words)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"unknown", []string{"halt", "bogus 1"}, 2, ErrOpcodeUnknown},
		{"few", []string{"add 1, 2"}, 1, ErrOperandCount},
		{"many", []string{"halt 1"}, 1, ErrOperandCount},
		{"immediate_dst", []string{"add 1, 2, #3"}, 1, ErrOperandInvalid},
		{"immediate_in", []string{"in #3"}, 1, ErrOpcodeArg1},
		{"label_missing", []string{"jz 1, #nowhere"}, 1, ErrLabelMissing("nowhere")},
		{"label_duplicate", []string{"a: halt", "a:"}, 2, ErrLabelDuplicate},
		{"label_invalid", []string{"9lives: halt"}, 1, ErrLabelInvalid},
		{"equ_duplicate", []string{".equ X 1", ".equ X 2"}, 2, ErrEquateDuplicate},
		{"equ_syntax", []string{".equ X"}, 1, ErrEquateSyntax},
		{"equ_loop", []string{".equ A B", ".equ B A", "out #A"}, 3, ErrEquateLoop},
		{"data_missing", []string{".data"}, 1, ErrDataMissing},
		{"expression", []string{"out #$(1 +)"}, 1, ErrParseExpression("1 +")},
		{"number", []string{"out #1z"}, 1, ErrParseNumber("1z")},
	}

	for _, entry := range table {
		prog, err := assemble(t, entry.program)
		assert.Nil(prog, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
			assert.Equal(entry.program[entry.lineno-1], syntax.Line, entry.name)
		}
	}
}
