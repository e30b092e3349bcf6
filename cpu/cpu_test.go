package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/intcode/io"
)

const tickLimit = 100000

// runCpu runs a program text to completion, or to its first error.
func runCpu(t *testing.T, text string, inputs ...int64) (cpu *Cpu, output *io.Queue, err error) {
	t.Helper()

	prog, err := ParseProgramString(text)
	require.NoError(t, err)

	cpu = NewCpu(prog.Binary())
	output = &io.Queue{}
	cpu.SetChannel(CHANNEL_ID_INPUT, io.NewQueue(inputs...))
	cpu.SetChannel(CHANNEL_ID_OUTPUT, output)

	for cpu.State == STATE_RUNNING {
		if cpu.Ticks > tickLimit {
			t.Fatalf("%v: no halt after %d ticks\n%v", text, tickLimit, cpu.String())
		}
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

func TestCpuMemory(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		program  string
		expected []int64
	}){
		{"add", "1,0,0,0,99", []int64{2, 0, 0, 0, 99}},
		{"mul", "2,3,0,3,99", []int64{2, 3, 0, 6, 99}},
		{"mul_grow", "2,4,4,5,99,0", []int64{2, 4, 4, 5, 99, 9801}},
		{"rewrite_halt", "1,1,1,4,99,5,6,0,99", []int64{30, 1, 1, 4, 2, 5, 6, 0, 99}},
		{"arith", "1,9,10,3,2,3,11,0,99,30,40,50", []int64{3500, 9, 10, 70, 2, 3, 11, 0, 99, 30, 40, 50}},
		{"immediate", "1002,4,3,4,33", []int64{1002, 4, 3, 4, 99}},
		{"negative", "1101,100,-1,4,0", []int64{1101, 100, -1, 4, 99}},
		{"relative_write", "109,10,21101,3,4,0,99", []int64{109, 10, 21101, 3, 4, 0, 99, 0, 0, 0, 7}},
	}

	for _, entry := range table {
		cpu, _, err := runCpu(t, entry.program)
		assert.NoError(err, entry.name)
		assert.Equal(STATE_HALTED, cpu.State, entry.name)
		assert.Equal(entry.expected, cpu.Memory.Words(), entry.name)
	}
}

func TestCpuOutput(t *testing.T) {
	assert := assert.New(t)

	quine := "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"
	compare := "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31,1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104,999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"

	table := [](struct {
		name     string
		program  string
		inputs   []int64
		expected []int64
	}){
		{"relative_base", "109,1,204,-1,99", nil, []int64{109}},
		{"large", "104,1125899906842624,99", nil, []int64{1125899906842624}},
		{"large_mul", "1102,34915192,34915192,7,4,7,99,0", nil, []int64{1219070632396864}},
		{"quine", quine, nil, []int64{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}},
		{"echo", "3,0,4,0,99", []int64{-42}, []int64{-42}},
		{"echo_relative", "109,100,203,0,204,0,99", []int64{17}, []int64{17}},
		{"eq_pos_8", "3,9,8,9,10,9,4,9,99,-1,8", []int64{8}, []int64{1}},
		{"eq_pos_7", "3,9,8,9,10,9,4,9,99,-1,8", []int64{7}, []int64{0}},
		{"lt_pos_7", "3,9,7,9,10,9,4,9,99,-1,8", []int64{7}, []int64{1}},
		{"lt_pos_8", "3,9,7,9,10,9,4,9,99,-1,8", []int64{8}, []int64{0}},
		{"eq_imm_8", "3,3,1108,-1,8,3,4,3,99", []int64{8}, []int64{1}},
		{"eq_imm_9", "3,3,1108,-1,8,3,4,3,99", []int64{9}, []int64{0}},
		{"lt_imm_3", "3,3,1107,-1,8,3,4,3,99", []int64{3}, []int64{1}},
		{"lt_imm_8", "3,3,1107,-1,8,3,4,3,99", []int64{8}, []int64{0}},
		{"jz_pos_0", "3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", []int64{0}, []int64{0}},
		{"jz_pos_5", "3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", []int64{5}, []int64{1}},
		{"jnz_imm_0", "3,3,1105,-1,9,1101,0,0,12,4,12,99,1", []int64{0}, []int64{0}},
		{"jnz_imm_5", "3,3,1105,-1,9,1101,0,0,12,4,12,99,1", []int64{5}, []int64{1}},
		{"compare_below", compare, []int64{7}, []int64{999}},
		{"compare_equal", compare, []int64{8}, []int64{1000}},
		{"compare_above", compare, []int64{9}, []int64{1001}},
		{"inputs_in_order", "3,0,3,1,4,1,4,0,99", []int64{5, 6}, []int64{6, 5}},
	}

	for _, entry := range table {
		_, output, err := runCpu(t, entry.program, entry.inputs...)
		assert.NoError(err, entry.name)
		assert.Equal(entry.expected, output.Values(), entry.name)
	}
}

func TestCpuSelfModify(t *testing.T) {
	assert := assert.New(t)

	// The add rewrites the word at address 4 into a halt before it is fetched.
	cpu, _, err := runCpu(t, "1101,0,99,4,1,0")
	assert.NoError(err)
	assert.Equal(STATE_HALTED, cpu.State)
	assert.Equal(int64(4), cpu.Ip)
	assert.Equal(2, cpu.Ticks)
	assert.Equal([]int64{1101, 0, 99, 4, 99, 0}, cpu.Memory.Words())

	// The add rewrites the operand of the following output.
	_, output, err := runCpu(t, "1101,42,0,5,104,0,99")
	assert.NoError(err)
	assert.Equal([]int64{42}, output.Values())
}

func TestCpuRelativeBase(t *testing.T) {
	assert := assert.New(t)

	cpu, _, err := runCpu(t, "109,19,109,-4,204,-15,99")
	assert.NoError(err)
	assert.Equal(int64(15), cpu.Rb)
}

func TestCpuErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program string
		ip      int64
		errs    []error
	}){
		{"invalid_opcode", "98", 0, []error{ErrOpcodeInvalid}},
		{"invalid_negative", "1101,-1,0,4,0", 4, []error{ErrOpcodeInvalid}},
		{"invalid_after_jump", "1105,1,3,0", 3, []error{ErrOpcodeInvalid}},
		{"immediate_dst", "11101,1,1,0,99", 0, []error{ErrOperandInvalid, ErrOpcodeArg3}},
		{"immediate_in", "103,0,99", 0, []error{ErrOperandInvalid, ErrOpcodeArg1}},
		{"unknown_mode", "301,0,0,0,99", 0, []error{ErrOperandInvalid, ErrOpcodeArg1}},
		{"negative_read", "1,-1,0,0,99", 0, []error{ErrAddress, ErrOpcodeArg1}},
		{"negative_write", "109,-5,21101,1,1,0,99", 2, []error{ErrAddress, ErrOpcodeArg3}},
		{"negative_relative_read", "109,-5,204,0,99", 2, []error{ErrAddress, ErrOpcodeArg1}},
		{"negative_jump", "1105,1,-3", -3, []error{ErrAddress}},
		{"input_exhausted", "3,0,99", 0, []error{ErrInputExhausted, io.ErrChannelEmpty}},
	}

	for _, entry := range table {
		cpu, _, err := runCpu(t, entry.program)
		assert.Error(err, entry.name)
		assert.ErrorIs(err, ErrOpcode{}, entry.name)
		for _, expected := range entry.errs {
			assert.ErrorIs(err, expected, entry.name)
		}
		assert.Equal(STATE_FAILED, cpu.State, entry.name)

		var eo ErrOpcode
		if assert.True(errors.As(err, &eo), entry.name) {
			assert.Equal(entry.ip, eo.Ip, entry.name)
		}

		err = cpu.Tick()
		assert.Equal(ErrFailed, err, entry.name)
	}
}

func TestCpuInputExhausted_KeepsOutput(t *testing.T) {
	assert := assert.New(t)

	cpu, output, err := runCpu(t, "104,1,3,0,104,2,99")
	assert.ErrorIs(err, ErrInputExhausted)
	assert.Equal([]int64{1}, output.Values())
	assert.Equal(int64(2), cpu.Ip)
}

func TestCpuHalted(t *testing.T) {
	assert := assert.New(t)

	cpu, _, err := runCpu(t, "99")
	assert.NoError(err)
	assert.Equal(STATE_HALTED, cpu.State)
	assert.Equal(int64(0), cpu.Ip)
	assert.Equal(1, cpu.Ticks)

	assert.Equal(ErrHalted, cpu.Tick())
	assert.Equal(1, cpu.Ticks)
}

func TestCpuChannel_Missing(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu([]int64{104, 1, 99})
	err := cpu.Tick()
	assert.ErrorIs(err, ErrChannelInvalid)

	cpu = NewCpu([]int64{3, 0, 99})
	err = cpu.Tick()
	assert.ErrorIs(err, ErrChannelInvalid)
	assert.NotErrorIs(err, ErrInputExhausted)

	_, err = cpu.GetChannel(CodeChannel(5))
	assert.Equal(ErrChannelInvalid, err)
}

func TestCpuChannel_OutputFull(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu([]int64{104, 1, 104, 2, 99})
	output := &io.Queue{Capacity: 1}
	cpu.SetChannel(CHANNEL_ID_OUTPUT, output)

	assert.NoError(cpu.Tick())
	err := cpu.Tick()
	assert.ErrorIs(err, io.ErrChannelFull)
	assert.Equal(STATE_FAILED, cpu.State)
	assert.Equal([]int64{1}, output.Values())
}

func TestCpuIndependent(t *testing.T) {
	assert := assert.New(t)

	prog, err := ParseProgramString("3,9,8,9,10,9,4,9,99,-1,8")
	assert.NoError(err)

	first := NewCpu(prog.Binary())
	second := NewCpu(prog.Binary())

	assert.NoError(first.Memory.Write(9, 1234))
	value, err := second.Memory.Read(9)
	assert.NoError(err)
	assert.Equal(int64(-1), value)
	assert.Equal(int64(-1), prog.Words[9])
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu([]int64{1002, 4, 3, 4, 33})
	text := cpu.String()
	assert.Contains(text, "   ip: 0\n")
	assert.Contains(text, "state: running\n")
	assert.Contains(text, " code: mul.pos.imm.pos\n")

	cpu.Ip = -1
	assert.Contains(cpu.String(), " code: ----\n")
}
