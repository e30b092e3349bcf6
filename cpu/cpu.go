package cpu

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ezrec/intcode/io"
)

// Channel is an I/O channel interface.
type Channel io.Channel

// Cpu is the simulation context for one Intcode processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory *Memory // Program and data memory.
	Ip     int64   // Current instruction pointer.
	Rb     int64   // Relative base register.
	State  State   // Current execution state.

	Ticks int // Instructions retired.

	channel [2]Channel // IO channels.
}

// NewCpu creates a new CPU whose memory holds a copy of image.
func NewCpu(image []int64) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: NewMemory(image),
	}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"ip", "rb", "state", "ticks", "code"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "ip":
			strval = fmt.Sprintf("%d", cpu.Ip)
		case "rb":
			strval = fmt.Sprintf("%d", cpu.Rb)
		case "state":
			strval = cpu.State.String()
		case "ticks":
			strval = fmt.Sprintf("%d", cpu.Ticks)
		case "code":
			word, err := cpu.Memory.Read(cpu.Ip)
			if err != nil {
				strval = "----"
			} else {
				strval = Code(word).String()
			}
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// SetChannel sets a channel index to a channel simulation model.
func (cpu *Cpu) SetChannel(index CodeChannel, channel Channel) {
	cpu.channel[int(index)] = channel
}

// GetChannel gets the channel simulation model by index.
func (cpu *Cpu) GetChannel(ch CodeChannel) (channel Channel, err error) {
	index := int(ch)
	if index < 0 || index >= len(cpu.channel) || cpu.channel[index] == nil {
		err = ErrChannelInvalid
		return
	}

	channel = cpu.channel[index]
	return
}

// FetchCode fetches the instruction word at the instruction pointer.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	word, err := cpu.Memory.Read(cpu.Ip)
	if err != nil {
		return
	}

	code = Code(word)
	return
}

// Tick executes a single CPU instruction cycle.
// Once the CPU has halted every Tick returns ErrHalted, and once it has
// failed every Tick returns ErrFailed.
func (cpu *Cpu) Tick() (err error) {
	switch cpu.State {
	case STATE_HALTED:
		err = ErrHalted
		return
	case STATE_FAILED:
		err = ErrFailed
		return
	}

	defer func() {
		if err != nil {
			cpu.State = STATE_FAILED
		}
	}()

	code, err := cpu.FetchCode()
	if err != nil {
		err = errors.Join(ErrOpcode{Ip: cpu.Ip, Code: code}, err)
		return
	}

	err = cpu.Execute(code)

	return
}

// Execute executes a single decoded instruction located at the instruction
// pointer. Its parameters are read from the words that follow it.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Ip: cpu.Ip, Code: code}, err)
		}
	}()

	op := code.Opcode()
	if !op.Valid() {
		err = ErrOpcodeInvalid
		return
	}

	if cpu.Verbose {
		var args []string
		for n := range op.Params() {
			arg, _ := cpu.Memory.Read(cpu.Ip + 1 + int64(n))
			args = append(args, fmt.Sprintf("%d", arg))
		}
		log.Printf("%04d: %v %v (rb %d)", cpu.Ip, code, strings.Join(args, ","), cpu.Rb)
	}

	next_ip := cpu.Ip + 1 + int64(op.Params())

	switch op {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		var a, b, dst int64
		a, err = cpu.getValue(code, 0)
		if err != nil {
			return
		}
		b, err = cpu.getValue(code, 1)
		if err != nil {
			return
		}
		dst, err = cpu.getAddress(code, 2)
		if err != nil {
			return
		}
		err = cpu.Memory.Write(dst, cpu.doAlu(op, a, b))
		if err != nil {
			err = errors.Join(ErrOpcodeArg3, err)
			return
		}
	case OP_IN:
		var dst, value int64
		dst, err = cpu.getAddress(code, 0)
		if err != nil {
			return
		}
		var channel Channel
		channel, err = cpu.GetChannel(CHANNEL_ID_INPUT)
		if err != nil {
			return
		}
		value, err = channel.Receive()
		if errors.Is(err, io.ErrChannelEmpty) {
			err = errors.Join(ErrInputExhausted, err)
			return
		}
		if err != nil {
			return
		}
		err = cpu.Memory.Write(dst, value)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
	case OP_OUT:
		var value int64
		value, err = cpu.getValue(code, 0)
		if err != nil {
			return
		}
		var channel Channel
		channel, err = cpu.GetChannel(CHANNEL_ID_OUTPUT)
		if err != nil {
			return
		}
		err = channel.Send(value)
		if err != nil {
			return
		}
	case OP_JNZ, OP_JZ:
		var value, target int64
		value, err = cpu.getValue(code, 0)
		if err != nil {
			return
		}
		target, err = cpu.getValue(code, 1)
		if err != nil {
			return
		}
		if (value != 0) == (op == OP_JNZ) {
			next_ip = target
		}
	case OP_ARB:
		var value int64
		value, err = cpu.getValue(code, 0)
		if err != nil {
			return
		}
		cpu.Rb += value
	case OP_HALT:
		next_ip = cpu.Ip
		cpu.State = STATE_HALTED
	}

	cpu.Ip = next_ip
	cpu.Ticks += 1

	return
}

// operand returns the raw word of parameter n, and its addressing mode.
func (cpu *Cpu) operand(code Code, n int) (word int64, mode Mode, err error) {
	mode = code.Mode(n)
	if !mode.Valid() {
		err = ErrOperandInvalid
		return
	}

	word, err = cpu.Memory.Read(cpu.Ip + 1 + int64(n))
	return
}

// getValue resolves the value of parameter n of the instruction.
func (cpu *Cpu) getValue(code Code, n int) (value int64, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(errOpcodeArg[n], err)
		}
	}()

	word, mode, err := cpu.operand(code, n)
	if err != nil {
		return
	}

	switch mode {
	case MODE_POSITION:
		value, err = cpu.Memory.Read(word)
	case MODE_IMMEDIATE:
		value = word
	case MODE_RELATIVE:
		value, err = cpu.Memory.Read(cpu.Rb + word)
	}

	return
}

// getAddress resolves parameter n of the instruction as a write target.
func (cpu *Cpu) getAddress(code Code, n int) (addr int64, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(errOpcodeArg[n], err)
		}
	}()

	word, mode, err := cpu.operand(code, n)
	if err != nil {
		return
	}

	switch mode {
	case MODE_POSITION:
		addr = word
	case MODE_RELATIVE:
		addr = cpu.Rb + word
	default:
		err = ErrOperandInvalid
		return
	}

	if addr < 0 {
		err = ErrAddressValue(addr)
		return
	}

	return
}

// doAlu performs the requested ALU action, and returns the output value.
func (cpu *Cpu) doAlu(op Opcode, a int64, b int64) (output int64) {
	switch op {
	case OP_ADD: // add
		output = a + b
	case OP_MUL: // mul
		output = a * b
	case OP_LT: // lt
		if a < b {
			output = 1
		}
	case OP_EQ: // eq
		if a == b {
			output = 1
		}
	}

	return
}
