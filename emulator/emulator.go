// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator drives a single Intcode machine from load to halt.
package emulator

import (
	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/io"
	"github.com/ezrec/intcode/translate"
)

// Emulator state. CPU + program listing + IO channels.
//
// An emulator executes at most once; build a fresh one for every run.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the loaded program listing.

	spent bool // Set once execution has started.
}

// NewEmulator creates a new emulator from comma-separated program text.
func NewEmulator(text string) (emu *Emulator, err error) {
	prog, err := cpu.ParseProgramString(text)
	if err != nil {
		return
	}

	emu = NewEmulatorProgram(prog)
	return
}

// NewEmulatorProgram creates a new emulator from a parsed or assembled
// program. The program image is copied, and never modified.
func NewEmulatorProgram(prog *cpu.Program) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(prog.Binary()),
		Program: prog,
	}

	return
}

// SetInput attaches the input channel.
func (emu *Emulator) SetInput(channel io.Channel) {
	emu.Cpu.SetChannel(cpu.CHANNEL_ID_INPUT, channel)
}

// SetOutput attaches the output channel.
func (emu *Emulator) SetOutput(channel io.Channel) {
	emu.Cpu.SetChannel(cpu.CHANNEL_ID_OUTPUT, channel)
}

// Ticks returns the count of instructions retired.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int64 {
	return emu.Cpu.Ip
}

// RelativeBase returns the current relative base register.
func (emu *Emulator) RelativeBase() int64 {
	return emu.Cpu.Rb
}

// Dump returns a copy of the dense memory image.
func (emu *Emulator) Dump() []int64 {
	return emu.Cpu.Memory.Words()
}

// Code returns the instruction word at the instruction pointer.
func (emu *Emulator) Code() cpu.Code {
	code, _ := emu.Cpu.FetchCode()
	return code
}

// LineNo returns the source line number of the executing instruction, or
// zero if the program has no source listing for it.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Ip)
	if dbg.Source == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
// Returns done once the machine has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.spent = true

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.State == cpu.STATE_HALTED {
		done = true
		return
	}

	ip := emu.Cpu.Ip
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	if emu.Cpu.State == cpu.STATE_HALTED {
		if emu.Verbose {
			translate.Logf("halted at ip %d after %d ticks", emu.Cpu.Ip, emu.Cpu.Ticks)
		}
		done = true
	}

	return
}

// Run executes the program from its first instruction until it halts,
// receiving inputs strictly in order. Returns every output value, in order.
// On failure, the outputs produced before the fault are returned with the
// error.
func (emu *Emulator) Run(inputs []int64) (outputs []int64, err error) {
	if emu.spent {
		err = ErrSpent
		return
	}

	input := io.NewQueue(inputs...)
	output := &io.Queue{}

	emu.SetInput(input)
	emu.SetOutput(output)

	if emu.Verbose {
		translate.Logf("run: %d words, %d inputs", len(emu.Program.Words), len(inputs))
	}

	defer func() {
		outputs = output.Values()
		if err != nil && emu.Verbose {
			translate.Logf("failed: %v", err)
		}
	}()

	err = emu.Continue()

	return
}

// Continue runs until the machine halts or fails, with channels attached by
// SetInput and SetOutput.
func (emu *Emulator) Continue() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}
