// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/emulator"
	"github.com/ezrec/intcode/io"
)

func main() {
	var program string
	var compile string
	var input string
	var output string
	var list bool
	var assemble bool
	var verbose bool

	asm := &cpu.Assembler{}

	flag.StringVar(&program, "p", "", "Intcode program file (comma-separated integers)")
	flag.StringVar(&compile, "c", "", "Assembly source file to compile")
	flag.StringVar(&input, "i", "-", "Tape input")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.BoolVar(&list, "l", false, "List (disassemble) the program, do not execute")
	flag.BoolVar(&assemble, "a", false, "Print the program text, do not execute")
	flag.Func("D", "Predefine an assembler equate, as NAME=VALUE", func(define string) (err error) {
		name, value, ok := strings.Cut(define, "=")
		if !ok || len(name) == 0 {
			err = errors.New("expected NAME=VALUE")
			return
		}
		asm.Predefine(name, value)
		return
	})
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if (len(program) == 0) == (len(compile) == 0) {
		log.Fatalf("%v: Exactly one of -p or -c is required", os.Args[0])
	}

	var prog *cpu.Program

	if len(program) != 0 {
		inf, err := os.Open(program)
		if err != nil {
			log.Fatalf("%v: %v", program, err)
		}
		defer inf.Close()

		prog, err = cpu.ParseProgram(inf)
		if err != nil {
			log.Fatalf("%v: %v", program, err)
		}
	}

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm.Verbose = verbose
		prog, err = asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	}

	tape := &io.Tape{}

	if output == "-" {
		tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		tape.Output = ouf
	}

	switch {
	case list:
		err := prog.Disassemble(tape.Output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	case assemble:
		_, err := fmt.Fprintln(tape.Output, prog.String())
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if input == "-" {
		tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		tape.Input = inf
	}

	emu := emulator.NewEmulatorProgram(prog)
	emu.Verbose = verbose
	emu.SetInput(tape)
	emu.SetOutput(tape)

	err := emu.Continue()
	if err != nil {
		log.Print(emu.Cpu.String())
		log.Fatal(err)
	}
}
