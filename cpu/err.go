package cpu

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted         = errors.New(f("halted"))
	ErrFailed         = errors.New(f("failed"))
	ErrAddress        = errors.New(f("address invalid"))
	ErrInputExhausted = errors.New(f("input exhausted"))
	ErrChannelInvalid = errors.New(f("channel invalid"))

	// Instruction decode errors
	ErrOpcodeInvalid  = errors.New(f("opcode invalid"))
	ErrOperandInvalid = errors.New(f("operand invalid"))
	ErrOpcodeArg1     = errors.New(f("arg1"))
	ErrOpcodeArg2     = errors.New(f("arg2"))
	ErrOpcodeArg3     = errors.New(f("arg3"))

	// Loader errors
	ErrProgramFormat = errors.New(f("program format"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrEquateLoop      = errors.New(f(".equ refers to itself"))
	ErrDataMissing     = errors.New(f(".data without values"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelInvalid    = errors.New(f("label invalid"))
	ErrOpcodeUnknown   = errors.New(f("opcode unknown"))
	ErrOperandCount    = errors.New(f("operand count"))
)

// errOpcodeArg maps a parameter index to its error.
var errOpcodeArg = [...]error{ErrOpcodeArg1, ErrOpcodeArg2, ErrOpcodeArg3}

// ErrOpcode identifies the instruction that faulted.
type ErrOpcode struct {
	Ip   int64
	Code Code
}

func (eo ErrOpcode) Error() string {
	return f("bad opcode %d (%v) at ip %d", int64(eo.Code), eo.Code.String(), eo.Ip)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAddressValue is a negative memory address.
type ErrAddressValue int64

func (ea ErrAddressValue) Error() string {
	return f("address %d", int64(ea))
}

func (ea ErrAddressValue) Unwrap() error {
	return ErrAddress
}

// ErrProgramToken is a program text token that is not a signed integer.
type ErrProgramToken struct {
	Index int
	Token string
}

func (err ErrProgramToken) Error() string {
	return f("token %d '%v' is not a number", err.Index, err.Token)
}

func (err ErrProgramToken) Unwrap() error {
	return ErrProgramFormat
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
