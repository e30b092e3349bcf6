// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/intcode/internal"
)

// Predefined system equates
var sysEquate = map[string]string{
	"MEMORY_DENSE_LIMIT": fmt.Sprintf("%d", MEMORY_DENSE_LIMIT),
}

// opcodeMap maps mnemonics to opcodes.
var opcodeMap = func() map[string]Opcode {
	ops := make(map[string]Opcode, len(Opcodes))
	for _, op := range Opcodes {
		ops[op.String()] = op
	}
	return ops
}()

// statement is a single line of source awaiting the second pass.
type statement struct {
	LineNo int
	Line   string
	Ip     int64
	Words  []string
}

// Assembler is a two pass assembler for Intcode.
//
// Operands are written as VALUE (position mode), #VALUE (immediate mode),
// or @VALUE (relative mode). A VALUE is an integer, a label, an equate, or a
// $(...) expression over labels and equates.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Label     map[string]int64  // Map of labels to addresses.
	Equate    map[string]string // Map of equates.

	exprs []string // $(...) expressions of the current line.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var reLabel = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
var reExpr = regexp.MustCompile(`\$\([^\$]*\)`)

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	return asm.valueOfDepth(word, 0)
}

func (asm *Assembler) valueOfDepth(word string, depth int) (value int64, err error) {
	if depth > len(asm.Equate) {
		err = ErrEquateLoop
		return
	}

	if strings.HasPrefix(word, "$") {
		index, ok := exprIndex(word)
		if ok && index < len(asm.exprs) {
			return asm.parenEval(asm.exprs[index])
		}
		err = ErrParseExpression(word)
		return
	}

	if ip, ok := asm.Label[word]; ok {
		value = ip
		return
	}

	if equate, ok := asm.Equate[word]; ok {
		return asm.valueOfDepth(equate, depth+1)
	}

	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		if reLabel.MatchString(word) {
			err = ErrLabelMissing(word)
		} else {
			err = ErrParseNumber(word)
		}
		return
	}

	return
}

// exprIndex returns the index of a $N expression word.
func exprIndex(word string) (index int, ok bool) {
	if !strings.HasPrefix(word, "$") {
		return
	}

	index, err := strconv.Atoi(word[1:])
	ok = err == nil && index >= 0
	return
}

// resolveEquates evaluates every $(...) equate, which may refer to labels
// and to other equates.
func (asm *Assembler) resolveEquates() (err error) {
	var unresolved []string
	for _, key := range slices.Sorted(maps.Keys(asm.Equate)) {
		value := asm.Equate[key]
		if strings.HasPrefix(value, "$(") && strings.HasSuffix(value, ")") {
			unresolved = append(unresolved, key)
		}
	}

	for len(unresolved) > 0 {
		var next []string
		for _, key := range unresolved {
			value := asm.Equate[key]
			asm.exprs = []string{value[2 : len(value)-1]}
			var resolved int64
			resolved, err = asm.valueOf("$0")
			if err != nil {
				next = append(next, key)
				continue
			}
			asm.Equate[key] = fmt.Sprintf("%d", resolved)
		}
		if len(next) == len(unresolved) {
			return
		}
		unresolved = next
		err = nil
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(key)
		if err != nil {
			// Ignore equates that are not integers.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt64(ip)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// splitLine splits a line into words, after removing the comment.
// Each $(...) expression becomes a single $N word.
func (asm *Assembler) splitLine(text string) (words []string) {
	line := strings.TrimSpace(strings.SplitN(text, ";", 2)[0])

	asm.exprs = asm.exprs[:0]
	line = reExpr.ReplaceAllStringFunc(line, func(str string) string {
		asm.exprs = append(asm.exprs, str[2:len(str)-1])
		return fmt.Sprintf("$%d", len(asm.exprs)-1)
	})

	for word := range internal.FieldsSeq(line, ",") {
		words = append(words, word)
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int64, 16)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	var ip int64
	var pending []statement

	// First pass: assign addresses to labels.
	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		words := asm.splitLine(line)

		for len(words) > 0 && strings.HasSuffix(words[0], ":") {
			label := words[0][:len(words[0])-1]
			if !reLabel.MatchString(label) {
				err = ErrLabelInvalid
				return
			}
			_, ok := asm.Label[label]
			if ok {
				err = ErrLabelDuplicate
				return
			}
			asm.Label[label] = ip
			words = words[1:]
		}

		if len(words) == 0 {
			continue
		}

		// .equ CONST VALUE
		if words[0] == ".equ" {
			if len(words) != 3 || !reLabel.MatchString(words[1]) {
				err = ErrEquateSyntax
				return
			}
			_, ok := asm.Equate[words[1]]
			if ok {
				err = ErrEquateDuplicate
				return
			}
			value := words[2]
			index, ok := exprIndex(value)
			if ok && index < len(asm.exprs) {
				value = "$(" + asm.exprs[index] + ")"
			}
			asm.Equate[words[1]] = value
			continue
		}

		var size int64
		switch words[0] {
		case ".data":
			size = int64(len(words) - 1)
			if size == 0 {
				err = ErrDataMissing
				return
			}
		default:
			op, ok := opcodeMap[words[0]]
			if !ok {
				err = ErrOpcodeUnknown
				return
			}
			if len(words)-1 != op.Params() {
				err = ErrOperandCount
				return
			}
			size = int64(1 + op.Params())
		}

		pending = append(pending, statement{LineNo: lineno, Line: line, Ip: ip, Words: words})
		ip += size
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	err = asm.resolveEquates()
	if err != nil {
		return
	}

	prog = &Program{}

	// Second pass: emit words.
	for _, stmt := range pending {
		lineno = stmt.LineNo
		line = stmt.Line

		words := asm.splitLine(line)
		for strings.HasSuffix(words[0], ":") {
			words = words[1:]
		}

		var codes []int64
		codes, err = asm.parseWords(words)
		if err != nil {
			prog = nil
			return
		}

		prog.Words = append(prog.Words, codes...)
		prog.Source = append(prog.Source, Source{
			LineNo: stmt.LineNo,
			Ip:     stmt.Ip,
			Words:  slices.Clone(stmt.Words),
			Codes:  codes,
		})
	}

	return
}

// parseWords evaluates the words of a statement into memory words.
func (asm *Assembler) parseWords(words []string) (codes []int64, err error) {
	if words[0] == ".data" {
		for _, word := range words[1:] {
			var value int64
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			codes = append(codes, value)
		}
		return
	}

	op := opcodeMap[words[0]]

	var modes []Mode
	var operands []int64
	for n, word := range words[1:] {
		mode := MODE_POSITION
		switch word[0] {
		case '#':
			mode = MODE_IMMEDIATE
			word = word[1:]
		case '@':
			mode = MODE_RELATIVE
			word = word[1:]
		}

		if mode == MODE_IMMEDIATE && op.Writes(n) {
			err = errors.Join(ErrOperandInvalid, errOpcodeArg[n])
			return
		}

		var value int64
		value, err = asm.valueOf(word)
		if err != nil {
			return
		}

		modes = append(modes, mode)
		operands = append(operands, value)
	}

	codes = append([]int64{int64(MakeCode(op, modes...))}, operands...)

	return
}
