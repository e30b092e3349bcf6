package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/ezrec/intcode/internal"
)

// Tape provides sequential I/O of decimal text.
// Input values are signed integers separated by whitespace or commas;
// each output value is written on its own line.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	scanner *bufio.Scanner
	pending []string
}

var _ Channel = (*Tape)(nil)

// Receive parses the next value from the input stream.
// Returns ErrChannelEmpty at the end of input.
func (tc *Tape) Receive() (value int64, err error) {
	if tc.Input == nil {
		err = ErrChannelEmpty
		return
	}

	if tc.scanner == nil {
		tc.scanner = bufio.NewScanner(tc.Input)
		tc.scanner.Split(bufio.ScanWords)
	}

	for len(tc.pending) == 0 {
		if !tc.scanner.Scan() {
			err = tc.scanner.Err()
			if err == nil {
				err = ErrChannelEmpty
			}
			return
		}
		for token := range internal.FieldsSeq(tc.scanner.Text(), ",") {
			tc.pending = append(tc.pending, token)
		}
	}

	token := tc.pending[0]
	tc.pending = tc.pending[1:]

	value, err = strconv.ParseInt(token, 10, 64)
	if err != nil {
		err = ErrParseValue(token)
		return
	}

	return
}

// Send writes a value to the output stream, followed by a newline.
func (tc *Tape) Send(value int64) (err error) {
	if tc.Output == nil {
		err = ErrChannelInvalid
		return
	}

	_, err = fmt.Fprintln(tc.Output, value)

	return
}
