package io

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelEmpty   = errors.New(f("channel empty"))
	ErrChannelFull    = errors.New(f("channel full"))
	ErrChannelInvalid = errors.New(f("channel invalid"))
)

// ErrParseValue is a tape token that is not a signed integer.
type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value", string(err))
}
