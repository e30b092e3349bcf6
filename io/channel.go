// Package io provides the word-level I/O channels attached to an Intcode
// machine. A Queue carries a batch of values supplied up front, or collects
// the values a program emits; a Tape carries decimal text over an io.Reader
// and io.Writer.
package io

// Channel defines the interface for all I/O channels of the machine.
// Channels are strictly sequential: values are received and sent in order.
type Channel interface {
	// Receive returns the next value from the channel, or ErrChannelEmpty
	// once no further value will ever arrive.
	Receive() (value int64, err error)
	// Send appends a single value to the channel.
	Send(value int64) error
}
