package io

import (
	"iter"
	"slices"
)

// Queue is a first-in, first-out sequence of values.
// As an input it is filled before execution and never replenished; as an
// output it accumulates every value sent, in order.
type Queue struct {
	Capacity int // Maximum pending values, or zero for no limit.

	ReadIndex int
	Data      []int64
}

var _ Channel = (*Queue)(nil)

// NewQueue creates a queue holding a copy of values.
func NewQueue(values ...int64) (queue *Queue) {
	queue = &Queue{
		Data: slices.Clone(values),
	}

	return
}

// Len returns the count of values not yet received.
func (queue *Queue) Len() int {
	return len(queue.Data) - queue.ReadIndex
}

// Rewind makes every value sent so far pending again.
func (queue *Queue) Rewind() {
	queue.ReadIndex = 0
}

// Receive pops the next pending value.
// Returns ErrChannelEmpty if no value is pending.
func (queue *Queue) Receive() (value int64, err error) {
	if queue.ReadIndex >= len(queue.Data) {
		err = ErrChannelEmpty
		return
	}

	value = queue.Data[queue.ReadIndex]
	queue.ReadIndex++

	return
}

// Send appends a value to the queue.
// Returns ErrChannelFull if the queue has reached capacity.
func (queue *Queue) Send(value int64) (err error) {
	if queue.Capacity > 0 && queue.Len() >= queue.Capacity {
		err = ErrChannelFull
		return
	}

	queue.Data = append(queue.Data, value)

	return
}

// Values returns a copy of every value ever sent, received or not.
func (queue *Queue) Values() []int64 {
	return slices.Clone(queue.Data)
}

// Pending returns an iterator over the values not yet received.
// It does not consume them.
func (queue *Queue) Pending() iter.Seq[int64] {
	return slices.Values(queue.Data[queue.ReadIndex:])
}
