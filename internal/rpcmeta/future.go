package rpcmeta

import (
	"errors"
	"sync"
)

// Future is the completion handle returned by async handlers. The handler
// settles it exactly once from any goroutine; later settles are ignored.
type Future struct {
	once sync.Once
	done chan struct{}
	val  any
	err  error
}

func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Complete settles the future with a success value.
func (f *Future) Complete(v any) {
	f.settle(v, nil)
}

// Fail settles the future with an error.
func (f *Future) Fail(err error) {
	if err == nil {
		err = errors.New("rpcmeta: future failed with nil error")
	}
	f.settle(nil, err)
}

// Done is closed once the future is settled.
func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the outcome. Valid only after Done is closed.
func (f *Future) Result() (any, error) { return f.val, f.err }

func (f *Future) settle(v any, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}
