// Package arith is a small arithmetic service written in the shape of
// compiler-generated RPC stubs: one args struct and one result struct per
// method, with declared exceptions as pointer fields on the result. It
// exercises every handler shape the bridge supports and backs the demo
// daemon and the bridge tests.
package arith

import (
	"errors"

	"wiregate/go-bridge/internal/rpcmeta"
)

const ServiceName = "ArithService"

// DivideByZero is the declared exception of the divide method.
type DivideByZero struct {
	Message string
}

func (e *DivideByZero) Error() string { return e.Message }

type AddArgs struct {
	A int64
	B int64
}

type AddResult struct {
	Success *int64
}

func (r *AddResult) SetSuccess(v any) {
	val := v.(int64)
	r.Success = &val
}

func (r *AddResult) SetException(error) bool { return false }

type DivideArgs struct {
	Dividend int64
	Divisor  int64
}

type DivideResult struct {
	Success      *int64
	DivideByZero *DivideByZero
}

func (r *DivideResult) SetSuccess(v any) {
	val := v.(int64)
	r.Success = &val
}

func (r *DivideResult) SetException(err error) bool {
	var dbz *DivideByZero
	if errors.As(err, &dbz) {
		r.DivideByZero = dbz
		return true
	}
	return false
}

type EchoArgs struct {
	Payload string
}

type EchoResult struct {
	Success *string
}

func (r *EchoResult) SetSuccess(v any) {
	val := v.(string)
	r.Success = &val
}

func (r *EchoResult) SetException(error) bool { return false }

type DelayedAddArgs struct {
	A           int64
	B           int64
	DelayMillis int64
}

type DelayedAddResult struct {
	Success *int64
}

func (r *DelayedAddResult) SetSuccess(v any) {
	val := v.(int64)
	r.Success = &val
}

func (r *DelayedAddResult) SetException(error) bool { return false }

// ResetArgs carries the reset reason. The struct must keep at least one
// exported field so the gob body stays encodable.
type ResetArgs struct {
	Reason string
}

// ServiceDesc is the stub metadata consumed by rpcmeta.NewRegistry.
var ServiceDesc = rpcmeta.ServiceDesc{
	Name: ServiceName,
	Methods: []rpcmeta.MethodDesc{
		{
			Name:      "add",
			NewArgs:   func() any { return new(AddArgs) },
			NewResult: func() rpcmeta.ResultStruct { return new(AddResult) },
		},
		{
			Name:      "divide",
			NewArgs:   func() any { return new(DivideArgs) },
			NewResult: func() rpcmeta.ResultStruct { return new(DivideResult) },
		},
		{
			Name:      "echo",
			NewArgs:   func() any { return new(EchoArgs) },
			NewResult: func() rpcmeta.ResultStruct { return new(EchoResult) },
		},
		{
			Name:      "delayedAdd",
			NewArgs:   func() any { return new(DelayedAddArgs) },
			NewResult: func() rpcmeta.ResultStruct { return new(DelayedAddResult) },
		},
		{
			Name:    "reset",
			OneWay:  true,
			NewArgs: func() any { return new(ResetArgs) },
		},
	},
}
