package arith

import (
	"context"
	"sync/atomic"
	"time"

	"wiregate/go-bridge/internal/rpcmeta"
)

// Calculator is the reference implementation of ArithService.
type Calculator struct {
	calls atomic.Int64
}

// Calls reports the number of calls served since the last reset.
func (c *Calculator) Calls() int64 { return c.calls.Load() }

func (c *Calculator) Add(_ context.Context, args *AddArgs) (int64, error) {
	c.calls.Add(1)
	return args.A + args.B, nil
}

func (c *Calculator) Divide(_ context.Context, args *DivideArgs) (int64, error) {
	c.calls.Add(1)
	if args.Divisor == 0 {
		return 0, &DivideByZero{Message: "division by zero"}
	}
	return args.Dividend / args.Divisor, nil
}

func (c *Calculator) Echo(_ context.Context, args *EchoArgs) (string, error) {
	c.calls.Add(1)
	return args.Payload, nil
}

func (c *Calculator) DelayedAdd(ctx context.Context, args *DelayedAddArgs) *rpcmeta.Future {
	c.calls.Add(1)
	fut := rpcmeta.NewFuture()
	go func() {
		select {
		case <-time.After(time.Duration(args.DelayMillis) * time.Millisecond):
			fut.Complete(args.A + args.B)
		case <-ctx.Done():
			fut.Fail(ctx.Err())
		}
	}()
	return fut
}

func (c *Calculator) Reset(context.Context, *ResetArgs) error {
	c.calls.Store(0)
	return nil
}
