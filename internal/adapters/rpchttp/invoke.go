package rpchttp

import (
	"context"
	"fmt"
	"log/slog"

	"wiregate/go-bridge/internal/rpcmeta"
	"wiregate/go-bridge/internal/wire"
)

// invoke executes the decoded call against the bound handler. The delegate
// always runs under a request-scoped context carrying the request id; the
// scope ends when the invocation returns.
func (b *Bridge) invoke(ctx context.Context, reqID string, logger *slog.Logger, format wire.Format, hdr wire.Header, method *rpcmeta.Method, args any) wireResponse {
	reqCtx := withRequestID(ctx, reqID)

	switch method.Kind() {
	case rpcmeta.KindOneWay:
		// The caller is not waiting for a reply: failures are logged and
		// swallowed, never written to the wire.
		if _, err := safeCall(reqCtx, method, args); err != nil {
			logger.Warn("one-way call failed", "method", hdr.Method, "err", err)
		}
		return envelope200(format, "oneway", nil)

	case rpcmeta.KindAsync:
		fut := safeCallAsync(reqCtx, method, args)
		done := make(chan wireResponse, 1)
		go func() {
			// Completion continuation: runs whenever the future resolves,
			// on whatever goroutine this happens to be.
			<-fut.Done()
			v, err := fut.Result()
			done <- b.completeReply(format, hdr, method, v, err)
		}()
		return <-done

	default:
		v, err := safeCall(reqCtx, method, args)
		return b.completeReply(format, hdr, method, v, err)
	}
}

// completeReply turns the delegate's outcome into the wire reply.
func (b *Bridge) completeReply(format wire.Format, hdr wire.Header, method *rpcmeta.Method, v any, err error) wireResponse {
	if err == nil {
		result, wrapErr := wrapSuccess(method, v)
		if wrapErr == nil {
			return b.respondReply(format, hdr.Method, hdr.SeqID, result)
		}
		err = wrapErr
	}
	return b.respondFailure(format, hdr.Method, hdr.SeqID, method, err)
}

// wrapSuccess stores the return value in a fresh result struct. A type
// mismatch here means the stubs and the handler disagree; it is surfaced as
// an error reply rather than a crashed connection.
func wrapSuccess(method *rpcmeta.Method, v any) (result rpcmeta.ResultStruct, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("failed to wrap result for %s: %v", method.Name(), r)
		}
	}()
	result = method.NewResult()
	result.SetSuccess(v)
	return result, nil
}

// safeCall invokes a sync or one-way handler and converts panics into
// errors so an arbitrary failure can never escape unencoded.
func safeCall(ctx context.Context, method *rpcmeta.Method, args any) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = fmt.Errorf("handler %s panicked: %v", method.Name(), r)
		}
	}()
	return method.Call(ctx, args)
}

// safeCallAsync invokes an async handler; a panic before the future is
// returned settles a failed future instead.
func safeCallAsync(ctx context.Context, method *rpcmeta.Method, args any) (fut *rpcmeta.Future) {
	defer func() {
		if r := recover(); r != nil {
			fut = rpcmeta.NewFuture()
			fut.Fail(fmt.Errorf("handler %s panicked: %v", method.Name(), r))
		}
	}()
	return method.CallAsync(ctx, args)
}
