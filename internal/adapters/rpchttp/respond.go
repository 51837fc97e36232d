package rpchttp

import (
	"errors"
	"fmt"

	"wiregate/go-bridge/internal/rpcmeta"
	"wiregate/go-bridge/internal/wire"
)

func (b *Bridge) respondReply(format wire.Format, methodName string, seqID int32, body any) wireResponse {
	return envelope200(format, "ok", b.encode(format, methodName, seqID, wire.KindReply, body))
}

// respondFailure maps an invocation failure onto the wire. A failure that
// matches one of the method's declared exception types travels as a REPLY
// whose result struct carries the exception field; anything else becomes an
// EXCEPTION envelope.
func (b *Bridge) respondFailure(format wire.Format, methodName string, seqID int32, method *rpcmeta.Method, err error) wireResponse {
	if result := method.NewResult(); result != nil && result.SetException(err) {
		return envelope200(format, "declared_exception", b.encode(format, methodName, seqID, wire.KindReply, result))
	}
	return b.respondException(format, methodName, seqID, asApplicationException(err))
}

func (b *Bridge) respondException(format wire.Format, methodName string, seqID int32, exc *wire.ApplicationException) wireResponse {
	return envelope200(format, "app_exception", b.encode(format, methodName, seqID, wire.KindException, exc))
}

// asApplicationException passes a recognized application exception through
// unchanged and wraps any other failure as a generic internal error carrying
// the failure's message, never a stack dump.
func asApplicationException(err error) *wire.ApplicationException {
	var app *wire.ApplicationException
	if errors.As(err, &app) {
		return app
	}
	return wire.NewApplicationException(wire.ExcInternalError, "%s", err.Error())
}

// encode serializes one reply envelope into a fresh buffer. The structs
// reaching this point are well-typed by construction, so an encoding failure
// is an unrecoverable defect, not a per-request error.
func (b *Bridge) encode(format wire.Format, methodName string, seqID int32, kind wire.MessageKind, body any) []byte {
	codec, ok := b.codecs.Lookup(format)
	if !ok {
		panic(fmt.Sprintf("rpchttp: no codec for negotiated format %s", format))
	}
	w := codec.NewWriter()
	if err := w.WriteMessageBegin(wire.Header{Method: methodName, Kind: kind, SeqID: seqID}); err != nil {
		panic(fmt.Sprintf("rpchttp: encode header for %s: %v", methodName, err))
	}
	if err := w.WriteStruct(body); err != nil {
		panic(fmt.Sprintf("rpchttp: encode body for %s: %v", methodName, err))
	}
	if err := w.WriteMessageEnd(); err != nil {
		panic(fmt.Sprintf("rpchttp: encode trailer for %s: %v", methodName, err))
	}
	return w.Bytes()
}
