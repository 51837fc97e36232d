package rpchttp

import (
	"context"
	"log/slog"
	"net/http"

	"wiregate/go-bridge/internal/wire"
)

// decodeAndInvoke parses the envelope out of the aggregated body and runs
// the call. Protocol-level problems past the header (wrong message kind,
// unknown method, undecodable arguments) are expected outcomes of a working
// server: they are answered with a wire-encoded application exception and
// status 200, never with a bare HTTP error.
func (b *Bridge) decodeAndInvoke(ctx context.Context, reqID string, logger *slog.Logger, format wire.Format, body []byte) wireResponse {
	rd := b.readers.acquire(format)
	// The reader must come back cleared on every exit path so the next
	// request never observes residual payload data.
	defer b.readers.release(format, rd)

	rd.Reset(body)

	hdr, err := rd.ReadMessageBegin()
	if err != nil {
		logger.Debug("failed to decode envelope header", "err", err)
		return plainText(http.StatusBadRequest, "bad_envelope", "failed to decode envelope header: "+err.Error())
	}

	if hdr.Kind != wire.KindCall && hdr.Kind != wire.KindOneWay {
		exc := wire.NewApplicationException(wire.ExcInvalidMessageKind, "unexpected message kind: %s", hdr.Kind)
		return b.respondException(format, hdr.Method, hdr.SeqID, exc)
	}

	method := b.registry.Lookup(hdr.Method)
	if method == nil {
		exc := wire.NewApplicationException(wire.ExcUnknownMethod, "unknown method: %s", hdr.Method)
		return b.respondException(format, hdr.Method, hdr.SeqID, exc)
	}

	args := method.NewArgs()
	if err := rd.ReadStruct(args); err != nil {
		logger.Debug("failed to decode call arguments", "method", hdr.Method, "err", err)
		exc := wire.NewApplicationException(wire.ExcProtocolError, "failed to decode arguments: %s", err)
		return b.respondException(format, hdr.Method, hdr.SeqID, exc)
	}
	if err := rd.ReadMessageEnd(); err != nil {
		logger.Debug("failed to decode envelope trailer", "method", hdr.Method, "err", err)
		exc := wire.NewApplicationException(wire.ExcProtocolError, "failed to decode envelope trailer: %s", err)
		return b.respondException(format, hdr.Method, hdr.SeqID, exc)
	}

	return b.invoke(ctx, reqID, logger, format, hdr, method, args)
}
