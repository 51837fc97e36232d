package rpchttp

import (
	"net/http"

	"wiregate/go-bridge/internal/wire"
)

const (
	msgFormatNotSupported = "specified wire format not supported"
	msgAcceptMustMatch    = "wire format in Accept header must match the one in Content-Type header"
)

// negotiate resolves the wire format for the request. A non-nil response
// terminates the request before any decode.
//
// The policy is deliberately lenient on unknown Content-Type values (fall
// back to the default format) and strict on a mismatched Accept header: a
// client that states a contradictory expectation is rejected.
func (b *Bridge) negotiate(r *http.Request) (wire.Format, *wireResponse) {
	format := b.defaultFormat
	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		if f, ok := wire.FormatFromMediaType(contentType); ok {
			format = f
		}
		if !b.allowed[format] {
			resp := plainText(http.StatusUnsupportedMediaType, "unsupported_format", msgFormatNotSupported)
			return format, &resp
		}
	}

	if accept := r.Header.Get("Accept"); accept != "" {
		// An Accept value that maps to no known format is treated as no
		// constraint at all.
		if f, ok := wire.FormatFromMediaType(accept); ok && f != format {
			resp := plainText(http.StatusNotAcceptable, "format_mismatch", msgAcceptMustMatch)
			return format, &resp
		}
	}

	return format, nil
}
