// Package rpchttp is the HTTP adapter for the RPC bridge: it negotiates the
// wire format from the request headers, decodes the envelope with a pooled
// reader, dispatches the call against the method registry and writes the
// outcome back as an envelope of the same format.
//
// Anything that gets past format negotiation and body aggregation receives a
// wire-encoded reply with HTTP status 200, including application exceptions;
// only negotiation and body failures surface as HTTP-level error statuses
// with plain-text bodies.
package rpchttp

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"wiregate/go-bridge/internal/bootstrap/bridgeconfig"
	"wiregate/go-bridge/internal/platform/ratelimiter"
	"wiregate/go-bridge/internal/rpcmeta"
	"wiregate/go-bridge/internal/wire"
)

// Bridge handles a single RPC endpoint for one service registry.
type Bridge struct {
	registry      *rpcmeta.Registry
	codecs        *wire.CodecSet
	defaultFormat wire.Format
	allowed       map[wire.Format]bool
	maxBodyBytes  int64
	limiter       *ratelimiter.KeyedLimiter
	readers       *readerPool
	logger        *slog.Logger
}

// NewBridge builds a bridge from the configured formats. The default format
// is always part of the allowed set. Every allowed format must have a codec.
func NewBridge(cfg bridgeconfig.Config, codecs *wire.CodecSet, registry *rpcmeta.Registry, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}

	allowed := make(map[wire.Format]bool, len(cfg.AllowedFormats)+1)
	allowed[cfg.DefaultFormat] = true
	for _, f := range cfg.AllowedFormats {
		allowed[f] = true
	}
	for f := range allowed {
		if _, ok := codecs.Lookup(f); !ok {
			return nil, fmt.Errorf("rpchttp: no codec for allowed format %s", f)
		}
	}

	var limiter *ratelimiter.KeyedLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimiter.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	return &Bridge{
		registry:      registry,
		codecs:        codecs,
		defaultFormat: cfg.DefaultFormat,
		allowed:       allowed,
		maxBodyBytes:  maxBody,
		limiter:       limiter,
		readers:       newReaderPool(codecs),
		logger:        logger,
	}, nil
}

// DefaultFormat returns the format used when the client does not name one.
func (b *Bridge) DefaultFormat() wire.Format { return b.defaultFormat }

// AllowedFormats returns the formats this bridge accepts.
func (b *Bridge) AllowedFormats() []wire.Format {
	out := make([]wire.Format, 0, len(b.allowed))
	for f := range b.allowed {
		out = append(out, f)
	}
	return out
}

var _ http.Handler = (*Bridge)(nil)
