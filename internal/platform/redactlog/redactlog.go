// Package redactlog wraps a slog.Handler so bridge access logs never carry
// raw client addresses or credential material. Addresses are replaced with a
// keyed fingerprint that stays stable for the lifetime of the process, which
// keeps per-client correlation possible without retaining the address itself.
package redactlog

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"strings"
)

const redactedValue = "[REDACTED]"

var (
	bootNonce = randomNonce()

	addrKeys = map[string]struct{}{
		"client_addr": {},
		"remote_addr": {},
		"peer_addr":   {},
	}
	secretKeyParts = []string{"token", "secret", "password", "authorization", "cookie"}
)

// NewLogger builds the bridge logger: JSON records on w at the given level,
// with redaction applied to every attribute.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(WrapHandler(base))
}

// ParseLevel maps a config or env level name to a slog level. Unknown names
// fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type redactingHandler struct {
	next slog.Handler
}

// WrapHandler applies redaction in front of next.
func WrapHandler(next slog.Handler) slog.Handler {
	if next == nil {
		return nil
	}
	return &redactingHandler{next: next}
}

func (h *redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *redactingHandler) Handle(ctx context.Context, rec slog.Record) error {
	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(redactAttr(attr))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, redactAttr(attr))
	}
	return &redactingHandler{next: h.next.WithAttrs(out)}
}

func (h *redactingHandler) WithGroup(name string) slog.Handler {
	return &redactingHandler{next: h.next.WithGroup(name)}
}

func redactAttr(attr slog.Attr) slog.Attr {
	key := strings.TrimSpace(attr.Key)
	lower := strings.ToLower(key)
	if isSecretKey(lower) {
		return slog.String(key, redactedValue)
	}
	if _, ok := addrKeys[lower]; ok {
		return slog.String(key+"_fp", Fingerprint(attr.Value.String()))
	}
	if attr.Value.Kind() == slog.KindGroup {
		inner := attr.Value.Group()
		out := make([]slog.Attr, 0, len(inner))
		for _, a := range inner {
			out = append(out, redactAttr(a))
		}
		return slog.Attr{Key: key, Value: slog.GroupValue(out...)}
	}
	return attr
}

// Fingerprint hashes value together with a per-process nonce, so fingerprints
// from different runs cannot be joined.
func Fingerprint(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(trimmed + "|" + bootNonce))
	return "fp_" + hex.EncodeToString(sum[:8])
}

func isSecretKey(key string) bool {
	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

func randomNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "fallback_nonce"
	}
	return hex.EncodeToString(buf)
}
