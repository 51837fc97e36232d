package rpchttp

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"wiregate/go-bridge/internal/wire"
)

// wireResponse is the terminal outcome of one request. Every pipeline step
// returns one instead of writing to the ResponseWriter directly, so the
// handler has a single write site.
type wireResponse struct {
	status      int
	contentType string
	body        []byte
	outcome     string
}

func plainText(status int, outcome, message string) wireResponse {
	return wireResponse{
		status:      status,
		contentType: "text/plain; charset=utf-8",
		body:        []byte(message),
		outcome:     outcome,
	}
}

func envelope200(format wire.Format, outcome string, body []byte) wireResponse {
	return wireResponse{
		status:      http.StatusOK,
		contentType: format.MediaType(),
		body:        body,
		outcome:     outcome,
	}
}

// ServeHTTP handles one RPC call on the bridge endpoint.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	started := time.Now()
	reqID := newRequestID()
	logger := b.logger.With("request_id", reqID, "client_addr", r.RemoteAddr)

	format, resp := b.negotiate(r)
	if resp == nil {
		resp = b.serveCall(w, r, reqID, logger, format)
	}

	w.Header().Set("Content-Type", resp.contentType)
	w.WriteHeader(resp.status)
	if len(resp.body) > 0 {
		_, _ = w.Write(resp.body)
	}

	latency := time.Since(started)
	requestsTotal.WithLabelValues(format.String(), resp.outcome).Inc()
	requestDuration.WithLabelValues(format.String()).Observe(latency.Seconds())
	if resp.status >= 400 {
		logger.Error("rpc request rejected",
			"format", format.String(), "status", resp.status,
			"outcome", resp.outcome, "latency_ms", latency.Milliseconds())
	} else {
		logger.Info("rpc response",
			"format", format.String(), "outcome", resp.outcome,
			"latency_ms", latency.Milliseconds())
	}
}

// serveCall runs the post-negotiation pipeline: rate limit, body
// aggregation, envelope decode, invocation.
func (b *Bridge) serveCall(w http.ResponseWriter, r *http.Request, reqID string, logger *slog.Logger, format wire.Format) *wireResponse {
	if !b.limiter.Allow(clientKey(r), time.Now()) {
		resp := plainText(http.StatusTooManyRequests, "rate_limited", "too many requests")
		return &resp
	}

	r.Body = http.MaxBytesReader(w, r.Body, b.maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			resp := plainText(http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return &resp
		}
		resp := plainText(http.StatusInternalServerError, "body_error", "failed to read request body: "+err.Error())
		return &resp
	}

	resp := b.decodeAndInvoke(r.Context(), reqID, logger, format, body)
	return &resp
}

// clientKey derives the rate-limit key from the caller's address.
func clientKey(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "ip:unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return "ip:" + remote
	}
	return "ip:" + host
}
