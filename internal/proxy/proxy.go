// Package proxy is a read-only pass-through to the upstream market APIs,
// with a short shared-response cache so dashboard fanout does not hammer
// the upstreams.
package proxy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mercuryhq/mercuryd/internal/metrics"
)

const (
	maxResponseBytes = 8 << 20
	userAgent        = "Mozilla/5.0 Mercury/1.0"
)

// Proxy forwards GET requests to a fixed set of upstream bases.
type Proxy struct {
	client *http.Client
	cache  ResponseCache
	ttl    time.Duration
	logger *slog.Logger
}

// New builds a proxy over the given response cache.
func New(cache ResponseCache, ttl time.Duration, logger *slog.Logger) *Proxy {
	return &Proxy{
		client: &http.Client{Timeout: 15 * time.Second},
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Handler serves one upstream base. The route must capture the remainder of
// the path as {path...}.
func (p *Proxy) Handler(base string) http.HandlerFunc {
	base = strings.TrimRight(base, "/")
	return func(w http.ResponseWriter, r *http.Request) {
		target := base + "/" + r.PathValue("path")
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		p.serve(w, r, target)
	}
}

func (p *Proxy) serve(w http.ResponseWriter, r *http.Request, target string) {
	maxAge := strconv.Itoa(int(p.ttl / time.Second))

	if resp, ok := p.cache.Get(r.Context(), target); ok {
		metrics.RecordProxyCache("hit")
		w.Header().Set("Content-Type", resp.ContentType)
		w.Header().Set("Cache-Control", "public, max-age="+maxAge)
		w.Write(resp.Body)
		return
	}
	metrics.RecordProxyCache("miss")

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		p.fail(w, err)
		return
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	upstream, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("proxy fetch failed", "target", target, "error", err)
		p.fail(w, err)
		return
	}
	defer upstream.Body.Close()

	body, err := io.ReadAll(io.LimitReader(upstream.Body, maxResponseBytes))
	if err != nil {
		p.fail(w, err)
		return
	}

	contentType := upstream.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	if upstream.StatusCode == http.StatusOK {
		p.cache.Set(r.Context(), target, Cached{ContentType: contentType, Body: body}, p.ttl)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age="+maxAge)
	w.WriteHeader(upstream.StatusCode)
	w.Write(body)
}

func (p *Proxy) fail(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
