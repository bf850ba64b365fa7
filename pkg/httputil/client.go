// Package httputil provides shared HTTP plumbing for the haven core: pooled
// clients sized for the two kinds of outbound calls the system makes (quick
// health checks and slow model completions) and safe bounded body reads.
package httputil

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// MaxResponseSize caps response body reads. Model providers are external and
// untrusted; an oversized body must not take the process down.
const MaxResponseSize = 2 * 1024 * 1024 // 2MB is generous for any completion

// Shared transport with connection pooling. Safe for concurrent use; reusing
// TCP connections matters when every classification may hit the provider.
var sharedTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

var (
	fastClient  *http.Client
	modelClient *http.Client
	clientOnce  sync.Once
)

func initClients() {
	fastClient = &http.Client{
		Timeout:   5 * time.Second,
		Transport: sharedTransport,
	}
	modelClient = &http.Client{
		Timeout:   60 * time.Second,
		Transport: sharedTransport,
	}
}

// FastClient returns the shared client for health checks and simple queries (5s).
func FastClient() *http.Client {
	clientOnce.Do(initClients)
	return fastClient
}

// ModelClient returns the shared client for model completion calls (60s).
// Callers impose tighter deadlines through the request context.
func ModelClient() *http.Client {
	clientOnce.Do(initClients)
	return modelClient
}

// ReadResponseBody reads an HTTP response body with a size limit.
func ReadResponseBody(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = MaxResponseSize
	}
	return io.ReadAll(io.LimitReader(r, maxSize))
}

// DrainAndClose drains and closes a response body so the underlying
// connection can return to the pool.
func DrainAndClose(body io.ReadCloser) {
	if body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
		_ = body.Close()
	}
}
