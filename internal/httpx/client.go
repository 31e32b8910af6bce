// Package httpx provides the shared HTTP plumbing for talking to external
// embedding and generation services: a tuned [net/http.Client] built with
// functional options, a bearer-token RoundTripper, and typed errors that
// let callers distinguish transport failures (retryable) from HTTP status
// failures (retryable only for a subset of codes).
package httpx

import (
	"net"
	"net/http"
	"time"
)

// TransportFunc wraps an [http.RoundTripper] with additional behaviour.
type TransportFunc func(http.RoundTripper) http.RoundTripper

// clientConfig holds the tunables applied by Option values.
type clientConfig struct {
	requestTimeout        time.Duration
	dialTimeout           time.Duration
	keepAlive             time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	maxIdleConns          int
	maxIdleConnsPerHost   int
	transports            []TransportFunc
}

// defaultClientConfig returns the baseline tuning used when no options are given.
func defaultClientConfig() *clientConfig {
	return &clientConfig{
		requestTimeout:        30 * time.Second,
		dialTimeout:           10 * time.Second,
		keepAlive:             90 * time.Second,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 30 * time.Second,
		idleConnTimeout:       90 * time.Second,
		maxIdleConns:          100,
		maxIdleConnsPerHost:   10,
	}
}

// Option customises the client produced by [NewClient].
type Option func(*clientConfig)

// WithRequestTimeout sets the end-to-end request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.requestTimeout = d }
}

// WithDialTimeout sets the TCP connection timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.dialTimeout = d }
}

// WithResponseHeaderTimeout sets how long to wait for the first response byte.
func WithResponseHeaderTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.responseHeaderTimeout = d }
}

// WithTransport appends a RoundTripper wrapper. Wrappers are applied in order,
// so the last WithTransport is the outermost layer of the chain.
func WithTransport(fn TransportFunc) Option {
	return func(c *clientConfig) { c.transports = append(c.transports, fn) }
}

// WithBearerToken wraps the transport so every request carries
// "Authorization: Bearer <token>". An empty token is a no-op.
func WithBearerToken(token string) Option {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{token: token, next: rt}
	})
}

// NewClient builds an [*http.Client] from the default tuning plus opts.
func NewClient(opts ...Option) *http.Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	dialer := net.Dialer{
		Timeout:   cfg.dialTimeout,
		KeepAlive: cfg.keepAlive,
	}

	var rt http.RoundTripper = &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
		TLSHandshakeTimeout:   cfg.tlsHandshakeTimeout,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
	}
	for _, fn := range cfg.transports {
		rt = fn(rt)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: rt,
	}
}

// authTransport injects a bearer token into every outgoing request.
type authTransport struct {
	token string
	next  http.RoundTripper
}

// RoundTrip clones the request and sets the Authorization header.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(clone)
}
