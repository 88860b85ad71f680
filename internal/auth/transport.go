package auth

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Transport injects authentication headers into outgoing requests.
//
// Resolution order per request:
//  1. Default, when it is not a no-auth provider and the request host is DefaultHost
//  2. the Credentials entry for the request host
//  3. nothing
//
// Headers are resolved per hop, so redirects and external $ref fetches to
// other hosts never see Default.
type Transport struct {
	Base        http.RoundTripper
	Default     Provider
	DefaultHost string // host[:port] or URL; Default is never sent when empty
	Credentials *CredentialsFile

	mu      sync.Mutex
	perHost map[string]Provider
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	provider, err := t.providerFor(req.URL.Host)
	if err != nil {
		return nil, err
	}

	if provider != nil {
		headers, err := provider.Headers(req.Context())
		if err != nil {
			return nil, fmt.Errorf("auth for %s: %w", req.URL.Host, err)
		}
		if len(headers) > 0 {
			req = req.Clone(req.Context())
			for k, v := range headers {
				req.Header.Set(k, v)
			}
		}
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

func (t *Transport) providerFor(host string) (Provider, error) {
	if !IsNone(t.Default) && t.DefaultHost != "" && NormalizeHost(host) == NormalizeHost(t.DefaultHost) {
		return t.Default, nil
	}

	cred, ok := t.Credentials.Lookup(host)
	if !ok {
		return nil, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := NormalizeHost(host)
	if p, ok := t.perHost[key]; ok {
		return p, nil
	}
	p, err := NewProvider(cred)
	if err != nil {
		return nil, fmt.Errorf("credentials for %s: %w", key, err)
	}
	if t.perHost == nil {
		t.perHost = make(map[string]Provider)
	}
	t.perHost[key] = p
	return p, nil
}

// NewHTTPClient returns a client that authenticates requests to defHost with
// def and everything else with per-host entries in creds. A zero timeout
// means no limit.
func NewHTTPClient(def Provider, defHost string, creds *CredentialsFile, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &Transport{
			Default:     def,
			DefaultHost: defHost,
			Credentials: creds,
		},
	}
}
