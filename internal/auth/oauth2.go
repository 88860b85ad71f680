package auth

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/google"
)

// TokenSourceProvider turns an oauth2.TokenSource into an Authorization header.
type TokenSourceProvider struct {
	source oauth2.TokenSource
}

func (p *TokenSourceProvider) Headers(_ context.Context) (map[string]string, error) {
	tok, err := p.source.Token()
	if err != nil {
		return nil, fmt.Errorf("oauth2 token: %w", err)
	}
	return map[string]string{"Authorization": tok.Type() + " " + tok.AccessToken}, nil
}

// NewClientCredentialsProvider uses the client_credentials grant
// (RFC 6749 Section 4.4). Tokens are cached until they expire.
func NewClientCredentialsProvider(clientID, clientSecret, tokenURL string, scopes []string) *TokenSourceProvider {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	// The token source outlives any single request context.
	return &TokenSourceProvider{source: cfg.TokenSource(context.Background())}
}

// GoogleSAProvider authenticates with a Google service account key file.
type GoogleSAProvider struct {
	KeyFile string
	Scopes  []string

	mu          sync.Mutex
	tokenSource oauth2.TokenSource
}

func (p *GoogleSAProvider) Headers(ctx context.Context) (map[string]string, error) {
	ts, err := p.getTokenSource(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("google service account token: %w", err)
	}
	return map[string]string{"Authorization": "Bearer " + tok.AccessToken}, nil
}

func (p *GoogleSAProvider) getTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tokenSource != nil {
		return p.tokenSource, nil
	}

	keyData, err := os.ReadFile(p.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("read service account key file %s: %w", p.KeyFile, err)
	}

	scopes := p.Scopes
	if len(scopes) == 0 {
		scopes = []string{"https://www.googleapis.com/auth/cloud-platform"}
	}

	creds, err := google.CredentialsFromJSON(ctx, keyData, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	p.tokenSource = creds.TokenSource
	return p.tokenSource, nil
}
