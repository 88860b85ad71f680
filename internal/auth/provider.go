package auth

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Provider produces the HTTP headers needed to download a protected
// OpenAPI document.
type Provider interface {
	Headers(ctx context.Context) (map[string]string, error)
}

// Credential describes how to authenticate against one host. The same shape
// is used for the process-wide fetch settings and for credentials file entries.
type Credential struct {
	Type         string   `json:"type"`
	Token        string   `json:"token,omitempty"`
	HeaderName   string   `json:"header_name,omitempty"`
	Username     string   `json:"username,omitempty"`
	Password     string   `json:"password,omitempty"`
	ClientID     string   `json:"client_id,omitempty"`
	ClientSecret string   `json:"client_secret,omitempty"`
	TokenURL     string   `json:"token_url,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
	KeyFile      string   `json:"key_file,omitempty"`
}

// NoAuthProvider adds nothing.
type NoAuthProvider struct{}

func (p *NoAuthProvider) Headers(_ context.Context) (map[string]string, error) {
	return nil, nil
}

// BearerTokenProvider sends a static bearer token.
type BearerTokenProvider struct {
	Token string
}

func (p *BearerTokenProvider) Headers(_ context.Context) (map[string]string, error) {
	if p.Token == "" {
		return nil, nil
	}
	return map[string]string{"Authorization": "Bearer " + p.Token}, nil
}

// APIKeyProvider sends a key in a custom header.
type APIKeyProvider struct {
	Token      string
	HeaderName string // Defaults to "X-API-Key" if empty
}

func (p *APIKeyProvider) Headers(_ context.Context) (map[string]string, error) {
	if p.Token == "" {
		return nil, nil
	}
	name := p.HeaderName
	if name == "" {
		name = "X-API-Key"
	}
	return map[string]string{name: p.Token}, nil
}

// BasicAuthProvider sends HTTP Basic credentials.
type BasicAuthProvider struct {
	Username string
	Password string
}

func (p *BasicAuthProvider) Headers(_ context.Context) (map[string]string, error) {
	if p.Username == "" && p.Password == "" {
		return nil, nil
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(p.Username + ":" + p.Password))
	return map[string]string{"Authorization": "Basic " + encoded}, nil
}

// NewProvider builds the provider for cred.
func NewProvider(cred Credential) (Provider, error) {
	switch cred.Type {
	case "no_auth", "none", "":
		return &NoAuthProvider{}, nil
	case "bearer_token", "bearer":
		return &BearerTokenProvider{Token: cred.Token}, nil
	case "api_key":
		return &APIKeyProvider{Token: cred.Token, HeaderName: cred.HeaderName}, nil
	case "basic_auth", "basic":
		return &BasicAuthProvider{Username: cred.Username, Password: cred.Password}, nil
	case "client_credentials", "oauth2":
		if cred.ClientID == "" || cred.TokenURL == "" {
			return nil, fmt.Errorf("client_credentials auth requires client_id and token_url")
		}
		return NewClientCredentialsProvider(cred.ClientID, cred.ClientSecret, cred.TokenURL, cred.Scopes), nil
	case "google_sa", "google_service_account":
		if cred.KeyFile == "" {
			return nil, fmt.Errorf("google_sa auth requires key_file")
		}
		return &GoogleSAProvider{KeyFile: cred.KeyFile, Scopes: cred.Scopes}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %q", cred.Type)
	}
}

// IsNone reports whether p adds no credentials at all.
func IsNone(p Provider) bool {
	_, ok := p.(*NoAuthProvider)
	return p == nil || ok
}
