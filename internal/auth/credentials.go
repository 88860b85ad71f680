package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CredentialsFile is the on-disk store of per-host credentials, keyed by
// lower-cased host (including port when present).
type CredentialsFile struct {
	Version int                   `json:"version"`
	Hosts   map[string]Credential `json:"hosts"`
}

// LoadCredentials reads the credentials file at path. A missing file yields
// an empty store, not an error.
func LoadCredentials(path string) (*CredentialsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &CredentialsFile{Version: 1, Hosts: make(map[string]Credential)}, nil
		}
		return nil, err
	}

	var creds CredentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	if creds.Version == 0 {
		creds.Version = 1
	}
	if creds.Hosts == nil {
		creds.Hosts = make(map[string]Credential)
	}
	return &creds, nil
}

// SaveCredentials writes creds to path with owner-only permissions.
func SaveCredentials(path string, creds *CredentialsFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Set stores cred for host, replacing any previous entry.
func (c *CredentialsFile) Set(host string, cred Credential) {
	if c.Hosts == nil {
		c.Hosts = make(map[string]Credential)
	}
	c.Hosts[NormalizeHost(host)] = cred
}

// Remove deletes the entry for host and reports whether one existed.
func (c *CredentialsFile) Remove(host string) bool {
	key := NormalizeHost(host)
	if _, ok := c.Hosts[key]; !ok {
		return false
	}
	delete(c.Hosts, key)
	return true
}

// Lookup returns the credential stored for host.
func (c *CredentialsFile) Lookup(host string) (Credential, bool) {
	if c == nil || c.Hosts == nil {
		return Credential{}, false
	}
	cred, ok := c.Hosts[NormalizeHost(host)]
	return cred, ok
}

// HostNames returns the stored hosts in sorted order.
func (c *CredentialsFile) HostNames() []string {
	names := make([]string, 0, len(c.Hosts))
	for h := range c.Hosts {
		names = append(names, h)
	}
	sort.Strings(names)
	return names
}

// NormalizeHost accepts a bare host or a full URL and returns the lower-cased
// host[:port] used as the store key.
func NormalizeHost(hostOrURL string) string {
	s := strings.TrimSpace(hostOrURL)
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}
	return strings.ToLower(strings.TrimSuffix(s, "/"))
}

// DefaultCredentialsPath returns OPENAPI_MCP_CREDENTIALS_FILE when set,
// otherwise ~/.openapi-client-generator/credentials.json.
func DefaultCredentialsPath() string {
	if p := os.Getenv("OPENAPI_MCP_CREDENTIALS_FILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".openapi-client-generator", "credentials.json")
}
