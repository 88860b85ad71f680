package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Backend selects which generator produces the client code.
type Backend string

const (
	BackendNative Backend = "native" // In-process generator built on kin-openapi.
	BackendNPX    Backend = "npx"    // openapi-typescript-codegen run through npx.
)

// EnvPrefix is prepended to every environment override key.
const EnvPrefix = "OPENAPI_MCP_"

// Config is the top-level process configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Generator GeneratorConfig `yaml:"generator" toml:"generator"`
	NPX       NPXConfig       `yaml:"npx" toml:"npx"`
	Fetch     FetchConfig     `yaml:"fetch" toml:"fetch"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// ServerConfig is the identity reported during the MCP initialize handshake.
type ServerConfig struct {
	Name    string `yaml:"name" toml:"name"`
	Version string `yaml:"version" toml:"version"`
}

// GeneratorConfig controls the delegated generator.
type GeneratorConfig struct {
	Backend Backend `yaml:"backend" toml:"backend"`
	// Timeout bounds a single generation run. Zero means no limit.
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

// NPXConfig configures the npx backend.
type NPXConfig struct {
	Command      string `yaml:"command" toml:"command"`
	Package      string `yaml:"package" toml:"package"`
	MinNodeMajor int    `yaml:"min_node_major" toml:"min_node_major"`
}

// FetchConfig configures how remote OpenAPI documents are downloaded.
type FetchConfig struct {
	Timeout Duration `yaml:"timeout" toml:"timeout"`

	// Host scopes the credential below; it is only sent to this host[:port].
	Host         string   `yaml:"host" toml:"host"`
	AuthType     string   `yaml:"auth_type" toml:"auth_type"`
	Token        string   `yaml:"token" toml:"token"`
	HeaderName   string   `yaml:"header_name" toml:"header_name"`
	Username     string   `yaml:"username" toml:"username"`
	Password     string   `yaml:"password" toml:"password"`
	ClientID     string   `yaml:"client_id" toml:"client_id"`
	ClientSecret string   `yaml:"client_secret" toml:"client_secret"`
	TokenURL     string   `yaml:"token_url" toml:"token_url"`
	Scopes       []string `yaml:"scopes" toml:"scopes"`
	KeyFile      string   `yaml:"key_file" toml:"key_file"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	// File, when set, redirects logs from stderr into a rotated file.
	File string `yaml:"file" toml:"file"`
}

// Duration wraps time.Duration so config files can use "30s" style values.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "openapi-client-generator",
			Version: "0.1.1",
		},
		Generator: GeneratorConfig{
			Backend: BackendNative,
		},
		NPX: NPXConfig{
			Command:      "npx --yes",
			Package:      "openapi-typescript-codegen@0.29.0",
			MinNodeMajor: 14,
		},
		Fetch: FetchConfig{
			Timeout:  Duration{30 * time.Second},
			AuthType: "none",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config from defaults, the optional file at path, and
// OPENAPI_MCP_* environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("config: parsing %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config: unsupported file type %q (use .yaml, .yml or .toml)", filepath.Ext(path))
	}
	return nil
}

// applyEnv overlays environment variables. lookup is injectable for tests.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *Duration) error {
		if v, ok := lookup(EnvPrefix + key); ok {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
			}
		}
		return nil
	}

	str("SERVER_NAME", &c.Server.Name)
	str("SERVER_VERSION", &c.Server.Version)

	if v, ok := lookup(EnvPrefix + "GENERATOR_BACKEND"); ok {
		c.Generator.Backend = Backend(v)
	}
	if err := dur("GENERATOR_TIMEOUT", &c.Generator.Timeout); err != nil {
		return err
	}

	str("NPX_COMMAND", &c.NPX.Command)
	str("NPX_PACKAGE", &c.NPX.Package)
	if v, ok := lookup(EnvPrefix + "NPX_MIN_NODE_MAJOR"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sNPX_MIN_NODE_MAJOR: %w", EnvPrefix, err)
		}
		c.NPX.MinNodeMajor = n
	}

	if err := dur("FETCH_TIMEOUT", &c.Fetch.Timeout); err != nil {
		return err
	}
	str("FETCH_HOST", &c.Fetch.Host)
	str("FETCH_AUTH_TYPE", &c.Fetch.AuthType)
	str("FETCH_TOKEN", &c.Fetch.Token)
	str("FETCH_HEADER_NAME", &c.Fetch.HeaderName)
	str("FETCH_USERNAME", &c.Fetch.Username)
	str("FETCH_PASSWORD", &c.Fetch.Password)
	str("FETCH_CLIENT_ID", &c.Fetch.ClientID)
	str("FETCH_CLIENT_SECRET", &c.Fetch.ClientSecret)
	str("FETCH_TOKEN_URL", &c.Fetch.TokenURL)
	str("FETCH_KEY_FILE", &c.Fetch.KeyFile)
	if v, ok := lookup(EnvPrefix + "FETCH_SCOPES"); ok {
		c.Fetch.Scopes = splitCSV(v)
	}

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_FILE", &c.Log.File)
	return nil
}

// Validate fills empty enum fields with defaults and rejects unknown values.
func (c *Config) Validate() error {
	if c.Generator.Backend == "" {
		c.Generator.Backend = BackendNative
	}
	switch c.Generator.Backend {
	case BackendNative, BackendNPX:
	default:
		return fmt.Errorf("config: unknown generator backend %q (must be %q or %q)", c.Generator.Backend, BackendNative, BackendNPX)
	}

	if c.Generator.Timeout.Duration < 0 {
		return fmt.Errorf("config: generator timeout must not be negative")
	}

	if c.Generator.Backend == BackendNPX && strings.TrimSpace(c.NPX.Command) == "" {
		return fmt.Errorf("config: npx command is empty")
	}

	switch c.Fetch.AuthType {
	case "", "none", "no_auth":
	default:
		if strings.TrimSpace(c.Fetch.Host) == "" {
			return fmt.Errorf("config: fetch host is required when fetch auth_type is %q", c.Fetch.AuthType)
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}

	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log format %q (must be \"json\" or \"console\")", c.Log.Format)
	}

	return nil
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
