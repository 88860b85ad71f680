package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/thellimist/openapi-client-generator/internal/auth"
	"github.com/thellimist/openapi-client-generator/internal/config"
	"github.com/thellimist/openapi-client-generator/internal/dispatch"
	"github.com/thellimist/openapi-client-generator/internal/genclient"
	"github.com/thellimist/openapi-client-generator/internal/generator"
	"github.com/thellimist/openapi-client-generator/internal/npxgen"
	"github.com/thellimist/openapi-client-generator/internal/tsgen"
)

// newBackend builds the generator selected by cfg.
func newBackend(cfg *config.Config, logger *zap.Logger) (generator.Generator, error) {
	switch cfg.Generator.Backend {
	case config.BackendNPX:
		return npxgen.New(cfg.NPX, logger), nil
	case config.BackendNative:
		def, err := auth.NewProvider(fetchCredential(cfg.Fetch))
		if err != nil {
			return nil, fmt.Errorf("fetch auth: %w", err)
		}
		creds, err := auth.LoadCredentials(auth.DefaultCredentialsPath())
		if err != nil {
			return nil, err
		}
		client := auth.NewHTTPClient(def, cfg.Fetch.Host, creds, cfg.Fetch.Timeout.Duration)
		return tsgen.New(client, logger), nil
	default:
		return nil, fmt.Errorf("unknown generator backend %q", cfg.Generator.Backend)
	}
}

func fetchCredential(f config.FetchConfig) auth.Credential {
	return auth.Credential{
		Type:         f.AuthType,
		Token:        f.Token,
		HeaderName:   f.HeaderName,
		Username:     f.Username,
		Password:     f.Password,
		ClientID:     f.ClientID,
		ClientSecret: f.ClientSecret,
		TokenURL:     f.TokenURL,
		Scopes:       f.Scopes,
		KeyFile:      f.KeyFile,
	}
}

// newDispatcher builds the single server instance with generate_client registered.
func newDispatcher(cfg *config.Config, logger *zap.Logger) (*dispatch.Dispatcher, error) {
	gen, err := newBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	handler := genclient.NewHandler(gen, cfg.Generator.Timeout.Duration, logger)

	d := dispatch.New(dispatch.NewServer(cfg.Server.Name, cfg.Server.Version), logger)
	if err := d.Register(genclient.Tool(), handler.Handle); err != nil {
		return nil, err
	}
	return d, nil
}
