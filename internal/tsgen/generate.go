// Package tsgen generates a TypeScript API client from an OpenAPI document.
package tsgen

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/thellimist/openapi-client-generator/internal/generator"
)

// generatedEntries are replaced on every run; anything else in the output
// directory is left alone.
var generatedEntries = []string{"core", "models", "schemas", "services", "index.ts"}

// Generator is the in-process generator backend.
type Generator struct {
	client *http.Client
	logger *zap.Logger
}

// New returns a generator that fetches remote documents with client.
func New(client *http.Client, logger *zap.Logger) *Generator {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

// Generate writes a client for opts.Input into opts.Output.
func (g *Generator) Generate(ctx context.Context, opts generator.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	doc, err := Load(ctx, g.client, opts.Input)
	if err != nil {
		return err
	}
	client := Build(doc, opts.UseUnionTypes)

	g.logger.Debug("generating client",
		zap.String("input", opts.Input),
		zap.String("output", opts.Output),
		zap.String("http_client", string(opts.HTTPClient)),
		zap.Int("models", len(client.Models)),
		zap.Int("services", len(client.Services)),
	)

	files, err := render(client, opts)
	if err != nil {
		return err
	}

	for _, entry := range generatedEntries {
		if err := os.RemoveAll(filepath.Join(opts.Output, entry)); err != nil {
			return fmt.Errorf("clean %s: %w", entry, err)
		}
	}
	for _, dir := range outputDirs(opts) {
		if err := os.MkdirAll(filepath.Join(opts.Output, dir), 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	for _, f := range files {
		path := filepath.Join(opts.Output, filepath.FromSlash(f.path))
		if err := os.WriteFile(path, reindent(f.data, opts.Indent.Unit()), 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.path, err)
		}
	}
	return nil
}

func outputDirs(opts generator.Options) []string {
	var dirs []string
	if opts.ExportCore {
		dirs = append(dirs, "core")
	}
	if opts.ExportModels {
		dirs = append(dirs, "models")
	}
	if opts.ExportSchemas {
		dirs = append(dirs, "schemas")
	}
	if opts.ExportServices {
		dirs = append(dirs, "services")
	}
	return dirs
}

type file struct {
	path string
	data []byte
}

// render produces every output file in memory so a template failure leaves
// the previous output untouched.
func render(c *Client, opts generator.Options) ([]file, error) {
	var files []file
	add := func(path string, data []byte, err error) error {
		if err != nil {
			return err
		}
		files = append(files, file{path: path, data: data})
		return nil
	}

	if opts.ExportCore {
		for _, name := range staticCore {
			data, err := staticFile("core/" + name)
			if err := add("core/"+name, data, err); err != nil {
				return nil, err
			}
		}
		data, err := staticFile("core/request." + string(opts.HTTPClient) + ".ts")
		if err := add("core/request.ts", data, err); err != nil {
			return nil, err
		}
		data, err = execute("OpenAPI.ts.tmpl", c)
		if err := add("core/OpenAPI.ts", data, err); err != nil {
			return nil, err
		}
	}

	if opts.ExportModels {
		for _, m := range c.Models {
			data, err := execute("model.ts.tmpl", m)
			if err := add("models/"+m.Name+".ts", data, err); err != nil {
				return nil, err
			}
		}
	}

	if opts.ExportSchemas {
		for _, m := range c.Models {
			data, err := execute("schema.ts.tmpl", m)
			if err := add("schemas/$"+m.Name+".ts", data, err); err != nil {
				return nil, err
			}
		}
	}

	if opts.ExportServices {
		for _, s := range c.Services {
			data, err := execute("service.ts.tmpl", serviceData{Service: s, UseOptions: opts.UseOptions})
			if err := add("services/"+s.Name+".ts", data, err); err != nil {
				return nil, err
			}
		}
	}

	data, err := execute("index.ts.tmpl", indexData{Options: opts, Client: c})
	if err != nil {
		return nil, err
	}
	data = []byte(strings.Replace(string(data), fileHeader+"\n\n", fileHeader+"\n", 1))
	files = append(files, file{path: "index.ts", data: data})
	return files, nil
}
