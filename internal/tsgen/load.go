package tsgen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/oasdiff/yaml"
)

// maxDocumentSize caps remote downloads.
const maxDocumentSize = 32 << 20

// isRemote reports whether input is an http(s) URL rather than a path.
func isRemote(input string) bool {
	u, err := url.Parse(input)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load reads an OpenAPI 3.x or Swagger 2.0 document from a URL or file path
// and returns it as a resolved OpenAPI 3 document.
func Load(ctx context.Context, client *http.Client, input string) (*openapi3.T, error) {
	if client == nil {
		client = http.DefaultClient
	}

	data, location, err := readDocument(ctx, client, input)
	if err != nil {
		return nil, err
	}

	var probe struct {
		OpenAPI any `json:"openapi"`
		Swagger any `json:"swagger"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse %s: %w", input, err)
	}
	openapiVersion, swaggerVersion := versionString(probe.OpenAPI), versionString(probe.Swagger)

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = true
	loader.ReadFromURIFunc = refReader(client, isRemote(input))

	switch {
	case strings.HasPrefix(openapiVersion, "3."):
		doc, err := loader.LoadFromDataWithPath(data, location)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", input, err)
		}
		return doc, nil

	case swaggerVersion == "2" || strings.HasPrefix(swaggerVersion, "2."):
		var doc2 openapi2.T
		if err := yaml.Unmarshal(data, &doc2); err != nil {
			return nil, fmt.Errorf("parse swagger document %s: %w", input, err)
		}
		doc, err := openapi2conv.ToV3(&doc2)
		if err != nil {
			return nil, fmt.Errorf("convert swagger document %s: %w", input, err)
		}
		if err := loader.ResolveRefsIn(doc, location); err != nil {
			return nil, fmt.Errorf("resolve refs in %s: %w", input, err)
		}
		return doc, nil

	default:
		return nil, fmt.Errorf("unsupported OpenAPI version in %s: expected \"openapi: 3.x\" or \"swagger: 2.0\"", input)
	}
}

// refReader resolves external $refs. Remote documents may only reference
// other http(s) documents; local documents may also reference files.
func refReader(client *http.Client, remote bool) openapi3.ReadFromURIFunc {
	if remote {
		return openapi3.ReadFromHTTP(client)
	}
	return openapi3.ReadFromURIs(openapi3.ReadFromHTTP(client), openapi3.ReadFromFile)
}

// versionString normalizes a version field that YAML may have decoded as a number.
func versionString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func readDocument(ctx context.Context, client *http.Client, input string) ([]byte, *url.URL, error) {
	if isRemote(input) {
		u, _ := url.Parse(input)
		data, err := fetch(ctx, client, u)
		if err != nil {
			return nil, nil, err
		}
		return data, u, nil
	}

	path := input
	if u, err := url.Parse(input); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return data, &url.URL{Path: filepath.ToSlash(abs)}, nil
}

func fetch(ctx context.Context, client *http.Client, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", u, err)
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/yaml, */*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch %s: http status %d: %s", u, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("fetch %s: document larger than %d bytes", u, maxDocumentSize)
	}
	return data, nil
}
