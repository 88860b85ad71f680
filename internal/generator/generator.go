// Package generator defines the boundary between the MCP tool and the code
// that actually turns an OpenAPI document into a TypeScript client.
package generator

import (
	"context"
	"fmt"
)

// HTTPClient names the request layer emitted into the generated core.
type HTTPClient string

const (
	HTTPClientFetch HTTPClient = "fetch"
	HTTPClientAxios HTTPClient = "axios"
)

// Valid reports whether c is a supported client.
func (c HTTPClient) Valid() bool {
	return c == HTTPClientFetch || c == HTTPClientAxios
}

// Indent is the indentation unit of generated sources.
type Indent string

const (
	Indent2   Indent = "2"
	Indent4   Indent = "4"
	IndentTab Indent = "tab"
)

// Unit returns the literal whitespace for one indentation level.
func (i Indent) Unit() string {
	switch i {
	case Indent2:
		return "  "
	case IndentTab:
		return "\t"
	default:
		return "    "
	}
}

// Options is everything a Generator needs for one run.
type Options struct {
	Input      string // URL or file path of the OpenAPI document
	Output     string // destination directory
	HTTPClient HTTPClient

	UseOptions     bool // service methods take a single options object
	UseUnionTypes  bool // enums and oneOf/anyOf become union types
	ExportCore     bool
	ExportServices bool
	ExportModels   bool
	ExportSchemas  bool
	Indent         Indent
}

// Policy returns the fixed generation policy applied to every tool call.
// Only input, output and httpClient come from the caller.
func Policy(input, output string, client HTTPClient) Options {
	return Options{
		Input:          input,
		Output:         output,
		HTTPClient:     client,
		UseOptions:     true,
		UseUnionTypes:  true,
		ExportCore:     true,
		ExportServices: true,
		ExportModels:   true,
		ExportSchemas:  true,
		Indent:         Indent2,
	}
}

// Validate checks the fields a generator cannot proceed without.
func (o Options) Validate() error {
	if o.Input == "" {
		return fmt.Errorf("input is empty")
	}
	if o.Output == "" {
		return fmt.Errorf("output is empty")
	}
	if !o.HTTPClient.Valid() {
		return fmt.Errorf("unsupported http client %q", o.HTTPClient)
	}
	switch o.Indent {
	case Indent2, Indent4, IndentTab, "":
	default:
		return fmt.Errorf("unsupported indent %q", o.Indent)
	}
	return nil
}

// Generator writes a client for opts.Input into opts.Output or fails.
// Partially written output is left in place on failure.
type Generator interface {
	Generate(ctx context.Context, opts Options) error
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, opts Options) error

func (f Func) Generate(ctx context.Context, opts Options) error {
	return f(ctx, opts)
}
