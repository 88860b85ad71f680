// Package main is a stand-in for the npx code generator in e2e tests. It
// accepts the same flags, records them in args.json and lays out the usual
// output tree.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("openapi", pflag.ContinueOnError)
	input := fs.String("input", "", "")
	output := fs.String("output", "", "")
	client := fs.String("client", "fetch", "")
	useOptions := fs.Bool("useOptions", false, "")
	useUnionTypes := fs.Bool("useUnionTypes", false, "")
	exportCore := fs.String("exportCore", "true", "")
	exportServices := fs.String("exportServices", "true", "")
	exportModels := fs.String("exportModels", "true", "")
	exportSchemas := fs.String("exportSchemas", "false", "")
	indent := fs.String("indent", "4", "")
	if err := fs.Parse(os.Args[1:]); err != nil {
		fail(err)
	}

	if !strings.Contains(*input, "://") {
		if _, err := os.Stat(*input); err != nil {
			fail(err)
		}
	}

	for _, dir := range []string{"core", "models", "schemas", "services"} {
		if err := os.MkdirAll(filepath.Join(*output, dir), 0755); err != nil {
			fail(err)
		}
	}
	if err := os.WriteFile(filepath.Join(*output, "index.ts"), []byte("export {};\n"), 0644); err != nil {
		fail(err)
	}

	data, _ := json.Marshal(map[string]any{
		"input":          *input,
		"client":         *client,
		"useOptions":     *useOptions,
		"useUnionTypes":  *useUnionTypes,
		"exportCore":     *exportCore,
		"exportServices": *exportServices,
		"exportModels":   *exportModels,
		"exportSchemas":  *exportSchemas,
		"indent":         *indent,
		"positional":     fs.Args(),
	})
	if err := os.WriteFile(filepath.Join(*output, "args.json"), data, 0644); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
