package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/thellimist/openapi-client-generator/internal/genclient"
	"github.com/thellimist/openapi-client-generator/internal/logging"
	"github.com/thellimist/openapi-client-generator/internal/schema"
)

var generateBinding *schema.Binding

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run generate_client once from the command line",
	Long: `Run the generate_client tool once without an MCP client.

The flags mirror the tool's input schema and go through the same validation.

Examples:
  openapi-client-generator generate --input ./openapi.yaml --output ./src/client --http-client fetch
  openapi-client-generator generate --input https://api.example.com/openapi.json --output ./client --http-client axios`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	flags, err := schema.ExtractFlags(genclient.InputSchema)
	if err != nil {
		panic(fmt.Sprintf("generate_client input schema: %v", err))
	}
	generateBinding = schema.Register(generateCmd.Flags(), flags)
	for _, f := range flags {
		if f.Required {
			_ = generateCmd.MarkFlagRequired(f.Name)
		}
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	args, err := generateBinding.Arguments(cmd.Flags())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)
	defer logger.Sync() //nolint:errcheck

	d, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := d.Call(ctx, genclient.ToolName, raw)
	if err != nil {
		return err
	}
	text := toolText(res.Content)
	if res.IsError {
		return fmt.Errorf("%s", text)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func toolText(content []mcp.Content) string {
	var b strings.Builder
	for _, c := range content {
		if t, ok := c.(mcp.TextContent); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}
