package genclient

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/thellimist/openapi-client-generator/internal/generator"
)

// Request is a validated generate_client call.
type Request struct {
	Input      string
	Output     string
	HTTPClient generator.HTTPClient
}

// RequestFromArguments reads a Request out of already validated tool arguments.
func RequestFromArguments(args map[string]any) Request {
	input, _ := args["input"].(string)
	output, _ := args["output"].(string)
	client, _ := args["httpClient"].(string)
	return Request{Input: input, Output: output, HTTPClient: generator.HTTPClient(client)}
}

// Handler runs the delegated generator for generate_client calls.
type Handler struct {
	gen     generator.Generator
	timeout time.Duration
	logger  *zap.Logger
	locks   *pathLocks
}

// NewHandler returns a handler backed by gen. A zero timeout means none.
func NewHandler(gen generator.Generator, timeout time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gen: gen, timeout: timeout, logger: logger, locks: newPathLocks()}
}

// Handle is the MCP tool handler. Generation failures, panics included, are
// reported as isError results, never as protocol errors.
func (h *Handler) Handle(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("generator panicked", zap.Any("panic", p), zap.Stack("stack"))
			res, err = mcp.NewToolResultError(fmt.Sprintf("Error generating client: %v", p)), nil
		}
	}()

	r := RequestFromArguments(req.GetArguments())
	text, err := h.Generate(ctx, r)
	if err != nil {
		return mcp.NewToolResultError("Error generating client: " + err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// Generate creates r.Output, runs the generator with the fixed policy and
// returns the success message listing the output directory.
func (h *Handler) Generate(ctx context.Context, r Request) (string, error) {
	logger := h.logger.With(
		zap.String("call_id", uuid.NewString()),
		zap.String("input", r.Input),
		zap.String("output", r.Output),
		zap.String("http_client", string(r.HTTPClient)),
	)
	start := time.Now()

	unlock := h.locks.lock(r.Output)
	defer unlock()

	if err := os.MkdirAll(r.Output, 0755); err != nil {
		logger.Warn("create output directory failed", zap.Error(err))
		return "", err
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := h.gen.Generate(ctx, generator.Policy(r.Input, r.Output, r.HTTPClient)); err != nil {
		logger.Warn("generation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return "", err
	}

	entries, err := os.ReadDir(r.Output)
	if err != nil {
		logger.Warn("list output directory failed", zap.Error(err))
		return "", fmt.Errorf("list %s: %w", r.Output, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	logger.Info("client generated", zap.Int("entries", len(names)), zap.Duration("elapsed", time.Since(start)))
	return SuccessText(r.Output, names), nil
}

// SuccessText formats the success payload for a generated output directory.
func SuccessText(output string, names []string) string {
	return fmt.Sprintf("Successfully generated TypeScript API client in %s\n\nGenerated files:\n%s",
		output, strings.Join(names, "\n"))
}
