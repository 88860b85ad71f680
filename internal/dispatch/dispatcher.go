// Package dispatch routes JSON-RPC frames to the MCP server, enforcing tool
// names and input schemas before any handler runs.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/thellimist/openapi-client-generator/internal/rpc"
)

var (
	// ErrUnknownTool is returned for calls naming a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments is returned when arguments violate the tool's input schema.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// ArgumentError describes the first schema violation found in tool arguments.
type ArgumentError struct {
	Tool   string
	Field  string // JSON pointer of the offending value, empty for the root
	Reason string
}

func (e *ArgumentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid arguments for tool %s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("invalid arguments for tool %s: %s: %s", e.Tool, e.Field, e.Reason)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArguments }

type tool struct {
	descriptor mcp.Tool
	schema     *openapi3.Schema
	handler    server.ToolHandlerFunc
}

// Dispatcher wraps an MCP server. Tool calls are checked here; every other
// method is served by the MCP library.
type Dispatcher struct {
	server *server.MCPServer
	logger *zap.Logger
	tools  map[string]*tool
}

// NewServer creates the MCP server advertising name and version.
func NewServer(name, version string) *server.MCPServer {
	return server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
}

// New returns a dispatcher in front of s.
func New(s *server.MCPServer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{server: s, logger: logger, tools: make(map[string]*tool)}
}

// Register compiles the tool's raw input schema and adds the tool to the server.
func (d *Dispatcher) Register(descriptor mcp.Tool, handler server.ToolHandlerFunc) error {
	if _, dup := d.tools[descriptor.Name]; dup {
		return fmt.Errorf("tool %s already registered", descriptor.Name)
	}
	raw := descriptor.RawInputSchema
	if len(raw) == 0 {
		data, err := json.Marshal(descriptor.InputSchema)
		if err != nil {
			return fmt.Errorf("encode %s input schema: %w", descriptor.Name, err)
		}
		raw = data
	}
	var schema openapi3.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return fmt.Errorf("parse %s input schema: %w", descriptor.Name, err)
	}

	d.tools[descriptor.Name] = &tool{descriptor: descriptor, schema: &schema, handler: handler}
	d.server.AddTool(descriptor, handler)
	return nil
}

// ToolNames returns the registered tool names in sorted order.
func (d *Dispatcher) ToolNames() []string {
	names := make([]string, 0, len(d.tools))
	for name := range d.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks args against the named tool's schema and returns them decoded.
func (d *Dispatcher) Validate(name string, args json.RawMessage) (map[string]any, error) {
	t, ok := d.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	var value any = map[string]any{}
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &value); err != nil {
			return nil, &ArgumentError{Tool: name, Reason: err.Error()}
		}
	}
	if err := t.schema.VisitJSON(value); err != nil {
		return nil, argumentError(name, err)
	}
	m, _ := value.(map[string]any)
	return m, nil
}

func argumentError(name string, err error) *ArgumentError {
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		return &ArgumentError{Tool: name, Field: strings.Join(se.JSONPointer(), "/"), Reason: se.Reason}
	}
	return &ArgumentError{Tool: name, Reason: err.Error()}
}

// Call validates and runs a tool in-process, bypassing the JSON-RPC layer.
func (d *Dispatcher) Call(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	decoded, err := d.Validate(name, args)
	if err != nil {
		return nil, err
	}
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = decoded
	return d.tools[name].handler(ctx, req)
}

type unknownToolData struct {
	Name       string `json:"name"`
	Suggestion string `json:"suggestion,omitempty"`
}

type invalidArgumentsData struct {
	Tool   string `json:"tool"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// HandleFrame implements rpc.Handler.
func (d *Dispatcher) HandleFrame(ctx context.Context, frame []byte) []byte {
	if !gjson.ValidBytes(frame) {
		d.logger.Debug("unparseable frame", zap.Int("bytes", len(frame)))
		return rpc.ErrorFrame(nil, rpc.CodeParseError, "Parse error", nil)
	}
	msg := gjson.ParseBytes(frame)
	if !msg.IsObject() {
		return rpc.ErrorFrame(nil, rpc.CodeInvalidRequest, "Invalid Request", nil)
	}

	var id json.RawMessage
	if v := msg.Get("id"); v.Exists() {
		id = json.RawMessage(v.Raw)
	}
	method := msg.Get("method").String()

	if method == string(mcp.MethodToolsCall) {
		if reply, handled := d.checkCall(id, msg.Get("params")); handled {
			return reply
		}
	}

	resp := d.server.HandleMessage(ctx, json.RawMessage(frame))
	if resp == nil {
		return nil
	}
	out, err := json.Marshal(resp)
	if err != nil {
		d.logger.Error("encode response", zap.String("method", method), zap.Error(err))
		return rpc.ErrorFrame(id, rpc.CodeInternalError, "Internal error", nil)
	}
	return out
}

// checkCall rejects tools/call requests for unknown tools or bad arguments.
// handled is false when the call should proceed to the MCP server.
func (d *Dispatcher) checkCall(id json.RawMessage, params gjson.Result) (reply []byte, handled bool) {
	name := params.Get("name").String()
	var args json.RawMessage
	if a := params.Get("arguments"); a.Exists() {
		args = json.RawMessage(a.Raw)
	}

	_, err := d.Validate(name, args)
	if err == nil {
		return nil, false
	}

	logger := d.logger.With(zap.String("tool", name))
	var out []byte
	var argErr *ArgumentError
	switch {
	case errors.Is(err, ErrUnknownTool):
		logger.Warn("unknown tool requested")
		out = rpc.ErrorFrame(id, rpc.CodeMethodNotFound, "Unknown tool: "+name,
			unknownToolData{Name: name, Suggestion: suggest(name, d.ToolNames())})
	case errors.As(err, &argErr):
		logger.Warn("tool arguments rejected", zap.String("field", argErr.Field), zap.String("reason", argErr.Reason))
		out = rpc.ErrorFrame(id, rpc.CodeInvalidParams, argErr.Error(),
			invalidArgumentsData{Tool: name, Field: argErr.Field, Reason: argErr.Reason})
	default:
		out = rpc.ErrorFrame(id, rpc.CodeInvalidParams, err.Error(), nil)
	}
	if len(id) == 0 {
		// Notifications never get a reply, not even an error.
		return nil, true
	}
	return out, true
}
