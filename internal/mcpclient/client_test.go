package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thellimist/openapi-client-generator/internal/dispatch"
	"github.com/thellimist/openapi-client-generator/internal/rpc"
)

// mockTransport records requests and returns canned responses.
type mockTransport struct {
	requests      []*rpc.Request
	notifications []*rpc.Request
	responses     []*rpc.Response
	errors        []error
	callIndex     int
	closed        bool
}

func (m *mockTransport) Send(_ context.Context, req *rpc.Request) (*rpc.Response, error) {
	m.requests = append(m.requests, req)
	idx := m.callIndex
	m.callIndex++
	if idx < len(m.errors) && m.errors[idx] != nil {
		return nil, m.errors[idx]
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return nil, fmt.Errorf("no response configured for call %d", idx)
}

func (m *mockTransport) Notify(_ context.Context, req *rpc.Request) error {
	m.notifications = append(m.notifications, req)
	return nil
}

func (m *mockTransport) Close() error {
	m.closed = true
	return nil
}

func result(t *testing.T, id int, v any) *rpc.Response {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	return &rpc.Response{JSONRPC: rpc.Version, ID: json.RawMessage(fmt.Sprint(id)), Result: data}
}

func TestInitialize(t *testing.T) {
	mock := &mockTransport{responses: []*rpc.Response{
		result(t, 1, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      Implementation{Name: "test-server", Version: "1.0.0"},
		}),
	}}

	client := NewClient(mock)
	res, err := client.Initialize(context.Background(), "tester", "0.1.0")
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if res.ServerInfo.Name != "test-server" || res.ServerInfo.Version != "1.0.0" {
		t.Errorf("ServerInfo = %+v", res.ServerInfo)
	}

	if len(mock.requests) != 1 || mock.requests[0].Method != "initialize" {
		t.Fatalf("requests = %+v", mock.requests)
	}
	var params InitializeParams
	if err := json.Unmarshal(mock.requests[0].Params, &params); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if params.ClientInfo.Name != "tester" || params.ProtocolVersion != ProtocolVersion {
		t.Errorf("params = %+v", params)
	}

	if len(mock.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(mock.notifications))
	}
	if n := mock.notifications[0]; n.Method != "notifications/initialized" || !n.IsNotification() {
		t.Errorf("notification = %+v", n)
	}
}

func TestInitializeTransportError(t *testing.T) {
	mock := &mockTransport{errors: []error{errors.New("broken pipe")}}
	_, err := NewClient(mock).Initialize(context.Background(), "tester", "0.1.0")
	if err == nil || !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(mock.notifications) != 0 {
		t.Error("initialized notification sent after failed handshake")
	}
}

func TestListTools(t *testing.T) {
	mock := &mockTransport{responses: []*rpc.Response{
		result(t, 1, map[string]any{"tools": []map[string]any{
			{"name": "generate_client", "description": "d", "inputSchema": map[string]any{"type": "object"}},
		}}),
	}}
	tools, err := NewClient(mock).ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() error: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "generate_client" {
		t.Fatalf("tools = %+v", tools)
	}
	if string(tools[0].InputSchema) != `{"type":"object"}` {
		t.Errorf("inputSchema = %s", tools[0].InputSchema)
	}
}

func TestCallToolServerError(t *testing.T) {
	mock := &mockTransport{responses: []*rpc.Response{{
		JSONRPC: rpc.Version,
		ID:      json.RawMessage("1"),
		Error:   &rpc.Error{Code: rpc.CodeMethodNotFound, Message: "Unknown tool: nope"},
	}}}
	_, err := NewClient(mock).CallTool(context.Background(), "nope", nil)
	var rpcErr *rpc.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != rpc.CodeMethodNotFound {
		t.Fatalf("expected rpc error -32601, got %v", err)
	}
}

func TestCallToolParams(t *testing.T) {
	mock := &mockTransport{responses: []*rpc.Response{
		result(t, 1, CallToolResult{Content: []Content{{Type: "text", Text: "a"}, {Type: "text", Text: "b"}}}),
	}}
	res, err := NewClient(mock).CallTool(context.Background(), "echo", map[string]any{"x": 1})
	if err != nil {
		t.Fatalf("CallTool() error: %v", err)
	}
	if res.Text() != "ab" || res.IsError {
		t.Errorf("result = %+v", res)
	}
	if got := string(mock.requests[0].Params); got != `{"name":"echo","arguments":{"x":1}}` {
		t.Errorf("params = %s", got)
	}
}

func TestClose(t *testing.T) {
	mock := &mockTransport{}
	if err := NewClient(mock).Close(); err != nil || !mock.closed {
		t.Fatalf("Close() = %v, closed = %v", err, mock.closed)
	}
}

func TestMergeEnv(t *testing.T) {
	got := mergeEnv([]string{"A=1", "B=2", "bogus"}, []string{"B=3", "C=4"})
	if strings.Join(got, ",") != "A=1,B=3,C=4" {
		t.Errorf("mergeEnv = %v", got)
	}
}

// startServer runs a dispatcher behind a StreamServer connected by pipes.
func startServer(t *testing.T) *Client {
	t.Helper()
	d := dispatch.New(dispatch.NewServer("test-server", "1.0.0"), nil)
	echo := mcp.NewToolWithRawSchema("echo", "Echo text",
		json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`))
	err := d.Register(echo, func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(req.GetArguments()["text"].(string)), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	clientR, serverW := io.Pipe()
	serverR, clientW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- rpc.NewStreamServer(d, serverW, nil).Serve(ctx, serverR)
	}()

	client := NewClient(NewStreamTransport(clientR, clientW, clientW))
	t.Cleanup(func() {
		client.Close()
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve() = %v", err)
		}
	})
	return client
}

func TestStreamRoundTrip(t *testing.T) {
	client := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	info, err := client.Initialize(ctx, "tester", "0.1.0")
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if info.ServerInfo.Name != "test-server" {
		t.Errorf("serverInfo = %+v", info.ServerInfo)
	}

	tools, err := client.ListTools(ctx)
	if err != nil || len(tools) != 1 || tools[0].Name != "echo" {
		t.Fatalf("ListTools() = %+v, %v", tools, err)
	}

	res, err := client.CallTool(ctx, "echo", map[string]any{"text": "hello"})
	if err != nil || res.Text() != "hello" {
		t.Fatalf("CallTool() = %+v, %v", res, err)
	}

	_, err = client.CallTool(ctx, "ecko", map[string]any{"text": "x"})
	var rpcErr *rpc.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != rpc.CodeMethodNotFound {
		t.Fatalf("unknown tool error = %v", err)
	}

	_, err = client.CallTool(ctx, "echo", map[string]any{})
	if !errors.As(err, &rpcErr) || rpcErr.Code != rpc.CodeInvalidParams {
		t.Fatalf("missing argument error = %v", err)
	}
}

func TestStreamSendHonorsContext(t *testing.T) {
	r, _ := io.Pipe()
	tr := NewStreamTransport(r, io.Discard, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req, _ := rpc.NewRequest(1, "ping", nil)
	if _, err := tr.Send(ctx, req); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Send() error = %v, want deadline exceeded", err)
	}
}
