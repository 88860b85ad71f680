// Package mcpclient is a minimal MCP client used to drive the server in tests
// and from the command line.
package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/thellimist/openapi-client-generator/internal/rpc"
)

// Client is a high-level MCP client over a Transport.
type Client struct {
	transport Transport
	nextID    int
}

// NewClient creates a client using transport.
func NewClient(transport Transport) *Client {
	return &Client{transport: transport, nextID: 1}
}

func (c *Client) allocID() int {
	id := c.nextID
	c.nextID++
	return id
}

// call sends method and decodes the result into out. Server errors are
// returned as *rpc.Error.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	req, err := rpc.NewRequest(c.allocID(), method, params)
	if err != nil {
		return err
	}
	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %w", method, resp.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: unmarshal result: %w", method, err)
	}
	return nil
}

// Initialize performs the initialize handshake followed by the
// notifications/initialized notification.
func (c *Client) Initialize(ctx context.Context, clientName, clientVersion string) (*InitializeResult, error) {
	params := InitializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo:      Implementation{Name: clientName, Version: clientVersion},
	}
	var result InitializeResult
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return nil, err
	}

	notif, err := rpc.NewRequest(0, "notifications/initialized", nil)
	if err != nil {
		return nil, err
	}
	if err := c.transport.Notify(ctx, notif); err != nil {
		return nil, fmt.Errorf("notifications/initialized: %w", err)
	}
	return &result, nil
}

// ListTools returns the server's tools.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var result toolsListResult
	if err := c.call(ctx, "tools/list", map[string]any{}, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool invokes a tool. Tool failures come back as a result with IsError
// set; protocol failures are returned as errors wrapping *rpc.Error.
func (c *Client) CallTool(ctx context.Context, name string, args any) (*CallToolResult, error) {
	var result CallToolResult
	if err := c.call(ctx, "tools/call", callToolParams{Name: name, Arguments: args}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks that the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", nil, nil)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}
