package mcpclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/thellimist/openapi-client-generator/internal/rpc"
)

// Transport exchanges JSON-RPC messages with an MCP server.
type Transport interface {
	// Send writes req and waits for the response with the same ID.
	Send(ctx context.Context, req *rpc.Request) (*rpc.Response, error)
	// Notify writes a notification; no response is expected.
	Notify(ctx context.Context, req *rpc.Request) error
	// Close releases any resources held by the transport.
	Close() error
}

// StreamTransport speaks newline-delimited JSON-RPC over a reader/writer pair.
// One request is in flight at a time.
type StreamTransport struct {
	mu     sync.Mutex
	w      io.Writer
	reader *bufio.Reader
	closer io.Closer
}

// NewStreamTransport uses r for responses and w for requests. closer, if
// non-nil, is closed by Close.
func NewStreamTransport(r io.Reader, w io.Writer, closer io.Closer) *StreamTransport {
	return &StreamTransport{w: w, reader: bufio.NewReader(r), closer: closer}
}

func (t *StreamTransport) write(req *rpc.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := t.w.Write(data); err != nil {
		return fmt.Errorf("write request: %w", err)
	}
	return nil
}

// Notify implements Transport.
func (t *StreamTransport) Notify(_ context.Context, req *rpc.Request) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.write(req)
}

// Send implements Transport. Frames with other IDs, such as server
// notifications, are skipped.
func (t *StreamTransport) Send(ctx context.Context, req *rpc.Request) (*rpc.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.write(req); err != nil {
		return nil, err
	}

	type result struct {
		resp *rpc.Response
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		for {
			line, err := t.reader.ReadBytes('\n')
			if err != nil {
				ch <- result{err: fmt.Errorf("read response: %w", err)}
				return
			}
			var resp rpc.Response
			if err := json.Unmarshal(line, &resp); err != nil {
				ch <- result{err: fmt.Errorf("unmarshal response: %w", err)}
				return
			}
			if string(resp.ID) == string(req.ID) {
				ch <- result{resp: &resp}
				return
			}
		}
	}()

	select {
	case r := <-ch:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements Transport.
func (t *StreamTransport) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}
