package rpc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Handler answers a single inbound frame. Returning nil sends nothing back,
// which is how notifications are acknowledged.
type Handler interface {
	HandleFrame(ctx context.Context, frame []byte) []byte
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, frame []byte) []byte

func (f HandlerFunc) HandleFrame(ctx context.Context, frame []byte) []byte {
	return f(ctx, frame)
}

// StreamServer serves newline-delimited JSON-RPC over a duplex byte stream.
// Frames are handled one at a time in arrival order.
type StreamServer struct {
	handler Handler
	logger  *zap.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewStreamServer creates a server writing replies to out.
func NewStreamServer(handler Handler, out io.Writer, logger *zap.Logger) *StreamServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamServer{handler: handler, out: out, logger: logger}
}

type inbound struct {
	frame []byte
	err   error
}

// Serve reads frames from in until EOF or until ctx is cancelled. Both are a
// clean shutdown and return nil.
func (s *StreamServer) Serve(ctx context.Context, in io.Reader) error {
	frames := make(chan inbound)
	done := make(chan struct{})
	defer close(done)

	// The read can block past cancellation, so the reader is never waited on.
	go func() {
		defer close(frames)
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadBytes('\n')
			if len(bytes.TrimSpace(line)) > 0 {
				select {
				case frames <- inbound{frame: line}:
				case <-done:
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					select {
					case frames <- inbound{err: err}:
					case <-done:
					}
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("stream closed by context")
			return nil
		case msg, ok := <-frames:
			if !ok {
				s.logger.Debug("stream reached EOF")
				return nil
			}
			if msg.err != nil {
				return fmt.Errorf("read frame: %w", msg.err)
			}
			reply := s.handler.HandleFrame(ctx, bytes.TrimSpace(msg.frame))
			if reply == nil {
				continue
			}
			if err := s.write(reply); err != nil {
				return err
			}
		}
	}
}

func (s *StreamServer) write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make([]byte, 0, len(frame)+1)
	data = append(data, frame...)
	data = append(data, '\n')
	if _, err := s.out.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
