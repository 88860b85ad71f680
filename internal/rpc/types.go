package rpc

import (
	"encoding/json"
	"fmt"
)

// Version is the only JSON-RPC version spoken on the channel.
const Version = "2.0"

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is a JSON-RPC 2.0 request or notification. Notifications carry no ID.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewRequest builds a request with an integer ID and marshaled params.
// A zero id produces a notification.
func NewRequest(id int, method string, params any) (*Request, error) {
	req := &Request{JSONRPC: Version, Method: method}
	if id != 0 {
		req.ID = json.RawMessage(fmt.Sprintf("%d", id))
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal %s params: %w", method, err)
		}
		req.Params = data
	}
	return req, nil
}

// ErrorFrame encodes an error response for id. A missing id is encoded as null.
func ErrorFrame(id json.RawMessage, code int, message string, data any) []byte {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	resp := Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	}
	frame, err := json.Marshal(resp)
	if err != nil {
		// Data was not encodable; drop it rather than lose the response.
		resp.Error.Data = nil
		frame, _ = json.Marshal(resp)
	}
	return frame
}
