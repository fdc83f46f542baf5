// Package mcp serves the tool surface over newline-delimited
// JSON-RPC 2.0 on a byte stream, the framing MCP clients use for
// stdio servers. Stdout carries protocol messages only; every
// diagnostic goes to the logger (stderr).
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wagok/LogExplorerMCP/internal/tools"
)

// protocolVersion is the MCP revision this server speaks.
const protocolVersion = "2024-11-05"

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type toolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callResult struct {
	Content []content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Server dispatches JSON-RPC requests into the tool surface.
type Server struct {
	name     string
	version  string
	handlers map[string]tools.Handler
	order    []string
	log      *zap.Logger
}

// NewServer builds a server over the given tool surface.
func NewServer(name, version string, t *tools.Tools, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		name:     name,
		version:  version,
		handlers: make(map[string]tools.Handler),
		log:      log,
	}
	for _, h := range t.Handlers() {
		s.handlers[h.Name] = h
		s.order = append(s.order, h.Name)
	}
	return s
}

// Run reads newline-delimited requests from r until EOF or context
// cancellation, writing one response line per request with an id.
// Notifications produce no output.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("unparseable request", zap.Error(err))
			if err := enc.Encode(response{
				JSONRPC: "2.0",
				Error:   &rpcError{Code: codeParseError, Message: "parse error"},
			}); err != nil {
				return err
			}
			continue
		}

		resp, reply := s.handle(ctx, req)
		if !reply {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// handle runs one request. The second return is false for
// notifications, which must not be answered.
func (s *Server) handle(ctx context.Context, req request) (response, bool) {
	resp := response{JSONRPC: "2.0", ID: req.ID}
	notification := len(req.ID) == 0

	switch req.Method {
	case "initialize":
		s.log.Info("client initialized", zap.String("server", s.name))
		resp.Result = map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": s.name, "version": s.version},
		}

	case "notifications/initialized", "notifications/cancelled":
		return response{}, false

	case "ping":
		resp.Result = map[string]any{}

	case "tools/list":
		infos := make([]toolInfo, 0, len(s.order))
		for _, name := range s.order {
			h := s.handlers[name]
			infos = append(infos, toolInfo{Name: h.Name, Description: h.Description, InputSchema: h.InputSchema})
		}
		resp.Result = map[string]any{"tools": infos}

	case "tools/call":
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
			break
		}
		h, ok := s.handlers[params.Name]
		if !ok {
			resp.Error = &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("unknown tool %q", params.Name)}
			break
		}
		s.log.Debug("tool call", zap.String("tool", params.Name))
		result := h.Call(ctx, params.Arguments)
		text, err := json.Marshal(result)
		if err != nil {
			resp.Error = &rpcError{Code: codeInvalidParams, Message: fmt.Sprintf("marshal result: %v", err)}
			break
		}
		_, isErr := result.(tools.ErrorResult)
		resp.Result = callResult{
			Content: []content{{Type: "text", Text: string(text)}},
			IsError: isErr,
		}

	default:
		if notification {
			return response{}, false
		}
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("method %q not found", req.Method)}
	}

	if notification {
		return response{}, false
	}
	return resp, true
}
