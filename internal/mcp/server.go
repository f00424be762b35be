package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// maxLineBytes bounds one JSON-RPC message. Export documents can carry icons
// as data URLs, so lines get large.
const maxLineBytes = 64 << 20

// Handler handles one tool call.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Server is an MCP server that communicates over stdio using JSON-RPC 2.0.
// Stdout carries protocol messages only; diagnostics go to the logger.
type Server struct {
	info         Implementation
	instructions string
	logger       *zap.Logger

	mu          sync.RWMutex
	tools       []Tool
	handlers    map[string]Handler
	initialized bool

	stdin  io.Reader
	stdout io.Writer
	outMu  sync.Mutex
}

// NewServer creates a new MCP server with the given name and version.
func NewServer(name, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		info:     Implementation{Name: name, Version: version},
		logger:   logger.Named("mcp"),
		handlers: make(map[string]Handler),
		stdin:    os.Stdin,
		stdout:   os.Stdout,
	}
}

// SetIO sets custom I/O streams for the server (useful for testing).
func (s *Server) SetIO(stdin io.Reader, stdout io.Writer) {
	s.stdin = stdin
	s.stdout = stdout
}

// SetInstructions sets the usage notes returned from initialize.
func (s *Server) SetInstructions(text string) {
	s.instructions = text
}

// RegisterTool registers a tool with its handler. Registering a name twice
// replaces the earlier definition in place.
func (s *Server) RegisterTool(tool Tool, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.handlers[tool.Name]; !exists {
		s.tools = append(s.tools, tool)
	} else {
		for i := range s.tools {
			if s.tools[i].Name == tool.Name {
				s.tools[i] = tool
			}
		}
	}
	s.handlers[tool.Name] = handler
}

// Initialized reports whether a client has completed the handshake.
func (s *Server) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Run reads one request per line until stdin closes or ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.stdin)
	scanner.Buffer(make([]byte, 0, 1<<20), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if resp := s.handleRequest(ctx, line); resp != nil {
			if err := s.writeResponse(resp); err != nil {
				s.logger.Error("failed to write response", zap.Error(err))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return ctx.Err()
}

// handleRequest decodes one line and returns the response to send, or nil
// for notifications.
func (s *Server) handleRequest(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse(nil, NewError(ParseError, "Parse error: "+err.Error()))
	}
	if req.JSONRPC != JSONRPCVersion {
		return errorResponse(req.ID, NewError(InvalidRequest, `Invalid Request: jsonrpc must be "2.0"`))
	}

	result, err := s.route(ctx, req.Method, req.Params)

	if req.ID == nil {
		if err != nil {
			s.logger.Debug("notification failed", zap.String("method", req.Method), zap.Error(err))
		}
		return nil
	}
	if err != nil {
		var rpcErr *Error
		if !errors.As(err, &rpcErr) {
			rpcErr = NewError(InternalError, err.Error())
		}
		return errorResponse(req.ID, rpcErr)
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: req.ID, Result: result}
}

func errorResponse(id any, err *Error) *Response {
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: err}
}

func (s *Server) route(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "initialize":
		return s.handleInitialize(params)
	case "initialized", "notifications/initialized":
		return nil, nil
	case "ping":
		return struct{}{}, nil
	case "tools/list":
		return s.handleToolsList(), nil
	case "tools/call":
		return s.handleToolsCall(ctx, params)
	default:
		return nil, NewError(MethodNotFound, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(params json.RawMessage) (any, error) {
	var p InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, NewError(InvalidParams, "Invalid params: "+err.Error())
		}
	}

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	s.logger.Info("client connected",
		zap.String("client", p.ClientInfo.Name),
		zap.String("client_version", p.ClientInfo.Version),
		zap.String("protocol", p.ProtocolVersion),
	)

	return InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      s.info,
		Instructions:    s.instructions,
	}, nil
}

func (s *Server) handleToolsList() ToolsListResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]Tool, len(s.tools))
	copy(tools, s.tools)
	return ToolsListResult{Tools: tools}
}

// handleToolsCall runs a tool. Handler failures, including bad arguments,
// are reported in the result with isError set so the model can read them;
// only an unknown tool or a malformed call is a JSON-RPC error.
func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (any, error) {
	var call ToolCallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, NewError(InvalidParams, "Invalid params: "+err.Error())
	}

	s.mu.RLock()
	handler, ok := s.handlers[call.Name]
	s.mu.RUnlock()
	if !ok {
		return nil, NewError(MethodNotFound, "Tool not found: "+call.Name)
	}

	start := time.Now()
	result, err := handler(ctx, call.Arguments)
	log := s.logger.With(zap.String("tool", call.Name), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		log.Debug("tool failed", zap.Error(err))
		return errorResult(err.Error()), nil
	}

	out, err := json.Marshal(result)
	if err != nil {
		log.Error("marshal tool result", zap.Error(err))
		return errorResult("Failed to marshal result: " + err.Error()), nil
	}

	log.Debug("tool called")
	return textResult(string(out)), nil
}

func (s *Server) writeResponse(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	data = append(data, '\n')

	s.outMu.Lock()
	defer s.outMu.Unlock()
	_, err = s.stdout.Write(data)
	return err
}
