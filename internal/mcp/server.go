package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/MyAgentHubs/logifyer/internal/config"
	"github.com/MyAgentHubs/logifyer/internal/db"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// CallTimeout bounds every tools/call.
const CallTimeout = 5 * time.Second

// Server exposes the journal to an MCP client over JSON-RPC 2.0.
type Server struct {
	db     *db.DB
	dbPath string
	info   config.MCPConfig
	now    func() time.Time

	mu  sync.Mutex    // guards enc
	enc *json.Encoder // nil until Serve starts
}

// NewServer creates a server for the journal at dbPath.
func NewServer(database *db.DB, dbPath string, info config.MCPConfig) *Server {
	return &Server{db: database, dbPath: dbPath, info: info, now: time.Now}
}

// ServeStdio serves requests from stdin until EOF.
func (s *Server) ServeStdio() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one request per line from r and writes responses to w.
// Requests are handled concurrently; Serve returns after every in-flight
// response has been written.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	s.mu.Lock()
	s.enc = json.NewEncoder(w)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			slog.Debug("malformed request", "err", err)
			continue
		}

		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			resp := s.handle(req)
			if resp.ID == nil && resp.Error == nil && resp.Result == nil {
				return
			}
			s.write(resp)
		}(req)
	}
	wg.Wait()
	return scanner.Err()
}

func (s *Server) write(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc == nil {
		return
	}
	if err := s.enc.Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func (s *Server) handle(req Request) Response {
	switch req.Method {
	case "initialize":
		return successResponse(req.ID, map[string]any{
			"protocolVersion": ProtocolVersion,
			"serverInfo": map[string]any{
				"name":    s.info.ServerName,
				"version": s.info.ServerVersion,
			},
			"capabilities": map[string]any{"tools": map[string]any{}},
		})
	case "notifications/initialized":
		s.write(Notification{
			JSONRPC: "2.0",
			Method:  "notifications/message",
			Params: LogMessageParams{
				Level: "info",
				Data:  "Journal ready. Call journal_context({}) to see who is in the journal and what was logged recently.",
			},
		})
		return Response{}
	case "ping":
		return successResponse(req.ID, map[string]any{})
	case "tools/list":
		return successResponse(req.ID, map[string]any{"tools": allTools})
	case "tools/call":
		return s.handleToolCall(req)
	default:
		return errorResponse(req.ID, codeMethodNotFound, "method not found")
	}
}

func (s *Server) handleToolCall(req Request) Response {
	ctx, cancel := context.WithTimeout(context.Background(), CallTimeout)
	defer cancel()

	var p ToolCallParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid params: "+err.Error())
	}
	if p.Arguments == nil {
		p.Arguments = json.RawMessage("{}")
	}

	result, err := s.dispatch(ctx, p.Name, p.Arguments)
	if err != nil {
		slog.Debug("tool failed", "tool", p.Name, "err", err)
		return successResponse(req.ID, textResult(err.Error(), true))
	}
	text, err := json.Marshal(result)
	if err != nil {
		return errorResponse(req.ID, codeInternal, "marshal error: "+err.Error())
	}
	return successResponse(req.ID, textResult(string(text), false))
}
