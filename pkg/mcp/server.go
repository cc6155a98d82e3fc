// Package mcp implements a Model Context Protocol server exposing identifier
// translation and source rewriting as MCP tools over stdio transport.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

const (
	serverName = "payroll-refactor"
	toolCount  = 2
)

// ErrNoEngine is returned by NewServer when the engine or parser is missing.
var ErrNoEngine = errors.New("mcp server requires a parser and an engine")

// ServerDeps holds the server's dependencies. Logger and Tracer are optional.
type ServerDeps struct {
	Parser  *cst.Parser
	Engine  *rewrite.Engine
	Version string
	Logger  *slog.Logger
	// Tracer creates a span per tool call. Nil disables tracing.
	Tracer trace.Tracer
}

// Server wraps the MCP SDK server with the refactoring tools.
type Server struct {
	inner  *mcpsdk.Server
	mu     sync.RWMutex
	tools  []string
	tracer trace.Tracer
	h      handlers
}

// NewServer creates a server with all tools registered.
func NewServer(deps ServerDeps) (*Server, error) {
	if deps.Parser == nil || deps.Engine == nil {
		return nil, ErrNoEngine
	}

	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	version := deps.Version
	if version == "" {
		version = "dev"
	}

	srv := &Server{
		inner:  mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverName, Version: version}, opts),
		tools:  make([]string, 0, toolCount),
		tracer: deps.Tracer,
		h:      handlers{parser: deps.Parser, engine: deps.Engine},
	}

	srv.registerTools()

	return srv, nil
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run serves on stdio until ctx is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameTranslate,
		Description: translateToolDescription,
	}, withTracing(s.tracer, ToolNameTranslate, s.h.translate))
	s.trackTool(ToolNameTranslate)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameRewrite,
		Description: rewriteToolDescription,
	}, withTracing(s.tracer, ToolNameRewrite, s.h.rewrite))
	s.trackTool(ToolNameRewrite)
}

const (
	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// withTracing wraps a tool handler in a server span and appends the trace
// id to sampled responses.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())})
		}

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const (
	translateToolDescription = "Translate a legacy PowerBuilder-style identifier into its Java-convention name. " +
		"Accepts the identifier and its role (type, method, field, parameter)."

	rewriteToolDescription = "Rewrite a Java compilation unit: remove legacy math, boolean and precision " +
		"wrappers and rename legacy identifiers. Returns the rewritten source and a report."
)
