// Package lsp provides a Language Server Protocol server that reports
// pending legacy-wrapper rewrites and identifier renames as diagnostics.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

const serverName = "payroll-refactor"

// ErrNoEngine is returned by NewServer when the engine or parser is missing.
var ErrNoEngine = errors.New("lsp server requires a parser and an engine")

// Server implements the LSP handlers.
type Server struct {
	store    *DocumentStore
	handler  protocol.Handler
	analyzer *Analyzer
	version  string
	logger   *slog.Logger
}

// NewServer creates a server. A nil logger discards output.
func NewServer(parser *cst.Parser, engine *rewrite.Engine, version string, logger *slog.Logger) (*Server, error) {
	if parser == nil || engine == nil {
		return nil, ErrNoEngine
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	srv := &Server{
		store:    NewDocumentStore(),
		analyzer: NewAnalyzer(parser, engine),
		version:  version,
		logger:   logger,
	}

	srv.handler = protocol.Handler{
		Initialize:            srv.initialize,
		Initialized:           srv.initialized,
		Shutdown:              srv.shutdown,
		SetTrace:              srv.setTrace,
		TextDocumentDidOpen:   srv.didOpen,
		TextDocumentDidChange: srv.didChange,
		TextDocumentDidSave:   srv.didSave,
		TextDocumentDidClose:  srv.didClose,
		TextDocumentHover:     srv.hover,
	}

	return srv, nil
}

// Run serves on stdio until the client disconnects.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	if err := lspServer.RunStdio(); err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &srv.version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv.store.Set(params.TextDocument.URI, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, params.TextDocument.URI)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			srv.store.Set(uri, c.Text)
		case map[string]any:
			if text, ok := c["text"].(string); ok {
				srv.store.Set(uri, text)
			}
		}
	}

	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if _, ok := srv.store.Get(params.TextDocument.URI); ok {
		srv.publishDiagnostics(ctx, params.TextDocument.URI)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv.store.Delete(params.TextDocument.URI)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil // LSP expects a null hover for unknown documents.
	}

	word := wordAt(text, int(params.Position.Line), int(params.Position.Character))

	doc := srv.analyzer.Describe(word)
	if doc == "" {
		return nil, nil //nolint:nilnil // LSP expects a null hover when nothing applies.
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: doc},
	}, nil
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	text, ok := srv.store.Get(uri)
	if !ok {
		return
	}

	diags, err := srv.analyzer.Diagnose(context.Background(), text)
	if err != nil {
		srv.logger.Warn("diagnostics failed", "uri", uri, "error", err)

		return
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}
