package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

// Tool names.
const (
	ToolNameTranslate = "translate_identifier"
	ToolNameRewrite   = "rewrite_source"
)

// MaxCodeInputBytes bounds inline source input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Input validation errors.
var (
	ErrEmptyName    = errors.New("name parameter is required and must not be empty")
	ErrUnknownRole  = errors.New("role must be one of type, method, field, parameter")
	ErrEmptyCode    = errors.New("code parameter is required and must not be empty")
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
	ErrNoTranslator = errors.New("identifier renaming is disabled")
)

// TranslateInput is the input schema of translate_identifier.
type TranslateInput struct {
	Name string `json:"name"           jsonschema:"identifier to translate, e.g. gdcValorTotal"`
	Role string `json:"role,omitempty" jsonschema:"identifier role: type, method, field or parameter (default: field)"`
}

// TranslateOutput describes one translated identifier.
type TranslateOutput struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Legacy      bool   `json:"legacy"`
	Kind        string `json:"kind"`
	Prefix      string `json:"prefix,omitempty"`
	Translation string `json:"translation"`
}

// RewriteInput is the input schema of rewrite_source.
type RewriteInput struct {
	Code string `json:"code" jsonschema:"Java compilation unit to rewrite"`
}

// RewriteOutput is the rewritten source and its report.
type RewriteOutput struct {
	Source string          `json:"source"`
	Report *rewrite.Report `json:"report"`
}

// ToolOutput is the structured output wrapper of every tool.
type ToolOutput struct {
	Data any `json:"data"`
}

type handlers struct {
	parser *cst.Parser
	engine *rewrite.Engine
}

func (h handlers) translate(_ context.Context, _ *mcpsdk.CallToolRequest, in TranslateInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if in.Name == "" {
		return errorResult(ErrEmptyName)
	}

	tr := h.engine.Translator()
	if tr == nil {
		return errorResult(ErrNoTranslator)
	}

	roleName := in.Role
	if roleName == "" {
		roleName = naming.RoleField.String()
	}

	role, ok := naming.ParseRole(roleName)
	if !ok {
		return errorResult(fmt.Errorf("%w: %q", ErrUnknownRole, in.Role))
	}

	translated, err := tr.Translate(in.Name, role)
	if err != nil {
		return errorResult(fmt.Errorf("translate %q: %w", in.Name, err))
	}

	class, _ := tr.Classify(in.Name, role)

	return jsonResult(TranslateOutput{
		Name:        in.Name,
		Role:        role.String(),
		Legacy:      tr.IsLegacy(in.Name, role),
		Kind:        class.Kind.String(),
		Prefix:      class.Prefix,
		Translation: translated,
	})
}

func (h handlers) rewrite(ctx context.Context, _ *mcpsdk.CallToolRequest, in RewriteInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if in.Code == "" {
		return errorResult(ErrEmptyCode)
	}

	if len(in.Code) > MaxCodeInputBytes {
		return errorResult(fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(in.Code), MaxCodeInputBytes))
	}

	tree, err := h.parser.Parse(ctx, []byte(in.Code))
	if err != nil {
		return errorResult(fmt.Errorf("parse: %w", err))
	}

	rep, err := h.engine.ApplyAll(ctx, tree)
	if err != nil {
		return nil, ToolOutput{}, fmt.Errorf("rewrite: %w", err)
	}

	return jsonResult(RewriteOutput{Source: tree.Render(), Report: rep})
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, ToolOutput{Data: value}, nil
}
