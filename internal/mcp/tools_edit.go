package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spyglass-re/spyglass/internal/contract"
	"github.com/spyglass-re/spyglass/internal/session"
)

// RenameFunctionOutput is the output of the spyglass_rename_function tool.
type RenameFunctionOutput struct {
	Address string                `json:"address"`
	OldName string                `json:"old_name"`
	NewName string                `json:"new_name"`
	Refresh session.RefreshResult `json:"refresh"`
}

// SetCommentOutput is the output of the spyglass_set_comment tool.
type SetCommentOutput struct {
	Address    string                `json:"address"`
	OldComment *string               `json:"old_comment"`
	Comment    string                `json:"comment"`
	Refresh    session.RefreshResult `json:"refresh"`
}

func (s *Server) registerRenameFunctionTool() {
	s.registerToolWithSchema(
		"spyglass_rename_function",
		"Rename a function in the live analysis session",
		RenameFunctionInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input RenameFunctionInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_rename_function", input)

			newName := strings.TrimSpace(input.NewName)
			if newName == "" {
				return mcp.NewToolResultError("new_name must be non-blank"), nil
			}
			addr, err := contract.ParseAddress(input.Address)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid address %q: %v", input.Address, err)), nil
			}

			program, err := s.session.RequireProgram()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			functions, ok := functionTable(program)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("no function at %s", contract.FormatAddress(addr))), nil
			}
			fn, ok := functions.Get(addr)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("no function at %s", contract.FormatAddress(addr))), nil
			}

			oldName := fn.Name()
			if err := fn.SetName(newName); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("rename %s: %v", contract.FormatAddress(addr), err)), nil
			}

			return textResult(RenameFunctionOutput{
				Address: contract.FormatAddress(addr),
				OldName: oldName,
				NewName: newName,
				Refresh: s.session.RefreshGUI(),
			})
		},
	)
}

func (s *Server) registerSetCommentTool() {
	s.registerToolWithSchema(
		"spyglass_set_comment",
		"Attach a comment at an address in the live analysis session",
		SetCommentInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input SetCommentInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_set_comment", input)

			addr, err := contract.ParseAddress(input.Address)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid address %q: %v", input.Address, err)), nil
			}

			program, err := s.session.RequireProgram()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			kb, ok := program.KB()
			if !ok {
				return mcp.NewToolResultError("comment table unavailable for this program"), nil
			}
			comments, ok := kb.Comments()
			if !ok {
				return mcp.NewToolResultError("comment table unavailable for this program"), nil
			}
			output := SetCommentOutput{
				Address: contract.FormatAddress(addr),
				Comment: input.Comment,
			}
			if old, ok := comments.Get(addr); ok {
				output.OldComment = &old
			}
			if err := comments.Set(addr, input.Comment); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("comment %s: %v", contract.FormatAddress(addr), err)), nil
			}
			output.Refresh = s.session.RefreshGUI()
			return textResult(output)
		},
	)
}
