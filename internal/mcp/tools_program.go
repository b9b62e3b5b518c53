package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spyglass-re/spyglass/internal/contract"
	"github.com/spyglass-re/spyglass/internal/engine"
)

// FunctionSummary is one function row in query tool outputs.
type FunctionSummary struct {
	Address   string `json:"address"`
	Name      string `json:"name"`
	Size      *int64 `json:"size"`
	IsPLT     bool   `json:"is_plt"`
	IsSyscall bool   `json:"is_syscall"`
}

// ListFunctionsOutput is the output of the spyglass_list_functions tool.
type ListFunctionsOutput struct {
	Functions []FunctionSummary `json:"functions"`
	Total     int               `json:"total"`
	Offset    int               `json:"offset"`
	Limit     int               `json:"limit"`
}

// StringSummary is one string row in query tool outputs.
type StringSummary struct {
	Address *string `json:"address"`
	Value   string  `json:"value"`
}

// ListStringsOutput is the output of the spyglass_list_strings tool.
type ListStringsOutput struct {
	Strings []StringSummary `json:"strings"`
	Total   int             `json:"total"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
}

// XrefSummary is one cross-reference row.
type XrefSummary struct {
	Src  string `json:"src"`
	Dst  string `json:"dst"`
	Type string `json:"type"`
}

// GetXrefsToOutput is the output of the spyglass_get_xrefs_to tool.
type GetXrefsToOutput struct {
	Address string        `json:"address"`
	Xrefs   []XrefSummary `json:"xrefs"`
	Total   int           `json:"total"`
	Note    string        `json:"note,omitempty"`
}

func (s *Server) registerGetCurrentProgramTool() {
	s.registerToolWithSchema(
		"spyglass_get_current_program",
		"Describe the program currently bound to the analysis session",
		GetCurrentProgramInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input GetCurrentProgramInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_get_current_program", input)

			descriptor, err := s.currentProgram(strValue(input.BinaryPath))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return textResult(descriptor)
		},
	)
}

func (s *Server) registerListFunctionsTool() {
	s.registerToolWithSchema(
		"spyglass_list_functions",
		"List functions known to the analysis session, paginated by address order",
		ListFunctionsInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input ListFunctionsInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_list_functions", input)

			offset := intValue(input.Offset, 0)
			limit := intValue(input.Limit, 100)
			if offset < 0 || limit < 0 {
				return mcp.NewToolResultError("offset and limit must be non-negative"), nil
			}

			program, err := s.session.ResolveProgram(strValue(input.BinaryPath))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			output := ListFunctionsOutput{
				Functions: []FunctionSummary{},
				Offset:    offset,
				Limit:     limit,
			}
			if functions, ok := functionTable(program); ok {
				addresses := functions.Addresses()
				output.Total = len(addresses)
				for _, addr := range paginate(addresses, offset, limit) {
					fn, ok := functions.Get(addr)
					if !ok {
						continue
					}
					output.Functions = append(output.Functions, summarizeFunction(addr, fn))
				}
			}
			return textResult(output)
		},
	)
}

func (s *Server) registerGetFunctionTool() {
	s.registerToolWithSchema(
		"spyglass_get_function",
		"Look up one function by address",
		GetFunctionInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input GetFunctionInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_get_function", input)

			addr, err := contract.ParseAddress(input.Address)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid address %q: %v", input.Address, err)), nil
			}

			program, err := s.session.ResolveProgram(strValue(input.BinaryPath))
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
			return textResult(summarizeFunction(addr, fn))
		},
	)
}

func (s *Server) registerListStringsTool() {
	s.registerToolWithSchema(
		"spyglass_list_strings",
		"List strings recovered from the binary, paginated",
		ListStringsInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input ListStringsInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_list_strings", input)

			offset := intValue(input.Offset, 0)
			limit := intValue(input.Limit, 200)
			if offset < 0 || limit < 0 {
				return mcp.NewToolResultError("offset and limit must be non-negative"), nil
			}

			program, err := s.session.ResolveProgram(strValue(input.BinaryPath))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			output := ListStringsOutput{
				Strings: []StringSummary{},
				Offset:  offset,
				Limit:   limit,
			}
			if strings, ok := stringTable(program); ok {
				entries := strings.Entries()
				output.Total = len(entries)
				for _, entry := range paginate(entries, offset, limit) {
					row := StringSummary{Value: entry.Value}
					if entry.Addr != nil {
						formatted := contract.FormatAddress(*entry.Addr)
						row.Address = &formatted
					}
					output.Strings = append(output.Strings, row)
				}
			}
			return textResult(output)
		},
	)
}

func (s *Server) registerGetXrefsToTool() {
	s.registerToolWithSchema(
		"spyglass_get_xrefs_to",
		"List cross-references that target an address",
		GetXrefsToInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input GetXrefsToInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_get_xrefs_to", input)

			addr, err := contract.ParseAddress(input.Address)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid address %q: %v", input.Address, err)), nil
			}
			offset := intValue(input.Offset, 0)
			limit := intValue(input.Limit, 100)
			if offset < 0 || limit < 0 {
				return mcp.NewToolResultError("offset and limit must be non-negative"), nil
			}

			program, err := s.session.ResolveProgram(strValue(input.BinaryPath))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			output := GetXrefsToOutput{
				Address: contract.FormatAddress(addr),
				Xrefs:   []XrefSummary{},
			}
			xrefs, ok := xrefIndex(program)
			if !ok {
				output.Note = "cross-reference index unavailable for this program"
				return textResult(output)
			}
			rows := xrefs.XrefsTo(addr)
			output.Total = len(rows)
			for _, xref := range paginate(rows, offset, limit) {
				output.Xrefs = append(output.Xrefs, XrefSummary{
					Src:  contract.FormatAddress(xref.Src),
					Dst:  contract.FormatAddress(xref.Dst),
					Type: xref.Kind,
				})
			}
			return textResult(output)
		},
	)
}

func summarizeFunction(addr uint64, fn engine.Function) FunctionSummary {
	summary := FunctionSummary{
		Address:   contract.FormatAddress(addr),
		Name:      fn.Name(),
		IsPLT:     fn.PLT(),
		IsSyscall: fn.Syscall(),
	}
	if size, ok := fn.Size(); ok {
		summary.Size = &size
	}
	return summary
}

// paginate clamps the window to the slice bounds. The end index is computed
// against the remaining length rather than as offset+limit, which would wrap
// negative for limits near the int maximum.
func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}

func functionTable(p engine.Program) (engine.FunctionTable, bool) {
	kb, ok := p.KB()
	if !ok {
		return nil, false
	}
	return kb.Functions()
}

func stringTable(p engine.Program) (engine.StringTable, bool) {
	kb, ok := p.KB()
	if !ok {
		return nil, false
	}
	return kb.Strings()
}

func xrefIndex(p engine.Program) (engine.XrefIndex, bool) {
	kb, ok := p.KB()
	if !ok {
		return nil, false
	}
	return kb.Xrefs()
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intValue(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

func boolValue(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
