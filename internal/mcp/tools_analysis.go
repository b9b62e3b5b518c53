package mcp

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spyglass-re/spyglass/internal/contract"
	"github.com/spyglass-re/spyglass/internal/engine"
)

// EntryOutput is the output of the spyglass_entry tool. Entry is null when the
// loader does not report an entry point.
type EntryOutput struct {
	Entry *string `json:"entry"`
}

// DecompileFunctionOutput is the output of the spyglass_decompile_function
// tool. Decompilation failure is reported in the Error and Note fields rather
// than as a tool error, since many engine builds ship without a decompiler.
type DecompileFunctionOutput struct {
	Address       string `json:"address"`
	Decompilation string `json:"decompilation,omitempty"`
	Error         string `json:"error,omitempty"`
	Note          string `json:"note,omitempty"`
}

// RecoverCFGOutput is the output of the spyglass_recover_cfg tool.
type RecoverCFGOutput struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// ExploreOutput is the output of the spyglass_explore tool.
type ExploreOutput struct {
	Found             bool    `json:"found"`
	ActiveStates      int     `json:"active_states"`
	DeadendedStates   int     `json:"deadended_states"`
	StdinSolution     *string `json:"stdin_solution,omitempty"`
	StdinSolutionUTF8 *string `json:"stdin_solution_utf8,omitempty"`
}

func (s *Server) registerEntryTool() {
	s.registerToolWithSchema(
		"spyglass_entry",
		"Report the loader-declared entry point of the program",
		EntryInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input EntryInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_entry", input)

			program, err := s.session.ResolveProgram(strValue(input.BinaryPath))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			var output EntryOutput
			if loader, ok := program.Loader(); ok {
				if main, ok := loader.MainObject(); ok {
					if entry, ok := main.Entry(); ok {
						formatted := contract.FormatAddress(entry)
						output.Entry = &formatted
					}
				}
			}
			return textResult(output)
		},
	)
}

func (s *Server) registerDecompileFunctionTool() {
	s.registerToolWithSchema(
		"spyglass_decompile_function",
		"Decompile a function to pseudocode, when the engine ships a decompiler",
		DecompileFunctionInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input DecompileFunctionInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_decompile_function", input)

			addr, err := contract.ParseAddress(input.Address)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid address %q: %v", input.Address, err)), nil
			}

			program, err := s.session.RequireProgram()
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			output := DecompileFunctionOutput{Address: contract.FormatAddress(addr)}
			analyzer, ok := analyzerFor(program)
			if !ok {
				output.Error = "decompiler unavailable"
				output.Note = "this engine build does not expose an analysis suite"
				return textResult(output)
			}

			pseudocode, err := analyzer.Decompile(ctx, addr)
			if err != nil {
				output.Error = err.Error()
				output.Note = "decompilation can fail on functions the engine did not fully recover"
				return textResult(output)
			}
			output.Decompilation = pseudocode
			return textResult(output)
		},
	)
}

func (s *Server) registerRecoverCFGTool() {
	s.registerToolWithSchema(
		"spyglass_recover_cfg",
		"Recover the program's control-flow graph and summarize it",
		RecoverCFGInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input RecoverCFGInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_recover_cfg", input)

			timeout := intValue(input.TimeoutSeconds, 60)
			if timeout <= 0 {
				return mcp.NewToolResultError("timeout_seconds must be positive"), nil
			}

			program, err := s.session.ResolveProgram(strValue(input.BinaryPath))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			analyzer, ok := analyzerFor(program)
			if !ok {
				return mcp.NewToolResultError("CFG recovery unavailable: this engine build does not expose an analysis suite"), nil
			}

			ctx, cancel := context.WithTimeout(ctx, analysisTimeout(timeout))
			defer cancel()

			summary, err := analyzer.RecoverCFG(ctx)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("CFG recovery failed: %v", err)), nil
			}
			return textResult(RecoverCFGOutput{Nodes: summary.Nodes, Edges: summary.Edges})
		},
	)
}

func (s *Server) registerExploreTool() {
	s.registerToolWithSchema(
		"spyglass_explore",
		"Symbolically explore the program for an input that reaches a target address",
		ExploreInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input ExploreInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_explore", input)

			find, err := contract.ParseAddress(input.FindAddress)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid find_address %q: %v", input.FindAddress, err)), nil
			}
			avoid := make([]uint64, 0, len(input.AvoidAddresses))
			for _, raw := range input.AvoidAddresses {
				addr, err := contract.ParseAddress(raw)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("invalid avoid address %q: %v", raw, err)), nil
				}
				avoid = append(avoid, addr)
			}

			timeout := intValue(input.TimeoutSeconds, 120)
			if timeout <= 0 {
				return mcp.NewToolResultError("timeout_seconds must be positive"), nil
			}

			program, err := s.session.ResolveProgram(strValue(input.BinaryPath))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			analyzer, ok := analyzerFor(program)
			if !ok {
				return mcp.NewToolResultError("symbolic exploration unavailable: this engine build does not expose an analysis suite"), nil
			}

			ctx, cancel := context.WithTimeout(ctx, analysisTimeout(timeout))
			defer cancel()

			result, err := analyzer.Explore(ctx, engine.ExploreRequest{
				Find:          find,
				Avoid:         avoid,
				SymbolicStdin: boolValue(input.SymbolicStdin, true),
			})
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("exploration failed: %v", err)), nil
			}

			output := ExploreOutput{
				Found:           result.Found,
				ActiveStates:    result.ActiveStates,
				DeadendedStates: result.DeadendedStates,
			}
			if result.Found && result.Stdin != nil {
				solution := hex.EncodeToString(result.Stdin)
				output.StdinSolution = &solution
				// Lossy rendering: invalid byte sequences become U+FFFD.
				text := strings.ToValidUTF8(string(result.Stdin), "�")
				output.StdinSolutionUTF8 = &text
			}
			return textResult(output)
		},
	)
}

// maxAnalysisTimeout caps tool-supplied wall-clock limits. Beyond this the
// seconds-to-Duration conversion would overflow into a negative duration and
// yield an already-expired context.
const maxAnalysisTimeout = 24 * time.Hour

func analysisTimeout(seconds int) time.Duration {
	if seconds > int(maxAnalysisTimeout/time.Second) {
		return maxAnalysisTimeout
	}
	return time.Duration(seconds) * time.Second
}

// analyzerFor probes the program for the optional analysis suite.
func analyzerFor(p engine.Program) (engine.Analyzer, bool) {
	provider, ok := p.(engine.AnalysisProvider)
	if !ok {
		return nil, false
	}
	analyzer := provider.Analyses()
	if analyzer == nil {
		return nil, false
	}
	return analyzer, true
}
