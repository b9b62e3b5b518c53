package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"

	"github.com/spyglass-re/spyglass/internal/batch"
	"github.com/spyglass-re/spyglass/internal/contract"
	sperrors "github.com/spyglass-re/spyglass/internal/errors"
	"github.com/spyglass-re/spyglass/internal/session"
)

// SyncExportOutput is the output of the spyglass_sync_export tool.
type SyncExportOutput struct {
	Snapshot   string  `json:"snapshot"`
	OutputPath *string `json:"output_path,omitempty"`
}

func (s *Server) registerSyncExportTool() {
	s.registerToolWithSchema(
		"spyglass_sync_export",
		"Export the session's analysis state as a versioned snapshot document",
		SyncExportInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input SyncExportInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_sync_export", input)

			output, err := s.syncExport(strValue(input.OutputPath))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return textResult(output)
		},
	)
}

func (s *Server) registerSyncImportTool() {
	s.registerToolWithSchema(
		"spyglass_sync_import",
		"Import a snapshot document and apply its renames and comments to the session",
		SyncImportInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var input SyncImportInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_sync_import", input)

			report, err := s.syncImport(
				strValue(input.SnapshotJSON),
				strValue(input.SnapshotPath),
				boolValue(input.ApplyChanges, true),
			)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return textResult(report)
		},
	)
}

func (s *Server) registerRunBatchTool() {
	s.registerToolWithSchema(
		"spyglass_run_batch",
		"Execute an ordered batch of sync and query actions with per-action isolation",
		RunBatchInput{},
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			// Malformed top-level shape is the one hard failure; individual
			// action failures land in the per-slot results.
			raw, err := json.Marshal(request.Params.Arguments)
			if err != nil || !gjson.GetBytes(raw, "actions").IsArray() {
				return mcp.NewToolResultError("actions must be an array"), nil
			}

			var input RunBatchInput
			if err := bindInput(request, &input); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			s.auditToolCall("spyglass_run_batch", input)

			actions := make([]batch.Action, 0, len(input.Actions))
			for _, action := range input.Actions {
				actions = append(actions, batch.Action{
					Type:         action.Type,
					OutputPath:   strValue(action.OutputPath),
					SnapshotJSON: strValue(action.SnapshotJSON),
					SnapshotPath: strValue(action.SnapshotPath),
					ApplyChanges: action.ApplyChanges,
				})
			}
			return textResult(batch.Run(actions, sessionOperations{s}))
		},
	)
}

// syncExport builds and encodes a snapshot of the bound program, optionally
// writing it to outputPath as well.
func (s *Server) syncExport(outputPath string) (SyncExportOutput, error) {
	program, err := s.session.RequireProgram()
	if err != nil {
		return SyncExportOutput{}, err
	}

	snapshot := contract.BuildSnapshot(program, time.Now(), map[string]any{
		"tool": "spyglass",
		"mode": "session_bound",
	})
	data, err := contract.Encode(snapshot)
	if err != nil {
		return SyncExportOutput{}, err
	}

	output := SyncExportOutput{Snapshot: string(data)}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return SyncExportOutput{}, fmt.Errorf("write snapshot: %w", err)
		}
		output.OutputPath = &outputPath
	}

	s.logger.Debug().
		Int("functions", len(snapshot.Functions)).
		Int("strings", len(snapshot.Strings)).
		Int("comments", len(snapshot.Comments)).
		Msg("snapshot exported")
	return output, nil
}

// syncImport decodes a snapshot from inline JSON or a file path and applies
// it to the session. snapshotPath takes precedence when both are given.
func (s *Server) syncImport(snapshotJSON, snapshotPath string, applyChanges bool) (contract.ApplyReport, error) {
	var data []byte
	switch {
	case snapshotPath != "":
		fileData, err := os.ReadFile(snapshotPath)
		if err != nil {
			return contract.ApplyReport{}, fmt.Errorf("read snapshot: %w", err)
		}
		data = fileData
	case snapshotJSON != "":
		data = []byte(snapshotJSON)
	default:
		return contract.ApplyReport{}, sperrors.InvalidArgumentf("either snapshot_json or snapshot_path must be provided")
	}

	snapshot, err := contract.Decode(data)
	if err != nil {
		return contract.ApplyReport{}, err
	}

	report := contract.ApplySnapshot(s.session, snapshot, applyChanges)
	s.logger.Debug().
		Bool("apply_changes", applyChanges).
		Int("renamed", report.Applied.RenamedFunctions).
		Int("comments", report.Applied.AppliedComments).
		Int("errors", len(report.ApplyErrors)).
		Msg("snapshot imported")
	return report, nil
}

// currentProgram describes the session program, or an ephemeral program when
// binaryPath is given. The session-bound path never fails.
func (s *Server) currentProgram(binaryPath string) (session.ProgramDescriptor, error) {
	if binaryPath == "" {
		return s.session.Descriptor(), nil
	}
	program, err := s.session.ResolveProgram(binaryPath)
	if err != nil {
		return session.ProgramDescriptor{}, err
	}
	return session.DescribeProgram(program), nil
}

// sessionOperations adapts the server's sync methods to the batch runner.
type sessionOperations struct {
	s *Server
}

func (o sessionOperations) SyncExport(outputPath string) (any, error) {
	output, err := o.s.syncExport(outputPath)
	if err != nil {
		return nil, err
	}
	return output, nil
}

func (o sessionOperations) SyncImport(snapshotJSON, snapshotPath string, applyChanges bool) (any, error) {
	report, err := o.s.syncImport(snapshotJSON, snapshotPath, applyChanges)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (o sessionOperations) CurrentProgram() (any, error) {
	descriptor, err := o.s.currentProgram("")
	if err != nil {
		return nil, err
	}
	return descriptor, nil
}
