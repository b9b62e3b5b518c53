// Package mcp exposes the spyglass session over the Model Context Protocol.
// It wraps the mcp-go server and registers the session, knowledge-base, sync
// and analysis tools against one injected session adapter.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/spyglass-re/spyglass/internal/session"
	"github.com/spyglass-re/spyglass/pkg/version"
)

// Supported transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// Config contains configuration for the MCP server.
type Config struct {
	// Transport selects stdio or streamable-http.
	Transport string

	// Host and Port bind the streamable-http transport.
	Host string
	Port int

	// EnabledTools optionally restricts which tools are available.
	// If empty, all tools are enabled.
	EnabledTools []string

	// AuditEnabled logs every tool invocation with its arguments.
	AuditEnabled bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Transport: TransportStreamableHTTP,
		Host:      "127.0.0.1",
		Port:      8766,
	}
}

// Server wraps the MCP server and the spyglass tool surface.
type Server struct {
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	session    *session.Adapter
	config     Config
	logger     zerolog.Logger
	startedAt  time.Time
}

// New creates an MCP server bound to the given session adapter and registers
// all enabled tools.
func New(sess *session.Adapter, config Config, logger zerolog.Logger) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"spyglass",
			version.Version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
		session:   sess,
		config:    config,
		logger:    logger.With().Str("component", "mcp").Logger(),
		startedAt: time.Now(),
	}

	s.registerTools()

	s.logger.Info().
		Int("tool_count", len(s.ListToolNames())).
		Bool("audit_enabled", config.AuditEnabled).
		Msg("MCP server initialized")

	return s
}

// registerTools registers the whole tool surface.
func (s *Server) registerTools() {
	// Session-bound queries.
	s.registerGetCurrentProgramTool()
	s.registerListFunctionsTool()
	s.registerGetFunctionTool()
	s.registerListStringsTool()
	s.registerGetXrefsToTool()

	// Knowledge-base mutation.
	s.registerRenameFunctionTool()
	s.registerSetCommentTool()

	// Sync contract and automation.
	s.registerSyncExportTool()
	s.registerSyncImportTool()
	s.registerRunBatchTool()

	// Engine analyses.
	s.registerEntryTool()
	s.registerDecompileFunctionTool()
	s.registerRecoverCFGTool()
	s.registerExploreTool()
}

// ServeStdio serves the MCP protocol over stdio. Blocks until the stream
// closes or an error occurs.
func (s *Server) ServeStdio() error {
	s.logger.Info().Msg("serving MCP on stdio")
	return server.ServeStdio(s.mcpServer)
}

// Start serves the streamable-http transport. Blocks until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info().Str("addr", addr).Msg("serving MCP on streamable-http")
	s.httpServer = server.NewStreamableHTTPServer(s.mcpServer)
	return s.httpServer.Start(addr)
}

// Shutdown stops the streamable-http transport, if one is running.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info().Dur("uptime", time.Since(s.startedAt)).Msg("stopping MCP server")
	return s.httpServer.Shutdown(ctx)
}

// toolNames lists every tool this server can register, in registration order.
var toolNames = []string{
	"spyglass_get_current_program",
	"spyglass_list_functions",
	"spyglass_get_function",
	"spyglass_list_strings",
	"spyglass_get_xrefs_to",
	"spyglass_rename_function",
	"spyglass_set_comment",
	"spyglass_sync_export",
	"spyglass_sync_import",
	"spyglass_run_batch",
	"spyglass_entry",
	"spyglass_decompile_function",
	"spyglass_recover_cfg",
	"spyglass_explore",
}

// ListToolNames returns the names of all enabled tools.
func (s *Server) ListToolNames() []string {
	enabled := make([]string, 0, len(toolNames))
	for _, name := range toolNames {
		if s.isToolEnabled(name) {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// isToolEnabled checks if a tool is enabled based on configuration.
func (s *Server) isToolEnabled(toolName string) bool {
	if len(s.config.EnabledTools) == 0 {
		return true
	}
	for _, enabled := range s.config.EnabledTools {
		if enabled == toolName {
			return true
		}
	}
	return false
}

// generateInputSchema generates a JSON schema from a Go type.
func generateInputSchema(inputType any) (map[string]any, error) {
	// Inline all schemas instead of using $ref/$defs so MCP clients (and the
	// LLMs behind them) see one flat object.
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(inputType)

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	var schemaMap map[string]any
	if err := json.Unmarshal(schemaBytes, &schemaMap); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	// MCP expects a plain object schema without draft-specific fields.
	delete(schemaMap, "$schema")
	delete(schemaMap, "$id")

	return schemaMap, nil
}

// registerToolWithSchema generates the input schema, creates the tool and
// registers its handler. Schema generation failure skips the tool with a log
// line rather than aborting startup.
func (s *Server) registerToolWithSchema(
	name string,
	description string,
	inputType any,
	handler server.ToolHandlerFunc,
) {
	if !s.isToolEnabled(name) {
		return
	}

	inputSchema, err := generateInputSchema(inputType)
	if err != nil {
		s.logger.Error().Err(err).Str("tool", name).Msg("failed to generate input schema")
		return
	}
	schemaBytes, err := json.Marshal(inputSchema)
	if err != nil {
		s.logger.Error().Err(err).Str("tool", name).Msg("failed to marshal schema")
		return
	}

	tool := mcp.NewToolWithRawSchema(name, description, schemaBytes)
	s.mcpServer.AddTool(tool, handler)

	s.logger.Debug().Str("tool", name).Msg("tool registered")
}

// bindInput decodes the request arguments into a typed input struct.
func bindInput(request mcp.CallToolRequest, out any) error {
	if request.Params.Arguments == nil {
		return nil
	}
	data, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return fmt.Errorf("marshal arguments: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse arguments: %w", err)
	}
	return nil
}

// textResult marshals a tool output value into a JSON text result.
func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// auditToolCall logs a tool invocation if auditing is enabled.
func (s *Server) auditToolCall(toolName string, args any) {
	if !s.config.AuditEnabled {
		return
	}
	argsJSON, _ := json.Marshal(args)
	s.logger.Info().
		Str("invocation_id", uuid.NewString()).
		Str("tool", toolName).
		RawJSON("args", argsJSON).
		Msg("MCP tool called")
}
