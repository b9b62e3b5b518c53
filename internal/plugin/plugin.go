// Package plugin bridges a host GUI's lifecycle events to the embedded MCP
// server. The host constructs one Plugin and forwards its workspace and
// program events; the plugin keeps the session adapter current and runs the
// server in the background.
package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/spyglass-re/spyglass/internal/engine"
	"github.com/spyglass-re/spyglass/internal/mcp"
	"github.com/spyglass-re/spyglass/internal/session"
)

// Plugin embeds the MCP server into a host GUI session.
type Plugin struct {
	mu      sync.Mutex
	session *session.Adapter
	config  mcp.Config
	logger  zerolog.Logger

	server  *mcp.Server
	serve   func(*mcp.Server) error
	started bool
}

// New creates a plugin around an existing session adapter. The server is not
// started until the first workspace event arrives.
func New(sess *session.Adapter, config mcp.Config, logger zerolog.Logger) *Plugin {
	return &Plugin{
		session: sess,
		config:  config,
		logger:  logger.With().Str("component", "plugin").Logger(),
		serve:   func(s *mcp.Server) error { return s.Start() },
	}
}

// Session returns the adapter the plugin keeps current.
func (p *Plugin) Session() *session.Adapter {
	return p.session
}

// Started reports whether the embedded server is running.
func (p *Plugin) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// OnWorkspaceInitialized binds the workspace and starts the embedded server
// if it is not already running.
func (p *Plugin) OnWorkspaceInitialized(workspace any) error {
	p.session.BindWorkspace(workspace)
	return p.ensureStarted()
}

// OnWorkspaceChanged rebinds the session to a new workspace.
func (p *Plugin) OnWorkspaceChanged(workspace any) {
	p.session.BindWorkspace(workspace)
}

// OnProgramOpened binds a freshly loaded program to the session.
func (p *Plugin) OnProgramOpened(program engine.Program) {
	p.session.SetProgram(program)
	p.logger.Info().Msg("program opened")
}

// OnProgramUpdated rebinds the program and asks the host to redraw.
func (p *Plugin) OnProgramUpdated(program engine.Program) {
	p.session.SetProgram(program)
	p.session.RefreshGUI()
}

// Teardown stops the embedded server. Safe to call more than once.
func (p *Plugin) Teardown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil
	}
	p.started = false
	return p.server.Shutdown(ctx)
}

// ensureStarted starts the embedded server exactly once. The stdio transport
// owns the process's stdin and stdout, which the host GUI already uses, so an
// embedded server must run over streamable-http.
func (p *Plugin) ensureStarted() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if p.config.Transport == mcp.TransportStdio {
		return fmt.Errorf("stdio transport cannot be embedded in a host GUI: use streamable-http")
	}

	p.server = mcp.New(p.session, p.config, p.logger)
	p.started = true

	go func(server *mcp.Server) {
		if err := p.serve(server); err != nil {
			p.logger.Error().Err(err).Msg("embedded MCP server stopped")
			p.mu.Lock()
			if p.server == server {
				p.started = false
			}
			p.mu.Unlock()
		}
	}(p.server)

	p.logger.Info().
		Str("host", p.config.Host).
		Int("port", p.config.Port).
		Msg("embedded MCP server started")
	return nil
}
