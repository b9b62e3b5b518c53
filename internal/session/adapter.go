// Package session holds the only mutable, concurrently-accessed state in
// spyglass: the adapter over the host's workspace and active program.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	sperrors "github.com/spyglass-re/spyglass/internal/errors"
	"github.com/spyglass-re/spyglass/internal/engine"
)

// RefreshResult reports the outcome of a best-effort GUI refresh.
type RefreshResult struct {
	Updated bool   `json:"updated"`
	Hook    string `json:"hook,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Adapter is the thread-safe holder of the current workspace and program
// references. Lifecycle callbacks rebind it from the host's context; tool
// handlers read through it. One mutex serializes both: a reader observes
// either the pre- or post-bind state, never a torn intermediate.
//
// The mutex is not re-entrant: nested access goes through unexported locked
// helpers so every public entry point locks exactly once.
type Adapter struct {
	mu        sync.Mutex
	workspace any
	program   engine.Program

	opener engine.Opener
	logger zerolog.Logger
}

// NewAdapter creates an adapter. opener may be nil when the host provides no
// way to load binaries outside the bound session.
func NewAdapter(opener engine.Opener, logger zerolog.Logger) *Adapter {
	return &Adapter{
		opener: opener,
		logger: logger.With().Str("component", "session").Logger(),
	}
}

// BindWorkspace stores the workspace reference and attempts to extract a
// program from it. If no candidate access path yields a program, a previously
// bound program is left unchanged. Never fails: absence of a program is a
// valid state.
func (a *Adapter) BindWorkspace(workspace any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.workspace = workspace
	if extracted := extractProgram(workspace); extracted != nil {
		a.program = extracted
		a.logger.Debug().Msg("program extracted from workspace")
	}
}

// SetProgram unconditionally overrides the held program reference. Used for
// headless operation, bypassing workspace extraction.
func (a *Adapter) SetProgram(program engine.Program) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.program = program
}

// Workspace returns the currently bound workspace, or nil.
func (a *Adapter) Workspace() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.workspace
}

// Program returns the currently bound program. When none is bound yet, it
// lazily re-runs extraction from the held workspace.
func (a *Adapter) Program() engine.Program {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.programLocked()
}

func (a *Adapter) programLocked() engine.Program {
	if a.program == nil && a.workspace != nil {
		a.program = extractProgram(a.workspace)
	}
	return a.program
}

// RequireProgram returns the bound program or ErrNoActiveProgram. Every
// operation that needs live state goes through this single failure point.
func (a *Adapter) RequireProgram() (engine.Program, error) {
	if program := a.Program(); program != nil {
		return program, nil
	}
	return nil, sperrors.ErrNoActiveProgram
}

// ResolveProgram returns the program to operate on. A non-empty pathOverride
// loads a fresh, ephemeral program from that path, bypassing the bound
// session entirely; otherwise the bound program is required.
func (a *Adapter) ResolveProgram(pathOverride string) (engine.Program, error) {
	if pathOverride == "" {
		return a.RequireProgram()
	}
	if a.opener == nil {
		return nil, sperrors.InvalidArgumentf("binary_path override requires a configured program loader")
	}
	return a.opener.Open(pathOverride)
}

// Descriptor derives the descriptor of the bound program, or the empty
// descriptor when none is bound. Never fails.
func (a *Adapter) Descriptor() ProgramDescriptor {
	return DescribeProgram(a.Program())
}

// RefreshGUI notifies the host that analysis state changed. It tries the
// known notification hooks in order, swallows any failure from an invoked
// hook, and reports which hook (if any) succeeded. Never fails.
func (a *Adapter) RefreshGUI() RefreshResult {
	workspace := a.Workspace()
	if workspace == nil {
		return RefreshResult{Updated: false, Reason: "no_workspace_bound"}
	}

	for _, hook := range refreshHooks {
		fn := hook.resolve(workspace)
		if fn == nil {
			continue
		}
		if err := fn(); err != nil {
			a.logger.Debug().Err(err).Str("hook", hook.name).Msg("refresh hook failed, trying next")
			continue
		}
		return RefreshResult{Updated: true, Hook: hook.name}
	}
	return RefreshResult{Updated: false, Reason: "no_supported_refresh_hook_found"}
}
