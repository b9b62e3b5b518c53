package session

import "github.com/spyglass-re/spyglass/internal/engine"

// Capability interfaces the host workspace object may implement. The host
// object graph is not contractually stable across versions, so the adapter
// probes these in priority order instead of assuming any one shape.

// ProgramHolder is a workspace (or nested instance) that references a program
// directly.
type ProgramHolder interface {
	Program() engine.Program
}

// MainInstanceHolder is a workspace that exposes its state through a main
// instance object. The instance may itself be the program or may hold one.
type MainInstanceHolder interface {
	MainInstance() any
}

// InstanceHolder is a workspace that nests its state one level deeper behind
// a generic instance object.
type InstanceHolder interface {
	Instance() any
}

// Refresh hooks. Different host versions expose different update entry points;
// RefreshGUI probes them in order and invokes the first one present.

// Reloader is a host object with a full reload hook.
type Reloader interface {
	Reload() error
}

// Refresher is a host object with a lightweight refresh hook.
type Refresher interface {
	Refresh() error
}

// ViewManagerHolder is a workspace that delegates view updates to a nested
// view manager.
type ViewManagerHolder interface {
	ViewManager() any
}

// extractor is one candidate access path from a workspace to a program.
type extractor struct {
	name  string
	probe func(workspace any) engine.Program
}

// extractors are tried in priority order; the first structurally valid hit
// wins. Order mirrors the host's historical shapes: a direct reference, a
// main-instance reference, then an instance nested one level further.
var extractors = []extractor{
	{
		name: "direct",
		probe: func(workspace any) engine.Program {
			if holder, ok := workspace.(ProgramHolder); ok {
				return coerceProgram(holder.Program())
			}
			return nil
		},
	},
	{
		name: "main_instance",
		probe: func(workspace any) engine.Program {
			if holder, ok := workspace.(MainInstanceHolder); ok {
				return coerceProgram(holder.MainInstance())
			}
			return nil
		},
	},
	{
		name: "instance",
		probe: func(workspace any) engine.Program {
			if holder, ok := workspace.(InstanceHolder); ok {
				return coerceProgram(holder.Instance())
			}
			return nil
		},
	},
}

// coerceProgram resolves a candidate object to a structurally valid program.
// The candidate may be the program itself or may hold one nested reference.
func coerceProgram(candidate any) engine.Program {
	if candidate == nil {
		return nil
	}
	if program, ok := candidate.(engine.Program); ok && structurallyValid(program) {
		return program
	}
	if holder, ok := candidate.(ProgramHolder); ok {
		if program := holder.Program(); program != nil && structurallyValid(program) {
			return program
		}
	}
	return nil
}

// structurallyValid accepts a candidate that exposes either a loader-bearing
// or a knowledge-base-bearing shape.
func structurallyValid(p engine.Program) bool {
	if p == nil {
		return false
	}
	if _, ok := p.KB(); ok {
		return true
	}
	if _, ok := p.Loader(); ok {
		return true
	}
	return false
}

// extractProgram runs the extractor list against a workspace. Returns nil when
// no candidate path yields a structurally valid program.
func extractProgram(workspace any) engine.Program {
	if workspace == nil {
		return nil
	}
	for _, e := range extractors {
		if program := e.probe(workspace); program != nil {
			return program
		}
	}
	return nil
}

// refreshHook is one candidate notification entry point on the workspace.
type refreshHook struct {
	name string
	// resolve returns the hook's invocation func, or nil when the workspace
	// shape does not expose it.
	resolve func(workspace any) func() error
}

var refreshHooks = []refreshHook{
	{
		name: "workspace.reload",
		resolve: func(workspace any) func() error {
			if r, ok := workspace.(Reloader); ok {
				return r.Reload
			}
			return nil
		},
	},
	{
		name: "workspace.refresh",
		resolve: func(workspace any) func() error {
			if r, ok := workspace.(Refresher); ok {
				return r.Refresh
			}
			return nil
		},
	},
	{
		name: "view_manager.reload",
		resolve: func(workspace any) func() error {
			if r, ok := viewManager(workspace).(Reloader); ok {
				return r.Reload
			}
			return nil
		},
	},
	{
		name: "view_manager.refresh",
		resolve: func(workspace any) func() error {
			if r, ok := viewManager(workspace).(Refresher); ok {
				return r.Refresh
			}
			return nil
		},
	},
	{
		name: "main_instance.refresh",
		resolve: func(workspace any) func() error {
			if holder, ok := workspace.(MainInstanceHolder); ok {
				if r, ok := holder.MainInstance().(Refresher); ok {
					return r.Refresh
				}
			}
			return nil
		},
	},
}

func viewManager(workspace any) any {
	if holder, ok := workspace.(ViewManagerHolder); ok {
		return holder.ViewManager()
	}
	return nil
}
