package session

import (
	"errors"
	"sync"
	"testing"

	sperrors "github.com/spyglass-re/spyglass/internal/errors"
	"github.com/spyglass-re/spyglass/internal/engine"
	"github.com/spyglass-re/spyglass/internal/testutil"
)

// Workspace shapes used by the extraction tests. Each models one host version.

type mainInstanceWorkspace struct {
	main any
}

func (w *mainInstanceWorkspace) MainInstance() any { return w.main }

type instanceWorkspace struct {
	inst any
}

func (w *instanceWorkspace) Instance() any { return w.inst }

type programInstance struct {
	prog engine.Program
}

func (i *programInstance) Program() engine.Program { return i.prog }

type emptyWorkspace struct{}

func TestBindWorkspace_DirectPath(t *testing.T) {
	prog := testutil.NewFakeProgram()
	adapter := NewAdapter(nil, testutil.NewTestLogger(t))

	adapter.BindWorkspace(&testutil.WorkspaceWithProgram{Prog: prog})

	if got := adapter.Program(); got != engine.Program(prog) {
		t.Fatalf("expected direct program, got %v", got)
	}
}

func TestBindWorkspace_MainInstanceIsProgram(t *testing.T) {
	prog := testutil.NewFakeProgram()
	adapter := NewAdapter(nil, testutil.NewTestLogger(t))

	adapter.BindWorkspace(&mainInstanceWorkspace{main: prog})

	if got := adapter.Program(); got != engine.Program(prog) {
		t.Fatalf("expected program via main instance, got %v", got)
	}
}

func TestBindWorkspace_NestedInstancePath(t *testing.T) {
	// Program reachable only through the second-level nested path:
	// workspace -> instance -> program.
	prog := testutil.NewFakeProgram()
	adapter := NewAdapter(nil, testutil.NewTestLogger(t))

	adapter.BindWorkspace(&instanceWorkspace{inst: &programInstance{prog: prog}})

	if got := adapter.Program(); got != engine.Program(prog) {
		t.Fatalf("expected program via nested instance, got %v", got)
	}
}

func TestBindWorkspace_RejectsStructurallyInvalidCandidate(t *testing.T) {
	// A candidate without loader or KB is not a program.
	invalid := testutil.NewFakeProgram()
	invalid.DisableLoader = true
	invalid.DisableKB = true

	adapter := NewAdapter(nil, testutil.NewTestLogger(t))
	adapter.BindWorkspace(&testutil.WorkspaceWithProgram{Prog: invalid})

	if got := adapter.Program(); got != nil {
		t.Fatalf("expected no program, got %v", got)
	}
}

func TestBindWorkspace_KeepsPreviousProgramOnFailedExtraction(t *testing.T) {
	prog := testutil.NewFakeProgram()
	adapter := NewAdapter(nil, testutil.NewTestLogger(t))
	adapter.SetProgram(prog)

	adapter.BindWorkspace(&emptyWorkspace{})

	if got := adapter.Program(); got != engine.Program(prog) {
		t.Fatalf("rebind without a program must keep the previous one, got %v", got)
	}
}

func TestProgram_LazyExtractionFromWorkspace(t *testing.T) {
	prog := testutil.NewFakeProgram()
	ws := &testutil.WorkspaceWithProgram{}
	adapter := NewAdapter(nil, testutil.NewTestLogger(t))

	// Bind while the workspace has no program yet.
	adapter.BindWorkspace(ws)
	if adapter.Program() != nil {
		t.Fatal("expected no program before the workspace exposes one")
	}

	// The workspace gains a program later; the adapter re-extracts lazily.
	ws.Prog = prog
	if got := adapter.Program(); got != engine.Program(prog) {
		t.Fatalf("expected lazily extracted program, got %v", got)
	}
}

func TestRequireProgram(t *testing.T) {
	adapter := NewAdapter(nil, testutil.NewTestLogger(t))

	if _, err := adapter.RequireProgram(); !errors.Is(err, sperrors.ErrNoActiveProgram) {
		t.Fatalf("expected ErrNoActiveProgram, got %v", err)
	}

	prog := testutil.NewFakeProgram()
	adapter.SetProgram(prog)

	got, err := adapter.RequireProgram()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != engine.Program(prog) {
		t.Fatalf("expected bound program, got %v", got)
	}
}

func TestResolveProgram(t *testing.T) {
	t.Run("no override defers to bound program", func(t *testing.T) {
		adapter := NewAdapter(&testutil.FakeOpener{}, testutil.NewTestLogger(t))
		if _, err := adapter.ResolveProgram(""); !errors.Is(err, sperrors.ErrNoActiveProgram) {
			t.Fatalf("expected ErrNoActiveProgram, got %v", err)
		}
	})

	t.Run("override loads ephemeral program", func(t *testing.T) {
		opener := &testutil.FakeOpener{}
		adapter := NewAdapter(opener, testutil.NewTestLogger(t))

		prog, err := adapter.ResolveProgram("/bin/other")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		path, _ := prog.Filename()
		if path != "/bin/other" {
			t.Errorf("expected ephemeral program for /bin/other, got %q", path)
		}
		if adapter.Program() != nil {
			t.Error("override must not rebind the session")
		}
	})

	t.Run("override without opener fails", func(t *testing.T) {
		adapter := NewAdapter(nil, testutil.NewTestLogger(t))
		if _, err := adapter.ResolveProgram("/bin/other"); !sperrors.IsInvalidArgument(err) {
			t.Fatalf("expected InvalidArgumentError, got %v", err)
		}
	})
}

func TestDescriptor_NoProgramBound(t *testing.T) {
	adapter := NewAdapter(nil, testutil.NewTestLogger(t))

	d := adapter.Descriptor()

	if d.Name != nil || d.Path != nil || d.Architecture != nil || d.Entry != nil {
		t.Errorf("expected all-nil descriptor, got %+v", d)
	}
}

func TestDescribeProgram(t *testing.T) {
	t.Run("full program", func(t *testing.T) {
		prog := testutil.NewFakeProgram()

		d := DescribeProgram(prog)

		if d.Name == nil || *d.Name != "target" {
			t.Errorf("name = %v, want target", d.Name)
		}
		if d.Path == nil || *d.Path != "/bin/target" {
			t.Errorf("path = %v, want /bin/target", d.Path)
		}
		if d.Architecture == nil || *d.Architecture != "AMD64" {
			t.Errorf("architecture = %v, want AMD64", d.Architecture)
		}
		if d.Entry == nil || *d.Entry != 0x401000 {
			t.Errorf("entry = %v, want 0x401000", d.Entry)
		}
	})

	t.Run("name falls back to filename", func(t *testing.T) {
		prog := testutil.NewFakeProgram()
		prog.BinaryName = ""

		d := DescribeProgram(prog)

		if d.Name == nil || *d.Name != "/bin/target" {
			t.Errorf("name = %v, want filename fallback", d.Name)
		}
	})

	t.Run("missing fields yield nil, never an error", func(t *testing.T) {
		prog := testutil.NewFakeProgram()
		prog.DisablePath = true
		prog.DisableLoader = true
		prog.DisableArch = true

		d := DescribeProgram(prog)

		if d.Name != nil || d.Path != nil || d.Architecture != nil || d.Entry != nil {
			t.Errorf("expected all-nil descriptor, got %+v", d)
		}
	})
}

// Refresh hook shapes.

type reloadRefreshWorkspace struct {
	reloadErr    error
	reloadCalls  int
	refreshCalls int
}

func (w *reloadRefreshWorkspace) Reload() error {
	w.reloadCalls++
	return w.reloadErr
}

func (w *reloadRefreshWorkspace) Refresh() error {
	w.refreshCalls++
	return nil
}

type viewManagerWorkspace struct {
	vm any
}

func (w *viewManagerWorkspace) ViewManager() any { return w.vm }

type reloadableViewManager struct {
	calls int
}

func (v *reloadableViewManager) Reload() error {
	v.calls++
	return nil
}

func TestRefreshGUI(t *testing.T) {
	t.Run("no workspace bound", func(t *testing.T) {
		adapter := NewAdapter(nil, testutil.NewTestLogger(t))

		res := adapter.RefreshGUI()

		if res.Updated {
			t.Error("expected updated=false without a workspace")
		}
		if res.Reason != "no_workspace_bound" {
			t.Errorf("reason = %q", res.Reason)
		}
	})

	t.Run("first hook wins", func(t *testing.T) {
		ws := &reloadRefreshWorkspace{}
		adapter := NewAdapter(nil, testutil.NewTestLogger(t))
		adapter.BindWorkspace(ws)

		res := adapter.RefreshGUI()

		if !res.Updated || res.Hook != "workspace.reload" {
			t.Errorf("expected workspace.reload to fire, got %+v", res)
		}
		if ws.refreshCalls != 0 {
			t.Error("later hooks must not run once one succeeds")
		}
	})

	t.Run("failing hook is swallowed and the next one tried", func(t *testing.T) {
		ws := &reloadRefreshWorkspace{reloadErr: errors.New("view tree busy")}
		adapter := NewAdapter(nil, testutil.NewTestLogger(t))
		adapter.BindWorkspace(ws)

		res := adapter.RefreshGUI()

		if !res.Updated || res.Hook != "workspace.refresh" {
			t.Errorf("expected fallback to workspace.refresh, got %+v", res)
		}
		if ws.reloadCalls != 1 || ws.refreshCalls != 1 {
			t.Errorf("hook call counts: reload=%d refresh=%d", ws.reloadCalls, ws.refreshCalls)
		}
	})

	t.Run("nested view manager hook", func(t *testing.T) {
		vm := &reloadableViewManager{}
		adapter := NewAdapter(nil, testutil.NewTestLogger(t))
		adapter.BindWorkspace(&viewManagerWorkspace{vm: vm})

		res := adapter.RefreshGUI()

		if !res.Updated || res.Hook != "view_manager.reload" {
			t.Errorf("expected view_manager.reload, got %+v", res)
		}
		if vm.calls != 1 {
			t.Errorf("view manager reload calls = %d", vm.calls)
		}
	})

	t.Run("no supported hook", func(t *testing.T) {
		adapter := NewAdapter(nil, testutil.NewTestLogger(t))
		adapter.BindWorkspace(&emptyWorkspace{})

		res := adapter.RefreshGUI()

		if res.Updated {
			t.Error("expected updated=false")
		}
		if res.Reason != "no_supported_refresh_hook_found" {
			t.Errorf("reason = %q", res.Reason)
		}
	})
}

// Lifecycle rebinds race with tool-driven reads; the adapter's mutex is the
// only ordering guarantee. This is primarily a -race exercise.
func TestAdapter_ConcurrentBindAndRead(t *testing.T) {
	adapter := NewAdapter(nil, testutil.NewTestLogger(t))
	prog := testutil.NewFakeProgram()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				adapter.BindWorkspace(&testutil.WorkspaceWithProgram{Prog: prog})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = adapter.Descriptor()
				_, _ = adapter.RequireProgram()
			}
		}()
	}
	wg.Wait()

	if got := adapter.Program(); got != engine.Program(prog) {
		t.Fatalf("expected program after concurrent binds, got %v", got)
	}
}
