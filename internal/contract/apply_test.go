package contract

import (
	"errors"
	"testing"

	"github.com/spyglass-re/spyglass/internal/session"
	"github.com/spyglass-re/spyglass/internal/testutil"
)

func strptr(s string) *string { return &s }

func boundSession(t *testing.T, prog *testutil.FakeProgram) *session.Adapter {
	t.Helper()
	adapter := session.NewAdapter(nil, testutil.NewTestLogger(t))
	adapter.SetProgram(prog)
	return adapter
}

func TestApplySnapshot_DryRun(t *testing.T) {
	prog := testutil.NewFakeProgram()
	fn := prog.AddFunction(0x401000, "sub_401000", 32)
	adapter := boundSession(t, prog)

	snap := Snapshot{
		SchemaVersion: SchemaVersion,
		Functions:     []FunctionRow{{Address: "0x401000", Name: strptr("main")}},
		Comments:      []CommentRow{{Address: "0x401010", Text: "note"}},
		Strings:       []StringRow{{Value: "hello"}},
	}

	report := ApplySnapshot(adapter, snap, false)

	if report.ApplyChanges {
		t.Error("apply_changes must be false in the report")
	}
	if report.Counts.Functions != 1 || report.Counts.Strings != 1 || report.Counts.Comments != 1 {
		t.Errorf("counts = %+v", report.Counts)
	}
	if report.Applied.RenamedFunctions != 0 || report.Applied.AppliedComments != 0 {
		t.Errorf("dry run must not apply anything: %+v", report.Applied)
	}
	if len(fn.RenameCalls) != 0 {
		t.Error("dry run must not touch the live table")
	}
	if len(report.ApplyErrors) != 0 {
		t.Errorf("apply_errors = %v", report.ApplyErrors)
	}
}

func TestApplySnapshot_RenameAndComment(t *testing.T) {
	prog := testutil.NewFakeProgram()
	prog.AddFunction(0x401000, "sub_401000", 32)
	adapter := boundSession(t, prog)

	snap := Snapshot{
		SchemaVersion: SchemaVersion,
		Functions:     []FunctionRow{{Address: "0x401000", Name: strptr("main")}},
		Comments:      []CommentRow{{Address: "0x401010", Text: "checks the key"}},
	}

	report := ApplySnapshot(adapter, snap, true)

	if report.Applied.RenamedFunctions != 1 {
		t.Errorf("renamed_functions = %d, want 1", report.Applied.RenamedFunctions)
	}
	if report.Applied.AppliedComments != 1 {
		t.Errorf("applied_comments = %d, want 1", report.Applied.AppliedComments)
	}
	if got := prog.Funcs[0x401000].FName; got != "main" {
		t.Errorf("live name = %q, want main", got)
	}
	if got := prog.CommentMap[0x401010]; got != "checks the key" {
		t.Errorf("live comment = %q", got)
	}
	if len(report.ApplyErrors) != 0 {
		t.Errorf("apply_errors = %v", report.ApplyErrors)
	}
}

func TestApplySnapshot_SilentSkipOnUnparsableAddress(t *testing.T) {
	// One well-formed rename, one entry with an address that does not parse:
	// exactly one rename applied, zero errors recorded for the skipped entry.
	prog := testutil.NewFakeProgram()
	prog.AddFunction(0x401000, "sub_401000", 32)
	adapter := boundSession(t, prog)

	snap := Snapshot{
		SchemaVersion: SchemaVersion,
		Functions: []FunctionRow{
			{Address: "0xZZ", Name: strptr("bogus")},
			{Address: "0x401000", Name: strptr("main")},
		},
	}

	report := ApplySnapshot(adapter, snap, true)

	if report.Applied.RenamedFunctions != 1 {
		t.Errorf("renamed_functions = %d, want 1", report.Applied.RenamedFunctions)
	}
	if len(report.ApplyErrors) != 0 {
		t.Errorf("skip must be silent, got errors %v", report.ApplyErrors)
	}
}

func TestApplySnapshot_PartialFailureIsRecorded(t *testing.T) {
	prog := testutil.NewFakeProgram()
	rejecting := prog.AddFunction(0x401000, "sub_401000", 32)
	rejecting.RenameErr = errors.New("name already taken")
	prog.AddFunction(0x402000, "sub_402000", 16)
	adapter := boundSession(t, prog)

	snap := Snapshot{
		SchemaVersion: SchemaVersion,
		Functions: []FunctionRow{
			{Address: "0x401000", Name: strptr("main")},
			{Address: "0x402000", Name: strptr("helper")},
		},
	}

	report := ApplySnapshot(adapter, snap, true)

	if len(report.ApplyErrors) != 1 {
		t.Fatalf("apply_errors = %v, want one entry", report.ApplyErrors)
	}
	if report.Applied.RenamedFunctions != 1 {
		t.Errorf("renamed_functions = %d, want 1 (the failing entry must not count)", report.Applied.RenamedFunctions)
	}
	if got := prog.Funcs[0x402000].FName; got != "helper" {
		t.Errorf("processing must continue past a failed entry, second name = %q", got)
	}
}

func TestApplySnapshot_CommentWriteFailure(t *testing.T) {
	prog := testutil.NewFakeProgram()
	prog.CommentSetErr = errors.New("comments are read-only")
	adapter := boundSession(t, prog)

	snap := Snapshot{
		SchemaVersion: SchemaVersion,
		Comments:      []CommentRow{{Address: "0x401000", Text: "note"}},
	}

	report := ApplySnapshot(adapter, snap, true)

	if len(report.ApplyErrors) != 1 {
		t.Fatalf("apply_errors = %v, want one entry", report.ApplyErrors)
	}
	if report.Applied.AppliedComments != 0 {
		t.Errorf("applied_comments = %d, want 0", report.Applied.AppliedComments)
	}
}

func TestApplySnapshot_NoActiveProgram(t *testing.T) {
	adapter := session.NewAdapter(nil, testutil.NewTestLogger(t))

	snap := Snapshot{
		SchemaVersion: SchemaVersion,
		Functions:     []FunctionRow{{Address: "0x401000", Name: strptr("main")}},
	}

	report := ApplySnapshot(adapter, snap, true)

	if len(report.ApplyErrors) != 1 {
		t.Fatalf("apply_errors = %v, want the missing-program failure", report.ApplyErrors)
	}
	if report.Counts.Functions != 1 {
		t.Errorf("counts must still be reported: %+v", report.Counts)
	}
	if report.Applied.RenamedFunctions != 0 {
		t.Errorf("nothing can be applied without a program: %+v", report.Applied)
	}
}

func TestApplySnapshot_MatchingNameIsNotReapplied(t *testing.T) {
	prog := testutil.NewFakeProgram()
	fn := prog.AddFunction(0x401000, "main", 32)
	adapter := boundSession(t, prog)

	snap := Snapshot{
		SchemaVersion: SchemaVersion,
		Functions:     []FunctionRow{{Address: "0x401000", Name: strptr("main")}},
	}

	report := ApplySnapshot(adapter, snap, true)

	if report.Applied.RenamedFunctions != 0 {
		t.Errorf("renamed_functions = %d, want 0 for an already matching name", report.Applied.RenamedFunctions)
	}
	if len(fn.RenameCalls) != 0 {
		t.Error("no rename must be attempted when the name already matches")
	}
}

func TestApplySnapshot_RequestsRefresh(t *testing.T) {
	prog := testutil.NewFakeProgram()
	ws := &testutil.RefreshableWorkspace{}
	ws.Prog = prog
	adapter := session.NewAdapter(nil, testutil.NewTestLogger(t))
	adapter.BindWorkspace(ws)

	// Even an empty apply requests a refresh.
	ApplySnapshot(adapter, Snapshot{SchemaVersion: SchemaVersion}, true)

	if ws.RefreshCalls != 1 {
		t.Errorf("refresh calls = %d, want 1", ws.RefreshCalls)
	}
}
