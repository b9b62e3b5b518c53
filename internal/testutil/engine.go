package testutil

import (
	"context"
	"sort"

	"github.com/spyglass-re/spyglass/internal/engine"
)

// FakeFunction is a test double for one function-table entry.
type FakeFunction struct {
	FName     string
	FSize     *int64
	IsPLT     bool
	IsSyscall bool
	// RenameErr makes SetName fail without changing the name.
	RenameErr error
	// RenameCalls records every attempted rename.
	RenameCalls []string
}

func (f *FakeFunction) Name() string { return f.FName }

func (f *FakeFunction) SetName(name string) error {
	f.RenameCalls = append(f.RenameCalls, name)
	if f.RenameErr != nil {
		return f.RenameErr
	}
	f.FName = name
	return nil
}

func (f *FakeFunction) Size() (int64, bool) {
	if f.FSize == nil {
		return 0, false
	}
	return *f.FSize, true
}

func (f *FakeFunction) PLT() bool     { return f.IsPLT }
func (f *FakeFunction) Syscall() bool { return f.IsSyscall }

// FakeProgram is a configurable test double for engine.Program. Zero-valued
// feature flags expose everything; Disable* flags simulate hosts that omit
// parts of the object graph.
type FakeProgram struct {
	Path       string
	BinaryName string
	ArchName   string
	EntryAddr  *uint64

	Funcs      map[uint64]*FakeFunction
	StringRows []engine.StringEntry
	CommentMap map[uint64]string
	XrefRows   map[uint64][]engine.Xref

	// CommentSetErr makes comment writes fail.
	CommentSetErr error

	DisablePath      bool
	DisableLoader    bool
	DisableArch      bool
	DisableKB        bool
	DisableFunctions bool
	DisableStrings   bool
	DisableComments  bool
	DisableXrefs     bool

	// Analyzer, when set, is exposed through the AnalysisProvider probe.
	Analyzer engine.Analyzer
}

// NewFakeProgram returns a program with a plausible identity and empty tables.
func NewFakeProgram() *FakeProgram {
	entry := uint64(0x401000)
	return &FakeProgram{
		Path:       "/bin/target",
		BinaryName: "target",
		ArchName:   "AMD64",
		EntryAddr:  &entry,
		Funcs:      map[uint64]*FakeFunction{},
		CommentMap: map[uint64]string{},
	}
}

// AddFunction registers a function and returns its fake for assertions.
func (p *FakeProgram) AddFunction(addr uint64, name string, size int64) *FakeFunction {
	f := &FakeFunction{FName: name, FSize: &size}
	if p.Funcs == nil {
		p.Funcs = map[uint64]*FakeFunction{}
	}
	p.Funcs[addr] = f
	return f
}

// AddString registers a recovered string at addr.
func (p *FakeProgram) AddString(addr uint64, value string) {
	a := addr
	p.StringRows = append(p.StringRows, engine.StringEntry{Addr: &a, Value: value})
}

func (p *FakeProgram) Filename() (string, bool) {
	if p.DisablePath {
		return "", false
	}
	return p.Path, true
}

func (p *FakeProgram) Loader() (engine.Loader, bool) {
	if p.DisableLoader {
		return nil, false
	}
	return fakeLoader{p}, true
}

func (p *FakeProgram) Arch() (engine.Arch, bool) {
	if p.DisableArch {
		return nil, false
	}
	return fakeArch{p}, true
}

func (p *FakeProgram) KB() (engine.KnowledgeBase, bool) {
	if p.DisableKB {
		return nil, false
	}
	return fakeKB{p}, true
}

func (p *FakeProgram) Analyses() engine.Analyzer { return p.Analyzer }

type fakeLoader struct{ p *FakeProgram }

func (l fakeLoader) MainObject() (engine.MainObject, bool) { return fakeMainObject{l.p}, true }

type fakeMainObject struct{ p *FakeProgram }

func (m fakeMainObject) Entry() (uint64, bool) {
	if m.p.EntryAddr == nil {
		return 0, false
	}
	return *m.p.EntryAddr, true
}

func (m fakeMainObject) Binary() (string, bool) {
	if m.p.BinaryName == "" {
		return "", false
	}
	return m.p.BinaryName, true
}

type fakeArch struct{ p *FakeProgram }

func (a fakeArch) Name() (string, bool) {
	if a.p.ArchName == "" {
		return "", false
	}
	return a.p.ArchName, true
}

type fakeKB struct{ p *FakeProgram }

func (kb fakeKB) Functions() (engine.FunctionTable, bool) {
	if kb.p.DisableFunctions {
		return nil, false
	}
	return fakeFunctionTable{kb.p}, true
}

func (kb fakeKB) Strings() (engine.StringTable, bool) {
	if kb.p.DisableStrings {
		return nil, false
	}
	return fakeStringTable{kb.p}, true
}

func (kb fakeKB) Comments() (engine.CommentTable, bool) {
	if kb.p.DisableComments {
		return nil, false
	}
	return fakeCommentTable{kb.p}, true
}

func (kb fakeKB) Xrefs() (engine.XrefIndex, bool) {
	if kb.p.DisableXrefs {
		return nil, false
	}
	return fakeXrefIndex{kb.p}, true
}

type fakeFunctionTable struct{ p *FakeProgram }

func (t fakeFunctionTable) Get(addr uint64) (engine.Function, bool) {
	f, ok := t.p.Funcs[addr]
	if !ok {
		return nil, false
	}
	return f, true
}

func (t fakeFunctionTable) Addresses() []uint64 {
	addrs := make([]uint64, 0, len(t.p.Funcs))
	for addr := range t.p.Funcs {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

func (t fakeFunctionTable) Len() int { return len(t.p.Funcs) }

type fakeStringTable struct{ p *FakeProgram }

func (t fakeStringTable) Entries() []engine.StringEntry { return t.p.StringRows }
func (t fakeStringTable) Len() int                      { return len(t.p.StringRows) }

type fakeCommentTable struct{ p *FakeProgram }

func (t fakeCommentTable) Get(addr uint64) (string, bool) {
	text, ok := t.p.CommentMap[addr]
	return text, ok
}

func (t fakeCommentTable) Set(addr uint64, text string) error {
	if t.p.CommentSetErr != nil {
		return t.p.CommentSetErr
	}
	if t.p.CommentMap == nil {
		t.p.CommentMap = map[uint64]string{}
	}
	t.p.CommentMap[addr] = text
	return nil
}

func (t fakeCommentTable) Addresses() []uint64 {
	addrs := make([]uint64, 0, len(t.p.CommentMap))
	for addr := range t.p.CommentMap {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

type fakeXrefIndex struct{ p *FakeProgram }

func (x fakeXrefIndex) XrefsTo(addr uint64) []engine.Xref { return x.p.XrefRows[addr] }

// FakeAnalyzer is a canned-result engine.Analyzer.
type FakeAnalyzer struct {
	DecompiledText string
	DecompileErr   error
	CFG            engine.CFGSummary
	CFGErr         error
	ExploreRes     engine.ExploreResult
	ExploreErr     error
	// LastExplore records the most recent request for assertions.
	LastExplore *engine.ExploreRequest
}

func (a *FakeAnalyzer) Decompile(ctx context.Context, addr uint64) (string, error) {
	return a.DecompiledText, a.DecompileErr
}

func (a *FakeAnalyzer) RecoverCFG(ctx context.Context) (engine.CFGSummary, error) {
	return a.CFG, a.CFGErr
}

func (a *FakeAnalyzer) Explore(ctx context.Context, req engine.ExploreRequest) (engine.ExploreResult, error) {
	a.LastExplore = &req
	return a.ExploreRes, a.ExploreErr
}

// FakeOpener opens canned programs by path.
type FakeOpener struct {
	Programs map[string]engine.Program
	Err      error
	// Opened records every requested path.
	Opened []string
}

func (o *FakeOpener) Open(path string) (engine.Program, error) {
	o.Opened = append(o.Opened, path)
	if o.Err != nil {
		return nil, o.Err
	}
	if p, ok := o.Programs[path]; ok {
		return p, nil
	}
	p := NewFakeProgram()
	p.Path = path
	return p, nil
}

// WorkspaceWithProgram exposes a program through the direct access path.
type WorkspaceWithProgram struct {
	Prog engine.Program
}

func (w *WorkspaceWithProgram) Program() engine.Program { return w.Prog }

// RefreshableWorkspace exposes a program and a refresh hook that records calls.
type RefreshableWorkspace struct {
	WorkspaceWithProgram
	RefreshErr   error
	RefreshCalls int
}

func (w *RefreshableWorkspace) Refresh() error {
	w.RefreshCalls++
	return w.RefreshErr
}
