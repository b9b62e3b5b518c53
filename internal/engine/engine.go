// Package engine declares the interface surface of the external binary-analysis
// engine. The engine itself (loading, control-flow recovery, symbolic execution,
// decompilation) lives out of process of this repository's concerns; hosts bind
// their engine objects by implementing these interfaces.
//
// Accessors return (value, ok) pairs because the host object graph is not
// contractually stable across versions: a field that is missing yields ok=false,
// never a panic or an error. The two mutation points (function rename, comment
// write) go through the engine's own accessors and may fail per entry.
package engine

import "context"

// Program is one loaded binary and its analysis state.
type Program interface {
	// Filename is the on-disk path the program was loaded from.
	Filename() (string, bool)
	// Loader gives access to loader-reported metadata.
	Loader() (Loader, bool)
	// Arch identifies the program architecture.
	Arch() (Arch, bool)
	// KB is the engine's mutable knowledge base for this program.
	KB() (KnowledgeBase, bool)
}

// Loader exposes loader-reported metadata for a program.
type Loader interface {
	MainObject() (MainObject, bool)
}

// MainObject is the loader's view of the main binary.
type MainObject interface {
	// Entry is the loader-reported entry point.
	Entry() (uint64, bool)
	// Binary is the main binary's name.
	Binary() (string, bool)
}

// Arch identifies an instruction set architecture.
type Arch interface {
	Name() (string, bool)
}

// KnowledgeBase is the engine's per-program store of recovered facts.
// Every table is optional; hosts report what they have.
type KnowledgeBase interface {
	Functions() (FunctionTable, bool)
	Strings() (StringTable, bool)
	Comments() (CommentTable, bool)
	Xrefs() (XrefIndex, bool)
}

// Function is one entry in the function table.
type Function interface {
	Name() string
	// SetName requests an in-place rename through the engine.
	SetName(name string) error
	Size() (int64, bool)
	PLT() bool
	Syscall() bool
}

// FunctionTable is the address-keyed function store.
type FunctionTable interface {
	Get(addr uint64) (Function, bool)
	// Addresses returns all function addresses in ascending order.
	Addresses() []uint64
	Len() int
}

// StringEntry is one recovered string. Addr is nil when the engine could not
// attribute the string to an address.
type StringEntry struct {
	Addr  *uint64
	Value string
}

// StringTable is the recovered-string store.
type StringTable interface {
	// Entries returns all strings in the table's canonical order.
	Entries() []StringEntry
	Len() int
}

// CommentTable is the address-keyed comment store.
type CommentTable interface {
	Get(addr uint64) (string, bool)
	// Set writes comment text at addr through the engine.
	Set(addr uint64, text string) error
	// Addresses returns all commented addresses in ascending order.
	Addresses() []uint64
}

// Xref is one cross-reference to a destination address.
type Xref struct {
	Src  uint64
	Dst  uint64
	Kind string
}

// XrefIndex answers reverse cross-reference queries.
type XrefIndex interface {
	XrefsTo(addr uint64) []Xref
}

// Opener constructs an ephemeral Program from a binary path, bypassing any
// GUI-bound session. Used for deterministic scripted calls.
type Opener interface {
	Open(path string) (Program, error)
}

// CFGSummary summarizes a recovered control-flow graph.
type CFGSummary struct {
	Nodes int
	Edges int
}

// ExploreRequest parameterizes a symbolic path search.
type ExploreRequest struct {
	// Find is the target address to reach.
	Find uint64
	// Avoid lists addresses that prune a path when reached.
	Avoid []uint64
	// SymbolicStdin makes stdin fully symbolic during the search.
	SymbolicStdin bool
}

// ExploreResult reports the outcome of a symbolic path search.
type ExploreResult struct {
	Found           bool
	ActiveStates    int
	DeadendedStates int
	// Stdin is the concretized stdin of the found state, when any.
	Stdin []byte
}

// Analyzer runs the engine's long-running analyses. Each call is a single
// opaque operation that either returns a structured summary or fails; callers
// bound them with a context deadline when they want a wall-clock limit.
type Analyzer interface {
	Decompile(ctx context.Context, addr uint64) (string, error)
	RecoverCFG(ctx context.Context) (CFGSummary, error)
	Explore(ctx context.Context, req ExploreRequest) (ExploreResult, error)
}

// AnalysisProvider is implemented by programs whose host exposes the engine's
// analysis suite. Probed by type assertion; absence is a structured result,
// not an error.
type AnalysisProvider interface {
	Analyses() Analyzer
}
