package contract

import (
	"time"

	"github.com/spyglass-re/spyglass/internal/engine"
	"github.com/spyglass-re/spyglass/internal/session"
)

// BuildSnapshot exports a point-in-time snapshot of the program's knowledge
// base. Functions and comments are emitted in ascending address order and
// strings in the table's canonical order, so the result is deterministic for
// unchanged state.
func BuildSnapshot(p engine.Program, now time.Time, metadata map[string]any) Snapshot {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Snapshot{
		Comments:        commentRows(p),
		Functions:       functionRows(p),
		GeneratedAtUnix: now.Unix(),
		Metadata:        metadata,
		Program:         RecordFromDescriptor(session.DescribeProgram(p)),
		SchemaVersion:   SchemaVersion,
		Strings:         stringRows(p),
	}
}

func functionRows(p engine.Program) []FunctionRow {
	rows := []FunctionRow{}
	kb, ok := p.KB()
	if !ok {
		return rows
	}
	functions, ok := kb.Functions()
	if !ok {
		return rows
	}
	for _, addr := range functions.Addresses() {
		fn, ok := functions.Get(addr)
		if !ok {
			continue
		}
		row := FunctionRow{Address: FormatAddress(addr)}
		if name := fn.Name(); name != "" {
			row.Name = &name
		}
		if size, ok := fn.Size(); ok {
			row.Size = &size
		}
		rows = append(rows, row)
	}
	return rows
}

func stringRows(p engine.Program) []StringRow {
	rows := []StringRow{}
	kb, ok := p.KB()
	if !ok {
		return rows
	}
	strings, ok := kb.Strings()
	if !ok {
		return rows
	}
	for _, entry := range strings.Entries() {
		row := StringRow{Value: entry.Value}
		if entry.Addr != nil {
			addr := FormatAddress(*entry.Addr)
			row.Address = &addr
		}
		rows = append(rows, row)
	}
	return rows
}

func commentRows(p engine.Program) []CommentRow {
	rows := []CommentRow{}
	kb, ok := p.KB()
	if !ok {
		return rows
	}
	comments, ok := kb.Comments()
	if !ok {
		return rows
	}
	for _, addr := range comments.Addresses() {
		text, ok := comments.Get(addr)
		if !ok {
			continue
		}
		rows = append(rows, CommentRow{Address: FormatAddress(addr), Text: text})
	}
	return rows
}
