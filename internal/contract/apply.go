package contract

import (
	"fmt"

	"github.com/spyglass-re/spyglass/internal/engine"
	"github.com/spyglass-re/spyglass/internal/session"
)

// Counts summarizes how many entries the snapshot carried.
type Counts struct {
	Functions int `json:"functions"`
	Strings   int `json:"strings"`
	Comments  int `json:"comments"`
}

// Applied summarizes how many entries were written to the knowledge base.
type Applied struct {
	RenamedFunctions int `json:"renamed_functions"`
	AppliedComments  int `json:"applied_comments"`
}

// ApplyReport is the structured result of an import. It is always returned,
// even when every entry failed: callers distinguish "no program to apply to"
// from "some entries rejected" by reading ApplyErrors.
type ApplyReport struct {
	SchemaVersion string                    `json:"schema_version"`
	Program       session.ProgramDescriptor `json:"program"`
	Counts        Counts                    `json:"counts"`
	Applied       Applied                   `json:"applied"`
	ApplyChanges  bool                      `json:"apply_changes"`
	ApplyErrors   []string                  `json:"apply_errors"`
}

// ApplySnapshot consumes a validated snapshot. With applyChanges false it only
// reports counts and the parsed program record. With applyChanges true it
// applies function renames and comments to the live knowledge base:
//
//   - an entry whose address does not parse as hex is skipped silently;
//     partial or malformed entries are expected in hand-edited contracts
//   - a rename is attempted only when the address exists in the live table
//     and the current name differs
//   - a failed write records one error string and processing continues
//
// A best-effort GUI refresh is requested afterwards whether or not any entry
// changed. Failure to obtain the live program lands in ApplyErrors instead of
// aborting, so the result is structured either way.
func ApplySnapshot(sess *session.Adapter, snap Snapshot, applyChanges bool) ApplyReport {
	report := ApplyReport{
		SchemaVersion: snap.SchemaVersion,
		Program:       snap.Program.Descriptor(),
		Counts: Counts{
			Functions: len(snap.Functions),
			Strings:   len(snap.Strings),
			Comments:  len(snap.Comments),
		},
		ApplyChanges: applyChanges,
		ApplyErrors:  []string{},
	}
	if !applyChanges {
		return report
	}

	program, err := sess.RequireProgram()
	if err != nil {
		report.ApplyErrors = append(report.ApplyErrors, err.Error())
		return report
	}

	functions, comments := liveTables(program)

	for _, row := range snap.Functions {
		if row.Address == "" || row.Name == nil || *row.Name == "" {
			continue
		}
		addr, err := ParseAddress(row.Address)
		if err != nil {
			continue // tolerated, see above
		}
		if functions == nil {
			continue
		}
		fn, ok := functions.Get(addr)
		if !ok || fn.Name() == *row.Name {
			continue
		}
		if err := fn.SetName(*row.Name); err != nil {
			report.ApplyErrors = append(report.ApplyErrors, fmt.Sprintf("rename %s: %v", row.Address, err))
			continue
		}
		report.Applied.RenamedFunctions++
	}

	for _, row := range snap.Comments {
		if comments == nil || row.Address == "" {
			continue
		}
		addr, err := ParseAddress(row.Address)
		if err != nil {
			continue
		}
		if err := comments.Set(addr, row.Text); err != nil {
			report.ApplyErrors = append(report.ApplyErrors, fmt.Sprintf("comment %s: %v", row.Address, err))
			continue
		}
		report.Applied.AppliedComments++
	}

	sess.RefreshGUI()

	return report
}

func liveTables(p engine.Program) (engine.FunctionTable, engine.CommentTable) {
	kb, ok := p.KB()
	if !ok {
		return nil, nil
	}
	var functions engine.FunctionTable
	var comments engine.CommentTable
	if t, ok := kb.Functions(); ok {
		functions = t
	}
	if t, ok := kb.Comments(); ok {
		comments = t
	}
	return functions, comments
}
