// Package contract implements the versioned sync contract: a deterministic,
// schema-checked textual snapshot of a program's analysis state, plus the
// applier that feeds an accepted snapshot back into the live knowledge base.
package contract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spyglass-re/spyglass/internal/session"
)

// SchemaVersion is the single supported contract version. Snapshots carrying
// any other version are rejected outright: there is no compatibility window,
// so a future or past contract shape can never be silently misapplied.
const SchemaVersion = "1.0"

// Struct fields below are declared in alphabetical order of their JSON keys;
// Encode relies on that to emit sorted keys.

// ProgramRecord is the descriptor embedded in a snapshot.
type ProgramRecord struct {
	Architecture *string `json:"architecture"`
	Entry        *uint64 `json:"entry"`
	Name         *string `json:"name"`
	Path         *string `json:"path"`
}

// RecordFromDescriptor converts a live program descriptor into the snapshot's
// program record.
func RecordFromDescriptor(d session.ProgramDescriptor) ProgramRecord {
	return ProgramRecord{
		Architecture: d.Architecture,
		Entry:        d.Entry,
		Name:         d.Name,
		Path:         d.Path,
	}
}

// Descriptor converts the record back into a program descriptor.
func (r ProgramRecord) Descriptor() session.ProgramDescriptor {
	return session.ProgramDescriptor{
		Name:         r.Name,
		Path:         r.Path,
		Architecture: r.Architecture,
		Entry:        r.Entry,
	}
}

// FunctionRow is one exported function entry.
type FunctionRow struct {
	Address string  `json:"address"`
	Name    *string `json:"name"`
	Size    *int64  `json:"size"`
}

// StringRow is one exported string entry. Address is null when the engine
// could not attribute the string to an address.
type StringRow struct {
	Address *string `json:"address"`
	Value   string  `json:"value"`
}

// CommentRow is one exported comment entry.
type CommentRow struct {
	Address string `json:"address"`
	Text    string `json:"text"`
}

// Snapshot is a point-in-time export of a subset of analysis state. It is the
// unit of exchange of the sync contract: hand-edited by humans, round-tripped
// by tools.
type Snapshot struct {
	Comments        []CommentRow   `json:"comments"`
	Functions       []FunctionRow  `json:"functions"`
	GeneratedAtUnix int64          `json:"generated_at_unix"`
	Metadata        map[string]any `json:"metadata"`
	Program         ProgramRecord  `json:"program"`
	SchemaVersion   string         `json:"schema_version"`
	Strings         []StringRow    `json:"strings"`
}

// FormatAddress renders an address as a 0x-prefixed lowercase hex string.
func FormatAddress(addr uint64) string {
	return fmt.Sprintf("0x%x", addr)
}

// ParseAddress parses a 0x-prefixed (or bare) hex address string.
func ParseAddress(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" {
		return 0, fmt.Errorf("empty address")
	}
	addr, err := strconv.ParseUint(trimmed, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", s, err)
	}
	return addr, nil
}
