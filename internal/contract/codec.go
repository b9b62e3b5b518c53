package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	sperrors "github.com/spyglass-re/spyglass/internal/errors"
)

// requiredKeys lists the top-level snapshot keys, sorted.
var requiredKeys = []string{
	"comments",
	"functions",
	"generated_at_unix",
	"metadata",
	"program",
	"schema_version",
	"strings",
}

// Encode serializes a snapshot deterministically: sorted keys, two-space
// indentation, nil containers normalized to their empty form. Two encodes of
// equal snapshots are byte-identical, so repeated exports of unchanged state
// diff clean.
func Encode(s Snapshot) ([]byte, error) {
	normalized := s
	if normalized.Functions == nil {
		normalized.Functions = []FunctionRow{}
	}
	if normalized.Strings == nil {
		normalized.Strings = []StringRow{}
	}
	if normalized.Comments == nil {
		normalized.Comments = []CommentRow{}
	}
	if normalized.Metadata == nil {
		normalized.Metadata = map[string]any{}
	}

	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a snapshot payload. Syntactically invalid JSON
// yields a plain parse error; JSON of the wrong shape yields a
// MalformedSnapshotError naming the defect, so callers can present "not JSON"
// and "JSON but wrong shape" separately.
func Decode(data []byte) (Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return Snapshot{}, fmt.Errorf("parse snapshot: invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if err := Validate(doc); err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		// Structurally valid at the container level but a row field carries
		// the wrong type.
		return Snapshot{}, sperrors.MalformedSnapshotf("entry field has wrong type: %v", err)
	}
	return s, nil
}

// Validate checks a parsed snapshot document against the contract. Checks run
// in a fixed order and every failure names the defect precisely: the contract
// is hand-edited by humans, and "invalid snapshot" alone is not actionable.
func Validate(doc gjson.Result) error {
	if !doc.IsObject() {
		return sperrors.MalformedSnapshotf("snapshot must be a JSON object")
	}

	var missing []string
	for _, key := range requiredKeys {
		if !doc.Get(key).Exists() {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		// requiredKeys is sorted, so missing comes out sorted too.
		return sperrors.MalformedSnapshotf("missing snapshot keys: %s", strings.Join(missing, ", "))
	}

	if version := doc.Get("schema_version"); version.Type != gjson.String || version.Str != SchemaVersion {
		return sperrors.MalformedSnapshotf("unsupported schema_version %s; expected %q", version.Raw, SchemaVersion)
	}

	if !doc.Get("program").IsObject() {
		return sperrors.MalformedSnapshotf("program must be an object")
	}
	for _, key := range []string{"functions", "strings", "comments"} {
		if !doc.Get(key).IsArray() {
			return sperrors.MalformedSnapshotf("%s must be an array", key)
		}
	}
	if !doc.Get("metadata").IsObject() {
		return sperrors.MalformedSnapshotf("metadata must be an object")
	}

	generatedAt := doc.Get("generated_at_unix")
	if generatedAt.Type != gjson.Number {
		return sperrors.MalformedSnapshotf("generated_at_unix must be an integer")
	}
	if _, err := strconv.ParseInt(generatedAt.Raw, 10, 64); err != nil {
		return sperrors.MalformedSnapshotf("generated_at_unix must be an integer")
	}

	return nil
}

// LoadFile reads and decodes a snapshot file.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}
	return Decode(data)
}

// SaveFile encodes a snapshot and writes it to path.
func SaveFile(path string, s Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}
	return nil
}
