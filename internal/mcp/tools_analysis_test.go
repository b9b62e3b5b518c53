package mcp

import (
	"math"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/spyglass-re/spyglass/internal/engine"
	"github.com/spyglass-re/spyglass/internal/testutil"
)

// TestExploreToolLossyStdin checks that a concretized stdin that is not valid
// UTF-8 still yields both renderings: exact hex plus a lossy text form with
// invalid sequences replaced by U+FFFD.
func TestExploreToolLossyStdin(t *testing.T) {
	s, program := newTestServer(t)
	program.Analyzer = &testutil.FakeAnalyzer{
		ExploreRes: engine.ExploreResult{
			Found: true,
			Stdin: []byte{0x41, 0xff, 0x42},
		},
	}

	text, isError := toolText(callTool(t, s, "spyglass_explore",
		map[string]any{"find_address": "0x401234"}))
	if isError {
		t.Fatalf("tool reported error: %s", text)
	}
	result := gjson.Parse(text)
	if got := result.Get("stdin_solution").String(); got != "41ff42" {
		t.Errorf("stdin_solution = %q, want 41ff42", got)
	}
	if got := result.Get("stdin_solution_utf8").String(); got != "A�B" {
		t.Errorf("stdin_solution_utf8 = %q, want A�B", got)
	}
}

func TestAnalysisTimeout(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"typical", 60, 60 * time.Second},
		{"at the cap", int(maxAnalysisTimeout / time.Second), maxAnalysisTimeout},
		{"beyond the cap", int(maxAnalysisTimeout/time.Second) + 1, maxAnalysisTimeout},
		{"max int", math.MaxInt, maxAnalysisTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analysisTimeout(tt.seconds); got != tt.want {
				t.Errorf("analysisTimeout(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}
