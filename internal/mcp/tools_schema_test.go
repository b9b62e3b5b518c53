package mcp

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// TestSchemaGeneration verifies that JSON schemas are generated for every tool
// input type and survive the raw-schema registration path.
func TestSchemaGeneration(t *testing.T) {
	tests := []struct {
		name      string
		inputType any
	}{
		{"GetCurrentProgramInput", GetCurrentProgramInput{}},
		{"ListFunctionsInput", ListFunctionsInput{}},
		{"GetFunctionInput", GetFunctionInput{}},
		{"ListStringsInput", ListStringsInput{}},
		{"GetXrefsToInput", GetXrefsToInput{}},
		{"RenameFunctionInput", RenameFunctionInput{}},
		{"SetCommentInput", SetCommentInput{}},
		{"SyncExportInput", SyncExportInput{}},
		{"SyncImportInput", SyncImportInput{}},
		{"RunBatchInput", RunBatchInput{}},
		{"EntryInput", EntryInput{}},
		{"DecompileFunctionInput", DecompileFunctionInput{}},
		{"RecoverCFGInput", RecoverCFGInput{}},
		{"ExploreInput", ExploreInput{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := generateInputSchema(tt.inputType)
			if err != nil {
				t.Fatalf("generateInputSchema() error = %v", err)
			}

			if schemaType, _ := schema["type"].(string); schemaType != "object" {
				t.Errorf("schema type = %v, want object", schema["type"])
			}
			if _, stillThere := schema["$schema"]; stillThere {
				t.Error("schema still carries $schema")
			}
			if _, stillThere := schema["$id"]; stillThere {
				t.Error("schema still carries $id")
			}

			schemaBytes, err := json.Marshal(schema)
			if err != nil {
				t.Fatalf("json.Marshal(schema) error = %v", err)
			}

			tool := mcp.NewToolWithRawSchema("test_tool", "Test tool description", schemaBytes)
			if len(tool.RawInputSchema) == 0 {
				t.Error("tool.RawInputSchema is empty")
			}

			toolJSON, err := json.Marshal(tool)
			if err != nil {
				t.Fatalf("json.Marshal(tool) error = %v", err)
			}
			var unmarshaled map[string]any
			if err := json.Unmarshal(toolJSON, &unmarshaled); err != nil {
				t.Fatalf("json.Unmarshal(toolJSON) error = %v", err)
			}
			if _, ok := unmarshaled["inputSchema"].(map[string]any); !ok {
				t.Errorf("marshaled tool has no object inputSchema: %s", toolJSON)
			}
		})
	}
}

// TestInlineSchemasHaveNoRefs checks that nested action schemas are inlined
// rather than referenced through $defs.
func TestInlineSchemasHaveNoRefs(t *testing.T) {
	schema, err := generateInputSchema(RunBatchInput{})
	if err != nil {
		t.Fatalf("generateInputSchema() error = %v", err)
	}
	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("json.Marshal(schema) error = %v", err)
	}
	for _, forbidden := range []string{`"$ref"`, `"$defs"`} {
		if bytes.Contains(data, []byte(forbidden)) {
			t.Errorf("schema contains %s: %s", forbidden, data)
		}
	}
}
