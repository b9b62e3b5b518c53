package mcp

// Tool input types. Field tags drive the reflected JSON schemas, so every
// parameter description lives here next to its type.

// GetCurrentProgramInput is the input for the spyglass_get_current_program tool.
type GetCurrentProgramInput struct {
	BinaryPath *string `json:"binary_path,omitempty" jsonschema:"description=Optional binary path to load instead of the session program"`
}

// ListFunctionsInput is the input for the spyglass_list_functions tool.
type ListFunctionsInput struct {
	BinaryPath *string `json:"binary_path,omitempty" jsonschema:"description=Optional binary path to load instead of the session program"`
	Offset     *int    `json:"offset,omitempty" jsonschema:"description=Number of functions to skip,default=0"`
	Limit      *int    `json:"limit,omitempty" jsonschema:"description=Maximum number of functions to return,default=100"`
}

// GetFunctionInput is the input for the spyglass_get_function tool.
type GetFunctionInput struct {
	Address    string  `json:"address" jsonschema:"description=Function address as a hex string (e.g. 0x401000)"`
	BinaryPath *string `json:"binary_path,omitempty" jsonschema:"description=Optional binary path to load instead of the session program"`
}

// ListStringsInput is the input for the spyglass_list_strings tool.
type ListStringsInput struct {
	BinaryPath *string `json:"binary_path,omitempty" jsonschema:"description=Optional binary path to load instead of the session program"`
	Offset     *int    `json:"offset,omitempty" jsonschema:"description=Number of strings to skip,default=0"`
	Limit      *int    `json:"limit,omitempty" jsonschema:"description=Maximum number of strings to return,default=200"`
}

// GetXrefsToInput is the input for the spyglass_get_xrefs_to tool.
type GetXrefsToInput struct {
	Address    string  `json:"address" jsonschema:"description=Target address as a hex string"`
	BinaryPath *string `json:"binary_path,omitempty" jsonschema:"description=Optional binary path to load instead of the session program"`
	Offset     *int    `json:"offset,omitempty" jsonschema:"description=Number of cross-references to skip,default=0"`
	Limit      *int    `json:"limit,omitempty" jsonschema:"description=Maximum number of cross-references to return,default=100"`
}

// RenameFunctionInput is the input for the spyglass_rename_function tool.
type RenameFunctionInput struct {
	Address string `json:"address" jsonschema:"description=Function address as a hex string"`
	NewName string `json:"new_name" jsonschema:"description=New function name (must be non-blank)"`
}

// SetCommentInput is the input for the spyglass_set_comment tool.
type SetCommentInput struct {
	Address string `json:"address" jsonschema:"description=Address as a hex string"`
	Comment string `json:"comment" jsonschema:"description=Comment text to attach at the address"`
}

// SyncExportInput is the input for the spyglass_sync_export tool.
type SyncExportInput struct {
	OutputPath *string `json:"output_path,omitempty" jsonschema:"description=Optional file path to also write the snapshot to"`
}

// SyncImportInput is the input for the spyglass_sync_import tool.
type SyncImportInput struct {
	SnapshotJSON *string `json:"snapshot_json,omitempty" jsonschema:"description=Snapshot document as a JSON string"`
	SnapshotPath *string `json:"snapshot_path,omitempty" jsonschema:"description=Path to a snapshot file (takes precedence over snapshot_json)"`
	ApplyChanges *bool   `json:"apply_changes,omitempty" jsonschema:"description=Apply the snapshot to the live session instead of a dry run,default=true"`
}

// RunBatchInput is the input for the spyglass_run_batch tool.
type RunBatchInput struct {
	Actions []BatchActionInput `json:"actions" jsonschema:"description=Ordered list of actions to execute"`
}

// BatchActionInput is one action inside a spyglass_run_batch request.
type BatchActionInput struct {
	Type         string  `json:"type" jsonschema:"description=Action type: sync_export, sync_import or current_program"`
	OutputPath   *string `json:"output_path,omitempty" jsonschema:"description=Output path for sync_export actions"`
	SnapshotJSON *string `json:"snapshot_json,omitempty" jsonschema:"description=Snapshot JSON for sync_import actions"`
	SnapshotPath *string `json:"snapshot_path,omitempty" jsonschema:"description=Snapshot file path for sync_import actions"`
	ApplyChanges *bool   `json:"apply_changes,omitempty" jsonschema:"description=Apply imported changes,default=true"`
}

// EntryInput is the input for the spyglass_entry tool.
type EntryInput struct {
	BinaryPath *string `json:"binary_path,omitempty" jsonschema:"description=Optional binary path to load instead of the session program"`
}

// DecompileFunctionInput is the input for the spyglass_decompile_function tool.
type DecompileFunctionInput struct {
	Address string `json:"address" jsonschema:"description=Function address as a hex string"`
}

// RecoverCFGInput is the input for the spyglass_recover_cfg tool.
type RecoverCFGInput struct {
	BinaryPath     *string `json:"binary_path,omitempty" jsonschema:"description=Optional binary path to load instead of the session program"`
	TimeoutSeconds *int    `json:"timeout_seconds,omitempty" jsonschema:"description=Wall-clock limit for CFG recovery,default=60"`
}

// ExploreInput is the input for the spyglass_explore tool.
type ExploreInput struct {
	FindAddress    string   `json:"find_address" jsonschema:"description=Address to reach, as a hex string"`
	AvoidAddresses []string `json:"avoid_addresses,omitempty" jsonschema:"description=Addresses to avoid, as hex strings"`
	BinaryPath     *string  `json:"binary_path,omitempty" jsonschema:"description=Optional binary path to load instead of the session program"`
	TimeoutSeconds *int     `json:"timeout_seconds,omitempty" jsonschema:"description=Wall-clock limit for exploration,default=120"`
	SymbolicStdin  *bool    `json:"symbolic_stdin,omitempty" jsonschema:"description=Treat stdin as fully symbolic,default=true"`
}
