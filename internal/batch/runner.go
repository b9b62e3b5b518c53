// Package batch sequences heterogeneous operation requests with per-action
// failure isolation. A batch is not a transaction: there is no atomicity and
// no rollback, and no action's failure halts the ones after it.
package batch

import "fmt"

// Action types dispatched by Run.
const (
	ActionSyncExport     = "sync_export"
	ActionSyncImport     = "sync_import"
	ActionCurrentProgram = "current_program"
)

// Action is one self-contained operation request. Parameters beyond Type are
// read by the action's handler and ignored by the others.
type Action struct {
	Type         string `json:"type"`
	OutputPath   string `json:"output_path,omitempty"`
	SnapshotJSON string `json:"snapshot_json,omitempty"`
	SnapshotPath string `json:"snapshot_path,omitempty"`
	// ApplyChanges defaults to true when omitted.
	ApplyChanges *bool `json:"apply_changes,omitempty"`
}

// Result records one action slot's outcome. Index always matches the input
// position so callers can correlate outcomes with requests.
type Result struct {
	Index  int    `json:"index"`
	OK     bool   `json:"ok"`
	Type   string `json:"type"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report is the outcome of a whole batch.
type Report struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Failed  int      `json:"failed"`
}

// Operations is the surface a batch dispatches to.
type Operations interface {
	SyncExport(outputPath string) (any, error)
	SyncImport(snapshotJSON, snapshotPath string, applyChanges bool) (any, error)
	CurrentProgram() (any, error)
}

// Run executes actions strictly in input order. An unrecognized action type
// fails its own slot only; it is not a parse-time rejection of the batch.
func Run(actions []Action, ops Operations) Report {
	report := Report{Results: make([]Result, 0, len(actions)), Total: len(actions)}

	for index, action := range actions {
		value, err := dispatch(action, ops)
		if err != nil {
			report.Results = append(report.Results, Result{
				Index: index,
				OK:    false,
				Type:  action.Type,
				Error: err.Error(),
			})
			report.Failed++
			continue
		}
		report.Results = append(report.Results, Result{
			Index:  index,
			OK:     true,
			Type:   action.Type,
			Result: value,
		})
	}

	return report
}

func dispatch(action Action, ops Operations) (any, error) {
	switch action.Type {
	case ActionSyncExport:
		return ops.SyncExport(action.OutputPath)
	case ActionSyncImport:
		applyChanges := true
		if action.ApplyChanges != nil {
			applyChanges = *action.ApplyChanges
		}
		return ops.SyncImport(action.SnapshotJSON, action.SnapshotPath, applyChanges)
	case ActionCurrentProgram:
		return ops.CurrentProgram()
	default:
		return nil, fmt.Errorf("unsupported batch action type: %q", action.Type)
	}
}
