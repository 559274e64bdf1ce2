package logging

// Standardized attribute keys. Components use these instead of ad hoc
// strings so log consumers can filter reliably.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"

	FieldJobID   = "job_id"
	FieldItemID  = "item_id"
	FieldAssetID = "asset_id"
	FieldSource  = "source"

	FieldPhase           = "phase"
	FieldProgressBytes   = "progress_bytes"
	FieldProgressPercent = "progress_percent"
	FieldOutcome         = "outcome"
	FieldExitCode        = "exit_code"
)
