package logging

// Structured field names shared across packages.
const (
	FieldError    = "error"
	FieldPath     = "path"
	FieldFiles    = "files"
	FieldJobs     = "jobs"
	FieldEdits    = "edits"
	FieldPass     = "pass"
	FieldNodeType = "node"
	FieldLabel    = "formatter"
	FieldOffset   = "offset"
	FieldRequest  = "request"
	FieldID       = "id"
	FieldDuration = "duration"
	FieldStatus   = "status"
)
