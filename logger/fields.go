package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldPath       = "path"
	FieldSource     = "source"
	FieldLine       = "line"
	FieldProteinID  = "protein_id"
	FieldRunID      = "run_id"
	FieldCount      = "count"
	FieldMigration  = "migration"
	FieldVersion    = "version"
	FieldDurationMS = "duration_ms"
	FieldError      = "error"
)

// ComponentLogger returns a named logger for a specific component.
//
// Example:
//
//	integrator := protein.NewIntegrator(opts, logger.ComponentLogger("ixgest.protein"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// OrNop returns l, or a no-op logger when l is nil. Packages that accept an
// optional logger call this once in their constructor.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}
