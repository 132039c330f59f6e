package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRunID is the structured log field key for the autofill run identifier.
	FieldRunID = "run_id"
	// FieldPlatform is the structured log field key for the detected platform.
	FieldPlatform = "platform"
	// FieldURL is the structured log field key for the page address.
	FieldURL = "url"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RunFields returns the fields identifying one autofill run. Empty values are
// left out.
func RunFields(runID, platform, url string) []zap.Field {
	return StringFields(
		StringField{Key: FieldRunID, Value: runID},
		StringField{Key: FieldPlatform, Value: platform},
		StringField{Key: FieldURL, Value: url},
	)
}

// WithRun attaches the run fields to the provided logger.
func WithRun(logger *zap.Logger, runID, platform, url string) *zap.Logger {
	return WithFields(logger, RunFields(runID, platform, url)...)
}
