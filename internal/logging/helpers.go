package logging

import (
	"maps"

	"github.com/goliatone/go-usecontent/pkg/interfaces"
)

// WithFields returns a child logger carrying fields when logger implements
// interfaces.FieldsLogger, and logger itself otherwise. The map is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}
