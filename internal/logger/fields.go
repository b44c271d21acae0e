package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldService       = "service"
	FieldApplicationID = "application_id"
	FieldJobID         = "job_id"
	FieldRecipient     = "recipient"
	FieldStatus        = "status"
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

// ApplicationFields describes an application status change for log entries.
func ApplicationFields(applicationID, jobID, status string) []zap.Field {
	return StringFields(
		StringField{Key: FieldApplicationID, Value: applicationID},
		StringField{Key: FieldJobID, Value: jobID},
		StringField{Key: FieldStatus, Value: status},
	)
}

// TruncateForLog shortens s to limit runes, appending an ellipsis when cut.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
