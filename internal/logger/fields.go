package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared across packages.
const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldOperation = "operation"
	FieldRequestID = "request_id"
)

// Fields turns alternating keys and values into zap string fields. Values are
// trimmed, pairs with a blank key or value are dropped and a trailing key
// without a value is ignored.
func Fields(keyvals ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key := strings.TrimSpace(keyvals[i])
		value := strings.TrimSpace(keyvals[i+1])
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// With returns log enriched with fields. A nil log yields a no-op logger.
func With(log *zap.Logger, fields ...zap.Field) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

// WithCommonFields tags oracle logs with the provider and model in use.
func WithCommonFields(log *zap.Logger, provider, model string) *zap.Logger {
	return With(log, Fields(FieldProvider, provider, FieldModel, model)...)
}

// WithRequest tags the logs of one service call.
func WithRequest(log *zap.Logger, operation, requestID string) *zap.Logger {
	return With(log, Fields(FieldOperation, operation, FieldRequestID, requestID)...)
}
