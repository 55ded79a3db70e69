// Package observability provides audit logging helpers.
package observability

import (
	"context"
	"log/slog"

	"axioma/pkg/requestcontext"
)

// LogAudit logs an audit event enriched with the request ID. Events carrying
// outcome=rejected are logged at warn level.
func LogAudit(ctx context.Context, logger *slog.Logger, event string, attrList ...any) {
	if logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrList = append(attrList, "request_id", requestID)
	}
	args := append(attrList, "event", event, "log_type", "audit")

	level := slog.LevelInfo
	if stringAttr(attrList, "outcome") == "rejected" {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, event, args...)
}

// stringAttr returns the string value paired with key in a slog-style
// key/value list, or "" when absent or not a string.
func stringAttr(kv []any, key string) string {
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok && k == key {
			v, _ := kv[i+1].(string)
			return v
		}
	}
	return ""
}
