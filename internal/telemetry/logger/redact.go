package logger

import (
	"log/slog"
	"strconv"
	"strings"
)

// Attribute keys whose string values are stored payloads. Their text is
// replaced by its size so that values written with SET never reach logs.
var payloadKeys = map[string]bool{
	"value":   true,
	"payload": true,
	"args":    true,
}

func redactAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if IsPayloadKey(a.Key) {
			return slog.String(a.Key, Redact(a.Value.String()))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactAttr(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// IsPayloadKey reports whether values logged under key are redacted.
func IsPayloadKey(key string) bool {
	return payloadKeys[strings.ToLower(key)]
}

// Redact replaces s with a placeholder that keeps only its length.
func Redact(s string) string {
	return "[redacted " + strconv.Itoa(len(s)) + " bytes]"
}
