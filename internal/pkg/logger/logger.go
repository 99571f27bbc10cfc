// Package logger builds the service's slog.Logger. Email addresses are
// redacted from every attribute before they reach the output.
package logger

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// New returns a logger writing to stderr.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter returns a logger writing to w. Unknown levels fall back to info,
// unknown formats to JSON.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: redactAttr,
	}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactAttr(_ []string, a slog.Attr) slog.Attr {
	// Errors are flattened to their message so addresses inside them get masked too.
	if err, ok := a.Value.Any().(error); ok && a.Value.Kind() == slog.KindAny && err != nil {
		return slog.String(a.Key, emailRegex.ReplaceAllStringFunc(err.Error(), RedactEmail))
	}
	if a.Value.Kind() != slog.KindString {
		return a
	}
	val := a.Value.String()
	if strings.Contains(strings.ToLower(a.Key), "email") {
		return slog.String(a.Key, RedactEmail(val))
	}
	if emailRegex.MatchString(val) {
		return slog.String(a.Key, emailRegex.ReplaceAllStringFunc(val, RedactEmail))
	}
	return a
}

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}
