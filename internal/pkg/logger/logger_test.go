package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@***", RedactEmail("not-an-email"))
	assert.Equal(t, "***@***", RedactEmail(""))
}

func TestNewWithWriter_RedactsEmails(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json")

	log.Info("subscription accepted",
		"email", "ursula@example.com",
		"note", "forwarded from le.guin@example.org",
		"name", "Ursula",
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ur***@example.com", entry["email"])
	assert.Equal(t, "forwarded from le***@example.org", entry["note"])
	assert.Equal(t, "Ursula", entry["name"])
	assert.Equal(t, "subscription accepted", entry["msg"])
}

func TestNewWithWriter_RedactsEmailsInErrors(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json")

	err := fmt.Errorf("save subscription: %w", errors.New("duplicate key: jane.doe@example.com"))
	log.Error("failed to save subscription", "error", err, "cause", errors.New("timeout"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "save subscription: duplicate key: ja***@example.com", entry["error"])
	assert.Equal(t, "timeout", entry["cause"])
	assert.NotContains(t, buf.String(), "jane.doe@example.com")
}

func TestNewWithWriter_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "text")

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Warn("kept", "component", "test")
	assert.Contains(t, buf.String(), "msg=kept")
	assert.Contains(t, buf.String(), "component=test")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
