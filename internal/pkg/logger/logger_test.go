package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]string {
	t.Helper()
	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, INFO)

	l.Log(INFO, "server listening", "addr", "localhost:8080")

	entry := logLine(t, &buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "server listening", entry["msg"])
	assert.Equal(t, "localhost:8080", entry["addr"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WARN)

	l.Log(INFO, "dropped")
	assert.Zero(t, buf.Len())

	l.Log(ERROR, "kept")
	assert.NotZero(t, buf.Len())
}

func TestLogRedactsEmailFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, INFO)

	l.Log(INFO, "notification sent", "email", "john.doe@example.com")

	entry := logLine(t, &buf)
	assert.Equal(t, "jo***@example.com", entry["email"])
}

func TestLogRedactsEmbeddedEmails(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, INFO)

	l.Log(INFO, "delivery failed", "error", "550 mailbox john.doe@example.com unavailable")

	entry := logLine(t, &buf)
	assert.NotContains(t, entry["error"], "john.doe@example.com")
	assert.Contains(t, entry["error"], "jo***@example.com")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"WARN", WARN},
		{"warning", WARN},
		{"Error", ERROR},
		{"", INFO},
		{"garbage", INFO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "input %q", tt.in)
	}
}

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
		{"a@b@c", "***@***"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RedactEmail(tt.in))
	}
}
