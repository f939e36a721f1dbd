package toolhub

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_WritesOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)

	r.Record(UsageRecord{ID: "1", Tool: "a", Timestamp: time.Now().UTC()})
	r.Record(UsageRecord{ID: "2", Tool: "b", Timestamp: time.Now().UTC()})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var rec UsageRecord
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "a", rec.Tool)
}

func TestRecorder_SinkFailureIsSwallowed(t *testing.T) {
	r := NewRecorder(failingWriter{})
	// Must not panic or propagate.
	r.Record(UsageRecord{ID: "1", Tool: "a"})
}

func TestFileRecorder_LazyCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "usage.jsonl")
	r := NewFileRecorder(path)

	// Nothing on disk until the first record.
	_, err := os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(err))

	r.Record(UsageRecord{ID: "1", Tool: "echo", Timestamp: time.Now().UTC()})
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec UsageRecord
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "echo", rec.Tool)
}

func TestFileRecorder_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.jsonl")

	first := NewFileRecorder(path)
	first.Record(UsageRecord{ID: "1", Tool: "a"})
	require.NoError(t, first.Close())

	second := NewFileRecorder(path)
	second.Record(UsageRecord{ID: "2", Tool: "b"})
	require.NoError(t, second.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	assert.Len(t, lines, 2)
}

func TestRecorder_CloseWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, NewRecorder(&buf).Close())
}
