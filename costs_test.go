package toolhub

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usageLog(t *testing.T, records ...UsageRecord) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		require.NoError(t, enc.Encode(rec))
	}
	return &buf
}

func TestSummarize(t *testing.T) {
	now := time.Now().UTC()
	log := usageLog(t,
		UsageRecord{ID: "1", Tool: "search", Timestamp: now, InputTokens: 100, OutputTokens: 10, Cost: 0.002},
		UsageRecord{ID: "2", Tool: "search", Timestamp: now, InputTokens: 50, OutputTokens: 5, Cost: 0.001},
		UsageRecord{ID: "3", Tool: "docs", Timestamp: now, InputTokens: 10, OutputTokens: 1, Cost: 0.01},
	)

	summaries, err := Summarize(log, "", time.Time{})
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Most expensive first.
	assert.Equal(t, "docs", summaries[0].Tool)
	assert.Equal(t, "search", summaries[1].Tool)
	assert.Equal(t, 2, summaries[1].Calls)
	assert.Equal(t, 150, summaries[1].InputTokens)
	assert.Equal(t, 15, summaries[1].OutputTokens)
	assert.InDelta(t, 0.003, summaries[1].Cost, 1e-9)
}

func TestSummarize_FilterByToolAndSince(t *testing.T) {
	now := time.Now().UTC()
	log := usageLog(t,
		UsageRecord{ID: "1", Tool: "search", Timestamp: now.Add(-48 * time.Hour), Cost: 0.5},
		UsageRecord{ID: "2", Tool: "search", Timestamp: now, Cost: 0.25},
		UsageRecord{ID: "3", Tool: "docs", Timestamp: now, Cost: 0.1},
	)

	summaries, err := Summarize(log, "search", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "search", summaries[0].Tool)
	assert.Equal(t, 1, summaries[0].Calls)
	assert.InDelta(t, 0.25, summaries[0].Cost, 1e-9)
}

func TestSummarize_SkipsTornLines(t *testing.T) {
	now := time.Now().UTC()
	log := usageLog(t, UsageRecord{ID: "1", Tool: "search", Timestamp: now, Cost: 0.1})
	log.WriteString(`{"id": "torn`)

	summaries, err := Summarize(log, "", time.Time{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Calls)
}

func TestSummarizeFile_Missing(t *testing.T) {
	summaries, err := SummarizeFile(filepath.Join(t.TempDir(), "nope.jsonl"), "", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
