package toolhub

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"slices"
	"time"
)

// CostSummary aggregates the usage log per tool.
type CostSummary struct {
	Tool         string  `json:"tool"`
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// Summarize reads a usage log (one JSON record per line) and aggregates it
// per tool, most expensive first. A non-empty tool filters to one tool; a
// non-zero since drops older records. Lines that fail to parse are skipped:
// the log is append-only and a torn final line must not poison a summary.
func Summarize(r io.Reader, tool string, since time.Time) ([]CostSummary, error) {
	byTool := map[string]*CostSummary{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var rec UsageRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if tool != "" && rec.Tool != tool {
			continue
		}
		if !since.IsZero() && rec.Timestamp.Before(since) {
			continue
		}
		sum, ok := byTool[rec.Tool]
		if !ok {
			sum = &CostSummary{Tool: rec.Tool}
			byTool[rec.Tool] = sum
		}
		sum.Calls++
		sum.InputTokens += rec.InputTokens
		sum.OutputTokens += rec.OutputTokens
		sum.Cost += rec.Cost
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	out := make([]CostSummary, 0, len(byTool))
	for _, sum := range byTool {
		out = append(out, *sum)
	}
	slices.SortFunc(out, func(a, b CostSummary) int {
		switch {
		case a.Cost > b.Cost:
			return -1
		case a.Cost < b.Cost:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// SummarizeFile is Summarize over the log file at path. A missing file
// yields an empty summary, not an error: no usage has been recorded yet.
func SummarizeFile(path, tool string, since time.Time) ([]CostSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return Summarize(f, tool, since)
}
