package toolhub

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Usage is the side-channel payload a handler reports when it makes an LLM
// call: model name, token counts, and optionally an exact cost. When Cost is
// zero the recorder estimates it from the pricing table.
type Usage struct {
	Model        string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// UsageRecord is one persisted accounting entry, serialized as a single JSON
// line in the usage log.
type UsageRecord struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"ts"`
	Tool         string         `json:"tool"`
	Model        string         `json:"model,omitempty"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
	Cost         float64        `json:"cost"`
	DurationMS   float64        `json:"duration_ms"`
	Params       map[string]any `json:"params,omitempty"`
}

// usageCollector accumulates usage reported during one invocation. The
// Dispatcher installs one in the handler's context and drains it after the
// handler returns, so a cancelled handler that never returned its accounting
// produces no partial record.
type usageCollector struct {
	mu      sync.Mutex
	reports []Usage
}

type usageCollectorKey struct{}

func withUsageCollector(ctx context.Context) (context.Context, *usageCollector) {
	col := &usageCollector{}
	return context.WithValue(ctx, usageCollectorKey{}, col), col
}

// ReportUsage attaches an LLM usage payload to the current invocation.
// Handlers call it zero or more times; the Dispatcher aggregates the
// payloads into one UsageRecord per invocation. Outside a dispatch context
// it is a no-op.
func ReportUsage(ctx context.Context, u Usage) {
	col, ok := ctx.Value(usageCollectorKey{}).(*usageCollector)
	if !ok {
		return
	}
	col.mu.Lock()
	defer col.mu.Unlock()
	col.reports = append(col.reports, u)
}

// drain returns the aggregated usage, or nil when nothing was reported.
func (c *usageCollector) drain() *Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.reports) == 0 {
		return nil
	}
	total := Usage{Model: c.reports[0].Model}
	for _, u := range c.reports {
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
		total.Cost += u.Cost
	}
	return &total
}

var secretKeyHints = []string{"token", "secret", "password", "api_key", "apikey", "authorization", "credential"}

// redactParams returns a copy of params with secret-looking values masked,
// so usage logs never leak credentials passed as tool arguments.
func redactParams(params Args) map[string]any {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		if isSecretKey(k) {
			out[k] = "[redacted]"
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = redactParams(Args(nested))
			continue
		}
		out[k] = v
	}
	return out
}

func isSecretKey(key string) bool {
	lower := strings.ToLower(key)
	for _, hint := range secretKeyHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
