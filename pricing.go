package toolhub

import (
	"strings"

	"github.com/shopspring/decimal"
)

// modelPrice is the per-token USD price for one model.
type modelPrice struct {
	input  decimal.Decimal
	output decimal.Decimal
}

// pricing holds per-token prices for the models tools commonly report.
// Unknown models fall back to the cheapest family member so cost summaries
// underestimate rather than invent.
var pricing = map[string]modelPrice{
	"gpt-4o-mini":   {input: decimal.RequireFromString("0.00000015"), output: decimal.RequireFromString("0.0000006")},
	"gpt-4o":        {input: decimal.RequireFromString("0.000005"), output: decimal.RequireFromString("0.000015")},
	"gpt-4.1":       {input: decimal.RequireFromString("0.000002"), output: decimal.RequireFromString("0.000008")},
	"gpt-4.1-mini":  {input: decimal.RequireFromString("0.0000004"), output: decimal.RequireFromString("0.0000016")},
	"o3-mini":       {input: decimal.RequireFromString("0.0000011"), output: decimal.RequireFromString("0.0000044")},
	"gpt-3.5-turbo": {input: decimal.RequireFromString("0.0000005"), output: decimal.RequireFromString("0.0000015")},
}

// families maps a substring of a model name to the pricing entry used when
// no exact match exists (e.g. dated snapshots like gpt-4o-mini-2024-07-18).
// Order matters: more specific families first.
var families = []string{"gpt-4o-mini", "gpt-4.1-mini", "gpt-4o", "gpt-4.1", "o3-mini", "gpt-3.5-turbo"}

// EstimateCost returns the USD cost of a call given model and token counts.
// Exact model match first, then family substring match, then the gpt-4o-mini
// floor.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	price, ok := pricing[model]
	if !ok {
		price = pricing["gpt-4o-mini"]
		for _, family := range families {
			if strings.Contains(model, family) {
				price = pricing[family]
				break
			}
		}
	}
	in := price.input.Mul(decimal.NewFromInt(int64(inputTokens)))
	out := price.output.Mul(decimal.NewFromInt(int64(outputTokens)))
	cost, _ := in.Add(out).Float64()
	return cost
}
