package orchestra

import "strings"

// modelPrice holds USD per 1M tokens. The table is deliberately rough:
// it feeds the usage ledger for budgeting, not billing.
type modelPrice struct {
	prompt     float64
	completion float64
}

var priceTable = map[string]modelPrice{
	"gpt-4o":            {2.50, 10.00},
	"gpt-4o-mini":       {0.15, 0.60},
	"claude-3-5-sonnet": {3.00, 15.00},
	"claude-3-5-haiku":  {0.80, 4.00},
}

// estimateCost returns an approximate USD cost for one call. Unknown
// models (local Ollama included) cost zero.
func estimateCost(model string, promptTokens, completionTokens int) float64 {
	for prefix, p := range priceTable {
		if strings.HasPrefix(model, prefix) {
			return p.prompt*float64(promptTokens)/1e6 + p.completion*float64(completionTokens)/1e6
		}
	}
	return 0
}
