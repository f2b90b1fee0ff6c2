package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buergerwerk/klartext/internal/model"
)

// parseClaimList recovers a claim array from raw model output,
// tolerating markdown fencing and surrounding prose by scanning for
// the outermost bracket pair. Lenient field coercion happens in the
// claim's UnmarshalJSON.
func parseClaimList(raw string) ([]model.AtomicClaim, error) {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var rows []model.AtomicClaim
	if err := json.Unmarshal([]byte(raw[start:end+1]), &rows); err != nil {
		return nil, fmt.Errorf("unmarshal claim array: %w", err)
	}

	claims := make([]model.AtomicClaim, 0, len(rows))
	for _, c := range rows {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		claims = append(claims, c)
	}
	return claims, nil
}
