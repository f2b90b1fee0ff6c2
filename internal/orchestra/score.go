package orchestra

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	// jsonBonus rewards responses that already parse as structured
	// output, saving the downstream stage a fallback pass.
	jsonBonus = 0.5

	// speedCeiling is the reference duration above which a response
	// earns no speed bonus.
	speedCeiling = 8 * time.Second

	// speedBonusMax caps the linear speed reward.
	speedBonusMax = 0.5
)

// scoreCandidate computes providerWeight + JSON validity bonus + speed
// bonus. Pure function, independent of the dispatch mechanism.
func scoreCandidate(weight float64, c Candidate) float64 {
	score := weight
	if hasStructuredOutput(c.RawText) {
		score += jsonBonus
	}
	score += speedBonus(c.Duration)
	return score
}

// speedBonus linearly rewards responses faster than the 8s ceiling,
// capped at speedBonusMax and floored at 0.
func speedBonus(d time.Duration) float64 {
	if d <= 0 {
		return speedBonusMax
	}
	if d >= speedCeiling {
		return 0
	}
	return speedBonusMax * (1 - float64(d)/float64(speedCeiling))
}

// selectBest returns the highest-scoring candidate, ties broken by
// lower duration. candidates must be non-empty.
func selectBest(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score || (c.Score == best.Score && c.Duration < best.Duration) {
			best = c
		}
	}
	return best
}

// hasStructuredOutput reports whether the raw text contains a
// syntactically valid JSON value, tolerating surrounding prose and
// markdown fencing.
func hasStructuredOutput(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	if json.Valid([]byte(raw)) {
		return true
	}
	for _, pair := range [...][2]byte{{'[', ']'}, {'{', '}'}} {
		start := strings.IndexByte(raw, pair[0])
		end := strings.LastIndexByte(raw, pair[1])
		if start >= 0 && end > start && json.Valid([]byte(raw[start:end+1])) {
			return true
		}
	}
	return false
}
