package extract

import (
	"strings"

	"github.com/buergerwerk/klartext/internal/model"
)

// minFragmentLen filters out interjections and stray abbreviations on
// the fallback path.
const minFragmentLen = 8

// Heuristic is the deterministic fallback splitter: sentence-ending
// punctuation and newlines delimit fragments, short fragments are
// dropped, and every structured field is filled with the "-" sentinel.
// If the length filter would discard everything, the unfiltered
// fragments are kept instead — the stage must not return zero claims
// for input that does contain sentence-like fragments.
func Heuristic(text string, maxClaims int) []model.AtomicClaim {
	fragments := splitFragments(text)

	kept := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if len(f) >= minFragmentLen {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		kept = fragments
	}

	if maxClaims > 0 && len(kept) > maxClaims {
		kept = kept[:maxClaims]
	}

	claims := make([]model.AtomicClaim, 0, len(kept))
	for _, f := range kept {
		c := model.AtomicClaim{Text: f}
		c.Normalize()
		claims = append(claims, c)
	}
	return claims
}

// splitFragments cuts text on sentence terminators and newlines.
func splitFragments(text string) []string {
	var fragments []string
	var current strings.Builder

	flush := func() {
		f := strings.TrimSpace(current.String())
		current.Reset()
		if f != "" {
			fragments = append(fragments, f)
		}
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return fragments
}
