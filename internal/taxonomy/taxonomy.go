// Package taxonomy buckets claims into discourse categories with
// ordered, deterministic pattern checks. Display-only: it never gates
// correctness.
package taxonomy

import "strings"

// Category is one of the fixed discourse buckets.
type Category string

const (
	Policy   Category = "policy"
	Fact     Category = "fact"
	Value    Category = "value"
	Concern  Category = "concern"
	Question Category = "question"
)

// Pattern tables cover German and English civic language. Order
// matters: the first matching rule wins.
var (
	policyMarkers = []string{
		"soll", "sollte", "sollten", "muss", "müssen", "fordern", "fordert",
		"einführen", "abschaffen", "verbieten", "bauen",
		"should", "must", "ought to", "require", "ban", "introduce", "mandate",
	}
	factMarkers = []string{
		"ist gestiegen", "ist gesunken", "beträgt", "liegt bei", "gibt es",
		"existiert", "wurde gemessen", "prozent", "anzahl", "laut",
		"increased", "decreased", "amounts to", "there are", "there is",
		"exists", "measured", "percent", "according to",
	}
	valueMarkers = []string{
		"wichtig", "gerecht", "ungerecht", "fair", "unfair", "gut", "schlecht",
		"wertvoll", "inakzeptabel", "zumutbar",
		"important", "just", "unjust", "good", "bad", "valuable", "unacceptable",
	}
	concernMarkers = []string{
		"gefahr", "gefährdet", "risiko", "bedroht", "schaden", "schädlich",
		"befürchten", "sorge", "belastung",
		"danger", "risk", "threat", "harm", "harmful", "fear", "worried", "burden",
	}
	questionMarkers = []string{
		"warum", "wieso", "weshalb", "wann", "wer", "wie viel", "wie viele",
		"why", "when", "who", "how much", "how many", "what if",
	}
)

// Classify assigns a claim text to exactly one category. The checks
// run in a fixed order (policy, fact, value, concern, question) and
// fall through to fact.
func Classify(text string) Category {
	t := strings.ToLower(strings.TrimSpace(text))

	switch {
	case containsAny(t, policyMarkers):
		return Policy
	case containsAny(t, factMarkers):
		return Fact
	case containsAny(t, valueMarkers):
		return Value
	case containsAny(t, concernMarkers):
		return Concern
	case strings.Contains(t, "?") || containsAny(t, questionMarkers):
		return Question
	default:
		return Fact
	}
}

func containsAny(t string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(t, m) {
			return true
		}
	}
	return false
}
