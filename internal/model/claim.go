package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FieldEmpty is the sentinel for a structured field the model (or the
// fallback path) could not fill. Fields are never omitted: absence is
// always spelled out as "-" or an empty list.
const FieldEmpty = "-"

// Zustaendigkeit is the closed set of governance levels a claim can be
// assigned to.
type Zustaendigkeit string

const (
	ZustaendigkeitEU      Zustaendigkeit = "EU"
	ZustaendigkeitBund    Zustaendigkeit = "Bund"
	ZustaendigkeitLand    Zustaendigkeit = "Land"
	ZustaendigkeitKommune Zustaendigkeit = "Kommune"
	ZustaendigkeitNone    Zustaendigkeit = FieldEmpty
)

// AtomicClaim is a single-sentence, structurally tagged statement
// extracted from a citizen submission. It is created by the extraction
// stage, enriched (never dropped) by refinement, and read-only for
// clustering and taxonomy.
type AtomicClaim struct {
	Text           string   `json:"text"`
	Sachverhalt    string   `json:"sachverhalt"`
	Zeitraum       string   `json:"zeitraum"`
	Ort            string   `json:"ort"`
	Zustaendigkeit string   `json:"zustaendigkeit"`
	Betroffene     []string `json:"betroffene"`
	Messgroesse    string   `json:"messgroesse"`
	Unsicherheiten string   `json:"unsicherheiten"`
	Sources        []string `json:"sources"`
}

// Normalize coerces every field into its canonical shape: missing
// strings become "-", nil lists become empty lists, the claim text is
// trimmed, capitalized and given terminal punctuation, and the
// Zustaendigkeit value is folded onto the closed enum.
func (c *AtomicClaim) Normalize() {
	c.Text = NormalizeSentence(c.Text)
	c.Sachverhalt = orEmpty(c.Sachverhalt)
	c.Zeitraum = orEmpty(c.Zeitraum)
	c.Ort = orEmpty(c.Ort)
	c.Zustaendigkeit = string(ParseZustaendigkeit(c.Zustaendigkeit))
	c.Messgroesse = orEmpty(c.Messgroesse)
	c.Unsicherheiten = orEmpty(c.Unsicherheiten)
	if c.Betroffene == nil {
		c.Betroffene = []string{}
	}
	if c.Sources == nil {
		c.Sources = []string{}
	}
}

// ParseZustaendigkeit maps free-form model output onto the closed enum.
// Unrecognized values collapse to the "-" sentinel rather than leaking
// through.
func ParseZustaendigkeit(s string) Zustaendigkeit {
	switch v := strings.ToLower(strings.TrimSpace(s)); {
	case v == "eu" || strings.Contains(v, "europ"):
		return ZustaendigkeitEU
	case strings.Contains(v, "bund") || strings.Contains(v, "national") || strings.Contains(v, "federal"):
		return ZustaendigkeitBund
	case strings.Contains(v, "land") && !strings.Contains(v, "deutschland") || strings.Contains(v, "state"):
		return ZustaendigkeitLand
	case strings.Contains(v, "kommun") || strings.Contains(v, "stadt") || strings.Contains(v, "gemeinde") || strings.Contains(v, "municipal"):
		return ZustaendigkeitKommune
	default:
		return ZustaendigkeitNone
	}
}

// NormalizeSentence trims, upper-cases the first rune and ensures the
// sentence ends with terminal punctuation.
func NormalizeSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsLower(r) {
		s = string(unicode.ToUpper(r)) + s[size:]
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
	default:
		s += "."
	}
	return s
}

func orEmpty(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return FieldEmpty
	}
	return s
}
