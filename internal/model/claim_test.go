package model

import (
	"encoding/json"
	"testing"
)

func TestNormalize_FieldCompleteness(t *testing.T) {
	c := AtomicClaim{Text: "die Stadt braucht mehr Radwege"}
	c.Normalize()

	if c.Text != "Die Stadt braucht mehr Radwege." {
		t.Errorf("Expected capitalized, terminated text, got %q", c.Text)
	}
	for name, v := range map[string]string{
		"sachverhalt":    c.Sachverhalt,
		"zeitraum":       c.Zeitraum,
		"ort":            c.Ort,
		"zustaendigkeit": c.Zustaendigkeit,
		"messgroesse":    c.Messgroesse,
		"unsicherheiten": c.Unsicherheiten,
	} {
		if v != FieldEmpty {
			t.Errorf("Expected %s to default to %q, got %q", name, FieldEmpty, v)
		}
	}
	if c.Betroffene == nil || c.Sources == nil {
		t.Error("Expected list fields to be non-nil after Normalize")
	}
}

func TestNormalize_KeepsExistingPunctuation(t *testing.T) {
	for _, text := range []string{"Warum nicht?", "Sofort handeln!", "Das stimmt."} {
		c := AtomicClaim{Text: text}
		c.Normalize()
		if c.Text != text {
			t.Errorf("Expected %q unchanged, got %q", text, c.Text)
		}
	}
}

func TestParseZustaendigkeit(t *testing.T) {
	cases := map[string]Zustaendigkeit{
		"EU":              ZustaendigkeitEU,
		"europäisch":      ZustaendigkeitEU,
		"Bund":            ZustaendigkeitBund,
		"national":        ZustaendigkeitBund,
		"Land":            ZustaendigkeitLand,
		"state":           ZustaendigkeitLand,
		"Kommune":         ZustaendigkeitKommune,
		"Stadt München":   ZustaendigkeitKommune,
		"municipal":       ZustaendigkeitKommune,
		"":                ZustaendigkeitNone,
		"-":               ZustaendigkeitNone,
		"irgendwas":       ZustaendigkeitNone,
	}
	for in, want := range cases {
		if got := ParseZustaendigkeit(in); got != want {
			t.Errorf("ParseZustaendigkeit(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnmarshalJSON_LenientShapes(t *testing.T) {
	raw := `{
		"text": "Die Miete steigt.",
		"zeitraum": 2024,
		"betroffene": "Mieter",
		"sources": ["https://example.org", null, 7],
		"messgroesse": null
	}`

	var c AtomicClaim
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if c.Zeitraum != "2024" {
		t.Errorf("Expected numeric zeitraum coerced to %q, got %q", "2024", c.Zeitraum)
	}
	if len(c.Betroffene) != 1 || c.Betroffene[0] != "Mieter" {
		t.Errorf("Expected bare string betroffene to become a one-element list, got %v", c.Betroffene)
	}
	if len(c.Sources) != 2 {
		t.Errorf("Expected null dropped from sources, got %v", c.Sources)
	}
	if c.Messgroesse != "" {
		t.Errorf("Expected null messgroesse decoded as empty, got %q", c.Messgroesse)
	}
}
