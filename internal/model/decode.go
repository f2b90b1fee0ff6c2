package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// claimWire tolerates the shapes language models actually produce:
// strings where lists belong, numbers where strings belong, fields
// missing entirely.
type claimWire struct {
	Text           any `json:"text"`
	Sachverhalt    any `json:"sachverhalt"`
	Zeitraum       any `json:"zeitraum"`
	Ort            any `json:"ort"`
	Zustaendigkeit any `json:"zustaendigkeit"`
	Betroffene     any `json:"betroffene"`
	Messgroesse    any `json:"messgroesse"`
	Unsicherheiten any `json:"unsicherheiten"`
	Sources        any `json:"sources"`
}

// UnmarshalJSON decodes a claim leniently. Whatever the model sent,
// the decoded claim has every scalar field as a string and every list
// field as a non-nil slice.
func (c *AtomicClaim) UnmarshalJSON(data []byte) error {
	var w claimWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = AtomicClaim{
		Text:           coerceString(w.Text),
		Sachverhalt:    coerceString(w.Sachverhalt),
		Zeitraum:       coerceString(w.Zeitraum),
		Ort:            coerceString(w.Ort),
		Zustaendigkeit: coerceString(w.Zustaendigkeit),
		Betroffene:     coerceStrings(w.Betroffene),
		Messgroesse:    coerceString(w.Messgroesse),
		Unsicherheiten: coerceString(w.Unsicherheiten),
		Sources:        coerceStrings(w.Sources),
	}
	return nil
}

// coerceString flattens scalar JSON values to a string; null and
// unsupported shapes become absent.
func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		return fmt.Sprintf("%v", t)
	default:
		return ""
	}
}

// coerceStrings flattens a JSON value to a string list: arrays keep
// their string-able elements, a bare string becomes a one-element
// list, everything else is empty.
func coerceStrings(v any) []string {
	switch t := v.(type) {
	case []any:
		out := []string{}
		for _, item := range t {
			if s := coerceString(item); s != "" && s != FieldEmpty {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(t)
		if s == "" || s == FieldEmpty {
			return []string{}
		}
		return []string{s}
	default:
		return []string{}
	}
}
