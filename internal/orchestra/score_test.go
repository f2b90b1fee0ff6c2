package orchestra

import (
	"testing"
	"time"
)

func TestSpeedBonus(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want float64
	}{
		{0, 0.5},
		{4 * time.Second, 0.25},
		{8 * time.Second, 0},
		{20 * time.Second, 0},
	}
	for _, tc := range cases {
		if got := speedBonus(tc.d); got != tc.want {
			t.Errorf("speedBonus(%v) = %f, want %f", tc.d, got, tc.want)
		}
	}
}

func TestScoreCandidate(t *testing.T) {
	c := Candidate{RawText: `[{"text":"a"}]`, Duration: 4 * time.Second}
	got := scoreCandidate(0.5, c)
	want := 0.5 + 0.5 + 0.25
	if got != want {
		t.Errorf("scoreCandidate = %f, want %f", got, want)
	}

	c = Candidate{RawText: "plain prose", Duration: 10 * time.Second}
	if got := scoreCandidate(0.3, c); got != 0.3 {
		t.Errorf("Expected bare weight for slow prose, got %f", got)
	}
}

func TestSelectBest_TieBrokenByDuration(t *testing.T) {
	candidates := []Candidate{
		{Provider: "a", Score: 1.0, Duration: 3 * time.Second},
		{Provider: "b", Score: 1.0, Duration: time.Second},
		{Provider: "c", Score: 0.9, Duration: time.Millisecond},
	}
	if best := selectBest(candidates); best.Provider != "b" {
		t.Errorf("Expected the faster of the tied candidates, got %q", best.Provider)
	}
}

func TestHasStructuredOutput(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`[{"text":"a"}]`, true},
		{"```json\n[{\"text\":\"a\"}]\n```", true},
		{`Here you go: {"primaryIndex": 0}`, true},
		{"no json here", false},
		{"", false},
		{"[broken", false},
	}
	for _, tc := range cases {
		if got := hasStructuredOutput(tc.raw); got != tc.want {
			t.Errorf("hasStructuredOutput(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestEstimateCost(t *testing.T) {
	if c := estimateCost("gpt-4o-mini-2024", 1000, 1000); c <= 0 {
		t.Errorf("Expected a positive cost for a known model, got %f", c)
	}
	if c := estimateCost("llama3.1", 1000, 1000); c != 0 {
		t.Errorf("Expected zero cost for local models, got %f", c)
	}
}
