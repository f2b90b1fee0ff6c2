package taxonomy

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Category
	}{
		{"Die Stadt soll mehr Radwege bauen.", Policy},
		{"The council must ban through traffic in the old town.", Policy},
		{"Die Mieten sind laut Mietspiegel um 12 Prozent gestiegen.", Fact},
		{"There are 40 schools in the district.", Fact},
		{"Bezahlbarer Wohnraum ist wichtig für den Zusammenhalt.", Value},
		{"The current distribution is unjust.", Value},
		{"Der Verkehr gefährdet Kinder auf dem Schulweg.", Concern},
		{"Air pollution is a risk for elderly residents.", Concern},
		{"Warum gibt es keine Nachtbusse?", Question},
		{"Die Stadt hat viele Parks.", Fact}, // default bucket
	}

	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestClassify_OrderPolicyBeatsConcern(t *testing.T) {
	// Obligation language wins even when risk language is present.
	got := Classify("Die Stadt muss die Gefahr an der Kreuzung beseitigen.")
	if got != Policy {
		t.Errorf("Expected policy to win over concern, got %q", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	text := "Warum sind die Busse abends so selten?"
	first := Classify(text)
	for i := 0; i < 10; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("Classification changed between runs: %q then %q", first, got)
		}
	}
}
