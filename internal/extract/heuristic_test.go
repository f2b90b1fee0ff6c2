package extract

import "testing"

func TestHeuristic_DropsShortFragments(t *testing.T) {
	claims := Heuristic("Die Mieten steigen! Ja. Der Nahverkehr ist zu teuer?", 10)
	if len(claims) != 2 {
		t.Fatalf("Expected the interjection dropped, got %d claims", len(claims))
	}
	if claims[0].Text != "Die Mieten steigen." {
		t.Errorf("Expected normalized sentence, got %q", claims[0].Text)
	}
}

func TestHeuristic_KeepsAllWhenFilterWouldEmpty(t *testing.T) {
	claims := Heuristic("A. B. C.", 10)
	if len(claims) != 3 {
		t.Fatalf("Expected all fragments kept when none pass the filter, got %d", len(claims))
	}
}

func TestHeuristic_NothingSentenceLike(t *testing.T) {
	if claims := Heuristic("... !!! ???", 10); len(claims) != 0 {
		t.Errorf("Expected no claims from pure punctuation, got %d", len(claims))
	}
}

func TestHeuristic_CapsAtMaxClaims(t *testing.T) {
	claims := Heuristic("Erste lange Aussage. Zweite lange Aussage. Dritte lange Aussage.", 2)
	if len(claims) != 2 {
		t.Errorf("Expected the cap applied, got %d", len(claims))
	}
}
