package vocab

import (
	"reflect"
	"testing"
)

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantXP    int
		wantWords []string
	}{
		{"common tier", "I will analyse this.", 3, []string{"analyse"}},
		{"medium tier", "The contrast was obvious.", 10, []string{"contrast", "obvious"}},
		{"challenging tier", "An ambiguous scenario.", 20, []string{"ambiguous", "scenario"}},
		{"mixed tiers", "I need to analyse the data and evaluate the subsequent impact.", 17, []string{"analyse", "data", "evaluate", "impact", "subsequent"}},
		{"no headwords", "Look around.", 0, nil},
		{"empty input", "   ", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xp, words := Score(tt.input, nil)
			if xp != tt.wantXP {
				t.Errorf("Score(%q) xp = %d, want %d", tt.input, xp, tt.wantXP)
			}
			if !reflect.DeepEqual(words, tt.wantWords) {
				t.Errorf("Score(%q) words = %v, want %v", tt.input, words, tt.wantWords)
			}
		})
	}
}

func TestScoreNormalizes(t *testing.T) {
	xp, words := Score("Let's COMMENCE the so-called plan!", nil)
	want := []string{"commence", "so-called"}
	if xp != 20 || !reflect.DeepEqual(words, want) {
		t.Errorf("Score = (%d, %v), want (20, %v)", xp, words, want)
	}
}

func TestScoreDeduplicatesWithinInput(t *testing.T) {
	xp, words := Score("approach approach approach", nil)
	if xp != 3 || len(words) != 1 {
		t.Errorf("repeated word scored more than once: (%d, %v)", xp, words)
	}
}

func TestScoreIsMonotonic(t *testing.T) {
	// A word credited once is never credited again for the same character.
	learned := map[string]bool{}
	xp, words := Score("approach evaluate", learned)
	if xp != 6 {
		t.Fatalf("first pass xp = %d, want 6", xp)
	}
	for _, w := range words {
		learned[w] = true
	}
	xp, words = Score("approach evaluate", learned)
	if xp != 0 || words != nil {
		t.Errorf("second pass = (%d, %v), want (0, nil)", xp, words)
	}
}
