package sentiment

import (
	"math"
	"testing"
)

func TestScoreDirection(t *testing.T) {
	scorer := NewScorer(0.5)

	tests := []struct {
		name     string
		text     string
		want     Direction
		positive bool
	}{
		{
			name:     "strongly positive",
			text:     "Company beats estimates, shares surge on record profit",
			want:     Bullish,
			positive: true,
		},
		{
			name:     "strongly negative",
			text:     "This is terrible, awful, and bad news",
			want:     Bearish,
			positive: false,
		},
		{
			name: "no polarity words",
			text: "Company schedules annual shareholder meeting",
			want: Neutral,
		},
		{
			name: "empty headline",
			text: "",
			want: Neutral,
		},
		{
			name:     "negation flips polarity",
			text:     "Company did not win the contract",
			want:     Neutral, // single negated hit stays under threshold
			positive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scorer.Score(tt.text)
			if res.Direction != tt.want {
				t.Errorf("Score(%q).Direction = %v, want %v (score %.3f)", tt.text, res.Direction, tt.want, res.Score)
			}
			if res.Score > 1 || res.Score < -1 {
				t.Errorf("score out of range: %v", res.Score)
			}
			if tt.want != Neutral {
				if tt.positive && res.Score <= 0 {
					t.Errorf("expected positive score, got %v", res.Score)
				}
				if !tt.positive && res.Score >= 0 {
					t.Errorf("expected negative score, got %v", res.Score)
				}
			}
		})
	}
}

func TestScoreAppleChipHeadline(t *testing.T) {
	scorer := NewScorer(0.5)

	res := scorer.Score("Apple launches new AI chip for Macs")
	if res.Direction != Bullish {
		t.Fatalf("direction = %v, want bullish (score %.3f)", res.Direction, res.Score)
	}
	if math.Abs(res.Score-0.71) > 0.02 {
		t.Errorf("score = %.3f, want ~0.71", res.Score)
	}
}

func TestScoreDeterministic(t *testing.T) {
	scorer := NewScorer(0.5)
	text := "Shares plunge after earnings miss and layoffs"

	first := scorer.Score(text)
	for i := 0; i < 100; i++ {
		if got := scorer.Score(text); got != first {
			t.Fatalf("iteration %d: score %v != %v", i, got, first)
		}
	}
}

func TestScoreNegationInversion(t *testing.T) {
	scorer := NewScorer(0.2)

	plain := scorer.Score("Regulator approves the merger")
	if plain.Score <= 0 {
		t.Fatalf("plain approval should be positive, got %.3f", plain.Score)
	}
	inverted := scorer.Score("never a success for the product line")
	if inverted.Score >= 0 {
		t.Errorf("negated positive should flip negative, got %.3f", inverted.Score)
	}
}

func TestThresholdClassification(t *testing.T) {
	// a single mild hit lands between the two thresholds
	text := "Company announces dividend"

	loose := NewScorer(0.2).Score(text)
	strict := NewScorer(0.6).Score(text)

	if loose.Direction != Bullish {
		t.Errorf("loose threshold: direction = %v, want bullish (score %.3f)", loose.Direction, loose.Score)
	}
	if strict.Direction != Neutral {
		t.Errorf("strict threshold: direction = %v, want neutral (score %.3f)", strict.Direction, strict.Score)
	}
}
