package sentiment

import (
	"math"
	"strings"
	"unicode"
)

type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Result is the signed score in [-1, 1] plus its threshold classification.
type Result struct {
	Score     float64   `json:"score"`
	Direction Direction `json:"direction"`
}

// Scorer is a deterministic lexicon scorer: word-polarity sums with
// negation and degree handling, normalized into [-1, 1]. Identical input
// always yields an identical score.
type Scorer struct {
	threshold float64
}

func NewScorer(threshold float64) *Scorer {
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Scorer{threshold: threshold}
}

func (s *Scorer) Threshold() float64 { return s.threshold }

// normalization constant, same role as VADER's alpha
const alpha = 15.0

func (s *Scorer) Score(text string) Result {
	tokens := tokenize(text)

	var sum float64
	for i, tok := range tokens {
		valence, ok := lexicon[tok]
		if !ok {
			continue
		}
		// degree modifier immediately before the hit
		if i > 0 {
			if boost, ok := boosters[tokens[i-1]]; ok {
				if valence > 0 {
					valence += boost
				} else {
					valence -= boost
				}
			}
		}
		// negation within the two preceding tokens
		for j := i - 1; j >= 0 && j >= i-2; j-- {
			if negators[tokens[j]] {
				valence *= -0.74
				break
			}
		}
		sum += valence
	}

	score := sum / math.Sqrt(sum*sum+alpha)
	// clamp against float drift at the extremes
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}

	direction := Neutral
	if math.Abs(score) >= s.threshold {
		if score > 0 {
			direction = Bullish
		} else {
			direction = Bearish
		}
	}
	return Result{Score: score, Direction: direction}
}

// tokenize lowercases and splits on anything that is not a letter or
// digit, dropping apostrophes first so "isn't" folds to "isnt".
func tokenize(text string) []string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "'", "")
	text = strings.ReplaceAll(text, "’", "")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
