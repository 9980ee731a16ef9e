package sentiment

// Headline polarity lexicon. Valences roughly follow VADER's -4..+4
// scale, tilted toward financial news vocabulary.
var lexicon = map[string]float64{
	// positive
	"launch":        2.1,
	"launches":      2.1,
	"new":           1.8,
	"beats":         2.4,
	"beat":          2.4,
	"record":        1.9,
	"surge":         2.8,
	"surges":        2.8,
	"soars":         2.8,
	"soar":          2.8,
	"rally":         2.2,
	"rallies":       2.2,
	"profit":        1.7,
	"profits":       1.7,
	"growth":        1.8,
	"grows":         1.6,
	"upgrade":       2.3,
	"upgraded":      2.3,
	"upgrades":      2.3,
	"breakthrough":  2.7,
	"strong":        1.6,
	"gains":         1.9,
	"gain":          1.9,
	"wins":          2.0,
	"win":           2.0,
	"approves":      2.1,
	"approval":      2.1,
	"approved":      2.1,
	"partnership":   1.5,
	"expands":       1.6,
	"expansion":     1.6,
	"jumps":         2.2,
	"jump":          2.2,
	"tops":          2.0,
	"raises":        1.6,
	"buyback":       1.8,
	"dividend":      1.2,
	"innovative":    1.9,
	"bullish":       2.5,
	"outperforms":   2.2,
	"success":       2.0,
	"successful":    2.0,
	"great":         1.9,
	"wonderful":     2.3,
	"good":          1.5,

	// negative
	"miss":          -2.2,
	"misses":        -2.2,
	"missed":        -2.2,
	"plunge":        -2.9,
	"plunges":       -2.9,
	"plummets":      -2.9,
	"falls":         -1.8,
	"fall":          -1.8,
	"drops":         -1.8,
	"drop":          -1.8,
	"cuts":          -1.6,
	"cut":           -1.6,
	"lawsuit":       -2.3,
	"sued":          -2.3,
	"probe":         -2.1,
	"investigation": -2.1,
	"recall":        -2.4,
	"recalls":       -2.4,
	"downgrade":     -2.3,
	"downgraded":    -2.3,
	"downgrades":    -2.3,
	"weak":          -1.7,
	"loss":          -2.0,
	"losses":        -2.0,
	"layoffs":       -2.4,
	"bankruptcy":    -3.2,
	"fraud":         -3.0,
	"crash":         -3.0,
	"crashes":       -3.0,
	"warns":         -1.9,
	"warning":       -1.9,
	"slump":         -2.4,
	"slumps":        -2.4,
	"bearish":       -2.5,
	"fears":         -1.9,
	"delay":         -1.5,
	"delays":        -1.5,
	"halted":        -1.8,
	"sinks":         -2.6,
	"tumbles":       -2.6,
	"scandal":       -2.8,
	"fined":         -2.0,
	"shortfall":     -2.1,
	"fails":         -2.0,
	"terrible":      -2.5,
	"awful":         -2.6,
	"bad":           -1.7,
}

// Degree modifiers nudge the following lexicon hit toward its sign.
var boosters = map[string]float64{
	"very":          0.293,
	"extremely":     0.293,
	"hugely":        0.293,
	"massively":     0.293,
	"sharply":       0.293,
	"significantly": 0.293,
	"slightly":      -0.293,
	"somewhat":      -0.293,
}

// Negators flip the valence of a hit within two tokens.
var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"isnt":    true,
	"wasnt":   true,
	"wont":    true,
	"cannot":  true,
	"cant":    true,
	"doesnt":  true,
	"didnt":   true,
	"without": true,
}
