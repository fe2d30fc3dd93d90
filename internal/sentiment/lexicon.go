package sentiment

import (
	"context"
	"strings"
	"unicode"
)

var defaultLexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1, "amazing": 0.6, "awesome": 1,
	"best": 1, "better": 0.5, "love": 0.5, "like": 0.2, "happy": 0.8,
	"win": 0.8, "winning": 0.5, "profit": 0.6, "gain": 0.5, "gains": 0.5,
	"bull": 0.6, "bullish": 0.7, "moon": 0.5, "pump": 0.4, "rally": 0.6,
	"surge": 0.6, "breakout": 0.6, "strong": 0.4, "up": 0.2, "buy": 0.3,
	"recover": 0.4, "recovery": 0.4, "adoption": 0.4, "growth": 0.5, "hodl": 0.3,
	"safe": 0.5, "easy": 0.4, "nice": 0.6, "wow": 0.1, "free": 0.4,
	"bad": -0.7, "worst": -1, "terrible": -1, "awful": -1, "hate": -0.8,
	"sad": -0.5, "loss": -0.5, "losses": -0.5, "lose": -0.5, "losing": -0.5,
	"bear": -0.6, "bearish": -0.7, "dump": -0.5, "crash": -0.7, "scam": -0.8,
	"fraud": -0.8, "hack": -0.6, "hacked": -0.7, "down": -0.2, "sell": -0.3,
	"fear": -0.6, "panic": -0.7, "weak": -0.4, "risk": -0.3, "risky": -0.5,
	"ban": -0.5, "lawsuit": -0.5, "decline": -0.5, "liquidation": -0.6, "rekt": -0.7,
	"fail": -0.6, "failed": -0.6, "broke": -0.5, "dead": -0.6, "rug": -0.7,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "super": 1.3, "so": 1.2,
	"totally": 1.3, "absolutely": 1.5, "incredibly": 1.5, "slightly": 0.5, "somewhat": 0.7,
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nor": {}, "cannot": {},
	"isn't": {}, "aren't": {}, "wasn't": {}, "don't": {}, "doesn't": {}, "didn't": {}, "won't": {}, "can't": {},
}

const negationFactor = -0.5

// LexiconClassifier scores text by averaging the polarity of the lexicon
// words it contains. A negation flips and halves the next scored word; an
// intensifier scales it. Text without lexicon words scores 0.
type LexiconClassifier struct {
	lexicon map[string]float64
}

func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{lexicon: defaultLexicon}
}

func (c *LexiconClassifier) Polarity(_ context.Context, texts []string) ([]float64, error) {
	out := make([]float64, len(texts))
	for i, text := range texts {
		out[i] = c.Score(text)
	}
	return out, nil
}

func (c *LexiconClassifier) Score(text string) float64 {
	tokens := tokenize(text)

	var sum float64
	var scored int
	modifier := 1.0
	negated := false
	for _, tok := range tokens {
		if _, ok := negations[tok]; ok {
			negated = true
			continue
		}
		if f, ok := intensifiers[tok]; ok {
			modifier *= f
			continue
		}
		v, ok := c.lexicon[tok]
		if !ok {
			modifier = 1
			negated = false
			continue
		}
		v *= modifier
		if negated {
			v *= negationFactor
		}
		sum += clamp(v, -1, 1)
		scored++
		modifier = 1
		negated = false
	}
	if scored == 0 {
		return 0
	}
	return clamp(sum/float64(scored), -1, 1)
}

func tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
