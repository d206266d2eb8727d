package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer applies a compiled rule set to raw transcripts.
type Normalizer struct {
	rules *RuleSet
	upper cases.Caser
}

// New builds a normalizer over an already-compiled rule set.
func New(rules *RuleSet) *Normalizer {
	return &Normalizer{
		rules: rules,
		upper: cases.Upper(language.AmericanEnglish),
	}
}

// NewDefault builds a normalizer over the embedded rule set.
func NewDefault() (*Normalizer, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	return New(rules), nil
}

// NoiseToken returns the token annotation rules rewrite non-speech noises to.
func (n *Normalizer) NoiseToken() string {
	return n.rules.NoiseToken
}

// Normalize rewrites one raw transcript into LM-ready form: NFKC fold,
// uppercase, the ordered rule rewrites, then whitespace collapse. An empty
// result means the supervision carried no usable speech and should be
// dropped by the caller.
func (n *Normalizer) Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = n.upper.String(text)
	for i := range n.rules.Rules {
		rule := &n.rules.Rules[i]
		text = rule.compiled.ReplaceAllString(text, rule.replace)
	}
	return strings.Join(strings.Fields(text), " ")
}
