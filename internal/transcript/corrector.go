// Package transcript repairs speech-to-text output before move normalization.
//
// STT models trained on general English regularly garble the chess lexicon:
// "knight" comes back as "knigh", "rook" as "ruk", "takes" as "taks". The
// [Corrector] aligns such words against the fixed spoken-chess vocabulary
// using pronunciation similarity, leaving everything it already recognizes
// untouched. It is an optional assist stage; the normalizer downstream copes
// with clean homophones on its own.
package transcript

import (
	"regexp"
	"strings"
)

// Correction records a single word substitution made by the corrector.
type Correction struct {
	// Original is the word as produced by the STT provider.
	Original string

	// Corrected is the vocabulary word chosen as the replacement.
	Corrected string

	// Confidence is the similarity score of the match (0.0 to 1.0).
	Confidence float64
}

// PhoneticMatcher resolves a garbled word to the closest vocabulary entry by
// pronunciation similarity. When matched is false, corrected must equal word
// unchanged and confidence must be 0.
//
// Implementations must be safe for concurrent use.
type PhoneticMatcher interface {
	Match(word string, vocab []string) (corrected string, confidence float64, matched bool)
}

// verbatimRe matches tokens that must never be "repaired": squares, bare
// files and digits, coordinate moves, and castle glyphs.
var verbatimRe = regexp.MustCompile(`(?i)^(?:[a-h][1-8]|[a-h]|[0-9]+|[a-h][1-8][a-h][1-8][nbrq]?|o-o(?:-o)?|0-0(?:-0)?|[+#=])$`)

// Option is a functional option for configuring a Corrector.
type Option func(*Corrector)

// WithVocabulary replaces the default vocabulary.
func WithVocabulary(vocab []string) Option {
	return func(c *Corrector) { c.setVocab(vocab) }
}

// Corrector is the transcript repair stage. Read-only after construction and
// safe for concurrent use.
type Corrector struct {
	matcher PhoneticMatcher
	vocab   []string
	known   map[string]struct{}
}

// NewCorrector builds a Corrector over the given matcher and vocabulary.
func NewCorrector(matcher PhoneticMatcher, vocab []string, opts ...Option) *Corrector {
	c := &Corrector{matcher: matcher}
	c.setVocab(vocab)
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Corrector) setVocab(vocab []string) {
	c.vocab = append([]string(nil), vocab...)
	c.known = make(map[string]struct{}, len(vocab))
	for _, w := range c.vocab {
		c.known[strings.ToLower(w)] = struct{}{}
	}
}

// Assist returns text with unrecognized words replaced by their closest
// vocabulary match, plus the list of substitutions made. Words the vocabulary
// already contains and chess notation tokens pass through unchanged. The
// corrections slice is non-nil even when empty.
func (c *Corrector) Assist(text string) (string, []Correction) {
	corrections := []Correction{}
	tokens := strings.Fields(text)
	if len(tokens) == 0 || c.matcher == nil || len(c.vocab) == 0 {
		return text, corrections
	}

	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		lower := strings.ToLower(token)
		if _, ok := c.known[lower]; ok || verbatimRe.MatchString(lower) {
			out = append(out, token)
			continue
		}

		repaired, conf, matched := c.matcher.Match(lower, c.vocab)
		if !matched {
			out = append(out, token)
			continue
		}
		out = append(out, repaired)
		corrections = append(corrections, Correction{
			Original:   token,
			Corrected:  repaired,
			Confidence: conf,
		})
	}

	return strings.Join(out, " "), corrections
}
