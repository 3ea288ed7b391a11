// Package phonetic implements the [transcript.PhoneticMatcher] interface with
// Double Metaphone codes for candidate filtering and Jaro-Winkler similarity
// for ranking.
//
// A word first gathers every vocabulary entry that shares a Double Metaphone
// code with it ("knigh" and "knight" both encode to NT). Among those
// candidates the highest Jaro-Winkler score wins, provided it clears the
// phonetic threshold. When nothing overlaps phonetically, a second pass
// accepts a pure string-similarity match against a stricter fuzzy threshold,
// which catches misspellings that change the consonant skeleton ("rok" for
// "rook").
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score for accepting a
// phonetically-overlapping candidate. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) { m.phoneticThreshold = threshold }
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score for the fallback
// pass when no candidate overlaps phonetically. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) { m.fuzzyThreshold = threshold }
}

// Matcher ranks vocabulary words by pronunciation similarity. Read-only after
// construction and safe for concurrent use.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New returns a Matcher with the supplied options applied.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match finds the vocabulary word most phonetically similar to word. When
// matched is false, corrected equals word unchanged and confidence is 0.
func (m *Matcher) Match(word string, vocab []string) (corrected string, confidence float64, matched bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || len(vocab) == 0 {
		return word, 0, false
	}

	wordCodes := metaphoneCodes(word)

	var (
		bestWord     string
		bestScore    float64
		bestPhonetic bool
	)

	for _, entry := range vocab {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}

		score := matchr.JaroWinkler(word, entry, false)
		phonetic := codesOverlap(wordCodes, metaphoneCodes(entry))

		switch {
		case phonetic && score >= m.phoneticThreshold:
			if !bestPhonetic || score > bestScore {
				bestWord, bestScore, bestPhonetic = entry, score, true
			}
		case !phonetic && !bestPhonetic:
			if score >= m.fuzzyThreshold && score > bestScore {
				bestWord, bestScore = entry, score
			}
		}
	}

	if bestWord == "" {
		return word, 0, false
	}
	return bestWord, bestScore, true
}

// metaphoneCodes returns the non-empty Double Metaphone codes for a word.
func metaphoneCodes(word string) map[string]struct{} {
	codes := make(map[string]struct{}, 2)
	primary, secondary := matchr.DoubleMetaphone(word)
	if primary != "" {
		codes[primary] = struct{}{}
	}
	if secondary != "" {
		codes[secondary] = struct{}{}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
