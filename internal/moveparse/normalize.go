// Package moveparse turns raw speech transcripts into candidate chess move
// strings. The pipeline is pure and deterministic: direct notation matching
// on the raw text, lexical cleaning, token mapping, token merging and
// candidate generation, with every transformation recorded in an ordered
// rule trace.
package moveparse

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is one entry of the normalization trace: the rule that fired and an
// optional detail describing what it did.
type Rule struct {
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

func (r Rule) String() string {
	if r.Detail == "" {
		return r.Name
	}
	return r.Name + ": " + r.Detail
}

// Result carries every intermediate stage of a normalization run so callers
// can display or debug the full pipeline, not just the final candidates.
type Result struct {
	RawText          string   `json:"raw_text"`
	CleanedText      string   `json:"cleaned_text"`
	Tokens           []string `json:"tokens"`
	MergedTokens     []string `json:"merged_tokens"`
	Candidates       []string `json:"candidates"`
	DirectCandidates []string `json:"direct_candidates"`
	AppliedRules     []Rule   `json:"applied_rules"`
}

type trace []Rule

func (t *trace) add(name, detail string) {
	*t = append(*t, Rule{Name: name, Detail: detail})
}

func (t *trace) addf(name, format string, args ...any) {
	t.add(name, fmt.Sprintf(format, args...))
}

var (
	apostropheRe = regexp.MustCompile(`’`)
	stripRe      = regexp.MustCompile(`[^a-z0-9\s+#=]`)
	spaceRe      = regexp.MustCompile(`\s+`)
	tokenRe      = regexp.MustCompile(`(?i)O-O-O|O-O|[a-z0-9]+|[+#=]`)
)

// Normalize runs the full pipeline over one transcript. It never returns an
// error: unintelligible input simply yields no candidates, with the trace
// explaining how far the input got.
func Normalize(text string) Result {
	res := Result{
		RawText:          text,
		Tokens:           []string{},
		MergedTokens:     []string{},
		Candidates:       []string{},
		DirectCandidates: []string{},
	}
	tr := trace{}

	if strings.TrimSpace(text) == "" {
		tr.add("empty-input", "")
		res.AppliedRules = tr
		return res
	}

	res.DirectCandidates = matchDirect(text, &tr)

	res.CleanedText = clean(text, &tr)
	res.Tokens = tokenize(res.CleanedText)

	mapped := mapTokens(res.Tokens, &tr)
	res.MergedTokens = mergeTokens(mapped)
	generated := generateCandidates(res.MergedTokens, &tr)

	// Direct matches win ties: they keep first position in the combined,
	// deduplicated candidate list.
	res.Candidates = dedup(append(append([]string{}, res.DirectCandidates...), generated...))

	res.AppliedRules = tr
	return res
}

// clean lowercases the transcript and rewrites spoken phrases into token-
// friendly text: multiword piece repairs, castling phrases, then a final
// sweep that drops everything outside the token alphabet.
func clean(text string, tr *trace) string {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	cleaned = apostropheRe.ReplaceAllString(cleaned, "'")
	cleaned = strings.ReplaceAll(cleaned, "-", " ")

	for _, rule := range multiwordRules {
		if rule.re.MatchString(cleaned) {
			cleaned = rule.re.ReplaceAllString(cleaned, rule.replacement)
			tr.add("phrase", rule.detail)
		}
	}
	for _, rule := range castlingRules {
		if rule.re.MatchString(cleaned) {
			cleaned = rule.re.ReplaceAllString(cleaned, rule.replacement)
			tr.add("castle-phrase", rule.detail)
		}
	}

	cleaned = stripRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(spaceRe.ReplaceAllString(cleaned, " "))
	return cleaned
}

// tokenize splits cleaned text into alphanumeric runs, the standalone symbols
// "+", "#" and "=", and literal castle glyphs. Tokens are lowercased.
func tokenize(cleaned string) []string {
	raw := tokenRe.FindAllString(cleaned, -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		tokens = append(tokens, strings.ToLower(t))
	}
	return tokens
}
