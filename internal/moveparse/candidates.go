package moveparse

import "strings"

// generateCandidates assembles candidate move strings from merged tokens.
// Promotion tokens are spliced in after the last square, the concatenation
// becomes the base candidate, and case plus coordinate variants are added to
// cover both SAN and engine-style inputs downstream.
func generateCandidates(tokens []string, tr *trace) []string {
	if len(tokens) == 0 {
		return []string{}
	}

	formatted := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		formatted = append(formatted, formatToken(t))
	}

	promos := make([]string, 0, 1)
	rest := make([]string, 0, len(formatted))
	for _, t := range formatted {
		if strings.HasPrefix(t, "=") {
			promos = append(promos, t)
		} else {
			rest = append(rest, t)
		}
	}

	if len(promos) > 0 {
		rest = splicePromotions(rest, promos)
	}

	base := strings.Join(rest, "")
	candidates := []string{}
	add := func(v string) {
		if v == "" {
			return
		}
		for _, existing := range candidates {
			if existing == v {
				return
			}
		}
		candidates = append(candidates, v)
	}

	add(base)

	// Piece-letter SAN gets a lowercase twin so strict downstream parsers
	// that only accept one casing still find a match.
	if len(base) >= 2 && base[0] >= 'A' && base[0] <= 'Z' && base[0] != 'O' {
		add(strings.ToLower(base[:1]) + base[1:])
	}

	squares := make([]string, 0, 2)
	for _, t := range rest {
		if squareRe.MatchString(t) {
			squares = append(squares, strings.ToLower(t))
		}
	}
	if len(squares) >= 2 {
		suffix := ""
		for _, p := range promos {
			if len(p) == 2 {
				suffix = strings.ToLower(p[1:])
				break
			}
		}
		uci := squares[0] + squares[1] + suffix
		add(uci)
		tr.add("uci-candidate", uci)
	}

	if base != "" && base[0] >= 'a' && base[0] <= 'z' {
		add(strings.ToLower(base))
	}

	return candidates
}

// splicePromotions inserts promotion tokens immediately after the last
// square token, preserving their order; with no square present they are
// appended at the end.
func splicePromotions(rest, promos []string) []string {
	insertAt := -1
	for i, t := range rest {
		if squareRe.MatchString(t) {
			insertAt = i
		}
	}
	if insertAt < 0 {
		return append(rest, promos...)
	}
	out := make([]string, 0, len(rest)+len(promos))
	out = append(out, rest[:insertAt+1]...)
	out = append(out, promos...)
	out = append(out, rest[insertAt+1:]...)
	return out
}

// formatToken canonicalizes the case of a single merged token.
func formatToken(token string) string {
	switch token {
	case "O-O", "O-O-O", "+", "#", "x":
		return token
	}
	if strings.HasPrefix(token, "=") {
		return strings.ToUpper(token)
	}
	if squareRe.MatchString(token) {
		return strings.ToLower(token)
	}
	if pieceLetterRe.MatchString(strings.ToLower(token)) && len(token) == 1 {
		return strings.ToUpper(token)
	}
	return token
}
