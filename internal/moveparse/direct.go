package moveparse

import "strings"

var dashNormalizer = strings.NewReplacer("–", "-", "—", "-", "−", "-")

// matchDirect checks whether the raw transcript, with whitespace removed, is
// already a complete move in one of the supported grammars. Castling is
// tried first, then SAN, then coordinate notation; an input may satisfy more
// than one grammar and every match is collected. Duplicates are removed
// later by the assembler.
func matchDirect(text string, tr *trace) []string {
	compact := spaceRe.ReplaceAllString(strings.TrimSpace(text), "")
	compact = dashNormalizer.Replace(compact)

	candidates := []string{}
	if compact == "" {
		return candidates
	}

	if castleSanRe.MatchString(compact) {
		glyph := castleGlyph(compact)
		candidates = append(candidates, glyph)
		tr.addf("direct-castle", "%s -> %s", compact, glyph)
	}
	if sanMoveRe.MatchString(compact) {
		candidates = append(candidates, compact)
		tr.add("direct-san", compact)
		if first := compact[0]; strings.ContainsRune("KQRBN", rune(first)) {
			lowered := strings.ToLower(compact[:1]) + compact[1:]
			candidates = append(candidates, lowered)
			tr.addf("direct-san", "variant %s", lowered)
		}
	}
	if uciMoveRe.MatchString(compact) {
		lowered := strings.ToLower(compact)
		candidates = append(candidates, lowered)
		tr.add("direct-uci", lowered)
	}
	return dedup(candidates)
}

// castleGlyph canonicalizes any castleSanRe match to "O-O" or "O-O-O" by
// counting its 'O'/'0' glyphs.
func castleGlyph(compact string) string {
	count := strings.Count(strings.ToUpper(compact), "O") + strings.Count(compact, "0")
	if count >= 3 {
		return "O-O-O"
	}
	return "O-O"
}

// dedup removes duplicates while preserving first-seen order.
func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
