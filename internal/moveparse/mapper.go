package moveparse

// mapTokens rewrites raw tokens into move vocabulary. Rules are tried in a
// fixed order per token; the first that applies wins and decides how many
// tokens it consumes. Unmatched tokens pass through unchanged.
func mapTokens(tokens []string, tr *trace) []string {
	mapped := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); {
		token := tokens[i]

		if _, ok := fillerWords[token]; ok {
			tr.add("filler", token)
			i++
			continue
		}

		if _, ok := promotionCues[token]; ok {
			// Scan to the end of input for the promotion piece; everything
			// between the cue and the piece is consumed.
			promoted := false
			for j := i + 1; j < len(tokens); j++ {
				letter, ok := promotionLetter(tokens[j])
				if !ok {
					continue
				}
				mapped = append(mapped, "="+letter)
				tr.add("promotion", "="+letter)
				i = j + 1
				promoted = true
				break
			}
			if promoted {
				continue
			}
			mapped = append(mapped, "=")
			tr.add("promotion-cue", token)
			i++
			continue
		}

		if sym, ok := checkWords[token]; ok {
			mapped = append(mapped, sym)
			tr.addf("check-word", "%s -> %s", token, sym)
			i++
			continue
		}

		if _, ok := actionWords[token]; ok {
			mapped = append(mapped, "x")
			tr.add("action-word", token)
			i++
			continue
		}

		if (token == "b" || token == "be" || token == "bee") && i+1 < len(tokens) {
			if _, ok := shopVariants[tokens[i+1]]; ok {
				mapped = append(mapped, "B")
				tr.addf("bishop-compound", "%s %s", token, tokens[i+1])
				i += 2
				continue
			}
		}

		if (token == "king" || token == "queen") && i+1 < len(tokens) {
			if _, ok := sideVariants[tokens[i+1]]; ok {
				mapped = append(mapped, token+"side")
				tr.add("side-compound", token)
				i += 2
				continue
			}
		}

		if glyph, ok := castleWord(token); ok {
			mapped = append(mapped, glyph)
			tr.addf("castle-word", "%s -> %s", token, glyph)
			i++
			continue
		}

		if letter, ok := pieceWords[token]; ok {
			if letter == "" {
				tr.addf("pawn-word", "%s dropped", token)
			} else {
				mapped = append(mapped, letter)
				tr.addf("piece-word", "%s -> %s", token, letter)
			}
			i++
			continue
		}

		if digit, ok := numberWords[token]; ok {
			mapped = append(mapped, digit)
			tr.addf("number-word", "%s -> %s", token, digit)
			i++
			continue
		}

		if letter, ok := letterWords[token]; ok {
			mapped = append(mapped, letter)
			tr.addf("letter-word", "%s -> %s", token, letter)
			i++
			continue
		}

		mapped = append(mapped, token)
		i++
	}
	return mapped
}

// promotionLetter resolves the piece named after a promotion cue. Promotion
// vocabulary is tried first, then any non-pawn piece word.
func promotionLetter(token string) (string, bool) {
	if letter, ok := promotionPieces[token]; ok {
		return letter, true
	}
	if letter, ok := pieceWords[token]; ok && letter != "" {
		return letter, true
	}
	return "", false
}

// castleWord maps single spoken castle tokens to their glyph. The side
// compounds emitted by mapTokens are resolved here on the merge pass as well.
func castleWord(token string) (string, bool) {
	switch token {
	case "kingside", "shortside":
		return "O-O", true
	case "queenside", "longside":
		return "O-O-O", true
	}
	return "", false
}
