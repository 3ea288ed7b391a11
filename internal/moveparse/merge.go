package moveparse

import "strings"

// mergeTokens fuses mapped tokens into squares and castle glyphs. Two passes
// run back to back and both are idempotent, so the output is a fixed point:
// merging it again yields the same slice.
func mergeTokens(tokens []string) []string {
	return mergeSquares(fuseLetterDigits(tokens))
}

// fuseLetterDigits drops empty tokens, fuses "o" runs into castle glyphs,
// resolves side-compound tokens and joins file letters with the digit that
// follows them.
func fuseLetterDigits(tokens []string) []string {
	merged := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		token := tokens[i]
		switch {
		case token == "" || token == " ":
			i++
		case token == "o-o" || token == "o-o-o":
			merged = append(merged, strings.ToUpper(token))
			i++
		case (token == "o" || token == "0") && i+2 < len(tokens) && tokens[i+1] == "o" && tokens[i+2] == "o":
			merged = append(merged, "O-O-O")
			i += 3
		case (token == "o" || token == "0") && i+1 < len(tokens) && tokens[i+1] == "o":
			merged = append(merged, "O-O")
			i += 2
		case isFileLetter(token) && i+1 < len(tokens) && isRankDigit(tokens[i+1]):
			merged = append(merged, token+tokens[i+1])
			i += 2
		default:
			if glyph, ok := castleWord(token); ok {
				merged = append(merged, glyph)
			} else {
				merged = append(merged, token)
			}
			i++
		}
	}
	return merged
}

// mergeSquares is the second pass: uppercase any bare piece letter that
// survived mapping, and fuse file letters with square digits that the first
// pass left apart (as in "n", "f", "6").
func mergeSquares(tokens []string) []string {
	merged := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		token := tokens[i]
		switch {
		case pieceLetterRe.MatchString(token):
			merged = append(merged, strings.ToUpper(token))
			i++
		case isFileLetter(token) && i+1 < len(tokens) && isSquareDigit(tokens[i+1]):
			merged = append(merged, token+tokens[i+1])
			i += 2
		default:
			merged = append(merged, token)
			i++
		}
	}
	return merged
}

func isFileLetter(token string) bool {
	_, ok := fileLetters[token]
	return ok
}

// isRankDigit reports whether token is a single digit produced by number-word
// mapping, "0" included so castle fusion input survives.
func isRankDigit(token string) bool {
	_, ok := rankDigits[token]
	return ok
}

// isSquareDigit accepts only rank digits that form a legal square.
func isSquareDigit(token string) bool {
	return len(token) == 1 && token[0] >= '1' && token[0] <= '8'
}
