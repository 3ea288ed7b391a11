package server

import "strings"

var spokenPieces = map[byte]string{
	'N': "knight",
	'B': "bishop",
	'R': "rook",
	'Q': "queen",
	'K': "king",
}

// spokenMove renders a SAN move as a phrase suitable for speech synthesis,
// e.g. "Nxf7+" becomes "knight takes f7, check".
func spokenMove(san string) string {
	if san == "" {
		return ""
	}

	var suffix string
	switch {
	case strings.HasSuffix(san, "#"):
		san, suffix = strings.TrimSuffix(san, "#"), "checkmate"
	case strings.HasSuffix(san, "+"):
		san, suffix = strings.TrimSuffix(san, "+"), "check"
	}

	var words []string
	switch san {
	case "O-O", "0-0":
		words = []string{"castles kingside"}
	case "O-O-O", "0-0-0":
		words = []string{"castles queenside"}
	default:
		if eq := strings.IndexByte(san, '='); eq >= 0 && eq+1 < len(san) {
			promo := spokenPieces[san[eq+1]]
			san = san[:eq]
			words = spellBody(san)
			words = append(words, "promotes to "+promo)
		} else {
			words = spellBody(san)
		}
	}

	if suffix != "" {
		words = append(words, suffix)
	}
	return strings.Join(words, ", ")
}

// spellBody expands the piece letter and capture marker of a SAN move body
// (no suffixes, no promotion). "Nxf7" yields ["knight takes f7"].
func spellBody(san string) []string {
	var b strings.Builder
	rest := san
	if len(rest) > 0 {
		if name, ok := spokenPieces[rest[0]]; ok {
			b.WriteString(name)
			b.WriteByte(' ')
			rest = rest[1:]
		}
	}
	if x := strings.IndexByte(rest, 'x'); x >= 0 {
		if x > 0 {
			// Disambiguation such as the "b" in "Nbxd2" reads as its own word.
			b.WriteString(rest[:x])
			b.WriteByte(' ')
		}
		b.WriteString("takes ")
		rest = rest[x+1:]
	}
	b.WriteString(rest)
	return []string{strings.TrimSpace(b.String())}
}
