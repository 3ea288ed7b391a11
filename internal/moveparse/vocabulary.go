package moveparse

import "sort"

// Vocabulary returns every spoken word the normalizer recognizes on its own,
// deduplicated and sorted. Upstream transcript repair uses it as the target
// lexicon when aligning garbled speech-to-text output, so a repaired word is
// always one the token mapper can resolve.
func Vocabulary() []string {
	seen := make(map[string]struct{}, 128)
	add := func(word string) {
		if word != "" {
			seen[word] = struct{}{}
		}
	}

	for w := range numberWords {
		add(w)
	}
	for w := range letterWords {
		add(w)
	}
	for w := range pieceWords {
		add(w)
	}
	for w := range actionWords {
		add(w)
	}
	for w := range checkWords {
		add(w)
	}
	for w := range promotionPieces {
		add(w)
	}
	for w := range promotionCues {
		add(w)
	}
	for w := range shopVariants {
		add(w)
	}
	for w := range sideVariants {
		add(w)
	}
	// Fillers belong in the lexicon too so transcript repair never rewrites
	// a word the tokenizer would simply drop.
	for w := range fillerWords {
		add(w)
	}
	for _, w := range []string{"castle", "kingside", "queenside", "shortside", "longside", "side", "short", "long"} {
		add(w)
	}

	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
