package moveparse

import "regexp"

// Spoken-word lookup tables. All tables are initialised at package load and
// never mutated afterwards, so Normalize can be called concurrently without
// coordination.

// numberWords maps spoken rank words (including common STT homophones) to
// their digit string.
var numberWords = map[string]string{
	"zero": "0", "oh": "0", "owe": "0",
	"one": "1", "won": "1",
	"two": "2", "too": "2", "to": "2", "tu": "2",
	"three": "3", "tree": "3", "free": "3",
	"four": "4", "for": "4", "fore": "4",
	"five": "5", "fife": "5",
	"six":   "6",
	"seven": "7",
	"eight": "8", "ate": "8", "ait": "8",
}

// letterWords maps spoken file words to their file letter.
var letterWords = map[string]string{
	"a": "a", "ay": "a", "hey": "a",
	"b": "b", "bee": "b", "be": "b",
	"c": "c", "cee": "c", "see": "c", "sea": "c",
	"d": "d", "dee": "d",
	"e": "e", "ee": "e", "eee": "e",
	"f": "f", "ef": "f", "eff": "f",
	"g": "g", "gee": "g", "jee": "g",
	"h": "h", "aitch": "h", "etch": "h", "edge": "h",
}

// pieceWords maps spoken piece names to their SAN letter. Pawns map to the
// empty string because SAN pawn moves carry no piece letter.
var pieceWords = map[string]string{
	"pawn": "", "prawn": "",
	"knight": "N", "night": "N", "nite": "N",
	"bishop": "B", "biship": "B", "beshop": "B", "bshop": "B",
	"rook": "R", "rock": "R", "ruke": "R",
	"queen": "Q", "quin": "Q",
	"king": "K", "keying": "K",
}

// actionWords are spoken capture indicators; every entry maps to "x".
var actionWords = map[string]struct{}{
	"take": {}, "takes": {}, "taking": {}, "takesu": {},
	"capture": {}, "captures": {}, "captured": {}, "capturing": {},
	"by": {}, "x": {}, "ex": {},
}

// checkWords maps spoken check/mate indicators to their SAN suffix.
var checkWords = map[string]string{
	"check": "+", "plus": "+",
	"checkmate": "#", "mate": "#", "hashtag": "#", "pound": "#",
}

// promotionPieces maps spoken promotion targets to their SAN letter.
var promotionPieces = map[string]string{
	"queen": "Q", "q": "Q",
	"rook": "R", "r": "R",
	"bishop": "B", "b": "B",
	"knight": "N", "night": "N", "n": "N",
}

// promotionCues are words that announce a promotion before the piece is named.
var promotionCues = map[string]struct{}{
	"promote": {}, "promotion": {}, "promotes": {}, "promoted": {},
	"equals": {}, "equal": {}, "=": {}, "becomes": {},
}

// fillerWords are dropped from the token stream before any other mapping.
var fillerWords = map[string]struct{}{
	"to": {}, "into": {}, "towards": {}, "toward": {}, "on": {}, "and": {},
	"then": {}, "than": {}, "the": {}, "a": {}, "an": {}, "move": {},
	"my": {}, "your": {}, "their": {}, "this": {}, "that": {}, "with": {},
	"from": {}, "at": {}, "is": {}, "was": {}, "are": {}, "please": {},
	"just": {},
}

// shopVariants are STT renderings of the "-shop" tail of "bishop" when the
// word is split in two ("b shop", "be sharp", ...).
var shopVariants = map[string]struct{}{
	"shop": {}, "shup": {}, "sharp": {}, "shock": {}, "soup": {}, "sop": {}, "sub": {},
}

// sideVariants are STT renderings of "side" in "king side" / "queen side".
var sideVariants = map[string]struct{}{
	"side": {}, "sigh": {}, "sign": {},
}

// Move-string grammars. Each is anchored and matched against the full input,
// never a substring.
var (
	// sanMoveRe is the strict SAN grammar: optional piece letter, optional
	// disambiguating file/rank, optional capture marker, mandatory destination
	// square, optional promotion suffix, optional check/mate marker.
	sanMoveRe = regexp.MustCompile(`(?i)^(?:[KQRBN]?[a-h]?[1-8]?x?[a-h][1-8](?:=[QRBN])?[+#]?|[a-h][1-8](?:=[QRBN])?[+#]?)$`)

	// castleSanRe matches castling as runs of 'O'/'0' with optional dashes and
	// an optional trailing check/mate marker.
	castleSanRe = regexp.MustCompile(`(?i)^(?:[O0](?:-?[O0])(?:-?[O0])?)[+#]?$`)

	// uciMoveRe is coordinate notation: origin square, destination square,
	// optional promotion letter.
	uciMoveRe = regexp.MustCompile(`(?i)^[a-h][1-8][a-h][1-8][qrbn]?$`)

	// squareRe matches a single board square token.
	squareRe = regexp.MustCompile(`(?i)^[a-h][1-8]$`)

	// pieceLetterRe matches a bare lowercase piece letter token.
	pieceLetterRe = regexp.MustCompile(`^[nbrqk]$`)
)

// phraseRule is one ordered pattern→replacement rewrite applied to cleaned
// text. Detail is the trace detail recorded when the rule fires.
type phraseRule struct {
	re          *regexp.Regexp
	replacement string
	detail      string
}

// multiwordRules repair piece names that STT split or misheard. Applied in
// order; hyphens have already been replaced by spaces when these run.
var multiwordRules = []phraseRule{
	{regexp.MustCompile(`\bb\s*shop\b`), "bishop", "b shop -> bishop"},
	{regexp.MustCompile(`\bbe\s*shop\b`), "bishop", "be shop -> bishop"},
	{regexp.MustCompile(`\bbee\s*shop\b`), "bishop", "bee shop -> bishop"},
	{regexp.MustCompile(`\bb\s+sharp\b`), "bishop", "b sharp -> bishop"},
	{regexp.MustCompile(`\bbsop\b`), "bishop", "bsop -> bishop"},
	{regexp.MustCompile(`\bb\s+soup\b`), "bishop", "b soup -> bishop"},
	{regexp.MustCompile(`\bb\s+sub\b`), "bishop", "b sub -> bishop"},
	{regexp.MustCompile(`\beshop\b`), "bishop", "eshop -> bishop"},
	{regexp.MustCompile(`\bknite\b`), "knight", "knite -> knight"},
	{regexp.MustCompile(`\bnite\b`), "knight", "nite -> knight"},
	{regexp.MustCompile(`\bnight\b`), "knight", "night -> knight"},
	{regexp.MustCompile(`\brock\b`), "rook", "rock -> rook"},
	{regexp.MustCompile(`\bquin\b`), "queen", "quin -> queen"},
}

// castlingRules rewrite spoken castling phrases into bare "o" runs that the
// merger later fuses into castle glyphs. The bare "castle" rule must stay
// last so the more specific phrases win.
var castlingRules = []phraseRule{
	{regexp.MustCompile(`\bcastle\s+(?:king|short)\s*(?:side)?\b`), "o o", "castle king-side"},
	{regexp.MustCompile(`\bcastle\s+(?:queen|long)\s*(?:side)?\b`), "o o o", "castle queen-side"},
	{regexp.MustCompile(`\bking\s+castle\b`), "o o", "king castle"},
	{regexp.MustCompile(`\bqueen\s+castle\b`), "o o o", "queen castle"},
	{regexp.MustCompile(`\bshort\s+castle\b`), "o o", "short castle"},
	{regexp.MustCompile(`\blong\s+castle\b`), "o o o", "long castle"},
	{regexp.MustCompile(`\b(?:oh|zero)\s+o\s+o\b`), "o o", "spoken oh o o"},
	{regexp.MustCompile(`\b(?:oh|zero)\s+o\s+o\s+o\b`), "o o o", "spoken oh o o o"},
	{regexp.MustCompile(`\bcastle\b`), "o o", "castle alone"},
}

// fileLetters is the set of canonical file letter tokens ("a".."h").
var fileLetters = buildValueSet(letterWords)

// rankDigits is the set of canonical digit tokens produced by number-word
// mapping ("0".."8"; "0" feeds castle fusion, not squares).
var rankDigits = buildValueSet(numberWords)

func buildValueSet(m map[string]string) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for _, v := range m {
		set[v] = struct{}{}
	}
	return set
}
