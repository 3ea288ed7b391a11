package game

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Captures returns the SAN of every legal capturing move for the side to
// move, in move-generation order.
func (g *Game) Captures() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	pos := g.inner.Position()
	var sans []string
	for _, m := range pos.ValidMoves() {
		if m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant) {
			sans = append(sans, chess.AlgebraicNotation{}.Encode(pos, m))
		}
	}
	return sans
}

// Checks returns the SAN of every legal checking move for the side to move.
func (g *Game) Checks() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	pos := g.inner.Position()
	var sans []string
	for _, m := range pos.ValidMoves() {
		if m.HasTag(chess.Check) {
			sans = append(sans, chess.AlgebraicNotation{}.Encode(pos, m))
		}
	}
	return sans
}

// PieceAt describes the piece on the named square ("e4"), e.g.
// "white knight". Empty squares yield "empty". Unknown square names are an
// error.
func (g *Game) PieceAt(square string) (string, error) {
	sq, err := parseSquare(square)
	if err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	piece := g.inner.Position().Board().Piece(sq)
	if piece == chess.NoPiece {
		return "empty", nil
	}
	return describePiece(piece), nil
}

// SquaresOf returns the squares holding the given piece for the given color,
// e.g. SquaresOf(chess.White, chess.Knight) -> ["b1", "g1"]. Order follows
// square index (a1..h8).
func (g *Game) SquaresOf(color chess.Color, piece chess.PieceType) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	board := g.inner.Position().Board()
	var squares []string
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := board.Piece(sq)
		if p != chess.NoPiece && p.Color() == color && p.Type() == piece {
			squares = append(squares, sq.String())
		}
	}
	return squares
}

// parseSquare converts "e4" to a chess.Square.
func parseSquare(s string) (chess.Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return chess.NoSquare, fmt.Errorf("game: invalid square %q", s)
	}
	file := int(s[0] - 'a')
	rank := int(s[1] - '1')
	return chess.Square(rank*8 + file), nil
}

// describePiece renders a piece as "white knight" style prose.
func describePiece(p chess.Piece) string {
	color := "white"
	if p.Color() == chess.Black {
		color = "black"
	}
	var name string
	switch p.Type() {
	case chess.King:
		name = "king"
	case chess.Queen:
		name = "queen"
	case chess.Rook:
		name = "rook"
	case chess.Bishop:
		name = "bishop"
	case chess.Knight:
		name = "knight"
	case chess.Pawn:
		name = "pawn"
	default:
		name = "piece"
	}
	return color + " " + name
}
