// Package game wraps a single chess game and applies normalized move
// candidates to it. Candidate strings come from the speech pipeline in both
// SAN and coordinate form; the first candidate that parses into a legal move
// on the current position wins.
package game

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/notnil/chess"
)

// ErrNoLegalCandidate is returned by Apply when none of the candidate
// strings parse into a legal move on the current position.
var ErrNoLegalCandidate = errors.New("game: no candidate is a legal move")

// ErrGameOver is returned when a move is attempted after the game ended.
var ErrGameOver = errors.New("game: game is already over")

// Move describes one applied move in terms the session layer reports to the
// client.
type Move struct {
	// SAN is the move in standard algebraic notation, as played.
	SAN string

	// UCI is the same move in coordinate notation.
	UCI string

	// Capture is true when the move captured a piece.
	Capture bool

	// Check is true when the move gives check.
	Check bool
}

// Game is a mutable chess game. It is safe for concurrent use.
type Game struct {
	mu    sync.Mutex
	inner *chess.Game
	color chess.Color
}

// New starts a fresh game from the standard initial position. playerColor is
// the side the human plays.
func New(playerColor chess.Color) *Game {
	return &Game{
		inner: chess.NewGame(),
		color: playerColor,
	}
}

// PlayerColor returns the side the human plays.
func (g *Game) PlayerColor() chess.Color {
	return g.color
}

// FEN returns the current position in Forsyth-Edwards notation.
func (g *Game) FEN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Position().String()
}

// Turn returns the side to move.
func (g *Game) Turn() chess.Color {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Position().Turn()
}

// Position returns the current position.
func (g *Game) Position() *chess.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inner.Position()
}

// Apply tries each candidate in order and plays the first one that is a
// legal move. It accepts SAN ("Nf6", "O-O") and coordinate ("g8f6")
// candidates. Returns the applied move, or ErrNoLegalCandidate wrapped with
// the candidate list when nothing fits.
func (g *Game) Apply(candidates []string) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inner.Outcome() != chess.NoOutcome {
		return Move{}, ErrGameOver
	}

	for _, cand := range candidates {
		pre := g.inner.Position()
		move, err := decodeCandidate(pre, cand)
		if err != nil {
			continue
		}
		if err := g.inner.Move(move); err != nil {
			continue
		}
		return describeMove(pre, move), nil
	}

	return Move{}, fmt.Errorf("%w: tried %s", ErrNoLegalCandidate, strings.Join(candidates, ", "))
}

// ApplyMove plays an already-validated move, typically the engine's reply.
func (g *Game) ApplyMove(move *chess.Move) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inner.Outcome() != chess.NoOutcome {
		return Move{}, ErrGameOver
	}

	pre := g.inner.Position()
	if err := g.inner.Move(move); err != nil {
		return Move{}, fmt.Errorf("game: apply engine move %s: %w", move.String(), err)
	}
	return describeMove(pre, move), nil
}

// Over reports whether the game has ended, along with the result string
// ("1-0", "0-1", "1/2-1/2") and the method ("Checkmate", "Stalemate", ...).
func (g *Game) Over() (bool, string, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	outcome := g.inner.Outcome()
	if outcome == chess.NoOutcome {
		return false, "", ""
	}
	return true, outcome.String(), g.inner.Method().String()
}

// History returns all played moves in SAN order.
func (g *Game) History() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	moves := g.inner.Moves()
	positions := g.inner.Positions()
	sans := make([]string, 0, len(moves))
	for i, m := range moves {
		sans = append(sans, chess.AlgebraicNotation{}.Encode(positions[i], m))
	}
	return sans
}

// MoveCount returns the number of half-moves played.
func (g *Game) MoveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inner.Moves())
}

// PGN returns the game record in portable game notation.
func (g *Game) PGN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return strings.TrimSpace(g.inner.String())
}

// decodeCandidate parses one candidate against the position, SAN first and
// coordinate notation second.
func decodeCandidate(pos *chess.Position, cand string) (*chess.Move, error) {
	if move, err := (chess.AlgebraicNotation{}).Decode(pos, cand); err == nil {
		return move, nil
	}
	return chess.UCINotation{}.Decode(pos, cand)
}

// describeMove builds the reportable Move. pre is the position BEFORE the
// move was played; the SAN encoder needs it for disambiguation.
func describeMove(pre *chess.Position, move *chess.Move) Move {
	return Move{
		SAN:     chess.AlgebraicNotation{}.Encode(pre, move),
		UCI:     move.String(),
		Capture: move.HasTag(chess.Capture) || move.HasTag(chess.EnPassant),
		Check:   move.HasTag(chess.Check),
	}
}
