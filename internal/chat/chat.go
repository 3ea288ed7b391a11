// Package chat implements the trainer assistant the player talks to between
// moves. It answers board queries from memory training ("where is the white
// queen?", "what is on e4?"), produces game recaps, and runs a small quiz
// loop whose free-text answers can be graded by an LLM.
package chat

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"github.com/voxmate/voxmate/internal/game"
	"github.com/voxmate/voxmate/pkg/provider/llm"
)

var squareRe = regexp.MustCompile(`\b([a-h][1-8])\b`)

// Option is a functional option for configuring an Assistant.
type Option func(*Assistant)

// WithGrader sets the LLM provider used to grade quiz answers. Without one
// the assistant falls back to string comparison.
func WithGrader(p llm.Provider) Option {
	return func(a *Assistant) { a.grader = p }
}

// WithRand sets the random source used for quiz question selection. Tests
// pass a seeded source for deterministic questions.
func WithRand(r *rand.Rand) Option {
	return func(a *Assistant) { a.rnd = r }
}

// pendingTest is the quiz question awaiting the player's answer.
type pendingTest struct {
	question string
	answer   string
}

// Assistant handles one session's chat commands. Safe for concurrent use.
type Assistant struct {
	mu      sync.Mutex
	grader  llm.Provider
	rnd     *rand.Rand
	pending *pendingTest
}

// New creates an Assistant.
func New(opts ...Option) *Assistant {
	a := &Assistant{}
	for _, o := range opts {
		o(a)
	}
	if a.rnd == nil {
		a.rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return a
}

// Handle processes one chat message against the current game and returns the
// assistant's reply. Every input yields a reply, including unrecognized ones.
func (a *Assistant) Handle(ctx context.Context, message string, g *game.Game) string {
	message = strings.ToLower(strings.TrimSpace(message))

	a.mu.Lock()
	defer a.mu.Unlock()

	// A pending quiz question claims the next message, unless the player
	// asks for a fresh one.
	if a.pending != nil && message != "test" {
		if strings.Contains(message, "other") {
			return a.askQuestion(message, g)
		}
		return a.gradeAnswer(ctx, message)
	}

	switch {
	case message == "recap":
		return Recap(g)
	case strings.Contains(message, "test"):
		return a.askQuestion(message, g)
	case strings.Contains(message, "where"):
		return wherePiece(message, g)
	case strings.Contains(message, "what"):
		return whatOnSquare(message, g)
	default:
		return "I don't understand that command. Try 'where is the white queen?' or 'what is on e4?'"
	}
}

// Recap renders the move history as numbered pairs with a total count.
func Recap(g *game.Game) string {
	moves := g.History()
	if len(moves) == 0 {
		return "No moves have been made yet."
	}

	var b strings.Builder
	b.WriteString("Game recap:\n")
	for i, move := range moves {
		if i%2 == 0 {
			fmt.Fprintf(&b, "%d. %s", i/2+1, move)
		} else {
			fmt.Fprintf(&b, " %s\n", move)
		}
	}
	if len(moves)%2 == 1 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nTotal moves: %d", len(moves))
	return b.String()
}

// wherePiece answers "where is the <color> <piece>" queries.
func wherePiece(message string, g *game.Game) string {
	color := "black"
	if strings.Contains(message, "white") {
		color = "white"
	}
	piece := ""
	for _, name := range []string{"queen", "rook", "bishop", "knight", "pawn", "king"} {
		if strings.Contains(message, name) {
			piece = name
			break
		}
	}
	if piece == "" {
		return "Please name a piece (e.g., 'where is the white queen?')"
	}

	squares := g.SquaresOf(colorOf(color), pieceTypeOf(piece))
	switch len(squares) {
	case 0:
		return fmt.Sprintf("No %s %s on the board", color, piece)
	case 1:
		return squares[0]
	default:
		return strings.Join(squares, ", ")
	}
}

// whatOnSquare answers "what is on <square>" queries.
func whatOnSquare(message string, g *game.Game) string {
	match := squareRe.FindString(message)
	if match == "" {
		return "Please specify a square (e.g., 'what is on e4?')"
	}

	desc, err := g.PieceAt(match)
	if err != nil {
		return "Please specify a square (e.g., 'what is on e4?')"
	}
	if desc == "empty" {
		return fmt.Sprintf("Square %s is empty", match)
	}
	return fmt.Sprintf("There is a %s on %s", desc, match)
}
