package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/voxmate/voxmate/internal/game"
	"github.com/voxmate/voxmate/pkg/provider/llm"
)

var questionTypes = []string{"checks", "captures", "where", "what"}

var quizPieces = []string{"king", "queen", "rook", "bishop", "knight"}

// askQuestion generates a new quiz question, stores the expected answer and
// returns the question to the player. Color and question type default to
// random picks unless the request names them.
func (a *Assistant) askQuestion(message string, g *game.Game) string {
	color := ""
	if strings.Contains(message, "white") {
		color = "white"
	} else if strings.Contains(message, "black") {
		color = "black"
	}
	if color == "" {
		color = []string{"white", "black"}[a.rnd.Intn(2)]
	}

	qtype := ""
	for _, t := range questionTypes {
		if strings.Contains(message, t) {
			qtype = t
			break
		}
	}
	if qtype == "" {
		qtype = questionTypes[a.rnd.Intn(len(questionTypes))]
	}

	question, answer := a.generate(qtype, color, g)
	a.pending = &pendingTest{question: question, answer: answer}
	return "TEST QUESTION: " + question
}

func (a *Assistant) generate(qtype, color string, g *game.Game) (string, string) {
	switch qtype {
	case "checks":
		// Answered for the side to move, the color only flavors the wording.
		checks := g.Checks()
		question := fmt.Sprintf("How many checks has %s now?", color)
		answer := fmt.Sprintf("%d checks: %s", len(checks), strings.Join(checks, ", "))
		return question, answer

	case "captures":
		captures := g.Captures()
		question := fmt.Sprintf("How many captures has %s now?", color)
		answer := fmt.Sprintf("%d captures: %s", len(captures), strings.Join(captures, ", "))
		return question, answer

	case "where":
		piece := quizPieces[a.rnd.Intn(len(quizPieces))]
		squares := g.SquaresOf(colorOf(color), pieceTypeOf(piece))

		var question string
		if piece == "king" || piece == "queen" {
			question = fmt.Sprintf("Where is the %s %s?", color, piece)
		} else {
			question = fmt.Sprintf("Where is one of the %s %ss?", color, piece)
		}

		var answer string
		switch len(squares) {
		case 0:
			answer = fmt.Sprintf("There is no %s %s", color, piece)
		case 1:
			answer = squares[0]
		default:
			answer = strings.Join(squares, ", ")
		}
		return question, answer

	default: // "what"
		square := string(rune('a'+a.rnd.Intn(8))) + string(rune('1'+a.rnd.Intn(8)))
		question := fmt.Sprintf("What piece is on %s now?", square)
		answer, err := g.PieceAt(square)
		if err != nil {
			answer = "empty"
		}
		return question, answer
	}
}

// gradeAnswer evaluates the player's reply to the pending question. An LLM
// grader gets the original question and expected answer as context; without
// one, or when the grader fails, a normalized string comparison decides.
func (a *Assistant) gradeAnswer(ctx context.Context, message string) string {
	pending := a.pending
	a.pending = nil

	verdict := ""
	if a.grader != nil {
		if v, err := a.gradeWithLLM(ctx, pending, message); err == nil {
			verdict = v
		}
	}
	if verdict == "" {
		if answersMatch(message, pending.answer) {
			verdict = "Correct"
		} else {
			verdict = "Incorrect"
		}
	}
	return fmt.Sprintf("%s\n (Correct answer: %s)", verdict, pending.answer)
}

func (a *Assistant) gradeWithLLM(ctx context.Context, pending *pendingTest, message string) (string, error) {
	systemPrompt := fmt.Sprintf(`You are a helpful chess training assistant and you need to evaluate the user's answer to the test question.

The question is: %s

The correct answer is: %s

Answer very briefly and directly: Correct/Incorrect`, pending.question, pending.answer)

	resp, err := a.grader.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "User's answer: " + message},
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// answersMatch compares the player's free text against the expected answer
// after stripping case and punctuation. Either side containing the other
// counts, so "3" matches "3 checks: Qh5+" and "e1" matches "e1".
func answersMatch(got, want string) bool {
	g, w := canon(got), canon(want)
	if g == "" || w == "" {
		return false
	}
	return strings.Contains(w, g) || strings.Contains(g, w)
}

func canon(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func colorOf(name string) chess.Color {
	if name == "white" {
		return chess.White
	}
	return chess.Black
}

func pieceTypeOf(name string) chess.PieceType {
	switch name {
	case "king":
		return chess.King
	case "queen":
		return chess.Queen
	case "rook":
		return chess.Rook
	case "bishop":
		return chess.Bishop
	case "knight":
		return chess.Knight
	default:
		return chess.Pawn
	}
}
