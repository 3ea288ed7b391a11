package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/notnil/chess"

	"github.com/voxmate/voxmate/internal/archive"
	"github.com/voxmate/voxmate/internal/chat"
	"github.com/voxmate/voxmate/internal/game"
	"github.com/voxmate/voxmate/internal/moveparse"
)

// session holds the per-connection state: one game, one engine process, one
// chat coach. All handlers run on the connection's read loop goroutine, so
// no locking is needed here.
type session struct {
	srv  *Server
	conn *websocket.Conn
	log  *slog.Logger

	game   *game.Game
	engine Engine
	coach  *chat.Assistant
	elo    int

	startedAt   time.Time
	quizAsked   int
	quizCorrect int
}

func newSession(srv *Server, conn *websocket.Conn) *session {
	return &session{
		srv:  srv,
		conn: conn,
		log:  srv.log,
	}
}

// run drives the connection: it confirms the connection, then reads and
// dispatches client messages until the socket closes or ctx is cancelled.
func (s *session) run(ctx context.Context) {
	defer s.close(ctx)

	if err := s.send(ctx, connectedMsg{Type: "connected"}); err != nil {
		return
	}

	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, s.conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return
			}
			s.log.Debug("websocket read failed", "err", err)
			return
		}

		switch msg.Type {
		case "new_game":
			s.handleNewGame(ctx, msg)
		case "move":
			s.handleMove(ctx, msg)
		case "speech":
			s.handleSpeech(ctx, msg)
		case "chat":
			s.handleChat(ctx, msg)
		default:
			s.sendError(ctx, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

func (s *session) handleNewGame(ctx context.Context, msg clientMessage) {
	color := chess.White
	if strings.EqualFold(msg.Color, "black") {
		color = chess.Black
	}
	elo := msg.Elo
	if elo == 0 {
		elo = s.srv.engineElo()
	}

	// An unfinished game abandoned by starting a new one is still archived.
	if s.game != nil {
		if over, _, _ := s.game.Over(); !over {
			s.archiveGame(ctx, "", "")
		}
		s.srv.metrics.ActiveGames.Add(ctx, -1)
	}

	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			s.log.Warn("engine close failed", "err", err)
		}
		s.engine = nil
	}
	engine, err := s.srv.newEngine(elo)
	if err != nil {
		s.log.Error("engine start failed", "err", err, "elo", elo)
		s.sendError(ctx, "Failed to start the chess engine")
		return
	}
	s.engine = engine
	s.elo = elo
	s.game = game.New(color)
	s.coach = chat.New(chat.WithGrader(s.srv.grader))
	s.startedAt = time.Now()
	s.quizAsked = 0
	s.quizCorrect = 0
	s.srv.metrics.ActiveGames.Add(ctx, 1)

	s.log.Info("game started", "player_color", colorName(color), "engine_elo", elo)
	if err := s.send(ctx, gameStartedMsg{
		Type:        "game_started",
		FEN:         s.game.FEN(),
		PlayerColor: colorName(color),
		EngineElo:   elo,
	}); err != nil {
		return
	}

	// The engine opens when the human plays black.
	if color == chess.Black {
		s.engineMove(ctx)
	}
}

func (s *session) handleMove(ctx context.Context, msg clientMessage) {
	if s.game == nil {
		s.sendError(ctx, "No active game. Send new_game first.")
		return
	}

	applied, err := s.game.Apply([]string{msg.Move})
	if err != nil {
		if errors.Is(err, game.ErrGameOver) {
			s.sendError(ctx, "The game is already over")
			return
		}
		s.srv.metrics.MovesRejected.Add(ctx, 1)
		s.send(ctx, invalidMoveMsg{Type: "invalid_move", Message: fmt.Sprintf("Illegal move: %s", msg.Move)})
		return
	}
	s.srv.metrics.RecordMoveApplied(ctx, "typed")

	if err := s.sendPosition(ctx, applied); err != nil {
		return
	}
	if s.maybeFinish(ctx) {
		return
	}
	s.engineMove(ctx)
}

func (s *session) handleSpeech(ctx context.Context, msg clientMessage) {
	if s.game == nil {
		s.sendError(ctx, "No active game. Send new_game first.")
		return
	}
	if s.srv.stt == nil {
		s.sendError(ctx, "No speech provider is configured")
		return
	}

	wav, err := base64.StdEncoding.DecodeString(msg.Audio)
	if err != nil {
		s.sendError(ctx, "Invalid audio payload: not valid base64")
		return
	}

	start := time.Now()
	transcript, err := s.srv.stt.Transcribe(ctx, wav)
	s.srv.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.srv.metrics.RecordProviderError(ctx, "stt", "stt")
		s.log.Error("transcription failed", "err", err)
		s.sendError(ctx, "Could not transcribe the audio")
		return
	}
	s.srv.metrics.RecordProviderRequest(ctx, "stt", "stt", "ok")

	raw := transcript.Text
	corrected := raw
	if s.srv.corrector != nil {
		corrected, _ = s.srv.corrector.Assist(raw)
	}

	start = time.Now()
	res := moveparse.Normalize(corrected)
	s.srv.metrics.NormalizeDuration.Record(ctx, time.Since(start).Seconds())

	report := transcriptionMsg{
		Type:         "transcription",
		Text:         raw,
		Candidates:   res.Candidates,
		AppliedRules: res.AppliedRules,
	}
	if corrected != raw {
		report.Corrected = corrected
	}

	applied, err := s.game.Apply(res.Candidates)
	if err != nil {
		s.srv.metrics.MovesRejected.Add(ctx, 1)
		if sendErr := s.send(ctx, report); sendErr != nil {
			return
		}
		if errors.Is(err, game.ErrGameOver) {
			s.sendError(ctx, "The game is already over")
			return
		}
		s.send(ctx, invalidMoveMsg{
			Type:    "invalid_move",
			Message: fmt.Sprintf("Could not match %q to a legal move", raw),
		})
		return
	}
	s.srv.metrics.RecordMoveApplied(ctx, "speech")

	report.Move = applied.SAN
	if err := s.send(ctx, report); err != nil {
		return
	}
	if err := s.sendPosition(ctx, applied); err != nil {
		return
	}
	if s.maybeFinish(ctx) {
		return
	}
	s.engineMove(ctx)
}

func (s *session) handleChat(ctx context.Context, msg clientMessage) {
	if s.game == nil {
		s.sendError(ctx, "No active game. Send new_game first.")
		return
	}

	response := s.coach.Handle(ctx, msg.Message, s.game)

	// The coach reports quiz activity only through its phrasing.
	if strings.HasPrefix(response, "TEST QUESTION:") {
		s.quizAsked++
		s.srv.metrics.QuizQuestions.Add(ctx, 1)
	} else if strings.HasPrefix(response, "Correct\n") {
		s.quizCorrect++
	}

	s.send(ctx, chatResponseMsg{
		Type:        "chat_response",
		UserMessage: msg.Message,
		AIResponse:  response,
	})
}

// engineMove asks the engine for its reply, plays it, and announces it.
func (s *session) engineMove(ctx context.Context) {
	start := time.Now()
	best, err := s.engine.BestMove(s.game.Position())
	s.srv.metrics.EngineDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.log.Error("engine search failed", "err", err)
		s.sendError(ctx, "The engine failed to find a move")
		return
	}

	applied, err := s.game.ApplyMove(best)
	if err != nil {
		s.log.Error("engine move rejected", "move", best.String(), "err", err)
		s.sendError(ctx, "The engine produced an illegal move")
		return
	}
	s.srv.metrics.RecordMoveApplied(ctx, "engine")

	if err := s.sendPosition(ctx, applied); err != nil {
		return
	}
	s.speak(ctx, spokenMove(applied.SAN))
	s.maybeFinish(ctx)
}

// speak synthesizes text and pushes it to the client as an audio message.
// A missing TTS provider or a synthesis failure silently degrades to text.
func (s *session) speak(ctx context.Context, text string) {
	if s.srv.tts == nil || text == "" {
		return
	}

	start := time.Now()
	wav, err := s.srv.tts.Synthesize(ctx, text, s.srv.voiceName())
	s.srv.metrics.TTSDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.srv.metrics.RecordProviderError(ctx, "tts", "tts")
		s.log.Warn("speech synthesis failed", "err", err)
		return
	}
	s.srv.metrics.RecordProviderRequest(ctx, "tts", "tts", "ok")

	s.send(ctx, audioMsg{
		Type:  "audio",
		Audio: base64.StdEncoding.EncodeToString(wav),
		Text:  text,
	})
}

// maybeFinish checks for game end. When the game is over it reports the
// outcome, archives the record, and returns true.
func (s *session) maybeFinish(ctx context.Context) bool {
	over, outcome, method := s.game.Over()
	if !over {
		return false
	}

	result := "draw"
	winner := ""
	if method == "Checkmate" {
		result = "checkmate"
		switch outcome {
		case "1-0":
			winner = "white"
		case "0-1":
			winner = "black"
		}
	}

	s.log.Info("game over", "result", result, "winner", winner, "method", method)
	s.send(ctx, gameOverMsg{Type: "game_over", Result: result, Winner: winner})
	s.speak(ctx, gameOverPhrase(result, winner, colorName(s.game.PlayerColor())))

	s.archiveGame(ctx, result, winner)
	s.srv.metrics.ActiveGames.Add(ctx, -1)
	s.game = nil
	return true
}

// archiveGame saves the current game to the archive store.
func (s *session) archiveGame(ctx context.Context, result, winner string) {
	if s.srv.archive == nil || s.game == nil {
		return
	}
	rec := archive.Record{
		StartedAt:   s.startedAt,
		FinishedAt:  time.Now(),
		PlayerColor: colorName(s.game.PlayerColor()),
		EngineElo:   s.elo,
		Moves:       s.game.History(),
		Result:      result,
		Winner:      winner,
		QuizAsked:   s.quizAsked,
		QuizCorrect: s.quizCorrect,
	}
	if _, err := s.srv.archive.Save(ctx, rec); err != nil {
		s.log.Warn("archive save failed", "err", err)
	}
}

func (s *session) sendPosition(ctx context.Context, mv game.Move) error {
	return s.send(ctx, positionUpdateMsg{
		Type:        "position_update",
		FEN:         s.game.FEN(),
		LastMove:    mv.SAN,
		MoveHistory: s.game.History(),
	})
}

func (s *session) send(ctx context.Context, msg any) error {
	if err := wsjson.Write(ctx, s.conn, msg); err != nil {
		s.log.Debug("websocket write failed", "err", err)
		return err
	}
	return nil
}

func (s *session) sendError(ctx context.Context, message string) {
	s.send(ctx, errorMsg{Type: "error", Message: message})
}

// close tears the session down after the read loop exits. An unfinished game
// is archived so a dropped connection does not lose the record.
func (s *session) close(ctx context.Context) {
	if s.game != nil {
		if over, _, _ := s.game.Over(); !over {
			s.archiveGame(ctx, "", "")
		}
		s.srv.metrics.ActiveGames.Add(ctx, -1)
		s.game = nil
	}
	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			s.log.Warn("engine close failed", "err", err)
		}
		s.engine = nil
	}
}

// gameOverPhrase builds the spoken outcome announcement.
func gameOverPhrase(result, winner, playerColor string) string {
	if result == "draw" {
		return "The game is a draw"
	}
	if winner == playerColor {
		return "Checkmate. You win, congratulations"
	}
	return "Checkmate. The engine wins"
}

func colorName(c chess.Color) string {
	if c == chess.Black {
		return "black"
	}
	return "white"
}
