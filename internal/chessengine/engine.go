// Package chessengine drives a UCI engine process (Stockfish by default)
// that plays the computer side. Strength is limited through the standard
// UCI_LimitStrength/UCI_Elo options so the opponent stays beatable for a
// blindfold player.
package chessengine

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
)

const (
	// defaultElo mirrors a club-level training opponent.
	defaultElo = 1350

	// defaultMoveTime bounds each engine search.
	defaultMoveTime = 100 * time.Millisecond
)

// ErrNoBestMove is returned when the engine search yields no move, which on
// a legal position should not happen.
var ErrNoBestMove = errors.New("chessengine: search returned no best move")

// Option is a functional option for configuring an Engine.
type Option func(*Engine)

// WithElo sets the UCI_Elo strength target. Defaults to 1350. Values outside
// the engine's supported range are clamped by the engine itself.
func WithElo(elo int) Option {
	return func(e *Engine) { e.elo = elo }
}

// WithMoveTime bounds each search. Defaults to 100 ms.
func WithMoveTime(d time.Duration) Option {
	return func(e *Engine) { e.moveTime = d }
}

// Engine wraps one UCI engine process. A UCI process answers one search at a
// time, so all calls are serialised through a mutex.
type Engine struct {
	mu       sync.Mutex
	eng      *uci.Engine
	elo      int
	moveTime time.Duration
}

// New launches the engine binary at path and completes the UCI handshake,
// including strength limiting.
func New(path string, opts ...Option) (*Engine, error) {
	if path == "" {
		return nil, errors.New("chessengine: engine path must not be empty")
	}

	inner, err := uci.New(path)
	if err != nil {
		return nil, fmt.Errorf("chessengine: start %q: %w", path, err)
	}

	e := &Engine{
		eng:      inner,
		elo:      defaultElo,
		moveTime: defaultMoveTime,
	}
	for _, o := range opts {
		o(e)
	}

	err = inner.Run(
		uci.CmdUCI,
		uci.CmdIsReady,
		uci.CmdSetOption{Name: "UCI_LimitStrength", Value: "true"},
		uci.CmdSetOption{Name: "UCI_Elo", Value: strconv.Itoa(e.elo)},
		uci.CmdUCINewGame,
	)
	if err != nil {
		inner.Close()
		return nil, fmt.Errorf("chessengine: uci handshake: %w", err)
	}
	return e, nil
}

// BestMove searches the given position and returns the engine's choice.
func (e *Engine) BestMove(pos *chess.Position) (*chess.Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.eng.Run(
		uci.CmdPosition{Position: pos},
		uci.CmdGo{MoveTime: e.moveTime},
	)
	if err != nil {
		return nil, fmt.Errorf("chessengine: search: %w", err)
	}

	best := e.eng.SearchResults().BestMove
	if best == nil {
		return nil, ErrNoBestMove
	}
	return best, nil
}

// NewGame resets engine state between games.
func (e *Engine) NewGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.eng.Run(uci.CmdUCINewGame, uci.CmdIsReady); err != nil {
		return fmt.Errorf("chessengine: new game: %w", err)
	}
	return nil
}

// Close terminates the engine process.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eng.Close()
}
