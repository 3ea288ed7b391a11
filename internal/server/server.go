// Package server exposes the blindfold trainer over a WebSocket API.
//
// Each connection gets its own session: one game, one engine process, one
// chat coach. The browser drives the session with new_game, move, speech and
// chat messages; the server answers with position updates, pipeline
// transcription reports, synthesized audio and game results. Health probes
// and Prometheus metrics share the same HTTP mux.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/notnil/chess"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/voxmate/voxmate/internal/archive"
	"github.com/voxmate/voxmate/internal/chessengine"
	"github.com/voxmate/voxmate/internal/health"
	"github.com/voxmate/voxmate/internal/moveparse"
	"github.com/voxmate/voxmate/internal/observe"
	"github.com/voxmate/voxmate/internal/transcript"
	"github.com/voxmate/voxmate/internal/transcript/phonetic"
	"github.com/voxmate/voxmate/pkg/provider/llm"
	"github.com/voxmate/voxmate/pkg/provider/stt"
	"github.com/voxmate/voxmate/pkg/provider/tts"
)

// maxSpeechPayload bounds one WebSocket message. A minute of 16 kHz 16-bit
// mono WAV is under 2 MiB; base64 inflates it by a third.
const maxSpeechPayload = 8 << 20

// shutdownTimeout is how long Run waits for open connections to drain.
const shutdownTimeout = 10 * time.Second

// Engine is the move search surface the session layer needs. It is
// satisfied by [chessengine.Engine].
type Engine interface {
	BestMove(pos *chess.Position) (*chess.Move, error)
	Close() error
}

var _ Engine = (*chessengine.Engine)(nil)

// EngineFactory starts one engine tuned to the given Elo rating. The server
// calls it once per game so every session owns its engine.
type EngineFactory func(elo int) (Engine, error)

// Config wires the server's collaborators. NewEngine is required; every
// other field is optional and degrades the corresponding feature when nil.
type Config struct {
	// NewEngine starts a new engine process per game.
	NewEngine EngineFactory

	// STT transcribes speech messages. Nil disables the speech path.
	STT stt.Provider

	// TTS voices move announcements. Nil disables audio responses.
	TTS tts.Provider

	// Voice is the TTS voice identifier. Empty selects the provider default.
	Voice string

	// Grader grades quiz answers. Nil falls back to string comparison.
	Grader llm.Provider

	// Corrector repairs garbled transcripts before normalization. Nil wires
	// the default phonetic corrector over the chess vocabulary.
	Corrector *transcript.Corrector

	// Archive stores finished games. Nil wires an in-memory store.
	Archive archive.Store

	// DefaultElo is used when new_game omits a rating. Zero means 1350.
	DefaultElo int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// Logger is the structured logger. Nil means slog.Default().
	Logger *slog.Logger

	// Metrics receives pipeline telemetry. Nil means observe.DefaultMetrics().
	Metrics *observe.Metrics
}

// Server handles WebSocket sessions plus the health and metrics endpoints.
type Server struct {
	log       *slog.Logger
	metrics   *observe.Metrics
	newEngine EngineFactory
	stt       stt.Provider
	tts       tts.Provider
	grader    llm.Provider
	corrector *transcript.Corrector
	archive   archive.Store

	// mu guards voice and defaultElo, which are hot-reloadable.
	mu         sync.RWMutex
	voice      string
	defaultElo int

	tlsCert string
	tlsKey  string
	mux     *http.ServeMux
}

// New builds a Server from cfg, filling in defaults for nil collaborators.
func New(cfg Config) *Server {
	s := &Server{
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
		newEngine:  cfg.NewEngine,
		stt:        cfg.STT,
		tts:        cfg.TTS,
		voice:      cfg.Voice,
		grader:     cfg.Grader,
		corrector:  cfg.Corrector,
		archive:    cfg.Archive,
		defaultElo: cfg.DefaultElo,
		tlsCert:    cfg.TLSCertFile,
		tlsKey:     cfg.TLSKeyFile,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if s.corrector == nil {
		s.corrector = transcript.NewCorrector(phonetic.New(), moveparse.Vocabulary())
	}
	if s.archive == nil {
		s.archive = archive.NewMemoryStore()
	}
	if s.defaultElo == 0 {
		s.defaultElo = 1350
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.Handle("/metrics", promhttp.Handler())
	health.New(s.checkers()...).Register(s.mux)
	return s
}

// SetVoice swaps the TTS voice for subsequent announcements. Used by the
// config hot-reload path.
func (s *Server) SetVoice(voice string) {
	s.mu.Lock()
	s.voice = voice
	s.mu.Unlock()
}

// SetDefaultElo swaps the rating used when new_game omits one. Games in
// progress keep their engine.
func (s *Server) SetDefaultElo(elo int) {
	s.mu.Lock()
	s.defaultElo = elo
	s.mu.Unlock()
}

func (s *Server) voiceName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voice
}

func (s *Server) engineElo() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultElo
}

// Handler returns the HTTP handler serving /ws, /healthz, /readyz and
// /metrics, wrapped with the telemetry middleware.
func (s *Server) Handler() http.Handler {
	return observe.Middleware(s.metrics)(s.mux)
}

// Run serves the handler on addr until ctx is cancelled, then drains open
// connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", addr, "tls", s.tlsCert != "")
		var err error
		if s.tlsCert != "" && s.tlsKey != "" {
			err = httpSrv.ListenAndServeTLS(s.tlsCert, s.tlsKey)
		} else {
			err = httpSrv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// checkers builds the readiness probes: the engine must start, and the
// archive must answer.
func (s *Server) checkers() []health.Checker {
	return []health.Checker{
		{
			Name: "engine",
			Check: func(context.Context) error {
				eng, err := s.newEngine(s.engineElo())
				if err != nil {
					return err
				}
				return eng.Close()
			},
		},
		{
			Name: "archive",
			Check: func(ctx context.Context) error {
				_, err := s.archive.Recent(ctx, 1)
				return err
			},
		},
	}
}

// handleWS upgrades the request and runs a session for the connection's
// lifetime.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket accept failed", "err", err)
		return
	}
	conn.SetReadLimit(maxSpeechPayload)

	ctx := r.Context()
	s.metrics.ActiveSessions.Add(ctx, 1)
	defer s.metrics.ActiveSessions.Add(ctx, -1)

	s.log.Info("client connected", "remote", r.RemoteAddr)
	newSession(s, conn).run(ctx)
	conn.Close(websocket.StatusNormalClosure, "session ended")
	s.log.Info("client disconnected", "remote", r.RemoteAddr)
}
