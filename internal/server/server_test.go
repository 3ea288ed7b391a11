package server_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/notnil/chess"

	"github.com/voxmate/voxmate/internal/archive"
	"github.com/voxmate/voxmate/internal/moveparse"
	"github.com/voxmate/voxmate/internal/server"
	"github.com/voxmate/voxmate/pkg/provider/stt"
	sttmock "github.com/voxmate/voxmate/pkg/provider/stt/mock"
	ttsmock "github.com/voxmate/voxmate/pkg/provider/tts/mock"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// scriptedEngine plays a fixed SAN move list, decoding each against the
// position it is asked about. It stands in for a UCI engine in tests.
type scriptedEngine struct {
	mu     sync.Mutex
	moves  []string
	closed bool
}

func (e *scriptedEngine) BestMove(pos *chess.Position) (*chess.Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.moves) == 0 {
		return nil, errors.New("scripted engine: no moves left")
	}
	san := e.moves[0]
	e.moves = e.moves[1:]
	return chess.AlgebraicNotation{}.Decode(pos, san)
}

func (e *scriptedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// wireMsg is a superset of every server message so one struct can decode
// whatever arrives.
type wireMsg struct {
	Type         string           `json:"type"`
	FEN          string           `json:"fen"`
	PlayerColor  string           `json:"player_color"`
	EngineElo    int              `json:"engine_elo"`
	LastMove     string           `json:"last_move"`
	MoveHistory  []string         `json:"move_history"`
	Message      string           `json:"message"`
	Result       string           `json:"result"`
	Winner       string           `json:"winner"`
	UserMessage  string           `json:"user_message"`
	AIResponse   string           `json:"ai_response"`
	Text         string           `json:"text"`
	Corrected    string           `json:"corrected"`
	Candidates   []string         `json:"candidates"`
	AppliedRules []moveparse.Rule `json:"applied_rules"`
	Move         string           `json:"move"`
	Audio        string           `json:"audio"`
}

func scriptFactory(engine *scriptedEngine) server.EngineFactory {
	return func(int) (server.Engine, error) {
		return engine, nil
	}
}

// dial starts an HTTP test server around cfg and opens a WebSocket to it.
// The initial connected message is consumed before returning.
func dial(t *testing.T, ctx context.Context, cfg server.Config) *websocket.Conn {
	t.Helper()
	srv := server.New(cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })

	if msg := expect(t, ctx, conn, "connected"); msg.Type != "connected" {
		t.Fatalf("expected connected, got %+v", msg)
	}
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// expect reads one message and fails the test unless it has the given type.
func expect(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string) wireMsg {
	t.Helper()
	var msg wireMsg
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read (waiting for %s): %v", msgType, err)
	}
	if msg.Type != msgType {
		t.Fatalf("expected message type %q, got %q (%+v)", msgType, msg.Type, msg)
	}
	return msg
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewGame_White(t *testing.T) {
	ctx := testContext(t)
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(&scriptedEngine{}),
	})

	send(t, ctx, conn, map[string]any{"type": "new_game", "color": "white", "elo": 1500})

	started := expect(t, ctx, conn, "game_started")
	if started.FEN != startFEN {
		t.Errorf("unexpected FEN: %s", started.FEN)
	}
	if started.PlayerColor != "white" || started.EngineElo != 1500 {
		t.Errorf("unexpected game_started: %+v", started)
	}
}

func TestNewGame_BlackEngineOpens(t *testing.T) {
	ctx := testContext(t)
	engine := &scriptedEngine{moves: []string{"e4"}}
	ttsProv := &ttsmock.Provider{WAV: []byte("RIFFfake")}
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(engine),
		TTS:       ttsProv,
	})

	send(t, ctx, conn, map[string]any{"type": "new_game", "color": "black"})

	started := expect(t, ctx, conn, "game_started")
	if started.PlayerColor != "black" {
		t.Errorf("unexpected player color %q", started.PlayerColor)
	}

	update := expect(t, ctx, conn, "position_update")
	if update.LastMove != "e4" {
		t.Errorf("expected engine to open with e4, got %q", update.LastMove)
	}

	audio := expect(t, ctx, conn, "audio")
	if audio.Text != "e4" {
		t.Errorf("unexpected announcement %q", audio.Text)
	}
	if audio.Audio != base64.StdEncoding.EncodeToString([]byte("RIFFfake")) {
		t.Errorf("audio payload does not round-trip the synthesized WAV")
	}
}

func TestMove_PlayerThenEngineReply(t *testing.T) {
	ctx := testContext(t)
	engine := &scriptedEngine{moves: []string{"e5"}}
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(engine),
	})

	send(t, ctx, conn, map[string]any{"type": "new_game", "color": "white"})
	expect(t, ctx, conn, "game_started")

	send(t, ctx, conn, map[string]any{"type": "move", "move": "e2e4"})

	player := expect(t, ctx, conn, "position_update")
	if player.LastMove != "e4" || len(player.MoveHistory) != 1 {
		t.Errorf("unexpected player update: %+v", player)
	}

	reply := expect(t, ctx, conn, "position_update")
	if reply.LastMove != "e5" || len(reply.MoveHistory) != 2 {
		t.Errorf("unexpected engine update: %+v", reply)
	}
}

func TestMove_Illegal(t *testing.T) {
	ctx := testContext(t)
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(&scriptedEngine{}),
	})

	send(t, ctx, conn, map[string]any{"type": "new_game", "color": "white"})
	expect(t, ctx, conn, "game_started")

	send(t, ctx, conn, map[string]any{"type": "move", "move": "e2e5"})

	invalid := expect(t, ctx, conn, "invalid_move")
	if !strings.Contains(invalid.Message, "e2e5") {
		t.Errorf("expected the rejected move in the message, got %q", invalid.Message)
	}
}

func TestMove_WithoutGame(t *testing.T) {
	ctx := testContext(t)
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(&scriptedEngine{}),
	})

	send(t, ctx, conn, map[string]any{"type": "move", "move": "e2e4"})

	errMsg := expect(t, ctx, conn, "error")
	if !strings.Contains(errMsg.Message, "No active game") {
		t.Errorf("unexpected error message %q", errMsg.Message)
	}
}

func TestChat_Recap(t *testing.T) {
	ctx := testContext(t)
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(&scriptedEngine{}),
	})

	send(t, ctx, conn, map[string]any{"type": "new_game", "color": "white"})
	expect(t, ctx, conn, "game_started")

	send(t, ctx, conn, map[string]any{"type": "chat", "message": "recap"})

	resp := expect(t, ctx, conn, "chat_response")
	if resp.UserMessage != "recap" {
		t.Errorf("user message not echoed: %q", resp.UserMessage)
	}
	if resp.AIResponse != "No moves have been made yet." {
		t.Errorf("unexpected recap: %q", resp.AIResponse)
	}
}

func TestSpeech_AppliesSpokenMove(t *testing.T) {
	ctx := testContext(t)
	engine := &scriptedEngine{moves: []string{"e5"}}
	sttProv := &sttmock.Provider{Transcript: stt.Transcript{Text: "knight to f three", Confidence: 0.9}}
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(engine),
		STT:       sttProv,
	})

	send(t, ctx, conn, map[string]any{"type": "new_game", "color": "white"})
	expect(t, ctx, conn, "game_started")

	wav := base64.StdEncoding.EncodeToString([]byte("RIFFutterance"))
	send(t, ctx, conn, map[string]any{"type": "speech", "audio": wav})

	report := expect(t, ctx, conn, "transcription")
	if report.Text != "knight to f three" {
		t.Errorf("raw transcript not reported: %q", report.Text)
	}
	if report.Move != "Nf3" {
		t.Errorf("expected Nf3 to be applied, got %q", report.Move)
	}
	if len(report.Candidates) == 0 || len(report.AppliedRules) == 0 {
		t.Errorf("expected a populated pipeline report: %+v", report)
	}

	player := expect(t, ctx, conn, "position_update")
	if player.LastMove != "Nf3" {
		t.Errorf("unexpected player update: %+v", player)
	}
	reply := expect(t, ctx, conn, "position_update")
	if reply.LastMove != "e5" {
		t.Errorf("unexpected engine update: %+v", reply)
	}

	if calls := sttProv.Calls(); len(calls) != 1 || string(calls[0].WAV) != "RIFFutterance" {
		t.Errorf("expected the decoded WAV to reach the provider")
	}
}

func TestSpeech_Unintelligible(t *testing.T) {
	ctx := testContext(t)
	sttProv := &sttmock.Provider{Transcript: stt.Transcript{Text: "good morning everyone"}}
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(&scriptedEngine{}),
		STT:       sttProv,
	})

	send(t, ctx, conn, map[string]any{"type": "new_game", "color": "white"})
	expect(t, ctx, conn, "game_started")

	wav := base64.StdEncoding.EncodeToString([]byte("RIFFnoise"))
	send(t, ctx, conn, map[string]any{"type": "speech", "audio": wav})

	report := expect(t, ctx, conn, "transcription")
	if report.Move != "" {
		t.Errorf("no move should have been applied, got %q", report.Move)
	}
	invalid := expect(t, ctx, conn, "invalid_move")
	if !strings.Contains(invalid.Message, "good morning everyone") {
		t.Errorf("expected the transcript in the rejection, got %q", invalid.Message)
	}
}

func TestSpeech_WithoutProvider(t *testing.T) {
	ctx := testContext(t)
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(&scriptedEngine{}),
	})

	send(t, ctx, conn, map[string]any{"type": "new_game", "color": "white"})
	expect(t, ctx, conn, "game_started")

	send(t, ctx, conn, map[string]any{"type": "speech", "audio": "UklGRg=="})

	errMsg := expect(t, ctx, conn, "error")
	if !strings.Contains(errMsg.Message, "speech provider") {
		t.Errorf("unexpected error message %q", errMsg.Message)
	}
}

func TestGameOver_CheckmateArchivesRecord(t *testing.T) {
	ctx := testContext(t)
	engine := &scriptedEngine{moves: []string{"e5", "Qh4#"}}
	store := archive.NewMemoryStore()
	conn := dial(t, ctx, server.Config{
		NewEngine: scriptFactory(engine),
		Archive:   store,
	})

	send(t, ctx, conn, map[string]any{"type": "new_game", "color": "white", "elo": 1800})
	expect(t, ctx, conn, "game_started")

	send(t, ctx, conn, map[string]any{"type": "move", "move": "f2f3"})
	expect(t, ctx, conn, "position_update")
	expect(t, ctx, conn, "position_update")

	send(t, ctx, conn, map[string]any{"type": "move", "move": "g2g4"})
	expect(t, ctx, conn, "position_update")
	expect(t, ctx, conn, "position_update")

	over := expect(t, ctx, conn, "game_over")
	if over.Result != "checkmate" || over.Winner != "black" {
		t.Errorf("unexpected game_over: %+v", over)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 archived game, got %d", len(records))
	}
	rec := records[0]
	if rec.Result != "checkmate" || rec.Winner != "black" || rec.EngineElo != 1800 {
		t.Errorf("unexpected record: %+v", rec)
	}
	want := []string{"f3", "e5", "g4", "Qh4#"}
	if len(rec.Moves) != len(want) {
		t.Fatalf("unexpected move list: %v", rec.Moves)
	}
	for i, san := range want {
		if rec.Moves[i] != san {
			t.Errorf("move %d: got %q, want %q", i, rec.Moves[i], san)
		}
	}
}

func TestHTTPEndpoints(t *testing.T) {
	srv := server.New(server.Config{
		NewEngine: scriptFactory(&scriptedEngine{}),
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: status %d", path, resp.StatusCode)
		}
	}
}
