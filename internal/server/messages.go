package server

import "github.com/voxmate/voxmate/internal/moveparse"

// clientMessage is the envelope for everything a browser sends over the
// WebSocket. Type selects the operation; the remaining fields are populated
// per type.
type clientMessage struct {
	Type string `json:"type"`

	// new_game
	Color string `json:"color,omitempty"`
	Elo   int    `json:"elo,omitempty"`

	// move: a coordinate move such as "e2e4".
	Move string `json:"move,omitempty"`

	// chat
	Message string `json:"message,omitempty"`

	// speech: a base64-encoded WAV utterance.
	Audio string `json:"audio,omitempty"`
}

type connectedMsg struct {
	Type string `json:"type"`
}

type gameStartedMsg struct {
	Type        string `json:"type"`
	FEN         string `json:"fen"`
	PlayerColor string `json:"player_color"`
	EngineElo   int    `json:"engine_elo"`
}

type positionUpdateMsg struct {
	Type        string   `json:"type"`
	FEN         string   `json:"fen"`
	LastMove    string   `json:"last_move"`
	MoveHistory []string `json:"move_history"`
}

type invalidMoveMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type gameOverMsg struct {
	Type   string `json:"type"`
	Result string `json:"result"` // "checkmate" or "draw"
	Winner string `json:"winner,omitempty"`
}

type chatResponseMsg struct {
	Type        string `json:"type"`
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
}

// transcriptionMsg reports the full speech-to-move pipeline for one
// utterance so the client can show what was heard and how it was read.
type transcriptionMsg struct {
	Type         string           `json:"type"`
	Text         string           `json:"text"`
	Corrected    string           `json:"corrected,omitempty"`
	Candidates   []string         `json:"candidates"`
	AppliedRules []moveparse.Rule `json:"applied_rules"`
	Move         string           `json:"move,omitempty"`
}

type audioMsg struct {
	Type  string `json:"type"`
	Audio string `json:"audio"` // base64-encoded WAV
	Text  string `json:"text"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
