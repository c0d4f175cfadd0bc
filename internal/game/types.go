package game

// Color identifies a side of the board.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Other returns the opposing side.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// Status describes the server's view of the game.
type Status string

const (
	StatusNormal    Status = "normal"
	StatusCheck     Status = "check"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
	StatusDraw      Status = "draw"
)

// Position maps square names ("e4") to piece codes ("wP", "bK").
// Empty squares are absent from the map.
type Position map[string]string

// Snapshot is the authoritative state of one game at a point in time.
// Produced exclusively by the server; the client replaces its cached
// copy wholesale, never mutates it.
type Snapshot struct {
	Position   Position `json:"board"`
	Turn       Color    `json:"turn"`
	Status     Status   `json:"board_state"`
	Players    []string `json:"players"`
	WhiteTime  float64  `json:"white_time"`
	BlackTime  float64  `json:"black_time"`
	Evaluation float64  `json:"evaluation"`
	End        bool     `json:"end"`
}

// WhiteName returns the white player's display name.
func (s *Snapshot) WhiteName() string {
	if len(s.Players) > 0 {
		return s.Players[0]
	}
	return ""
}

// BlackName returns the black player's display name.
func (s *Snapshot) BlackName() string {
	if len(s.Players) > 1 {
		return s.Players[1]
	}
	return ""
}

// ChatMessage is a single chat entry.
type ChatMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// MoveProposal is one attempted move, built per drag-drop gesture and
// discarded after the handshake resolves.
type MoveProposal struct {
	Source      string
	Destination string
}

// PieceColor reports which side a piece code belongs to.
func PieceColor(piece string) Color {
	if len(piece) > 0 && piece[0] == 'b' {
		return Black
	}
	return White
}
