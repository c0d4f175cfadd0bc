// Package server is a development implementation of the game oracle:
// it speaks the client's wire protocol and delegates chess rules to
// the notnil/chess engine. The real deployment replaces it; the
// client core never depends on it.
package server

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessclient/internal/game"
	"chessclient/internal/storage"
)

// InitialClock is each side's starting time.
const InitialClock = 600.0

// GameSession is one live game: the rules engine, clocks and chat.
type GameSession struct {
	mu        sync.Mutex
	id        string
	g         *chess.Game
	remaining map[chess.Color]float64
	turnStart time.Time
	players   [2]string
	chat      []game.ChatMessage
	delivered int
	lastSeen  time.Time

	store *storage.Store
	log   zerolog.Logger
}

// Hub manages all active games, restoring persisted ones on demand.
type Hub struct {
	mu    sync.Mutex
	games map[string]*GameSession
	store *storage.Store
}

// NewHub creates a hub with a background idle-game sweep.
func NewHub(store *storage.Store) *Hub {
	h := &Hub{games: make(map[string]*GameSession), store: store}
	go func() {
		for {
			time.Sleep(5 * time.Minute)
			h.mu.Lock()
			for id, gs := range h.games {
				gs.mu.Lock()
				idle := time.Since(gs.lastSeen) > 24*time.Hour
				gs.mu.Unlock()
				if idle {
					delete(h.games, id)
				}
			}
			h.mu.Unlock()
		}
	}()
	return h
}

// Get retrieves an existing game or creates one, seeding it from the
// store when a persisted row exists.
func (h *Hub) Get(ctx context.Context, id string) *GameSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gs, ok := h.games[id]; ok {
		return gs
	}

	gs := &GameSession{
		id:        id,
		g:         chess.NewGame(chess.UseNotation(chess.UCINotation{})),
		remaining: map[chess.Color]float64{chess.White: InitialClock, chess.Black: InitialClock},
		turnStart: time.Now(),
		players:   [2]string{"White", "Black"},
		lastSeen:  time.Now(),
		store:     h.store,
		log:       log.With().Str("component", "server").Str("game", id).Logger(),
	}

	if row, err := h.store.LoadGame(ctx, id); err == nil && row != nil {
		if fen, err := chess.FEN(row.FEN); err == nil {
			gs.g = chess.NewGame(fen, chess.UseNotation(chess.UCINotation{}))
		}
		gs.remaining[chess.White] = row.WhiteTime
		gs.remaining[chess.Black] = row.BlackTime
		for _, m := range row.Messages {
			gs.chat = append(gs.chat, game.ChatMessage{Sender: m.Sender, Content: m.Content})
		}
	} else {
		_ = h.store.EnsureGame(ctx, id, InitialClock)
	}

	h.games[id] = gs
	return gs
}

// Touch updates the last seen timestamp for a game.
func (gs *GameSession) Touch() {
	gs.mu.Lock()
	gs.lastSeen = time.Now()
	gs.mu.Unlock()
}

// LegalDestinations lists the destination squares of every legal move
// from source, deduplicated (promotions generate several moves to the
// same square).
func (gs *GameSession) LegalDestinations(source string) []string {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	for _, m := range gs.g.ValidMoves() {
		if m.S1().String() != source {
			continue
		}
		dst := m.S2().String()
		if _, ok := seen[dst]; ok {
			continue
		}
		seen[dst] = struct{}{}
		out = append(out, dst)
	}
	return out
}

// Move attempts source->destination, auto-queening promotions, and
// reports whether the engine accepted it. An accepted move charges the
// mover's clock and persists the new state.
func (gs *GameSession) Move(ctx context.Context, source, destination string) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	var chosen *chess.Move
	for _, m := range gs.g.ValidMoves() {
		if m.S1().String() != source || m.S2().String() != destination {
			continue
		}
		if m.Promo() == chess.NoPieceType || m.Promo() == chess.Queen {
			chosen = m
			break
		}
	}
	if chosen == nil {
		return false
	}

	mover := gs.g.Position().Turn()
	if err := gs.g.Move(chosen); err != nil {
		return false
	}

	now := time.Now()
	gs.remaining[mover] -= now.Sub(gs.turnStart).Seconds()
	if gs.remaining[mover] < 0 {
		gs.remaining[mover] = 0
	}
	gs.turnStart = now
	gs.lastSeen = now

	moves := gs.g.Moves()
	uci := chosen.String()
	_ = gs.store.RecordMove(ctx, gs.id, len(moves), uci, colorName(mover))
	_ = gs.store.SaveGameState(ctx, gs.id, storage.GameStateUpdate{
		FEN:       gs.g.Position().String(),
		Status:    string(gs.statusLocked()),
		Ended:     gs.g.Outcome() != chess.NoOutcome,
		WhiteTime: gs.remaining[chess.White],
		BlackTime: gs.remaining[chess.Black],
	})
	gs.log.Debug().Str("uci", uci).Msg("move applied")
	return true
}

// Snapshot renders the authoritative state in the wire format.
func (gs *GameSession) Snapshot() *game.Snapshot {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	pos := gs.g.Position()
	wt, bt := gs.remaining[chess.White], gs.remaining[chess.Black]
	if gs.g.Outcome() == chess.NoOutcome {
		elapsed := time.Since(gs.turnStart).Seconds()
		if pos.Turn() == chess.White {
			wt = math.Max(0, wt-elapsed)
		} else {
			bt = math.Max(0, bt-elapsed)
		}
	}

	return &game.Snapshot{
		Position:   positionMap(pos.Board()),
		Turn:       game.Color(colorName(pos.Turn())),
		Status:     gs.statusLocked(),
		Players:    []string{gs.players[0], gs.players[1]},
		WhiteTime:  wt,
		BlackTime:  bt,
		Evaluation: materialEval(pos.Board()),
		End:        gs.g.Outcome() != chess.NoOutcome,
	}
}

// Turn returns the side to move.
func (gs *GameSession) Turn() game.Color {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return game.Color(colorName(gs.g.Position().Turn()))
}

// Messages returns the full history on reset, otherwise only entries
// not yet delivered. Either way the delivered marker advances to the
// end of the log. The marker is per game, not per client: a second
// concurrent viewer steals deliveries, so incremental pulls assume a
// single viewer per game.
func (gs *GameSession) Messages(reset bool) []game.ChatMessage {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	var out []game.ChatMessage
	if reset {
		out = append(out, gs.chat...)
	} else {
		out = append(out, gs.chat[gs.delivered:]...)
	}
	gs.delivered = len(gs.chat)
	return out
}

// AddMessage appends a chat entry. The wire protocol carries no
// sender, so the entry is attributed to the side to move.
func (gs *GameSession) AddMessage(ctx context.Context, content string) {
	gs.mu.Lock()
	sender := gs.players[0]
	if gs.g.Position().Turn() == chess.Black {
		sender = gs.players[1]
	}
	gs.chat = append(gs.chat, game.ChatMessage{Sender: sender, Content: content})
	gs.mu.Unlock()
	_ = gs.store.RecordMessage(ctx, gs.id, sender, content)
}

// statusLocked derives the wire status. Check is detected from the SAN
// of the last move; mate, stalemate and draws come from the outcome.
func (gs *GameSession) statusLocked() game.Status {
	if gs.g.Outcome() != chess.NoOutcome {
		switch gs.g.Method() {
		case chess.Checkmate:
			return game.StatusCheckmate
		case chess.Stalemate:
			return game.StatusStalemate
		default:
			return game.StatusDraw
		}
	}
	moves := gs.g.Moves()
	positions := gs.g.Positions()
	if len(moves) > 0 && len(positions) > len(moves) {
		san := chess.AlgebraicNotation{}.Encode(positions[len(moves)-1], moves[len(moves)-1])
		if strings.HasSuffix(san, "+") {
			return game.StatusCheck
		}
	}
	return game.StatusNormal
}

func colorName(c chess.Color) string {
	if c == chess.Black {
		return "black"
	}
	return "white"
}

var pieceLetters = map[chess.PieceType]string{
	chess.King:   "K",
	chess.Queen:  "Q",
	chess.Rook:   "R",
	chess.Bishop: "B",
	chess.Knight: "N",
	chess.Pawn:   "P",
}

// positionMap converts an engine board to the square->piece-code wire
// mapping ("e2" -> "wP").
func positionMap(b *chess.Board) game.Position {
	out := make(game.Position)
	for sq := 0; sq < 64; sq++ {
		p := b.Piece(chess.Square(sq))
		if p == chess.NoPiece {
			continue
		}
		code := "w"
		if p.Color() == chess.Black {
			code = "b"
		}
		out[chess.Square(sq).String()] = code + pieceLetters[p.Type()]
	}
	return out
}

var pieceValues = map[chess.PieceType]float64{
	chess.Queen:  9,
	chess.Rook:   5,
	chess.Bishop: 3,
	chess.Knight: 3,
	chess.Pawn:   1,
}

// materialEval is a material count normalized into [-1, 1], positive
// favoring white.
func materialEval(b *chess.Board) float64 {
	var diff float64
	for sq := 0; sq < 64; sq++ {
		p := b.Piece(chess.Square(sq))
		if p == chess.NoPiece {
			continue
		}
		v := pieceValues[p.Type()]
		if p.Color() == chess.White {
			diff += v
		} else {
			diff -= v
		}
	}
	eval := diff / 39
	return math.Max(-1, math.Min(1, eval))
}
