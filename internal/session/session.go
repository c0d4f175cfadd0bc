// Package session holds the one piece of mutable state the client
// owns: the last-known-good snapshot fields, used to decide what
// changed between polls without re-rendering unchanged UI.
package session

import (
	"sync"

	"chessclient/internal/game"
)

// Session is the explicit per-game context passed to every component:
// the immutable game identifier and orientation, plus the mutex-guarded
// cache of last-rendered scalar fields. Last writer wins; the writer is
// always the most recent network response to complete.
type Session struct {
	GameID      string
	Orientation game.Color

	mu       sync.Mutex
	position string
	status   game.Status
	turn     game.Color
	eval     float64
	ended    bool
	chatLog  []game.ChatMessage
}

// Delta reports which cached fields a snapshot changed.
type Delta struct {
	PositionChanged   bool
	StatusChanged     bool
	EnteredCheck      bool
	TurnChanged       bool
	EvaluationChanged bool
	Ended             bool
}

// New seeds the cache from the first server snapshot. Components must
// not read the session before this runs; initialization order is
// fetch snapshot, build session, start poller.
func New(gameID string, orientation game.Color, first *game.Snapshot) *Session {
	return &Session{
		GameID:      gameID,
		Orientation: orientation,
		position:    first.Position.Encode(),
		status:      first.Status,
		turn:        first.Turn,
		eval:        first.Evaluation,
		ended:       first.End,
	}
}

// ApplySnapshot diffs the snapshot against the cache, replaces the
// cached copy wholesale, and reports what changed. Applying the same
// snapshot twice yields an empty delta, so callers stay idempotent.
func (s *Session) ApplySnapshot(snap *game.Snapshot) Delta {
	s.mu.Lock()
	defer s.mu.Unlock()

	var d Delta
	if enc := snap.Position.Encode(); enc != s.position {
		d.PositionChanged = true
		s.position = enc
	}
	if snap.Status != s.status {
		d.StatusChanged = true
		d.EnteredCheck = snap.Status == game.StatusCheck
		s.status = snap.Status
	}
	if snap.Turn != s.turn {
		d.TurnChanged = true
		s.turn = snap.Turn
	}
	if snap.Evaluation != s.eval {
		d.EvaluationChanged = true
		s.eval = snap.Evaluation
	}
	if snap.End && !s.ended {
		s.ended = true
	}
	d.Ended = snap.End
	return d
}

// SetTurn records the side to move after a confirmed local move.
func (s *Session) SetTurn(c game.Color) {
	s.mu.Lock()
	s.turn = c
	s.mu.Unlock()
}

// Turn returns the cached side to move.
func (s *Session) Turn() game.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Status returns the cached game status.
func (s *Session) Status() game.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Ended reports whether an end-of-game snapshot has been observed.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// SeenChat returns how many chat messages have been rendered.
func (s *Session) SeenChat() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chatLog)
}

// MarkSeen filters a delivered batch against the rendered log and
// returns only the entries not rendered yet. The chat is append-only,
// so a batch that starts by replaying the whole rendered log is a
// redelivery of the full history and contributes only its tail; any
// other batch is incremental. The rendered log grows by what is
// returned.
func (s *Session) MarkSeen(batch []game.ChatMessage) []game.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := batch
	if len(s.chatLog) > 0 && len(batch) >= len(s.chatLog) {
		replay := true
		for i, seen := range s.chatLog {
			if batch[i] != seen {
				replay = false
				break
			}
		}
		if replay {
			fresh = batch[len(s.chatLog):]
		}
	}
	s.chatLog = append(s.chatLog, fresh...)
	return fresh
}

// ConfirmPosition records the rendered position after a confirmed
// local move, so the cache keeps step with the widget without waiting
// for the next poll.
func (s *Session) ConfirmPosition(pos game.Position) {
	s.mu.Lock()
	s.position = pos.Encode()
	s.mu.Unlock()
}
