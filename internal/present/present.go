// Package present translates state deltas into display and audio
// effects. Everything here is either a pure function or an interface
// the rendering collaborator implements; no network calls.
package present

import (
	"fmt"
	"math"

	"chessclient/internal/game"
)

// Sound identifies a short notification clip.
type Sound int

const (
	SoundMove Sound = iota
	SoundCapture
	SoundCheck
)

// SoundPlayer plays notification clips. Implementations must restart a
// clip from the beginning when Play fires while it is still running,
// so rapid repeated triggers never overlap mid-clip.
type SoundPlayer interface {
	Play(Sound)
}

// TextSlot names a text panel on the page.
type TextSlot string

const (
	SlotStatus        TextSlot = "status"
	SlotTurn          TextSlot = "turn"
	SlotCurrentClock  TextSlot = "current_clock"
	SlotSecondClock   TextSlot = "second_clock"
	SlotCurrentPlayer TextSlot = "current_player"
	SlotSecondPlayer  TextSlot = "second_player"
)

// HighlightKind distinguishes quiet-move targets from capture targets.
type HighlightKind int

const (
	HighlightMove HighlightKind = iota
	HighlightCapture
)

// Display is the surface the client paints on. SetText is idempotent;
// SetHighlights replaces all existing marks; AppendMessages scrolls the
// chat list to the bottom.
type Display interface {
	SetHighlights(marks map[string]HighlightKind)
	SetText(slot TextSlot, text string)
	SetEvaluationBar(white, black float64)
	AppendMessages(msgs []game.ChatMessage)
}

// HighlightPlan maps each legal destination to a mark kind: capture
// when the square is occupied in the current position, quiet move
// otherwise. An empty set clears all marks.
func HighlightPlan(squares []string, pos game.Position) map[string]HighlightKind {
	marks := make(map[string]HighlightKind, len(squares))
	for _, sq := range squares {
		if pos.Occupied(sq) {
			marks[sq] = HighlightCapture
		} else {
			marks[sq] = HighlightMove
		}
	}
	return marks
}

// SplitEvaluation maps a signed evaluation (positive favors white) to
// two weights summing to one. The functional form saturates toward one
// side as the magnitude grows and balances near zero.
func SplitEvaluation(eval float64) (white, black float64) {
	white = math.Abs(eval+1) / 2
	black = math.Abs(eval-1) / 2
	sum := white + black
	return white / sum, black / sum
}

// FormatClock renders remaining seconds as mm:ss, clamped at zero.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// TurnText renders the side to move for the turn panel.
func TurnText(c game.Color) string {
	if c == game.Black {
		return "black to move"
	}
	return "white to move"
}

// StatusText renders a game status for the status panel.
func StatusText(s game.Status) string {
	switch s {
	case game.StatusCheck:
		return "check!"
	case game.StatusCheckmate:
		return "checkmate"
	case game.StatusStalemate:
		return "stalemate"
	case game.StatusDraw:
		return "draw"
	default:
		return ""
	}
}
