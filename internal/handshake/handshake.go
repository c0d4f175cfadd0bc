// Package handshake drives the optimistic move flow: query legal
// destinations on drag-start, submit on drop, revert the widget when
// the server rejects. The server is the authority on legality; the
// only client-side gate is refusing to pick up the opponent's pieces.
package handshake

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessclient/internal/game"
	"chessclient/internal/present"
	"chessclient/internal/session"
)

// BoardWidget is the imperative surface of the rendering collaborator:
// it reports the currently rendered position and accepts a forced
// position set (used to revert a rejected optimistic move).
type BoardWidget interface {
	Position() game.Position
	SetPosition(game.Position)
}

// Gateway is the slice of the server gateway the handshake needs.
type Gateway interface {
	LegalMoves(ctx context.Context, source, gameID string, orientation game.Color) ([]string, error)
	SubmitMove(ctx context.Context, source, destination, gameID string) (bool, error)
	Turn(ctx context.Context, gameID string) (game.Color, error)
}

type phase int

const (
	phaseIdle phase = iota
	phaseShowing
)

// Controller implements the widget's gesture callbacks. One instance
// serves the whole game; its state machine is per gesture.
type Controller struct {
	gw     Gateway
	sess   *session.Session
	widget BoardWidget
	disp   present.Display
	sounds present.SoundPlayer
	log    zerolog.Logger

	mu    sync.Mutex
	phase phase
}

// New wires a controller to its collaborators.
func New(gw Gateway, sess *session.Session, widget BoardWidget, disp present.Display, sounds present.SoundPlayer) *Controller {
	return &Controller{
		gw:     gw,
		sess:   sess,
		widget: widget,
		disp:   disp,
		sounds: sounds,
		log:    log.With().Str("component", "handshake").Logger(),
	}
}

// HandleDragStart runs when the player picks up a piece. It returns
// false when the gesture is refused outright (opponent's piece);
// otherwise it highlights the server's legal destinations and moves
// the gesture to the showing state.
func (c *Controller) HandleDragStart(ctx context.Context, source, piece string) bool {
	if game.PieceColor(piece) != c.sess.Orientation {
		return false
	}

	moves, err := c.gw.LegalMoves(ctx, source, c.sess.GameID, c.sess.Orientation)
	if err != nil {
		// Stale-but-safe: no highlights, but the drag itself stands.
		moves = nil
	}
	c.disp.SetHighlights(present.HighlightPlan(moves, c.widget.Position()))

	c.mu.Lock()
	c.phase = phaseShowing
	c.mu.Unlock()
	return true
}

// HandleDrop runs after the widget has already moved the piece
// optimistically. oldPos is the rendered position from before the drag
// began. A rejection reverts the widget to oldPos and is terminal for
// the gesture; the player must start a new drag.
func (c *Controller) HandleDrop(ctx context.Context, proposal game.MoveProposal, oldPos game.Position) {
	c.mu.Lock()
	if c.phase != phaseShowing {
		c.mu.Unlock()
		return
	}
	c.phase = phaseIdle
	c.mu.Unlock()

	valid, err := c.gw.SubmitMove(ctx, proposal.Source, proposal.Destination, c.sess.GameID)
	if err != nil || !valid {
		// Unconfirmed or rejected: no sound, put the board back. The
		// poller corrects any remaining divergence on its next tick.
		c.widget.SetPosition(oldPos)
		return
	}

	// The optimistic position is confirmed now; record it so the cache
	// stays in step with the widget between polls.
	c.sess.ConfirmPosition(c.widget.Position())

	if oldPos.Occupied(proposal.Destination) {
		c.sounds.Play(present.SoundCapture)
	} else {
		c.sounds.Play(present.SoundMove)
	}

	if turn, err := c.gw.Turn(ctx, c.sess.GameID); err == nil {
		c.sess.SetTurn(turn)
		c.disp.SetText(present.SlotTurn, present.TurnText(turn))
	}
	c.log.Debug().Str("source", proposal.Source).Str("destination", proposal.Destination).Msg("move accepted")
}

// HandlePositionChanged runs on any widget position change, including
// a cancelled drag. It unconditionally clears the highlight marks.
func (c *Controller) HandlePositionChanged() {
	c.mu.Lock()
	c.phase = phaseIdle
	c.mu.Unlock()
	c.disp.SetHighlights(present.HighlightPlan(nil, c.widget.Position()))
}
