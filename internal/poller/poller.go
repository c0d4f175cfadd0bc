// Package poller re-synchronizes the client display to server truth on
// a fixed period. Each tick fetches the authoritative snapshot and
// applies only the deltas: position, status text, clocks, chat,
// evaluation bar. Ticks never overlap; the tick body runs inline in
// the loop, so the next tick cannot fire before the previous one
// resolves.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chessclient/internal/game"
	"chessclient/internal/present"
	"chessclient/internal/session"
)

// DefaultInterval is the reconciliation period.
const DefaultInterval = 500 * time.Millisecond

// Gateway is the slice of the server gateway the poller needs.
type Gateway interface {
	Snapshot(ctx context.Context, gameID string) (*game.Snapshot, error)
	Messages(ctx context.Context, gameID string, reset bool) ([]game.ChatMessage, error)
}

// Widget is the rendered board the poller force-syncs.
type Widget interface {
	Position() game.Position
	SetPosition(game.Position)
}

// Config tunes the poll loop.
type Config struct {
	Interval time.Duration
	// StopOnEnd halts the loop after an ended snapshot has been
	// applied; no further network calls happen afterwards. Disable to
	// keep polling a finished game forever.
	StopOnEnd bool
}

// Poller runs the reconciliation loop for one game.
type Poller struct {
	cfg    Config
	gw     Gateway
	sess   *session.Session
	widget Widget
	disp   present.Display
	sounds present.SoundPlayer
	log    zerolog.Logger
}

// New builds a poller. A zero interval falls back to DefaultInterval.
func New(cfg Config, gw Gateway, sess *session.Session, widget Widget, disp present.Display, sounds present.SoundPlayer) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Poller{
		cfg:    cfg,
		gw:     gw,
		sess:   sess,
		widget: widget,
		disp:   disp,
		sounds: sounds,
		log:    log.With().Str("component", "poller").Logger(),
	}
}

// ApplyInitial renders the first snapshot in full: board, panels,
// clocks, evaluation, and the complete chat history (reset fetch).
// Call once, before Run, with the snapshot the session was built from.
func (p *Poller) ApplyInitial(ctx context.Context, snap *game.Snapshot) {
	p.widget.SetPosition(snap.Position)
	p.disp.SetText(present.SlotStatus, present.StatusText(snap.Status))
	p.disp.SetText(present.SlotTurn, present.TurnText(snap.Turn))
	p.renderScoreboard(snap)

	msgs, err := p.gw.Messages(ctx, p.sess.GameID, true)
	if err == nil {
		if fresh := p.sess.MarkSeen(msgs); len(fresh) > 0 {
			p.disp.AppendMessages(fresh)
		}
	}
}

// Run ticks until the context is cancelled or, with StopOnEnd, until an
// ended snapshot has been applied.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ended := p.Tick(ctx); ended && p.cfg.StopOnEnd {
				p.log.Info().Str("game", p.sess.GameID).Msg("game over, poller stopping")
				return nil
			}
		}
	}
}

// Tick runs one reconciliation pass and reports whether the snapshot
// said the game is over. A failed fetch is no new information; the
// previous render stands until the next tick.
func (p *Poller) Tick(ctx context.Context) bool {
	snap, err := p.gw.Snapshot(ctx, p.sess.GameID)
	if err != nil {
		return false
	}

	// The widget, not the cache, is compared: this corrects any
	// divergence, including an optimistic move that never confirmed.
	if !snap.Position.Equal(p.widget.Position()) {
		p.widget.SetPosition(snap.Position)
	}

	delta := p.sess.ApplySnapshot(snap)
	if delta.StatusChanged {
		p.disp.SetText(present.SlotStatus, present.StatusText(snap.Status))
		if delta.EnteredCheck {
			p.sounds.Play(present.SoundCheck)
		}
	}
	if delta.TurnChanged {
		p.disp.SetText(present.SlotTurn, present.TurnText(snap.Turn))
	}
	p.renderScoreboard(snap)

	// The rendered-log guard drops a redelivered history, so a server
	// that replays old entries cannot produce duplicate chat lines.
	msgs, err := p.gw.Messages(ctx, p.sess.GameID, false)
	if err == nil {
		if fresh := p.sess.MarkSeen(msgs); len(fresh) > 0 {
			p.disp.AppendMessages(fresh)
		}
	}

	return snap.End
}

// renderScoreboard maps clocks and names to the current/second player
// slots by orientation and recomputes the evaluation split. All of
// these writes are idempotent, so they run every tick.
func (p *Poller) renderScoreboard(snap *game.Snapshot) {
	curClock, secClock := snap.WhiteTime, snap.BlackTime
	curName, secName := snap.WhiteName(), snap.BlackName()
	if p.sess.Orientation == game.Black {
		curClock, secClock = secClock, curClock
		curName, secName = secName, curName
	}
	p.disp.SetText(present.SlotCurrentClock, present.FormatClock(curClock))
	p.disp.SetText(present.SlotSecondClock, present.FormatClock(secClock))
	p.disp.SetText(present.SlotCurrentPlayer, curName)
	p.disp.SetText(present.SlotSecondPlayer, secName)

	white, black := present.SplitEvaluation(snap.Evaluation)
	p.disp.SetEvaluationBar(white, black)
}
