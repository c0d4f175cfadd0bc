// Package ui renders the game in a terminal with termbox: the board
// widget the handshake and poller drive, the text panels and
// evaluation bar the poller paints, and the keyboard gesture loop that
// stands in for drag-and-drop (select a piece, then its destination).
package ui

import (
	"context"
	"fmt"
	"os"
	"sync"

	termbox "github.com/nsf/termbox-go"

	"chessclient/internal/game"
	"chessclient/internal/present"
)

// Controller is the gesture surface the board drives; the move
// handshake controller implements it.
type Controller interface {
	HandleDragStart(ctx context.Context, source, piece string) bool
	HandleDrop(ctx context.Context, proposal game.MoveProposal, oldPos game.Position)
	HandlePositionChanged()
}

const (
	boardLeft = 3
	boardTop  = 1
	cellW     = 3
	panelLeft = boardLeft + 8*cellW + 4
	barWidth  = 20
	chatRows  = 8
)

// UI owns the terminal. All mutating methods take the lock and redraw,
// so the poller goroutine and the event loop can both paint safely.
type UI struct {
	mu          sync.Mutex
	orientation game.Color
	pos         game.Position
	marks       map[string]present.HighlightKind
	texts       map[present.TextSlot]string
	chat        []game.ChatMessage
	barWhite    float64

	cursorFile int
	cursorRank int
	selected   string
	preDrag    game.Position
	typing     bool
	input      []rune
}

// New initializes termbox and returns the UI.
func New(orientation game.Color) (*UI, error) {
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	return &UI{
		orientation: orientation,
		pos:         game.Position{},
		marks:       map[string]present.HighlightKind{},
		texts:       map[present.TextSlot]string{},
		barWhite:    0.5,
	}, nil
}

// Close restores the terminal.
func (u *UI) Close() { termbox.Close() }

// Position returns the currently rendered position.
func (u *UI) Position() game.Position {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.pos.Clone()
}

// SetPosition forces the rendered position.
func (u *UI) SetPosition(p game.Position) {
	u.mu.Lock()
	u.pos = p.Clone()
	u.drawLocked()
	u.mu.Unlock()
}

// SetHighlights replaces all square marks.
func (u *UI) SetHighlights(marks map[string]present.HighlightKind) {
	u.mu.Lock()
	u.marks = marks
	u.drawLocked()
	u.mu.Unlock()
}

// SetText replaces a text panel's contents.
func (u *UI) SetText(slot present.TextSlot, text string) {
	u.mu.Lock()
	if u.texts[slot] != text {
		u.texts[slot] = text
		u.drawLocked()
	}
	u.mu.Unlock()
}

// SetEvaluationBar repaints the advantage bar.
func (u *UI) SetEvaluationBar(white, black float64) {
	u.mu.Lock()
	u.barWhite = white
	u.drawLocked()
	u.mu.Unlock()
}

// AppendMessages adds chat entries; the newest stay in view.
func (u *UI) AppendMessages(msgs []game.ChatMessage) {
	u.mu.Lock()
	u.chat = append(u.chat, msgs...)
	u.drawLocked()
	u.mu.Unlock()
}

// Play rings the terminal bell. A bell restarts on every trigger, so
// the restart-from-zero contract holds trivially.
func (u *UI) Play(present.Sound) {
	_, _ = os.Stdout.WriteString("\a")
}

// Loop runs the keyboard gesture loop until quit or cancellation.
// send posts a chat message; it is fire-and-forget.
func (u *UI) Loop(ctx context.Context, ctrl Controller, send func(context.Context, string) error) error {
	events := make(chan termbox.Event)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	u.mu.Lock()
	u.drawLocked()
	u.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if ev.Type != termbox.EventKey {
				continue
			}
			if quit := u.handleKey(ctx, ev, ctrl, send); quit {
				return nil
			}
		}
	}
}

func (u *UI) handleKey(ctx context.Context, ev termbox.Event, ctrl Controller, send func(context.Context, string) error) bool {
	u.mu.Lock()
	typing := u.typing
	u.mu.Unlock()

	if typing {
		u.handleTypingKey(ctx, ev, send)
		return false
	}

	switch {
	case ev.Key == termbox.KeyCtrlC || ev.Ch == 'q':
		return true
	case ev.Ch == 't':
		u.mu.Lock()
		u.typing = true
		u.input = nil
		u.drawLocked()
		u.mu.Unlock()
	case ev.Key == termbox.KeyArrowLeft:
		u.moveCursor(-1, 0)
	case ev.Key == termbox.KeyArrowRight:
		u.moveCursor(1, 0)
	case ev.Key == termbox.KeyArrowUp:
		u.moveCursor(0, 1)
	case ev.Key == termbox.KeyArrowDown:
		u.moveCursor(0, -1)
	case ev.Key == termbox.KeyEsc:
		u.mu.Lock()
		u.selected = ""
		u.mu.Unlock()
		ctrl.HandlePositionChanged()
	case ev.Key == termbox.KeyEnter || ev.Key == termbox.KeySpace:
		u.handleSelect(ctx, ctrl)
	}
	return false
}

func (u *UI) handleTypingKey(ctx context.Context, ev termbox.Event, send func(context.Context, string) error) {
	u.mu.Lock()
	switch {
	case ev.Key == termbox.KeyEsc:
		u.typing = false
		u.input = nil
	case ev.Key == termbox.KeyEnter:
		text := string(u.input)
		u.typing = false
		u.input = nil
		if text != "" {
			go func() { _ = send(ctx, text) }()
		}
	case ev.Key == termbox.KeyBackspace || ev.Key == termbox.KeyBackspace2:
		if len(u.input) > 0 {
			u.input = u.input[:len(u.input)-1]
		}
	case ev.Key == termbox.KeySpace:
		u.input = append(u.input, ' ')
	case ev.Ch != 0:
		u.input = append(u.input, ev.Ch)
	}
	u.drawLocked()
	u.mu.Unlock()
}

// handleSelect implements the two-step gesture: the first select picks
// up a piece (drag-start), the second drops it.
func (u *UI) handleSelect(ctx context.Context, ctrl Controller) {
	u.mu.Lock()
	sq := squareName(u.cursorFile, u.cursorRank)
	selected := u.selected
	piece := u.pos[sq]
	u.mu.Unlock()

	if selected == "" {
		if piece == "" {
			return
		}
		if ctrl.HandleDragStart(ctx, sq, piece) {
			u.mu.Lock()
			u.selected = sq
			u.preDrag = u.pos.Clone()
			u.drawLocked()
			u.mu.Unlock()
		}
		return
	}

	if sq == selected {
		// Dropping a piece back on its square cancels the gesture.
		u.mu.Lock()
		u.selected = ""
		u.mu.Unlock()
		ctrl.HandlePositionChanged()
		return
	}

	u.mu.Lock()
	old := u.preDrag
	u.selected = ""
	u.pos = u.pos.Apply(selected, sq) // optimistic, like the drag widget
	u.drawLocked()
	u.mu.Unlock()

	ctrl.HandleDrop(ctx, game.MoveProposal{Source: selected, Destination: sq}, old)
	ctrl.HandlePositionChanged()
}

func (u *UI) moveCursor(df, dr int) {
	u.mu.Lock()
	u.cursorFile = clamp(u.cursorFile+df, 0, 7)
	u.cursorRank = clamp(u.cursorRank+dr, 0, 7)
	u.drawLocked()
	u.mu.Unlock()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func squareName(file, rank int) string {
	return string(rune('a'+file)) + string(rune('1'+rank))
}

var glyphs = map[string]rune{
	"wK": 'K', "wQ": 'Q', "wR": 'R', "wB": 'B', "wN": 'N', "wP": 'P',
	"bK": 'k', "bQ": 'q', "bR": 'r', "bB": 'b', "bN": 'n', "bP": 'p',
}

func (u *UI) drawLocked() {
	_ = termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			file, rank := col, 7-row
			if u.orientation == game.Black {
				file, rank = 7-col, row
			}
			sq := squareName(file, rank)

			bg := termbox.ColorDefault
			if (file+rank)%2 == 1 {
				bg = termbox.ColorBlue
			}
			if kind, ok := u.marks[sq]; ok {
				if kind == present.HighlightCapture {
					bg = termbox.ColorRed
				} else {
					bg = termbox.ColorGreen
				}
			}
			if sq == u.selected {
				bg = termbox.ColorYellow
			}

			fg := termbox.ColorWhite
			ch := ' '
			if piece, ok := u.pos[sq]; ok {
				ch = glyphs[piece]
				if game.PieceColor(piece) == game.Black {
					fg = termbox.ColorMagenta
				}
			}
			if file == u.cursorFile && rank == u.cursorRank {
				fg |= termbox.AttrReverse
				bg |= termbox.AttrReverse
			}

			x := boardLeft + col*cellW
			y := boardTop + row
			termbox.SetCell(x, y, ' ', fg, bg)
			termbox.SetCell(x+1, y, ch, fg, bg)
			termbox.SetCell(x+2, y, ' ', fg, bg)
		}
	}
	for col := 0; col < 8; col++ {
		file := col
		if u.orientation == game.Black {
			file = 7 - col
		}
		termbox.SetCell(boardLeft+col*cellW+1, boardTop+8, rune('a'+file), termbox.ColorDefault, termbox.ColorDefault)
	}
	for row := 0; row < 8; row++ {
		rank := 7 - row
		if u.orientation == game.Black {
			rank = row
		}
		termbox.SetCell(boardLeft-2, boardTop+row, rune('1'+rank), termbox.ColorDefault, termbox.ColorDefault)
	}

	u.printLine(panelLeft, boardTop, "%s  %s", u.texts[present.SlotSecondPlayer], u.texts[present.SlotSecondClock])
	u.printLine(panelLeft, boardTop+1, "%s  %s", u.texts[present.SlotCurrentPlayer], u.texts[present.SlotCurrentClock])
	u.printLine(panelLeft, boardTop+3, "%s", u.texts[present.SlotTurn])
	u.printLine(panelLeft, boardTop+4, "%s", u.texts[present.SlotStatus])

	whiteCells := int(u.barWhite*barWidth + 0.5)
	for i := 0; i < barWidth; i++ {
		color := termbox.ColorBlack
		if i < whiteCells {
			color = termbox.ColorWhite
		}
		termbox.SetCell(panelLeft+i, boardTop+6, ' ', termbox.ColorDefault, color)
	}

	start := len(u.chat) - chatRows
	if start < 0 {
		start = 0
	}
	for i, msg := range u.chat[start:] {
		u.printLine(panelLeft, boardTop+8+i, "%s: %s", msg.Sender, msg.Content)
	}

	if u.typing {
		u.printLine(boardLeft, boardTop+11, "say: %s_", string(u.input))
	} else {
		u.printLine(boardLeft, boardTop+11, "arrows move, enter select, t chat, q quit")
	}

	_ = termbox.Flush()
}

func (u *UI) printLine(x, y int, format string, args ...any) {
	for i, ch := range fmt.Sprintf(format, args...) {
		termbox.SetCell(x+i, y, ch, termbox.ColorDefault, termbox.ColorDefault)
	}
}
