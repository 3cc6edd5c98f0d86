package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"connect3d/config"
	"connect3d/engine"
	"connect3d/session"
	"connect3d/types"
)

// GameView is the in-game screen: the board, the score panel, a status
// hint and popups over all of it. It implements session.Notifier and
// session.Recorder, forwarding recorded moves to an optional next recorder.
type GameView struct {
	Board  *BoardView
	Panel  *ScorePanel
	Popups *Popups

	hint      *tview.TextView
	frame     *tview.Flex
	focusMode bool
	phase     session.State
	inSession bool
	next      session.Recorder
}

// NewGameView builds the game screen. Popups are added as pages of pages.
func NewGameView(c *config.Config, pages *tview.Pages, dispatch func(func()), refocus func()) *GameView {
	palette := NewPalette(c.Theme)
	g := &GameView{
		Board:  NewBoardView(c),
		Panel:  NewScorePanel(palette),
		Popups: NewPopups(pages, palette, dispatch, refocus),
		hint:   tview.NewTextView(),
	}
	g.hint.SetDynamicColors(true)
	g.hint.SetBorder(false)
	g.frame = CreateGameLayout(g.Board, g.Panel, g.hint)
	g.refreshHint()
	return g
}

// Frame returns the layout to add as a page.
func (g *GameView) Frame() *tview.Flex {
	return g.frame
}

// SetConfig applies a changed theme to every part of the view.
func (g *GameView) SetConfig(c *config.Config) {
	palette := NewPalette(c.Theme)
	g.Board.SetConfig(c)
	g.Panel.palette = palette
	g.Panel.refresh()
	g.Popups.palette = palette
}

// SetRecorder sets the recorder that receives moves after the panel.
func (g *GameView) SetRecorder(next session.Recorder) {
	g.next = next
}

// ShowTransientMessage implements session.Notifier.
func (g *GameView) ShowTransientMessage(text string, tone session.Tone, d time.Duration) {
	g.Popups.ShowTransientMessage(text, tone, d)
}

// UpdateScorePanel implements session.Notifier.
func (g *GameView) UpdateScorePanel(state types.SessionState) {
	g.inSession = state.InSession
	g.Panel.UpdateScorePanel(state)
	g.refreshHint()
}

// SetPhase shows the phase of the session.
func (g *GameView) SetPhase(s session.State) {
	g.phase = s
	g.Panel.SetPhase(s)
	g.refreshHint()
}

// Begin implements session.Recorder.
func (g *GameView) Begin(mode engine.Mode) {
	g.Panel.SetMode(mode)
	g.Panel.ClearMoves()
	if g.next != nil {
		g.next.Begin(mode)
	}
}

// Move implements session.Recorder.
func (g *GameView) Move(p types.Player, pl types.Placement) {
	g.Panel.AddMove(p, pl)
	if g.next != nil {
		g.next.Move(p, pl)
	}
}

// Finish implements session.Recorder.
func (g *GameView) Finish(tag types.ResetTag, scores types.ScoreSnapshot) {
	if g.next != nil {
		g.next.Finish(tag, scores)
	}
}

// IsChrome reports whether a click at (x, y) lands on something other than
// the board panels.
func (g *GameView) IsChrome(x, y int) bool {
	return !g.Board.Contains(x, y) || g.Popups.Contains(x, y)
}

// ToggleFocusMode hides or shows the score panel and returns the new state.
func (g *GameView) ToggleFocusMode() bool {
	g.SetFocusMode(!g.focusMode)
	return g.focusMode
}

// SetFocusMode sets focus mode to the given state.
func (g *GameView) SetFocusMode(enabled bool) {
	g.focusMode = enabled
	g.frame.Clear()
	if enabled {
		g.frame.SetDirection(tview.FlexRow)
		g.frame.AddItem(g.Board.Box, 0, 1, true)
		g.frame.AddItem(g.hint, 1, 0, false)
	} else {
		boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
		boardRow.AddItem(g.Board.Box, 0, 1, true)
		boardRow.AddItem(g.Panel.Box(), 26, 0, false)
		g.frame.SetDirection(tview.FlexRow)
		g.frame.AddItem(boardRow, 0, 1, true)
		g.frame.AddItem(g.hint, 2, 0, false)
	}
	g.refreshHint()
}

// IsFocusMode returns true if focus mode is enabled.
func (g *GameView) IsFocusMode() bool {
	return g.focusMode
}

// Hint returns the status text.
func (g *GameView) Hint() string {
	return g.hint.GetText(false)
}

func (g *GameView) refreshHint() {
	if g.focusMode {
		g.hint.SetText("  f to toggle")
		return
	}

	var statusLine, controlsLine string
	switch {
	case !g.inSession:
		statusLine = "  No game running"
		controlsLine = "  q · return to menu"
	case g.phase == session.RoundOver:
		statusLine = "  Round over · next round starting"
		controlsLine = "  q · return to menu"
	case g.phase == session.MoveInFlight:
		statusLine = "  ◌ Waiting for the server..."
		controlsLine = "  q · return to menu"
	default:
		statusLine = "  Click a column or use the cursor"
		controlsLine = "  hjkl/↑↓←→ move   ⏎ drop   f focus   q menu"
	}
	g.hint.SetText(fmt.Sprintf("%s\n%s", statusLine, controlsLine))
}
