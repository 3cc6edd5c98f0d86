package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"connect3d/engine"
	"connect3d/session"
	"connect3d/types"
)

// ScorePanel displays the tally and whose turn it is alongside the board.
type ScorePanel struct {
	box     *tview.TextView
	palette Palette
	state   types.SessionState
	phase   session.State
	mode    engine.Mode
	round   []string
}

// NewScorePanel creates an empty panel.
func NewScorePanel(palette Palette) *ScorePanel {
	panel := &ScorePanel{
		box:     tview.NewTextView(),
		palette: palette,
		state:   types.NewSessionState(),
		mode:    engine.ModePvP,
	}

	panel.box.SetDynamicColors(true)
	panel.box.SetBorder(false)
	panel.box.SetTextAlign(tview.AlignLeft)
	panel.refresh()

	return panel
}

// Box returns the underlying tview component.
func (p *ScorePanel) Box() *tview.TextView {
	return p.box
}

// UpdateScorePanel implements session.Notifier.
func (p *ScorePanel) UpdateScorePanel(state types.SessionState) {
	p.state = state
	p.refresh()
}

// SetPhase shows the session phase.
func (p *ScorePanel) SetPhase(s session.State) {
	p.phase = s
	p.refresh()
}

// SetMode shows who controls player 2.
func (p *ScorePanel) SetMode(m engine.Mode) {
	p.mode = m
	p.refresh()
}

// AddMove appends a placement to the move list of the current round.
func (p *ScorePanel) AddMove(pl types.Player, at types.Placement) {
	p.round = append(p.round, fmt.Sprintf("%s%d,%d,%d[-]", colorTag(p.palette.Player(pl)), at.X, at.Level+1, at.Z))
	p.refresh()
}

// ClearMoves empties the move list.
func (p *ScorePanel) ClearMoves() {
	p.round = nil
	p.refresh()
}

func (p *ScorePanel) playerName(pl types.Player) string {
	if pl == types.Player2 && p.mode == engine.ModePvE {
		return "Bot"
	}
	return pl.String()
}

// refresh updates the panel text.
func (p *ScorePanel) refresh() {
	var text string

	text += "[white::b]Score[-:-:-]\n"
	text += "[dimgray]──────────────────────[-:-:-]\n"
	text += fmt.Sprintf("[white]Games:[-:-:-] %d\n", p.state.GamesPlayed)
	text += fmt.Sprintf("%s●[-] %-9s %d\n", colorTag(p.palette.Player1), p.playerName(types.Player1), p.state.Player1Score)
	text += fmt.Sprintf("%s●[-] %-9s %d\n", colorTag(p.palette.Player2), p.playerName(types.Player2), p.state.Player2Score)

	text += "\n"
	switch {
	case !p.state.InSession:
		text += "[dimgray]No game running[-]\n"
	case p.phase == session.RoundOver:
		text += "[white]Round over[-]\n"
	default:
		turn := p.state.Turn()
		text += fmt.Sprintf("%s●[-] %s to move\n", colorTag(p.palette.Player(turn)), p.playerName(turn))
		if p.phase == session.MoveInFlight {
			text += "[dimgray]  ◌ waiting for server[-]\n"
		}
	}

	if len(p.round) > 0 {
		text += "\n[white::b]Moves[-:-:-]\n"
		text += "[dimgray]──────────────────────[-:-:-]\n"
		maxVisible := 10
		start := 0
		if len(p.round) > maxVisible {
			start = len(p.round) - maxVisible
		}
		for i := start; i < len(p.round); i++ {
			text += fmt.Sprintf("[dimgray]%3d.[-] %s\n", i+1, p.round[i])
		}
		if start > 0 {
			text += fmt.Sprintf("[dimgray]  ··· %d earlier[-]\n", start)
		}
	}

	p.box.SetText(text)
}

// Text returns the rendered panel text.
func (p *ScorePanel) Text() string {
	return p.box.GetText(false)
}

// CreateGameLayout creates the main game layout with the board, the score
// panel and a status bar.
func CreateGameLayout(board *BoardView, panel *ScorePanel, hint *tview.TextView) *tview.Flex {
	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(board.Box, 0, 1, true)
	boardRow.AddItem(panel.Box(), 26, 0, false)

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	mainFlex.AddItem(boardRow, 0, 1, true)
	mainFlex.AddItem(hint, 2, 0, false)

	return mainFlex
}

// CreateCenteredForm creates a centered container for the setup screen.
func CreateCenteredForm(form tview.Primitive, maxWidth int) *tview.Flex {
	centered := tview.NewFlex().SetDirection(tview.FlexColumn)
	centered.AddItem(nil, 0, 1, false)
	centered.AddItem(form, maxWidth, 0, true)
	centered.AddItem(nil, 0, 1, false)

	return centered
}
