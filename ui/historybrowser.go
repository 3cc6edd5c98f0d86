package ui

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"connect3d/board"
	"connect3d/record"
	"connect3d/types"
)

// HistoryBrowserUI provides a screen for browsing recorded rounds.
type HistoryBrowserUI struct {
	flex     *tview.Flex
	gameList *tview.List
	preview  *tview.Box
	hint     *tview.TextView
	dir      string
	palette  Palette
	games    []*record.RoundInfo
	boards   map[int]*board.Grid // cached final positions
	selected int
	onDone   func()
}

// NewHistoryBrowser creates a history browser over the records in dir.
func NewHistoryBrowser(dir string, palette Palette, onDone func()) *HistoryBrowserUI {
	hb := &HistoryBrowserUI{
		dir:     dir,
		palette: palette,
		onDone:  onDone,
		boards:  make(map[int]*board.Grid),
	}

	hb.gameList = tview.NewList()
	hb.gameList.SetBorder(true)
	hb.gameList.SetTitle(" Round History ")
	hb.gameList.ShowSecondaryText(false)
	hb.gameList.SetHighlightFullLine(true)
	hb.gameList.SetMainTextStyle(tcell.StyleDefault.Foreground(MenuColors.Label))
	hb.gameList.SetSelectedStyle(tcell.StyleDefault.
		Foreground(MenuColors.ButtonText).
		Background(MenuColors.ButtonFocus))

	hb.preview = tview.NewBox()
	hb.preview.SetBorder(true)
	hb.preview.SetTitle(" Preview ")
	hb.preview.SetDrawFunc(hb.drawPreview)

	hb.hint = tview.NewTextView()
	hb.hint.SetDynamicColors(true)
	hb.hint.SetBorder(false)
	hb.hint.SetText("  [dimgray]d[-] delete  [dimgray]q[-] back")

	hb.gameList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		hb.selected = index
	})
	hb.gameList.SetInputCapture(hb.handleInput)

	topRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(hb.gameList, 40, 0, true).
		AddItem(hb.preview, 0, 1, false)

	hb.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, true).
		AddItem(hb.hint, 1, 0, false)

	hb.loadGames()
	return hb
}

// Flex returns the flex container for this UI.
func (hb *HistoryBrowserUI) Flex() *tview.Flex {
	return hb.flex
}

// Refresh reloads the list from disk.
func (hb *HistoryBrowserUI) Refresh() {
	hb.boards = make(map[int]*board.Grid)
	hb.loadGames()
}

// Games returns the listed rounds.
func (hb *HistoryBrowserUI) Games() []*record.RoundInfo {
	return hb.games
}

func (hb *HistoryBrowserUI) loadGames() {
	hb.gameList.Clear()
	hb.games = nil
	hb.selected = 0

	games, err := record.List(hb.dir)
	if err != nil || len(games) == 0 {
		hb.gameList.AddItem("[dimgray]No rounds found[-]", "", 0, nil)
		return
	}

	hb.games = games
	for _, g := range games {
		label := fmt.Sprintf("%s  %s  %s", g.Date, g.Mode, resultLabel(g.Result))
		hb.gameList.AddItem(label, "", 0, nil)
	}
}

func resultLabel(re string) string {
	switch re {
	case "P1":
		return "Player 1 won"
	case "P2":
		return "Player 2 won"
	case "Draw":
		return "Draw"
	case "Void":
		return "Abandoned"
	}
	return "..."
}

func (hb *HistoryBrowserUI) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		if hb.onDone != nil {
			hb.onDone()
		}
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			if hb.onDone != nil {
				hb.onDone()
			}
			return nil
		case 'd':
			hb.deleteSelected()
			return nil
		}
	}
	return event
}

func (hb *HistoryBrowserUI) deleteSelected() {
	if hb.selected < 0 || hb.selected >= len(hb.games) {
		return
	}
	os.Remove(hb.games[hb.selected].FilePath)
	hb.Refresh()
}

// position returns the final position of round i, replaying it on first use.
func (hb *HistoryBrowserUI) position(i int) *board.Grid {
	if g, ok := hb.boards[i]; ok {
		return g
	}
	g, _, err := record.Replay(hb.games[i].FilePath)
	if err != nil {
		return nil
	}
	hb.boards[i] = g
	return g
}

// drawPreview renders the final position one level per panel, with the
// round's metadata underneath.
func (hb *HistoryBrowserUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	if hb.selected < 0 || hb.selected >= len(hb.games) {
		return x, y, width, height
	}
	game := hb.games[hb.selected]
	g := hb.position(hb.selected)
	if g == nil {
		return x, y, width, height
	}

	l := NewLayout(g.Dims())
	startX, startY := x+2, y+2
	if width < l.Width()+4 || height < l.Height()+8 {
		return x, y, width, height
	}

	emptyStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(240))
	dimStyle := tcell.StyleDefault.Foreground(MenuColors.Hint)
	for level := 0; level < l.Grid.Depth; level++ {
		lx, _ := l.Cell(0, level, 0)
		drawText(screen, startX+lx, startY-1, fmt.Sprintf("L%d", level+1), dimStyle)
		for z := 0; z < l.Grid.Rows; z++ {
			for bx := 0; bx < l.Grid.Columns; bx++ {
				cx, cy := l.Cell(bx, level, z)
				ch, style := '·', emptyStyle
				if p := g.At(bx, level, z); p == types.Player1 || p == types.Player2 {
					ch, style = '●', tcell.StyleDefault.Foreground(hb.palette.Player(p))
				}
				screen.SetContent(startX+cx, startY+cy, ch, nil, style)
			}
		}
	}

	infoStyle := tcell.StyleDefault.Foreground(MenuColors.Label)
	infoY := startY + l.Height() + 1
	drawText(screen, startX, infoY, fmt.Sprintf("%dx%dx%d", l.Grid.Columns, l.Grid.Rows, l.Grid.Depth), infoStyle)
	drawText(screen, startX+8, infoY, fmt.Sprintf("| %d moves", game.MoveCount), dimStyle)
	infoY++
	drawText(screen, startX, infoY, fmt.Sprintf("P1: %s", game.Player1), dimStyle)
	infoY++
	drawText(screen, startX, infoY, fmt.Sprintf("P2: %s", game.Player2), dimStyle)
	infoY++
	drawText(screen, startX, infoY, fmt.Sprintf("Result: %s", resultLabel(game.Result)), tcell.StyleDefault.Foreground(MenuColors.Selected))
	infoY++
	drawText(screen, startX, infoY, fmt.Sprintf("Tally after: %d games, %d-%d", game.Scores.GamesPlayed, game.Scores.Player1Score, game.Scores.Player2Score), dimStyle)

	return x, y, width, height
}
