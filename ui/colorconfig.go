package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"connect3d/config"
)

type colorChoice struct {
	code int
	name string
}

// Background tones for the board panels.
var boardColors = []colorChoice{
	{233, "Near Black"},
	{235, "Charcoal"},
	{236, "Dark Gray"},
	{238, "Slate"},
	{17, "Navy Blue"},
	{18, "Deep Blue"},
	{22, "Dark Green"},
	{23, "Teal"},
	{52, "Dark Maroon"},
	{54, "Purple"},
	{94, "Saddle Brown"},
	{136, "Dark Brown"},
}

// Piece colours, bright enough to read on any board tone.
var pieceColors = []colorChoice{
	{196, "Red"},
	{202, "Orange"},
	{208, "Dark Orange"},
	{214, "Orange Gold"},
	{220, "Bright Yellow"},
	{226, "Yellow"},
	{46, "Green"},
	{51, "Cyan"},
	{45, "Sky Blue"},
	{33, "Blue"},
	{129, "Violet"},
	{201, "Magenta"},
	{231, "White"},
}

type colorTarget int

const (
	editBoard colorTarget = iota
	editPlayer1
	editPlayer2
)

func (t colorTarget) title() string {
	switch t {
	case editPlayer1:
		return " Player 1 Color (Tab: next) "
	case editPlayer2:
		return " Player 2 Color (Tab: next) "
	}
	return " Board Color (Tab: next) "
}

// ColorConfigUI provides a colour configuration screen with live preview.
type ColorConfigUI struct {
	flex      *tview.Flex
	colorList *tview.List
	preview   *tview.Box
	cfg       *config.Config
	onDone    func()
	onError   func(error)

	editing  colorTarget
	selected [3]int // board, player 1, player 2
}

// NewColorConfig creates a new colour configuration screen. Confirming a
// colour stores it in cfg and saves the config file; onError receives a
// failed save.
func NewColorConfig(cfg *config.Config, onDone func(), onError func(error)) *ColorConfigUI {
	cc := &ColorConfigUI{
		cfg:     cfg,
		onDone:  onDone,
		onError: onError,
		selected: [3]int{
			cfg.Theme.Colors.BoardColor,
			cfg.Theme.Colors.Player1Color,
			cfg.Theme.Colors.Player2Color,
		},
	}

	cc.colorList = tview.NewList()
	cc.colorList.SetBorder(true)
	cc.colorList.ShowSecondaryText(false)
	cc.populateColorList()

	cc.colorList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		choices := cc.choices()
		if index >= 0 && index < len(choices) {
			cc.selected[cc.editing] = choices[index].code
		}
	})

	cc.colorList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		cc.confirm()
	})

	cc.preview = tview.NewBox()
	cc.preview.SetBorder(true)
	cc.preview.SetTitle(" Board Preview ")
	cc.preview.SetDrawFunc(cc.drawPreview)

	cc.flex = tview.NewFlex().
		AddItem(cc.colorList, 30, 0, true).
		AddItem(cc.preview, 0, 1, false)

	return cc
}

// confirm applies the current choice and moves on to the next colour.
func (cc *ColorConfigUI) confirm() {
	if err := cc.Apply(); err != nil && cc.onError != nil {
		cc.onError(err)
	}
	if cc.editing == editPlayer2 {
		if cc.onDone != nil {
			cc.onDone()
		}
		return
	}
	cc.ToggleMode()
}

func (cc *ColorConfigUI) choices() []colorChoice {
	if cc.editing == editBoard {
		return boardColors
	}
	return pieceColors
}

func (cc *ColorConfigUI) populateColorList() {
	cc.colorList.Clear()
	cc.colorList.SetTitle(cc.editing.title())
	for i, c := range cc.choices() {
		cc.colorList.AddItem(fmt.Sprintf("[#%06x]████[-] %s (%d)",
			tcell.PaletteColor(c.code).Hex(), c.name, c.code),
			"", rune('a'+i), nil)
	}
	for i, c := range cc.choices() {
		if c.code == cc.selected[cc.editing] {
			cc.colorList.SetCurrentItem(i)
			break
		}
	}
}

// Apply stores the selected colours in the config and saves it. Save
// failures leave the colours applied for this run.
func (cc *ColorConfigUI) Apply() error {
	cc.cfg.Theme.Colors.BoardColor = cc.selected[editBoard]
	cc.cfg.Theme.Colors.Player1Color = cc.selected[editPlayer1]
	cc.cfg.Theme.Colors.Player2Color = cc.selected[editPlayer2]
	return cc.cfg.Save()
}

func (cc *ColorConfigUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	board := tcell.PaletteColor(cc.selected[editBoard])
	line := tcell.PaletteColor(cc.cfg.Theme.Colors.LineColor)
	players := [3]tcell.Color{0, tcell.PaletteColor(cc.selected[editPlayer1]), tcell.PaletteColor(cc.selected[editPlayer2])}

	const size = 4
	startX, startY := x+2, y+1
	if width < size*2+4 || height < size+4 {
		return x, y, width, height
	}

	// A bottom level with a few pieces from each side.
	sample := map[[2]int]int{{1, 1}: 1, {2, 1}: 2, {1, 2}: 2, {2, 2}: 1, {0, 3}: 1}

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			style := tcell.StyleDefault.Background(board).Foreground(line)
			ch := cc.cfg.Theme.Symbols.Empty
			if p, ok := sample[[2]int{col, row}]; ok {
				ch = cc.cfg.Theme.Symbols.Piece
				style = style.Foreground(players[p])
			}
			screen.SetContent(startX+col*cellWidth, startY+row, ch, nil, style)
			screen.SetContent(startX+col*cellWidth+1, startY+row, ' ', nil, style)
		}
	}

	info := fmt.Sprintf("Board: %d  P1: %d  P2: %d", cc.selected[editBoard], cc.selected[editPlayer1], cc.selected[editPlayer2])
	drawText(screen, startX, startY+size+1, info, tcell.StyleDefault)

	return x, y, width, height
}

// Flex returns the flex container for this UI.
func (cc *ColorConfigUI) Flex() *tview.Flex {
	return cc.flex
}

// SetInputCapture sets the input capture for the color list.
func (cc *ColorConfigUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	cc.colorList.SetInputCapture(capture)
}

// ToggleMode moves on to the next colour being edited.
func (cc *ColorConfigUI) ToggleMode() {
	cc.editing = (cc.editing + 1) % 3
	cc.populateColorList()
}
