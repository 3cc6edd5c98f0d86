package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"connect3d/config"
	"connect3d/session"
	"connect3d/types"
)

// MenuColors defines the Nord-inspired color palette for the menu screens.
var MenuColors = struct {
	Border      tcell.Color
	Title       tcell.Color
	Label       tcell.Color
	Hint        tcell.Color
	Selected    tcell.Color
	ButtonFocus tcell.Color
	ButtonText  tcell.Color
}{
	Border:      tcell.PaletteColor(60),
	Title:       tcell.PaletteColor(255),
	Label:       tcell.PaletteColor(250),
	Hint:        tcell.PaletteColor(245),
	Selected:    tcell.PaletteColor(109),
	ButtonFocus: tcell.PaletteColor(109),
	ButtonText:  tcell.PaletteColor(255),
}

// Palette holds the game colours from the theme.
type Palette struct {
	Board     tcell.Color
	Line      tcell.Color
	Player1   tcell.Color
	Player2   tcell.Color
	Highlight tcell.Color
	Info      tcell.Color
	Warning   tcell.Color
	Error     tcell.Color
}

// NewPalette resolves the theme's 256-colour codes.
func NewPalette(t config.Theme) Palette {
	return Palette{
		Board:     tcell.PaletteColor(t.Colors.BoardColor),
		Line:      tcell.PaletteColor(t.Colors.LineColor),
		Player1:   tcell.PaletteColor(t.Colors.Player1Color),
		Player2:   tcell.PaletteColor(t.Colors.Player2Color),
		Highlight: tcell.PaletteColor(t.Colors.HighlightColor),
		Info:      tcell.PaletteColor(t.Colors.InfoColor),
		Warning:   tcell.PaletteColor(t.Colors.WarningColor),
		Error:     tcell.PaletteColor(t.Colors.ErrorColor),
	}
}

// Player returns the colour of p's pieces.
func (p Palette) Player(pl types.Player) tcell.Color {
	if pl == types.Player2 {
		return p.Player2
	}
	return p.Player1
}

// Tone returns the colour a message tone is shown in.
func (p Palette) Tone(t session.Tone) tcell.Color {
	switch t {
	case session.ToneWarning:
		return p.Warning
	case session.ToneError:
		return p.Error
	case session.TonePlayer1:
		return p.Player1
	case session.TonePlayer2:
		return p.Player2
	}
	return p.Info
}

// colorTag formats c as a tview colour tag.
func colorTag(c tcell.Color) string {
	return fmt.Sprintf("[#%06x]", c.Hex())
}
