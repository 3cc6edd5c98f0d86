package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"connect3d/engine"
)

// GameSetupUI provides a form for configuring a new session.
type GameSetupUI struct {
	form      *tview.Form
	flex      *tview.Flex
	onStart   func(engine.GameConfig)
	onHistory func()
	onColors  func()
	onQuit    func()

	cfg engine.GameConfig
}

// NewGameSetup creates a setup form prefilled from defaults.
func NewGameSetup(defaults engine.GameConfig, onStart func(engine.GameConfig), onHistory func(), onColors func(), onQuit func()) *GameSetupUI {
	setup := &GameSetupUI{
		onStart:   onStart,
		onHistory: onHistory,
		onColors:  onColors,
		onQuit:    onQuit,
		cfg:       defaults,
	}

	modes := []string{"Two players", "Against the bot"}
	levels := []string{"1 (easiest)", "2", "3 (hardest)"}

	modeIndex := 0
	if defaults.Mode == engine.ModePvE {
		modeIndex = 1
	}
	levelIndex := defaults.Difficulty - 1
	if levelIndex < 0 || levelIndex >= len(levels) {
		levelIndex = 1
	}

	form := tview.NewForm()

	form.AddDropDown("Mode", modes, modeIndex, func(option string, index int) {
		if index == 1 {
			setup.cfg.Mode = engine.ModePvE
		} else {
			setup.cfg.Mode = engine.ModePvP
		}
	})

	form.AddDropDown("Bot Strength", levels, levelIndex, func(option string, index int) {
		setup.cfg.Difficulty = index + 1
	})

	form.AddInputField("Server", defaults.ServerURL, 40, nil, func(text string) {
		setup.cfg.ServerURL = strings.TrimSpace(text)
	})

	form.AddButton("Start Game", func() {
		onStart(setup.cfg)
	})

	form.AddButton("History", func() {
		if onHistory != nil {
			onHistory()
		}
	})

	form.AddButton("Colors", func() {
		if onColors != nil {
			onColors()
		}
	})

	form.AddButton("Quit", func() {
		onQuit()
	})

	form.SetBorder(true)
	form.SetTitle(" New Session ")
	form.SetTitleAlign(tview.AlignCenter)
	form.SetBorderColor(MenuColors.Border)
	form.SetTitleColor(MenuColors.Title)
	form.SetLabelColor(MenuColors.Label)
	form.SetButtonBackgroundColor(MenuColors.ButtonFocus)
	form.SetButtonTextColor(MenuColors.ButtonText)

	helpText := tview.NewTextView().
		SetText("Tab/Shift+Tab: navigate fields  |  Arrow keys: change dropdown  |  Enter: confirm").
		SetTextAlign(tview.AlignCenter)
	helpText.SetTextColor(MenuColors.Hint)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(helpText, 1, 0, false)

	setup.form = form
	setup.flex = flex
	return setup
}

// Form returns the flex container with form and help text.
func (s *GameSetupUI) Form() *tview.Flex {
	return s.flex
}

// Config returns the configuration currently entered.
func (s *GameSetupUI) Config() engine.GameConfig {
	return s.cfg
}

// SetInputCapture sets the input capture function for the form.
func (s *GameSetupUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	s.form.SetInputCapture(capture)
}
