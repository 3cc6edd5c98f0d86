// connect3d is a terminal client for networked 3D Connect Four.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"connect3d/animation"
	"connect3d/config"
	"connect3d/engine"
	"connect3d/engine/bot"
	"connect3d/engine/devserver"
	"connect3d/engine/httpapi"
	"connect3d/logging"
	"connect3d/picking"
	"connect3d/record"
	"connect3d/session"
	"connect3d/types"
	"connect3d/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

// Command-line flags
var (
	flagServer     = flag.String("server", "", "Game server base URL, including the API prefix")
	flagLocal      = flag.Bool("local", false, "Run the built-in game server and play against it")
	flagMode       = flag.String("mode", "", "Game mode (pvp or pve)")
	flagDifficulty = flag.Int("difficulty", 0, "Bot strength (1-3)")
	flagQuickStart = flag.Bool("play", false, "Start a session immediately with defaults")
	flagFocus      = flag.Bool("focus", false, "Start in focus mode (board only)")
	flagEnv        = flag.String("env", ".env", "File with environment overrides")
	flagDebug      = flag.Bool("debug", false, "Write debug entries to the log")
	flagVersion    = flag.Bool("version", false, "Print version and exit")
)

// client holds the screens and the session they drive. Every callback
// reaches the session through it.
type client struct {
	cfg      *config.Config
	log      *zap.Logger
	localURL string

	app         *tview.Application
	rootPage    *tview.Pages
	mainFocus   tview.Primitive
	setupForm   tview.Primitive
	gameView    *ui.GameView
	history     *ui.HistoryBrowserUI
	colorConfig *ui.ColorConfigUI

	anim    *animation.Animator
	machine *session.Machine
	ctrl    *picking.Controller
}

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("connect3d %s\n", Version)
		return
	}

	if err := config.LoadEnv(*flagEnv); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	log := logging.Nop()
	if path, err := logging.DefaultPath(); err == nil {
		if l, err := logging.New(path, *flagDebug); err == nil {
			log = l
		}
	}
	defer log.Sync()
	log.Info("starting", zap.String("version", Version))

	c := &client{cfg: cfg, log: log}

	if *flagLocal {
		srv, base, err := devserver.New(cfg.Geometry(), log.Named("devserver")).Listen(cfg.Server.LocalAddr)
		if err != nil {
			fmt.Println("Error: could not start the local server:", err)
			os.Exit(1)
		}
		defer srv.Close()
		c.localURL = base
	}

	quickStart := *flagQuickStart || *flagMode != "" || *flagDifficulty > 0 || *flagFocus
	c.build(quickStart)

	if quickStart {
		if *flagFocus {
			c.gameView.SetFocusMode(true)
		}
		c.startGame(c.defaultGameConfig())
	}

	go c.animate()

	if err := c.app.SetRoot(c.rootPage, true).Run(); err != nil {
		panic(err)
	}
}

// build creates every screen. The game screen is shown first when
// quickStart is set.
func (c *client) build(quickStart bool) {
	c.app = tview.NewApplication()
	c.app.EnableMouse(true)
	c.rootPage = tview.NewPages()
	c.rootPage.SetBorder(true).SetTitle(" ◆ connect3d ")

	c.anim = animation.New(c.cfg.Animation.Gravity, c.cfg.Animation.FrameRate)

	c.gameView = ui.NewGameView(c.cfg, c.rootPage, c.dispatch, func() {
		if c.mainFocus != nil {
			c.app.SetFocus(c.mainFocus)
		}
	})
	c.gameView.Board.Box.SetInputCapture(c.handleGameKey)

	setupUI := ui.NewGameSetup(c.defaultGameConfig(),
		c.startGame,
		func() {
			c.history.Refresh()
			c.showPage("history", c.history.Flex())
		},
		func() {
			c.showPage("colors", c.colorConfig.Flex())
		},
		func() {
			c.app.Stop()
		},
	)
	c.setupForm = setupUI.Form()

	c.history = ui.NewHistoryBrowser(record.DefaultDir(), ui.NewPalette(c.cfg.Theme), func() {
		c.showPage("setup", c.setupForm)
	})

	c.colorConfig = ui.NewColorConfig(c.cfg, func() {
		c.gameView.SetConfig(c.cfg)
		c.showPage("setup", c.setupForm)
	}, func(err error) {
		c.log.Warn("config not saved", zap.Error(err))
		c.gameView.ShowTransientMessage("Colours not saved, they apply to this run only", session.ToneWarning, c.cfg.Game.PopupDuration)
	})
	c.colorConfig.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			c.gameView.SetConfig(c.cfg)
			c.showPage("setup", c.setupForm)
			return nil
		}
		if event.Key() == tcell.KeyTab {
			c.colorConfig.ToggleMode()
			return nil
		}
		return event
	})

	c.rootPage.AddPage("setup", ui.CreateCenteredForm(c.setupForm, 64), true, !quickStart)
	c.rootPage.AddPage("game", c.gameView.Frame(), true, quickStart)
	c.rootPage.AddPage("history", c.history.Flex(), true, false)
	c.rootPage.AddPage("colors", c.colorConfig.Flex(), true, false)
	c.mainFocus = c.setupForm
}

// dispatch runs f on the UI goroutine.
func (c *client) dispatch(f func()) {
	c.app.QueueUpdateDraw(f)
}

// showPage switches to page name and remembers what should hold focus
// while popups come and go.
func (c *client) showPage(name string, focus tview.Primitive) {
	c.rootPage.SwitchToPage(name)
	if focus != nil {
		c.mainFocus = focus
		c.app.SetFocus(focus)
	}
}

// defaultGameConfig creates a GameConfig from the config file and
// command-line flags.
func (c *client) defaultGameConfig() engine.GameConfig {
	gameCfg := c.cfg.GameConfig()

	if *flagServer != "" {
		gameCfg.ServerURL = *flagServer
	}
	if c.localURL != "" {
		gameCfg.ServerURL = c.localURL
	}

	if m := engine.Mode(*flagMode); m.Valid() {
		gameCfg.Mode = m
	}

	if *flagDifficulty >= 1 && *flagDifficulty <= 3 {
		gameCfg.Difficulty = *flagDifficulty
	}

	return gameCfg
}

// startGame wires a new session for gameCfg and starts it.
func (c *client) startGame(gameCfg engine.GameConfig) {
	if c.machine != nil && c.machine.State() != session.Idle {
		c.log.Warn("previous session still running", zap.Stringer("state", c.machine.State()))
		c.gameView.ShowTransientMessage("Previous session is still closing", session.ToneWarning, c.cfg.Game.PopupDuration)
		return
	}
	gameCfg.Timeout = c.cfg.Server.Timeout
	grid := c.cfg.Geometry()

	auth := httpapi.NewClient(gameCfg, httpapi.WithLogger(c.log.Named("http")))
	rec := record.NewRecorder(record.DefaultDir(), grid, gameCfg.Difficulty, c.log.Named("record"))
	rec.OnError(func(error) {
		c.gameView.ShowTransientMessage("Round record could not be saved", session.ToneWarning, c.cfg.Game.PopupDuration)
	})
	c.gameView.SetRecorder(rec)

	opts := []session.Option{
		session.WithDispatcher(c.dispatch),
		session.WithLogger(c.log.Named("session")),
		session.WithRecorder(c.gameView),
		session.WithTimings(c.cfg.Timings()),
	}
	if gameCfg.Mode == engine.ModePvE {
		opts = append(opts, session.WithBot(bot.New(gameCfg.Difficulty, time.Now().UnixNano())))
	}

	c.anim.Clear()
	c.gameView.Board.ClearPieces()
	c.gameView.Popups.Clear()

	m := session.New(auth, grid, c.gameView.Board, c.anim, c.gameView, opts...)
	ctrl := picking.NewController(grid, c.gameView.Board.Camera(), c.gameView.Board, m, c.gameView.IsChrome,
		func(col types.BoardColumn) {
			if err := m.SelectColumn(col); err != nil {
				c.log.Debug("selection ignored", zap.Stringer("column", col), zap.Error(err))
			}
		})

	c.gameView.Board.OnPointer(ctrl.PointerMove)
	c.gameView.Board.OnClick(func(x, y int) { ctrl.Click(x, y) })
	m.OnChange(func(s session.State, _ types.SessionState) {
		c.gameView.SetPhase(s)
		ctrl.Recolor()
	})
	c.gameView.Panel.SetMode(gameCfg.Mode)
	c.machine, c.ctrl = m, ctrl

	c.log.Info("starting session",
		zap.String("server", gameCfg.ServerURL),
		zap.String("mode", string(gameCfg.Mode)),
		zap.Int("difficulty", gameCfg.Difficulty))

	c.showPage("game", c.gameView.Board.Box)
	if err := m.Start(context.Background()); err != nil {
		c.log.Warn("start rejected", zap.Error(err))
	}
}

// leaveGame ends the session and goes back to the setup screen.
func (c *client) leaveGame() {
	if c.machine != nil {
		err := c.machine.ReturnToMenu()
		if errors.Is(err, session.ErrBusy) {
			c.gameView.ShowTransientMessage("Waiting for the server, try again", session.ToneInfo, c.cfg.Game.PopupDuration)
			return
		}
		if err != nil {
			c.log.Warn("return to menu", zap.Error(err))
		}
	}
	if c.ctrl != nil {
		c.ctrl.Clear()
	}
	c.showPage("setup", c.setupForm)
}

// handleGameKey provides the keyboard fallback for pointer input.
func (c *client) handleGameKey(event *tcell.EventKey) *tcell.EventKey {
	if c.ctrl == nil {
		return event
	}
	switch event.Key() {
	case tcell.KeyUp:
		c.ctrl.MoveCursor(0, -1)
	case tcell.KeyDown:
		c.ctrl.MoveCursor(0, 1)
	case tcell.KeyLeft:
		c.ctrl.MoveCursor(-1, 0)
	case tcell.KeyRight:
		c.ctrl.MoveCursor(1, 0)
	case tcell.KeyEnter:
		c.ctrl.Activate()
	case tcell.KeyEscape:
		c.ctrl.Clear()
	case tcell.KeyRune:
		switch event.Rune() {
		case 'h':
			c.ctrl.MoveCursor(-1, 0)
		case 'j':
			c.ctrl.MoveCursor(0, 1)
		case 'k':
			c.ctrl.MoveCursor(0, -1)
		case 'l':
			c.ctrl.MoveCursor(1, 0)
		case 'f':
			c.gameView.ToggleFocusMode()
		case 'q':
			c.leaveGame()
			return nil
		}
	}
	return event
}

// animate steps falling pieces at the configured frame rate.
func (c *client) animate() {
	ticker := time.NewTicker(time.Second / time.Duration(c.cfg.Animation.FrameRate))
	defer ticker.Stop()
	for range ticker.C {
		c.app.QueueUpdate(func() {
			if c.anim.Tick() {
				c.app.ForceDraw()
			}
		})
	}
}
