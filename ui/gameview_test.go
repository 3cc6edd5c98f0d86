package ui

import (
	"testing"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect3d/config"
	"connect3d/engine"
	"connect3d/session"
	"connect3d/types"
)

type recorded struct {
	begun    []engine.Mode
	moves    []types.Placement
	finished []types.ResetTag
}

func (r *recorded) Begin(mode engine.Mode)                  { r.begun = append(r.begun, mode) }
func (r *recorded) Move(_ types.Player, pl types.Placement) { r.moves = append(r.moves, pl) }
func (r *recorded) Finish(tag types.ResetTag, _ types.ScoreSnapshot) {
	r.finished = append(r.finished, tag)
}

func newTestGameView() *GameView {
	cfg := config.DefaultConfig
	return NewGameView(&cfg, tview.NewPages(), func(f func()) { f() }, nil)
}

func TestGameViewForwardsRecording(t *testing.T) {
	g := newTestGameView()
	next := &recorded{}
	g.SetRecorder(next)

	g.Begin(engine.ModePvE)
	g.Move(types.Player1, types.Placement{X: 1, Level: 0, Z: 2})
	g.Finish(types.ResetPlayer1, types.ScoreSnapshot{GamesPlayed: 1, Player1Score: 1})

	assert.Equal(t, []engine.Mode{engine.ModePvE}, next.begun)
	assert.Equal(t, []types.Placement{{X: 1, Level: 0, Z: 2}}, next.moves)
	assert.Equal(t, []types.ResetTag{types.ResetPlayer1}, next.finished)
	assert.Contains(t, g.Panel.Text(), "1,1,2")
	assert.Contains(t, g.Panel.Text(), "Bot")
}

func TestGameViewWithoutNextRecorder(t *testing.T) {
	g := newTestGameView()
	g.Begin(engine.ModePvP)
	g.Move(types.Player2, types.Placement{X: 3, Level: 4, Z: 3})
	g.Finish(types.ResetDraw, types.ScoreSnapshot{})
	assert.Contains(t, g.Panel.Text(), "3,5,3")

	g.Begin(engine.ModePvP)
	assert.NotContains(t, g.Panel.Text(), "3,5,3")
}

func TestScorePanelShowsTally(t *testing.T) {
	g := newTestGameView()
	g.UpdateScorePanel(types.SessionState{InSession: true, PlayerOneTurn: false, Player1Score: 2, Player2Score: 1, GamesPlayed: 4})

	text := g.Panel.box.GetText(true)
	assert.Contains(t, text, "Games: 4")
	assert.Contains(t, text, "Player 1  2")
	assert.Contains(t, text, "Player 2  1")
	assert.Contains(t, text, "Player 2 to move")
}

func TestHintFollowsPhase(t *testing.T) {
	g := newTestGameView()
	assert.Contains(t, g.Hint(), "No game running")

	g.UpdateScorePanel(types.SessionState{InSession: true, PlayerOneTurn: true})
	g.SetPhase(session.AwaitingMove)
	assert.Contains(t, g.Hint(), "Click a column")

	g.SetPhase(session.MoveInFlight)
	assert.Contains(t, g.Hint(), "Waiting for the server")
	assert.Contains(t, g.Panel.Text(), "waiting for server")

	g.SetPhase(session.RoundOver)
	assert.Contains(t, g.Hint(), "Round over")
}

func TestFocusModeToggles(t *testing.T) {
	g := newTestGameView()
	require.True(t, g.ToggleFocusMode())
	assert.Equal(t, "  f to toggle", g.Hint())
	assert.Equal(t, 2, g.Frame().GetItemCount())

	require.False(t, g.ToggleFocusMode())
	assert.NotEqual(t, "  f to toggle", g.Hint())
}

func TestChromeIsEverythingButTheBoard(t *testing.T) {
	g := newTestGameView()
	s := newTestScreen(t, 80, 12)
	g.Board.draw(s, 0, 0, 80, 12)

	assert.False(t, g.IsChrome(g.Board.originX+1, g.Board.originY+1))
	assert.True(t, g.IsChrome(0, 0))
}
