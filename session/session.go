// Package session runs the client side of a match: it gates move requests,
// applies the server's verdicts and drives the reset cycle between rounds.
//
// All state changes happen inside callbacks passed to the dispatcher, which
// in the application is tview's QueueUpdateDraw. Network calls run on the
// runner and hand their results back through the dispatcher.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"connect3d/animation"
	"connect3d/board"
	"connect3d/engine"
	"connect3d/engine/bot"
	"connect3d/geometry"
	"connect3d/types"
)

var (
	// ErrBusy is returned while a request to the server is outstanding.
	ErrBusy = errors.New("a request is already in flight")

	// ErrNotInSession is returned for moves made outside a running round.
	ErrNotInSession = errors.New("no game in progress")

	// ErrInSession is returned by Start when a round is already running.
	ErrInSession = errors.New("game already in progress")
)

// State is the phase of the session.
type State int

const (
	Idle State = iota
	AwaitingMove
	MoveInFlight
	RoundOver
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingMove:
		return "awaiting move"
	case MoveInFlight:
		return "move in flight"
	case RoundOver:
		return "round over"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Tone selects the colour a message is shown in.
type Tone int

const (
	ToneInfo Tone = iota
	ToneWarning
	ToneError
	TonePlayer1
	TonePlayer2
)

// PlayerTone returns the tone of player p's pieces.
func PlayerTone(p types.Player) Tone {
	if p == types.Player2 {
		return TonePlayer2
	}
	return TonePlayer1
}

// Notifier displays popups and the score panel.
type Notifier interface {
	// ShowTransientMessage shows text for d. Calls may overlap.
	ShowTransientMessage(text string, tone Tone, d time.Duration)
	UpdateScorePanel(state types.SessionState)
}

// Scene creates piece objects in the rendered board.
type Scene interface {
	// AddPiece creates a piece for p resting at render position at and
	// returns the handle the animator moves.
	AddPiece(p types.Player, at types.Vec3) animation.Handle
	ClearPieces()
}

// Recorder receives the moves of every round.
type Recorder interface {
	Begin(mode engine.Mode)
	Move(p types.Player, pl types.Placement)
	Finish(tag types.ResetTag, scores types.ScoreSnapshot)
}

// Option configures a Machine.
type Option func(*Machine)

// WithDispatcher sets the function that runs f on the UI thread.
func WithDispatcher(dispatch func(f func())) Option {
	return func(m *Machine) { m.dispatch = dispatch }
}

// WithRunner sets the function that runs blocking work off the UI thread.
func WithRunner(run func(f func())) Option {
	return func(m *Machine) { m.run = run }
}

// WithScheduler sets the function used to delay the post-round reset.
func WithScheduler(after func(d time.Duration, f func())) Option {
	return func(m *Machine) { m.after = after }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// WithBot makes the machine play player 2 itself using b.
func WithBot(b *bot.Bot) Option {
	return func(m *Machine) { m.bot = b }
}

// WithRecorder sets the recorder that receives every round.
func WithRecorder(r Recorder) Option {
	return func(m *Machine) { m.recorder = r }
}

// Timings holds the display timings of a session.
type Timings struct {
	ResetDelay    time.Duration // time the final position stays up after a round
	PopupDuration time.Duration
	DropHeight    float64 // spawn height above the top of the board, in render units
}

// DefaultTimings returns the timings used when none are configured.
func DefaultTimings() Timings {
	return Timings{
		ResetDelay:    3 * time.Second,
		PopupDuration: 2 * time.Second,
		DropHeight:    3,
	}
}

// WithTimings overrides the display timings.
func WithTimings(t Timings) Option {
	return func(m *Machine) { m.timings = t }
}

// Machine is the session state machine. Create one per match setup; it is
// passed explicitly to whatever needs to read or drive the session.
type Machine struct {
	auth     engine.Authority
	grid     geometry.Grid
	mirror   *board.Grid
	scene    Scene
	anim     *animation.Animator
	notifier Notifier
	log      *zap.Logger
	bot      *bot.Bot
	recorder Recorder
	timings  Timings

	dispatch func(f func())
	run      func(f func())
	after    func(d time.Duration, f func())

	// gate admits a single outstanding request to the server.
	gate *semaphore.Weighted
	ctx  context.Context

	mu      sync.Mutex
	state   State
	session types.SessionState

	round      int
	pendingTag types.ResetTag
	starting   bool // the first reset of a session is in flight
	abandoned  bool // the user left before that reset was answered
	synced     bool
	lastScores types.ScoreSnapshot

	onChange []func(State, types.SessionState)
}

// New creates an idle machine.
func New(auth engine.Authority, grid geometry.Grid, scene Scene, anim *animation.Animator, notifier Notifier, opts ...Option) *Machine {
	m := &Machine{
		auth:     auth,
		grid:     grid,
		mirror:   board.New(grid),
		scene:    scene,
		anim:     anim,
		notifier: notifier,
		log:      zap.NewNop(),
		timings:  DefaultTimings(),
		dispatch: func(f func()) { f() },
		run:      func(f func()) { go f() },
		after:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		gate:     semaphore.NewWeighted(1),
		ctx:      context.Background(),
		session:  types.NewSessionState(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mode returns who controls player 2.
func (m *Machine) Mode() engine.Mode {
	if m.bot != nil {
		return engine.ModePvE
	}
	return engine.ModePvP
}

// State returns the current phase.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a copy of the session state.
func (m *Machine) Snapshot() types.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// OnChange registers f to be called after every state change.
func (m *Machine) OnChange(f func(State, types.SessionState)) {
	m.onChange = append(m.onChange, f)
}

// Start begins a session. From Idle the server is told to clear the board
// without counting a game. From RoundOver, after a failed reset, the
// pending result is reported again.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	state := m.state
	tag := m.pendingTag
	starting := m.starting
	m.mu.Unlock()

	if starting {
		return ErrBusy
	}
	switch state {
	case Idle:
		tag = types.ResetNone
	case RoundOver:
	default:
		return ErrInSession
	}
	m.ctx = ctx
	m.mu.Lock()
	m.starting = state == Idle
	m.mu.Unlock()
	if err := m.reset(tag, false); err != nil {
		m.mu.Lock()
		m.starting = false
		m.mu.Unlock()
		return err
	}
	return nil
}

// ReturnToMenu ends the session. A running round is reported as abandoned;
// a finished one is reported with its result. The session ends locally even
// if the server cannot be reached.
func (m *Machine) ReturnToMenu() error {
	m.mu.Lock()
	state := m.state
	tag := m.pendingTag
	m.mu.Unlock()

	switch state {
	case Idle:
		// A start still waiting for the server ends as soon as it is answered.
		m.mu.Lock()
		if m.starting {
			m.abandoned = true
			m.log.Info("session left before the server answered")
		}
		m.mu.Unlock()
		return nil
	case AwaitingMove:
		tag = types.ResetAbandon
	case MoveInFlight:
		return ErrBusy
	}
	if err := m.reset(tag, true); err != nil {
		return err
	}
	if tag == types.ResetAbandon && m.recorder != nil {
		m.recorder.Finish(tag, m.lastScores)
	}
	return nil
}

// SelectColumn submits a move in col for the player to move. In pve mode a
// selection made while the bot is to move makes the bot try again.
func (m *Machine) SelectColumn(col types.BoardColumn) error {
	m.mu.Lock()
	state := m.state
	turn := m.session.Turn()
	m.mu.Unlock()

	switch state {
	case MoveInFlight:
		return ErrBusy
	case AwaitingMove:
	default:
		return ErrNotInSession
	}
	if m.bot != nil && turn == types.Player2 {
		return m.botMove()
	}
	return m.submit(col, turn)
}

func (m *Machine) submit(col types.BoardColumn, player types.Player) error {
	if !m.gate.TryAcquire(1) {
		return ErrBusy
	}
	m.mu.Lock()
	m.state = MoveInFlight
	m.mu.Unlock()
	m.changed()

	m.log.Debug("submitting move", zap.Stringer("column", col), zap.Stringer("player", player))
	ctx := m.ctx
	m.run(func() {
		res, err := m.auth.SubmitMove(ctx, col, player)
		m.dispatch(func() { m.applyMove(col, player, res, err) })
	})
	return nil
}

func (m *Machine) botMove() error {
	col, ok := m.bot.Choose(m.mirror, types.Player2)
	if !ok {
		m.log.Warn("bot found no open column")
		return nil
	}
	return m.submit(col, types.Player2)
}

func (m *Machine) applyMove(col types.BoardColumn, player types.Player, res engine.MoveResult, err error) {
	m.mu.Lock()
	if m.state != MoveInFlight {
		m.mu.Unlock()
		m.log.Error("move result outside of a move", zap.Stringer("state", m.State()))
		m.gate.Release(1)
		return
	}
	if err != nil {
		m.state = AwaitingMove
		m.mu.Unlock()
		m.gate.Release(1)
		m.log.Warn("move failed", zap.Stringer("column", col), zap.Error(err))
		m.notifier.ShowTransientMessage(failureText("Move", err), ToneError, m.timings.PopupDuration)
		m.changed()
		return
	}

	outcome := res.Outcome
	switch {
	case !outcome.Accepted():
		m.state = AwaitingMove
	case outcome.Terminal():
		m.session.PlayerOneTurn = !m.session.PlayerOneTurn
		m.state = RoundOver
		m.round++
		m.pendingTag = outcome.ResetTag()
	default:
		m.session.PlayerOneTurn = !m.session.PlayerOneTurn
		m.state = AwaitingMove
	}
	round := m.round
	m.mu.Unlock()
	m.gate.Release(1)

	m.log.Debug("move applied", zap.Stringer("column", col), zap.Stringer("outcome", outcome))
	if !outcome.Accepted() {
		m.log.Info("move rejected", zap.Stringer("column", col), zap.Stringer("player", player),
			zap.Error(engine.ErrInvalidMove))
		m.notifier.ShowTransientMessage("Invalid move, pick another column", ToneWarning, m.timings.PopupDuration)
		m.changed()
		return
	}

	m.place(col, player, res)
	if outcome.Terminal() {
		m.finishRound(outcome, round)
		m.changed()
		return
	}
	m.changed()

	if m.bot != nil && m.Snapshot().Turn() == types.Player2 {
		if err := m.botMove(); err != nil {
			m.log.Warn("bot move not submitted", zap.Error(err))
		}
	}
}

// place mirrors the placement locally and drops the piece into view.
func (m *Machine) place(col types.BoardColumn, player types.Player, res engine.MoveResult) {
	if res.Placement.Column() != col {
		m.desync("server placed piece in another column",
			zap.Stringer("requested", col), zap.Stringer("placed", res.Placement.Column()))
	}
	if err := m.mirror.Place(res.Placement, player); err != nil {
		m.desync("placement outside local board",
			zap.Int("x", res.Placement.X), zap.Int("level", res.Placement.Level), zap.Int("z", res.Placement.Z),
			zap.NamedError("cause", err))
	}
	if m.recorder != nil {
		m.recorder.Move(player, res.Placement)
	}

	pos := m.grid.PiecePosition(res.Target)
	h := m.scene.AddPiece(player, pos)
	m.anim.Spawn(h, m.grid.TopHeight()+m.timings.DropHeight, pos.Y)
}

func (m *Machine) finishRound(outcome types.MoveOutcome, round int) {
	text := "It's a draw!"
	tone := ToneInfo
	switch outcome {
	case types.OutcomePlayer1Win:
		text, tone = types.Player1.String()+" wins!", TonePlayer1
	case types.OutcomePlayer2Win:
		text, tone = types.Player2.String()+" wins!", TonePlayer2
	}
	m.notifier.ShowTransientMessage(text, tone, m.timings.ResetDelay)
	m.log.Info("round over", zap.Stringer("outcome", outcome))

	tag := outcome.ResetTag()
	m.after(m.timings.ResetDelay, func() {
		m.dispatch(func() {
			m.mu.Lock()
			current := m.round == round && m.state == RoundOver
			m.mu.Unlock()
			if !current {
				return
			}
			if err := m.reset(tag, false); err != nil {
				m.log.Warn("scheduled reset not sent", zap.Error(err))
			}
		})
	})
}

func (m *Machine) reset(tag types.ResetTag, end bool) error {
	if !m.gate.TryAcquire(1) {
		return ErrBusy
	}
	m.log.Debug("resetting game", zap.String("tag", string(tag)), zap.Bool("end", end))
	ctx := m.ctx
	m.run(func() {
		snap, err := m.auth.Reset(ctx, tag)
		m.dispatch(func() { m.applyReset(tag, end, snap, err) })
	})
	return nil
}

func (m *Machine) applyReset(tag types.ResetTag, end bool, snap types.ScoreSnapshot, err error) {
	defer m.gate.Release(1)

	m.mu.Lock()
	abandoned := m.abandoned
	m.starting, m.abandoned = false, false
	if abandoned && err == nil {
		m.lastScores = snap
		m.synced = true
	}
	m.mu.Unlock()
	if abandoned {
		// The screen may already belong to another session.
		m.log.Info("start answered after leaving", zap.String("tag", string(tag)), zap.Error(err))
		return
	}

	if err != nil {
		m.log.Warn("reset failed", zap.String("tag", string(tag)), zap.Error(err))
		m.notifier.ShowTransientMessage(failureText("Reset", err), ToneError, m.timings.PopupDuration)
		if !end {
			m.changed()
			return
		}
	} else {
		m.checkScores(tag, snap)
	}

	m.mu.Lock()
	prev := m.state
	if err == nil {
		m.session.ApplyScores(snap)
		m.lastScores = snap
		m.synced = true
	}
	desynced := prev == AwaitingMove && !end
	m.session.PlayerOneTurn = true
	m.pendingTag = ""
	if end {
		m.state = Idle
		m.session.InSession = false
	} else {
		m.state = AwaitingMove
		m.session.InSession = true
	}
	m.mu.Unlock()

	if desynced {
		m.desync("reset completed during a running round")
	}
	if prev == RoundOver && m.recorder != nil && tag.CountsGame() {
		scores := snap
		if err != nil {
			scores = m.lastScores
		}
		m.recorder.Finish(tag, scores)
	}
	m.mirror.Clear()
	m.anim.Clear()
	m.scene.ClearPieces()
	if !end && m.recorder != nil {
		m.recorder.Begin(m.Mode())
	}
	m.changed()
}

// checkScores compares a reset response with the tally expected from the
// previous one. The server's numbers are used either way.
func (m *Machine) checkScores(tag types.ResetTag, snap types.ScoreSnapshot) {
	if !m.synced {
		return
	}
	want := m.lastScores
	if tag.CountsGame() {
		want.GamesPlayed++
	}
	switch tag {
	case types.ResetPlayer1:
		want.Player1Score++
	case types.ResetPlayer2:
		want.Player2Score++
	}
	if snap != want {
		m.desync("server scores differ from local tally", zap.Any("want", want), zap.Any("got", snap))
	}
}

// desync reports server state that contradicts the local view. The
// server's data is applied regardless.
func (m *Machine) desync(msg string, fields ...zap.Field) {
	m.log.Warn(msg, append(fields, zap.Error(engine.ErrProtocolDesync))...)
	m.notifier.ShowTransientMessage("Out of sync with the server, using its state", ToneWarning, m.timings.PopupDuration)
}

func (m *Machine) changed() {
	state, snap := m.State(), m.Snapshot()
	m.notifier.UpdateScorePanel(snap)
	for _, f := range m.onChange {
		f(state, snap)
	}
}

func failureText(op string, err error) string {
	var nf *engine.NetworkFailure
	if errors.As(err, &nf) {
		if nf.Timeout() {
			return op + " failed: the server did not answer in time"
		}
		if nf.Status != 0 {
			return fmt.Sprintf("%s failed: server returned %d", op, nf.Status)
		}
		return op + " failed: server unreachable"
	}
	return fmt.Sprintf("%s failed: %v", op, err)
}
