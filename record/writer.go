// Package record writes and reads round records.
//
// A record is a single property list in the spirit of SGF:
//
//	(;GM[connect3d]FF[1]AP[connect3d:1.0]SZ[4:4:5]MO[pvp]P1[Player]P2[Player]DT[2026-01-02]RE[?]SC[0:0:0]
//	;A[2:0:3];B[2:1:3])
//
// Each move node carries x, level and z of the placed piece. The file is
// rewritten after every move so an interrupted round is still readable.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"connect3d/engine"
	"connect3d/geometry"
	"connect3d/types"
)

const recordsDir = "connect3d/records"

// DefaultDir returns the record directory under the XDG data home.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, recordsDir)
}

// Round tracks a round in progress and writes it to disk.
type Round struct {
	FilePath string
	Grid     geometry.Grid
	Mode     engine.Mode
	Player1  string
	Player2  string
	Date     string
	Result   string
	Scores   types.ScoreSnapshot
	moves    []string // ";A[2:0:3]", ";B[2:1:3]", ...
	file     *os.File
}

// NewRound creates a record file in dir and writes the initial header.
// difficulty names the bot in pve mode.
func NewRound(dir string, grid geometry.Grid, mode engine.Mode, difficulty int) (*Round, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create records dir: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("%s_%s.c3d", now.Format("2006-01-02_150405"), uuid.NewString()[:8])
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create record file: %w", err)
	}

	p2 := "Player"
	if mode == engine.ModePvE {
		p2 = fmt.Sprintf("Bot Level %d", difficulty)
	}

	r := &Round{
		FilePath: path,
		Grid:     grid,
		Mode:     mode,
		Player1:  "Player",
		Player2:  p2,
		Date:     now.Format("2006-01-02"),
		Result:   "?",
		file:     f,
	}
	if err := r.flush(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func placementCoord(pl types.Placement) string {
	return fmt.Sprintf("%d:%d:%d", pl.X, pl.Level, pl.Z)
}

// AddMove appends a placed piece.
func (r *Round) AddMove(p types.Player, pl types.Placement) error {
	r.moves = append(r.moves, fmt.Sprintf(";%s[%s]", playerKey(p), placementCoord(pl)))
	return r.flush()
}

func playerKey(p types.Player) string {
	if p == types.Player2 {
		return "B"
	}
	return "A"
}

// SetResult records how the round ended and the tally after it.
func (r *Round) SetResult(tag types.ResetTag, scores types.ScoreSnapshot) error {
	r.Result = resultFor(tag)
	r.Scores = scores
	return r.flush()
}

func resultFor(tag types.ResetTag) string {
	switch tag {
	case types.ResetPlayer1:
		return "P1"
	case types.ResetPlayer2:
		return "P2"
	case types.ResetDraw:
		return "Draw"
	case types.ResetAbandon:
		return "Void"
	}
	return "?"
}

// Moves returns the number of recorded moves.
func (r *Round) Moves() int {
	return len(r.moves)
}

// Close performs a final flush and closes the file handle.
func (r *Round) Close() {
	if r.file == nil {
		return
	}
	r.flush()
	r.file.Close()
	r.file = nil
}

// flush rewrites the complete record from scratch.
func (r *Round) flush() error {
	if r.file == nil {
		return fmt.Errorf("file already closed")
	}

	var b strings.Builder
	b.WriteString("(;GM[connect3d]FF[1]AP[connect3d:1.0]")
	fmt.Fprintf(&b, "SZ[%d:%d:%d]", r.Grid.Columns, r.Grid.Rows, r.Grid.Depth)
	fmt.Fprintf(&b, "MO[%s]", r.Mode)
	fmt.Fprintf(&b, "P1[%s]", r.Player1)
	fmt.Fprintf(&b, "P2[%s]", r.Player2)
	fmt.Fprintf(&b, "DT[%s]", r.Date)
	fmt.Fprintf(&b, "RE[%s]", r.Result)
	fmt.Fprintf(&b, "SC[%d:%d:%d]", r.Scores.GamesPlayed, r.Scores.Player1Score, r.Scores.Player2Score)
	b.WriteString("\n")
	for _, m := range r.moves {
		b.WriteString(m)
	}
	b.WriteString(")\n")

	if _, err := r.file.Seek(0, 0); err != nil {
		return err
	}
	if err := r.file.Truncate(0); err != nil {
		return err
	}
	if _, err := r.file.WriteString(b.String()); err != nil {
		return err
	}
	return r.file.Sync()
}

// Recorder opens a new Round for every round of a session. Write errors
// are logged, passed to the OnError func and stop recording of the current
// round only.
type Recorder struct {
	dir        string
	grid       geometry.Grid
	difficulty int
	log        *zap.Logger
	onError    func(error)

	mu      sync.Mutex
	current *Round
}

// NewRecorder writes rounds played on grid into dir.
func NewRecorder(dir string, grid geometry.Grid, difficulty int, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{dir: dir, grid: grid, difficulty: difficulty, log: log}
}

// OnError sets f to be called with every write error. It is called
// without the recorder's lock held.
func (rc *Recorder) OnError(f func(error)) {
	rc.onError = f
}

func (rc *Recorder) report(err error) {
	if err != nil && rc.onError != nil {
		rc.onError(err)
	}
}

// Begin starts a new record, closing any unfinished one.
func (rc *Recorder) Begin(mode engine.Mode) {
	rc.report(rc.begin(mode))
}

func (rc *Recorder) begin(mode engine.Mode) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.discardEmpty()
	if rc.current != nil {
		rc.current.Close()
	}
	r, err := NewRound(rc.dir, rc.grid, mode, rc.difficulty)
	if err != nil {
		rc.log.Warn("cannot record round", zap.Error(err))
		rc.current = nil
		return err
	}
	rc.current = r
	return nil
}

// Move appends a placement to the current record.
func (rc *Recorder) Move(p types.Player, pl types.Placement) {
	rc.report(rc.move(p, pl))
}

func (rc *Recorder) move(p types.Player, pl types.Placement) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.current == nil {
		return nil
	}
	if err := rc.current.AddMove(p, pl); err != nil {
		rc.log.Warn("record write failed", zap.String("file", rc.current.FilePath), zap.Error(err))
		rc.current.Close()
		rc.current = nil
		return err
	}
	return nil
}

// Finish writes the result and closes the current record.
func (rc *Recorder) Finish(tag types.ResetTag, scores types.ScoreSnapshot) {
	rc.report(rc.finish(tag, scores))
}

func (rc *Recorder) finish(tag types.ResetTag, scores types.ScoreSnapshot) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.current == nil {
		return nil
	}
	if rc.discardEmpty() {
		return nil
	}
	err := rc.current.SetResult(tag, scores)
	if err != nil {
		rc.log.Warn("record write failed", zap.String("file", rc.current.FilePath), zap.Error(err))
	}
	rc.current.Close()
	rc.current = nil
	return err
}

// discardEmpty deletes the current record if no move was played.
func (rc *Recorder) discardEmpty() bool {
	if rc.current == nil || rc.current.Moves() > 0 {
		return false
	}
	rc.current.Close()
	os.Remove(rc.current.FilePath)
	rc.current = nil
	return true
}

// Current returns the record being written, if any.
func (rc *Recorder) Current() *Round {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.current
}
