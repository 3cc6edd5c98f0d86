package record

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"connect3d/engine"
	"connect3d/geometry"
	"connect3d/types"
)

func TestNewRound(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRound(dir, geometry.DefaultGrid(), engine.ModePvE, 3)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}
	defer r.Close()

	content, err := os.ReadFile(r.FilePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	s := string(content)
	for _, want := range []string{"GM[connect3d]", "SZ[4:4:5]", "MO[pve]", "P2[Bot Level 3]", "RE[?]"} {
		if !strings.Contains(s, want) {
			t.Errorf("header missing %s: %q", want, s)
		}
	}
	if filepath.Ext(r.FilePath) != ".c3d" {
		t.Errorf("unexpected extension in %s", r.FilePath)
	}
}

func TestRoundRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRound(dir, geometry.DefaultGrid(), engine.ModePvP, 0)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}
	moves := []Move{
		{types.Player1, types.Placement{X: 2, Level: 0, Z: 3}},
		{types.Player2, types.Placement{X: 2, Level: 1, Z: 3}},
		{types.Player1, types.Placement{X: 0, Level: 0, Z: 0}},
	}
	for _, m := range moves {
		if err := r.AddMove(m.Player, m.Placement); err != nil {
			t.Fatalf("AddMove: %v", err)
		}
	}
	scores := types.ScoreSnapshot{GamesPlayed: 3, Player1Score: 2, Player2Score: 1}
	if err := r.SetResult(types.ResetPlayer1, scores); err != nil {
		t.Fatalf("SetResult: %v", err)
	}
	r.Close()

	info, err := ParseHeader(r.FilePath)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if info.Result != "P1" || info.MoveCount != 3 || info.Scores != scores || info.Mode != engine.ModePvP {
		t.Errorf("unexpected header %+v", info)
	}
	if info.Grid != geometry.DefaultGrid() {
		t.Errorf("grid = %+v", info.Grid)
	}

	g, played, err := Replay(r.FilePath)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(played) != len(moves) {
		t.Fatalf("replayed %d moves, want %d", len(played), len(moves))
	}
	for i, m := range moves {
		if played[i] != m {
			t.Errorf("move %d = %+v, want %+v", i, played[i], m)
		}
		if got := g.At(m.Placement.X, m.Placement.Level, m.Placement.Z); got != m.Player {
			t.Errorf("cell %+v = %v, want %v", m.Placement, got, m.Player)
		}
	}
}

func TestCloseTwice(t *testing.T) {
	r, err := NewRound(t.TempDir(), geometry.DefaultGrid(), engine.ModePvP, 0)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}
	r.Close()
	r.Close()
	if err := r.AddMove(types.Player1, types.Placement{}); err == nil {
		t.Error("AddMove after Close should fail")
	}
}

func TestParseHeaderRejectsOtherFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.c3d")
	if err := os.WriteFile(path, []byte("(;GM[1]FF[4]SZ[19])"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseHeader(path); err == nil {
		t.Error("expected an error for a non-connect3d record")
	}
}

func TestParseMovesSkipsGarbage(t *testing.T) {
	content := "(;GM[connect3d]SZ[4:4:5]\n;A[1:0:1];C[1:1:1];B[x:0:0];B[3:0:2])\n"
	got := parseMoves(content)
	want := []Move{
		{types.Player1, types.Placement{X: 1, Level: 0, Z: 1}},
		{types.Player2, types.Placement{X: 3, Level: 0, Z: 2}},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d moves, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("move %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRecorderLifecycle(t *testing.T) {
	dir := t.TempDir()
	rc := NewRecorder(dir, geometry.DefaultGrid(), 2, nil)

	// A round without moves leaves nothing behind.
	rc.Begin(engine.ModePvP)
	rc.Finish(types.ResetAbandon, types.ScoreSnapshot{})
	if rounds, _ := List(dir); len(rounds) != 0 {
		t.Fatalf("empty round was kept: %+v", rounds)
	}

	rc.Begin(engine.ModePvE)
	rc.Move(types.Player1, types.Placement{X: 1, Level: 0, Z: 1})
	rc.Move(types.Player2, types.Placement{X: 1, Level: 1, Z: 1})
	rc.Finish(types.ResetDraw, types.ScoreSnapshot{GamesPlayed: 1})
	if rc.Current() != nil {
		t.Error("record still open after Finish")
	}

	rounds, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("got %d rounds, want 1", len(rounds))
	}
	if rounds[0].Result != "Draw" || rounds[0].MoveCount != 2 || rounds[0].Player2 != "Bot Level 2" {
		t.Errorf("unexpected round %+v", rounds[0])
	}

	// Moves outside a round are ignored.
	rc.Move(types.Player1, types.Placement{})
}

func TestRecorderReportsWriteErrors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "records")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	rc := NewRecorder(blocker, geometry.DefaultGrid(), 1, nil)
	var errs []error
	rc.OnError(func(err error) { errs = append(errs, err) })

	rc.Begin(engine.ModePvP)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !strings.Contains(errs[0].Error(), "records dir") {
		t.Errorf("unexpected error %v", errs[0])
	}

	// Nothing is open, so later calls have nothing to report.
	rc.Move(types.Player1, types.Placement{})
	rc.Finish(types.ResetDraw, types.ScoreSnapshot{})
	if len(errs) != 1 {
		t.Errorf("got %d errors after Begin failed, want 1", len(errs))
	}
}

func TestListMissingDir(t *testing.T) {
	rounds, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil || rounds != nil {
		t.Errorf("List = %v, %v", rounds, err)
	}
}
