package devserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect3d/geometry"
	"connect3d/types"
)

type reply struct {
	Coordinates types.Placement `json:"coordinates"`
	State       int             `json:"state"`
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, APIPrefix+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func move(t *testing.T, h http.Handler, player, x, z int) reply {
	t.Helper()
	body := `{"coordinates_2d":[` + itoa(x) + `,` + itoa(z) + `]}`
	rec := post(t, h, "/players/"+itoa(player)+"/moves", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var r reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return r
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestMoveStacksAndWins(t *testing.T) {
	h := New(geometry.DefaultGrid(), nil).Handler()

	r := move(t, h, 1, 0, 0)
	assert.Equal(t, 0, r.State)
	assert.Equal(t, types.Placement{X: 0, Level: 0, Z: 0}, r.Coordinates)

	r = move(t, h, 2, 0, 0)
	assert.Equal(t, types.Placement{X: 0, Level: 1, Z: 0}, r.Coordinates)

	move(t, h, 1, 1, 0)
	move(t, h, 2, 1, 0)
	move(t, h, 1, 2, 0)
	move(t, h, 2, 2, 0)
	r = move(t, h, 1, 3, 0)
	assert.Equal(t, types.OutcomePlayer1Win.Code(), r.State)

	// The round is over until a reset.
	r = move(t, h, 2, 3, 3)
	assert.Equal(t, -1, r.State)
	assert.Equal(t, types.Placement{X: -1, Level: -1, Z: -1}, r.Coordinates)
}

func TestColumnFullIsInvalid(t *testing.T) {
	h := New(geometry.Grid{Columns: 2, Rows: 2, Depth: 1, Spacing: 1}, nil).Handler()
	move(t, h, 1, 0, 0)
	r := move(t, h, 2, 0, 0)
	assert.Equal(t, -1, r.State)
}

func TestBadRequests(t *testing.T) {
	h := New(geometry.DefaultGrid(), nil).Handler()

	rec := post(t, h, "/players/3/moves", `{"coordinates_2d":[0,0]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid player_id")

	rec = post(t, h, "/players/1/moves", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/players/1/moves", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not json")

	rec = post(t, h, "/game/nobody/reset", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetBookkeeping(t *testing.T) {
	srv := New(geometry.DefaultGrid(), nil)
	h := srv.Handler()

	tags := []types.ResetTag{types.ResetNone, types.ResetPlayer1, types.ResetPlayer1, types.ResetDraw, types.ResetAbandon, types.ResetPlayer2}
	for _, tag := range tags {
		rec := post(t, h, "/game/"+string(tag)+"/reset", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, types.ScoreSnapshot{GamesPlayed: 4, Player1Score: 2, Player2Score: 1}, srv.Scores())

	rec := post(t, h, "/game/none/reset", "")
	var snap types.ScoreSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, srv.Scores(), snap)
}

func TestResetClearsBoard(t *testing.T) {
	h := New(geometry.DefaultGrid(), nil).Handler()
	move(t, h, 1, 1, 1)
	post(t, h, "/game/reset/reset", "")
	r := move(t, h, 2, 1, 1)
	assert.Equal(t, 0, r.Coordinates.Level)
}

func TestIsMoveValid(t *testing.T) {
	h := New(geometry.DefaultGrid(), nil).Handler()
	move(t, h, 1, 2, 2)

	rec := post(t, h, "/game/is_move_valid", `{"coordinates_2d":[2,2]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var r reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, 0, r.State)
	assert.Equal(t, types.Placement{X: 2, Level: 1, Z: 2}, r.Coordinates)

	rec = post(t, h, "/game/is_move_valid", `{"coordinates_2d":[7,2]}`)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, -1, r.State)
}
