package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect3d/engine"
	"connect3d/engine/devserver"
	"connect3d/geometry"
	"connect3d/types"
)

func newClient(url string, timeout time.Duration) *Client {
	cfg := engine.DefaultConfig()
	cfg.ServerURL = url
	cfg.Timeout = timeout
	return NewClient(cfg)
}

func TestSubmitMoveAgainstDevServer(t *testing.T) {
	srv := devserver.New(geometry.DefaultGrid(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := newClient(ts.URL+devserver.APIPrefix, time.Second)
	ctx := context.Background()

	res, err := c.SubmitMove(ctx, types.BoardColumn{X: 2, Z: 3}, types.Player1)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeContinue, res.Outcome)
	assert.Equal(t, types.Placement{X: 2, Level: 0, Z: 3}, res.Placement)

	res, err = c.SubmitMove(ctx, types.BoardColumn{X: 2, Z: 3}, types.Player2)
	require.NoError(t, err)
	assert.Equal(t, types.Placement{X: 2, Level: 1, Z: 3}, res.Placement)
	assert.Equal(t, types.Vec3{X: 2, Y: 1.5, Z: 3}, res.Target)

	res, err = c.SubmitMove(ctx, types.BoardColumn{X: 9, Z: 0}, types.Player1)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeInvalid, res.Outcome)
}

func TestResetAgainstDevServer(t *testing.T) {
	srv := devserver.New(geometry.DefaultGrid(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := newClient(ts.URL+devserver.APIPrefix, time.Second)

	snap, err := c.Reset(context.Background(), types.ResetPlayer2)
	require.NoError(t, err)
	assert.Equal(t, types.ScoreSnapshot{GamesPlayed: 1, Player2Score: 1}, snap)

	snap, err = c.Reset(context.Background(), types.ResetAbandon)
	require.NoError(t, err)
	assert.Equal(t, types.ScoreSnapshot{GamesPlayed: 1, Player2Score: 1}, snap)

	_, err = c.Reset(context.Background(), types.ResetTag("bogus"))
	require.Error(t, err)
	assert.False(t, engine.IsNetworkFailure(err))
}

func TestRequestShape(t *testing.T) {
	var gotPath, gotBody, gotID, gotType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotID = r.Header.Get(RequestIDHeader)
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"coordinates":{"x":2,"y":1,"z":3},"state":0}`)
	}))
	defer ts.Close()

	c := newClient(ts.URL+"/v1/api/", time.Second)
	res, err := c.SubmitMove(context.Background(), types.BoardColumn{X: 2, Z: 3}, types.Player2)
	require.NoError(t, err)
	assert.Equal(t, "/v1/api/players/2/moves", gotPath)
	assert.JSONEq(t, `{"coordinates_2d":[2,3]}`, gotBody)
	assert.Equal(t, "application/json", gotType)
	assert.NotEmpty(t, gotID)
	assert.Equal(t, types.Vec3{X: 2, Y: 1.5, Z: 3}, res.Target)
}

func TestFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error with body", http.StatusInternalServerError, `{"coordinates":{"x":0,"y":0,"z":0},"state":0}`},
		{"bad request message", http.StatusBadRequest, `{"error":"Missing coordinates_2d in request body"}`},
		{"malformed body", http.StatusCreated, `{"coordinates":`},
		{"unknown state", http.StatusCreated, `{"coordinates":{"x":0,"y":0,"z":0},"state":7}`},
		{"missing state", http.StatusCreated, `{"coordinates":{"x":0,"y":0,"z":0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			c := newClient(ts.URL, time.Second)
			_, err := c.SubmitMove(context.Background(), types.BoardColumn{}, types.Player1)
			require.Error(t, err)
			var nf *engine.NetworkFailure
			require.True(t, errors.As(err, &nf), "expected NetworkFailure, got %T", err)
			assert.Equal(t, "move", nf.Op)
			assert.False(t, nf.Timeout())
		})
	}
}

func TestBadRequestMessageSurfaced(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Invalid player_id"}`)
	}))
	defer ts.Close()

	_, err := newClient(ts.URL, time.Second).Reset(context.Background(), types.ResetNone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid player_id")
	assert.Contains(t, err.Error(), "HTTP 400")
}

func TestResetMissingFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"num_games":1}`)
	}))
	defer ts.Close()

	_, err := newClient(ts.URL, time.Second).Reset(context.Background(), types.ResetDraw)
	assert.True(t, engine.IsNetworkFailure(err))
}

func TestTimeoutBecomesNetworkFailure(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	c := newClient(ts.URL, 50*time.Millisecond)
	_, err := c.SubmitMove(context.Background(), types.BoardColumn{}, types.Player1)
	var nf *engine.NetworkFailure
	require.True(t, errors.As(err, &nf))
	assert.True(t, nf.Timeout())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestUnreachableServer(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := newClient(url, time.Second).SubmitMove(context.Background(), types.BoardColumn{}, types.Player1)
	var nf *engine.NetworkFailure
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, 0, nf.Status)
}
