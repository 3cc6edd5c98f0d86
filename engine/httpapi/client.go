// Package httpapi implements engine.Authority over the game server's JSON
// HTTP API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"connect3d/engine"
	"connect3d/geometry"
	"connect3d/types"
)

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// RequestIDHeader carries a per-request id for log correlation.
const RequestIDHeader = "X-Request-ID"

// Client talks to the game server.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *zap.Logger
}

var _ engine.Authority = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the server at cfg.ServerURL.
func NewClient(cfg engine.GameConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		timeout: cfg.Timeout,
		http:    &http.Client{},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type moveRequest struct {
	Coordinates2D types.BoardColumn `json:"coordinates_2d"`
}

type moveResponse struct {
	Coordinates *types.Placement `json:"coordinates"`
	State       *int             `json:"state"`
}

type resetResponse struct {
	GamesPlayed  *int `json:"num_games"`
	Player1Score *int `json:"player1_score"`
	Player2Score *int `json:"player2_score"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SubmitMove posts a move for player into col and decodes the verdict.
// The returned Target has the canonical rescale applied.
func (c *Client) SubmitMove(ctx context.Context, col types.BoardColumn, player types.Player) (engine.MoveResult, error) {
	var resp moveResponse
	path := fmt.Sprintf("/players/%d/moves", int(player))
	if err := c.post(ctx, "move", path, moveRequest{Coordinates2D: col}, &resp); err != nil {
		return engine.MoveResult{}, err
	}

	if resp.State == nil || resp.Coordinates == nil {
		return engine.MoveResult{}, &engine.NetworkFailure{Op: "move", Err: errors.New("response missing state or coordinates")}
	}
	outcome, err := types.DecodeOutcome(*resp.State)
	if err != nil {
		return engine.MoveResult{}, &engine.NetworkFailure{Op: "move", Err: err}
	}

	result := engine.MoveResult{
		Outcome:   outcome,
		Placement: *resp.Coordinates,
		Target:    geometry.Rescale(*resp.Coordinates),
	}
	c.log.Debug("move resolved",
		zap.Stringer("column", col),
		zap.Int("player", int(player)),
		zap.Stringer("outcome", outcome),
		zap.Int("level", result.Placement.Level))
	return result, nil
}

// Reset ends the current game on the server and returns the new tally.
func (c *Client) Reset(ctx context.Context, tag types.ResetTag) (types.ScoreSnapshot, error) {
	if !tag.Valid() {
		return types.ScoreSnapshot{}, fmt.Errorf("unknown reset tag %q", tag)
	}
	var resp resetResponse
	if err := c.post(ctx, "reset", fmt.Sprintf("/game/%s/reset", tag), nil, &resp); err != nil {
		return types.ScoreSnapshot{}, err
	}
	if resp.GamesPlayed == nil || resp.Player1Score == nil || resp.Player2Score == nil {
		return types.ScoreSnapshot{}, &engine.NetworkFailure{Op: "reset", Err: errors.New("response missing score fields")}
	}
	return types.ScoreSnapshot{
		GamesPlayed:  *resp.GamesPlayed,
		Player1Score: *resp.Player1Score,
		Player2Score: *resp.Player2Score,
	}, nil
}

// post sends body as JSON and decodes a 2xx response into out.
func (c *Client) post(ctx context.Context, op, path string, body, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	log := c.log.With(zap.String("op", op), zap.String("request_id", reqID), zap.String("path", path))
	start := time.Now()
	log.Debug("sending request")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return &engine.NetworkFailure{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		log.Warn("read response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return &engine.NetworkFailure{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	log.Debug("response received", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &engine.NetworkFailure{Op: op, Status: resp.StatusCode, Err: errors.New(serverMessage(data))}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &engine.NetworkFailure{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// serverMessage extracts {"error": "..."} from a failed response body.
func serverMessage(data []byte) string {
	var e errorResponse
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return e.Error
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "empty response"
	}
	if len(msg) > 120 {
		msg = msg[:120] + "..."
	}
	return msg
}
