// Package engine defines the interface to the authoritative game server.
package engine

import (
	"context"
	"time"

	"connect3d/types"
)

// Authority is the remote side of a game. It decides where pieces land,
// whether a move is legal, and who has won. Implementations must be safe to
// call from a goroutine other than the UI loop.
type Authority interface {
	// SubmitMove asks the server to drop a piece for player into col.
	// Transport and decode problems are reported as *NetworkFailure.
	SubmitMove(ctx context.Context, col types.BoardColumn, player types.Player) (MoveResult, error)

	// Reset ends the current game, reporting its result through tag, and
	// returns the authoritative tally.
	Reset(ctx context.Context, tag types.ResetTag) (types.ScoreSnapshot, error)
}

// MoveResult is a decoded move response.
type MoveResult struct {
	Outcome   types.MoveOutcome
	Placement types.Placement // as sent by the server
	Target    types.Vec3      // Placement after the canonical rescale
}

// Mode selects who controls player 2.
type Mode string

const (
	ModePvP Mode = "pvp"
	ModePvE Mode = "pve"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModePvP || m == ModePvE
}

// GameConfig holds settings applied when a session starts.
type GameConfig struct {
	Mode       Mode
	Difficulty int           // bot strength 1-3, pve only
	ServerURL  string        // base URL including the API prefix
	Timeout    time.Duration // bound on every request
}

// DefaultConfig returns a reasonable default configuration.
func DefaultConfig() GameConfig {
	return GameConfig{
		Mode:       ModePvP,
		Difficulty: 2,
		ServerURL:  "http://localhost:5000/v1/api",
		Timeout:    5 * time.Second,
	}
}
