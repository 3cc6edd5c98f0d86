// Package types contains shared data structures for connect3d.
package types

import (
	"encoding/json"
	"fmt"
)

// Player identifies one of the two seats. The numeric value is the id used
// in the move endpoint path.
type Player int

const (
	Player1 Player = 1
	Player2 Player = 2
)

// Other returns the opposing player.
func (p Player) Other() Player {
	if p == Player1 {
		return Player2
	}
	return Player1
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "Player 1"
	case Player2:
		return "Player 2"
	}
	return fmt.Sprintf("Player(%d)", int(p))
}

// BoardColumn is a vertical slot in the grid, identified by its x and z
// coordinates.
type BoardColumn struct {
	X int
	Z int
}

func (c BoardColumn) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// MarshalJSON encodes the column as a JSON array [x, z].
func (c BoardColumn) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.X, c.Z})
}

// UnmarshalJSON allows BoardColumn to be unmarshaled from a JSON array [x, z].
func (c *BoardColumn) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 2 {
		return fmt.Errorf("column must have 2 coordinates, got %d", len(v))
	}
	c.X = int(v[0])
	c.Z = int(v[1])
	return nil
}

// Placement is the server-resolved position of a piece. Level is the
// stacking height within the column, 0 being the bottom.
type Placement struct {
	X     int `json:"x"`
	Level int `json:"y"`
	Z     int `json:"z"`
}

// Column returns the column the placement belongs to.
func (p Placement) Column() BoardColumn {
	return BoardColumn{X: p.X, Z: p.Z}
}

// Vec3 is a point or direction in render space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(f float64) Vec3 { return Vec3{v.X * f, v.Y * f, v.Z * f} }

// ScoreSnapshot is the authoritative tally returned by a reset.
type ScoreSnapshot struct {
	GamesPlayed  int `json:"num_games"`
	Player1Score int `json:"player1_score"`
	Player2Score int `json:"player2_score"`
}

// SessionState is the client-side view of the match.
// It is only ever mutated by the session state machine.
type SessionState struct {
	PlayerOneTurn bool
	InSession     bool
	Player1Score  int
	Player2Score  int
	GamesPlayed   int
}

// NewSessionState returns the state at application start.
func NewSessionState() SessionState {
	return SessionState{PlayerOneTurn: true}
}

// Turn returns the player whose move it is.
func (s SessionState) Turn() Player {
	if s.PlayerOneTurn {
		return Player1
	}
	return Player2
}

// ApplyScores overwrites the score fields from a server snapshot.
func (s *SessionState) ApplyScores(snap ScoreSnapshot) {
	s.GamesPlayed = snap.GamesPlayed
	s.Player1Score = snap.Player1Score
	s.Player2Score = snap.Player2Score
}
