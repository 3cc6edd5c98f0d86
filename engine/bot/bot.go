// Package bot picks columns for the computer-controlled player in pve mode.
package bot

import (
	"math"
	"math/rand"

	"connect3d/board"
	"connect3d/types"
)

// Difficulty levels.
const (
	Easy   = 1 // any open column
	Medium = 2 // take a winning column if there is one
	Hard   = 3 // win, block, then prefer the centre
)

// Bot chooses moves from a mirror of the board. It never talks to the
// server; the session submits its choice like any other move.
type Bot struct {
	level int
	rng   *rand.Rand
}

// New creates a bot. Levels outside 1-3 are clamped.
func New(level int, seed int64) *Bot {
	if level < Easy {
		level = Easy
	}
	if level > Hard {
		level = Hard
	}
	return &Bot{level: level, rng: rand.New(rand.NewSource(seed))}
}

// Level returns the clamped difficulty.
func (b *Bot) Level() int {
	return b.level
}

// Choose returns the column to play for player me. ok is false when the
// board has no open column.
func (b *Bot) Choose(g *board.Grid, me types.Player) (types.BoardColumn, bool) {
	open := g.OpenColumns()
	if len(open) == 0 {
		return types.BoardColumn{}, false
	}
	if b.level >= Medium {
		if col, ok := winningColumn(g, open, me); ok {
			return col, true
		}
	}
	if b.level >= Hard {
		if col, ok := winningColumn(g, open, me.Other()); ok {
			return col, true
		}
		return b.central(g, open), true
	}
	return open[b.rng.Intn(len(open))], true
}

// winningColumn finds a column where dropping for p completes a line.
func winningColumn(g *board.Grid, open []types.BoardColumn, p types.Player) (types.BoardColumn, bool) {
	for _, col := range open {
		pl, err := g.Drop(col, p)
		if err != nil {
			continue
		}
		wins := g.WinsAt(pl)
		g.Undo(pl)
		if wins {
			return col, true
		}
	}
	return types.BoardColumn{}, false
}

// central picks among the open columns closest to the board centre,
// breaking ties randomly.
func (b *Bot) central(g *board.Grid, open []types.BoardColumn) types.BoardColumn {
	dims := g.Dims()
	cx := float64(dims.Columns-1) / 2
	cz := float64(dims.Rows-1) / 2

	best := math.Inf(1)
	var picks []types.BoardColumn
	for _, col := range open {
		d := math.Abs(float64(col.X)-cx) + math.Abs(float64(col.Z)-cz)
		switch {
		case d < best:
			best = d
			picks = []types.BoardColumn{col}
		case d == best:
			picks = append(picks, col)
		}
	}
	return picks[b.rng.Intn(len(picks))]
}
