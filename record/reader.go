package record

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"connect3d/board"
	"connect3d/engine"
	"connect3d/geometry"
	"connect3d/types"
)

// RoundInfo holds metadata parsed from a record header.
type RoundInfo struct {
	FilePath  string
	FileName  string
	Grid      geometry.Grid
	Mode      engine.Mode
	Player1   string
	Player2   string
	Date      string
	Result    string
	Scores    types.ScoreSnapshot
	MoveCount int
}

// Move is one recorded placement.
type Move struct {
	Player    types.Player
	Placement types.Placement
}

// ParseHeader reads a record and extracts metadata from the root node.
func ParseHeader(filePath string) (*RoundInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	content := string(data)
	props := parseProperties(content)
	if props["GM"] != "connect3d" {
		return nil, fmt.Errorf("%s: not a connect3d record", filePath)
	}

	grid := geometry.DefaultGrid()
	if v, ok := props["SZ"]; ok {
		if dims, ok := parseTriple(v); ok {
			grid.Columns, grid.Rows, grid.Depth = dims[0], dims[1], dims[2]
		}
	}

	var scores types.ScoreSnapshot
	if v, ok := props["SC"]; ok {
		if sc, ok := parseTriple(v); ok {
			scores = types.ScoreSnapshot{GamesPlayed: sc[0], Player1Score: sc[1], Player2Score: sc[2]}
		}
	}

	return &RoundInfo{
		FilePath:  filePath,
		FileName:  filepath.Base(filePath),
		Grid:      grid,
		Mode:      engine.Mode(props["MO"]),
		Player1:   props["P1"],
		Player2:   props["P2"],
		Date:      props["DT"],
		Result:    props["RE"],
		Scores:    scores,
		MoveCount: len(parseMoves(content)),
	}, nil
}

// Replay rebuilds the final position of a record. Moves that do not fit
// the recorded grid are skipped.
func Replay(filePath string) (*board.Grid, []Move, error) {
	info, err := ParseHeader(filePath)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	g := board.New(info.Grid)
	var played []Move
	for _, m := range parseMoves(string(data)) {
		if err := g.Place(m.Placement, m.Player); err != nil {
			continue
		}
		played = append(played, m)
	}
	return g, played, nil
}

// List returns the headers of every record in dir, newest first.
// Unreadable files are skipped.
func List(dir string) ([]*RoundInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var rounds []*RoundInfo
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".c3d" {
			continue
		}
		info, err := ParseHeader(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		rounds = append(rounds, info)
	}
	sort.Slice(rounds, func(i, j int) bool {
		return rounds[i].FileName > rounds[j].FileName
	})
	return rounds, nil
}

// parseProperties extracts KEY[value] pairs from the root node.
func parseProperties(content string) map[string]string {
	props := make(map[string]string)

	start := strings.Index(content, "(;")
	if start == -1 {
		return props
	}
	start += 2

	end := len(content)
	for i := start; i < len(content); i++ {
		if content[i] == ';' || content[i] == ')' {
			end = i
			break
		}
	}

	node := content[start:end]
	i := 0
	for i < len(node) {
		for i < len(node) && strings.ContainsRune(" \n\r\t", rune(node[i])) {
			i++
		}
		keyStart := i
		for i < len(node) && ((node[i] >= 'A' && node[i] <= 'Z') || (node[i] >= '0' && node[i] <= '9')) {
			i++
		}
		if i == keyStart {
			i++
			continue
		}
		key := node[keyStart:i]
		if i >= len(node) || node[i] != '[' {
			continue
		}
		i++
		valStart := i
		for i < len(node) && node[i] != ']' {
			i++
		}
		props[key] = node[valStart:i]
		i++
	}
	return props
}

// parseMoves returns the move nodes ;A[x:level:z] and ;B[x:level:z] after
// the root node.
func parseMoves(content string) []Move {
	var moves []Move
	root := strings.Index(content, "(;")
	if root == -1 {
		return moves
	}
	rest := content[root+2:]
	for _, node := range strings.Split(rest, ";")[1:] {
		node = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(node), ")"))
		if len(node) < 4 || node[1] != '[' || node[len(node)-1] != ']' {
			continue
		}
		var p types.Player
		switch node[0] {
		case 'A':
			p = types.Player1
		case 'B':
			p = types.Player2
		default:
			continue
		}
		v, ok := parseTriple(node[2 : len(node)-1])
		if !ok {
			continue
		}
		moves = append(moves, Move{Player: p, Placement: types.Placement{X: v[0], Level: v[1], Z: v[2]}})
	}
	return moves
}

func parseTriple(s string) ([3]int, bool) {
	var out [3]int
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return out, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return out, false
		}
		out[i] = n
	}
	return out, true
}
