package types

import "fmt"

// MoveOutcome is the server's verdict on a submitted move.
type MoveOutcome int

const (
	OutcomeInvalid MoveOutcome = iota
	OutcomeContinue
	OutcomePlayer1Win
	OutcomePlayer2Win
	OutcomeDraw
)

// Wire codes used by the game server.
const (
	wireInvalid    = -1
	wireContinue   = 0
	wirePlayer1Win = 1
	wirePlayer2Win = 2
	wireDraw       = 3
)

// DecodeOutcome converts a wire state code into a MoveOutcome.
func DecodeOutcome(code int) (MoveOutcome, error) {
	switch code {
	case wireInvalid:
		return OutcomeInvalid, nil
	case wireContinue:
		return OutcomeContinue, nil
	case wirePlayer1Win:
		return OutcomePlayer1Win, nil
	case wirePlayer2Win:
		return OutcomePlayer2Win, nil
	case wireDraw:
		return OutcomeDraw, nil
	}
	return OutcomeInvalid, fmt.Errorf("unknown move state %d", code)
}

// Code returns the wire state code for the outcome.
func (o MoveOutcome) Code() int {
	switch o {
	case OutcomeContinue:
		return wireContinue
	case OutcomePlayer1Win:
		return wirePlayer1Win
	case OutcomePlayer2Win:
		return wirePlayer2Win
	case OutcomeDraw:
		return wireDraw
	}
	return wireInvalid
}

// WinFor returns the winning outcome for player p.
func WinFor(p Player) MoveOutcome {
	if p == Player2 {
		return OutcomePlayer2Win
	}
	return OutcomePlayer1Win
}

// Accepted reports whether the move was placed on the board.
func (o MoveOutcome) Accepted() bool {
	return o != OutcomeInvalid
}

// Terminal reports whether the outcome ends the round.
func (o MoveOutcome) Terminal() bool {
	return o == OutcomePlayer1Win || o == OutcomePlayer2Win || o == OutcomeDraw
}

// ResetTag returns the reset tag that reports this outcome to the server.
// Non-terminal outcomes map to ResetNone.
func (o MoveOutcome) ResetTag() ResetTag {
	switch o {
	case OutcomePlayer1Win:
		return ResetPlayer1
	case OutcomePlayer2Win:
		return ResetPlayer2
	case OutcomeDraw:
		return ResetDraw
	}
	return ResetNone
}

func (o MoveOutcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeContinue:
		return "continue"
	case OutcomePlayer1Win:
		return "player1 wins"
	case OutcomePlayer2Win:
		return "player2 wins"
	case OutcomeDraw:
		return "draw"
	}
	return fmt.Sprintf("MoveOutcome(%d)", int(o))
}

// ResetTag is the path segment of the reset endpoint.
type ResetTag string

const (
	ResetNone    ResetTag = "none"
	ResetAbandon ResetTag = "reset"
	ResetPlayer1 ResetTag = "player1"
	ResetPlayer2 ResetTag = "player2"
	ResetDraw    ResetTag = "draw"
)

// Valid reports whether t is one of the known tags.
func (t ResetTag) Valid() bool {
	switch t {
	case ResetNone, ResetAbandon, ResetPlayer1, ResetPlayer2, ResetDraw:
		return true
	}
	return false
}

// CountsGame reports whether a reset with this tag ends a counted game.
func (t ResetTag) CountsGame() bool {
	return t == ResetPlayer1 || t == ResetPlayer2 || t == ResetDraw
}
