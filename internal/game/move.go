// internal/game/move.go
//
// Move parsing and pairwise round resolution.
// Both functions are pure; Resolve is total over every pair of legal moves.

package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownMove is returned when input names none of the legal moves.
	ErrUnknownMove = errors.New("unknown move")
	// ErrBombAlreadyUsed is returned when a side asks for a second bomb.
	ErrBombAlreadyUsed = errors.New("bomb has already been used this game")
	// ErrGameOver is returned when a round is requested after the match ended.
	ErrGameOver = errors.New("game is already over")
	// ErrIllegalBotMove is returned when a Chooser produces a move the bot may not play.
	ErrIllegalBotMove = errors.New("illegal bot move")
)

// beats maps each classic move to the move it defeats.
var beats = map[Move]Move{
	MoveRock:     MoveScissors,
	MoveScissors: MovePaper,
	MovePaper:    MoveRock,
}

// ParseMove normalizes input (trim, lowercase) and matches it against Moves.
func ParseMove(input string) (Move, error) {
	m := Move(strings.ToLower(strings.TrimSpace(input)))
	if m.Valid() {
		return m, nil
	}
	return "", fmt.Errorf("%w %q: valid moves are %s", ErrUnknownMove, input, legalNames())
}

// Valid reports whether m is one of the four legal moves.
func (m Move) Valid() bool {
	for _, x := range Moves {
		if m == x {
			return true
		}
	}
	return false
}

// Resolve decides a round between two legal moves.
//
// Rules:
//   - bomb vs bomb is a draw.
//   - bomb beats every other move.
//   - rock > scissors > paper > rock; equal moves draw.
func Resolve(user, bot Move) Result {
	switch {
	case user == MoveBomb && bot == MoveBomb:
		return ResultDraw
	case user == MoveBomb:
		return ResultUserWin
	case bot == MoveBomb:
		return ResultBotWin
	case user == bot:
		return ResultDraw
	case beats[user] == bot:
		return ResultUserWin
	default:
		return ResultBotWin
	}
}

func legalNames() string {
	names := make([]string, len(Moves))
	for i, m := range Moves {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
