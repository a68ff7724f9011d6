// internal/game/engine.go
//
// Core game engine for a single Rock-Paper-Scissors-Plus match.
// Responsibilities:
//   - Create new matches (3 rounds, no bombs used).
//   - Validate user moves (legal name, bomb still available).
//   - Play rounds: bot choice, resolution, scoring, history, termination.
//   - Report the final winner and reset a match.
//
// State transitions:
//   - in progress → over once Round reaches RoundLimit. Only Reset goes back.
//   - An invalid attempt still consumes a round.
//
// Game is not safe for concurrent use; the store serializes access per match.
package game

import (
	"fmt"

	"github.com/google/uuid"
)

// New constructs a fresh match.
// If id is empty, a random UUID is used.
func New(id string) *Game {
	if id == "" {
		id = uuid.NewString()
	}
	return &Game{
		ID:      id,
		History: []RoundRecord{},
	}
}

// Reset returns a fresh match with the same ID. The receiver is left untouched.
func (g *Game) Reset() *Game { return New(g.ID) }

// ValidateMove parses raw and checks the user may still play it.
// It never mutates g.
func (g *Game) ValidateMove(raw string) (Move, error) {
	m, err := ParseMove(raw)
	if err != nil {
		return "", err
	}
	if m == MoveBomb && g.UserBombUsed {
		return "", ErrBombAlreadyUsed
	}
	return m, nil
}

// PlayRound validates raw, lets bot choose, and applies the round to g.
//
// Errors:
//   - ErrGameOver: the match already ended; g is unchanged and Outcome is zero.
//   - ErrIllegalBotMove: bot returned a move it may not play; g is unchanged.
//   - validation errors (ErrUnknownMove, ErrBombAlreadyUsed): the round is consumed,
//     the returned Outcome is tagged invalid and carries the message.
func (g *Game) PlayRound(raw string, bot Chooser) (Outcome, error) {
	if g.Over {
		return Outcome{}, ErrGameOver
	}

	userMove, err := g.ValidateMove(raw)
	if err != nil {
		g.advance()
		out := g.outcome(raw, nil, ResultInvalid)
		out.ErrorMessage = err.Error()
		return out, err
	}

	botMove := bot.Choose(!g.BotBombUsed)
	if !botMove.Valid() || (botMove == MoveBomb && g.BotBombUsed) {
		return Outcome{}, fmt.Errorf("%w: %q", ErrIllegalBotMove, botMove)
	}

	if userMove == MoveBomb {
		g.UserBombUsed = true
	}
	if botMove == MoveBomb {
		g.BotBombUsed = true
	}

	result := Resolve(userMove, botMove)
	switch result {
	case ResultUserWin:
		g.UserScore++
	case ResultBotWin:
		g.BotScore++
	}

	g.advance()
	g.History = append(g.History, RoundRecord{
		Round:    g.Round,
		UserMove: userMove,
		BotMove:  botMove,
		Result:   result,
	})
	return g.outcome(string(userMove), &botMove, result), nil
}

// DetermineWinner compares final scores. Meaningful once g.Over is true.
func (g *Game) DetermineWinner() Winner {
	switch {
	case g.UserScore > g.BotScore:
		return WinnerUser
	case g.BotScore > g.UserScore:
		return WinnerBot
	default:
		return WinnerDraw
	}
}

// Snapshot copies g into its JSON view.
func (g *Game) Snapshot() Snapshot {
	h := make([]RoundRecord, len(g.History))
	copy(h, g.History)
	return Snapshot{
		RoundNumber:  g.Round,
		UserScore:    g.UserScore,
		BotScore:     g.BotScore,
		UserBombUsed: g.UserBombUsed,
		BotBombUsed:  g.BotBombUsed,
		GameOver:     g.Over,
		History:      h,
	}
}

// Clone returns a deep copy of g.
func (g *Game) Clone() *Game {
	c := *g
	c.History = make([]RoundRecord, len(g.History))
	copy(c.History, g.History)
	return &c
}

// advance consumes one round and ends the match at RoundLimit.
func (g *Game) advance() {
	g.Round++
	if g.Round >= RoundLimit {
		g.Over = true
	}
}

func (g *Game) outcome(userMove string, botMove *Move, result Result) Outcome {
	out := Outcome{
		Round:        g.Round,
		UserMove:     userMove,
		BotMove:      botMove,
		Result:       result,
		UserScore:    g.UserScore,
		BotScore:     g.BotScore,
		UserBombUsed: g.UserBombUsed,
		BotBombUsed:  g.BotBombUsed,
		GameOver:     g.Over,
	}
	if g.Over {
		w := g.DetermineWinner()
		out.Winner = &w
	}
	return out
}
