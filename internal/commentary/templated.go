// Package commentary produces the referee's one-line remarks about a match.
//
// Commentary is cosmetic. It is generated after a round has been recorded and
// can never change or repeat it; a Narrator always returns some text.
package commentary

import (
	"context"
	"fmt"

	"github.com/robalobadob/rpsplus/internal/game"
)

// Kind says what the remark is about.
type Kind string

const (
	KindIntro Kind = "intro"
	KindRound Kind = "round"
	KindReset Kind = "reset"
)

// Event is the context handed to a Narrator.
type Event struct {
	Kind    Kind
	Outcome game.Outcome // set for KindRound
}

// Narrator turns an Event into a remark.
type Narrator interface {
	Narrate(ctx context.Context, ev Event) string
}

// Templated is the canned Narrator used when no model is configured or the
// model call fails.
type Templated struct{}

// Narrate implements Narrator.
func (Templated) Narrate(_ context.Context, ev Event) string {
	switch ev.Kind {
	case KindIntro:
		return "Welcome to Rock-Paper-Scissors-Plus! Ready to play? Best of 3 rounds!"
	case KindReset:
		return "Game reset! Ready for a new match?"
	}

	o := ev.Outcome
	var line string
	switch o.Result {
	case game.ResultUserWin:
		line = fmt.Sprintf("You win round %d! 🎉", o.Round)
	case game.ResultBotWin:
		line = fmt.Sprintf("I win round %d! 🤖", o.Round)
	case game.ResultDraw:
		line = fmt.Sprintf("Round %d is a draw!", o.Round)
	default:
		line = fmt.Sprintf("Round %d wasted: %s", o.Round, o.ErrorMessage)
	}
	if o.GameOver && o.Winner != nil {
		line += " " + finalLine(*o.Winner)
	}
	return line
}

func finalLine(w game.Winner) string {
	switch w {
	case game.WinnerUser:
		return "You take the match!"
	case game.WinnerBot:
		return "I take the match!"
	default:
		return "The match ends in a draw!"
	}
}
