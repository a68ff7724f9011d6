// Package cli runs a match as a line-oriented terminal conversation.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/robalobadob/rpsplus/assets"
	"github.com/robalobadob/rpsplus/internal/commentary"
	"github.com/robalobadob/rpsplus/internal/game"
	"github.com/robalobadob/rpsplus/internal/referee"
)

var (
	rules = "Rules:\n  - " + strings.Join(assets.Rules(), "\n  - ") + "\nCommands: state, reset, rules, quit."
	rule  = strings.Repeat("=", 60)
)

// Loop reads moves from in and writes the referee's replies to out.
type Loop struct {
	tools    *referee.Toolset
	narrator commentary.Narrator
	match    string
	in       io.Reader
	out      io.Writer
}

// New builds a Loop playing the match named match.
func New(tools *referee.Toolset, narrator commentary.Narrator, match string, in io.Reader, out io.Writer) *Loop {
	return &Loop{tools: tools, narrator: narrator, match: match, in: in, out: out}
}

// Run plays until the user quits, input ends, or ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	l.printf("%s\n🎮 ROCK-PAPER-SCISSORS-PLUS REFEREE 🎮\n%s\n%s\n", rule, rule, rules)

	if _, err := l.tools.StartGame(ctx, l.match); err != nil {
		return err
	}
	l.say(l.narrator.Narrate(ctx, commentary.Event{Kind: commentary.KindIntro}))

	sc := bufio.NewScanner(l.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.printf("Your move: ")
		if !sc.Scan() {
			l.printf("\n👋 Thanks for playing! Goodbye!\n")
			return sc.Err()
		}

		input := strings.TrimSpace(sc.Text())
		switch strings.ToLower(input) {
		case "":
			l.printf("Please enter a move!\n\n")
		case "quit", "exit", "q":
			l.printf("\n👋 Thanks for playing! Goodbye!\n")
			return nil
		case "state", "score":
			if err := l.showState(ctx); err != nil {
				return err
			}
		case "reset":
			if _, err := l.tools.ResetGame(ctx, l.match); err != nil {
				return err
			}
			l.say(l.narrator.Narrate(ctx, commentary.Event{Kind: commentary.KindReset}))
		case "rules", "help":
			l.printf("%s\n\n", rules)
		default:
			if err := l.play(ctx, input); err != nil {
				return err
			}
		}
	}
}

func (l *Loop) play(ctx context.Context, input string) error {
	args, err := json.Marshal(map[string]string{"move": input})
	if err != nil {
		return err
	}
	res, err := l.tools.Dispatch(ctx, l.match, referee.ToolPlayRound, args)
	if errors.Is(err, game.ErrGameOver) {
		l.printf("The match is over. Type reset to play again or quit to leave.\n\n")
		return nil
	}
	if err != nil {
		return err
	}
	out := res.(game.Outcome)

	if out.Invalid() {
		l.printf("\n❌ Round %d wasted: %s\n", out.Round, out.ErrorMessage)
	} else {
		l.printf("\nRound %d: you played %s, bot played %s → %s\n", out.Round, out.UserMove, *out.BotMove, out.Result)
	}
	l.printf("Score - You: %d | Bot: %d\n", out.UserScore, out.BotScore)
	l.say(l.narrator.Narrate(ctx, commentary.Event{Kind: commentary.KindRound, Outcome: out}))

	if out.GameOver && out.Winner != nil {
		l.printf("%s\n🏁 GAME OVER 🏁\n%s\n", rule, rule)
		l.printf("Final Score - You: %d | Bot: %d\n", out.UserScore, out.BotScore)
		switch *out.Winner {
		case game.WinnerUser:
			l.printf("🎉 YOU WIN! Congratulations! 🎉\n")
		case game.WinnerBot:
			l.printf("🤖 BOT WINS! Better luck next time!\n")
		default:
			l.printf("🤝 IT'S A DRAW! Well played!\n")
		}
		l.printf("%s\nType reset to play again or quit to leave.\n\n", rule)
	}
	return nil
}

func (l *Loop) showState(ctx context.Context) error {
	snap, err := l.tools.GetState(ctx, l.match)
	if err != nil {
		return err
	}
	l.printf("Round %d/%d | You: %d | Bot: %d | Your bomb: %s | Bot bomb: %s\n",
		snap.RoundNumber, game.RoundLimit, snap.UserScore, snap.BotScore,
		bombStatus(snap.UserBombUsed), bombStatus(snap.BotBombUsed))
	for _, r := range snap.History {
		l.printf("  round %d: %s vs %s (%s)\n", r.Round, r.UserMove, r.BotMove, r.Result)
	}
	l.printf("\n")
	return nil
}

func bombStatus(used bool) string {
	if used {
		return "used"
	}
	return "available"
}

func (l *Loop) say(text string) {
	l.printf("\n🤖 Referee: %s\n\n", text)
}

func (l *Loop) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(l.out, format, args...)
}
