// Package referee exposes the match operations that every front end calls:
// the HTTP handlers, the MCP tool server and the CLI loop.
//
// Each operation is keyed by a match ID and returns JSON-serializable data.
// Dispatch maps tool names, as a function-calling model would emit them, onto
// the same operations.
package referee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rpsplus/internal/game"
	"github.com/robalobadob/rpsplus/internal/store"
)

// Tool names accepted by Dispatch.
const (
	ToolStartGame    = "start_game"
	ToolValidateMove = "validate_move"
	ToolPlayRound    = "play_round"
	ToolGetState     = "get_game_state"
	ToolResetGame    = "reset_game"
)

// ErrUnknownTool is returned by Dispatch for a name outside the tool table.
var ErrUnknownTool = errors.New("unknown tool")

// StartResult is returned by StartGame.
type StartResult struct {
	State game.Snapshot `json:"state"`
}

// ValidateResult is returned by ValidateMove.
type ValidateResult struct {
	IsValid      bool          `json:"isValid"`
	ParsedMove   *game.Move    `json:"parsedMove"`
	ErrorMessage string        `json:"errorMessage"`
	State        game.Snapshot `json:"state"`
}

// ResetResult is returned by ResetGame.
type ResetResult struct {
	Message string        `json:"message"`
	State   game.Snapshot `json:"state"`
}

// Toolset runs match operations against a Store.
type Toolset struct {
	store store.Store
	bot   game.Chooser
}

// New builds a Toolset. bot chooses the opponent's moves for every match.
func New(st store.Store, bot game.Chooser) *Toolset {
	return &Toolset{store: st, bot: bot}
}

// StartGame discards any match under id and starts a fresh one.
func (t *Toolset) StartGame(ctx context.Context, id string) (StartResult, error) {
	g := game.New(id)
	if err := t.store.Save(ctx, g); err != nil {
		return StartResult{}, fmt.Errorf("start game: %w", err)
	}
	log.Debug().Str("match", id).Msg("match started")
	return StartResult{State: g.Snapshot()}, nil
}

// ValidateMove checks move against the match without consuming a round.
func (t *Toolset) ValidateMove(ctx context.Context, id, move string) (ValidateResult, error) {
	var res ValidateResult
	err := t.store.Update(ctx, id, func(g *game.Game) error {
		m, verr := g.ValidateMove(move)
		res = ValidateResult{IsValid: verr == nil, State: g.Snapshot()}
		if verr != nil {
			res.ErrorMessage = verr.Error()
		} else {
			res.ParsedMove = &m
		}
		return nil
	})
	if err != nil {
		return ValidateResult{}, fmt.Errorf("validate move: %w", err)
	}
	return res, nil
}

// PlayRound plays one round. Invalid moves are not errors: they come back as
// an invalid Outcome that has still consumed the round. The only game error
// returned is game.ErrGameOver.
func (t *Toolset) PlayRound(ctx context.Context, id, move string) (game.Outcome, error) {
	var out game.Outcome
	err := t.store.Update(ctx, id, func(g *game.Game) error {
		var perr error
		out, perr = g.PlayRound(move, t.bot)
		if perr != nil && !out.Invalid() {
			return perr
		}
		return nil
	})
	if err != nil {
		return game.Outcome{}, fmt.Errorf("play round: %w", err)
	}

	roundsPlayed.WithLabelValues(string(out.Result)).Inc()
	if out.GameOver && out.Winner != nil {
		matchesFinished.WithLabelValues(string(*out.Winner)).Inc()
	}
	ev := log.Debug().Str("match", id).Int("round", out.Round).Str("result", string(out.Result))
	if out.BotMove != nil {
		ev = ev.Str("user", out.UserMove).Str("bot", string(*out.BotMove))
	}
	ev.Bool("gameOver", out.GameOver).Msg("round played")
	return out, nil
}

// GetState returns the current snapshot, creating an empty match if needed.
func (t *Toolset) GetState(ctx context.Context, id string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := t.store.Update(ctx, id, func(g *game.Game) error {
		snap = g.Snapshot()
		return nil
	})
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("get state: %w", err)
	}
	return snap, nil
}

// ResetGame replaces the match with a fresh one.
func (t *Toolset) ResetGame(ctx context.Context, id string) (ResetResult, error) {
	var snap game.Snapshot
	err := t.store.Update(ctx, id, func(g *game.Game) error {
		*g = *g.Reset()
		snap = g.Snapshot()
		return nil
	})
	if err != nil {
		return ResetResult{}, fmt.Errorf("reset game: %w", err)
	}
	log.Debug().Str("match", id).Msg("match reset")
	return ResetResult{Message: "Game has been reset", State: snap}, nil
}

// moveArgs is the argument object for validate_move and play_round.
// Both "move" and "user_move" are accepted.
type moveArgs struct {
	Move     string `json:"move"`
	UserMove string `json:"user_move"`
}

func (a moveArgs) value() string {
	if a.Move != "" {
		return a.Move
	}
	return a.UserMove
}

// Dispatch runs the tool called name with JSON arguments args (may be empty).
func (t *Toolset) Dispatch(ctx context.Context, id, name string, args json.RawMessage) (any, error) {
	switch strings.TrimSpace(name) {
	case ToolStartGame:
		return t.StartGame(ctx, id)
	case ToolValidateMove:
		a, err := decodeMoveArgs(args)
		if err != nil {
			return nil, err
		}
		return t.ValidateMove(ctx, id, a.value())
	case ToolPlayRound:
		a, err := decodeMoveArgs(args)
		if err != nil {
			return nil, err
		}
		return t.PlayRound(ctx, id, a.value())
	case ToolGetState:
		return t.GetState(ctx, id)
	case ToolResetGame:
		return t.ResetGame(ctx, id)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
}

func decodeMoveArgs(raw json.RawMessage) (moveArgs, error) {
	var a moveArgs
	if len(raw) == 0 {
		return a, nil
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return moveArgs{}, fmt.Errorf("decode tool arguments: %w", err)
	}
	return a, nil
}
