// internal/game/types.go
//
// Core type definitions for the Rock-Paper-Scissors-Plus engine.
// Defines:
//   - Move / Result / Winner: string enums shared with every front end.
//   - RoundRecord: one completed round in a match history.
//   - Game: state for a single in-progress or finished match.
//   - Outcome / Snapshot: JSON views handed back to callers.

package game

// Move is one of the four legal plays.
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
	MoveBomb     Move = "bomb"
)

// Moves lists every legal move in display order.
var Moves = []Move{MoveRock, MovePaper, MoveScissors, MoveBomb}

// Result is the outcome of a single round from the user's point of view.
type Result string

const (
	ResultUserWin Result = "user_win"
	ResultBotWin  Result = "bot_win"
	ResultDraw    Result = "draw"
	ResultInvalid Result = "invalid"
)

// Winner names the side that took the match.
type Winner string

const (
	WinnerUser Winner = "user"
	WinnerBot  Winner = "bot"
	WinnerDraw Winner = "draw"
)

// RoundLimit is the number of rounds in a match. Invalid attempts count.
const RoundLimit = 3

// RoundRecord is an immutable entry in a match history.
type RoundRecord struct {
	Round    int    `json:"round"`
	UserMove Move   `json:"userMove"`
	BotMove  Move   `json:"botMove"`
	Result   Result `json:"result"`
}

// Game holds the state of a single match.
type Game struct {
	ID           string        // Match identifier (session key).
	Round        int           // Round attempts so far, valid or invalid.
	UserScore    int           // Rounds won by the user.
	BotScore     int           // Rounds won by the bot.
	UserBombUsed bool          // Set once the user plays bomb; never cleared.
	BotBombUsed  bool          // Set once the bot plays bomb; never cleared.
	Over         bool          // True once Round reaches RoundLimit.
	History      []RoundRecord // Valid rounds in play order.
}

// Snapshot is the JSON view of a Game.
type Snapshot struct {
	RoundNumber  int           `json:"roundNumber"`
	UserScore    int           `json:"userScore"`
	BotScore     int           `json:"botScore"`
	UserBombUsed bool          `json:"userBombUsed"`
	BotBombUsed  bool          `json:"botBombUsed"`
	GameOver     bool          `json:"gameOver"`
	History      []RoundRecord `json:"history"`
}

// Outcome reports what happened in one PlayRound call.
//
// For an invalid attempt BotMove is nil and ErrorMessage explains why.
// Winner is set only once the match is over.
type Outcome struct {
	Round        int     `json:"round"`
	UserMove     string  `json:"userMove"`
	BotMove      *Move   `json:"botMove"`
	Result       Result  `json:"result"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
	UserScore    int     `json:"userScore"`
	BotScore     int     `json:"botScore"`
	UserBombUsed bool    `json:"userBombUsed"`
	BotBombUsed  bool    `json:"botBombUsed"`
	GameOver     bool    `json:"gameOver"`
	Winner       *Winner `json:"winner,omitempty"`
}

// Invalid reports whether the attempt was rejected by validation.
func (o Outcome) Invalid() bool { return o.Result == ResultInvalid }
