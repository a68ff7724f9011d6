// Package mcpserver exposes the referee operations as Model Context Protocol
// tools so a language model can run a match by calling them.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/rpsplus/assets"
	"github.com/robalobadob/rpsplus/internal/game"
	"github.com/robalobadob/rpsplus/internal/referee"
)

const (
	serverName    = "rps-plus-referee"
	serverVersion = "0.1.0"
)

// MatchInput selects a match. An empty MatchID uses the server default.
type MatchInput struct {
	MatchID string `json:"match_id,omitempty" jsonschema:"match identifier (defaults to the server's match)"`
}

// MoveInput carries a raw move for validate_move and play_round.
type MoveInput struct {
	MatchID string `json:"match_id,omitempty" jsonschema:"match identifier (defaults to the server's match)"`
	Move    string `json:"move" jsonschema:"the player's move: rock, paper, scissors or bomb (case-insensitive)"`
}

// Server is an MCP server over a referee.Toolset.
type Server struct {
	tools        *referee.Toolset
	defaultMatch string
	mcpServer    *mcp.Server
}

// New builds the server and registers every tool.
func New(tools *referee.Toolset, defaultMatch string) *Server {
	if strings.TrimSpace(defaultMatch) == "" {
		defaultMatch = "default"
	}
	s := &Server{
		tools:        tools,
		defaultMatch: defaultMatch,
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
			Instructions: "You referee a Rock-Paper-Scissors-Plus match. " + strings.Join(assets.Rules(), " ") +
				" Call play_round with the player's move; never invent results.",
		}),
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        referee.ToolStartGame,
		Description: "Starts a fresh match, discarding any match in progress.",
	}, s.startGame())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        referee.ToolValidateMove,
		Description: "Checks whether a move is legal right now without consuming a round.",
	}, s.validateMove())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        referee.ToolPlayRound,
		Description: "Plays one round: the bot picks its move, the round is resolved and scored. Invalid moves waste the round.",
	}, s.playRound())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        referee.ToolGetState,
		Description: "Returns the current round, scores, bomb usage, history and whether the match is over.",
	}, s.getState())
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        referee.ToolResetGame,
		Description: "Resets the match to round 0 with zero scores and both bombs available.",
	}, s.resetGame())

	return s
}

// Serve runs the server on transport until ctx ends or the client disconnects.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// HTTPHandler serves the streamable HTTP transport.
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcpServer }, nil)
}

func (s *Server) match(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.defaultMatch
}

func (s *Server) startGame() mcp.ToolHandlerFor[MatchInput, referee.StartResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MatchInput) (*mcp.CallToolResult, referee.StartResult, error) {
		res, err := s.tools.StartGame(ctx, s.match(in.MatchID))
		if err != nil {
			return nil, referee.StartResult{}, err
		}
		return nil, res, nil
	}
}

func (s *Server) validateMove() mcp.ToolHandlerFor[MoveInput, referee.ValidateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MoveInput) (*mcp.CallToolResult, referee.ValidateResult, error) {
		res, err := s.tools.ValidateMove(ctx, s.match(in.MatchID), in.Move)
		if err != nil {
			return nil, referee.ValidateResult{}, err
		}
		return nil, res, nil
	}
}

func (s *Server) playRound() mcp.ToolHandlerFor[MoveInput, game.Outcome] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MoveInput) (*mcp.CallToolResult, game.Outcome, error) {
		id := s.match(in.MatchID)
		out, err := s.tools.PlayRound(ctx, id, in.Move)
		if err != nil {
			if errors.Is(err, game.ErrGameOver) {
				return nil, game.Outcome{}, fmt.Errorf("match %q: %w; call reset_game or start_game to play again", id, game.ErrGameOver)
			}
			log.Error().Err(err).Str("match", id).Msg("mcp play_round")
			return nil, game.Outcome{}, err
		}
		return nil, out, nil
	}
}

func (s *Server) getState() mcp.ToolHandlerFor[MatchInput, game.Snapshot] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MatchInput) (*mcp.CallToolResult, game.Snapshot, error) {
		snap, err := s.tools.GetState(ctx, s.match(in.MatchID))
		if err != nil {
			return nil, game.Snapshot{}, err
		}
		return nil, snap, nil
	}
}

func (s *Server) resetGame() mcp.ToolHandlerFor[MatchInput, referee.ResetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MatchInput) (*mcp.CallToolResult, referee.ResetResult, error) {
		res, err := s.tools.ResetGame(ctx, s.match(in.MatchID))
		if err != nil {
			return nil, referee.ResetResult{}, err
		}
		return nil, res, nil
	}
}
