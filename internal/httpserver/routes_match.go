// internal/httpserver/routes_match.go
//
// HTTP routes for playing a match. All live under /api and act on the match
// named by the session cookie:
//   - POST /api/start    → fresh match + intro commentary
//   - POST /api/validate → check a move without consuming a round
//   - POST /api/play     → play one round (rate limited)
//   - GET  /api/state    → current snapshot
//   - POST /api/reset    → fresh match + reset commentary
//
// Commentary is produced after the round has been stored and never affects it.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/rpsplus/internal/commentary"
	"github.com/robalobadob/rpsplus/internal/game"
)

// mountMatch registers all /api routes.
func (s *Server) mountMatch(limiter *RateLimiter) {
	s.r.Route("/api", func(r chi.Router) {
		r.Use(s.sessions.middleware)
		r.Post("/start", s.handleStart)
		r.Post("/validate", s.handleValidate)
		if limiter != nil {
			r.With(limiter.Middleware).Post("/play", s.handlePlay)
		} else {
			r.Post("/play", s.handlePlay)
		}
		r.Get("/state", s.handleState)
		r.Post("/reset", s.handleReset)
	})
}

// moveReq is the body of /api/validate and /api/play.
type moveReq struct {
	Move string `json:"move"`
}

// messageRes answers /api/start and /api/reset.
type messageRes struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	State   game.Snapshot `json:"state"`
}

type validateRes struct {
	Success      bool          `json:"success"`
	IsValid      bool          `json:"is_valid"`
	ParsedMove   *game.Move    `json:"parsed_move"`
	ErrorMessage string        `json:"error_message,omitempty"`
	State        game.Snapshot `json:"state"`
}

// playRes answers /api/play. Success is false for a wasted (invalid) round;
// the move and result fields are then omitted.
type playRes struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	Round        int           `json:"round"`
	UserMove     string        `json:"user_move,omitempty"`
	BotMove      *game.Move    `json:"bot_move,omitempty"`
	Result       game.Result   `json:"result"`
	UserScore    int           `json:"user_score"`
	BotScore     int           `json:"bot_score"`
	GameOver     bool          `json:"game_over"`
	Winner       *game.Winner  `json:"winner"`
	Commentary   string        `json:"commentary"`
	UserBombUsed bool          `json:"user_bomb_used"`
	BotBombUsed  bool          `json:"bot_bomb_used"`
	State        game.Snapshot `json:"state"`
}

type stateRes struct {
	Success bool          `json:"success"`
	State   game.Snapshot `json:"state"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	res, err := s.tools.StartGame(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, r, err, "start_failed")
		return
	}
	intro := s.narrator.Narrate(r.Context(), commentary.Event{Kind: commentary.KindIntro})
	_ = json.NewEncoder(w).Encode(messageRes{Success: true, Message: intro, State: res.State})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	res, err := s.tools.ValidateMove(r.Context(), sessionID(r), req.Move)
	if err != nil {
		s.fail(w, r, err, "validate_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(validateRes{
		Success:      true,
		IsValid:      res.IsValid,
		ParsedMove:   res.ParsedMove,
		ErrorMessage: res.ErrorMessage,
		State:        res.State,
	})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	id := sessionID(r)
	out, err := s.tools.PlayRound(r.Context(), id, req.Move)
	if errors.Is(err, game.ErrGameOver) {
		http.Error(w, `{"error":"game_over"}`, http.StatusConflict)
		return
	}
	if err != nil {
		s.fail(w, r, err, "play_failed")
		return
	}
	snap, err := s.tools.GetState(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "state_failed")
		return
	}

	res := playRes{
		Success:      !out.Invalid(),
		Error:        out.ErrorMessage,
		Round:        out.Round,
		Result:       out.Result,
		UserScore:    out.UserScore,
		BotScore:     out.BotScore,
		GameOver:     out.GameOver,
		Winner:       out.Winner,
		UserBombUsed: out.UserBombUsed,
		BotBombUsed:  out.BotBombUsed,
		State:        snap,
	}
	if !out.Invalid() {
		res.UserMove = out.UserMove
		res.BotMove = out.BotMove
	}
	res.Commentary = s.narrator.Narrate(r.Context(), commentary.Event{Kind: commentary.KindRound, Outcome: out})
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tools.GetState(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, r, err, "state_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(stateRes{Success: true, State: snap})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	res, err := s.tools.ResetGame(r.Context(), sessionID(r))
	if err != nil {
		s.fail(w, r, err, "reset_failed")
		return
	}
	msg := s.narrator.Narrate(r.Context(), commentary.Event{Kind: commentary.KindReset})
	_ = json.NewEncoder(w).Encode(messageRes{Success: true, Message: msg, State: res.State})
}

// fail logs err and writes a 500 with code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, code string) {
	hlog.FromRequest(r).Error().Err(err).Str("match", sessionID(r)).Msg(code)
	http.Error(w, `{"error":"`+code+`"}`, http.StatusInternalServerError)
}
