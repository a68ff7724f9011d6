package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/rpsplus/internal/commentary"
	"github.com/robalobadob/rpsplus/internal/game"
	"github.com/robalobadob/rpsplus/internal/referee"
	"github.com/robalobadob/rpsplus/internal/store"
)

const testOrigin = "http://app.test"

func newTestServer(t *testing.T, limiter *RateLimiter) *httptest.Server {
	t.Helper()
	tools := referee.New(store.NewMemoryStore(), game.Fixed(game.MoveScissors))
	srv := New(tools, commentary.Templated{}, limiter, Options{
		ClientOrigin:  testOrigin,
		SessionSecret: "test-secret",
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, url, body string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return res.StatusCode, out
}

func state(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	st, ok := body["state"].(map[string]any)
	require.True(t, ok, "missing state in %v", body)
	return st
}

func TestHealthAndIndex(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newClient(t)

	code, body := do(t, c, http.MethodGet, ts.URL+"/health", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["ok"])

	code, body = do(t, c, http.MethodGet, ts.URL+"/", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "rps-plus", body["service"])

	code, body = do(t, c, http.MethodGet, ts.URL+"/nope", "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "not_found", body["error"])
}

func TestStart(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newClient(t)

	code, body := do(t, c, http.MethodPost, ts.URL+"/api/start", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	require.Contains(t, body["message"], "Best of 3")
	st := state(t, body)
	require.EqualValues(t, 0, st["roundNumber"])
	require.Equal(t, false, st["gameOver"])
}

func TestFullMatch(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newClient(t)
	do(t, c, http.MethodPost, ts.URL+"/api/start", "")

	for i := 1; i <= game.RoundLimit; i++ {
		code, body := do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"rock"}`)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, true, body["success"])
		require.EqualValues(t, i, body["round"])
		require.Equal(t, "rock", body["user_move"])
		require.Equal(t, "scissors", body["bot_move"])
		require.Equal(t, "user_win", body["result"])
		require.EqualValues(t, i, body["user_score"])
		require.NotEmpty(t, body["commentary"])

		hist := state(t, body)["history"].([]any)
		require.Len(t, hist, i)

		if i < game.RoundLimit {
			require.Equal(t, false, body["game_over"])
			require.Nil(t, body["winner"])
		} else {
			require.Equal(t, true, body["game_over"])
			require.Equal(t, "user", body["winner"])
			require.Contains(t, body["commentary"], "You take the match!")
		}
	}

	code, body := do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"rock"}`)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "game_over", body["error"])

	code, body = do(t, c, http.MethodGet, ts.URL+"/api/state", "")
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 3, state(t, body)["userScore"])
}

func TestPlay_InvalidMoveWastesRound(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newClient(t)

	code, body := do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"lizard"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, body["success"])
	require.Contains(t, body["error"], "unknown move")
	require.Equal(t, "invalid", body["result"])
	require.EqualValues(t, 1, body["round"])
	require.NotContains(t, body, "bot_move")
	require.Contains(t, body["commentary"], "Round 1 wasted")

	st := state(t, body)
	require.EqualValues(t, 1, st["roundNumber"])
	require.Empty(t, st["history"])
}

func TestPlay_BombOnlyOnce(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newClient(t)

	_, body := do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"BOMB"}`)
	require.Equal(t, true, body["success"])
	require.Equal(t, true, body["user_bomb_used"])

	_, body = do(t, c, http.MethodPost, ts.URL+"/api/validate", `{"move":"bomb"}`)
	require.Equal(t, false, body["is_valid"])
	require.Nil(t, body["parsed_move"])
	require.Contains(t, body["error_message"], "bomb")

	_, body = do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"bomb"}`)
	require.Equal(t, false, body["success"])
	require.EqualValues(t, 2, body["round"])
	require.EqualValues(t, 1, body["user_score"])
}

func TestValidate_DoesNotConsumeRound(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newClient(t)

	code, body := do(t, c, http.MethodPost, ts.URL+"/api/validate", `{"move":" Paper "}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["is_valid"])
	require.Equal(t, "paper", body["parsed_move"])
	require.EqualValues(t, 0, state(t, body)["roundNumber"])
}

func TestBadJSON(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newClient(t)

	for _, path := range []string{"/api/play", "/api/validate"} {
		code, body := do(t, c, http.MethodPost, ts.URL+path, `{"move":`)
		require.Equal(t, http.StatusBadRequest, code, path)
		require.Equal(t, "bad_json", body["error"], path)
	}
}

func TestReset(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newClient(t)
	do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"rock"}`)

	code, body := do(t, c, http.MethodPost, ts.URL+"/api/reset", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Game reset! Ready for a new match?", body["message"])
	require.EqualValues(t, 0, state(t, body)["roundNumber"])
}

func TestSessionsAreIsolated(t *testing.T) {
	ts := newTestServer(t, nil)
	alice, bob := newClient(t), newClient(t)

	do(t, alice, http.MethodPost, ts.URL+"/api/play", `{"move":"rock"}`)
	do(t, alice, http.MethodPost, ts.URL+"/api/play", `{"move":"rock"}`)

	_, body := do(t, bob, http.MethodGet, ts.URL+"/api/state", "")
	require.EqualValues(t, 0, state(t, body)["roundNumber"])

	_, body = do(t, alice, http.MethodGet, ts.URL+"/api/state", "")
	require.EqualValues(t, 2, state(t, body)["roundNumber"])
}

func TestSession_TamperedCookieStartsFresh(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.AddCookie(&http.Cookie{Name: "rps_session", Value: "not.a.jwt"})
	rec := httptest.NewRecorder()
	New(referee.New(store.NewMemoryStore(), game.Fixed(game.MoveRock)), commentary.Templated{}, nil, Options{}).
		Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "rps_session", cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.NotEqual(t, "not.a.jwt", cookies[0].Value)
}

func TestSession_WrongSecretRejected(t *testing.T) {
	a := newSessions("one", "", false)
	b := newSessions("two", "", false)

	rec := httptest.NewRecorder()
	sid, err := a.issue(rec)
	require.NoError(t, err)
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	got, ok := a.parse(req)
	require.True(t, ok)
	require.Equal(t, sid, got)

	_, ok = b.parse(req)
	require.False(t, ok)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/play", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusNoContent, res.StatusCode)
	require.Equal(t, testOrigin, res.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", res.Header.Get("Access-Control-Allow-Credentials"))
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newClient(t)
	do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"rock"}`)

	res, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(raw), `rps_rounds_total{result="user_win"}`)
}

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
	l := NewRateLimiter("", "", 0, 1, time.Minute)
	require.False(t, l.Enabled())
	require.NoError(t, l.Close())

	ts := newTestServer(t, l)
	c := newClient(t)
	for i := 0; i < 3; i++ {
		code, _ := do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"rock"}`)
		require.Equal(t, http.StatusOK, code)
	}
}

func TestRateLimiter_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	// A unique window keeps keys from earlier runs out of the way.
	window := time.Duration(time.Now().UnixNano()%1000+3600) * time.Second
	l := NewRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), 0, 2, window)
	require.True(t, l.Enabled())
	t.Cleanup(func() { _ = l.Close() })

	ts := newTestServer(t, l)
	c := newClient(t)
	for i := 0; i < 2; i++ {
		code, _ := do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"rock"}`)
		require.Equal(t, http.StatusOK, code)
	}
	code, body := do(t, c, http.MethodPost, ts.URL+"/api/play", `{"move":"rock"}`)
	require.Equal(t, http.StatusTooManyRequests, code)
	require.Equal(t, "rate_limited", body["error"])

	// Other routes are not limited.
	code, _ = do(t, c, http.MethodGet, ts.URL+"/api/state", "")
	require.Equal(t, http.StatusOK, code)
}
