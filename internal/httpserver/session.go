// internal/httpserver/session.go
//
// Match session cookie.
// Every browser gets an HS256-signed token whose "sid" claim names its match in
// the store. The token is minted on the first request that lacks a valid one.
// This only scopes matches to browsers; there are no user accounts.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"
)

const sessionTTL = 30 * 24 * time.Hour

type ctxSessionKey struct{}

type sessions struct {
	secret []byte
	cookie string
	secure bool
}

func newSessions(secret, cookie string, production bool) *sessions {
	if secret == "" {
		secret = "dev_secret_change_me"
	}
	if cookie == "" {
		cookie = "rps_session"
	}
	return &sessions{secret: []byte(secret), cookie: cookie, secure: production}
}

// middleware resolves the session id and stores it in the request context.
func (s *sessions) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, ok := s.parse(r)
		if !ok {
			var err error
			sid, err = s.issue(w)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("sign session")
				http.Error(w, `{"error":"session_failed"}`, http.StatusInternalServerError)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sid)))
	})
}

// parse returns the sid of a valid session cookie.
func (s *sessions) parse(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.cookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return "", false
	}
	sid, _ := claims["sid"].(string)
	return sid, sid != ""
}

// issue mints a new session id and writes its cookie.
func (s *sessions) issue(w http.ResponseWriter) (string, error) {
	sid := uuid.NewString()
	now := time.Now()
	exp := now.Add(sessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	})
	ss, err := t.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	sameSite := http.SameSiteLaxMode
	if s.secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    ss,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
	return sid, nil
}

// sessionID returns the match id set by sessions.middleware.
func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(ctxSessionKey{}).(string)
	return sid
}
