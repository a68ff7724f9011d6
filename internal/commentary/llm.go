package commentary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// LLMConfig configures an OpenAI-compatible responses endpoint.
type LLMConfig struct {
	ResponsesURL string
	APIKey       string
	Model        string
	Timeout      time.Duration // per attempt
	MaxRetries   uint          // extra attempts after a rate-limited call
	RetryDelay   time.Duration
	HTTPClient   *http.Client
}

// LLM asks a language model for commentary and falls back to Templated.
type LLM struct {
	cfg      LLMConfig
	fallback Narrator
}

// statusError is a non-2xx reply from the model endpoint.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("responses status %d: %s", e.code, e.body)
}

// NewLLM builds a model-backed Narrator. Zero fields get defaults.
func NewLLM(cfg LLMConfig) *LLM {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.ResponsesURL) == "" {
		cfg.ResponsesURL = "https://api.openai.com/v1/responses"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &LLM{cfg: cfg, fallback: Templated{}}
}

// NewNarrator returns an LLM narrator when an API key is configured and the
// canned Templated narrator otherwise.
func NewNarrator(cfg LLMConfig) Narrator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Templated{}
	}
	return NewLLM(cfg)
}

// Narrate implements Narrator.
func (l *LLM) Narrate(ctx context.Context, ev Event) string {
	text, err := l.generate(ctx, Prompt(ev))
	if err != nil {
		log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("commentary model unavailable, using template")
		return l.fallback.Narrate(ctx, ev)
	}
	return text
}

// generate calls the model, retrying only rate-limited replies.
func (l *LLM) generate(ctx context.Context, prompt string) (string, error) {
	op := func() (string, error) {
		text, err := l.invoke(ctx, prompt)
		if err == nil {
			return text, nil
		}
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusTooManyRequests {
			return "", err
		}
		return "", backoff.Permanent(err)
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(l.cfg.RetryDelay)),
		backoff.WithMaxTries(l.cfg.MaxRetries+1),
	)
}

func (l *LLM) invoke(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(l.cfg.APIKey) == "" {
		return "", errors.New("api key is required")
	}
	if strings.TrimSpace(l.cfg.Model) == "" {
		return "", errors.New("model is required")
	}

	body, err := json.Marshal(map[string]any{
		"model": l.cfg.Model,
		"input": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal responses request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, l.cfg.ResponsesURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build responses request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(l.cfg.APIKey))

	res, err := l.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("responses request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &statusError{code: res.StatusCode, body: strings.TrimSpace(string(b))}
	}

	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode responses reply: %w", err)
	}
	if text := strings.TrimSpace(payload.OutputText); text != "" {
		return text, nil
	}
	for _, item := range payload.Output {
		for _, c := range item.Content {
			if text := strings.TrimSpace(c.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", errors.New("responses reply missing output text")
}

// Prompt renders the model instruction for ev.
func Prompt(ev Event) string {
	switch ev.Kind {
	case KindIntro:
		return "Welcome the player to Rock-Paper-Scissors-Plus in 1-2 sentences. Be enthusiastic and brief."
	case KindReset:
		return "The player reset the game. Invite them to a new best-of-3 match in 1 short sentence."
	}

	o := ev.Outcome
	if o.Invalid() {
		return fmt.Sprintf("Round %d: the player's move %q was rejected (%s) and the round is wasted. "+
			"Current score: User %d - Bot %d. Give a brief, friendly comment (1 sentence).",
			o.Round, o.UserMove, o.ErrorMessage, o.UserScore, o.BotScore)
	}

	bot := ""
	if o.BotMove != nil {
		bot = string(*o.BotMove)
	}
	if o.GameOver && o.Winner != nil {
		return fmt.Sprintf("Round %d: User played %s, bot played %s. Result: %s. "+
			"Final score: User %d - Bot %d. Winner: %s. Give a brief, enthusiastic final comment (1 sentence).",
			o.Round, o.UserMove, bot, o.Result, o.UserScore, o.BotScore, *o.Winner)
	}
	return fmt.Sprintf("Round %d: User played %s, bot played %s. Result: %s. "+
		"Current score: User %d - Bot %d. Give a brief, fun comment (1 sentence).",
		o.Round, o.UserMove, bot, o.Result, o.UserScore, o.BotScore)
}

var _ Narrator = (*LLM)(nil)
