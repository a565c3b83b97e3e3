package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/graduation-masterpiece/demo-repository/internal/observability"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/httpx"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

const (
	defaultBaseURL     = "https://api.openai.com"
	defaultModel       = "gpt-4o"
	defaultImageModel  = "dall-e-3"
	defaultImageSize   = "1024x1024"
	defaultHTTPTimeout = 3 * time.Minute

	maxErrorBody = 512
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	ImageSize  string
	// Transport-level ceiling; callers also bound each call with a context deadline.
	HTTPTimeout time.Duration
}

func (c Config) withDefaults() Config {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.BaseURL = strings.TrimRight(orDefault(c.BaseURL, defaultBaseURL), "/")
	c.Model = orDefault(c.Model, defaultModel)
	c.ImageModel = orDefault(c.ImageModel, defaultImageModel)
	c.ImageSize = orDefault(c.ImageSize, defaultImageSize)
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	return c
}

// Client is the narrow slice of the OpenAI API the card pipeline calls.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	GenerateImage(ctx context.Context, prompt string) (ImageGeneration, error)
}

type client struct {
	cfg  Config
	log  *logger.Logger
	http *http.Client
}

func NewClient(cfg Config, log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	return &client{
		cfg:  cfg,
		log:  log.With("service", "OpenAIClient", "model", cfg.Model, "image_model", cfg.ImageModel),
		http: &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

// apiErrorEnvelope is the body OpenAI sends with non-2xx answers.
type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// postJSON sends one request and decodes a 2xx body into out. Generation
// calls are billed even when the client gives up, so nothing here retries.
func (c *client) postJSON(ctx context.Context, model, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		observability.Current().ObserveLLMRequest(model, path, "error", elapsed)
		c.log.Warn("openai request failed", "path", path, "duration_ms", elapsed.Milliseconds(), "transient", httpx.IsTransient(err), "error", err)
		return err
	}
	defer resp.Body.Close()
	observability.Current().ObserveLLMRequest(model, path, strconv.Itoa(resp.StatusCode), elapsed)

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("openai rejected request", "path", path, "status", resp.StatusCode, "transient", httpx.IsTransientHTTPStatus(resp.StatusCode))
		return &httpx.StatusError{StatusCode: resp.StatusCode, Body: errorMessage(body)}
	}
	c.log.Debug("openai request done", "path", path, "duration_ms", elapsed.Milliseconds())
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorMessage prefers the API's own error text over the raw body.
func errorMessage(body []byte) string {
	var env apiErrorEnvelope
	if json.Unmarshal(body, &env) == nil && strings.TrimSpace(env.Error.Message) != "" {
		return strings.TrimSpace(env.Error.Message)
	}
	return clip(string(body), maxErrorBody)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
