package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const chatCompletionsPath = "/v1/chat/completions"

type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature *float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
		Refusal string `json:"refusal"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Complete returns the first choice's text. A refusal is an error so the
// caller never persists it as content.
func (c *client) Complete(ctx context.Context, in CompletionRequest) (string, error) {
	user := strings.TrimSpace(in.User)
	if user == "" {
		return "", errors.New("completion input required")
	}
	msgs := make([]chatMessage, 0, 2)
	if sys := strings.TrimSpace(in.System); sys != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: sys})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: user})

	var resp chatCompletionResponse
	err := c.postJSON(ctx, c.cfg.Model, chatCompletionsPath, chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    msgs,
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	first := resp.Choices[0]
	if r := strings.TrimSpace(first.Message.Refusal); r != "" {
		return "", fmt.Errorf("model refused: %s", clip(r, 200))
	}
	if first.FinishReason == "length" {
		c.log.Warn("completion truncated at max_tokens", "max_tokens", in.MaxTokens)
	}
	return first.Message.Content, nil
}
