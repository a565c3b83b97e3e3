package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const imageGenerationsPath = "/v1/images/generations"

// ImageGeneration holds either a temporary URL or inline bytes, depending on
// what the model returned.
type ImageGeneration struct {
	URL           string
	Bytes         []byte
	MimeType      string
	RevisedPrompt string
}

type imagesGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type imageDatum struct {
	B64JSON       string `json:"b64_json"`
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt"`
}

type imagesGenerationResponse struct {
	Data []imageDatum `json:"data"`
}

func (c *client) GenerateImage(ctx context.Context, prompt string) (ImageGeneration, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ImageGeneration{}, errors.New("image prompt required")
	}
	req := imagesGenerationRequest{Model: c.cfg.ImageModel, Prompt: prompt, N: 1, Size: c.cfg.ImageSize}
	// gpt-image-* models always answer with b64 and reject response_format.
	if !strings.HasPrefix(strings.ToLower(c.cfg.ImageModel), "gpt-image-") {
		req.ResponseFormat = "url"
	}

	var resp imagesGenerationResponse
	if err := c.postJSON(ctx, c.cfg.ImageModel, imageGenerationsPath, req, &resp); err != nil {
		return ImageGeneration{}, err
	}
	if len(resp.Data) == 0 {
		return ImageGeneration{}, errors.New("no image returned")
	}
	return decodeImage(resp.Data[0])
}

func decodeImage(d imageDatum) (ImageGeneration, error) {
	out := ImageGeneration{RevisedPrompt: strings.TrimSpace(d.RevisedPrompt)}
	if u := strings.TrimSpace(d.URL); u != "" {
		out.URL = u
		return out, nil
	}
	b64 := strings.TrimSpace(d.B64JSON)
	if b64 == "" {
		return out, errors.New("image response carries neither url nor b64_json")
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return out, fmt.Errorf("decode image base64: %w", err)
	}
	if len(raw) == 0 {
		return out, errors.New("image response decoded to zero bytes")
	}
	out.Bytes = raw
	out.MimeType = "image/png"
	return out, nil
}
