package steps

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/openai"
)

type fakeLLM struct {
	mu          sync.Mutex
	completions []string
	completeErr error
	image       openai.ImageGeneration
	imageErr    error
	block       bool

	requests     []openai.CompletionRequest
	imagePrompts []string
}

func (f *fakeLLM) Complete(ctx context.Context, req openai.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block := f.block
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.completeErr != nil {
		return "", f.completeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.completions) == 0 {
		return "", errors.New("no scripted completion")
	}
	out := f.completions[0]
	f.completions = f.completions[1:]
	return out, nil
}

func (f *fakeLLM) GenerateImage(ctx context.Context, prompt string) (openai.ImageGeneration, error) {
	f.mu.Lock()
	f.imagePrompts = append(f.imagePrompts, prompt)
	f.mu.Unlock()
	if f.imageErr != nil {
		return openai.ImageGeneration{}, f.imageErr
	}
	return f.image, nil
}

type failingStore struct{ err error }

func (s failingStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	return s.err
}
func (s failingStore) Delete(ctx context.Context, key string) error { return s.err }
func (s failingStore) PublicURL(key string) string                  { return "https://nowhere/" + key }

func testPNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
