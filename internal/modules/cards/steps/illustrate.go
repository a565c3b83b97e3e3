package steps

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/graduation-masterpiece/demo-repository/internal/modules/cards/prompts"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/httpx"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/openai"
)

const defaultMaxImageBytes = 20 << 20

var imagePromptMarker = regexp.MustCompile(`(?i)image\s+prompt\s*:`)

type IllustrateDeps struct {
	Log   *logger.Logger
	LLM   openai.Client
	Store objectstore.Store
	// Fetches the temporary image URL returned by the generator.
	HTTP *http.Client

	PromptMaxTokens   int
	CompletionTimeout time.Duration
	ImageTimeout      time.Duration
	FetchTimeout      time.Duration
	UploadTimeout     time.Duration

	KeyPrefix     string
	ImageSide     int
	MaxImageBytes int64
	Now           func() time.Time
}

type Illustration struct {
	ImageURL string
	ImageKey string
	Prompt   string
}

type Illustrator struct {
	deps IllustrateDeps
}

func NewIllustrator(deps IllustrateDeps) *Illustrator {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.HTTP == nil {
		deps.HTTP = http.DefaultClient
	}
	if deps.PromptMaxTokens <= 0 {
		deps.PromptMaxTokens = 2000
	}
	if deps.CompletionTimeout <= 0 {
		deps.CompletionTimeout = 60 * time.Second
	}
	if deps.ImageTimeout <= 0 {
		deps.ImageTimeout = 120 * time.Second
	}
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = 30 * time.Second
	}
	if deps.UploadTimeout <= 0 {
		deps.UploadTimeout = 2 * time.Minute
	}
	if strings.Trim(deps.KeyPrefix, "/ ") == "" {
		deps.KeyPrefix = "images"
	}
	if deps.ImageSide <= 0 {
		deps.ImageSide = DefaultImageSide
	}
	if deps.MaxImageBytes <= 0 {
		deps.MaxImageBytes = defaultMaxImageBytes
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	deps.Log = deps.Log.With("step", "illustrate")
	return &Illustrator{deps: deps}
}

// Illustrate derives an image prompt from the description, generates the
// image, and stores a normalized copy. The returned URL points at durable
// storage, never at the generator's temporary URL.
func (il *Illustrator) Illustrate(ctx context.Context, title, description string) (Illustration, error) {
	imagePrompt, err := il.imagePrompt(ctx, title, description)
	if err != nil {
		return Illustration{}, err
	}

	gen, err := il.generate(ctx, imagePrompt)
	if err != nil {
		return Illustration{}, err
	}

	raw := gen.Bytes
	if len(raw) == 0 {
		fetchCtx, cancel := context.WithTimeout(ctx, il.deps.FetchTimeout)
		raw, _, err = httpx.FetchBytes(fetchCtx, il.deps.HTTP, gen.URL, il.deps.MaxImageBytes)
		cancel()
		if err != nil {
			return Illustration{}, apierr.Storage("fetch generated image", err)
		}
	}

	png, err := NormalizeImage(raw, il.deps.ImageSide)
	if err != nil {
		return Illustration{}, apierr.Upstream("generated image could not be decoded", err)
	}

	key, err := il.newKey()
	if err != nil {
		return Illustration{}, apierr.Internal("generate object key", err)
	}
	upCtx, cancel := context.WithTimeout(ctx, il.deps.UploadTimeout)
	defer cancel()
	if err := il.deps.Store.Put(upCtx, key, bytes.NewReader(png), "image/png"); err != nil {
		return Illustration{}, apierr.Storage("upload image", err)
	}

	il.deps.Log.Debug("image stored", "key", key, "bytes", len(png))
	return Illustration{
		ImageURL: il.deps.Store.PublicURL(key),
		ImageKey: key,
		Prompt:   imagePrompt,
	}, nil
}

// Discard removes an uploaded image whose card could not be persisted.
func (il *Illustrator) Discard(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return il.deps.Store.Delete(ctx, key)
}

func (il *Illustrator) imagePrompt(ctx context.Context, title, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		description = strings.TrimSpace(title)
	}
	p, err := prompts.Build(prompts.PromptCardImagePrompt, prompts.Input{Title: title, Description: description})
	if err != nil {
		return "", apierr.Internal("build image prompt", err)
	}
	callCtx, cancel := context.WithTimeout(ctx, il.deps.CompletionTimeout)
	defer cancel()
	out, err := il.deps.LLM.Complete(callCtx, openai.CompletionRequest{
		System:    p.System,
		User:      p.User,
		MaxTokens: il.deps.PromptMaxTokens,
	})
	if err != nil {
		return "", apierr.Upstream("image prompt generation failed", err)
	}
	prompt := ExtractImagePrompt(out)
	if prompt == "" {
		return "", apierr.Parse("image prompt was empty")
	}
	return prompt, nil
}

func (il *Illustrator) generate(ctx context.Context, prompt string) (openai.ImageGeneration, error) {
	callCtx, cancel := context.WithTimeout(ctx, il.deps.ImageTimeout)
	defer cancel()
	gen, err := il.deps.LLM.GenerateImage(callCtx, prompt)
	if err != nil {
		return openai.ImageGeneration{}, apierr.Upstream("image generation failed", err)
	}
	if len(gen.Bytes) == 0 && strings.TrimSpace(gen.URL) == "" {
		return openai.ImageGeneration{}, apierr.Upstream("image generation returned no image", nil)
	}
	return gen, nil
}

func (il *Illustrator) newKey() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	prefix := strings.Trim(il.deps.KeyPrefix, "/ ")
	return fmt.Sprintf("%s/%d-%s.png", prefix, il.deps.Now().UnixMilli(), id), nil
}

// ExtractImagePrompt returns the text after the IMAGE PROMPT marker, or the
// whole output when the model ignored the format.
func ExtractImagePrompt(out string) string {
	out = strings.TrimSpace(out)
	locs := imagePromptMarker.FindAllStringIndex(out, -1)
	if len(locs) > 0 {
		if tail := strings.TrimSpace(out[locs[len(locs)-1][1]:]); tail != "" {
			return tail
		}
	}
	return out
}
