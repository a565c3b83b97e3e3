package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

type PromptName string

const (
	PromptCardSummary     PromptName = "card_summary"
	PromptCardImagePrompt PromptName = "card_image_prompt"
)

// Input carries every field a card prompt may reference.
type Input struct {
	Title       string
	Description string
}

type Prompt struct {
	Name    string
	Version int
	System  string
	User    string
}

// Definition is the on-disk declaration of a prompt.
type Definition struct {
	Name    PromptName `yaml:"name"`
	Version int        `yaml:"version"`
	System  string     `yaml:"system"`
	User    string     `yaml:"user"`
}

type Template struct {
	Name    PromptName
	Version int
	system  *template.Template
	user    *template.Template
}

//go:embed prompts.yaml
var embedded []byte

var (
	loadOnce sync.Once
	registry map[PromptName]Template
	loadErr  error
)

func MakeTemplate(s Definition) (Template, error) {
	if strings.TrimSpace(string(s.Name)) == "" {
		return Template{}, fmt.Errorf("missing prompt name")
	}
	if s.Version <= 0 {
		return Template{}, fmt.Errorf("invalid version for %s", s.Name)
	}
	sysT, err := template.New("system").Option("missingkey=zero").Parse(s.System)
	if err != nil {
		return Template{}, fmt.Errorf("%s system template parse: %w", s.Name, err)
	}
	userT, err := template.New("user").Option("missingkey=zero").Parse(s.User)
	if err != nil {
		return Template{}, fmt.Errorf("%s user template parse: %w", s.Name, err)
	}
	return Template{Name: s.Name, Version: s.Version, system: sysT, user: userT}, nil
}

// Parse compiles a YAML list of prompt definitions.
func Parse(raw []byte) (map[PromptName]Template, error) {
	var defs []Definition
	if err := yaml.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}
	out := make(map[PromptName]Template, len(defs))
	for _, s := range defs {
		t, err := MakeTemplate(s)
		if err != nil {
			return nil, err
		}
		if _, dup := out[t.Name]; dup {
			return nil, fmt.Errorf("duplicate prompt %s", t.Name)
		}
		out[t.Name] = t
	}
	return out, nil
}

func load() (map[PromptName]Template, error) {
	loadOnce.Do(func() {
		registry, loadErr = Parse(embedded)
	})
	return registry, loadErr
}

// Build renders a named prompt against in.
func Build(name PromptName, in Input) (Prompt, error) {
	reg, err := load()
	if err != nil {
		return Prompt{}, err
	}
	t, ok := reg[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", name)
	}
	sys, err := render(t.system, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	user, err := render(t.user, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	return Prompt{Name: string(t.Name), Version: t.Version, System: sys, User: user}, nil
}

func render(t *template.Template, in Input) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, in); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
