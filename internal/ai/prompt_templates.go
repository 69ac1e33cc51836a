package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/bilgisen/adforge/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Prompts holds the instruction templates sent to the text model
type Prompts struct {
	Hooks  HookPrompt   `yaml:"hooks"`
	Script ScriptPrompt `yaml:"script"`
}

type HookPrompt struct {
	MaxTokens int    `yaml:"max_tokens"`
	Template  string `yaml:"template"`
}

type ScriptPrompt struct {
	MaxTokens int                             `yaml:"max_tokens"`
	Types     map[models.SlideshowType]string `yaml:"types"`
	Template  string                          `yaml:"template"`
}

// HookParams feeds the hooks template
type HookParams struct {
	models.Product
	Tone string
}

// ScriptParams feeds the script template
type ScriptParams struct {
	models.Product
	Hook             string
	Type             models.SlideshowType
	TypeInstructions string
	SlideCount       int
}

// LoadPrompts reads prompts from path, or the built-in set when path is empty
func LoadPrompts(path string) (*Prompts, error) {
	data := defaultPrompts
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompts file: %w", err)
		}
	}

	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}
	if p.Hooks.Template == "" || p.Script.Template == "" {
		return nil, fmt.Errorf("prompts file must define hooks.template and script.template")
	}
	if _, ok := p.Script.Types[models.SlideshowListicle]; !ok {
		return nil, fmt.Errorf("prompts file must define script.types.listicle")
	}

	return &p, nil
}

// DefaultPrompts returns the built-in prompt set
func DefaultPrompts() *Prompts {
	p, err := LoadPrompts("")
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Prompts) RenderHooks(params HookParams) (string, error) {
	params.Product = escapeProduct(params.Product)
	return render(p.Hooks.Template, params)
}

func (p *Prompts) RenderScript(params ScriptParams) (string, error) {
	params.Product = escapeProduct(params.Product)
	params.Hook = escapeForPrompt(params.Hook)
	params.TypeInstructions = p.Script.Types[params.Type]
	return render(p.Script.Template, params)
}

// KnownType reports whether the prompt set has instructions for t
func (p *Prompts) KnownType(t models.SlideshowType) bool {
	_, ok := p.Script.Types[t]
	return ok
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"sub":  func(a, b int) int { return a - b },
	"mul":  func(a, b int) int { return a * b },
	"styles": func() string {
		names := make([]string, len(models.HookStyles))
		for i, s := range models.HookStyles {
			names[i] = string(s)
		}
		return strings.Join(names, "|")
	},
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Funcs(funcs).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func escapeProduct(p models.Product) models.Product {
	p.Name = escapeForPrompt(p.Name)
	p.Description = escapeForPrompt(p.Description)
	p.Price = escapeForPrompt(p.Price)
	p.TargetAudience = escapeForPrompt(p.TargetAudience)
	benefits := make([]string, 0, len(p.Benefits))
	for _, b := range p.Benefits {
		if b = escapeForPrompt(b); b != "" {
			benefits = append(benefits, b)
		}
	}
	p.Benefits = benefits
	return p
}

// escapeForPrompt flattens user input onto one line so it cannot break the prompt layout
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, `"`, `'`)
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
