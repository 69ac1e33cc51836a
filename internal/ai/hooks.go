package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/bilgisen/adforge/internal/models"
)

// HookCount is the number of hooks every generation returns
const HookCount = 10

const minUrgentHooks = 2

// Tones accepted by the hook prompt
var Tones = []string{"casual", "professional", "humorous", "urgent"}

const defaultTone = "casual"

// HookGenerator turns product metadata into candidate hooks
type HookGenerator struct {
	llm     Completer
	prompts *Prompts
}

func NewHookGenerator(llm Completer, prompts *Prompts) *HookGenerator {
	return &HookGenerator{llm: llm, prompts: prompts}
}

// HookResult is a generation's hooks and token usage
type HookResult struct {
	Hooks []models.Hook
	Usage Usage
}

// Generate asks the model for hooks and returns exactly HookCount of them
func (g *HookGenerator) Generate(ctx context.Context, product models.Product, tone string) (*HookResult, error) {
	if strings.TrimSpace(product.Description) == "" {
		return nil, errs.Invalid("productDescription", "Product description is required")
	}

	prompt, err := g.prompts.RenderHooks(HookParams{Product: product, Tone: normalizeTone(tone)})
	if err != nil {
		return nil, fmt.Errorf("render hooks prompt: %w", err)
	}

	completion, err := g.llm.Complete(ctx, prompt, g.prompts.Hooks.MaxTokens)
	if err != nil {
		return nil, err
	}

	var raw []models.Hook
	if err := ExtractJSON(completion.Text, '[', ']', &raw, "hooks"); err != nil {
		return nil, err
	}

	hooks, err := postProcessHooks(raw)
	if err != nil {
		return nil, err
	}

	return &HookResult{Hooks: hooks, Usage: completion.Usage}, nil
}

func postProcessHooks(raw []models.Hook) ([]models.Hook, error) {
	log := logger.Component("hooks")

	hooks := make([]models.Hook, 0, HookCount)
	urgent := 0
	for _, h := range raw {
		h.Text = cleanText(h.Text)
		if h.Text == "" {
			continue
		}
		h.WhyItWorks = cleanText(h.WhyItWorks)

		style, ok := normalizeStyle(string(h.Style))
		if !ok {
			log.Warn().Str("style", string(h.Style)).Msg("Unknown hook style, using curiosity")
		}
		h.Style = style

		hooks = append(hooks, h)
		if len(hooks) == HookCount {
			break
		}
	}

	if len(hooks) < HookCount {
		return nil, &errs.ParseError{
			What: "hooks",
			Err:  fmt.Errorf("expected %d hooks, got %d", HookCount, len(hooks)),
		}
	}

	for _, h := range hooks {
		if h.Style.Urgent() {
			urgent++
		}
	}
	if urgent < minUrgentHooks {
		log.Warn().Int("urgent", urgent).Msg("Fewer urgency hooks than requested")
	}

	return hooks, nil
}

func normalizeTone(tone string) string {
	tone = strings.ToLower(strings.TrimSpace(tone))
	for _, t := range Tones {
		if tone == t {
			return tone
		}
	}
	return defaultTone
}
