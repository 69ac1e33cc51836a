package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/logger"
	"github.com/bilgisen/adforge/internal/models"
)

// Slide count accepted for a script request
const (
	MinScriptSlides     = 3
	MaxScriptSlides     = 10
	DefaultScriptSlides = 6
)

// ScriptRequest is everything needed to write one slideshow
type ScriptRequest struct {
	Hook       string
	Product    models.Product
	Type       models.SlideshowType
	SlideCount int
}

// ScriptResult is the generated slideshow and token usage
type ScriptResult struct {
	Slideshow models.Slideshow
	Usage     Usage
}

// ScriptGenerator writes a multi-slide script around a chosen hook
type ScriptGenerator struct {
	llm     Completer
	prompts *Prompts
}

func NewScriptGenerator(llm Completer, prompts *Prompts) *ScriptGenerator {
	return &ScriptGenerator{llm: llm, prompts: prompts}
}

// Generate requests a script and post-processes it so it always has between
// two and SlideCount slides, numbered 1..N, with the hook on slide 1.
func (g *ScriptGenerator) Generate(ctx context.Context, req ScriptRequest) (*ScriptResult, error) {
	req.Hook = cleanText(req.Hook)
	if req.Hook == "" {
		return nil, errs.Invalid("hook", "Hook and product description are required")
	}
	if strings.TrimSpace(req.Product.Description) == "" {
		return nil, errs.Invalid("productDescription", "Hook and product description are required")
	}
	if req.SlideCount == 0 {
		req.SlideCount = DefaultScriptSlides
	}
	if req.SlideCount < MinScriptSlides || req.SlideCount > MaxScriptSlides {
		return nil, errs.Invalid("slideCount", "must be between %d and %d", MinScriptSlides, MaxScriptSlides)
	}
	if !g.prompts.KnownType(req.Type) {
		req.Type = models.SlideshowListicle
	}

	prompt, err := g.prompts.RenderScript(ScriptParams{
		Product:    req.Product,
		Hook:       req.Hook,
		Type:       req.Type,
		SlideCount: req.SlideCount,
	})
	if err != nil {
		return nil, fmt.Errorf("render script prompt: %w", err)
	}

	completion, err := g.llm.Complete(ctx, prompt, g.prompts.Script.MaxTokens)
	if err != nil {
		return nil, err
	}

	var raw models.Slideshow
	if err := ExtractJSON(completion.Text, '{', '}', &raw, "slideshow"); err != nil {
		return nil, err
	}

	show, err := postProcessScript(raw, req)
	if err != nil {
		return nil, err
	}

	return &ScriptResult{Slideshow: show, Usage: completion.Usage}, nil
}

func postProcessScript(raw models.Slideshow, req ScriptRequest) (models.Slideshow, error) {
	log := logger.Component("script")

	slides := make(models.Slides, 0, len(raw.Slides))
	for _, s := range raw.Slides {
		s.Text = cleanSlideText(s.Text)
		s.ImagePrompt = cleanText(s.ImagePrompt)
		if s.Text == "" && s.ImagePrompt == "" {
			continue
		}
		s.ImageURL = ""
		s.Duration = clampDuration(s.Duration)
		slides = append(slides, s)
	}

	if len(slides) < models.MinSlides {
		return models.Slideshow{}, &errs.ParseError{
			What: "slideshow",
			Err:  fmt.Errorf("expected at least %d slides, got %d", models.MinSlides, len(slides)),
		}
	}

	if len(slides) > req.SlideCount {
		log.Warn().
			Int("requested", req.SlideCount).
			Int("received", len(slides)).
			Msg("Trimming extra slides")
		cta := slides[len(slides)-1]
		slides = append(slides[:req.SlideCount-1], cta)
	} else if len(slides) < req.SlideCount {
		log.Warn().
			Int("requested", req.SlideCount).
			Int("received", len(slides)).
			Msg("Script has fewer slides than requested")
	}

	if !strings.Contains(normalizeForMatch(slides[0].Text), normalizeForMatch(req.Hook)) {
		slides[0].Text = req.Hook
	}

	show := models.Slideshow{
		Title:    cleanText(raw.Title),
		Slides:   slides,
		Hashtags: cleanHashtags(raw.Hashtags),
	}
	if show.Title == "" {
		show.Title = req.Hook
	}

	return show.Normalize(), nil
}

func normalizeForMatch(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
