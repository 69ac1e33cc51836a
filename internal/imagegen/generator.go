package imagegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/models"
)

const formatSuffix = "vertical format 9:16, no text, no watermarks"

var styleSuffixes = map[models.ImageStyle]string{
	models.StyleRealistic: "photorealistic, high quality, professional photography, natural lighting",
	models.StyleAesthetic: "aesthetic, soft colors, dreamy, instagram style, lifestyle photography",
	models.StyleMinimal:   "minimalist, clean background, simple composition, modern",
	models.StyleVibrant:   "vibrant colors, bold, eye-catching, high contrast, energetic",
}

// Size is an image size in pixels
type Size struct {
	Width  int
	Height int
}

// Aspect ratios the generator knows; anything else renders vertical
var sizes = map[string]Size{
	"9:16": {Width: 768, Height: 1344},
	"1:1":  {Width: 1024, Height: 1024},
	"16:9": {Width: 1344, Height: 768},
}

const defaultAspect = "9:16"

// SizeFor returns the pixel size for an aspect ratio
func SizeFor(aspect string) Size {
	if s, ok := sizes[aspect]; ok {
		return s
	}
	return sizes[defaultAspect]
}

// EnhancePrompt appends the style and format suffixes. Unknown styles use fallback.
func EnhancePrompt(prompt string, style, fallback models.ImageStyle) string {
	suffix, ok := styleSuffixes[style]
	if !ok {
		suffix = styleSuffixes[fallback]
	}
	return fmt.Sprintf("%s, %s, %s", strings.TrimSpace(prompt), suffix, formatSuffix)
}

// Generator produces single images
type Generator struct {
	provider Provider
}

func NewGenerator(provider Provider) *Generator {
	return &Generator{provider: provider}
}

// Image is a generated image and the prompt actually sent
type Image struct {
	URL    string `json:"imageUrl"`
	Prompt string `json:"prompt"`
}

// GenerateOne renders a single image without pacing or retries
func (g *Generator) GenerateOne(ctx context.Context, prompt string, style models.ImageStyle, aspect string) (*Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errs.Invalid("prompt", "Image prompt is required")
	}
	if style == "" {
		style = models.StyleRealistic
	}

	enhanced := EnhancePrompt(prompt, style, models.StyleRealistic)
	url, err := g.render(ctx, enhanced, SizeFor(aspect))
	if err != nil {
		return nil, err
	}
	return &Image{URL: url, Prompt: enhanced}, nil
}

func (g *Generator) render(ctx context.Context, prompt string, size Size) (string, error) {
	raw, err := g.provider.Run(ctx, Input{Prompt: prompt, Width: size.Width, Height: size.Height})
	if err != nil {
		return "", err
	}
	return ExtractURL(raw)
}
