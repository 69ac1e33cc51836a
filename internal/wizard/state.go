package wizard

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/bilgisen/adforge/internal/ai"
	"github.com/bilgisen/adforge/internal/models"
)

// Step is the screen the wizard is on
type Step int

const (
	StepProduct Step = iota + 1
	StepHooks
	StepConfigure
	StepEdit
	StepSaved
)

func (s Step) String() string {
	switch s {
	case StepProduct:
		return "product"
	case StepHooks:
		return "hooks"
	case StepConfigure:
		return "configure"
	case StepEdit:
		return "edit"
	case StepSaved:
		return "saved"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ErrTransition is returned when an action does not apply to the current step
var ErrTransition = errors.New("transition not allowed")

// Settings are the slideshow options chosen before the script is generated
type Settings struct {
	Type       models.SlideshowType
	SlideCount int
	ImageStyle models.ImageStyle
	Duration   int
}

// DefaultSettings matches the script generator defaults
func DefaultSettings() Settings {
	return Settings{
		Type:       models.SlideshowListicle,
		SlideCount: ai.DefaultScriptSlides,
		ImageStyle: models.StyleAesthetic,
		Duration:   models.DefaultSeconds,
	}
}

// State is one immutable snapshot of the slideshow wizard. Reduce is the only
// way to get from one snapshot to the next.
type State struct {
	Step      Step
	Product   models.Product
	Tone      string
	Hooks     []models.Hook
	Hook      *models.Hook
	Settings  Settings
	Slideshow *models.Slideshow

	// ImageErrors holds the last failure per slide number
	ImageErrors map[int]string

	SavedID string
	Durable bool
	Err     string
}

// Initial is the empty wizard on the product step
func Initial() State {
	return State{Step: StepProduct, Settings: DefaultSettings()}
}

// Reduce applies a to s. A refused action returns s unchanged with the error.
func Reduce(s State, a Action) (State, error) {
	next, err := a.apply(s.clone())
	if err != nil {
		return s, err
	}
	return next, nil
}

func (s State) clone() State {
	out := s
	out.Product.Benefits = slices.Clone(s.Product.Benefits)
	out.Hooks = slices.Clone(s.Hooks)
	if s.Hook != nil {
		h := *s.Hook
		out.Hook = &h
	}
	if s.Slideshow != nil {
		show := s.Slideshow.Clone()
		out.Slideshow = &show
	}
	out.ImageErrors = maps.Clone(s.ImageErrors)
	return out
}

// CanContinue reports whether the current step has what the next one needs
func (s State) CanContinue() bool {
	switch s.Step {
	case StepProduct:
		return s.Product.Description != ""
	case StepHooks:
		return s.Hook != nil
	case StepConfigure:
		return s.Settings.SlideCount > 0
	case StepEdit:
		return s.Slideshow != nil && len(s.Slideshow.Slides) >= models.MinSlides
	default:
		return false
	}
}

// MissingImages lists slide numbers without an image
func (s State) MissingImages() []int {
	if s.Slideshow == nil {
		return nil
	}
	var missing []int
	for _, sl := range s.Slideshow.Slides {
		if sl.ImageURL == "" {
			missing = append(missing, sl.SlideNumber)
		}
	}
	return missing
}

func refuse(action string, step Step) error {
	return fmt.Errorf("%w: %s on %s step", ErrTransition, action, step)
}
