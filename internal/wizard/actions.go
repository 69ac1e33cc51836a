package wizard

import (
	"strings"

	"github.com/bilgisen/adforge/internal/ai"
	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/imagegen"
	"github.com/bilgisen/adforge/internal/models"
)

// Action is one wizard transition
type Action interface {
	apply(s State) (State, error)
}

// SetProduct records the product being promoted
type SetProduct struct {
	Product models.Product
	Tone    string
}

func (a SetProduct) apply(s State) (State, error) {
	if s.Step != StepProduct {
		return s, refuse("set product", s.Step)
	}
	if strings.TrimSpace(a.Product.Description) == "" {
		return s, errs.Invalid("productDescription", "Product description is required")
	}
	s.Product = a.Product
	s.Tone = a.Tone
	s.Err = ""
	return s, nil
}

// HooksReceived shows freshly generated hooks. Regenerating drops the old pick.
type HooksReceived struct {
	Hooks []models.Hook
}

func (a HooksReceived) apply(s State) (State, error) {
	if s.Step != StepProduct && s.Step != StepHooks {
		return s, refuse("receive hooks", s.Step)
	}
	if s.Product.Description == "" {
		return s, errs.Invalid("productDescription", "Product description is required")
	}
	if len(a.Hooks) == 0 {
		return s, errs.Invalid("hooks", "no hooks received")
	}
	s.Hooks = append([]models.Hook(nil), a.Hooks...)
	s.Hook = nil
	s.Step = StepHooks
	s.Err = ""
	return s, nil
}

// SelectHook picks one of the shown hooks by position
type SelectHook struct {
	Index int
}

func (a SelectHook) apply(s State) (State, error) {
	if s.Step != StepHooks {
		return s, refuse("select hook", s.Step)
	}
	if a.Index < 0 || a.Index >= len(s.Hooks) {
		return s, errs.Invalid("index", "hook index %d out of range", a.Index)
	}
	h := s.Hooks[a.Index]
	s.Hook = &h
	s.Step = StepConfigure
	s.Err = ""
	return s, nil
}

// ConfigureSlideshow sets the script options. Zero fields keep their current value.
type ConfigureSlideshow Settings

func (a ConfigureSlideshow) apply(s State) (State, error) {
	if s.Step != StepConfigure {
		return s, refuse("configure slideshow", s.Step)
	}
	cfg := s.Settings
	if a.Type != "" {
		switch a.Type {
		case models.SlideshowListicle, models.SlideshowStory, models.SlideshowBeforeAfter, models.SlideshowTutorial:
			cfg.Type = a.Type
		default:
			return s, errs.Invalid("slideshowType", "unknown slideshow type %q", a.Type)
		}
	}
	if a.SlideCount != 0 {
		if a.SlideCount < ai.MinScriptSlides || a.SlideCount > ai.MaxScriptSlides {
			return s, errs.Invalid("slideCount", "must be between %d and %d", ai.MinScriptSlides, ai.MaxScriptSlides)
		}
		cfg.SlideCount = a.SlideCount
	}
	if a.ImageStyle != "" {
		switch a.ImageStyle {
		case models.StyleRealistic, models.StyleAesthetic, models.StyleMinimal, models.StyleVibrant:
			cfg.ImageStyle = a.ImageStyle
		default:
			return s, errs.Invalid("imageStyle", "unknown image style %q", a.ImageStyle)
		}
	}
	if a.Duration != 0 {
		if a.Duration < models.MinDuration || a.Duration > models.MaxDuration {
			return s, errs.Invalid("duration", "must be between %d and %d seconds", models.MinDuration, models.MaxDuration)
		}
		cfg.Duration = a.Duration
	}
	s.Settings = cfg
	s.Err = ""
	return s, nil
}

// ScriptReceived installs a generated script, overriding every slide's
// duration with the configured default
type ScriptReceived struct {
	Slideshow models.Slideshow
}

func (a ScriptReceived) apply(s State) (State, error) {
	if s.Step != StepConfigure && s.Step != StepEdit {
		return s, refuse("receive script", s.Step)
	}
	if len(a.Slideshow.Slides) < models.MinSlides {
		return s, errs.Invalid("slides", "a slideshow needs at least %d slides", models.MinSlides)
	}
	show, err := a.Slideshow.Clone().ApplyDuration(s.Settings.Duration)
	if err != nil {
		return s, err
	}
	s.Slideshow = &show
	s.ImageErrors = nil
	s.Step = StepEdit
	s.Err = ""
	return s, nil
}

// EditSlideText replaces the overlay text of the slide at Index (0-based)
type EditSlideText struct {
	Index int
	Text  string
}

func (a EditSlideText) apply(s State) (State, error) {
	return s.edit("edit slide text", func(show models.Slideshow) (models.Slideshow, error) {
		return show.SetText(a.Index, a.Text)
	})
}

// EditSlidePrompt replaces a slide's image prompt and drops its stale image
type EditSlidePrompt struct {
	Index  int
	Prompt string
}

func (a EditSlidePrompt) apply(s State) (State, error) {
	return s.edit("edit slide prompt", func(show models.Slideshow) (models.Slideshow, error) {
		return show.SetImagePrompt(a.Index, a.Prompt)
	})
}

type SetSlideDuration struct {
	Index   int
	Seconds int
}

func (a SetSlideDuration) apply(s State) (State, error) {
	return s.edit("set slide duration", func(show models.Slideshow) (models.Slideshow, error) {
		return show.SetDuration(a.Index, a.Seconds)
	})
}

// AddSlide inserts Slide after position After; -1 inserts at the front.
// A slide without a duration gets the configured default.
type AddSlide struct {
	After int
	Slide models.Slide
}

func (a AddSlide) apply(s State) (State, error) {
	slide := a.Slide
	if slide.Duration == 0 {
		slide.Duration = s.Settings.Duration
	}
	return s.edit("add slide", func(show models.Slideshow) (models.Slideshow, error) {
		return show.AddSlide(a.After, slide)
	})
}

type DeleteSlide struct {
	Index int
}

func (a DeleteSlide) apply(s State) (State, error) {
	return s.edit("delete slide", func(show models.Slideshow) (models.Slideshow, error) {
		return show.RemoveSlide(a.Index)
	})
}

// ImagesReceived applies a batch result: successes set images, failures are
// remembered per slide so they can be retried one by one
type ImagesReceived struct {
	Results []imagegen.Result
}

func (a ImagesReceived) apply(s State) (State, error) {
	if s.Step != StepEdit || s.Slideshow == nil {
		return s, refuse("receive images", s.Step)
	}
	show := *s.Slideshow
	failures := make(map[int]string)
	for _, r := range a.Results {
		if !r.Success || r.ImageURL == nil {
			failures[r.SlideNumber] = r.Error
			continue
		}
		next, err := show.SetImageURL(r.SlideNumber, *r.ImageURL)
		if err != nil {
			failures[r.SlideNumber] = err.Error()
			continue
		}
		show = next
	}
	s.Slideshow = &show
	s.ImageErrors = nil
	if len(failures) > 0 {
		s.ImageErrors = failures
	}
	s.Err = ""
	return s, nil
}

// SetSlideImage sets one regenerated image by slide number
type SetSlideImage struct {
	SlideNumber int
	URL         string
}

func (a SetSlideImage) apply(s State) (State, error) {
	next, err := s.edit("set slide image", func(show models.Slideshow) (models.Slideshow, error) {
		return show.SetImageURL(a.SlideNumber, a.URL)
	})
	if err != nil {
		return s, err
	}
	delete(next.ImageErrors, a.SlideNumber)
	return next, nil
}

// MarkSaved finishes the wizard with the stored record id
type MarkSaved struct {
	ID      string
	Durable bool
}

func (a MarkSaved) apply(s State) (State, error) {
	if s.Step != StepEdit || s.Slideshow == nil {
		return s, refuse("mark saved", s.Step)
	}
	if a.ID == "" {
		return s, errs.Invalid("id", "saved record id is required")
	}
	s.SavedID = a.ID
	s.Durable = a.Durable
	s.Step = StepSaved
	s.Err = ""
	return s, nil
}

// Fail shows an error without leaving the current step
type Fail struct {
	Message string
}

func (a Fail) apply(s State) (State, error) {
	s.Err = a.Message
	return s, nil
}

// Back returns to the previous step, keeping entered data
type Back struct{}

func (Back) apply(s State) (State, error) {
	switch s.Step {
	case StepHooks:
		s.Step = StepProduct
	case StepConfigure:
		s.Step = StepHooks
	case StepEdit:
		s.Step = StepConfigure
	default:
		return s, refuse("back", s.Step)
	}
	s.Err = ""
	return s, nil
}

// Reset starts over
type Reset struct{}

func (Reset) apply(State) (State, error) {
	return Initial(), nil
}

func (s State) edit(action string, fn func(models.Slideshow) (models.Slideshow, error)) (State, error) {
	if s.Step != StepEdit || s.Slideshow == nil {
		return s, refuse(action, s.Step)
	}
	show, err := fn(*s.Slideshow)
	if err != nil {
		return s, err
	}
	s.Slideshow = &show
	s.Err = ""
	return s, nil
}
