package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/bilgisen/adforge/internal/errs"
)

// Slideshow bounds
const (
	MinSlides      = 2
	MaxSlides      = 12
	MinDuration    = 1
	MaxDuration    = 10
	DefaultSeconds = 3
)

// SlideshowType selects the narrative structure of a script
type SlideshowType string

const (
	SlideshowListicle    SlideshowType = "listicle"
	SlideshowStory       SlideshowType = "story"
	SlideshowBeforeAfter SlideshowType = "before_after"
	SlideshowTutorial    SlideshowType = "tutorial"
)

// ImageStyle selects the aesthetic appended to image prompts
type ImageStyle string

const (
	StyleRealistic ImageStyle = "realistic"
	StyleAesthetic ImageStyle = "aesthetic"
	StyleMinimal   ImageStyle = "minimal"
	StyleVibrant   ImageStyle = "vibrant"
)

// Slide is one frame of a slideshow
type Slide struct {
	SlideNumber int    `json:"slideNumber"`
	Text        string `json:"text"`
	ImagePrompt string `json:"imagePrompt"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Duration    int    `json:"duration" validate:"min=1,max=10"`
}

// Slides is the ordered slide list, stored as jsonb
type Slides []Slide

// Value stores slides as jsonb
func (s Slides) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan reads slides from a jsonb column
func (s *Slides) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// Slideshow is the working object between script generation and persistence.
// Mutators never modify the receiver; they return a renumbered copy with the
// total duration recomputed.
type Slideshow struct {
	Title         string   `json:"title"`
	Slides        Slides   `json:"slides"`
	TotalDuration int      `json:"totalDuration"`
	Hashtags      []string `json:"hashtags"`
}

// Clone returns a deep copy
func (s Slideshow) Clone() Slideshow {
	out := s
	out.Slides = append(Slides(nil), s.Slides...)
	out.Hashtags = append([]string(nil), s.Hashtags...)
	return out
}

// Normalize renumbers slides 1..N and recomputes the total duration
func (s Slideshow) Normalize() Slideshow {
	out := s.Clone()
	total := 0
	for i := range out.Slides {
		out.Slides[i].SlideNumber = i + 1
		total += out.Slides[i].Duration
	}
	out.TotalDuration = total
	return out
}

// SumDurations adds up the slide durations
func (s Slideshow) SumDurations() int {
	total := 0
	for _, sl := range s.Slides {
		total += sl.Duration
	}
	return total
}

// AddSlide inserts slide after position index (0-based); index -1 inserts at the front
func (s Slideshow) AddSlide(index int, slide Slide) (Slideshow, error) {
	if len(s.Slides) >= MaxSlides {
		return s, errs.Invalid("slides", "a slideshow can have at most %d slides", MaxSlides)
	}
	if index < -1 || index >= len(s.Slides) {
		index = len(s.Slides) - 1
	}
	if slide.Duration == 0 {
		slide.Duration = DefaultSeconds
	}
	if err := checkDuration(slide.Duration); err != nil {
		return s, err
	}

	out := s.Clone()
	pos := index + 1
	out.Slides = append(out.Slides, Slide{})
	copy(out.Slides[pos+1:], out.Slides[pos:])
	out.Slides[pos] = slide
	return out.Normalize(), nil
}

// RemoveSlide deletes the slide at index (0-based)
func (s Slideshow) RemoveSlide(index int) (Slideshow, error) {
	if len(s.Slides) <= MinSlides {
		return s, errs.Invalid("slides", "a slideshow needs at least %d slides", MinSlides)
	}
	if err := s.checkIndex(index); err != nil {
		return s, err
	}

	out := s.Clone()
	out.Slides = append(out.Slides[:index], out.Slides[index+1:]...)
	return out.Normalize(), nil
}

// SetDuration changes one slide's duration
func (s Slideshow) SetDuration(index, seconds int) (Slideshow, error) {
	if err := s.checkIndex(index); err != nil {
		return s, err
	}
	if err := checkDuration(seconds); err != nil {
		return s, err
	}
	out := s.Clone()
	out.Slides[index].Duration = seconds
	return out.Normalize(), nil
}

// ApplyDuration overwrites every slide's duration
func (s Slideshow) ApplyDuration(seconds int) (Slideshow, error) {
	if err := checkDuration(seconds); err != nil {
		return s, err
	}
	out := s.Clone()
	for i := range out.Slides {
		out.Slides[i].Duration = seconds
	}
	return out.Normalize(), nil
}

// SetText replaces a slide's overlay text
func (s Slideshow) SetText(index int, text string) (Slideshow, error) {
	if err := s.checkIndex(index); err != nil {
		return s, err
	}
	out := s.Clone()
	out.Slides[index].Text = text
	return out, nil
}

// SetImagePrompt replaces a slide's image prompt. The current image no longer
// matches the prompt, so it is dropped.
func (s Slideshow) SetImagePrompt(index int, prompt string) (Slideshow, error) {
	if err := s.checkIndex(index); err != nil {
		return s, err
	}
	out := s.Clone()
	out.Slides[index].ImagePrompt = prompt
	out.Slides[index].ImageURL = ""
	return out, nil
}

// SetImageURL sets the image of the slide numbered slideNumber
func (s Slideshow) SetImageURL(slideNumber int, url string) (Slideshow, error) {
	out := s.Clone()
	for i := range out.Slides {
		if out.Slides[i].SlideNumber == slideNumber {
			out.Slides[i].ImageURL = url
			return out, nil
		}
	}
	return s, errs.Invalid("slideNumber", "no slide numbered %d", slideNumber)
}

// Thumbnail is the first slide image in order, or empty
func (s Slideshow) Thumbnail() string {
	for _, sl := range s.Slides {
		if sl.ImageURL != "" {
			return sl.ImageURL
		}
	}
	return ""
}

func (s Slideshow) checkIndex(index int) error {
	if index < 0 || index >= len(s.Slides) {
		return errs.Invalid("index", "slide index %d out of range", index)
	}
	return nil
}

// CheckBounds reports the first slide count or duration outside the slideshow limits
func (s Slideshow) CheckBounds() error {
	if len(s.Slides) > MaxSlides {
		return errs.Invalid("slides", "a slideshow can have at most %d slides", MaxSlides)
	}
	for i, sl := range s.Slides {
		if checkDuration(sl.Duration) != nil {
			return errs.Invalid("slides", "slide %d: duration must be between %d and %d seconds", i+1, MinDuration, MaxDuration)
		}
	}
	return nil
}

func checkDuration(seconds int) error {
	if seconds < MinDuration || seconds > MaxDuration {
		return errs.Invalid("duration", "must be between %d and %d seconds", MinDuration, MaxDuration)
	}
	return nil
}
