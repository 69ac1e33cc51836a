package models

import (
	"errors"
	"testing"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlideshow(n int) Slideshow {
	s := Slideshow{Title: "Test"}
	for i := 0; i < n; i++ {
		s.Slides = append(s.Slides, Slide{Text: "slide", ImagePrompt: "prompt", Duration: 3})
	}
	return s.Normalize()
}

func assertInvariants(t *testing.T, s Slideshow) {
	t.Helper()
	for i, sl := range s.Slides {
		assert.Equal(t, i+1, sl.SlideNumber, "slide numbers must be contiguous")
	}
	assert.Equal(t, s.SumDurations(), s.TotalDuration, "total duration must equal the sum")
}

func TestSlideshowNormalize(t *testing.T) {
	s := Slideshow{Slides: Slides{
		{SlideNumber: 7, Duration: 2},
		{SlideNumber: 3, Duration: 5},
		{SlideNumber: 3, Duration: 1},
	}, TotalDuration: 99}

	got := s.Normalize()
	assertInvariants(t, got)
	assert.Equal(t, 8, got.TotalDuration)
	assert.Equal(t, 7, s.Slides[0].SlideNumber, "receiver must not change")
}

func TestSlideshowAddSlide(t *testing.T) {
	s := newSlideshow(3)

	got, err := s.AddSlide(0, Slide{Text: "inserted", Duration: 4})
	require.NoError(t, err)
	assertInvariants(t, got)
	require.Len(t, got.Slides, 4)
	assert.Equal(t, "inserted", got.Slides[1].Text)
	assert.Equal(t, 13, got.TotalDuration)
	assert.Len(t, s.Slides, 3)

	front, err := s.AddSlide(-1, Slide{Text: "front"})
	require.NoError(t, err)
	assertInvariants(t, front)
	assert.Equal(t, "front", front.Slides[0].Text)
	assert.Equal(t, DefaultSeconds, front.Slides[0].Duration)

	end, err := s.AddSlide(42, Slide{Text: "end", Duration: 1})
	require.NoError(t, err)
	assert.Equal(t, "end", end.Slides[len(end.Slides)-1].Text)
}

func TestSlideshowAddSlideRefusedAtMax(t *testing.T) {
	s := newSlideshow(MaxSlides)

	got, err := s.AddSlide(0, Slide{Text: "one too many"})
	require.Error(t, err)
	var ve *errs.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Len(t, got.Slides, MaxSlides)
}

func TestSlideshowRemoveSlide(t *testing.T) {
	s := newSlideshow(4)
	s, _ = s.SetText(2, "third")

	got, err := s.RemoveSlide(1)
	require.NoError(t, err)
	assertInvariants(t, got)
	require.Len(t, got.Slides, 3)
	assert.Equal(t, "third", got.Slides[1].Text)
	assert.Equal(t, 9, got.TotalDuration)
	assert.Len(t, s.Slides, 4)
}

func TestSlideshowRemoveSlideRefusedAtMin(t *testing.T) {
	s := newSlideshow(MinSlides)

	got, err := s.RemoveSlide(0)
	require.Error(t, err)
	assert.Len(t, got.Slides, MinSlides)

	_, err = newSlideshow(3).RemoveSlide(5)
	assert.Error(t, err)
}

func TestSlideshowSetDuration(t *testing.T) {
	s := newSlideshow(3)

	got, err := s.SetDuration(1, 10)
	require.NoError(t, err)
	assertInvariants(t, got)
	assert.Equal(t, 16, got.TotalDuration)

	_, err = s.SetDuration(1, 0)
	assert.Error(t, err)
	_, err = s.SetDuration(1, 11)
	assert.Error(t, err)
}

func TestSlideshowApplyDuration(t *testing.T) {
	s := newSlideshow(5)
	s, _ = s.SetDuration(0, 7)

	got, err := s.ApplyDuration(2)
	require.NoError(t, err)
	assertInvariants(t, got)
	assert.Equal(t, 10, got.TotalDuration)
}

func TestSlideshowMutationSequenceKeepsInvariants(t *testing.T) {
	s := newSlideshow(2)
	var err error

	for i := 0; i < 6; i++ {
		s, err = s.AddSlide(i%len(s.Slides), Slide{Text: "x", Duration: i%MaxDuration + 1})
		require.NoError(t, err)
		assertInvariants(t, s)
	}
	s, err = s.SetDuration(3, 9)
	require.NoError(t, err)
	assertInvariants(t, s)
	for len(s.Slides) > MinSlides {
		s, err = s.RemoveSlide(0)
		require.NoError(t, err)
		assertInvariants(t, s)
	}
}

func TestSlideshowImages(t *testing.T) {
	s := newSlideshow(3)
	assert.Empty(t, s.Thumbnail())

	s, err := s.SetImageURL(2, "https://img.example/2.webp")
	require.NoError(t, err)
	s, err = s.SetImageURL(3, "https://img.example/3.webp")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/2.webp", s.Thumbnail())

	_, err = s.SetImageURL(9, "https://img.example/9.webp")
	assert.Error(t, err)

	s, err = s.SetImagePrompt(1, "a new prompt")
	require.NoError(t, err)
	assert.Empty(t, s.Slides[1].ImageURL)
	assert.Equal(t, "https://img.example/3.webp", s.Thumbnail())
}

func TestSlidesScan(t *testing.T) {
	var s Slides
	require.NoError(t, s.Scan([]byte(`[{"slideNumber":1,"text":"a","imagePrompt":"b","duration":3}]`)))
	require.Len(t, s, 1)
	assert.Equal(t, "a", s[0].Text)

	var empty Slides
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)

	assert.Error(t, s.Scan(42))
}

func TestHookStyle(t *testing.T) {
	assert.True(t, HookFOMO.Valid())
	assert.True(t, HookFOMO.Urgent())
	assert.False(t, HookStory.Urgent())
	assert.False(t, HookStyle("clickbait").Valid())
}
