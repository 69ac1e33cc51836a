package dashboard

import (
	"testing"
	"time"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func sample() []models.ContentRecord {
	return []models.ContentRecord{
		{ID: "a", Title: "Glow Mask", Prompt: "led", Status: models.StatusCompleted, Kind: models.KindSlideshow,
			Views: 1000, Likes: 80, Shares: 10, Saves: 10, CreatedAt: day},
		{ID: "b", Title: "Serum drop", ProductName: models.StringPtr("Vitamin C serum"), Status: models.StatusProcessing,
			Kind: models.KindAvatarVideo, Views: 50, Likes: 5, CreatedAt: day.Add(time.Hour)},
		{ID: "c", Title: "Untitled Video", Prompt: "A glowing routine", Status: models.StatusFailed,
			Kind: models.KindAvatarVideo, Views: 300, Likes: 1, CreatedAt: day.Add(2 * time.Hour)},
	}
}

func ids(records []models.ContentRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	records := sample()

	assert.Equal(t, []string{"a", "b", "c"}, ids(Filter(records, Criteria{})))
	assert.Equal(t, []string{"a", "c"}, ids(Filter(records, Criteria{Search: "GLOW"})))
	assert.Equal(t, []string{"b"}, ids(Filter(records, Criteria{Search: "vitamin"})))
	assert.Equal(t, []string{"b", "c"}, ids(Filter(records, Criteria{
		Statuses: []models.Status{models.StatusProcessing, models.StatusFailed},
	})))
	assert.Equal(t, []string{"c"}, ids(Filter(records, Criteria{
		Search:   "glow",
		Statuses: []models.Status{models.StatusFailed},
	})))
}

func TestSort(t *testing.T) {
	records := sample()

	assert.Equal(t, []string{"c", "b", "a"}, ids(Sort(records, DefaultSort())))
	assert.Equal(t, []string{"b", "c", "a"}, ids(Sort(records, SortConfig{Column: SortViews, Direction: Asc})))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Sort(records, SortConfig{Column: SortTitle, Direction: Asc})))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Sort(records, SortConfig{Column: SortLikes, Direction: Desc})))

	// input untouched
	assert.Equal(t, []string{"a", "b", "c"}, ids(records))
}

func TestSortToggle(t *testing.T) {
	cfg := DefaultSort().Toggle(SortViews)
	assert.Equal(t, SortConfig{Column: SortViews, Direction: Asc}, cfg)

	cfg = cfg.Toggle(SortViews)
	assert.Equal(t, SortConfig{Column: SortViews, Direction: Desc}, cfg)

	cfg = cfg.Toggle(SortViews)
	assert.Equal(t, Asc, cfg.Direction)

	assert.Equal(t, SortConfig{Column: SortTitle, Direction: Asc}, cfg.Toggle(SortTitle))
}

func TestParseSort(t *testing.T) {
	cfg, err := ParseSort("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSort(), cfg)

	cfg, err = ParseSort("video", "asc")
	require.NoError(t, err)
	assert.Equal(t, SortConfig{Column: SortTitle, Direction: Asc}, cfg)

	var ve *errs.ValidationError
	_, err = ParseSort("duration", "")
	assert.ErrorAs(t, err, &ve)
	_, err = ParseSort("views", "sideways")
	assert.ErrorAs(t, err, &ve)
}

func TestSelection(t *testing.T) {
	records := sample()
	sel := NewSelection()

	assert.False(t, sel.AllSelected(records))
	assert.False(t, sel.Partial(records))

	sel.Toggle("c")
	sel.Toggle("a")
	assert.True(t, sel.Partial(records))
	assert.Equal(t, []string{"a", "c"}, sel.IDs())
	assert.Equal(t, []string{"a", "c"}, ids(sel.Selected(records)))

	sel.Toggle("c")
	assert.False(t, sel.IsSelected("c"))
	assert.Equal(t, 1, sel.Count())

	sel.SelectAll(records)
	assert.True(t, sel.AllSelected(records))
	assert.False(t, sel.Partial(records))

	sel.Clear()
	assert.Zero(t, sel.Count())
	assert.False(t, sel.AllSelected(nil))
}

func TestSummarize(t *testing.T) {
	sum := Summarize(sample(), 2)

	assert.Equal(t, 3, sum.TotalVideos)
	assert.Equal(t, int64(1350), sum.Views)
	assert.Equal(t, int64(86), sum.Likes)
	// (86 + 10 + 10) / 1350 * 100 = 7.85...
	assert.Equal(t, 7.9, sum.EngagementRate)
	assert.Equal(t, 1, sum.ByStatus[models.StatusFailed])
	assert.Equal(t, 2, sum.ByKind[models.KindAvatarVideo])
	assert.Equal(t, []string{"a", "c"}, ids(sum.Top))
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil, 0)
	assert.Zero(t, sum.TotalVideos)
	assert.Zero(t, sum.EngagementRate)
	assert.Empty(t, sum.Top)
}

func TestEngagementRate(t *testing.T) {
	assert.Equal(t, 10.0, EngagementRate(5, 3, 2, 100))
	assert.Equal(t, 33.3, EngagementRate(1, 0, 0, 3))
	assert.Zero(t, EngagementRate(4, 0, 0, 0))
}

func TestExport(t *testing.T) {
	out := Export(sample(), []string{"c", "missing", "a"})
	assert.Equal(t, []string{"a", "c"}, ids(out))
	assert.Empty(t, Export(sample(), nil))
}
