package dashboard

import (
	"math"

	"github.com/bilgisen/adforge/internal/models"
)

// DefaultTopN is how many records the top list shows
const DefaultTopN = 5

// Summary aggregates engagement over a set of records
type Summary struct {
	TotalVideos    int                    `json:"totalVideos"`
	Views          int64                  `json:"totalViews"`
	Likes          int64                  `json:"totalLikes"`
	Shares         int64                  `json:"totalShares"`
	Saves          int64                  `json:"totalSaves"`
	EngagementRate float64                `json:"engagementRate"`
	ByStatus       map[models.Status]int  `json:"byStatus"`
	ByKind         map[models.Kind]int    `json:"byKind"`
	Top            []models.ContentRecord `json:"topVideos"`
}

// Summarize totals metrics, counts records per status and kind, and keeps the
// topN records by views. Engagement rate is interactions per view in percent,
// rounded to one decimal, and zero without views.
func Summarize(records []models.ContentRecord, topN int) Summary {
	sum := Summary{
		TotalVideos: len(records),
		ByStatus:    make(map[models.Status]int),
		ByKind:      make(map[models.Kind]int),
	}
	for _, rec := range records {
		sum.Views += rec.Views
		sum.Likes += rec.Likes
		sum.Shares += rec.Shares
		sum.Saves += rec.Saves
		sum.ByStatus[rec.Status]++
		sum.ByKind[rec.Kind]++
	}
	sum.EngagementRate = EngagementRate(sum.Likes, sum.Shares, sum.Saves, sum.Views)

	if topN <= 0 {
		topN = DefaultTopN
	}
	top := Sort(records, SortConfig{Column: SortViews, Direction: Desc})
	if len(top) > topN {
		top = top[:topN]
	}
	sum.Top = top
	return sum
}

func EngagementRate(likes, shares, saves, views int64) float64 {
	if views <= 0 {
		return 0
	}
	rate := float64(likes+shares+saves) / float64(views) * 100
	return math.Round(rate*10) / 10
}

// Export returns the records whose ids are listed, in record order
func Export(records []models.ContentRecord, ids []string) []models.ContentRecord {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]models.ContentRecord, 0, len(ids))
	for _, rec := range records {
		if want[rec.ID] {
			out = append(out, rec)
		}
	}
	return out
}
