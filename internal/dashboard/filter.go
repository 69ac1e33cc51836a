package dashboard

import (
	"cmp"
	"slices"
	"strings"

	"github.com/bilgisen/adforge/internal/errs"
	"github.com/bilgisen/adforge/internal/models"
)

// Criteria narrows a record list. Zero values match everything.
type Criteria struct {
	Search   string
	Statuses []models.Status
}

// Filter keeps records whose title, product name or prompt contains the
// search text (case-insensitive) and whose status is in the status set
func Filter(records []models.ContentRecord, c Criteria) []models.ContentRecord {
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]models.ContentRecord, 0, len(records))
	for _, rec := range records {
		if search != "" && !matches(rec, search) {
			continue
		}
		if len(c.Statuses) > 0 && !slices.Contains(c.Statuses, rec.Status) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matches(rec models.ContentRecord, search string) bool {
	for _, field := range []string{rec.Title, models.Deref(rec.ProductName), rec.Prompt} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// SortColumn is a sortable record attribute
type SortColumn string

const (
	SortTitle     SortColumn = "title"
	SortStatus    SortColumn = "status"
	SortViews     SortColumn = "views"
	SortLikes     SortColumn = "likes"
	SortCreatedAt SortColumn = "created_at"
)

// Direction is ascending or descending
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortConfig is the active sort column and direction
type SortConfig struct {
	Column    SortColumn `json:"column"`
	Direction Direction  `json:"direction"`
}

// DefaultSort lists newest first
func DefaultSort() SortConfig {
	return SortConfig{Column: SortCreatedAt, Direction: Desc}
}

// Toggle selects column; selecting the current ascending column flips it to descending
func (s SortConfig) Toggle(column SortColumn) SortConfig {
	if s.Column == column && s.Direction == Asc {
		return SortConfig{Column: column, Direction: Desc}
	}
	return SortConfig{Column: column, Direction: Asc}
}

// ParseSort reads a sort from query values. Empty values fall back to DefaultSort.
func ParseSort(column, direction string) (SortConfig, error) {
	cfg := DefaultSort()
	switch SortColumn(column) {
	case "":
	case "video":
		cfg.Column = SortTitle
	case SortTitle, SortStatus, SortViews, SortLikes, SortCreatedAt:
		cfg.Column = SortColumn(column)
	default:
		return cfg, errs.Invalid("sort", "unknown sort column %q", column)
	}

	switch Direction(direction) {
	case "":
	case Asc, Desc:
		cfg.Direction = Direction(direction)
	default:
		return cfg, errs.Invalid("direction", "must be asc or desc")
	}
	return cfg, nil
}

// Sort returns a sorted copy. Ties keep their input order.
func Sort(records []models.ContentRecord, cfg SortConfig) []models.ContentRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b models.ContentRecord) int {
		var c int
		switch cfg.Column {
		case SortTitle:
			c = cmp.Compare(a.Title, b.Title)
		case SortStatus:
			c = cmp.Compare(a.Status, b.Status)
		case SortViews:
			c = cmp.Compare(a.Views, b.Views)
		case SortLikes:
			c = cmp.Compare(a.Likes, b.Likes)
		case SortCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cfg.Direction == Desc {
			return -c
		}
		return c
	})
	return out
}
