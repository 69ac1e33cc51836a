package dashboard

import (
	"slices"

	"github.com/bilgisen/adforge/internal/models"
)

// Selection is a set of record ids picked for a bulk action
type Selection struct {
	ids map[string]struct{}
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAll replaces the selection with every record in view
func (s *Selection) SelectAll(records []models.ContentRecord) {
	s.ids = make(map[string]struct{}, len(records))
	for _, rec := range records {
		s.ids[rec.ID] = struct{}{}
	}
}

func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

func (s *Selection) IsSelected(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order
func (s *Selection) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Selected returns the selected records in their view order
func (s *Selection) Selected(records []models.ContentRecord) []models.ContentRecord {
	return Export(records, s.IDs())
}

// AllSelected reports whether every record in view is selected
func (s *Selection) AllSelected(records []models.ContentRecord) bool {
	if len(records) == 0 {
		return false
	}
	for _, rec := range records {
		if !s.IsSelected(rec.ID) {
			return false
		}
	}
	return true
}

// Partial reports a non-empty selection smaller than the view
func (s *Selection) Partial(records []models.ContentRecord) bool {
	return len(s.ids) > 0 && len(s.ids) < len(records)
}
