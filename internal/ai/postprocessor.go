package ai

import (
	"regexp"
	"strings"

	"github.com/bilgisen/adforge/internal/models"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x09\x0B-\x1F\x7F]`)
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
)

// styleAliases maps tags models tend to invent onto the known styles
var styleAliases = map[string]models.HookStyle{
	"curious":             models.HookCuriosity,
	"curiosity_gap":       models.HookCuriosity,
	"bold":                models.HookBoldClaim,
	"claim":               models.HookBoldClaim,
	"direct_question":     models.HookQuestion,
	"questions":           models.HookQuestion,
	"controversy":         models.HookControversial,
	"controversial_take":  models.HookControversial,
	"hot_take":            models.HookControversial,
	"stories":             models.HookStory,
	"story_hook":          models.HookStory,
	"narrative":           models.HookStory,
	"fear_of_missing_out": models.HookFOMO,
	"urgency":             models.HookFOMO,
	"urgent":              models.HookFOMO,
	"result":              models.HookResults,
	"results_focused":     models.HookResults,
}

// cleanText removes control characters and collapses whitespace to single spaces
func cleanText(s string) string {
	s = controlChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// cleanSlideText is cleanText for overlay text, which keeps its line breaks
func cleanSlideText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = controlChars.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// normalizeStyle maps a free-form style tag onto a known HookStyle
func normalizeStyle(raw string) (models.HookStyle, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)

	if s := models.HookStyle(key); s.Valid() {
		return s, true
	}
	if s, ok := styleAliases[key]; ok {
		return s, true
	}
	return models.HookCuriosity, false
}

// cleanHashtags strips leading '#', whitespace and duplicates
func cleanHashtags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
		tag = strings.Join(strings.Fields(tag), "")
		if tag == "" || seen[strings.ToLower(tag)] {
			continue
		}
		seen[strings.ToLower(tag)] = true
		out = append(out, tag)
	}
	return out
}

func clampDuration(d int) int {
	switch {
	case d < models.MinDuration:
		return models.DefaultSeconds
	case d > models.MaxDuration:
		return models.MaxDuration
	default:
		return d
	}
}
