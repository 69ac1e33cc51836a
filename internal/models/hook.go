package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// HookStyle is the rhetorical pattern a hook follows
type HookStyle string

const (
	HookCuriosity     HookStyle = "curiosity"
	HookBoldClaim     HookStyle = "bold_claim"
	HookQuestion      HookStyle = "question"
	HookControversial HookStyle = "controversial"
	HookStory         HookStyle = "story"
	HookFOMO          HookStyle = "fomo"
	HookResults       HookStyle = "results"
)

// HookStyles lists every accepted style tag
var HookStyles = []HookStyle{
	HookCuriosity, HookBoldClaim, HookQuestion, HookControversial, HookStory, HookFOMO, HookResults,
}

// Valid reports whether s is one of the seven known styles
func (s HookStyle) Valid() bool {
	for _, known := range HookStyles {
		if s == known {
			return true
		}
	}
	return false
}

// Urgent reports whether the style is urgency-oriented
func (s HookStyle) Urgent() bool {
	return s == HookFOMO
}

// Hook is a short attention-grabbing opening line
type Hook struct {
	Text       string    `json:"hook"`
	Style      HookStyle `json:"style"`
	WhyItWorks string    `json:"whyItWorks"`
}

// Value stores a hook as jsonb
func (h Hook) Value() (driver.Value, error) {
	return json.Marshal(h)
}

// Scan reads a hook from a jsonb column
func (h *Hook) Scan(src interface{}) error {
	return scanJSON(src, h)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
