package imagegen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedOutput is returned when a prediction's output holds no usable image URL
var ErrUnrecognizedOutput = errors.New("unrecognized image output")

// Output is one of the shapes an image model may return
type Output interface {
	ImageURL() (string, error)
}

// StringOutput is a bare URL
type StringOutput string

// ListOutput is a list of outputs; the first one wins
type ListOutput []Output

// ObjectOutput is a file object exposing url or href
type ObjectOutput struct {
	URL  string `json:"url"`
	Href string `json:"href"`
}

func (s StringOutput) ImageURL() (string, error) {
	return httpURL(string(s))
}

func (l ListOutput) ImageURL() (string, error) {
	if len(l) == 0 {
		return "", fmt.Errorf("%w: empty list", ErrUnrecognizedOutput)
	}
	return l[0].ImageURL()
}

func (o ObjectOutput) ImageURL() (string, error) {
	if o.URL != "" {
		return httpURL(o.URL)
	}
	if o.Href != "" {
		return httpURL(o.Href)
	}
	return "", fmt.Errorf("%w: object without url or href", ErrUnrecognizedOutput)
}

// DecodeOutput classifies raw prediction output into one of the known variants
func DecodeOutput(raw json.RawMessage) (Output, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: no output", ErrUnrecognizedOutput)
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedOutput, err)
		}
		return StringOutput(s), nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedOutput, err)
		}
		list := make(ListOutput, 0, len(items))
		for _, item := range items {
			out, err := DecodeOutput(item)
			if err != nil {
				return nil, err
			}
			list = append(list, out)
		}
		return list, nil

	case '{':
		var obj ObjectOutput
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnrecognizedOutput, err)
		}
		return obj, nil
	}

	return nil, fmt.Errorf("%w: unexpected %q", ErrUnrecognizedOutput, truncate(string(raw), 40))
}

// ExtractURL decodes raw output and returns its image URL
func ExtractURL(raw json.RawMessage) (string, error) {
	out, err := DecodeOutput(raw)
	if err != nil {
		return "", err
	}
	return out.ImageURL()
}

func httpURL(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q is not a URL", ErrUnrecognizedOutput, truncate(s, 40))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
