package llm

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrNoJSON means no JSON object could be recovered from a model response.
var ErrNoJSON = errors.New("no JSON object in model response")

// Opinion is the model's classification, before any reconciliation.
type Opinion struct {
	Theme     string
	Sentiment string
	Highlight string
}

// Empty reports whether the model offered nothing usable.
func (o Opinion) Empty() bool {
	return o.Theme == "" && o.Sentiment == "" && o.Highlight == ""
}

// ExtractJSON parses text as a JSON object. When that fails it retries on the
// span between the first '{' and the last '}', which strips prose and code
// fences around the object. ok is false when neither attempt yields an object.
func ExtractJSON(text string) (map[string]any, bool) {
	if obj, ok := decodeObject(text); ok {
		return obj, true
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if obj, ok := decodeObject(text[start : end+1]); ok {
			return obj, true
		}
	}
	return nil, false
}

func decodeObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// ParseOpinion extracts theme, sentiment and highlight from a raw model
// response. It accepts "themes" for "theme" and "highlights" for "highlight".
func ParseOpinion(text string) (Opinion, error) {
	obj, ok := ExtractJSON(text)
	if !ok {
		return Opinion{}, ErrNoJSON
	}
	return Opinion{
		Theme:     firstField(obj, "themes", "theme"),
		Sentiment: normalizeSentiment(firstField(obj, "sentiment")),
		Highlight: firstField(obj, "highlights", "highlight"),
	}, nil
}

func firstField(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := fieldText(obj[key]); s != "" {
			return s
		}
	}
	return ""
}

func fieldText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		var parts []string
		for _, item := range x {
			if s := fieldText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
