package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"claimflow/internal/domain"
)

// ExtractJSONObject returns the text from the first '{' to the last '}'.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// DecodeResponse locates, unmarshals and sanitizes a backend JSON object.
func DecodeResponse(resp string, moneyFields []string) (Fields, error) {
	raw, ok := ExtractJSONObject(resp)
	if !ok {
		return nil, &domain.ParseError{Err: fmt.Errorf("no JSON object in response: %q", truncate(resp, 200))}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, &domain.ParseError{Err: fmt.Errorf("unmarshaling response JSON: %w", err)}
	}
	return Sanitize(m, moneyFields), nil
}

// Sanitize drops null and empty values, trims strings and coerces money strings to numbers.
// Money fields that cannot be parsed are dropped.
func Sanitize(m map[string]any, moneyFields []string) Fields {
	money := map[string]bool{}
	for _, f := range moneyFields {
		money[f] = true
	}
	out := Fields{}
	for k, v := range m {
		clean, ok := sanitizeValue(v)
		if !ok {
			continue
		}
		if money[k] {
			if s, isStr := clean.(string); isStr {
				f, err := ParseMoney(s)
				if err != nil {
					continue
				}
				clean = f
			}
		}
		out[k] = clean
	}
	return out
}

func sanitizeValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		s := strings.TrimSpace(t)
		if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "n/a") {
			return nil, false
		}
		return s, true
	case []any:
		var items []any
		for _, item := range t {
			if clean, ok := sanitizeValue(item); ok {
				items = append(items, clean)
			}
		}
		return items, len(items) > 0
	case map[string]any:
		nested := Sanitize(t, []string{"amount"})
		return map[string]any(nested), len(nested) > 0
	default:
		return t, true
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
