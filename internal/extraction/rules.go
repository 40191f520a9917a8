package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fields is the loosely typed field map shared by both extraction passes.
type Fields map[string]any

// Pick selects which regex matches a rule keeps.
type Pick int

const (
	PickFirst Pick = iota
	PickLast
	PickAll
)

// Transform converts a captured string into a field value. ok=false rejects the match.
type Transform func(s string) (any, bool)

// Rule extracts one field. Either Pattern (capture group 1) or Extract is set.
type Rule struct {
	Field     string
	Pattern   *regexp.Regexp
	Pick      Pick
	Transform Transform
	Extract   func(text string) (any, bool)
}

// Battery is an ordered rule list. The first rule that yields a value for a field wins.
type Battery []Rule

// Run evaluates every rule against text. It is a pure function of text.
func (b Battery) Run(text string) Fields {
	out := Fields{}
	for _, r := range b {
		if _, done := out[r.Field]; done {
			continue
		}
		if v, ok := r.apply(text); ok {
			out[r.Field] = v
		}
	}
	return out
}

func (r Rule) apply(text string) (any, bool) {
	if r.Extract != nil {
		return r.Extract(text)
	}
	transform := r.Transform
	if transform == nil {
		transform = Trim
	}

	matches := r.Pattern.FindAllStringSubmatch(text, -1)
	switch r.Pick {
	case PickLast:
		for i := len(matches) - 1; i >= 0; i-- {
			if v, ok := transform(group(matches[i])); ok {
				return v, true
			}
		}
	case PickAll:
		var vals []string
		seen := map[string]bool{}
		for _, m := range matches {
			v, ok := transform(group(m))
			if !ok {
				continue
			}
			s, isStr := v.(string)
			if !isStr || seen[s] {
				continue
			}
			seen[s] = true
			vals = append(vals, s)
		}
		if len(vals) > 0 {
			return vals, true
		}
	default:
		for _, m := range matches {
			if v, ok := transform(group(m)); ok {
				return v, true
			}
		}
	}
	return nil, false
}

func group(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// Trim keeps non-empty trimmed text.
func Trim(s string) (any, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Amount parses "$1,234.50" style money. Only positive amounts are accepted.
func Amount(s string) (any, bool) {
	f, err := ParseMoney(s)
	if err != nil || f <= 0 {
		return nil, false
	}
	return f, true
}

// Date normalizes a captured date.
func Date(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	return NormalizeDate(s), true
}

// IDToken keeps identifier-like tokens that contain at least one digit.
func IDToken(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "0123456789") {
		return nil, false
	}
	return s, true
}

// List splits a captured value on commas and semicolons.
func List(s string) (any, bool) {
	items := SplitList(s)
	return items, len(items) > 0
}

// SplitList splits on , and ; and drops blank entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var moneyReplacer = strings.NewReplacer("$", "", ",", "", " ", "", "USD", "", "usd", "")

// ParseMoney parses a money string such as "$1,234.50".
func ParseMoney(s string) (float64, error) {
	clean := moneyReplacer.Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("empty amount")
	}
	return strconv.ParseFloat(clean, 64)
}

// patterns shared by several batteries
const (
	datePattern = `(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}/\d{1,2}/\d{1,2}|[A-Z][a-z]{2,8}\.?[ \t]+\d{1,2},?[ \t]+\d{4}|\d{1,2}[ \t]+[A-Z][a-z]{2,8}[ \t]+\d{4})`
	namePattern = `((?:Dr\.?[ \t]+)?[A-Z][a-z]+(?:[ \t]+[A-Z][a-z.'-]*)+)`
)

var patientNameRule = Rule{
	Field:   "patient_name",
	Pattern: regexp.MustCompile(`(?i:patient(?:'?s)?(?:[ \t]+name)?)[ \t]*:?[ \t]+` + namePattern),
}

func dateRule(field, labels string) Rule {
	return Rule{
		Field:     field,
		Pattern:   regexp.MustCompile(`(?i:` + labels + `)[ \t]*:?[ \t]*` + datePattern),
		Transform: Date,
	}
}

func labelledLineRule(field, labels string, transform Transform) Rule {
	return Rule{
		Field:     field,
		Pattern:   regexp.MustCompile(`(?im)^[ \t]*(?:` + labels + `)[ \t]*:[ \t]*([^\n]+)$`),
		Transform: transform,
	}
}
