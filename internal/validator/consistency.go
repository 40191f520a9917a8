package validator

import (
	"fmt"
	"sort"
	"strings"

	"claimflow/internal/domain"
)

// FieldConsistency flags comparable fields whose values differ between documents.
type FieldConsistency struct {
	fields []string
}

// DefaultComparableFields are the fields checked when none are configured.
var DefaultComparableFields = []string{"patient_name", "patient_id"}

// NewFieldConsistency checks the given fields, or DefaultComparableFields when none are given.
func NewFieldConsistency(fields ...string) *FieldConsistency {
	if len(fields) == 0 {
		fields = DefaultComparableFields
	}
	return &FieldConsistency{fields: fields}
}

func (v *FieldConsistency) RuleKey() string  { return "field_consistency" }
func (v *FieldConsistency) RuleName() string { return "Cross-Document Field Consistency" }

func (v *FieldConsistency) Validate(successes []domain.DocumentOutcome) Findings {
	var f Findings
	for _, field := range v.fields {
		if d, ok := v.check(field, successes); ok {
			f.Discrepancies = append(f.Discrepancies, d)
		}
	}
	return f
}

func (v *FieldConsistency) check(field string, successes []domain.DocumentOutcome) (domain.Discrepancy, bool) {
	values := map[string]string{}
	distinct := map[string]bool{}
	for _, o := range successes {
		val := strings.TrimSpace(o.Document.ComparableFields()[field])
		if val == "" {
			continue
		}
		key := o.Document.Type().Description()
		if _, taken := values[key]; taken {
			key = fmt.Sprintf("%s (%s)", key, o.FileName)
		}
		values[key] = val
		distinct[val] = true
	}
	if len(distinct) < 2 {
		return domain.Discrepancy{}, false
	}
	return domain.Discrepancy{
		Field:   field,
		Message: fmt.Sprintf("%s mismatch across documents", fieldLabel(field)),
		Values:  values,
	}, true
}

// fieldLabel turns "patient_name" into "Patient name".
func fieldLabel(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DistinctValues returns a discrepancy's values sorted, for stable reporting.
func DistinctValues(d domain.Discrepancy) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range d.Values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
