package extraction

import (
	"regexp"
	"strings"

	"claimflow/internal/domain"
)

var (
	// "Hemoglobin (13.5-17.5) 14.2 g/dL"
	resultWithRangeRe = regexp.MustCompile(`^[ \t]*([A-Za-z][A-Za-z0-9 ,/-]*?)[ \t]*\(([^)]+)\)[ \t]*:?[ \t]*(-?\d+(?:\.\d+)?)[ \t]*([^\s]*)[ \t]*$`)
	// "Glucose: 95 mg/dL (70-99) H"
	resultWithUnitRe = regexp.MustCompile(`^[ \t]*([A-Za-z][A-Za-z0-9 ,/()-]*?)[ \t]*:[ \t]*(-?\d+(?:\.\d+)?)[ \t]*([A-Za-z%µ/^0-9.]*[A-Za-z%µ])?(?:[ \t]*\(([^)]*)\))?(?:[ \t]+(H|L|HH|LL|High|Low|Normal|Abnormal|Critical))?[ \t]*$`)
)

// headerWords mark "Label: value" lines that are not test results.
var headerWords = map[string]bool{
	"patient": true, "name": true, "mrn": true, "id": true, "date": true, "record": true,
	"phone": true, "age": true, "dob": true, "zip": true, "physician": true, "doctor": true,
	"account": true, "lab": true, "laboratory": true, "page": true, "specimen": true,
	"collected": true, "reported": true, "number": true, "npi": true, "fax": true,
}

func labReportSpec() agentSpec {
	return agentSpec{
		docType:    domain.DocumentTypeLabReport,
		required:   []string{"patient_name", "date_collected", "test_results"},
		dateFields: []string{"date_collected", "date_reported"},
		battery:    labReportBattery,
		prompt:     labReportPrompt,
		maxTokens:  2000,
		schema: objectSchema(map[string]any{
			"patient_name":       textSchema,
			"patient_id":         textSchema,
			"date_collected":     textSchema,
			"date_reported":      textSchema,
			"lab_name":           textSchema,
			"ordering_physician": textSchema,
			"test_results": arrayOf(objectSchema(map[string]any{
				"test_name":       textSchema,
				"result":          textSchema,
				"unit":            textSchema,
				"reference_range": textSchema,
				"flag":            textSchema,
				"status":          textSchema,
			})),
		}),
		decode: func(f Fields) (domain.ExtractedDocument, error) {
			var doc domain.LabReportDocument
			if err := decodeInto(f, &doc); err != nil {
				return nil, err
			}
			return doc, nil
		},
	}
}

var labReportBattery = Battery{
	patientNameRule,
	{
		Field:     "patient_id",
		Pattern:   regexp.MustCompile(`(?i:patient[ \t-]?id|mrn|medical[ \t-]?record[ \t-]?(?:number|no\.?|#))[ \t]*[:#]?[ \t]*([A-Z0-9][A-Z0-9-]+)`),
		Transform: IDToken,
	},
	dateRule("date_collected", `date collected|collection date|collected on|collected|collection|specimen date|specimen`),
	dateRule("date_reported", `date reported|report date|reported on|reported|resulted|completed`),
	labelledLineRule("lab_name", `laboratory|laboratory name|lab|lab name|facility`, Trim),
	{
		Field:   "ordering_physician",
		Pattern: regexp.MustCompile(`(?i:ordering[ \t-]?physician|ordering[ \t-]?provider|doctor)[ \t]*:?[ \t]+` + namePattern),
	},
	{Field: "test_results", Extract: extractTestResults},
}

func extractTestResults(text string) (any, bool) {
	var results []map[string]any
	for _, line := range strings.Split(text, "\n") {
		if m := resultWithRangeRe.FindStringSubmatch(line); m != nil && !isHeaderLabel(m[1]) {
			r := map[string]any{"test_name": strings.TrimSpace(m[1]), "reference_range": strings.TrimSpace(m[2]), "result": m[3]}
			if m[4] != "" {
				r["unit"] = m[4]
			}
			results = append(results, r)
			continue
		}
		if m := resultWithUnitRe.FindStringSubmatch(line); m != nil && !isHeaderLabel(m[1]) {
			r := map[string]any{"test_name": strings.TrimSpace(m[1]), "result": m[2]}
			if m[3] != "" {
				r["unit"] = m[3]
			}
			if m[4] != "" {
				r["reference_range"] = strings.TrimSpace(m[4])
			}
			if m[5] != "" {
				r["flag"] = m[5]
			}
			results = append(results, r)
		}
	}
	return results, len(results) > 0
}

func isHeaderLabel(label string) bool {
	for _, w := range strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '/' || r == '#'
	}) {
		if headerWords[w] {
			return true
		}
	}
	return false
}
