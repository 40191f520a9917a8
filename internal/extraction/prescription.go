package extraction

import (
	"regexp"
	"strings"

	"claimflow/internal/domain"
)

var (
	medicationLabelRe = regexp.MustCompile(`(?i)^[ \t]*(?:medications?|rx|drugs?)[ \t]*:[ \t]*(.*)$`)
	listBulletRe      = regexp.MustCompile(`^[ \t]*(?:[-*•]|\d+[.)])[ \t]+(.+)$`)
	strengthRe        = regexp.MustCompile(`^(.+?)[ \t]+(\d+(?:\.\d+)?[ \t]*(?:mg|mcg|g|ml|mL|units?|IU|%)(?:/\d*[ \t]*(?:ml|mL))?)(?:[ \t]+(.*))?$`)
	formRe            = regexp.MustCompile(`(?i)^(tablets?|capsules?|caps?|tabs?|solution|suspension|cream|ointment|inhaler|injection|drops)\b[ \t]*(.*)$`)
)

func prescriptionSpec() agentSpec {
	return agentSpec{
		docType:    domain.DocumentTypePrescription,
		required:   []string{"patient_name", "date_prescribed", "medications"},
		dateFields: []string{"date_prescribed"},
		battery:    prescriptionBattery,
		prompt:     prescriptionPrompt,
		maxTokens:  1500,
		schema: objectSchema(map[string]any{
			"patient_name":       textSchema,
			"date_prescribed":    textSchema,
			"prescriber_name":    textSchema,
			"prescriber_license": textSchema,
			"instructions":       textSchema,
			"medications": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": []any{"object", "string"},
					"properties": map[string]any{
						"name":         textSchema,
						"strength":     textSchema,
						"form":         textSchema,
						"quantity":     textSchema,
						"refills":      textSchema,
						"instructions": textSchema,
						"ndc":          textSchema,
					},
				},
			},
		}),
		normalize: normalizeMedications,
		decode: func(f Fields) (domain.ExtractedDocument, error) {
			var doc domain.PrescriptionDocument
			if err := decodeInto(f, &doc); err != nil {
				return nil, err
			}
			return doc, nil
		},
	}
}

var prescriptionBattery = Battery{
	patientNameRule,
	dateRule("date_prescribed", `date prescribed|date written|rx date|prescribed on|prescribed|date`),
	{
		Field:   "prescriber_name",
		Pattern: regexp.MustCompile(`(?i:prescriber|prescribing physician|physician|provider|doctor)[ \t]*:?[ \t]+` + namePattern),
	},
	{
		Field:     "prescriber_license",
		Pattern:   regexp.MustCompile(`\b(?i:license|lic\.?|dea)[ \t]*(?i:#|no\.?|number)?[ \t]*:?[ \t]*([A-Z0-9]{4,})`),
		Transform: IDToken,
	},
	{Field: "medications", Extract: extractMedications},
	labelledLineRule("instructions", `instructions|sig|directions`, Trim),
}

// extractMedications reads "Medication: ..." lines, or a bulleted list under an empty label.
func extractMedications(text string) (any, bool) {
	var meds []map[string]any
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		m := medicationLabelRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		if rest := strings.TrimSpace(m[1]); rest != "" {
			for _, entry := range strings.Split(rest, ";") {
				if med, ok := parseMedication(entry); ok {
					meds = append(meds, med)
				}
			}
			continue
		}
		for i+1 < len(lines) {
			b := listBulletRe.FindStringSubmatch(lines[i+1])
			if b == nil {
				break
			}
			if med, ok := parseMedication(b[1]); ok {
				meds = append(meds, med)
			}
			i++
		}
	}
	return meds, len(meds) > 0
}

// parseMedication splits "Amoxicillin 500mg capsule - take twice daily" into its parts.
func parseMedication(entry string) (map[string]any, bool) {
	entry = strings.TrimSpace(entry)
	if len(entry) <= 3 {
		return nil, false
	}
	med := map[string]any{}
	if head, instructions, found := strings.Cut(entry, " - "); found {
		entry = strings.TrimSpace(head)
		if s := strings.TrimSpace(instructions); s != "" {
			med["instructions"] = s
		}
	}
	if m := strengthRe.FindStringSubmatch(entry); m != nil {
		med["name"] = strings.TrimSpace(m[1])
		med["strength"] = strings.ReplaceAll(m[2], " ", "")
		rest := strings.TrimSpace(m[3])
		if f := formRe.FindStringSubmatch(rest); f != nil {
			med["form"] = strings.ToLower(f[1])
			rest = strings.TrimSpace(f[2])
		}
		if rest != "" {
			if prev, ok := med["instructions"].(string); ok {
				rest = rest + " " + prev
			}
			med["instructions"] = rest
		}
	} else {
		med["name"] = entry
	}
	return med, true
}

// normalizeMedications lifts bare medication names from the backend into records.
func normalizeMedications(f Fields) {
	list, ok := f["medications"].([]any)
	if !ok {
		return
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		if s, isStr := item.(string); isStr {
			if med, ok := parseMedication(s); ok {
				out = append(out, med)
			}
			continue
		}
		out = append(out, item)
	}
	f["medications"] = out
}
