package extraction

import (
	"regexp"

	"claimflow/internal/domain"
)

func dischargeSpec() agentSpec {
	return agentSpec{
		docType:        domain.DocumentTypeDischargeSummary,
		required:       []string{"patient_name", "admission_date", "discharge_date", "diagnosis"},
		dateFields:     []string{"admission_date", "discharge_date"},
		battery:        dischargeBattery,
		prompt:         dischargePrompt,
		maxTokens:      1000,
		alwaysFallback: true,
		schema: objectSchema(map[string]any{
			"patient_name":           textSchema,
			"patient_id":             textSchema,
			"admission_date":         textSchema,
			"discharge_date":         textSchema,
			"diagnosis":              textSchema,
			"secondary_diagnoses":    listSchema,
			"procedures":             listSchema,
			"medications":            listSchema,
			"attending_physician":    textSchema,
			"facility_name":          textSchema,
			"discharge_instructions": textSchema,
		}),
		decode: func(f Fields) (domain.ExtractedDocument, error) {
			var doc domain.DischargeSummaryDocument
			if err := decodeInto(f, &doc); err != nil {
				return nil, err
			}
			return doc, nil
		},
	}
}

var dischargeBattery = Battery{
	patientNameRule,
	{
		Field:     "patient_id",
		Pattern:   regexp.MustCompile(`(?i:patient[ \t-]?id|mrn|medical[ \t-]?record[ \t-]?(?:number|no\.?|#))[ \t]*[:#]?[ \t]*([A-Z0-9][A-Z0-9-]+)`),
		Transform: IDToken,
	},
	dateRule("admission_date", `admission date|date of admission|admitted on|admitted|admission|admit date|admit`),
	dateRule("discharge_date", `discharge date|date of discharge|discharged on|discharged|discharge`),
	labelledLineRule("diagnosis", `primary diagnosis|principal diagnosis|admitting diagnosis|diagnosis|diagnoses|dx`, Trim),
	labelledLineRule("secondary_diagnoses", `secondary diagnos[ie]s|other diagnos[ie]s`, List),
	labelledLineRule("procedures", `procedures?(?: performed)?`, List),
	labelledLineRule("medications", `(?:discharge )?medications?`, List),
	{
		Field:   "attending_physician",
		Pattern: regexp.MustCompile(`(?i:attending physician|primary physician|attending)[ \t]*:?[ \t]+` + namePattern),
	},
	labelledLineRule("facility_name", `facility|facility name|hospital|hospital name`, Trim),
	labelledLineRule("discharge_instructions", `(?:discharge )?instructions`, Trim),
}
