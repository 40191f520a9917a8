package extraction

import (
	"regexp"
	"strings"

	"claimflow/internal/domain"
)

func idCardSpec() agentSpec {
	return agentSpec{
		docType:    domain.DocumentTypeIDCard,
		required:   []string{"insurance_provider", "policy_number", "member_id", "member_name"},
		dateFields: []string{"effective_date", "expiration_date"},
		battery:    idCardBattery,
		prompt:     idCardPrompt,
		maxTokens:  1000,
		schema: objectSchema(map[string]any{
			"insurance_provider": textSchema,
			"policy_number":      textSchema,
			"group_number":       textSchema,
			"member_id":          textSchema,
			"member_name":        textSchema,
			"relationship":       textSchema,
			"effective_date":     textSchema,
			"expiration_date":    textSchema,
		}),
		decode: func(f Fields) (domain.ExtractedDocument, error) {
			var doc domain.IDCardDocument
			if err := decodeInto(f, &doc); err != nil {
				return nil, err
			}
			return doc, nil
		},
	}
}

// insurerKeywords is checked in order against the lowercased card text.
var insurerKeywords = []struct {
	keyword  string
	provider string
}{
	{"unitedhealth", "UnitedHealthcare"},
	{"aetna", "Aetna"},
	{"cigna", "Cigna"},
	{"blue cross", "Blue Cross Blue Shield"},
	{"blue shield", "Blue Cross Blue Shield"},
	{"bcbs", "Blue Cross Blue Shield"},
	{"kaiser", "Kaiser Permanente"},
	{"humana", "Humana"},
	{"medicare", "Medicare"},
	{"medicaid", "Medicaid"},
}

func matchInsurer(text string) (any, bool) {
	lower := strings.ToLower(text)
	for _, k := range insurerKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.provider, true
		}
	}
	return nil, false
}

const idTokenPattern = `([A-Z0-9][A-Z0-9-]{2,})`

var idCardBattery = Battery{
	labelledLineRule("insurance_provider", `insurance provider|insurance company|insurer|carrier|provider`, Trim),
	{Field: "insurance_provider", Extract: matchInsurer},
	{
		Field:     "policy_number",
		Pattern:   regexp.MustCompile(`\b(?i:policy(?:[ \t]+(?:number|no\.?|#))?)[ \t]*[:#]?[ \t]*` + idTokenPattern),
		Transform: IDToken,
	},
	{
		Field:     "member_id",
		Pattern:   regexp.MustCompile(`\b(?i:member[ \t]+id|member[ \t]+(?:number|no\.?|#)|subscriber[ \t]+id|id[ \t]+(?:number|no\.?|#)|id)[ \t]*[:#]?[ \t]*` + idTokenPattern),
		Transform: IDToken,
	},
	{
		Field:   "member_name",
		Pattern: regexp.MustCompile(`(?i:member[ \t]+name|subscriber[ \t]+name|member|subscriber|name)[ \t]*:[ \t]*([A-Z][A-Za-z'.-]+(?:[ \t]+[A-Z][A-Za-z'.-]*)+)`),
	},
	{
		Field:     "group_number",
		Pattern:   regexp.MustCompile(`\b(?i:group(?:[ \t]+(?:number|no\.?|#))?|grp)[ \t]*[:#]?[ \t]*` + idTokenPattern),
		Transform: IDToken,
	},
	labelledLineRule("relationship", `relationship|relation`, Trim),
	dateRule("effective_date", `effective date|effective|eff\.?|coverage start`),
	dateRule("expiration_date", `expiration date|expiration|expires|exp\.?|coverage end`),
}
