package classifier

import (
	"fmt"
	"strings"

	"claimflow/internal/domain"
	"claimflow/internal/extraction"
)

const classificationPrompt = `You classify documents submitted with medical insurance claims.
Decide the document type from the filename and content below.

Filename: %s
Document content (first %d characters):
%s

Document types:
- bill: hospital or medical bill with charges
- discharge_summary: hospital discharge summary with patient details and treatment
- id_card: insurance ID card with policy information
- prescription: doctor's prescription
- lab_report: laboratory test results
- unknown: the document fits none of the above

Respond with ONLY one label: bill, discharge_summary, id_card, prescription, lab_report or unknown.`

// BuildPrompt embeds the filename and a prefix of the text in the classification prompt.
func BuildPrompt(filename, text string, maxChars int) string {
	return fmt.Sprintf(classificationPrompt, filename, maxChars, extraction.Prefix(text, maxChars))
}

var labelSynonyms = map[string]domain.DocumentType{
	"bill":              domain.DocumentTypeBill,
	"medical bill":      domain.DocumentTypeBill,
	"invoice":           domain.DocumentTypeBill,
	"discharge":         domain.DocumentTypeDischargeSummary,
	"discharge summary": domain.DocumentTypeDischargeSummary,
	"discharge_summary": domain.DocumentTypeDischargeSummary,
	"id":                domain.DocumentTypeIDCard,
	"id card":           domain.DocumentTypeIDCard,
	"id_card":           domain.DocumentTypeIDCard,
	"insurance card":    domain.DocumentTypeIDCard,
	"insurance id card": domain.DocumentTypeIDCard,
	"prescription":      domain.DocumentTypePrescription,
	"rx":                domain.DocumentTypePrescription,
	"lab":               domain.DocumentTypeLabReport,
	"lab report":        domain.DocumentTypeLabReport,
	"lab_report":        domain.DocumentTypeLabReport,
	"test results":      domain.DocumentTypeLabReport,
}

// ParseLabel maps a backend response onto the closed label set. Anything unrecognised is UNKNOWN.
func ParseLabel(response string) domain.DocumentType {
	label := strings.ToLower(strings.TrimSpace(response))
	label = strings.Trim(label, "\"'`*.:;,!()[] \t\r\n")
	if t, ok := labelSynonyms[label]; ok {
		return t
	}
	return domain.DocumentTypeUnknown
}
