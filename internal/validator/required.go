package validator

import (
	"fmt"
	"strings"

	"claimflow/internal/domain"
)

// DefaultRequiredTypes is the minimal evidence a claim must carry.
var DefaultRequiredTypes = []domain.DocumentType{domain.DocumentTypeBill, domain.DocumentTypeIDCard}

// ParseDocumentTypes converts configured type names. An empty list yields the defaults.
func ParseDocumentTypes(names []string) ([]domain.DocumentType, error) {
	if len(names) == 0 {
		return DefaultRequiredTypes, nil
	}
	out := make([]domain.DocumentType, 0, len(names))
	for _, n := range names {
		t := domain.DocumentType(strings.ToLower(strings.TrimSpace(n)))
		if !t.IsValid() || t == domain.DocumentTypeUnknown {
			return nil, fmt.Errorf("unknown required document type %q", n)
		}
		out = append(out, t)
	}
	return out, nil
}

// RequiredDocuments reports required document types absent from the successes.
type RequiredDocuments struct {
	required map[domain.DocumentType]bool
}

func NewRequiredDocuments(required []domain.DocumentType) *RequiredDocuments {
	set := make(map[domain.DocumentType]bool, len(required))
	for _, t := range required {
		set[t] = true
	}
	return &RequiredDocuments{required: set}
}

func (v *RequiredDocuments) RuleKey() string  { return "required_documents" }
func (v *RequiredDocuments) RuleName() string { return "Required Documents" }

// Validate lists missing types in canonical order.
func (v *RequiredDocuments) Validate(successes []domain.DocumentOutcome) Findings {
	present := make(map[domain.DocumentType]bool, len(successes))
	for _, o := range successes {
		present[o.Document.Type()] = true
	}
	var f Findings
	for _, t := range domain.ExtractableDocumentTypes {
		if v.required[t] && !present[t] {
			f.MissingTypes = append(f.MissingTypes, t)
		}
	}
	return f
}
