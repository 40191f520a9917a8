package validator

import (
	"claimflow/internal/domain"
)

// Engine runs every registered validator over a claim's outcomes.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// NewDefaultEngine registers the built-in rules: required documents, then field consistency.
func NewDefaultEngine(required []domain.DocumentType, comparableFields ...string) *Engine {
	r := NewRegistry()
	r.Register(NewRequiredDocuments(required))
	r.Register(NewFieldConsistency(comparableFields...))
	return NewEngine(r)
}

// Validate builds the claim validation from the successful outcomes. Failed and skipped
// outcomes are ignored. The result depends only on its input.
func (e *Engine) Validate(outcomes []domain.DocumentOutcome) domain.ClaimValidation {
	successes := domain.SuccessfulOutcomes(outcomes)

	result := domain.ClaimValidation{
		MissingDocumentTypes: []domain.DocumentType{},
		MissingDocuments:     []string{},
		Discrepancies:        []domain.Discrepancy{},
	}
	for _, v := range e.registry.All() {
		f := v.Validate(successes)
		for _, t := range f.MissingTypes {
			result.MissingDocumentTypes = append(result.MissingDocumentTypes, t)
			result.MissingDocuments = append(result.MissingDocuments, t.Description())
		}
		result.Discrepancies = append(result.Discrepancies, f.Discrepancies...)
	}
	result.IsValid = len(result.MissingDocuments) == 0 && len(result.Discrepancies) == 0
	return result
}
