// Package validator cross-checks the successfully extracted documents of a claim.
package validator

import (
	"claimflow/internal/domain"
)

// Findings is what a single rule contributes to the claim validation.
type Findings struct {
	MissingTypes  []domain.DocumentType
	Discrepancies []domain.Discrepancy
}

// Validator is one built-in claim validation rule.
// Validate receives only successful outcomes, in input order, and must not mutate them.
type Validator interface {
	Validate(successes []domain.DocumentOutcome) Findings
	RuleKey() string
	RuleName() string
}
