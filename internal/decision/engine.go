// Package decision adjudicates a validated claim.
package decision

import (
	"fmt"
	"log"
	"strings"

	"claimflow/internal/domain"
)

// DefaultAutoApproveLimit is the largest total approved without review.
const DefaultAutoApproveLimit = 10000.0

const (
	reasonApproved      = "Claim meets all requirements"
	reasonDiscrepancies = "Data discrepancies found, requires manual review"
	reasonOverLimit     = "Claim amount exceeds automatic approval limit"
)

// Engine applies the adjudication rules. It holds no per-claim state.
type Engine struct {
	limit float64
	rules *RuleSet
}

// NewEngine creates an engine. A non-positive limit falls back to the default; rules may be nil.
func NewEngine(limit float64, rules *RuleSet) *Engine {
	if limit <= 0 {
		limit = DefaultAutoApproveLimit
	}
	return &Engine{limit: limit, rules: rules}
}

// Decide recomputes the decision from scratch for the given successes and validation.
func (e *Engine) Decide(outcomes []domain.DocumentOutcome, validation domain.ClaimValidation) (decision domain.ClaimDecision) {
	successes := domain.SuccessfulOutcomes(outcomes)
	total := TotalClaimed(successes)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("decision.Engine.Decide: recovered panic: %v", r)
			decision = rejectedOnError(fmt.Errorf("%v", r), total)
		}
	}()

	if len(validation.MissingDocuments) > 0 {
		return domain.ClaimDecision{
			Status:         domain.DecisionRejected,
			Reason:         "Missing required documents: " + strings.Join(validation.MissingDocuments, ", "),
			AmountApproved: 0,
			AmountRejected: total,
		}
	}

	if len(validation.Discrepancies) > 0 {
		return domain.ClaimDecision{Status: domain.DecisionPending, Reason: reasonDiscrepancies}
	}

	if e.rules != nil {
		rule, err := e.rules.FirstMatch(NewFacts(successes, total))
		if err != nil {
			return rejectedOnError(err, total)
		}
		if rule != nil {
			return domain.ClaimDecision{Status: domain.DecisionPending, Reason: rule.Reason}
		}
	}

	if total <= e.limit {
		return domain.ClaimDecision{
			Status:         domain.DecisionApproved,
			Reason:         reasonApproved,
			AmountApproved: total,
		}
	}
	return domain.ClaimDecision{Status: domain.DecisionPending, Reason: reasonOverLimit}
}

func rejectedOnError(err error, total float64) domain.ClaimDecision {
	return domain.ClaimDecision{
		Status:         domain.DecisionRejected,
		Reason:         fmt.Sprintf("Error processing claim: %v", err),
		AmountRejected: total,
	}
}

// TotalClaimed sums bill totals. Missing or invalid amounts contribute 0.
func TotalClaimed(successes []domain.DocumentOutcome) float64 {
	var total float64
	for _, o := range successes {
		b, ok := o.Document.(domain.Billable)
		if !ok {
			continue
		}
		if v, ok := b.ClaimedAmount(); ok {
			total += v
		}
	}
	return total
}
