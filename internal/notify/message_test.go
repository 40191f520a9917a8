package notify_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"claimflow/internal/domain"
	"claimflow/internal/notify"
)

func pendingClaim() *domain.ProcessedClaim {
	return &domain.ProcessedClaim{
		ID: uuid.MustParse("3f2a1b4c-0000-4000-8000-000000000001"),
		Validation: domain.ClaimValidation{
			Discrepancies: []domain.Discrepancy{{
				Field:   "patient_name",
				Message: "Patient name mismatch across documents",
				Values:  map[string]string{"medical bill": "John", "lab report": "<Jane>", "discharge summary": "John"},
			}},
		},
		Decision: domain.ClaimDecision{
			Status:         domain.DecisionPending,
			Reason:         "Amount exceeds auto-approval limit",
			AmountRejected: 12500,
		},
		Metadata: domain.ProcessingMetadata{DocumentsReceived: 3, DocumentsProcessed: 3},
	}
}

func TestPendingReview(t *testing.T) {
	msg := notify.PendingReview(pendingClaim(), "https://review.example.com/")

	assert.Equal(t, "Claim 3f2a1b4c needs manual review", msg.Subject)
	assert.Contains(t, msg.Text, "Reason: Amount exceeds auto-approval limit")
	assert.Contains(t, msg.Text, "Amount under review: 12500.00")
	assert.Contains(t, msg.Text, "3 received, 3 processed")
	assert.Contains(t, msg.Text, "https://review.example.com/claims/3f2a1b4c-0000-4000-8000-000000000001")
	assert.Contains(t, msg.Text, "  - Patient name mismatch across documents: <Jane> vs John\n")
	assert.Contains(t, msg.HTML, "<li>Patient name mismatch across documents: &lt;Jane&gt; vs John</li>")
	assert.NotContains(t, msg.HTML, "<Jane>")
	assert.Contains(t, msg.HTML, "Review Claim")
}

func TestPendingReview_NoDashboard(t *testing.T) {
	msg := notify.PendingReview(pendingClaim(), "")

	assert.NotContains(t, msg.Text, "Open the claim")
	assert.NotContains(t, msg.HTML, "Review Claim")
	assert.Empty(t, notify.ClaimURL("", pendingClaim()))
}
