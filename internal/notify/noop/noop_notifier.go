package noop

import (
	"context"
	"log"

	"claimflow/internal/domain"
	"claimflow/internal/notify"
	"claimflow/internal/port"
)

type noopNotifier struct {
	dashboardURL string
}

// NewNoopNotifier creates a ReviewNotifier that only logs pending claims.
func NewNoopNotifier(dashboardURL string) port.ReviewNotifier {
	return &noopNotifier{dashboardURL: dashboardURL}
}

func (n *noopNotifier) NotifyPendingReview(_ context.Context, claim *domain.ProcessedClaim) error {
	msg := notify.PendingReview(claim, n.dashboardURL)
	log.Printf("[NOOP NOTIFY] %s: %s %s", msg.Subject, claim.Decision.Reason, notify.ClaimURL(n.dashboardURL, claim))
	return nil
}
