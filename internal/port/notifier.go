package port

import (
	"context"

	"claimflow/internal/domain"
)

// ReviewNotifier tells human reviewers about claims that need manual adjudication.
type ReviewNotifier interface {
	NotifyPendingReview(ctx context.Context, claim *domain.ProcessedClaim) error
}
