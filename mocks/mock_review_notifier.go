package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimflow/internal/domain"
)

// MockReviewNotifier is a mock implementation of port.ReviewNotifier.
type MockReviewNotifier struct {
	mock.Mock
}

func (m *MockReviewNotifier) NotifyPendingReview(ctx context.Context, claim *domain.ProcessedClaim) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}
