package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimflow/internal/domain"
)

// MockClaimPipeline is a mock implementation of service.ClaimPipeline.
type MockClaimPipeline struct {
	mock.Mock
}

func (m *MockClaimPipeline) Process(ctx context.Context, id uuid.UUID, docs []domain.RawDocument) (*domain.ProcessedClaim, error) {
	args := m.Called(ctx, id, docs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedClaim), args.Error(1)
}
