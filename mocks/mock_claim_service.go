package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimflow/internal/domain"
	"claimflow/internal/report"
	"claimflow/internal/service"
)

// MockClaimService is a mock implementation of service.ClaimService.
type MockClaimService struct {
	mock.Mock
}

func (m *MockClaimService) Submit(ctx context.Context, input service.SubmitInput) (*domain.ProcessedClaim, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedClaim), args.Error(1)
}

func (m *MockClaimService) Get(ctx context.Context, id uuid.UUID) (*domain.ProcessedClaim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedClaim), args.Error(1)
}

func (m *MockClaimService) List(ctx context.Context, status domain.DecisionStatus, offset, limit int) ([]domain.ClaimRecord, int, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ClaimRecord), args.Int(1), args.Error(2)
}

func (m *MockClaimService) Reprocess(ctx context.Context, id uuid.UUID) (*domain.ProcessedClaim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessedClaim), args.Error(1)
}

func (m *MockClaimService) Export(ctx context.Context, format report.Format, w io.Writer) error {
	args := m.Called(ctx, format, w)
	return args.Error(0)
}
