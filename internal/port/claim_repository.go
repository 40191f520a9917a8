package port

import (
	"context"

	"github.com/google/uuid"

	"claimflow/internal/domain"
)

// ClaimRepository defines the contract for processed-claim persistence.
type ClaimRepository interface {
	Create(ctx context.Context, record *domain.ClaimRecord) error
	Update(ctx context.Context, record *domain.ClaimRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ClaimRecord, error)
	List(ctx context.Context, offset, limit int) ([]domain.ClaimRecord, int, error)
	ListByStatus(ctx context.Context, status domain.DecisionStatus, offset, limit int) ([]domain.ClaimRecord, int, error)
}
