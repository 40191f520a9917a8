package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"claimflow/internal/domain"
	"claimflow/internal/port"
)

const claimColumns = `id, status, reason, amount_approved, amount_rejected,
	documents_received, documents_processed, result, archive_keys, created_at, updated_at`

type claimRepo struct {
	db *sqlx.DB
}

// NewClaimRepo creates a new PostgreSQL-backed ClaimRepository.
func NewClaimRepo(db *sqlx.DB) port.ClaimRepository {
	return &claimRepo{db: db}
}

func (r *claimRepo) Create(ctx context.Context, record *domain.ClaimRecord) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `INSERT INTO claims
		(id, status, reason, amount_approved, amount_rejected,
		 documents_received, documents_processed, result, archive_keys, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.Status, record.Reason, record.AmountApproved, record.AmountRejected,
		record.DocumentsReceived, record.DocumentsProcessed, []byte(record.Result), []byte(record.ArchiveKeys),
		record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("claimRepo.Create: %w", err)
	}
	return nil
}

// Update overwrites the decision and stored result. created_at is never touched.
func (r *claimRepo) Update(ctx context.Context, record *domain.ClaimRecord) error {
	record.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE claims SET status = $1, reason = $2, amount_approved = $3, amount_rejected = $4,
		 documents_received = $5, documents_processed = $6, result = $7, archive_keys = $8, updated_at = $9
		 WHERE id = $10`,
		record.Status, record.Reason, record.AmountApproved, record.AmountRejected,
		record.DocumentsReceived, record.DocumentsProcessed, []byte(record.Result), []byte(record.ArchiveKeys),
		record.UpdatedAt, record.ID)
	if err != nil {
		return fmt.Errorf("claimRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrClaimNotFound
	}
	return nil
}

func (r *claimRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClaimRecord, error) {
	var record domain.ClaimRecord
	err := r.db.GetContext(ctx, &record,
		"SELECT "+claimColumns+" FROM claims WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, fmt.Errorf("claimRepo.GetByID: %w", err)
	}
	return &record, nil
}

func (r *claimRepo) List(ctx context.Context, offset, limit int) ([]domain.ClaimRecord, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM claims"); err != nil {
		return nil, 0, fmt.Errorf("claimRepo.List count: %w", err)
	}

	records := []domain.ClaimRecord{}
	err := r.db.SelectContext(ctx, &records,
		"SELECT "+claimColumns+" FROM claims ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("claimRepo.List: %w", err)
	}
	return records, total, nil
}

func (r *claimRepo) ListByStatus(ctx context.Context, status domain.DecisionStatus, offset, limit int) ([]domain.ClaimRecord, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM claims WHERE status = $1", status)
	if err != nil {
		return nil, 0, fmt.Errorf("claimRepo.ListByStatus count: %w", err)
	}

	records := []domain.ClaimRecord{}
	err = r.db.SelectContext(ctx, &records,
		"SELECT "+claimColumns+" FROM claims WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("claimRepo.ListByStatus: %w", err)
	}
	return records, total, nil
}
