package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"claimflow/internal/config"
	"claimflow/internal/domain"
	"claimflow/internal/port"
	"claimflow/internal/report"
)

// exportPageSize is the page size used when exporting every stored claim.
const exportPageSize = 500

// UploadedFile is one file of a claim submission.
type UploadedFile struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// SubmitInput is the DTO for claim submissions.
type SubmitInput struct {
	Files []UploadedFile
}

// ClaimService defines the claim intake contract.
type ClaimService interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.ProcessedClaim, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.ProcessedClaim, error)
	List(ctx context.Context, status domain.DecisionStatus, offset, limit int) ([]domain.ClaimRecord, int, error)
	Reprocess(ctx context.Context, id uuid.UUID) (*domain.ProcessedClaim, error)
	Export(ctx context.Context, format report.Format, w io.Writer) error
}

type claimService struct {
	pipeline ClaimPipeline
	repo     port.ClaimRepository
	storage  port.ObjectStorage
	notifier port.ReviewNotifier
	upload   *config.UploadConfig
	s3       *config.S3Config
}

// NewClaimService creates a new ClaimService. repo, storage and notifier may be nil
// when persistence, archiving or notifications are not configured.
func NewClaimService(
	pipeline ClaimPipeline,
	repo port.ClaimRepository,
	storage port.ObjectStorage,
	notifier port.ReviewNotifier,
	upload *config.UploadConfig,
	s3 *config.S3Config,
) ClaimService {
	return &claimService{
		pipeline: pipeline,
		repo:     repo,
		storage:  storage,
		notifier: notifier,
		upload:   upload,
		s3:       s3,
	}
}

func (s *claimService) Submit(ctx context.Context, input SubmitInput) (*domain.ProcessedClaim, error) {
	if len(input.Files) == 0 {
		return nil, domain.ErrNoDocuments
	}
	if s.upload.MaxFiles > 0 && len(input.Files) > s.upload.MaxFiles {
		return nil, domain.ErrTooManyFiles
	}

	docs := make([]domain.RawDocument, 0, len(input.Files))
	for i, f := range input.Files {
		doc, err := s.readUpload(i, f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	claimID := uuid.New()
	archived := s.archive(ctx, claimID, docs)

	claim, err := s.pipeline.Process(ctx, claimID, docs)
	if err != nil {
		return nil, fmt.Errorf("processing claim: %w", err)
	}

	if s.repo != nil {
		record, err := domain.NewClaimRecord(claim, archived)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, record); err != nil {
			log.Printf("claimService.Submit: persisting claim %s failed: %v", claimID, err)
		}
	}

	s.notifyIfPending(ctx, claim)
	return claim, nil
}

// readUpload validates type and size and reads the file into memory.
func (s *claimService) readUpload(index int, f UploadedFile) (domain.RawDocument, error) {
	fileType, ok := detectFileType(f.FileName, f.ContentType)
	if !ok || !s.allowed(fileType) {
		return domain.RawDocument{}, fmt.Errorf("%s: %w", f.FileName, domain.ErrUnsupportedFileType)
	}

	maxBytes := s.upload.MaxFileSizeBytes()
	if maxBytes > 0 && f.Size > maxBytes {
		return domain.RawDocument{}, fmt.Errorf("%s: %w", f.FileName, domain.ErrFileTooLarge)
	}

	reader := f.Content
	if maxBytes > 0 {
		reader = io.LimitReader(f.Content, maxBytes+1)
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("reading %s: %w", f.FileName, err)
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return domain.RawDocument{}, fmt.Errorf("%s: %w", f.FileName, domain.ErrFileTooLarge)
	}

	return domain.RawDocument{
		ID:          fmt.Sprintf("%d", index),
		FileName:    f.FileName,
		ContentType: domain.AllowedFileTypes[fileType],
		Size:        int64(len(content)),
		Content:     content,
	}, nil
}

func (s *claimService) allowed(t domain.FileType) bool {
	if len(s.upload.AllowedTypes) == 0 {
		return true
	}
	for _, a := range s.upload.AllowedTypes {
		if strings.EqualFold(a, string(t)) {
			return true
		}
	}
	return false
}

// detectFileType uses the extension first, then the declared content type.
func detectFileType(name, contentType string) (domain.FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if t, ok := domain.AllowedExtensions[ext]; ok {
		return t, true
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if t, ok := domain.AllowedContentTypes[mediaType]; ok {
			return t, true
		}
	}
	return "", false
}

// archive uploads every document. Archiving is all-or-nothing: when any upload fails the
// objects already written are removed and the claim is stored without an archive.
func (s *claimService) archive(ctx context.Context, claimID uuid.UUID, docs []domain.RawDocument) []domain.ArchivedDocument {
	if s.storage == nil || s.s3 == nil || !s.s3.Enabled {
		return nil
	}
	archived := make([]domain.ArchivedDocument, 0, len(docs))
	for i, d := range docs {
		key := archiveKey(s.s3.Prefix, claimID, i, d.FileName)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.s3.Bucket,
			Key:         key,
			Body:        bytes.NewReader(d.Content),
			ContentType: d.ContentType,
			Size:        d.Size,
			Metadata:    map[string]string{"claim-id": claimID.String(), "file-name": d.FileName},
		})
		if err != nil {
			log.Printf("claimService.archive: upload of %s for claim %s failed, dropping archive: %v", d.FileName, claimID, err)
			s.discard(ctx, claimID, archived)
			return nil
		}
		archived = append(archived, domain.ArchivedDocument{
			Key:         key,
			FileName:    d.FileName,
			ContentType: d.ContentType,
			Size:        d.Size,
		})
	}
	return archived
}

func (s *claimService) discard(ctx context.Context, claimID uuid.UUID, archived []domain.ArchivedDocument) {
	for _, a := range archived {
		if err := s.storage.Delete(ctx, s.s3.Bucket, a.Key); err != nil {
			log.Printf("claimService.discard: removing %s for claim %s failed: %v", a.Key, claimID, err)
		}
	}
}

// archiveKey builds [prefix/]claims/<claim-id>/<index>-<name>.
func archiveKey(prefix string, claimID uuid.UUID, index int, name string) string {
	key := fmt.Sprintf("claims/%s/%d-%s", claimID, index, filepath.Base(name))
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = path.Join(prefix, key)
	}
	return key
}

func (s *claimService) notifyIfPending(ctx context.Context, claim *domain.ProcessedClaim) {
	if s.notifier == nil || claim.Decision.Status != domain.DecisionPending {
		return
	}
	if err := s.notifier.NotifyPendingReview(ctx, claim); err != nil {
		log.Printf("claimService.notifyIfPending: notifying reviewers of claim %s failed: %v", claim.ID, err)
	}
}

func (s *claimService) Get(ctx context.Context, id uuid.UUID) (*domain.ProcessedClaim, error) {
	if s.repo == nil {
		return nil, domain.ErrClaimNotFound
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.Claim()
}

// List pages through stored claims. An empty status lists every claim.
func (s *claimService) List(ctx context.Context, status domain.DecisionStatus, offset, limit int) ([]domain.ClaimRecord, int, error) {
	if s.repo == nil {
		return []domain.ClaimRecord{}, 0, nil
	}
	if status != "" {
		return s.repo.ListByStatus(ctx, status, offset, limit)
	}
	return s.repo.List(ctx, offset, limit)
}

// Reprocess runs the pipeline again over the archived documents and overwrites the stored result.
func (s *claimService) Reprocess(ctx context.Context, id uuid.UUID) (*domain.ProcessedClaim, error) {
	if s.repo == nil {
		return nil, domain.ErrClaimNotFound
	}
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	archived, err := record.Archived()
	if err != nil {
		return nil, err
	}
	if len(archived) == 0 || s.storage == nil || s.s3 == nil {
		return nil, domain.ErrClaimNotArchived
	}

	docs := make([]domain.RawDocument, 0, len(archived))
	for i, a := range archived {
		content, err := s.storage.Download(ctx, s.s3.Bucket, a.Key)
		if err != nil {
			return nil, fmt.Errorf("downloading %s: %w", a.Key, err)
		}
		docs = append(docs, domain.RawDocument{
			ID:          fmt.Sprintf("%d", i),
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Size:        int64(len(content)),
			Content:     content,
		})
	}

	claim, err := s.pipeline.Process(ctx, id, docs)
	if err != nil {
		return nil, fmt.Errorf("reprocessing claim %s: %w", id, err)
	}

	updated, err := domain.NewClaimRecord(claim, archived)
	if err != nil {
		return nil, err
	}
	updated.CreatedAt = record.CreatedAt
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("updating claim %s: %w", id, err)
	}

	log.Printf("claimService.Reprocess: claim %s reprocessed, decision %s (was %s)", id, claim.Decision.Status, record.Status)
	s.notifyIfPending(ctx, claim)
	return claim, nil
}

// Export writes every stored claim in the requested format.
func (s *claimService) Export(ctx context.Context, format report.Format, w io.Writer) error {
	var all []domain.ClaimRecord
	if s.repo != nil {
		for offset := 0; ; offset += exportPageSize {
			page, total, err := s.repo.List(ctx, offset, exportPageSize)
			if err != nil {
				return fmt.Errorf("listing claims: %w", err)
			}
			all = append(all, page...)
			if len(page) < exportPageSize || len(all) >= total {
				break
			}
		}
	}
	if err := report.Write(w, format, all); err != nil {
		return fmt.Errorf("writing %s export: %w", format, err)
	}
	return nil
}
