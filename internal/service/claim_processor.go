package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"claimflow/internal/decision"
	"claimflow/internal/domain"
	"claimflow/internal/extraction"
	"claimflow/internal/metrics"
	"claimflow/internal/port"
	"claimflow/internal/validator"
)

const skipReasonUnclassified = "unclassified"

// DocumentClassifier assigns a type to raw text. It never fails; degraded results are UNKNOWN.
type DocumentClassifier interface {
	Classify(ctx context.Context, rawText, filename string) domain.DocumentType
}

// AgentLookup resolves the extraction agent for a document type.
type AgentLookup interface {
	Get(t domain.DocumentType) (extraction.Agent, bool)
}

// ClaimPipeline turns a batch of raw documents into a processed claim with the given ID.
type ClaimPipeline interface {
	Process(ctx context.Context, id uuid.UUID, docs []domain.RawDocument) (*domain.ProcessedClaim, error)
}

// ProcessorDeps are the collaborators of a ClaimProcessor. Text and Metrics are optional.
type ProcessorDeps struct {
	Text       port.TextExtractor
	Classifier DocumentClassifier
	Agents     AgentLookup
	Validator  *validator.Engine
	Decider    *decision.Engine
	Metrics    *metrics.Metrics
	Debug      bool
}

// ClaimProcessor fans documents out to concurrent classify+extract tasks,
// waits for all of them, then validates and decides.
type ClaimProcessor struct {
	deps ProcessorDeps
	now  func() time.Time
}

func NewClaimProcessor(deps ProcessorDeps) *ClaimProcessor {
	return &ClaimProcessor{deps: deps, now: time.Now}
}

// Process never fails for a non-empty batch. Per-document problems become outcomes.
// A nil id is replaced with a fresh one.
func (p *ClaimProcessor) Process(ctx context.Context, id uuid.UUID, docs []domain.RawDocument) (*domain.ProcessedClaim, error) {
	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	start := p.now()
	p.deps.Metrics.StartClaim()

	outcomes := make([]domain.DocumentOutcome, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = p.processDocument(ctx, docs[i])
		}(i)
	}
	wg.Wait()

	validation := p.deps.Validator.Validate(outcomes)
	dec := p.deps.Decider.Decide(outcomes, validation)

	elapsed := p.now().Sub(start)
	claim := &domain.ProcessedClaim{
		ID:         id,
		Documents:  outcomes,
		Validation: validation,
		Decision:   dec,
		Metadata:   buildMetadata(outcomes, elapsed, p.now().UTC()),
	}
	p.deps.Metrics.FinishClaim(string(dec.Status), elapsed)

	log.Printf("service.ClaimProcessor.Process: claim %s: %d received, %d processed, %d failed, %d skipped, decision %s",
		claim.ID, claim.Metadata.DocumentsReceived, claim.Metadata.DocumentsProcessed,
		claim.Metadata.DocumentsFailed, claim.Metadata.DocumentsSkipped, dec.Status)
	return claim, nil
}

// processDocument runs one task. A panic becomes an internal_error failure for this document only.
func (p *ClaimProcessor) processDocument(ctx context.Context, raw domain.RawDocument) (outcome domain.DocumentOutcome) {
	docType := domain.DocumentTypeUnknown
	defer func() {
		if r := recover(); r != nil {
			log.Printf("service.ClaimProcessor.processDocument: panic on %s: %v", raw.FileName, r)
			outcome = domain.NewFailureOutcome(raw, docType, domain.ErrorKindInternal, fmt.Errorf("panic: %v", r))
		}
		p.deps.Metrics.ObserveOutcome(string(outcome.Status), string(outcome.DocumentType), string(outcome.ErrorKind))
	}()

	text, err := p.acquireText(ctx, raw)
	if err != nil {
		log.Printf("service.ClaimProcessor.processDocument: no text for %s: %v", raw.FileName, err)
		return domain.NewFailureOutcome(raw, docType, domain.ErrorKindTextUnavailable, err)
	}

	docType = p.deps.Classifier.Classify(ctx, text, raw.FileName)
	p.deps.Metrics.ObserveClassification(string(docType))
	if p.deps.Debug {
		log.Printf("service.ClaimProcessor.processDocument: %s classified as %s", raw.FileName, docType)
	}
	if docType == domain.DocumentTypeUnknown {
		return domain.NewSkippedOutcome(raw, skipReasonUnclassified)
	}

	agent, ok := p.deps.Agents.Get(docType)
	if !ok {
		return domain.NewFailureOutcome(raw, docType, domain.ErrorKindNoAgent, fmt.Errorf("no extraction agent for %s", docType))
	}

	extractStart := time.Now()
	doc, err := agent.Extract(ctx, text)
	p.deps.Metrics.ObserveExtraction(string(docType), time.Since(extractStart))
	if err != nil {
		log.Printf("service.ClaimProcessor.processDocument: extraction failed for %s: %v", raw.FileName, err)
		return domain.NewFailureOutcome(raw, docType, errorKind(err), err)
	}
	return domain.NewSuccessOutcome(raw, doc)
}

func (p *ClaimProcessor) acquireText(ctx context.Context, raw domain.RawDocument) (string, error) {
	if strings.TrimSpace(raw.Text) != "" {
		return raw.Text, nil
	}
	if p.deps.Text == nil {
		return "", domain.ErrNoTextLayer
	}
	return p.deps.Text.Extract(ctx, raw)
}

func errorKind(err error) domain.ErrorKind {
	var ee *domain.ExtractionError
	if errors.As(err, &ee) && ee.Kind != "" {
		return ee.Kind
	}
	if errors.Is(err, domain.ErrMalformedResponse) {
		return domain.ErrorKindParse
	}
	return domain.ErrorKindExtraction
}

func buildMetadata(outcomes []domain.DocumentOutcome, elapsed time.Duration, processedAt time.Time) domain.ProcessingMetadata {
	md := domain.ProcessingMetadata{
		DocumentsReceived:     len(outcomes),
		ProcessingTimeSeconds: elapsed.Seconds(),
		ProcessedAt:           processedAt,
	}
	for _, o := range outcomes {
		switch o.Status {
		case domain.OutcomeSuccess:
			md.DocumentsProcessed++
		case domain.OutcomeSkipped:
			md.DocumentsSkipped++
			md.Skipped = append(md.Skipped, domain.SkippedDocument{FileName: o.FileName, Reason: o.Error})
		default:
			md.DocumentsFailed++
			md.ProcessingErrors = append(md.ProcessingErrors, fmt.Sprintf("%s: %s", o.FileName, o.Error))
		}
	}
	return md
}
