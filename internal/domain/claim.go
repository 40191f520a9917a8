package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RawDocument is one input file of a claim. Text, when set, is a pre-extracted text cache.
type RawDocument struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Content     []byte `json:"-"`
	Text        string `json:"-"`
}

// DocumentOutcome is the per-document result of the pipeline: exactly one of
// success (Document set), failure (ErrorKind and Error set) or skipped.
type DocumentOutcome struct {
	FileName     string            `json:"file_name"`
	FileSize     int64             `json:"file_size"`
	Status       OutcomeStatus     `json:"status"`
	DocumentType DocumentType      `json:"type"`
	Document     ExtractedDocument `json:"data,omitempty"`
	ErrorKind    ErrorKind         `json:"error_kind,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// NewSuccessOutcome wraps an extracted record with its file annotations.
func NewSuccessOutcome(raw RawDocument, doc ExtractedDocument) DocumentOutcome {
	return DocumentOutcome{
		FileName:     raw.FileName,
		FileSize:     raw.Size,
		Status:       OutcomeSuccess,
		DocumentType: doc.Type(),
		Document:     doc,
	}
}

// NewFailureOutcome records a document that could not be extracted.
func NewFailureOutcome(raw RawDocument, docType DocumentType, kind ErrorKind, err error) DocumentOutcome {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return DocumentOutcome{
		FileName:     raw.FileName,
		FileSize:     raw.Size,
		Status:       OutcomeFailure,
		DocumentType: docType,
		ErrorKind:    kind,
		Error:        msg,
	}
}

// NewSkippedOutcome records a received document that was not adjudicated.
func NewSkippedOutcome(raw RawDocument, reason string) DocumentOutcome {
	return DocumentOutcome{
		FileName:     raw.FileName,
		FileSize:     raw.Size,
		Status:       OutcomeSkipped,
		DocumentType: DocumentTypeUnknown,
		Error:        reason,
	}
}

func (o DocumentOutcome) IsSuccess() bool {
	return o.Status == OutcomeSuccess && o.Document != nil
}

// UnmarshalJSON restores the concrete document type from the "type" tag.
func (o *DocumentOutcome) UnmarshalJSON(b []byte) error {
	type alias DocumentOutcome
	var aux struct {
		alias
		Document json.RawMessage `json:"data,omitempty"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*o = DocumentOutcome(aux.alias)
	if len(aux.Document) == 0 || string(aux.Document) == "null" {
		return nil
	}
	doc, err := decodeDocument(aux.DocumentType, aux.Document)
	if err != nil {
		return err
	}
	o.Document = doc
	return nil
}

func decodeDocument(t DocumentType, raw json.RawMessage) (ExtractedDocument, error) {
	switch t {
	case DocumentTypeBill:
		var d BillDocument
		err := json.Unmarshal(raw, &d)
		return d, err
	case DocumentTypeDischargeSummary:
		var d DischargeSummaryDocument
		err := json.Unmarshal(raw, &d)
		return d, err
	case DocumentTypeIDCard:
		var d IDCardDocument
		err := json.Unmarshal(raw, &d)
		return d, err
	case DocumentTypePrescription:
		var d PrescriptionDocument
		err := json.Unmarshal(raw, &d)
		return d, err
	case DocumentTypeLabReport:
		var d LabReportDocument
		err := json.Unmarshal(raw, &d)
		return d, err
	default:
		return nil, fmt.Errorf("decoding document data: unknown type %q", t)
	}
}

// Discrepancy is a cross-document conflict on a single field.
type Discrepancy struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Values  map[string]string `json:"details"`
}

// ClaimValidation aggregates the checks run over the successful documents.
type ClaimValidation struct {
	MissingDocumentTypes []DocumentType `json:"missing_document_types"`
	MissingDocuments     []string       `json:"missing_documents"`
	Discrepancies        []Discrepancy  `json:"discrepancies"`
	IsValid              bool           `json:"is_valid"`
}

// ClaimDecision is the adjudication result.
type ClaimDecision struct {
	Status         DecisionStatus `json:"status"`
	Reason         string         `json:"reason"`
	AmountApproved float64        `json:"amount_approved"`
	AmountRejected float64        `json:"amount_rejected"`
	Confidence     *float64       `json:"confidence,omitempty"`
}

// SkippedDocument names a received document that was excluded from adjudication.
type SkippedDocument struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// ProcessingMetadata describes a single pipeline run.
type ProcessingMetadata struct {
	DocumentsReceived     int               `json:"documents_received"`
	DocumentsProcessed    int               `json:"documents_processed"`
	DocumentsFailed       int               `json:"documents_failed"`
	DocumentsSkipped      int               `json:"documents_skipped"`
	Skipped               []SkippedDocument `json:"skipped,omitempty"`
	ProcessingErrors      []string          `json:"processing_errors,omitempty"`
	ProcessingTimeSeconds float64           `json:"processing_time_seconds"`
	ProcessedAt           time.Time         `json:"processed_at"`
}

// ProcessedClaim is the full, immutable result of processing a claim.
type ProcessedClaim struct {
	ID         uuid.UUID          `json:"id"`
	Documents  []DocumentOutcome  `json:"documents"`
	Validation ClaimValidation    `json:"validation"`
	Decision   ClaimDecision      `json:"decision"`
	Metadata   ProcessingMetadata `json:"metadata"`
}

// Successes returns the successful outcomes in input order.
func (p *ProcessedClaim) Successes() []DocumentOutcome {
	return SuccessfulOutcomes(p.Documents)
}

// SuccessfulOutcomes filters outcomes down to successes, preserving order.
func SuccessfulOutcomes(outcomes []DocumentOutcome) []DocumentOutcome {
	out := make([]DocumentOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.IsSuccess() {
			out = append(out, o)
		}
	}
	return out
}

// ClaimRecord is the persisted form of a processed claim.
type ClaimRecord struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	Status             DecisionStatus  `db:"status" json:"status"`
	Reason             string          `db:"reason" json:"reason"`
	AmountApproved     float64         `db:"amount_approved" json:"amount_approved"`
	AmountRejected     float64         `db:"amount_rejected" json:"amount_rejected"`
	DocumentsReceived  int             `db:"documents_received" json:"documents_received"`
	DocumentsProcessed int             `db:"documents_processed" json:"documents_processed"`
	Result             json.RawMessage `db:"result" json:"-"`
	ArchiveKeys        json.RawMessage `db:"archive_keys" json:"-"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}

// ArchivedDocument points at an uploaded file kept in object storage.
type ArchivedDocument struct {
	Key         string `json:"key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// NewClaimRecord flattens a processed claim for storage.
func NewClaimRecord(claim *ProcessedClaim, archived []ArchivedDocument) (*ClaimRecord, error) {
	result, err := json.Marshal(claim)
	if err != nil {
		return nil, fmt.Errorf("marshaling processed claim: %w", err)
	}
	if archived == nil {
		archived = []ArchivedDocument{}
	}
	keys, err := json.Marshal(archived)
	if err != nil {
		return nil, fmt.Errorf("marshaling archive keys: %w", err)
	}
	return &ClaimRecord{
		ID:                 claim.ID,
		Status:             claim.Decision.Status,
		Reason:             claim.Decision.Reason,
		AmountApproved:     claim.Decision.AmountApproved,
		AmountRejected:     claim.Decision.AmountRejected,
		DocumentsReceived:  claim.Metadata.DocumentsReceived,
		DocumentsProcessed: claim.Metadata.DocumentsProcessed,
		Result:             result,
		ArchiveKeys:        keys,
	}, nil
}

// Claim decodes the stored processed claim.
func (r *ClaimRecord) Claim() (*ProcessedClaim, error) {
	var claim ProcessedClaim
	if err := json.Unmarshal(r.Result, &claim); err != nil {
		return nil, fmt.Errorf("unmarshaling stored claim %s: %w", r.ID, err)
	}
	return &claim, nil
}

// Archived decodes the stored archive keys.
func (r *ClaimRecord) Archived() ([]ArchivedDocument, error) {
	var docs []ArchivedDocument
	if len(r.ArchiveKeys) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(r.ArchiveKeys, &docs); err != nil {
		return nil, fmt.Errorf("unmarshaling archive keys for %s: %w", r.ID, err)
	}
	return docs, nil
}
