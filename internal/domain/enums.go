package domain

import (
	"fmt"
	"strings"
)

// FileType represents the allowed file types for claim uploads.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
	FileTypeTXT FileType = "txt"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
	FileTypeTXT: "text/plain",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
	"text/plain":      FileTypeTXT,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"txt":  FileTypeTXT,
}

// DocumentType is the closed set of claim document categories.
type DocumentType string

const (
	DocumentTypeBill             DocumentType = "bill"
	DocumentTypeDischargeSummary DocumentType = "discharge_summary"
	DocumentTypeIDCard           DocumentType = "id_card"
	DocumentTypePrescription     DocumentType = "prescription"
	DocumentTypeLabReport        DocumentType = "lab_report"
	DocumentTypeUnknown          DocumentType = "unknown"
)

// ExtractableDocumentTypes lists every type that has an extraction agent, in canonical order.
var ExtractableDocumentTypes = []DocumentType{
	DocumentTypeBill,
	DocumentTypeDischargeSummary,
	DocumentTypeIDCard,
	DocumentTypePrescription,
	DocumentTypeLabReport,
}

var documentDescriptions = map[DocumentType]string{
	DocumentTypeBill:             "medical bill",
	DocumentTypeDischargeSummary: "discharge summary",
	DocumentTypeIDCard:           "insurance ID card",
	DocumentTypePrescription:     "prescription",
	DocumentTypeLabReport:        "lab report",
	DocumentTypeUnknown:          "unknown document",
}

// Description returns the human-readable name used in validation messages.
func (t DocumentType) Description() string {
	if d, ok := documentDescriptions[t]; ok {
		return d
	}
	return string(t)
}

// IsValid reports whether t is one of the known document types.
func (t DocumentType) IsValid() bool {
	_, ok := documentDescriptions[t]
	return ok
}

// SupportedDocumentTypes is the catalogue served to API clients.
var SupportedDocumentTypes = map[DocumentType]string{
	DocumentTypeBill:             "Medical bill or invoice",
	DocumentTypeDischargeSummary: "Hospital discharge summary",
	DocumentTypeIDCard:           "Insurance ID card",
	DocumentTypePrescription:     "Medical prescription",
	DocumentTypeLabReport:        "Laboratory test results",
}

// OutcomeStatus tags a per-document outcome.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ErrorKind classifies per-document failures.
type ErrorKind string

const (
	ErrorKindExtraction      ErrorKind = "extraction_error"
	ErrorKindBackend         ErrorKind = "backend_error"
	ErrorKindParse           ErrorKind = "parse_error"
	ErrorKindTextUnavailable ErrorKind = "text_unavailable"
	ErrorKindNoAgent         ErrorKind = "no_agent"
	ErrorKindInternal        ErrorKind = "internal_error"
)

// DecisionStatus is the adjudication result of a claim.
type DecisionStatus string

const (
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
	DecisionPending  DecisionStatus = "pending"
)

// ParseDecisionStatus accepts approved, rejected or pending in any case.
func ParseDecisionStatus(s string) (DecisionStatus, error) {
	switch st := DecisionStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case DecisionApproved, DecisionRejected, DecisionPending:
		return st, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidDecisionStatus)
}
