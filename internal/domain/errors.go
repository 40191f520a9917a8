package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoDocuments           = errors.New("no documents provided")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrFileTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrTooManyFiles          = errors.New("too many files in claim")
	ErrInvalidDecisionStatus = errors.New("invalid decision status")
	ErrClaimNotFound         = errors.New("claim not found")
	ErrClaimNotArchived      = errors.New("claim documents were not archived")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrMissingRequiredFields = errors.New("required fields missing after extraction")
	ErrNoTextLayer           = errors.New("document has no extractable text layer")
	ErrEmptyText             = errors.New("document text is empty")
	ErrMalformedResponse     = errors.New("malformed backend response")
)

// ExtractionError reports a document that could not be turned into a typed record.
type ExtractionError struct {
	DocumentType DocumentType
	Kind         ErrorKind
	Missing      []string
	Err          error
}

// NewMissingFieldsError builds the terminal error for a record lacking required fields.
func NewMissingFieldsError(docType DocumentType, missing []string, cause error) *ExtractionError {
	return &ExtractionError{
		DocumentType: docType,
		Kind:         ErrorKindExtraction,
		Missing:      missing,
		Err:          cause,
	}
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s extraction failed", e.DocumentType)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing required fields: %s", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrMissingRequiredFields) match when fields are missing.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrMissingRequiredFields && len(e.Missing) > 0
}

// ParseError marks a backend response that could not be decoded into fields.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing backend response: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Err}
}
