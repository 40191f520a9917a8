package port

import (
	"context"

	"claimflow/internal/domain"
)

// TextExtractor yields the raw text of an uploaded document.
type TextExtractor interface {
	Extract(ctx context.Context, doc domain.RawDocument) (string, error)
}
