package port

import (
	"context"
	"io"
)

// UploadInput describes one object written to the document archive.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// UploadOutput is what the store reports back for a written object.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage is the archive that keeps claim documents for reprocessing.
// Download of a missing key returns an error wrapping the store's not-found error.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
}
