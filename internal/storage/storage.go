package storage

import (
	"context"
	"errors"
	"time"
)

// DefaultPresignedURLExpiry bounds how long an upload or viewing link stays valid.
const DefaultPresignedURLExpiry = 15 * time.Minute

// PDFContentType is the only content type accepted for lesson material.
const PDFContentType = "application/pdf"

// ErrStorageDisabled is returned when no bucket is configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

// FileStorage holds lesson PDFs. Clients upload and read them through presigned
// URLs; the API never proxies file bytes.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a PUT URL. The uploader must send the same Content-Type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a GET URL that renders the PDF inline.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error
}
