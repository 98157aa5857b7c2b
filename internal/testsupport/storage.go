package testsupport

import (
	"context"
	"fmt"
	"lessonhub/internal/storage"
	"sync"
	"time"
)

// FileStorage records presign and delete calls without touching a bucket.
type FileStorage struct {
	mu      sync.Mutex
	Deleted []string
}

var _ storage.FileStorage = (*FileStorage)(nil)

func (f *FileStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, contentType string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/upload/%s?type=%s", objectKey, contentType), nil
}

func (f *FileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (f *FileStorage) DeleteObject(_ context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, objectKey)
	return nil
}
