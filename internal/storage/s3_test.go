package storage

import (
	"context"
	"errors"
	"lessonhub/internal/config"
	"lessonhub/internal/logging"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		endpoint string
		ssl      bool
		want     string
	}{
		{"", true, ""},
		{"localhost:9000", false, "http://localhost:9000"},
		{"minio.internal", true, "https://minio.internal"},
		{"http://localhost:9000/", true, "http://localhost:9000"},
	}
	for _, tt := range tests {
		if got := endpointURL(tt.endpoint, tt.ssl); got != tt.want {
			t.Errorf("endpointURL(%q, %v) = %q, want %q", tt.endpoint, tt.ssl, got, tt.want)
		}
	}
}

func TestNewS3StorageDisabled(t *testing.T) {
	_, err := NewS3Storage(context.Background(), config.S3Config{}, logging.Discard())
	if !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("err = %v, want ErrStorageDisabled", err)
	}
}

func newTestStorage(t *testing.T) FileStorage {
	t.Helper()
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "lessons",
	}, logging.Discard())
	if err != nil {
		t.Fatalf("NewS3Storage: %v", err)
	}
	return fs
}

func TestPresignedURLsArePathStyle(t *testing.T) {
	fs := newTestStorage(t)
	ctx := context.Background()
	key := "courses/abc/lessons/1-1/file.pdf"

	upload, err := fs.GeneratePresignedUploadURL(ctx, key, PDFContentType, time.Minute)
	if err != nil {
		t.Fatalf("upload URL: %v", err)
	}
	u, err := url.Parse(upload)
	if err != nil {
		t.Fatalf("parse %q: %v", upload, err)
	}
	if u.Host != "localhost:9000" || u.Path != "/lessons/"+key {
		t.Fatalf("upload URL = %s", upload)
	}
	if got := u.Query().Get("X-Amz-Expires"); got != "60" {
		t.Fatalf("X-Amz-Expires = %q, want 60", got)
	}

	download, err := fs.GeneratePresignedDownloadURL(ctx, key, 0)
	if err != nil {
		t.Fatalf("download URL: %v", err)
	}
	d, _ := url.Parse(download)
	if got := d.Query().Get("X-Amz-Expires"); got != "900" {
		t.Fatalf("default expiry = %q, want 900", got)
	}
	if got := d.Query().Get("response-content-type"); got != PDFContentType {
		t.Fatalf("response-content-type = %q", got)
	}
	if !strings.HasPrefix(d.Query().Get("response-content-disposition"), "inline") {
		t.Fatalf("download URL is not inline: %s", download)
	}
}
