package gcsuploader

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/statement-ledger/internal/docstore"
	"google.golang.org/api/option"
)

// GCSStore is a docstore.Store backed by a Google Cloud Storage bucket.
// Folders are object name prefixes; a file's ID is its full object name.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore creates a store over bucket. It assumes Application Default
// Credentials unless opts say otherwise.
func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStore: create storage client: %w", err)
	}
	return NewGCSStoreWithClient(client, bucket), nil
}

// NewGCSStoreWithClient creates a store with an existing client.
func NewGCSStoreWithClient(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

// Bucket returns the bucket name.
func (s *GCSStore) Bucket() string {
	return s.bucket
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// ObjectName joins a folder prefix and a file name into an object name.
func ObjectName(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// folderPrefix returns the listing prefix for folder.
func folderPrefix(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return ""
	}
	return folder + "/"
}

var _ docstore.Store = (*GCSStore)(nil)
