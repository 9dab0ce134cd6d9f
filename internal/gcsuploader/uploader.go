package gcsuploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/statement-ledger/internal/docstore"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"google.golang.org/api/iterator"
)

// UploadFile uploads a local file into folder and returns the object name.
func (s *GCSStore) UploadFile(ctx context.Context, folder, filePath string) (string, error) {
	objectName := ObjectName(folder, path.Base(filePath))
	if err := s.upload(ctx, objectName, filePath); err != nil {
		return "", err
	}
	return objectName, nil
}

// UploadObject uploads a local file under an explicit object name.
func (s *GCSStore) UploadObject(ctx context.Context, objectName, filePath string) error {
	return s.upload(ctx, objectName, filePath)
}

func (s *GCSStore) upload(ctx context.Context, objectName, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("UploadFile: open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/pdf"
	defer func() {
		// Ensure the writer is closed even on early returns
		_ = w.Close()
	}()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("UploadFile: copy file to GCS writer: %w", err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("UploadFile: finalize upload: %w", err)
	}
	return nil
}

// List implements docstore.Store. Only objects directly under folder are returned.
func (s *GCSStore) List(ctx context.Context, folder string) ([]domain.StatementFile, error) {
	log := logger.FromContext(ctx)
	prefix := folderPrefix(folder)

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	var files []domain.StatementFile
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("List: iterate gs://%s/%s: %w", s.bucket, prefix, err)
		}
		// Synthetic directory entries carry only a prefix.
		if attrs.Name == "" || attrs.Name == prefix {
			continue
		}
		files = append(files, domain.StatementFile{ID: attrs.Name, Name: path.Base(attrs.Name)})
	}

	if len(files) == 0 {
		log.Warn().Str("folder", folder).Msg("No files found")
		return []domain.StatementFile{}, nil
	}
	docstore.SortByName(files)
	log.Info().Str("folder", folder).Int("count", len(files)).Msg("Listed folder")
	return files, nil
}

// Exists implements docstore.Store.
func (s *GCSStore) Exists(ctx context.Context, folder, name string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(ObjectName(folder, name)).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Exists: %s: %w", ObjectName(folder, name), err)
	}
	return true, nil
}

// Move implements docstore.Store as a server-side copy followed by a delete.
func (s *GCSStore) Move(ctx context.Context, file domain.StatementFile, from, to, newName string) error {
	bkt := s.client.Bucket(s.bucket)
	src := bkt.Object(file.ID)
	dst := bkt.Object(ObjectName(to, newName))

	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("Move: %s: %w", file.ID, docstore.ErrNotFound)
		}
		return fmt.Errorf("Move: copy %s: %w", file.ID, err)
	}
	if err := src.Delete(ctx); err != nil {
		return fmt.Errorf("Move: delete %s: %w", file.ID, err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("file_id", file.ID).
		Str("from", from).
		Str("to", to).
		Str("name", newName).
		Msg("Moved file")
	return nil
}
