// Package gdrive implements the document store on Google Drive. Folders are
// Drive folder IDs.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dvloznov/statement-ledger/internal/docstore"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Scope is the OAuth scope the store needs.
const Scope = drive.DriveScope

// Store is a docstore.Store on Google Drive.
type Store struct {
	svc *drive.Service
}

// New creates a Drive backed store.
func New(ctx context.Context, opts ...option.ClientOption) (*Store, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("New: create drive service: %w", err)
	}
	return NewWithService(svc), nil
}

// NewWithService creates a store with an existing Drive service.
func NewWithService(svc *drive.Service) *Store {
	return &Store{svc: svc}
}

// quote escapes a value for use inside a Drive query string literal.
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return "'" + strings.ReplaceAll(v, "'", `\'`) + "'"
}

func (s *Store) query(ctx context.Context, q string) ([]domain.StatementFile, error) {
	files := []domain.StatementFile{}
	err := s.svc.Files.List().
		Q(q).
		Fields("nextPageToken, files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				files = append(files, domain.StatementFile{ID: f.Id, Name: f.Name})
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// List implements docstore.Store.
func (s *Store) List(ctx context.Context, folder string) ([]domain.StatementFile, error) {
	log := logger.FromContext(ctx)

	files, err := s.query(ctx, fmt.Sprintf("%s in parents and trashed = false", quote(folder)))
	if err != nil {
		return nil, fmt.Errorf("List: folder %s: %w", folder, err)
	}
	if len(files) == 0 {
		log.Warn().Str("folder", folder).Msg("No files found")
		return files, nil
	}

	docstore.SortByName(files)
	log.Info().Str("folder", folder).Int("count", len(files)).Msg("Listed folder")
	for _, f := range files {
		log.Debug().Str("file_id", f.ID).Str("name", f.Name).Msg("File")
	}
	return files, nil
}

// Exists implements docstore.Store.
func (s *Store) Exists(ctx context.Context, folder, name string) (bool, error) {
	q := fmt.Sprintf("%s in parents and name = %s and trashed = false", quote(folder), quote(name))
	files, err := s.query(ctx, q)
	if err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return len(files) > 0, nil
}

// Download implements docstore.Store.
func (s *Store) Download(ctx context.Context, file domain.StatementFile) ([]byte, error) {
	resp, err := s.svc.Files.Get(file.ID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("Download: %s: %w", file.ID, docstore.ErrNotFound)
		}
		return nil, fmt.Errorf("Download: %s: %w", file.ID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Download: read %s: %w", file.ID, err)
	}
	return data, nil
}

// Move implements docstore.Store. The file is re-parented and renamed in one update.
func (s *Store) Move(ctx context.Context, file domain.StatementFile, from, to, newName string) error {
	_, err := s.svc.Files.Update(file.ID, &drive.File{Name: newName}).
		AddParents(to).
		RemoveParents(from).
		SupportsAllDrives(true).
		Fields("id, name, parents").
		Context(ctx).
		Do()
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("Move: %s: %w", file.ID, docstore.ErrNotFound)
		}
		return fmt.Errorf("Move: %s: %w", file.ID, err)
	}

	log := logger.FromContext(ctx)
	log.Info().Str("file_id", file.ID).Str("to", to).Str("name", newName).Msg("Moved file")
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

var _ docstore.Store = (*Store)(nil)
