// Package localstore serves statements from a directory on the local disk.
// Folders are paths relative to the store root.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvloznov/statement-ledger/internal/docstore"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

// Store is a docstore.Store over the local filesystem.
type Store struct {
	root string
	// NameFilter limits listings; files whose name does not contain it are skipped.
	NameFilter string
}

// New creates a store rooted at root. Listings only include files whose name
// contains "Kontoauszug".
func New(root string) *Store {
	return &Store{root: root, NameFilter: "Kontoauszug"}
}

func (s *Store) dir(folder string) string {
	return filepath.Join(s.root, filepath.FromSlash(folder))
}

// List implements docstore.Store. The file ID is the path relative to the root.
func (s *Store) List(ctx context.Context, folder string) ([]domain.StatementFile, error) {
	log := logger.FromContext(ctx)

	entries, err := os.ReadDir(s.dir(folder))
	if err != nil {
		return nil, fmt.Errorf("List: read %s: %w", s.dir(folder), err)
	}

	files := []domain.StatementFile{}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if s.NameFilter != "" && !strings.Contains(e.Name(), s.NameFilter) {
			continue
		}
		files = append(files, domain.StatementFile{
			ID:   filepath.ToSlash(filepath.Join(folder, e.Name())),
			Name: e.Name(),
		})
	}

	if len(files) == 0 {
		log.Warn().Str("folder", folder).Msg("No files found")
		return files, nil
	}
	docstore.SortByName(files)
	return files, nil
}

// Exists implements docstore.Store.
func (s *Store) Exists(ctx context.Context, folder, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir(folder), name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return true, nil
}

// Download implements docstore.Store.
func (s *Store) Download(ctx context.Context, file domain.StatementFile) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(file.ID)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("Download: %s: %w", file.ID, docstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Download: %w", err)
	}
	return data, nil
}

// Move implements docstore.Store by renaming into the target folder, which
// is created if needed.
func (s *Store) Move(ctx context.Context, file domain.StatementFile, from, to, newName string) error {
	src := filepath.Join(s.root, filepath.FromSlash(file.ID))
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("Move: %s: %w", file.ID, docstore.ErrNotFound)
	}
	if err := os.MkdirAll(s.dir(to), 0o755); err != nil {
		return fmt.Errorf("Move: create %s: %w", s.dir(to), err)
	}
	dst := filepath.Join(s.dir(to), newName)
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("Move: %s/%s: %w", to, newName, docstore.ErrExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("Move: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("Move: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("file_id", file.ID).Str("to", to).Str("name", newName).Msg("Moved file")
	return nil
}

var _ docstore.Store = (*Store)(nil)
