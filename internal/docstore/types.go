// Package docstore defines the document store the statement processor reads
// statement PDFs from and archives them into.
package docstore

import (
	"context"
	"errors"
	"sort"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// ErrNotFound is returned when a document does not exist in the store.
var ErrNotFound = errors.New("document not found")

// ErrExists is returned when a move would replace an existing document.
var ErrExists = errors.New("document already exists")

// Store provides the folder operations needed to process statements.
// This interface enables mocking and testing of storage functionality.
type Store interface {
	// List returns the files directly inside folder, sorted by name.
	List(ctx context.Context, folder string) ([]domain.StatementFile, error)

	// Exists reports whether folder already holds a file called name.
	Exists(ctx context.Context, folder, name string) (bool, error)

	// Download returns the raw bytes of file.
	Download(ctx context.Context, file domain.StatementFile) ([]byte, error)

	// Move relocates file from one folder to another under newName.
	Move(ctx context.Context, file domain.StatementFile, from, to, newName string) error
}

// SortByName orders files by name in place.
func SortByName(files []domain.StatementFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
}
