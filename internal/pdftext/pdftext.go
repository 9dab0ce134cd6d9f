// Package pdftext turns statement PDFs into the line sequence consumed by the
// statement parser.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/gen2brain/go-fitz"
)

// Extractor converts raw PDF bytes into text lines.
type Extractor interface {
	Lines(ctx context.Context, data []byte) ([]string, error)
}

// FitzExtractor extracts text with MuPDF.
type FitzExtractor struct{}

// NewFitzExtractor creates a MuPDF backed extractor.
func NewFitzExtractor() *FitzExtractor {
	return &FitzExtractor{}
}

// Pages returns the text of every page. Pages that fail to extract are logged
// and left out.
func (e *FitzExtractor) Pages(ctx context.Context, data []byte) ([]string, error) {
	log := logger.FromContext(ctx)

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("Pages: open PDF from memory: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("Pages: %w", err)
		}
		text, err := doc.Text(i)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("Skipping page that failed to extract")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// Lines implements Extractor.
func (e *FitzExtractor) Lines(ctx context.Context, data []byte) ([]string, error) {
	pages, err := e.Pages(ctx, data)
	if err != nil {
		return nil, err
	}
	return SplitLines(pages), nil
}

// SplitLines joins page texts and splits them on newlines. Surrounding
// whitespace is trimmed from every line, since record detection anchors on
// the first character and direction on the last. Empty lines are kept.
func SplitLines(pages []string) []string {
	if len(pages) == 0 {
		return []string{}
	}
	var b strings.Builder
	for i, p := range pages {
		if i > 0 && !strings.HasSuffix(pages[i-1], "\n") {
			b.WriteString("\n")
		}
		b.WriteString(p)
	}
	raw := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

var _ Extractor = (*FitzExtractor)(nil)
