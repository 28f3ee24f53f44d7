package catalogfile

import (
	"context"

	"github.com/vsinha/prodplan/pkg/domain/entities"
)

// Source serves the snapshot of a catalog document, re-reading the file on
// every call
type Source struct {
	path string
}

// NewSource creates a source for the document at path
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Snapshot loads the document and converts it
func (s *Source) Snapshot(ctx context.Context) (entities.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return entities.CatalogSnapshot{}, err
	}
	doc, err := Load(s.path)
	if err != nil {
		return entities.CatalogSnapshot{}, err
	}
	return doc.Snapshot()
}
