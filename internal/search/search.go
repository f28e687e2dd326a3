// Package search answers catalog substring queries, either straight from the
// database or from an Elasticsearch index kept in sync with the catalog.
package search

import (
	"context"

	"github.com/Skotchmaster/bookstore/internal/models"
)

type Searcher interface {
	SearchBooks(ctx context.Context, q string) ([]models.Book, error)
}

// Indexer receives catalog changes. Implementations must tolerate deleting an
// id they never indexed.
type Indexer interface {
	IndexBook(ctx context.Context, b *models.Book) error
	DeleteBook(ctx context.Context, id uint) error
}

type BookLoader interface {
	GetBooksByIDs(ctx context.Context, ids []uint) ([]models.Book, error)
}
