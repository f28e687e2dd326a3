package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bookstore/internal/forms"
	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/internal/repo"
	"github.com/Skotchmaster/bookstore/internal/search"
	"github.com/Skotchmaster/bookstore/pkg/events"
	"github.com/Skotchmaster/bookstore/pkg/logging"
)

const FeaturedLimit = 4

// CatalogService serves the book catalog. Searcher defaults to the database;
// Indexer, when set, is told about every catalog write.
type CatalogService struct {
	Repo     *repo.GormRepo
	Searcher search.Searcher
	Indexer  search.Indexer
	Events   events.Publisher
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]models.Book, error) {
	books, err := s.Repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *CatalogService) ListFeatured(ctx context.Context, limit int) ([]models.Book, error) {
	if limit <= 0 {
		limit = FeaturedLimit
	}
	books, err := s.Repo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured: %w", err)
	}
	return books, nil
}

func (s *CatalogService) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.Repo.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

func (s *CatalogService) SearchBooks(ctx context.Context, query string) ([]models.Book, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Book{}, nil
	}
	var searcher search.Searcher = s.Repo
	if s.Searcher != nil {
		searcher = s.Searcher
	}
	books, err := searcher.SearchBooks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

func applyBookForm(b *models.Book, f forms.BookForm) {
	b.Title = f.Title
	b.Author = f.Author
	b.Price = decimal.NewFromFloat(*f.Price).Round(2)
	b.Description = f.Description
	b.CoverImage = f.CoverImage
	b.Stock = f.StockOrDefault()
}

func (s *CatalogService) CreateBook(ctx context.Context, form forms.BookForm) (*models.Book, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")
	if err := forms.Validate(&form); err != nil {
		return nil, err
	}

	book := &models.Book{}
	applyBookForm(book, form)
	if err := s.Repo.CreateBook(ctx, book); err != nil {
		l.Error("create_book_error", "status", 500, "error", err)
		return nil, fmt.Errorf("create book: %w", err)
	}

	l.Info("book_created", "book_id", book.ID)
	s.syncIndex(ctx, book)
	publish(ctx, s.Events, events.TopicBooks, idKey(book.ID), bookEvent("book_created", book))
	return book, nil
}

func (s *CatalogService) UpdateBook(ctx context.Context, id uint, form forms.BookForm) (*models.Book, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "book_id", id)
	if err := forms.Validate(&form); err != nil {
		return nil, err
	}

	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	applyBookForm(book, form)
	if err := s.Repo.UpdateBook(ctx, book); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		l.Error("update_book_error", "status", 500, "error", err)
		return nil, fmt.Errorf("update book: %w", err)
	}

	l.Info("book_updated")
	s.syncIndex(ctx, book)
	publish(ctx, s.Events, events.TopicBooks, idKey(book.ID), bookEvent("book_updated", book))
	return book, nil
}

func (s *CatalogService) DeleteBook(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "book_id", id)

	if err := s.Repo.DeleteBook(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrNotFound
		case errors.Is(err, repo.ErrBookReferenced):
			l.Info("delete_book_rejected", "status", 409, "reason", "referenced by orders")
			return fmt.Errorf("%w: book is referenced by orders", ErrConflict)
		}
		l.Error("delete_book_error", "status", 500, "error", err)
		return fmt.Errorf("delete book: %w", err)
	}

	l.Info("book_deleted")
	if s.Indexer != nil {
		if err := s.Indexer.DeleteBook(ctx, id); err != nil {
			l.Warn("search_index_failed", "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicBooks, idKey(id), BookEvent{Type: "book_deleted", BookID: id, At: nowUTC()})
	return nil
}

// syncIndex keeps the optional search index in step with the store. The
// store is the source of truth, so index failures are only logged.
func (s *CatalogService) syncIndex(ctx context.Context, b *models.Book) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexBook(ctx, b); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "book_id", b.ID, "error", err)
	}
}
