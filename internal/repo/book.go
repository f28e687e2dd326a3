package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bookstore/internal/models"
)

func (r *GormRepo) ListBooks(ctx context.Context) ([]models.Book, error) {
	books := make([]models.Book, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *GormRepo) ListFeatured(ctx context.Context, limit int) ([]models.Book, error) {
	books := make([]models.Book, 0, limit)
	if err := r.DB.WithContext(ctx).Order("id ASC").Limit(limit).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *GormRepo) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := r.DB.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBooksByIDs returns the books in id order; unknown ids are skipped.
func (r *GormRepo) GetBooksByIDs(ctx context.Context, ids []uint) ([]models.Book, error) {
	books := make([]models.Book, 0, len(ids))
	if len(ids) == 0 {
		return books, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchBooks matches q as a literal, case-insensitive substring of title,
// author or description. q is expected to be trimmed and non-empty.
func (r *GormRepo) SearchBooks(ctx context.Context, q string) ([]models.Book, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	books := make([]models.Book, 0)
	err := r.DB.WithContext(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern).
		Order("id ASC").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *GormRepo) CreateBook(ctx context.Context, book *models.Book) error {
	return r.DB.WithContext(ctx).Create(book).Error
}

func (r *GormRepo) UpdateBook(ctx context.Context, book *models.Book) error {
	res := r.DB.WithContext(ctx).Model(book).Select("*").Omit("id").Updates(book)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteBook(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.OrderItem{}).Where("book_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrBookReferenced
		}
		res := tx.Delete(&models.Book{}, id)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
				return ErrBookReferenced
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) CountBooks(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Book{}).Count(&n).Error
	return n, err
}
