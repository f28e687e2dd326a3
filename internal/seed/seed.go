// Package seed loads the demo catalog and accounts into an empty store.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/pkg/logging"
)

type account struct {
	Username, Email, Password string
	Admin                     bool
}

var accounts = []account{
	{Username: "admin", Email: "admin@bookstore.com", Password: "admin123", Admin: true},
	{Username: "demo", Email: "demo@bookstore.com", Password: "demo123"},
}

func cover(id string) *string {
	s := "https://covers.openlibrary.org/b/id/" + id + "-L.jpg"
	return &s
}

func text(s string) *string { return &s }

func catalog() []models.Book {
	return []models.Book{
		{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Price: decimal.NewFromInt(1200),
			Description: text("Classic Jazz Age novel."), CoverImage: cover("7222246"), Stock: 20},
		{Title: "To Kill a Mockingbird", Author: "Harper Lee", Price: decimal.NewFromInt(1400),
			Description: text("Novel about racial injustice."), CoverImage: cover("8228691"), Stock: 15},
		{Title: "1984", Author: "George Orwell", Price: decimal.NewFromInt(1100),
			Description: text("Dystopian novel about surveillance."), CoverImage: cover("12624314"), Stock: 25},
		{Title: "Pride and Prejudice", Author: "Jane Austen", Price: decimal.NewFromInt(950),
			Description: text("Manners and marriage in Regency England."), CoverImage: cover("8091016"), Stock: 18},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Price: decimal.NewFromInt(1300),
			Description: text("Bilbo Baggins sets out on an unexpected journey."), CoverImage: cover("6979861"), Stock: 12},
		{Title: "Dune", Author: "Frank Herbert", Price: decimal.NewFromInt(1500),
			Description: text("Politics and prophecy on the desert planet Arrakis."), CoverImage: cover("11481354"), Stock: 10},
	}
}

// Run seeds only when the catalog is empty, so a second call is a no-op.
// Existing accounts with a seeded email are left untouched.
func Run(ctx context.Context, db *gorm.DB) error {
	l := logging.FromContext(ctx).With("component", "seed")

	var books int64
	if err := db.WithContext(ctx).Model(&models.Book{}).Count(&books).Error; err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if books > 0 {
		l.Info("seed_skipped", "reason", "catalog not empty", "books", books)
		return nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, a := range accounts {
			u := models.User{Username: a.Username, Email: a.Email, IsAdmin: a.Admin}
			if err := u.SetPassword(a.Password); err != nil {
				return err
			}
			if err := tx.Where("email = ?", a.Email).FirstOrCreate(&u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", a.Email, err)
			}
		}
		list := catalog()
		if err := tx.Create(&list).Error; err != nil {
			return fmt.Errorf("seed books: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.Info("seed_completed", "books", len(catalog()), "users", len(accounts))
	return nil
}
