package repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bookstore/internal/models"
)

// OrderQuery selects orders and the associations loaded with them.
type OrderQuery struct {
	UserID    *uint
	WithItems bool
	WithUser  bool
}

func (r *GormRepo) ListOrders(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	db := r.DB.WithContext(ctx).Model(&models.Order{})
	if q.UserID != nil {
		db = db.Where("user_id = ?", *q.UserID)
	}
	if q.WithItems {
		db = db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).Preload("Items.Book")
	}
	if q.WithUser {
		db = db.Preload("User")
	}
	orders := make([]models.Order, 0)
	if err := db.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint, withItems bool) (*models.Order, error) {
	db := r.DB.WithContext(ctx)
	if withItems {
		db = db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") })
	}
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderLine is one requested book and quantity.
type OrderLine struct {
	BookID   uint
	Quantity int
}

// CreateOrderWithStock decrements stock for every line and writes the order
// in a single transaction. A line whose stock cannot cover the quantity rolls
// the whole order back with ErrInsufficientStock. Unit prices are read inside
// the transaction.
func (r *GormRepo) CreateOrderWithStock(ctx context.Context, userID uint, lines []OrderLine) (*models.Order, error) {
	order := &models.Order{
		UserID: userID,
		Status: models.OrderStatusPending,
		Items:  make([]models.OrderItem, 0, len(lines)),
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		for _, ln := range lines {
			var book models.Book
			if err := tx.First(&book, ln.BookID).Error; err != nil {
				return fmt.Errorf("book %d: %w", ln.BookID, err)
			}

			res := tx.Model(&models.Book{}).
				Where("id = ? AND stock >= ?", ln.BookID, ln.Quantity).
				Update("stock", gorm.Expr("stock - ?", ln.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("book %d: %w", ln.BookID, ErrInsufficientStock)
			}

			item := models.OrderItem{BookID: ln.BookID, Quantity: ln.Quantity, Price: book.Price}
			total = total.Add(item.LineTotal())
			order.Items = append(order.Items, item)
		}
		order.TotalAmount = total
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetOrder(ctx, id, false)
}
