package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/bookstore/pkg/hash"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const DefaultStock = 10

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string `gorm:"size:50;not null"              json:"username"`
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:200;not null"             json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false"        json:"is_admin"`
}

func (u *User) SetPassword(plaintext string) error {
	h, err := hash.HashPassword(plaintext)
	if err != nil {
		return err
	}
	u.PasswordHash = h
	return nil
}

func (u *User) CheckPassword(plaintext string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return hash.CheckPassword(u.PasswordHash, plaintext)
}

// SessionSubject makes User a tokens.Subject.
func (u *User) SessionSubject() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}

type Book struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"            json:"id"`
	Title       string          `gorm:"size:100;not null"                   json:"title"`
	Author      string          `gorm:"size:100;not null"                   json:"author"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"         json:"price"`
	Description *string         `gorm:"type:text"                           json:"description"`
	CoverImage  *string         `gorm:"size:200"                            json:"cover_image"`
	Stock       int             `gorm:"not null;check:chk_books_stock,stock >= 0" json:"stock"`
}

type Order struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"                  json:"id"`
	UserID      uint            `gorm:"not null;index"                            json:"user_id"`
	User        *User           `gorm:"constraint:OnDelete:RESTRICT"              json:"-"`
	CreatedAt   time.Time       `gorm:"not null;index"                            json:"created_at"`
	Status      string          `gorm:"size:20;not null;default:pending"          json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null"               json:"total_amount"`
	Items       []OrderItem     `gorm:"constraint:OnDelete:CASCADE"               json:"items"`
}

type OrderItem struct {
	ID       uint            `gorm:"primaryKey;autoIncrement"                      json:"id"`
	OrderID  uint            `gorm:"not null;index"                                json:"order_id"`
	BookID   uint            `gorm:"not null;index"                                json:"book_id"`
	Book     *Book           `gorm:"constraint:OnDelete:RESTRICT"                  json:"-"`
	Quantity int             `gorm:"not null;check:chk_order_items_quantity,quantity > 0" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"                   json:"price"`
}

// LineTotal is the captured unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func All() []any {
	return []any{&User{}, &Book{}, &Order{}, &OrderItem{}}
}
