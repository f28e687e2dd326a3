package transport

import (
	"time"

	"github.com/Skotchmaster/bookstore/internal/models"
)

type BookResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Description *string `json:"description"`
	CoverImage  *string `json:"cover_image"`
	Stock       int     `json:"stock"`
}

// SearchBookResponse is BookResponse without the description.
type SearchBookResponse struct {
	ID         uint    `json:"id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Price      float64 `json:"price"`
	CoverImage *string `json:"cover_image"`
	Stock      int     `json:"stock"`
}

type OrderItemResponse struct {
	BookID   uint    `json:"book_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type OrderResponse struct {
	ID          uint                `json:"id"`
	UserID      uint                `json:"user_id"`
	Status      string              `json:"status"`
	TotalAmount float64             `json:"total_amount"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []OrderItemResponse `json:"items"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func Book(b *models.Book) BookResponse {
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Price:       b.Price.InexactFloat64(),
		Description: b.Description,
		CoverImage:  b.CoverImage,
		Stock:       b.Stock,
	}
}

func Books(books []models.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, Book(&books[i]))
	}
	return out
}

func SearchBooks(books []models.Book) []SearchBookResponse {
	out := make([]SearchBookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, SearchBookResponse{
			ID:         b.ID,
			Title:      b.Title,
			Author:     b.Author,
			Price:      b.Price.InexactFloat64(),
			CoverImage: b.CoverImage,
			Stock:      b.Stock,
		})
	}
	return out
}

func Order(o *models.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{BookID: it.BookID, Quantity: it.Quantity, Price: it.Price.InexactFloat64()})
	}
	return OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount.InexactFloat64(),
		CreatedAt:   o.CreatedAt,
		Items:       items,
	}
}
