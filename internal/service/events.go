package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/pkg/events"
	"github.com/Skotchmaster/bookstore/pkg/logging"
)

const publishTimeout = 5 * time.Second

type UserEvent struct {
	Type   string    `json:"type"`
	UserID uint      `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

type BookEvent struct {
	Type   string    `json:"type"`
	BookID uint      `json:"book_id"`
	Title  string    `json:"title,omitempty"`
	Stock  int       `json:"stock"`
	At     time.Time `json:"at"`
}

type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     uint      `json:"order_id"`
	UserID      uint      `json:"user_id"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"total_amount"`
	At          time.Time `json:"at"`
}

func userEvent(typ string, u *models.User) UserEvent {
	return UserEvent{Type: typ, UserID: u.ID, Email: u.Email, At: nowUTC()}
}

func bookEvent(typ string, b *models.Book) BookEvent {
	return BookEvent{Type: typ, BookID: b.ID, Title: b.Title, Stock: b.Stock, At: nowUTC()}
}

func orderEvent(typ string, o *models.Order) OrderEvent {
	return OrderEvent{
		Type:        typ,
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount.StringFixed(2),
		At:          nowUTC(),
	}
}

func nowUTC() time.Time { return time.Now().UTC() }

func idKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

// publish never fails the caller: the write has already committed, so a
// broker outage is logged and dropped.
func publish(ctx context.Context, p events.Publisher, topic, key string, event any) {
	if p == nil {
		return
	}
	l := logging.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		l.Warn("event_publish_failed", "topic", topic, "key", key, "error", err)
	}
}
