package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/bookstore/internal/forms"
	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/internal/repo"
	"github.com/Skotchmaster/bookstore/pkg/events"
	"github.com/Skotchmaster/bookstore/pkg/logging"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// DashboardView is what the dashboard page renders: every order for admins,
// the viewer's own orders otherwise.
type DashboardView struct {
	Viewer *models.User
	Admin  bool
	Orders []models.Order
}

func (s *OrderService) Dashboard(ctx context.Context, viewer *models.User) (*DashboardView, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}

	q := repo.OrderQuery{WithItems: true}
	if viewer.IsAdmin {
		q.WithUser = true
	} else {
		q.UserID = &viewer.ID
	}

	orders, err := s.Repo.ListOrders(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &DashboardView{Viewer: viewer, Admin: viewer.IsAdmin, Orders: orders}, nil
}

func (s *OrderService) Checkout(ctx context.Context, viewer *models.User, form forms.CheckoutForm) (*models.Order, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	l := logging.FromContext(ctx).With("svc", "orders.checkout", "user_id", viewer.ID)

	if err := forms.Validate(&form); err != nil {
		return nil, err
	}

	merged, err := form.Merged()
	if err != nil {
		return nil, err
	}
	lines := make([]repo.OrderLine, 0, len(merged))
	for _, it := range merged {
		lines = append(lines, repo.OrderLine{BookID: it.BookID, Quantity: it.Quantity})
	}

	order, err := s.Repo.CreateOrderWithStock(ctx, viewer.ID, lines)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrInsufficientStock):
			l.Info("checkout_rejected", "status", 409, "reason", err.Error())
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			l.Info("checkout_rejected", "status", 404, "reason", err.Error())
			return nil, fmt.Errorf("%w: %s", ErrNotFound, err.Error())
		}
		l.Error("checkout_error", "status", 500, "error", err)
		return nil, fmt.Errorf("create order: %w", err)
	}

	l.Info("order_placed", "order_id", order.ID, "total", order.TotalAmount.StringFixed(2))
	publish(ctx, s.Events, events.TopicOrders, idKey(order.ID), orderEvent("order_placed", order))
	return order, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, form forms.StatusForm) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "orders.status", "order_id", id)

	if err := forms.Validate(&form); err != nil {
		return nil, err
	}

	order, err := s.Repo.UpdateOrderStatus(ctx, id, form.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		l.Error("order_status_error", "status", 500, "error", err)
		return nil, fmt.Errorf("update order status: %w", err)
	}

	l.Info("order_status_changed", "new_status", order.Status)
	publish(ctx, s.Events, events.TopicOrders, idKey(order.ID), orderEvent("order_status_changed", order))
	return order, nil
}
