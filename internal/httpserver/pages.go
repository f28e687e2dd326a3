package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookstore/internal/middleware/session"
	"github.com/Skotchmaster/bookstore/internal/service"
)

func (h *Handler) Home(c echo.Context) error {
	books, err := h.Catalog.ListFeatured(c.Request().Context(), service.FeaturedLimit)
	if err != nil {
		return pageError(c, err)
	}
	return render(c, http.StatusOK, "home", Page{Books: books})
}

func (h *Handler) Dashboard(c echo.Context) error {
	view, err := h.Orders.Dashboard(c.Request().Context(), session.CurrentUser(c))
	if err != nil {
		return pageError(c, err)
	}
	if view.Admin {
		return render(c, http.StatusOK, "admin_dashboard", Page{Title: "Admin dashboard", Dashboard: view})
	}
	return render(c, http.StatusOK, "user_dashboard", Page{Title: "My orders", Dashboard: view})
}
