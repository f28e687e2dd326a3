package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookstore/internal/forms"
	"github.com/Skotchmaster/bookstore/internal/middleware/session"
	"github.com/Skotchmaster/bookstore/internal/transport"
)

func (h *Handler) ListBooks(c echo.Context) error {
	books, err := h.Catalog.ListBooks(c.Request().Context())
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, transport.Books(books))
}

func (h *Handler) GetBook(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "book not found")
	}
	book, err := h.Catalog.GetBook(c.Request().Context(), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, transport.Book(book))
}

func (h *Handler) Search(c echo.Context) error {
	books, err := h.Catalog.SearchBooks(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, transport.SearchBooks(books))
}

func (h *Handler) Checkout(c echo.Context) error {
	var form forms.CheckoutForm
	if err := bindJSON(c, &form); err != nil {
		return err
	}
	order, err := h.Orders.Checkout(c.Request().Context(), session.CurrentUser(c), form)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusCreated, transport.Order(order))
}
