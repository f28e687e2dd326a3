package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookstore/internal/forms"
	"github.com/Skotchmaster/bookstore/internal/transport"
)

func (h *Handler) CreateBook(c echo.Context) error {
	var form forms.BookForm
	if err := bindJSON(c, &form); err != nil {
		return err
	}
	book, err := h.Catalog.CreateBook(c.Request().Context(), form)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusCreated, transport.Book(book))
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "book not found")
	}
	var form forms.BookForm
	if err := bindJSON(c, &form); err != nil {
		return err
	}
	book, err := h.Catalog.UpdateBook(c.Request().Context(), id, form)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, transport.Book(book))
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "book not found")
	}
	if err := h.Catalog.DeleteBook(c.Request().Context(), id); err != nil {
		return apiError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	var form forms.StatusForm
	if err := bindJSON(c, &form); err != nil {
		return err
	}
	order, err := h.Orders.UpdateOrderStatus(c.Request().Context(), id, form)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, transport.Order(order))
}
