package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookstore/internal/forms"
	"github.com/Skotchmaster/bookstore/internal/middleware/session"
	"github.com/Skotchmaster/bookstore/internal/service"
	"github.com/Skotchmaster/bookstore/internal/transport"
	"github.com/Skotchmaster/bookstore/pkg/logging"
)

type Handler struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Cookies session.Cookies
}

// apiError turns a service error into the HTTP response the JSON routes send.
func apiError(c echo.Context, err error) error {
	var ve *forms.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Message: "validation failed", Fields: ve.Fields})
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrInsufficientStock), errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	logging.FromContext(c.Request().Context()).Error("request_failed", "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// pageError is apiError for HTML routes: unauthenticated requests go to the
// login page instead of getting a 401.
func pageError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrUnauthenticated) {
		return redirect(c, session.LoginURL(c.Request().URL.RequestURI()))
	}
	return apiError(c, err)
}

// idParam reports ok=false for anything that is not a positive integer.
func idParam(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Message: "malformed request body"})
	}
	return nil
}
