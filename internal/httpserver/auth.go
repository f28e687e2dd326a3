package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookstore/internal/forms"
	"github.com/Skotchmaster/bookstore/internal/middleware/session"
	"github.com/Skotchmaster/bookstore/internal/service"
	"github.com/Skotchmaster/bookstore/pkg/flash"
	"github.com/Skotchmaster/bookstore/pkg/logging"
)

func (h *Handler) LoginPage(c echo.Context) error {
	if session.CurrentUser(c) != nil {
		return redirect(c, "/dashboard")
	}
	return render(c, http.StatusOK, "login", Page{Title: "Login", Next: session.SafeNext(c.QueryParam("next"))})
}

func (h *Handler) Login(c echo.Context) error {
	if session.CurrentUser(c) != nil {
		return redirect(c, "/dashboard")
	}

	var form forms.LoginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed form")
	}
	next := session.SafeNext(c.FormValue("next"))
	page := Page{Title: "Login", Next: next, Form: &form}

	res, err := h.Auth.Login(c.Request().Context(), form)
	if err != nil {
		var ve *forms.ValidationError
		switch {
		case errors.As(err, &ve):
			page.Errors = ve.Fields
			return render(c, http.StatusOK, "login", page)
		case errors.Is(err, service.ErrInvalidCredentials):
			flash.Danger(c, "Invalid email or password")
			return render(c, http.StatusOK, "login", page)
		}
		return pageError(c, err)
	}

	h.Cookies.Set(c, res.Token, res.ExpiresAt)
	flash.Success(c, "Login successful!")
	if next != "" {
		return redirect(c, next)
	}
	return redirect(c, "/dashboard")
}

func (h *Handler) RegisterPage(c echo.Context) error {
	if session.CurrentUser(c) != nil {
		return redirect(c, "/dashboard")
	}
	return render(c, http.StatusOK, "register", Page{Title: "Register"})
}

func (h *Handler) Register(c echo.Context) error {
	if session.CurrentUser(c) != nil {
		return redirect(c, "/dashboard")
	}

	var form forms.RegisterForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed form")
	}
	page := Page{Title: "Register", Form: &form}

	if _, err := h.Auth.Register(c.Request().Context(), form); err != nil {
		var ve *forms.ValidationError
		switch {
		case errors.As(err, &ve):
			page.Errors = ve.Fields
			return render(c, http.StatusOK, "register", page)
		case errors.Is(err, service.ErrDuplicateEmail):
			flash.Danger(c, "Email already registered")
			return render(c, http.StatusOK, "register", page)
		}
		return pageError(c, err)
	}

	flash.Success(c, "Registration successful! Please login.")
	return redirect(c, "/login")
}

func (h *Handler) Logout(c echo.Context) error {
	if u := session.CurrentUser(c); u != nil {
		logging.FromContext(c.Request().Context()).Info("user_logged_out", "user_id", u.ID)
	}
	h.Cookies.Clear(c)
	session.SetCurrentUser(c, nil)
	flash.Info(c, "You have been logged out.")
	return redirect(c, "/")
}
