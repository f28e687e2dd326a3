// Package session loads the signed session cookie into the request and gates
// routes on it.
package session

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/pkg/flash"
	"github.com/Skotchmaster/bookstore/pkg/logging"
)

const (
	CookieName = "session"
	userKey    = "current_user"
)

type Resolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

type Cookies struct {
	Secure bool
}

func (k Cookies) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (k Cookies) Set(c echo.Context, token string, expires time.Time) {
	c.SetCookie(k.cookie(token, expires, 0))
}

func (k Cookies) Clear(c echo.Context) {
	c.SetCookie(k.cookie("", time.Unix(0, 0), -1))
}

// Load resolves the session cookie on every request. A token that does not
// resolve to a user leaves the request anonymous and drops the cookie.
func Load(r Resolver, k Cookies) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(CookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			user, err := r.CurrentUser(ctx, ck.Value)
			if err != nil {
				return err
			}
			if user == nil {
				logging.FromContext(ctx).Info("session_dropped", "reason", "stale or invalid token")
				k.Clear(c)
				return next(c)
			}

			c.Set(userKey, user)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", user.ID))))
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func SetCurrentUser(c echo.Context, u *models.User) {
	c.Set(userKey, u)
}

// LoginURL sends the browser to the login page and back to next afterwards.
func LoginURL(next string) string {
	if next == "" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// RequireLogin redirects anonymous page requests to the login form.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			flash.Info(c, "Please log in to access this page.")
			return c.Redirect(http.StatusSeeOther, LoginURL(c.Request().URL.RequestURI()))
		}
		return next(c)
	}
}

// RequireAPIAuth answers anonymous API requests with 401.
func RequireAPIAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := CurrentUser(c)
		if u == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		if !u.IsAdmin {
			logging.FromContext(c.Request().Context()).Warn("admin_denied", "status", 403, "user_id", u.ID)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

// SafeNext accepts only same-site relative paths as a post-login target.
func SafeNext(next string) string {
	if next == "" || next[0] != '/' || len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return next
}
