package httpserver

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/bookstore/internal/middleware/session"
	"github.com/Skotchmaster/bookstore/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/bookstore/pkg/middleware/logging"
	"github.com/Skotchmaster/bookstore/pkg/middleware/metrics"
)

type Deps struct {
	Handler *Handler
	Ready   Pinger
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	CSRF    csrf.Config
}

// New builds the echo instance with the full middleware chain and routes.
func New(d Deps) (*echo.Echo, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = tmpl

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	d.CSRF.SkipPrefixes = append(d.CSRF.SkipPrefixes, "/health", "/metrics")
	e.Use(csrf.Middleware(d.CSRF))
	e.Use(session.Load(d.Handler.Auth, d.Handler.Cookies))

	Register(e, d)
	return e, nil
}

func Register(e *echo.Echo, d Deps) {
	e.GET("/health/live", Live)
	e.GET("/health/ready", Ready(d.Ready))
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics.Handler())
	}

	h := d.Handler

	e.GET("/", h.Home)
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.GET("/register", h.RegisterPage)
	e.POST("/register", h.Register)
	e.GET("/logout", h.Logout, session.RequireLogin)
	e.GET("/dashboard", h.Dashboard, session.RequireLogin)

	api := e.Group("/api")

	api.GET("/books", h.ListBooks)
	api.GET("/books/:id", h.GetBook)
	api.GET("/search", h.Search)
	api.POST("/orders", h.Checkout, session.RequireAPIAuth)

	admin := api.Group("/admin", session.RequireAdmin)

	admin.POST("/books", h.CreateBook)
	admin.PUT("/books/:id", h.UpdateBook)
	admin.DELETE("/books/:id", h.DeleteBook)
	admin.PATCH("/orders/:id", h.UpdateOrderStatus)
}
