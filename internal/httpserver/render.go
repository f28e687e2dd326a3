package httpserver

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/bookstore/internal/middleware/session"
	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/internal/service"
	"github.com/Skotchmaster/bookstore/pkg/flash"
	"github.com/Skotchmaster/bookstore/pkg/middleware/csrf"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"home", "login", "register", "user_dashboard", "admin_dashboard"}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") },
}

// Page is the data every template receives. Handlers fill the page-specific
// fields; render fills the rest from the request.
type Page struct {
	Title     string
	User      *models.User
	Flashes   []flash.Message
	CSRF      string
	Next      string
	Form      any
	Errors    map[string]string
	Books     []models.Book
	Dashboard *service.DashboardView
}

// Templates renders a page inside the shared layout.
type Templates struct {
	byName map[string]*template.Template
}

func LoadTemplates() (*Templates, error) {
	return parseTemplates(templateFS)
}

func parseTemplates(fsys fs.FS) (*Templates, error) {
	t := &Templates{byName: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t.byName[name] = tmpl
	}
	return t, nil
}

func (t *Templates) Render(w io.Writer, name string, data any, _ echo.Context) error {
	tmpl, ok := t.byName[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

func render(c echo.Context, status int, name string, p Page) error {
	p.User = session.CurrentUser(c)
	p.CSRF = csrf.Token(c)
	p.Flashes = flash.Pop(c)
	return c.Render(status, name, p)
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusSeeOther, to)
}
