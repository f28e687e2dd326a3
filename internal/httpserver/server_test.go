package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bookstore/internal/forms"
	"github.com/Skotchmaster/bookstore/internal/middleware/session"
	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/internal/repo"
	"github.com/Skotchmaster/bookstore/internal/repo/repotest"
	"github.com/Skotchmaster/bookstore/internal/service"
	"github.com/Skotchmaster/bookstore/pkg/events"
	"github.com/Skotchmaster/bookstore/pkg/logging"
	"github.com/Skotchmaster/bookstore/pkg/middleware/csrf"
	"github.com/Skotchmaster/bookstore/pkg/middleware/metrics"
)

const (
	testOrigin = "http://example.com"
	csrfToken  = "test-csrf-token"
)

type harness struct {
	e       *echo.Echo
	repo    *repo.GormRepo
	handler *Handler
	events  *events.Recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	r := repo.New(repotest.NewDB(t))
	rec := &events.Recorder{}
	h := &Handler{
		Auth:    &service.AuthService{Repo: r, SessionSecret: []byte("test-secret"), SessionTTL: time.Hour, Events: rec},
		Catalog: &service.CatalogService{Repo: r, Events: rec},
		Orders:  &service.OrderService{Repo: r, Events: rec},
	}
	e, err := New(Deps{
		Handler: h,
		Ready:   r,
		Metrics: metrics.New("bookstore_test"),
		Logger:  logging.NewWithWriter(io.Discard, "error"),
		CSRF:    csrf.Config{Secure: false, EnforceSameOrigin: true},
	})
	require.NoError(t, err)
	return &harness{e: e, repo: r, handler: h, events: rec}
}

func (h *harness) user(t *testing.T, username, email, password string, admin bool) *models.User {
	t.Helper()
	u, err := h.handler.Auth.Register(context.Background(), forms.RegisterForm{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	if admin {
		require.NoError(t, h.repo.DB.Model(u).Update("is_admin", true).Error)
		u.IsAdmin = true
	}
	return u
}

func (h *harness) book(t *testing.T, title, author string, price string, stock int) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, Author: author, Stock: stock}
	b.Price = mustDecimal(t, price)
	require.NoError(t, h.repo.CreateBook(context.Background(), b))
	return b
}

// client keeps cookies between requests the way a browser would.
type client struct {
	h       *harness
	cookies map[string]string
}

func (h *harness) client() *client {
	return &client{h: h, cookies: map[string]string{"XSRF-TOKEN": csrfToken}}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for k, v := range c.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	if req.Method != http.MethodGet && req.Header.Get("Origin") == "" {
		req.Header.Set("Origin", testOrigin)
	}
	rec := httptest.NewRecorder()
	c.h.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 || ck.Value == "" {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) postForm(path string, v url.Values) *httptest.ResponseRecorder {
	if v.Get("csrf_token") == "" {
		v.Set("csrf_token", csrfToken)
	}
	return c.do(newFormRequest(path, v))
}

func (c *client) json(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-CSRF-Token", csrfToken)
	return c.do(req)
}

func (c *client) login(t *testing.T, email, password string) {
	t.Helper()
	rec := c.postForm("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.NotEmpty(t, c.cookies[session.CookieName])
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newFormRequest(path string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(v.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func indexOf(s, sub string) int { return strings.Index(s, sub) }

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func uintStr(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func jsonBody(v any) io.Reader {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(v)
	return &buf
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type assertErr string

func (e assertErr) Error() string { return string(e) }
