// Package flash carries one-shot page notifications across a redirect in a cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	CookieName = "flash"
	pendingKey = "flash_pending"
)

type Message struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

func Success(c echo.Context, text string) { Add(c, "success", text) }
func Info(c echo.Context, text string)    { Add(c, "info", text) }
func Danger(c echo.Context, text string)  { Add(c, "danger", text) }

// Add queues a message for the next rendered page, which may be this request or the one after a redirect.
func Add(c echo.Context, category, text string) {
	pending := append(pendingMessages(c), Message{Category: category, Text: text})
	c.Set(pendingKey, pending)

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the messages carried in by the request plus the ones queued during it, and clears them.
func Pop(c echo.Context) []Message {
	var out []Message
	if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
		out = append(out, decode(ck.Value)...)
	}
	pending := pendingMessages(c)
	out = append(out, pending...)

	if len(out) > 0 {
		c.Set(pendingKey, []Message(nil))
		c.SetCookie(&http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return out
}

func pendingMessages(c echo.Context) []Message {
	if v, ok := c.Get(pendingKey).([]Message); ok {
		return v
	}
	return nil
}

func decode(v string) []Message {
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var msgs []Message
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}
