package forms

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrValidation), "expected ErrValidation, got %v", err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	return ve.Fields
}

func TestRegisterForm(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		form    RegisterForm
		invalid []string
	}{
		{"ok", RegisterForm{Username: "alice", Email: "alice@example.com", Password: "secret1"}, nil},
		{"short username", RegisterForm{Username: "al", Email: "alice@example.com", Password: "secret1"}, []string{"username"}},
		{"long username", RegisterForm{Username: strings.Repeat("a", 51), Email: "a@example.com", Password: "secret1"}, []string{"username"}},
		{"bad email", RegisterForm{Username: "alice", Email: "not-an-email", Password: "secret1"}, []string{"email"}},
		{"short password", RegisterForm{Username: "alice", Email: "alice@example.com", Password: "12345"}, []string{"password"}},
		{"bcrypt limit", RegisterForm{Username: "alice", Email: "alice@example.com", Password: strings.Repeat("p", 73)}, []string{"password"}},
		{"multibyte at limit", RegisterForm{Username: "alice", Email: "alice@example.com", Password: strings.Repeat("é", 36)}, nil},
		{"multibyte over limit", RegisterForm{Username: "alice", Email: "alice@example.com", Password: strings.Repeat("é", 40)}, []string{"password"}},
		{"all empty", RegisterForm{}, []string{"username", "email", "password"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := tc.form
			err := Validate(&f)
			if tc.invalid == nil {
				require.NoError(t, err)
				return
			}
			got := fields(t, err)
			assert.Len(t, got, len(tc.invalid))
			for _, k := range tc.invalid {
				assert.Contains(t, got, k)
			}
		})
	}
}

func TestRegisterFormPasswordBytesMessage(t *testing.T) {
	got := fields(t, Validate(&RegisterForm{Username: "alice", Email: "alice@example.com", Password: strings.Repeat("é", 40)}))
	assert.Equal(t, "must be at most 72 bytes", got["password"])
}

func TestRegisterFormTrimsInput(t *testing.T) {
	f := RegisterForm{Username: "  bob  ", Email: " bob@example.com ", Password: "secret1"}
	require.NoError(t, Validate(&f))
	assert.Equal(t, "bob", f.Username)
	assert.Equal(t, "bob@example.com", f.Email)
}

func TestLoginForm(t *testing.T) {
	got := fields(t, Validate(&LoginForm{Email: "x"}))
	assert.Equal(t, "must be a valid email address", got["email"])
	assert.Equal(t, "is required", got["password"])
}

func TestBookForm(t *testing.T) {
	t.Parallel()

	ok := BookForm{Title: "Dune", Author: "Frank Herbert", Price: ptr(9.99)}
	require.NoError(t, Validate(&ok))
	assert.Equal(t, 10, ok.StockOrDefault())

	zero := BookForm{Title: "Dune", Author: "Frank Herbert", Price: ptr(0.0), Stock: ptr(0)}
	require.NoError(t, Validate(&zero))
	assert.Equal(t, 0, zero.StockOrDefault())

	got := fields(t, Validate(&BookForm{
		Title:      strings.Repeat("t", 101),
		Price:      ptr(-1.0),
		CoverImage: ptr(strings.Repeat("c", 201)),
		Stock:      ptr(-3),
	}))
	assert.Equal(t, map[string]string{
		"title":       "must be at most 100 characters",
		"author":      "is required",
		"price":       "must be greater than or equal to 0",
		"cover_image": "must be at most 200 characters",
		"stock":       "must be greater than or equal to 0",
	}, got)

	missingPrice := fields(t, Validate(&BookForm{Title: "a", Author: "b"}))
	assert.Equal(t, "is required", missingPrice["price"])
}

func TestBookFormBlankOptionalsBecomeNil(t *testing.T) {
	f := BookForm{Title: "a", Author: "b", Price: ptr(1.0), Description: ptr("  "), CoverImage: ptr(" ")}
	require.NoError(t, Validate(&f))
	assert.Nil(t, f.Description)
	assert.Nil(t, f.CoverImage)
}

func TestStatusForm(t *testing.T) {
	for _, s := range []string{"pending", "processing", "shipped", "delivered", "cancelled", " Shipped "} {
		f := StatusForm{Status: s}
		assert.NoError(t, Validate(&f), s)
	}
	got := fields(t, Validate(&StatusForm{Status: "lost"}))
	assert.Contains(t, got["status"], "must be one of")
}

func TestCheckoutForm(t *testing.T) {
	got := fields(t, Validate(&CheckoutForm{}))
	assert.Equal(t, "is required", got["items"])

	got = fields(t, Validate(&CheckoutForm{Items: []CheckoutItem{}}))
	assert.Equal(t, "must contain at least 1 item(s)", got["items"])

	got = fields(t, Validate(&CheckoutForm{Items: []CheckoutItem{{BookID: 1, Quantity: 1}, {BookID: 0, Quantity: 0}}}))
	assert.Equal(t, "is required", got["items[1].book_id"])
	assert.Equal(t, "must be greater than 0", got["items[1].quantity"])
}

func TestCheckoutFormMerged(t *testing.T) {
	f := CheckoutForm{Items: []CheckoutItem{
		{BookID: 2, Quantity: 1},
		{BookID: 1, Quantity: 2},
		{BookID: 2, Quantity: 3},
	}}
	got, err := f.Merged()
	require.NoError(t, err)
	assert.Equal(t, []CheckoutItem{{BookID: 2, Quantity: 4}, {BookID: 1, Quantity: 2}}, got)
}

func TestCheckoutFormMergedOverflow(t *testing.T) {
	f := CheckoutForm{Items: []CheckoutItem{
		{BookID: 1, Quantity: math.MaxInt},
		{BookID: 2, Quantity: 1},
		{BookID: 1, Quantity: math.MaxInt},
	}}
	require.NoError(t, Validate(&f))

	got, err := f.Merged()
	assert.Nil(t, got)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "is too large", fields(t, err)["items[2].quantity"])
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"b": "is required", "a": "is invalid"}}
	assert.Equal(t, "validation failed: a is invalid; b is required", err.Error())
	assert.ErrorIs(t, Invalid("x", "bad"), ErrValidation)
}
