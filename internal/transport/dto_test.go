package transport

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/bookstore/internal/models"
)

func TestBookJSONShape(t *testing.T) {
	b := models.Book{ID: 1, Title: "1984", Author: "George Orwell", Price: decimal.RequireFromString("11.50"), Stock: 3}

	raw, err := json.Marshal(Book(&b))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"1984","author":"George Orwell","price":11.5,"description":null,"cover_image":null,"stock":3}`, string(raw))

	raw, err = json.Marshal(SearchBooks([]models.Book{b}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"title":"1984","author":"George Orwell","price":11.5,"cover_image":null,"stock":3}]`, string(raw))
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	raw, err := json.Marshal(Books(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	raw, err = json.Marshal(SearchBooks(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestOrderJSON(t *testing.T) {
	o := models.Order{
		ID: 5, UserID: 2, Status: "pending", TotalAmount: decimal.RequireFromString("24.00"),
		Items: []models.OrderItem{{BookID: 1, Quantity: 2, Price: decimal.RequireFromString("12")}},
	}
	raw, err := json.Marshal(Order(&o))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, float64(24), got["total_amount"])
	assert.Len(t, got["items"], 1)
	assert.Contains(t, got, "created_at")
}
