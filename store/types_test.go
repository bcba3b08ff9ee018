package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hintbind/binder"
	"hintbind/failure"
	"hintbind/hint"
)

var (
	productBinder  = binder.MustBuild(hint.MustStruct(Product{}))
	customerBinder = binder.MustBuild(hint.MustStruct(Customer{}), binder.WithStrict())
)

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()

	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &values))

	return values
}

func TestProduct_Decode(t *testing.T) {
	values := decodeJSON(t, `{
		"id": 7,
		"sku": " abc-1234 ",
		"name": "  Desk lamp ",
		"description": "<b>Warm</b> light",
		"price_cents": "1999",
		"inventory_count": 3,
		"created_at": "2024-05-01T10:00:00Z"
	}`)

	var p Product
	require.NoError(t, productBinder.Decode(values, &p))

	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "ABC-1234", p.SKU)
	assert.Equal(t, "Desk lamp", p.Name)
	assert.Equal(t, "Warm light", p.Description)
	assert.Equal(t, int64(1999), p.PriceCents)
	assert.Equal(t, 3, p.Inventory)
	assert.True(t, p.CreatedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestProduct_DecodeFailures(t *testing.T) {
	values := decodeJSON(t, `{
		"id": 7,
		"sku": "lamp",
		"name": "Desk lamp",
		"description": "",
		"price_cents": -5,
		"inventory_count": "many",
		"created_at": "2024-05-01T10:00:00Z"
	}`)

	var p Product
	err := productBinder.Decode(values, &p)

	var agg *failure.AggregateFailure
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, "Product", agg.Target)
	assert.Equal(t, []string{"sku", "price_cents", "inventory_count"}, agg.Fields())
	assert.Zero(t, p)
}

func TestCustomer_Bind(t *testing.T) {
	got, err := customerBinder.Bind(decodeJSON(t, `{
		"id": "12",
		"email": " Ann@Example.com",
		"full_name": "Ann Lee",
		"is_active": "yes"
	}`))
	require.NoError(t, err)

	assert.Equal(t, binder.Values{
		"id":        int64(12),
		"email":     "ann@example.com",
		"full_name": "Ann Lee",
		"is_active": true,
	}, got)

	_, err = customerBinder.Bind(decodeJSON(t, `{
		"id": 12,
		"email": "ann@example.com",
		"full_name": "Ann Lee",
		"is_active": true,
		"adress": "Main St"
	}`))
	require.Error(t, err)

	var unknown *failure.UnknownValueError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "adress", unknown.Field)
	assert.Equal(t, "address", unknown.Suggestion)
}

func TestOrder_Status(t *testing.T) {
	b := binder.MustBuild(hint.MustStruct(Order{}))

	chain, ok := b.Chain("status")
	require.True(t, ok)
	assert.Equal(t, 2, chain.Len())

	_, err := b.Bind(map[string]any{
		"id":          1,
		"customer_id": 2,
		"status":      "refunded",
		"total_cents": 0,
		"items":       []OrderItem{{ProductID: 1, Quantity: 1}},
		"ordered_at":  time.Now(),
	})

	var agg *failure.AggregateFailure
	require.ErrorAs(t, err, &agg)
	assert.Equal(t, []string{"status"}, agg.Fields())

	var o Order
	require.NoError(t, b.Decode(map[string]any{
		"id":          1,
		"customer_id": 2,
		"status":      "paid",
		"total_cents": 0,
		"items":       []OrderItem{{ProductID: 1, Quantity: 1}},
		"ordered_at":  time.Now(),
	}, &o))
	assert.Equal(t, StatusPaid, o.Status)
	assert.Len(t, o.Items, 1)
}
