package erp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/inventory/balances", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"warehouse_id":"WH1","product_id":"P1","qty_on_hand":"42","safety_stock":10},
			{"warehouse_id":"WH1","product_id":"P2","qty_on_hand":7,"safety_stock":"n/a"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	balances, err := client.Balances(context.Background())
	require.NoError(t, err)

	require.Len(t, balances, 2)
	assert.Equal(t, 42.0, balances[0].QtyOnHand)
	assert.Equal(t, 10.0, balances[0].SafetyStock)
	assert.Equal(t, 7.0, balances[1].QtyOnHand)
	assert.Equal(t, 0.0, balances[1].SafetyStock)
}

func TestClientNoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Products(context.Background())
	require.NoError(t, err)
}

func TestClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Transactions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestClientUpdateSafetyStock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/inventory/balances/WH1/P1", r.URL.Path)

		var body map[string]float64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 15.0, body["safety_stock"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"warehouse_id":"WH1","product_id":"P1","qty_on_hand":"30","safety_stock":15}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	updated, err := client.UpdateSafetyStock(context.Background(), "WH1", "P1", 15)
	require.NoError(t, err)

	assert.Equal(t, 15.0, updated.SafetyStock)
	assert.Equal(t, 30.0, updated.QtyOnHand)
}
