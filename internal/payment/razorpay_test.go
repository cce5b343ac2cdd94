package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	c := NewClient("key", "secret", "")

	good := sign("secret", "order_1", "pay_1")
	assert.True(t, c.VerifySignature("order_1", "pay_1", good))

	assert.False(t, c.VerifySignature("order_1", "pay_2", good))
	assert.False(t, c.VerifySignature("order_2", "pay_1", good))
	assert.False(t, c.VerifySignature("order_1", "pay_1", sign("wrong", "order_1", "pay_1")))
	assert.False(t, c.VerifySignature("order_1", "pay_1", ""))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, 50000.0, payload["amount"])
		assert.Equal(t, "INR", payload["currency"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "order_test123",
			"amount": payload["amount"],
			"status": "created",
		})
	}))
	defer srv.Close()

	c := NewClient("key", "secret", srv.URL)
	order, err := c.CreateOrder(t.Context(), 50000, "INR", "rcpt_x", nil)
	require.NoError(t, err)
	assert.Equal(t, "order_test123", order["id"])
	assert.Equal(t, "created", order["status"])
}

func TestCreateOrder_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("key", "wrong", srv.URL)
	_, err := c.CreateOrder(t.Context(), 50000, "INR", "rcpt_x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestFetchPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/pay_42", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "pay_42", "status": "captured"})
	}))
	defer srv.Close()

	c := NewClient("key", "secret", srv.URL)
	p, err := c.FetchPayment(t.Context(), "pay_42")
	require.NoError(t, err)
	assert.Equal(t, "captured", p["status"])
}
