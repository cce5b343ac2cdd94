// Package payment wraps the Razorpay REST API: creating gateway orders
// for an amount and verifying signed payment confirmations. The client
// is constructor-injected; the shared key secret doubles as the HMAC key
// for signature checks.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MinAmountPaise is the smallest order the gateway accepts (₹1.00).
const MinAmountPaise = 100

// GatewayOrder is the gateway's order object, kept loosely typed since
// the storefront forwards it to the checkout widget untouched.
type GatewayOrder map[string]any

// Client talks to a Razorpay-compatible gateway.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
}

func NewClient(keyID, keySecret, baseURL string) *Client {
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// KeyID exposes the public key id for the checkout widget.
func (c *Client) KeyID() string { return c.keyID }

// CreateOrder registers a payment order with the gateway. Amount is in
// paise; the caller validates the minimum before converting.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string, notes map[string]string) (GatewayOrder, error) {
	payload := map[string]any{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}
	var order GatewayOrder
	if err := c.do(ctx, http.MethodPost, "/v1/orders", payload, &order); err != nil {
		return nil, err
	}
	return order, nil
}

// FetchPayment retrieves a payment by id after signature verification.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (GatewayOrder, error) {
	var p GatewayOrder
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// VerifySignature checks the HMAC-SHA256 of "orderID|paymentID" under
// the shared key secret against the signature the gateway handed to the
// client. Comparison is constant time.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		bs, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal gateway request: %w", err)
		}
		body = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway call %s %s: status %d: %s", method, path, resp.StatusCode, snippet)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return nil
}
