// Package notify posts order alerts to the WhatsApp Cloud API. Delivery
// is best-effort: the checkout flow logs failures and carries on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/arunprasath/shopcart/internal/queue"
)

const templateName = "admin_order_alert"

// WhatsApp sends templated messages through the Cloud API graph
// endpoint. A zero-valued token disables sending, so local setups work
// without credentials.
type WhatsApp struct {
	token   string
	phoneID string
	admin   string
	baseURL string
	http    *http.Client
}

func NewWhatsApp(token, phoneID, adminNumber, baseURL string) *WhatsApp {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v17.0"
	}
	return &WhatsApp{
		token:   token,
		phoneID: phoneID,
		admin:   adminNumber,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether credentials are configured.
func (w *WhatsApp) Enabled() bool { return w.token != "" && w.phoneID != "" && w.admin != "" }

// OrderAlert notifies the store admin that an order was placed. COD
// orders show "Cash on Delivery" in place of a payment id.
func (w *WhatsApp) OrderAlert(ctx context.Context, ev queue.OrderPlacedEvent) error {
	if !w.Enabled() {
		return nil
	}
	paymentRef := ev.PaymentID
	if strings.EqualFold(ev.PaymentMode, "COD") || strings.EqualFold(ev.PaymentMode, "CashOnDelivery") {
		paymentRef = "Cash on Delivery"
	}
	params := []string{
		ev.UserName,
		ev.OrderID,
		paymentRef,
		fmt.Sprintf("₹%.2f", ev.TotalAmount),
		ev.UserPhone,
		itemsText(ev.Items),
	}
	return w.sendTemplate(ctx, w.admin, templateName, params)
}

func itemsText(items []queue.OrderLine) string {
	parts := make([]string, 0, len(items))
	for i, it := range items {
		parts = append(parts, fmt.Sprintf("%d. %s x%d - ₹%.2f", i+1, it.Name, it.Quantity, it.Price*float64(it.Quantity)))
	}
	return strings.Join(parts, "  ,  ")
}

func (w *WhatsApp) sendTemplate(ctx context.Context, to, name string, params []string) error {
	bodyParams := make([]map[string]string, 0, len(params))
	for _, p := range params {
		bodyParams = append(bodyParams, map[string]string{"type": "text", "text": p})
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]any{
			"name":     name,
			"language": map[string]string{"code": "en_US"},
			"components": []map[string]any{
				{"type": "body", "parameters": bodyParams},
			},
		},
	}
	bs, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", w.baseURL, w.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.token)

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp call: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp call: status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
