package handler

import (
	"fmt"
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/arunprasath/shopcart/internal/payment"
)

// PaymentHandler fronts the payment gateway: order creation before the
// client-side checkout widget opens, and signature verification after
// it completes.
type PaymentHandler struct {
	Gateway *payment.Client
}

func NewPaymentHandler(gw *payment.Client) *PaymentHandler {
	return &PaymentHandler{Gateway: gw}
}

type createPaymentReq struct {
	Amount   *float64          `json:"amount"` // rupees
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes"`
}

// CreateOrder registers the amount with the gateway and returns the
// gateway order plus the public key the checkout widget needs. Amounts
// arrive in rupees and are converted to paise.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	var req createPaymentReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Amount == nil {
		return apiError(c, http.StatusBadRequest, "amount required (₹)")
	}
	paise := int64(math.Round(*req.Amount * 100))
	if paise < payment.MinAmountPaise {
		return apiError(c, http.StatusBadRequest, "invalid amount (min ₹1.00)")
	}
	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	order, err := h.Gateway.CreateOrder(ctx, paise, currency, "rcpt_"+uuid.NewString(), req.Notes)
	if err != nil {
		return fmt.Errorf("create gateway order: %w", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"order": order,
		"key":   h.Gateway.KeyID(),
	})
}

type verifyPaymentReq struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyPayment checks the gateway's HMAC over "orderID|paymentID" and,
// when it matches, fetches the payment record for the client.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req verifyPaymentReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"ok": false, "error": "missing fields"})
	}

	if !h.Gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return c.JSON(http.StatusOK, echo.Map{"ok": false, "error": "Invalid signature"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	pay, err := h.Gateway.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		return fmt.Errorf("fetch payment: %w", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "payment": pay})
}
