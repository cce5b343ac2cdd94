package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arunprasath/shopcart/internal/model"
	"github.com/arunprasath/shopcart/internal/notify"
	"github.com/arunprasath/shopcart/internal/queue"
	"github.com/arunprasath/shopcart/internal/repository"
	"github.com/arunprasath/shopcart/internal/service"
)

// OrderHandler wires the order lifecycle endpoints to the order service
// and fans out best-effort notifications after checkout.
type OrderHandler struct {
	Svc      *service.OrderService
	Orders   repository.OrderStore
	Users    repository.UserStore
	WhatsApp *notify.WhatsApp
}

func NewOrderHandler(svc *service.OrderService, orders repository.OrderStore, users repository.UserStore, wa *notify.WhatsApp) *OrderHandler {
	return &OrderHandler{Svc: svc, Orders: orders, Users: users, WhatsApp: wa}
}

type orderItemReq struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type newOrderReq struct {
	OrderItems    []orderItemReq     `json:"orderItems" validate:"required,min=1,dive"`
	ShippingInfo  model.ShippingInfo `json:"shippingInfo" validate:"required"`
	ItemsPrice    float64            `json:"itemsPrice"`
	TaxPrice      float64            `json:"taxPrice"`
	ShippingPrice float64            `json:"shippingPrice"`
	TotalPrice    float64            `json:"totalPrice"`
	PaymentInfo   model.PaymentInfo  `json:"paymentInfo"`
}

// Create persists a checkout. The submitted price breakdown is only a
// cross-check: the service recomputes every figure from the catalog and
// rejects the order when they disagree. After a successful save the
// order-placed event and the WhatsApp admin alert fire best-effort; their
// failure never fails the checkout.
func (h *OrderHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req newOrderReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	lines := make([]service.CartLine, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		pid, err := objectIDParam(item.Product)
		if err != nil {
			return apiError(c, http.StatusBadRequest, "Invalid product id in order items")
		}
		lines = append(lines, service.CartLine{ProductID: pid, Quantity: item.Quantity})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	order, err := h.Svc.Create(ctx, uid, lines, req.ShippingInfo, service.SubmittedTotals{
		ItemsPrice:    req.ItemsPrice,
		TaxPrice:      req.TaxPrice,
		ShippingPrice: req.ShippingPrice,
		TotalPrice:    req.TotalPrice,
	}, req.PaymentInfo)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyOrder):
			return apiError(c, http.StatusBadRequest, "Order has no items")
		case errors.Is(err, service.ErrPriceMismatch):
			return apiError(c, http.StatusBadRequest, "Order amount does not match the catalog prices")
		case errors.Is(err, repository.ErrNotFound):
			return apiError(c, http.StatusBadRequest, "One of the ordered products no longer exists")
		}
		return err
	}

	go h.notifyOrderPlaced(order)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "order": order})
}

// MyOrders lists the authenticated user's orders, newest first.
func (h *OrderHandler) MyOrders(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Orders.ByUser(ctx, uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "orders": orders})
}

// Get returns one of the caller's orders; admins may fetch any order.
func (h *OrderHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return apiError(c, http.StatusUnauthorized, "Unauthorized")
	}
	id, err := objectIDParam(c.Param("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid order id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	order, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "Order not found")
	}
	if order.User != uid && c.Get("role") != model.RoleAdmin {
		return apiError(c, http.StatusForbidden, "You are not allowed to view this order")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}

// ----- admin -----

// AdminList returns all orders plus the summed revenue.
func (h *OrderHandler) AdminList(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, total, err := h.Svc.AdminList(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"totalAmount": total,
		"orders":      orders,
	})
}

type updateOrderReq struct {
	OrderStatus string `json:"orderStatus" validate:"required"`
}

// Update applies an admin status transition.
func (h *OrderHandler) Update(c echo.Context) error {
	id, err := objectIDParam(c.Param("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid order id")
	}
	var req updateOrderReq
	if err := c.Bind(&req); err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	order, err := h.Svc.UpdateStatus(ctx, id, req.OrderStatus)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyDelivered):
			return apiError(c, http.StatusBadRequest, "Order has been already delivered")
		case errors.Is(err, service.ErrInvalidStatus):
			return apiError(c, http.StatusBadRequest, "Invalid order status")
		case errors.Is(err, repository.ErrNotFound):
			return apiError(c, http.StatusNotFound, "Order not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}

func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := objectIDParam(c.Param("id"))
	if err != nil {
		return apiError(c, http.StatusBadRequest, "Invalid order id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.Delete(ctx, id); err != nil {
		return notFoundOr(c, err, http.StatusNotFound, "Order not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// notifyOrderPlaced publishes the order event and pings the admin's
// WhatsApp. Runs detached from the request; failures are only logged.
func (h *OrderHandler) notifyOrderPlaced(order *model.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userName := order.ShippingInfo.Name
	if user, err := h.Users.GetByID(ctx, order.User); err == nil && user.Name != "" {
		userName = user.Name
	}

	items := make([]queue.OrderLine, 0, len(order.OrderItems))
	for _, it := range order.OrderItems {
		items = append(items, queue.OrderLine{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	ev := queue.OrderPlacedEvent{
		OrderID:     order.ID.Hex(),
		UserID:      order.User.Hex(),
		UserName:    userName,
		UserPhone:   order.ShippingInfo.Phone,
		PaymentMode: order.PaymentInfo.Status,
		PaymentID:   order.PaymentInfo.ID,
		TotalAmount: order.TotalPrice,
		Items:       items,
		PlacedAt:    order.PaidAt.Format(time.RFC3339),
	}

	if err := service.PublishOrderPlaced(ctx, ev); err != nil {
		log.Printf("order: publish event: %v", err)
	}
	if h.WhatsApp != nil && h.WhatsApp.Enabled() {
		if err := h.WhatsApp.OrderAlert(ctx, ev); err != nil {
			log.Printf("order: whatsapp alert: %v", err)
		}
	}
}
