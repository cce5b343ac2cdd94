// Package service holds the order lifecycle logic and the outbound event
// publisher. Handlers stay thin: everything that touches more than one
// collection, or carries a business rule, lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arunprasath/shopcart/internal/model"
	"github.com/arunprasath/shopcart/internal/repository"
)

var (
	// ErrAlreadyDelivered rejects status updates on a delivered order.
	ErrAlreadyDelivered = errors.New("order has been already delivered")
	// ErrInvalidStatus rejects unknown target statuses.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrPriceMismatch rejects checkouts whose client-side totals disagree
	// with the server-side recomputation beyond the configured tolerance.
	ErrPriceMismatch = errors.New("submitted prices do not match server calculation")
	// ErrEmptyOrder rejects checkouts without line items.
	ErrEmptyOrder = errors.New("order has no items")
)

// Pricing is the fixed tax/shipping policy used to recompute order
// totals server-side. Tolerance absorbs client-side rounding drift.
type Pricing struct {
	TaxRate         float64 // e.g. 0.18
	ShippingFlat    float64 // flat fee below the free-shipping threshold
	FreeShippingMin float64 // items subtotal at which shipping becomes free
	Tolerance       float64 // max accepted |submitted - computed| per field
}

// SubmittedTotals is the price breakdown as computed by the client.
// It is checked against the authoritative recomputation, never trusted.
type SubmittedTotals struct {
	ItemsPrice    float64
	TaxPrice      float64
	ShippingPrice float64
	TotalPrice    float64
}

// CartLine is one product+quantity entry from the submitted cart.
type CartLine struct {
	ProductID primitive.ObjectID
	Quantity  int
}

// OrderService implements the order lifecycle: creation from a cart
// snapshot, admin status transitions with the one-time stock decrement,
// revenue aggregation and deletion.
//
// LegacyStockBehavior restores the original storefront's semantics for
// migration validation: the stock decrement fires on every status update
// call and deliveredAt is stamped regardless of the target status. The
// default behavior decrements exactly once per order and stamps
// deliveredAt only on Delivered.
type OrderService struct {
	Orders              repository.OrderStore
	Products            repository.ProductStore
	Pricing             Pricing
	LegacyStockBehavior bool
}

func NewOrderService(orders repository.OrderStore, products repository.ProductStore, pricing Pricing, legacy bool) *OrderService {
	return &OrderService{Orders: orders, Products: products, Pricing: pricing, LegacyStockBehavior: legacy}
}

// Create persists a new order. Line items are snapshotted from the
// authoritative product documents (name, price, first image); the price
// breakdown is recomputed from those prices and the pricing policy, and
// the submitted totals must agree within tolerance. Stock is not touched
// here: the decrement happens on the first admin status transition.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, lines []CartLine, shipping model.ShippingInfo, submitted SubmittedTotals, payment model.PaymentInfo) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]model.OrderItem, 0, len(lines))
	var itemsPrice float64
	for _, line := range lines {
		p, err := s.Products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("order line %s: %w", line.ProductID.Hex(), err)
		}
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0].Image
		}
		items = append(items, model.OrderItem{
			Product:  p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: line.Quantity,
			Image:    image,
		})
		itemsPrice += p.Price * float64(line.Quantity)
	}
	itemsPrice = round2(itemsPrice)

	tax := round2(itemsPrice * s.Pricing.TaxRate)
	shippingPrice := s.Pricing.ShippingFlat
	if itemsPrice >= s.Pricing.FreeShippingMin {
		shippingPrice = 0
	}
	total := round2(itemsPrice + tax + shippingPrice)

	if s.exceedsTolerance(submitted.ItemsPrice, itemsPrice) ||
		s.exceedsTolerance(submitted.TaxPrice, tax) ||
		s.exceedsTolerance(submitted.ShippingPrice, shippingPrice) ||
		s.exceedsTolerance(submitted.TotalPrice, total) {
		return nil, ErrPriceMismatch
	}

	order := &model.Order{
		OrderItems:    items,
		ShippingInfo:  shipping,
		ItemsPrice:    itemsPrice,
		TaxPrice:      tax,
		ShippingPrice: shippingPrice,
		TotalPrice:    total,
		PaymentInfo:   payment,
		OrderStatus:   model.StatusProcessing,
		PaidAt:        time.Now().UTC(),
		User:          userID,
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus applies an admin status transition. Delivered orders
// reject any further update. Stock is decremented by each line item's
// quantity exactly once per order, on the first transition out of
// Processing (every call in legacy mode). Stock may go negative; no
// floor is applied.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, newStatus string) (*model.Order, error) {
	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OrderStatus == model.StatusDelivered {
		return nil, ErrAlreadyDelivered
	}
	if !model.CanTransition(order.OrderStatus, newStatus) {
		return nil, ErrInvalidStatus
	}

	now := time.Now().UTC()
	if s.LegacyStockBehavior {
		if err := s.decrementStock(ctx, order); err != nil {
			return nil, err
		}
		order.DeliveredAt = &now
	} else {
		if !order.StockAdjusted && newStatus != model.StatusProcessing {
			if err := s.decrementStock(ctx, order); err != nil {
				return nil, err
			}
			order.StockAdjusted = true
		}
		if newStatus == model.StatusDelivered {
			order.DeliveredAt = &now
		}
	}

	order.OrderStatus = newStatus
	if err := s.Orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// AdminList returns every order together with the revenue sum across
// them.
func (s *OrderService) AdminList(ctx context.Context) ([]model.Order, float64, error) {
	orders, err := s.Orders.All(ctx)
	if err != nil {
		return nil, 0, err
	}
	var totalAmount float64
	for _, o := range orders {
		totalAmount += o.TotalPrice
	}
	return orders, totalAmount, nil
}

// Delete removes an order. Previously decremented stock is not
// restored.
func (s *OrderService) Delete(ctx context.Context, orderID primitive.ObjectID) error {
	if _, err := s.Orders.GetByID(ctx, orderID); err != nil {
		return err
	}
	return s.Orders.Delete(ctx, orderID)
}

func (s *OrderService) decrementStock(ctx context.Context, order *model.Order) error {
	for _, item := range order.OrderItems {
		if err := s.Products.AdjustStock(ctx, item.Product, -item.Quantity); err != nil {
			return fmt.Errorf("adjust stock for %s: %w", item.Product.Hex(), err)
		}
	}
	return nil
}

func (s *OrderService) exceedsTolerance(submitted, computed float64) bool {
	return math.Abs(submitted-computed) > s.Pricing.Tolerance
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
