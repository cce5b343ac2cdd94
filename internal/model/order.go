package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order status values. An order starts in Processing and is moved
// forward by an admin; Delivered is terminal.
const (
	StatusProcessing = "Processing"
	StatusShipping   = "Shipping"
	StatusDelivered  = "Delivered"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	return s == StatusProcessing || s == StatusShipping || s == StatusDelivered
}

// CanTransition reports whether an admin may move an order from one
// status to another. Any transition out of Delivered is rejected;
// repeated updates to a non-terminal status are allowed (the stock
// side effect is guarded separately).
func CanTransition(from, to string) bool {
	if !ValidStatus(to) {
		return false
	}
	return from != StatusDelivered
}

// OrderItem is a line item snapshotted at checkout. Name, Price and
// Image are copied from the product at creation time so later catalog
// edits do not rewrite order history.
type OrderItem struct {
	Product  primitive.ObjectID `json:"product" bson:"product"`
	Name     string             `json:"name" bson:"name"`
	Price    float64            `json:"price" bson:"price"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Image    string             `json:"image" bson:"image"`
}

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	Name     string `json:"name" bson:"name" validate:"required"`
	Phone    string `json:"phoneNo" bson:"phone" validate:"required"`
	Address  string `json:"address" bson:"address" validate:"required"`
	District string `json:"district" bson:"district" validate:"required"`
	State    string `json:"state" bson:"state" validate:"required"`
	Pincode  string `json:"pincode" bson:"pincode" validate:"required,numeric,len=6"`
}

// PaymentInfo records the gateway payment id and its status
// ("paid", "CashOnDelivery", ...).
type PaymentInfo struct {
	ID     string `json:"id" bson:"id"`
	Status string `json:"status" bson:"status"`
}

// Order is a persisted checkout. Price fields hold the server-side
// recomputed breakdown. StockAdjusted tracks whether the one-time
// inventory decrement has already fired for this order.
type Order struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	OrderItems    []OrderItem        `json:"orderItems" bson:"order_items"`
	ShippingInfo  ShippingInfo       `json:"shippingInfo" bson:"shipping_info"`
	ItemsPrice    float64            `json:"itemsPrice" bson:"items_price"`
	TaxPrice      float64            `json:"taxPrice" bson:"tax_price"`
	ShippingPrice float64            `json:"shippingPrice" bson:"shipping_price"`
	TotalPrice    float64            `json:"totalPrice" bson:"total_price"`
	PaymentInfo   PaymentInfo        `json:"paymentInfo" bson:"payment_info"`
	OrderStatus   string             `json:"orderStatus" bson:"order_status"`
	StockAdjusted bool               `json:"-" bson:"stock_adjusted"`
	PaidAt        time.Time          `json:"paidAt" bson:"paid_at"`
	DeliveredAt   *time.Time         `json:"deliveredAt,omitempty" bson:"delivered_at,omitempty"`
	User          primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updated_at"`
}
