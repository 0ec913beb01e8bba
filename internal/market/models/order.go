package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
	OrderRefunded   = "refunded"

	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

var OrderStatuses = []string{OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded}

type OrderItem struct {
	ProductID  primitive.ObjectID `json:"productId" bson:"productId"`
	Name       string             `json:"name" bson:"name"`
	Price      float64            `json:"price" bson:"price"`
	Quantity   int                `json:"quantity" bson:"quantity"`
	Image      string             `json:"image,omitempty" bson:"image,omitempty"`
	VendorID   primitive.ObjectID `json:"vendorId" bson:"vendorId"`
	VendorName string             `json:"vendorName" bson:"vendorName"`
}

type Address struct {
	FirstName string `json:"firstName" bson:"firstName" validate:"required"`
	LastName  string `json:"lastName" bson:"lastName" validate:"required"`
	Address   string `json:"address" bson:"address" validate:"required"`
	City      string `json:"city" bson:"city" validate:"required"`
	State     string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode   string `json:"zipCode" bson:"zipCode" validate:"required"`
	Country   string `json:"country" bson:"country" validate:"required"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// VendorOrder is one shop's share of an order.
type VendorOrder struct {
	VendorID       primitive.ObjectID `json:"vendorId" bson:"vendorId"`
	VendorName     string             `json:"vendorName" bson:"vendorName"`
	Items          []OrderItem        `json:"items" bson:"items"`
	Subtotal       float64            `json:"subtotal" bson:"subtotal"`
	Commission     float64            `json:"commission" bson:"commission"`
	VendorAmount   float64            `json:"vendorAmount" bson:"vendorAmount"`
	Status         string             `json:"status" bson:"status"`
	TrackingNumber string             `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	ShippedAt      *time.Time         `json:"shippedAt,omitempty" bson:"shippedAt,omitempty"`
	DeliveredAt    *time.Time         `json:"deliveredAt,omitempty" bson:"deliveredAt,omitempty"`
}

type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber     string             `json:"orderNumber" bson:"orderNumber"`
	CustomerID      primitive.ObjectID `json:"customerId" bson:"customerId"`
	Items           []OrderItem        `json:"items" bson:"items"`
	Subtotal        float64            `json:"subtotal" bson:"subtotal"`
	ShippingCost    float64            `json:"shippingCost" bson:"shippingCost"`
	Tax             float64            `json:"tax" bson:"tax"`
	Total           float64            `json:"total" bson:"total"`
	Status          string             `json:"status" bson:"status"`
	PaymentStatus   string             `json:"paymentStatus" bson:"paymentStatus"`
	PaymentMethod   string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentIntentID string             `json:"paymentIntentId,omitempty" bson:"paymentIntentId,omitempty"`
	ShippingAddress Address            `json:"shippingAddress" bson:"shippingAddress"`
	BillingAddress  Address            `json:"billingAddress" bson:"billingAddress"`
	ShippingMethod  string             `json:"shippingMethod" bson:"shippingMethod"`
	TrackingNumber  string             `json:"trackingNumber,omitempty" bson:"trackingNumber,omitempty"`
	Notes           string             `json:"notes,omitempty" bson:"notes,omitempty"`
	VendorOrders    []VendorOrder      `json:"vendorOrders" bson:"vendorOrders"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// TimelineEvent is one step shown on the order detail page.
type TimelineEvent struct {
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

type CartItem struct {
	ProductID string `json:"productId" validate:"required,objectid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type PaymentIntentRequest struct {
	Items          []CartItem `json:"items" validate:"required,min=1,dive"`
	ShippingMethod string     `json:"shippingMethod,omitempty" validate:"omitempty,oneof=standard express"`
}

type CreateOrderRequest struct {
	PaymentIntentID string     `json:"paymentIntentId" validate:"required"`
	Items           []CartItem `json:"items" validate:"required,min=1,dive"`
	ShippingAddress Address    `json:"shippingAddress"`
	BillingAddress  *Address   `json:"billingAddress,omitempty"`
	ShippingMethod  string     `json:"shippingMethod,omitempty" validate:"omitempty,oneof=standard express"`
	Notes           string     `json:"notes,omitempty" validate:"max=500"`
}

type OrderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
}
