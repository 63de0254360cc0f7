package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dat564/e-commerce-sub001/apperrors"
)

// OrderStatus moves forward one step at a time; cancelled is reachable from
// any non-terminal state. delivered and cancelled are terminal.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// nextStatus maps each status to its single legal forward step.
var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusConfirmed,
	OrderStatusConfirmed:  OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether moving from s to target is legal: exactly
// one step forward, or into cancelled from any non-terminal state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCancelled {
		return !s.Terminal()
	}
	return nextStatus[s] == target
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo: pending -> paid, pending -> failed, paid -> refunded.
func (p PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch p {
	case PaymentStatusPending:
		return target == PaymentStatusPaid || target == PaymentStatusFailed
	case PaymentStatusPaid:
		return target == PaymentStatusRefunded
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodMomo         PaymentMethod = "momo"
	PaymentMethodZaloPay      PaymentMethod = "zalopay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodBankTransfer, PaymentMethodCard,
		PaymentMethodMomo, PaymentMethodZaloPay:
		return true
	}
	return false
}

// OrderItem is a snapshot taken at checkout; price is never re-read from the
// live product after order creation.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Name      string             `json:"name" bson:"name"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Price     int64              `json:"price" bson:"price"`
}

type ShippingAddress struct {
	FullName string `json:"full_name" bson:"full_name"`
	Phone    string `json:"phone" bson:"phone"`
	Street   string `json:"street" bson:"street"`
	City     string `json:"city" bson:"city"`
}

type Order struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OrderNumber string             `json:"order_number" bson:"order_number"`
	UserID      primitive.ObjectID `json:"user_id" bson:"user_id"`
	Items       []OrderItem        `json:"items" bson:"items"`
	Address     ShippingAddress    `json:"address" bson:"address"`

	PaymentMethod PaymentMethod `json:"payment_method" bson:"payment_method"`
	Status        OrderStatus   `json:"status" bson:"status"`
	PaymentStatus PaymentStatus `json:"payment_status" bson:"payment_status"`

	Subtotal    int64 `json:"subtotal" bson:"subtotal"`
	ShippingFee int64 `json:"shipping_fee" bson:"shipping_fee"`
	Discount    int64 `json:"discount" bson:"discount"`
	Total       int64 `json:"total" bson:"total"`

	TrackingNumber string     `json:"tracking_number,omitempty" bson:"tracking_number,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelReason   string     `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ValidateTotals checks the monetary invariant before any persistence write.
// Totals are fixed at creation time; a violating write must be rejected.
func (o *Order) ValidateTotals() error {
	if o.Subtotal < 0 || o.ShippingFee < 0 || o.Discount < 0 || o.Total < 0 {
		return apperrors.ErrInvalidTotal
	}
	if o.Total != o.Subtotal-o.Discount+o.ShippingFee {
		return apperrors.ErrInvalidTotal
	}
	return nil
}

// ValidateItems checks line-item constraints.
func (o *Order) ValidateItems() error {
	if len(o.Items) == 0 {
		return apperrors.ErrEmptyOrder
	}
	for _, it := range o.Items {
		if it.Quantity < 1 || it.Price < 0 {
			return apperrors.ErrInvalidItem
		}
	}
	return nil
}
