package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus tracks an order through fulfillment. Transitions only move
// forward: processing, then shipped, then delivered.
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// Valid reports whether the status is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// AllowedTransitions maps each status to the statuses it may move to. Every
// status has at most one successor; fulfillment cannot skip a stage.
var AllowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range AllowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Next returns the status that follows this one. ok is false when the status
// is terminal or unknown.
func (s OrderStatus) Next() (next OrderStatus, ok bool) {
	allowed := AllowedTransitions[s]
	if len(allowed) == 0 {
		return "", false
	}
	return allowed[0], true
}

// ShippingInfo is the delivery address captured at order time.
type ShippingInfo struct {
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Country string `bson:"country" json:"country"`
	PinCode string `bson:"pinCode" json:"pinCode"`
	PhoneNo string `bson:"phoneNo" json:"phoneNo"`
}

// OrderItem is a line item. Name, Price and Image are snapshots taken at
// order time so later product edits do not rewrite order history.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// Valid reports whether the payment method is one of the known methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodOnline
}

// PaymentInfo records the payment reference attached to an order.
type PaymentInfo struct {
	ID     string `bson:"id" json:"id"`
	Status string `bson:"status" json:"status"`
}

// Order is a placed order.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	ShippingInfo  ShippingInfo       `bson:"shippingInfo" json:"shippingInfo"`
	Items         []OrderItem        `bson:"items" json:"items"`
	PaymentMethod PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	PaymentInfo   PaymentInfo        `bson:"paymentInfo" json:"paymentInfo"`
	ItemsPrice    float64            `bson:"itemsPrice" json:"itemsPrice"`
	TaxPrice      float64            `bson:"taxPrice" json:"taxPrice"`
	ShippingPrice float64            `bson:"shippingPrice" json:"shippingPrice"`
	TotalPrice    float64            `bson:"totalPrice" json:"totalPrice"`
	Status        OrderStatus        `bson:"orderStatus" json:"orderStatus"`
	PaidAt        *time.Time         `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	DeliveredAt   *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Advance moves the order to the next fulfillment status, stamping
// DeliveredAt when the order reaches delivered. The next status is implied by
// the current one; a delivered order cannot advance further.
func (o *Order) Advance(now time.Time) error {
	next, ok := o.Status.Next()
	if !ok {
		return fmt.Errorf("order is already %s", o.Status)
	}

	o.Status = next
	if next == OrderStatusDelivered {
		o.DeliveredAt = &now
	}
	return nil
}
