package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/event"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
)

func newOrderService(orders *mockOrderRepo, products *mockProductRepo) *OrderService {
	return NewOrderService(orders, products, event.NoopPublisher{}, testLogger())
}

func placeInput(userID primitive.ObjectID, items ...OrderItemInput) PlaceOrderInput {
	return PlaceOrderInput{
		UserID: userID,
		Items:  items,
		ShippingInfo: domain.ShippingInfo{
			Address: "12 MG Road",
			City:    "Pune",
			State:   "MH",
			Country: "India",
			PinCode: "411001",
			PhoneNo: "9876543210",
		},
		PaymentMethod: domain.PaymentMethodOnline,
		PaymentInfo:   domain.PaymentInfo{ID: "pay_123", Status: "succeeded"},
		TaxPrice:      10,
		ShippingPrice: 5,
	}
}

func TestPlaceOrderDecrementsStock(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, products)

	productID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	products.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Sneakers", Price: 100, Stock: 5}, nil)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).ID = primitive.NewObjectID()
		}).
		Return(nil)
	products.On("DecrementStock", mock.Anything, productID, 3).Return(nil)

	order, err := svc.PlaceOrder(context.Background(), placeInput(userID, OrderItemInput{ProductID: productID, Quantity: 3}))

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)
	assert.Equal(t, domain.PaymentMethodOnline, order.PaymentMethod)
	assert.Equal(t, 300.0, order.ItemsPrice)
	assert.Equal(t, 315.0, order.TotalPrice)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Sneakers", order.Items[0].Name)
	products.AssertCalled(t, "DecrementStock", mock.Anything, productID, 3)
}

func TestPlaceOrderUnknownPaymentMethod(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := newOrderService(orders, new(mockProductRepo))

	input := placeInput(primitive.NewObjectID(),
		OrderItemInput{ProductID: primitive.NewObjectID(), Quantity: 1})
	input.PaymentMethod = domain.PaymentMethod("CHEQUE")

	_, err := svc.PlaceOrder(context.Background(), input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrderEmptyItems(t *testing.T) {
	svc := newOrderService(new(mockOrderRepo), new(mockProductRepo))

	_, err := svc.PlaceOrder(context.Background(), placeInput(primitive.NewObjectID()))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestPlaceOrderNonPositiveQuantity(t *testing.T) {
	svc := newOrderService(new(mockOrderRepo), new(mockProductRepo))

	_, err := svc.PlaceOrder(context.Background(),
		placeInput(primitive.NewObjectID(), OrderItemInput{ProductID: primitive.NewObjectID(), Quantity: 0}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, products)

	productID := primitive.NewObjectID()
	products.On("GetByID", mock.Anything, productID).Return(nil, apperrors.ErrNotFound)

	_, err := svc.PlaceOrder(context.Background(),
		placeInput(primitive.NewObjectID(), OrderItemInput{ProductID: productID, Quantity: 1}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidReference))
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, products)

	productID := primitive.NewObjectID()
	products.On("GetByID", mock.Anything, productID).
		Return(&domain.Product{ID: productID, Name: "Sneakers", Price: 100, Stock: 2}, nil)

	_, err := svc.PlaceOrder(context.Background(),
		placeInput(primitive.NewObjectID(), OrderItemInput{ProductID: productID, Quantity: 3}))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrderFirstFailureWins(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, products)

	missing := primitive.NewObjectID()
	outOfStock := primitive.NewObjectID()

	products.On("GetByID", mock.Anything, missing).Return(nil, apperrors.ErrNotFound)

	_, err := svc.PlaceOrder(context.Background(), placeInput(primitive.NewObjectID(),
		OrderItemInput{ProductID: missing, Quantity: 1},
		OrderItemInput{ProductID: outOfStock, Quantity: 99},
	))

	// The first item's missing-product failure is reported even though the
	// second item would also fail.
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidReference))
	products.AssertNotCalled(t, "GetByID", mock.Anything, outOfStock)
}

func TestPlaceOrderRollsBackOnDecrementConflict(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, products)

	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	products.On("GetByID", mock.Anything, first).
		Return(&domain.Product{ID: first, Name: "Mouse", Price: 30, Stock: 10}, nil)
	products.On("GetByID", mock.Anything, second).
		Return(&domain.Product{ID: second, Name: "Keyboard", Price: 70, Stock: 10}, nil)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Order).ID = orderID
		}).
		Return(nil)

	// A concurrent order drains the second product between validation and
	// the decrement.
	products.On("DecrementStock", mock.Anything, first, 2).Return(nil)
	products.On("DecrementStock", mock.Anything, second, 1).Return(apperrors.ErrConflict)
	products.On("IncrementStock", mock.Anything, first, 2).Return(nil)
	orders.On("Delete", mock.Anything, orderID).Return(nil)

	_, err := svc.PlaceOrder(context.Background(), placeInput(primitive.NewObjectID(),
		OrderItemInput{ProductID: first, Quantity: 2},
		OrderItemInput{ProductID: second, Quantity: 1},
	))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	products.AssertCalled(t, "IncrementStock", mock.Anything, first, 2)
	orders.AssertCalled(t, "Delete", mock.Anything, orderID)
}

func TestAdvanceStatusShipsProcessingOrder(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := newOrderService(orders, new(mockProductRepo))

	orderID := primitive.NewObjectID()
	orders.On("GetByID", mock.Anything, orderID).
		Return(&domain.Order{ID: orderID, Status: domain.OrderStatusProcessing}, nil)
	orders.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.AdvanceStatus(context.Background(), orderID)

	require.NoError(t, err)
	// A processing order moves to shipped, never straight to delivered.
	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Nil(t, order.DeliveredAt)
}

func TestAdvanceStatusStampsDeliveredAt(t *testing.T) {
	orders := new(mockOrderRepo)
	products := new(mockProductRepo)
	svc := newOrderService(orders, products)

	fixed := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	orderID := primitive.NewObjectID()
	orders.On("GetByID", mock.Anything, orderID).
		Return(&domain.Order{ID: orderID, Status: domain.OrderStatusShipped}, nil)
	orders.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	order, err := svc.AdvanceStatus(context.Background(), orderID)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)
	assert.Equal(t, fixed, *order.DeliveredAt)
}

func TestAdvanceStatusDeliveredIsTerminal(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := newOrderService(orders, new(mockProductRepo))

	orderID := primitive.NewObjectID()
	orders.On("GetByID", mock.Anything, orderID).
		Return(&domain.Order{ID: orderID, Status: domain.OrderStatusDelivered}, nil)

	_, err := svc.AdvanceStatus(context.Background(), orderID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAdvanceStatusUnknownOrder(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := newOrderService(orders, new(mockProductRepo))

	orderID := primitive.NewObjectID()
	orders.On("GetByID", mock.Anything, orderID).Return(nil, apperrors.ErrNotFound)

	_, err := svc.AdvanceStatus(context.Background(), orderID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGetByIDOwnershipCheck(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := newOrderService(orders, new(mockProductRepo))

	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	orders.On("GetByID", mock.Anything, orderID).
		Return(&domain.Order{ID: orderID, UserID: owner}, nil)

	_, err := svc.GetByID(context.Background(), orderID, stranger, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	order, err := svc.GetByID(context.Background(), orderID, owner, false)
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)

	order, err = svc.GetByID(context.Background(), orderID, stranger, true)
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
}
