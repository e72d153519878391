package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/event"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
)

// OrderService handles order placement, fulfillment status and the stock
// adjustments that go with them.
type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	events   event.Publisher
	log      *slog.Logger
	now      func() time.Time
}

// NewOrderService creates an order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	events event.Publisher,
	log *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// OrderItemInput is one requested line item.
type OrderItemInput struct {
	ProductID primitive.ObjectID
	Quantity  int
}

// PlaceOrderInput holds everything needed to place an order.
type PlaceOrderInput struct {
	UserID        primitive.ObjectID
	Items         []OrderItemInput
	ShippingInfo  domain.ShippingInfo
	PaymentMethod domain.PaymentMethod
	PaymentInfo   domain.PaymentInfo
	TaxPrice      float64
	ShippingPrice float64
}

// PlaceOrder validates every line item up front, persists the order and then
// decrements stock per item with guarded writes. If any decrement loses to a
// concurrent order, the stock already taken is returned and the order is
// deleted, so no half-fulfilled order survives.
//
// Items are processed in request order and the first failure wins.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	if !input.PaymentMethod.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown payment method %q", input.PaymentMethod))
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	var itemsPrice float64

	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput(
				fmt.Sprintf("quantity for product %s must be positive", item.ProductID.Hex()))
		}

		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.InvalidReference("product", item.ProductID.Hex())
			}
			return nil, fmt.Errorf("load product %s: %w", item.ProductID.Hex(), err)
		}

		if product.Stock < item.Quantity {
			return nil, apperrors.Conflict(
				fmt.Sprintf("insufficient stock for product %s: have %d, want %d",
					product.ID.Hex(), product.Stock, item.Quantity))
		}

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0].URL
		}

		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Image:     image,
		})
		itemsPrice += product.Price * float64(item.Quantity)
	}

	now := s.now().UTC()
	order := &domain.Order{
		UserID:        input.UserID,
		ShippingInfo:  input.ShippingInfo,
		Items:         items,
		PaymentMethod: input.PaymentMethod,
		PaymentInfo:   input.PaymentInfo,
		ItemsPrice:    itemsPrice,
		TaxPrice:      input.TaxPrice,
		ShippingPrice: input.ShippingPrice,
		TotalPrice:    itemsPrice + input.TaxPrice + input.ShippingPrice,
		Status:        domain.OrderStatusProcessing,
		PaidAt:        &now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.adjustStock(ctx, order); err != nil {
		return nil, err
	}

	s.events.OrderCreated(ctx, order)
	s.log.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID.Hex()),
		slog.String("user_id", order.UserID.Hex()),
		slog.Float64("total_price", order.TotalPrice),
	)

	return order, nil
}

// adjustStock decrements stock for every line item. The guarded decrement can
// still lose to a concurrent order between validation and here; when that
// happens the previous decrements are compensated and the order is removed.
func (s *OrderService) adjustStock(ctx context.Context, order *domain.Order) error {
	for i, item := range order.Items {
		err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err == nil {
			continue
		}

		s.rollback(ctx, order, i)

		switch {
		case errors.Is(err, apperrors.ErrConflict):
			return apperrors.Conflict(
				fmt.Sprintf("insufficient stock for product %s", item.ProductID.Hex()))
		case errors.Is(err, apperrors.ErrNotFound):
			return apperrors.InvalidReference("product", item.ProductID.Hex())
		}
		return fmt.Errorf("decrement stock for product %s: %w", item.ProductID.Hex(), err)
	}
	return nil
}

// rollback returns stock taken by items before the failed index and deletes
// the order. Compensation failures are logged; the increments are safe to
// replay by an operator.
func (s *OrderService) rollback(ctx context.Context, order *domain.Order, failedIndex int) {
	for i := 0; i < failedIndex; i++ {
		item := order.Items[i]
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.log.ErrorContext(ctx, "stock compensation failed",
				slog.String("order_id", order.ID.Hex()),
				slog.String("product_id", item.ProductID.Hex()),
				slog.Int("quantity", item.Quantity),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.orders.Delete(ctx, order.ID); err != nil {
		s.log.ErrorContext(ctx, "order rollback delete failed",
			slog.String("order_id", order.ID.Hex()),
			slog.String("error", err.Error()),
		)
	}
}

// GetByID returns an order. Customers may only read their own orders; admins
// may read any.
func (s *OrderService) GetByID(ctx context.Context, id, requesterID primitive.ObjectID, isAdmin bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", id.Hex())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !isAdmin && order.UserID != requesterID {
		return nil, apperrors.Forbidden("you may only view your own orders")
	}

	return order, nil
}

// ListMine returns the requesting user's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// ListAll returns every order, paginated. Admin only; enforced at the router.
func (s *OrderService) ListAll(ctx context.Context, params pagination.Params) ([]domain.Order, int, error) {
	orders, total, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list all orders: %w", err)
	}
	return orders, total, nil
}

// AdvanceStatus moves an order to the next fulfillment state. The caller does
// not pick a target; processing ships and shipped delivers, with the delivered
// timestamp stamped exactly once. Advancing a delivered order is a conflict.
// Admin only; enforced at the router.
func (s *OrderService) AdvanceStatus(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", id.Hex())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	from := order.Status
	if err := order.Advance(s.now().UTC()); err != nil {
		return nil, apperrors.Conflict(err.Error())
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.events.OrderStatusChanged(ctx, order, from)
	s.log.InfoContext(ctx, "order status advanced",
		slog.String("order_id", id.Hex()),
		slog.String("from", string(from)),
		slog.String("to", string(order.Status)),
	)

	return order, nil
}

// Delete removes an order record. Stock is not returned; deletion is an
// administrative cleanup, not a cancellation. Admin only; enforced at the
// router.
func (s *OrderService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("order", id.Hex())
		}
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
