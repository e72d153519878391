package event

import (
	"context"
	"log/slog"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/kafka"
)

// Event types published by this service.
const (
	TypeUserRegistered     = "user.registered"
	TypeProductCreated     = "product.created"
	TypeProductDeleted     = "product.deleted"
	TypeReviewCreated      = "review.created"
	TypeCategoryDeleted    = "category.deleted"
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// Publisher emits domain events. Publishing is best effort: implementations
// log failures instead of surfacing them, so a broker outage never fails a
// customer request.
type Publisher interface {
	UserRegistered(ctx context.Context, user *domain.User)
	ProductCreated(ctx context.Context, product *domain.Product)
	ProductDeleted(ctx context.Context, productID string)
	ReviewCreated(ctx context.Context, productID string, review domain.Review)
	CategoryDeleted(ctx context.Context, categoryID string, productsCleared int64)
	OrderCreated(ctx context.Context, order *domain.Order)
	OrderStatusChanged(ctx context.Context, order *domain.Order, from domain.OrderStatus)
}

// KafkaPublisher publishes events through a Kafka producer.
type KafkaPublisher struct {
	producer *kafka.Producer
	log      *slog.Logger
}

// NewKafkaPublisher creates a publisher over the given producer.
func NewKafkaPublisher(producer *kafka.Producer, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, log: log}
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, key string, payload any) {
	if err := p.producer.Publish(ctx, eventType, key, payload); err != nil {
		p.log.WarnContext(ctx, "event publish failed",
			slog.String("event_type", eventType),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (p *KafkaPublisher) UserRegistered(ctx context.Context, user *domain.User) {
	p.publish(ctx, TypeUserRegistered, user.ID.Hex(), map[string]any{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"role":    user.Role,
	})
}

func (p *KafkaPublisher) ProductCreated(ctx context.Context, product *domain.Product) {
	p.publish(ctx, TypeProductCreated, product.ID.Hex(), map[string]any{
		"product_id": product.ID.Hex(),
		"name":       product.Name,
		"price":      product.Price,
		"stock":      product.Stock,
	})
}

func (p *KafkaPublisher) ProductDeleted(ctx context.Context, productID string) {
	p.publish(ctx, TypeProductDeleted, productID, map[string]any{
		"product_id": productID,
	})
}

func (p *KafkaPublisher) ReviewCreated(ctx context.Context, productID string, review domain.Review) {
	p.publish(ctx, TypeReviewCreated, productID, map[string]any{
		"product_id": productID,
		"user_id":    review.UserID.Hex(),
		"rating":     review.Rating,
	})
}

func (p *KafkaPublisher) CategoryDeleted(ctx context.Context, categoryID string, productsCleared int64) {
	p.publish(ctx, TypeCategoryDeleted, categoryID, map[string]any{
		"category_id":      categoryID,
		"products_cleared": productsCleared,
	})
}

func (p *KafkaPublisher) OrderCreated(ctx context.Context, order *domain.Order) {
	items := make([]map[string]any, len(order.Items))
	for i, item := range order.Items {
		items[i] = map[string]any{
			"product_id": item.ProductID.Hex(),
			"quantity":   item.Quantity,
		}
	}

	p.publish(ctx, TypeOrderCreated, order.ID.Hex(), map[string]any{
		"order_id":    order.ID.Hex(),
		"user_id":     order.UserID.Hex(),
		"total_price": order.TotalPrice,
		"items":       items,
	})
}

func (p *KafkaPublisher) OrderStatusChanged(ctx context.Context, order *domain.Order, from domain.OrderStatus) {
	p.publish(ctx, TypeOrderStatusChanged, order.ID.Hex(), map[string]any{
		"order_id": order.ID.Hex(),
		"from":     from,
		"to":       order.Status,
	})
}

// NoopPublisher drops all events. Used when Kafka is disabled and in tests.
type NoopPublisher struct{}

func (NoopPublisher) UserRegistered(context.Context, *domain.User)    {}
func (NoopPublisher) ProductCreated(context.Context, *domain.Product) {}
func (NoopPublisher) ProductDeleted(context.Context, string)          {}

func (NoopPublisher) ReviewCreated(context.Context, string, domain.Review) {}
func (NoopPublisher) CategoryDeleted(context.Context, string, int64)       {}

func (NoopPublisher) OrderCreated(context.Context, *domain.Order) {}

func (NoopPublisher) OrderStatusChanged(context.Context, *domain.Order, domain.OrderStatus) {}
