package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
)

const orderCollection = "orders"

// OrderRepository is the MongoDB implementation of repository.OrderRepository.
type OrderRepository struct {
	col *mongo.Collection
}

// NewOrderRepository creates the repository and ensures the user index used
// by per-user order listings.
func NewOrderRepository(ctx context.Context, db *mongo.Database) (*OrderRepository, error) {
	col := db.Collection(orderCollection)

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("create order user index: %w", err)
	}

	return &OrderRepository{col: col}, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var order domain.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders by user: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	return orders, nil
}

func (r *OrderRepository) List(ctx context.Context, params pagination.Params) ([]domain.Order, int, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.PerPage))

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}

	return orders, int(total), nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
