package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
)

const productCollection = "products"

// ProductRepository is the MongoDB implementation of
// repository.ProductRepository. Stock adjustments and review writes use
// guarded updates so concurrent requests cannot oversell or double-review.
type ProductRepository struct {
	col *mongo.Collection
}

// NewProductRepository creates the repository and ensures supporting indexes.
func NewProductRepository(ctx context.Context, db *mongo.Database) (*ProductRepository, error) {
	col := db.Collection(productCollection)

	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "categoryId", Value: 1}}},
		{Keys: bson.D{{Key: "rating", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("create product indexes: %w", err)
	}

	return &ProductRepository{col: col}, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Reviews == nil {
		product.Reviews = []domain.Review{}
	}
	if product.Images == nil {
		product.Images = []domain.Image{}
	}

	res, err := r.col.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	var product domain.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter, params pagination.Params) ([]domain.Product, int, error) {
	query := bson.M{}

	if filter.Name != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Name), "$options": "i"}
	}
	if filter.CategoryID != nil {
		query["categoryId"] = *filter.CategoryID
	}

	price := bson.M{}
	if filter.MinPrice > 0 {
		price["$gte"] = filter.MinPrice
	}
	if filter.MaxPrice > 0 {
		price["$lte"] = filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.PerPage))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	return products, int(total), nil
}

func (r *ProductRepository) TopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "numReviews", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, bson.M{"numReviews": bson.M{"$gt": 0}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list top rated products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DecrementStock only matches when the document still has enough stock, so a
// concurrent order for the last units loses cleanly instead of driving the
// count negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	filter := bson.M{
		"_id":   id,
		"stock": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a vanished product from an insufficient one.
		count, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("check product existence: %w", err)
		}
		if count == 0 {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("insufficient stock for product %s: %w", id.Hex(), apperrors.ErrConflict)
	}
	return nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	update := bson.M{
		"$inc": bson.M{"stock": quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AddReview pushes the review and sets the recomputed aggregates in one
// document write. The filter excludes products already reviewed by the same
// user, so the uniqueness check and the append cannot race.
func (r *ProductRepository) AddReview(ctx context.Context, id primitive.ObjectID, review domain.Review, newRating float64) error {
	filter := bson.M{
		"_id": id,
		"reviews": bson.M{
			"$not": bson.M{"$elemMatch": bson.M{"userId": review.UserID}},
		},
	}
	update := bson.M{
		"$push": bson.M{"reviews": review},
		"$inc":  bson.M{"numReviews": 1},
		"$set": bson.M{
			"rating":    newRating,
			"updatedAt": time.Now().UTC(),
		},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	if res.MatchedCount == 0 {
		count, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("check product existence: %w", err)
		}
		if count == 0 {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("user already reviewed product %s: %w", id.Hex(), apperrors.ErrConflict)
	}
	return nil
}

// ClearCategoryRefs detaches products from a deleted category one document at
// a time, so a failure partway leaves earlier products already detached.
func (r *ProductRepository) ClearCategoryRefs(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	cursor, err := r.col.Find(ctx, bson.M{"categoryId": categoryID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, fmt.Errorf("find products in category: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &ids); err != nil {
		return 0, fmt.Errorf("decode product ids: %w", err)
	}

	var cleared int64
	for _, doc := range ids {
		update := bson.M{
			"$unset": bson.M{"categoryId": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
		res, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
		if err != nil {
			return cleared, fmt.Errorf("clear category ref on product %s: %w", doc.ID.Hex(), err)
		}
		cleared += res.ModifiedCount
	}

	return cleared, nil
}
