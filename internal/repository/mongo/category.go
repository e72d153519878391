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
)

const categoryCollection = "categories"

// CategoryRepository is the MongoDB implementation of
// repository.CategoryRepository.
type CategoryRepository struct {
	col *mongo.Collection
}

// NewCategoryRepository creates the repository and ensures the unique name
// index.
func NewCategoryRepository(ctx context.Context, db *mongo.Database) (*CategoryRepository, error) {
	col := db.Collection(categoryCollection)

	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create category name index: %w", err)
	}

	return &CategoryRepository{col: col}, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("category name already exists: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	category.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	var category domain.Category
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []domain.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	category.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"name":      category.Name,
		"slug":      category.Slug,
		"updatedAt": category.UpdatedAt,
	}}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": category.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("category name already exists: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
