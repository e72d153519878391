package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, params pagination.Params) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	// Name is matched case-insensitively as a substring.
	Name string
	// CategoryID restricts to one category when non-nil.
	CategoryID *primitive.ObjectID
	// MinPrice and MaxPrice bound the price range when positive.
	MinPrice float64
	MaxPrice float64
}

// ProductRepository persists catalog products, their embedded reviews and the
// denormalized rating aggregates.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter, params pagination.Params) ([]domain.Product, int, error)
	TopRated(ctx context.Context, limit int) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// DecrementStock atomically subtracts quantity from the product's stock.
	// The write only matches when stock >= quantity; an insufficient or
	// missing product returns ErrConflict or ErrNotFound respectively.
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error

	// IncrementStock atomically adds quantity back to the product's stock.
	IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error

	// AddReview appends a review and updates the rating aggregates in a
	// single document write. The write only matches when the product carries
	// no review by the same user; a duplicate returns ErrConflict.
	AddReview(ctx context.Context, id primitive.ObjectID, review domain.Review, newRating float64) error

	// ClearCategoryRefs removes the category reference from every product in
	// the given category, one product at a time, and returns how many
	// products were updated.
	ClearCategoryRefs(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

// CategoryRepository persists product categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Order, error)
	List(ctx context.Context, params pagination.Params) ([]domain.Order, int, error)
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
