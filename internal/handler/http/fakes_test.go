package http

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
)

// In-memory repositories backing the router tests. They mirror the guarded
// update semantics of the Mongo implementations.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, params pagination.Params) ([]domain.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return paginate(users, params), len(users), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[primitive.ObjectID]domain.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &product, nil
}

func (r *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter, params pagination.Params) ([]domain.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var products []domain.Product
	for _, p := range r.products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.MinPrice > 0 && p.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return paginate(products, params), len(products), nil
}

func (r *fakeProductRepo) TopRated(_ context.Context, limit int) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var products []domain.Product
	for _, p := range r.products {
		if p.NumReviews > 0 {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	if len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if product.Stock < quantity {
		return fmt.Errorf("insufficient stock: %w", apperrors.ErrConflict)
	}
	product.Stock -= quantity
	r.products[id] = product
	return nil
}

func (r *fakeProductRepo) IncrementStock(_ context.Context, id primitive.ObjectID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	product.Stock += quantity
	r.products[id] = product
	return nil
}

func (r *fakeProductRepo) AddReview(_ context.Context, id primitive.ObjectID, review domain.Review, newRating float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	for _, existing := range product.Reviews {
		if existing.UserID == review.UserID {
			return fmt.Errorf("already reviewed: %w", apperrors.ErrConflict)
		}
	}
	product.Reviews = append(product.Reviews, review)
	product.NumReviews++
	product.Rating = newRating
	r.products[id] = product
	return nil
}

func (r *fakeProductRepo) ClearCategoryRefs(_ context.Context, categoryID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cleared int64
	for id, p := range r.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
			r.products[id] = p
			cleared++
		}
	}
	return cleared, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[primitive.ObjectID]domain.Category)}
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Name == category.Name {
			return apperrors.ErrConflict
		}
	}
	category.ID = primitive.NewObjectID()
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &category, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	categories := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[primitive.ObjectID]domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &order, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (r *fakeOrderRepo) List(_ context.Context, params pagination.Params) ([]domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o)
	}
	return paginate(orders, params), len(orders), nil
}

func (r *fakeOrderRepo) Update(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func paginate[T any](items []T, params pagination.Params) []T {
	if params.Offset >= len(items) {
		return nil
	}
	end := params.Offset + params.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[params.Offset:end]
}
