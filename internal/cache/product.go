package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
)

const (
	productKeyPrefix = "product:"
	topRatedKey      = "products:top_rated"
)

// ProductCache is a cache-aside decorator over a ProductRepository. Reads of
// single products and the top-rated list go through Redis; every write
// invalidates the affected keys. Cache failures degrade to the underlying
// repository and are only logged.
type ProductCache struct {
	next repository.ProductRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  *slog.Logger
}

// NewProductCache wraps the given repository with Redis caching.
func NewProductCache(next repository.ProductRepository, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *ProductCache {
	return &ProductCache{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (c *ProductCache) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	key := productKeyPrefix + id.Hex()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal(data, &product); err == nil {
			return &product, nil
		}
		// Corrupt entry, fall through to the repository.
		c.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.log.WarnContext(ctx, "product cache read failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}

	product, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.set(ctx, key, product)
	return product, nil
}

func (c *ProductCache) TopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	data, err := c.rdb.Get(ctx, topRatedKey).Bytes()
	if err == nil {
		var products []domain.Product
		if err := json.Unmarshal(data, &products); err == nil && len(products) >= limit {
			return products[:limit], nil
		}
	}

	products, err := c.next.TopRated(ctx, limit)
	if err != nil {
		return nil, err
	}

	c.set(ctx, topRatedKey, products)
	return products, nil
}

func (c *ProductCache) Create(ctx context.Context, product *domain.Product) error {
	if err := c.next.Create(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx, topRatedKey)
	return nil
}

func (c *ProductCache) Update(ctx context.Context, product *domain.Product) error {
	if err := c.next.Update(ctx, product); err != nil {
		return err
	}
	c.invalidate(ctx, productKeyPrefix+product.ID.Hex(), topRatedKey)
	return nil
}

func (c *ProductCache) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, productKeyPrefix+id.Hex(), topRatedKey)
	return nil
}

func (c *ProductCache) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	if err := c.next.DecrementStock(ctx, id, quantity); err != nil {
		return err
	}
	c.invalidate(ctx, productKeyPrefix+id.Hex())
	return nil
}

func (c *ProductCache) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	if err := c.next.IncrementStock(ctx, id, quantity); err != nil {
		return err
	}
	c.invalidate(ctx, productKeyPrefix+id.Hex())
	return nil
}

func (c *ProductCache) AddReview(ctx context.Context, id primitive.ObjectID, review domain.Review, newRating float64) error {
	if err := c.next.AddReview(ctx, id, review, newRating); err != nil {
		return err
	}
	c.invalidate(ctx, productKeyPrefix+id.Hex(), topRatedKey)
	return nil
}

func (c *ProductCache) ClearCategoryRefs(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	cleared, err := c.next.ClearCategoryRefs(ctx, categoryID)
	if err != nil {
		return cleared, err
	}
	// Affected product IDs are not tracked here; drop the listing key and let
	// per-product entries expire on their TTL.
	c.invalidate(ctx, topRatedKey)
	return cleared, nil
}

// List is never cached; filters make the key space unbounded.
func (c *ProductCache) List(ctx context.Context, filter repository.ProductFilter, params pagination.Params) ([]domain.Product, int, error) {
	return c.next.List(ctx, filter, params)
}

func (c *ProductCache) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "product cache write failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (c *ProductCache) invalidate(ctx context.Context, keys ...string) {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.WarnContext(ctx, "product cache invalidation failed",
			slog.String("error", err.Error()))
	}
}
