package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/event"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/storage"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/pagination"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/slug"
)

// ProductService manages the catalog, product images and embedded reviews.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	images     storage.Storage
	events     event.Publisher
	log        *slog.Logger
}

// NewProductService creates a product service.
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	images storage.Storage,
	events event.Publisher,
	log *slog.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		images:     images,
		events:     events,
		log:        log,
	}
}

// ImageUpload is raw image content to push to the image host.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// CreateProductInput holds the fields needed to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	Stock       int
	CategoryID  *primitive.ObjectID
	Images      []ImageUpload
}

// Create uploads the product images, verifies the category reference and
// persists the product. Images uploaded before a later failure are destroyed
// again so the image host holds no orphans.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.InvalidReference("category", input.CategoryID.Hex())
			}
			return nil, fmt.Errorf("check category: %w", err)
		}
	}

	images, err := s.uploadImages(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Images:      images,
		CategoryID:  input.CategoryID,
		Reviews:     []domain.Review{},
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.destroyImages(ctx, images)
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.events.ProductCreated(ctx, product)
	s.log.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.Hex()), slog.String("name", product.Name))

	return product, nil
}

// GetByID returns a single product with its reviews.
func (s *ProductService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id.Hex())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// List returns products matching the filter, paginated.
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter, params pagination.Params) ([]domain.Product, int, error) {
	products, total, err := s.products.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// TopRated returns the highest rated products that have at least one review.
func (s *ProductService) TopRated(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}

	products, err := s.products.TopRated(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top rated products: %w", err)
	}
	return products, nil
}

// UpdateProductInput holds the updatable product fields. Nil fields are left
// unchanged. SetCategory distinguishes "leave alone" from "clear".
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	SetCategory bool
	CategoryID  *primitive.ObjectID
	AddImages   []ImageUpload
}

// Update applies a partial update. Renaming regenerates the slug; a category
// change verifies the new reference.
func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, apperrors.InvalidInput("price must be positive")
		}
		product.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, apperrors.InvalidInput("stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.SetCategory {
		if input.CategoryID != nil {
			if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return nil, apperrors.InvalidReference("category", input.CategoryID.Hex())
				}
				return nil, fmt.Errorf("check category: %w", err)
			}
		}
		product.CategoryID = input.CategoryID
	}

	if len(input.AddImages) > 0 {
		images, err := s.uploadImages(ctx, input.AddImages)
		if err != nil {
			return nil, err
		}
		product.Images = append(product.Images, images...)
	}

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id.Hex())
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// RemoveImage deletes one of the product's images. The remote asset is
// destroyed first; the document keeps its entry when the destroy fails, so
// the removal can be retried.
func (s *ProductService) RemoveImage(ctx context.Context, id primitive.ObjectID, publicID string) (*domain.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	index := -1
	for i, img := range product.Images {
		if img.PublicID == publicID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, apperrors.NotFound("image", publicID)
	}

	if err := s.images.Destroy(ctx, publicID); err != nil {
		return nil, fmt.Errorf("destroy image %s: %w", publicID, err)
	}

	product.Images = append(product.Images[:index], product.Images[index+1:]...)
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id.Hex())
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// Delete destroys the product's hosted images first and removes the document
// after. If an image destroy fails the product stays, so retrying the delete
// remains possible without leaking images.
func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, img := range product.Images {
		if err := s.images.Destroy(ctx, img.PublicID); err != nil {
			return fmt.Errorf("destroy image %s: %w", img.PublicID, err)
		}
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("product", id.Hex())
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.events.ProductDeleted(ctx, id.Hex())
	s.log.InfoContext(ctx, "product deleted", slog.String("product_id", id.Hex()))

	return nil
}

// AddReviewInput holds the fields of a new review.
type AddReviewInput struct {
	UserID   primitive.ObjectID
	UserName string
	Rating   float64
	Comment  string
}

// AddReview appends a review to the product and folds it into the rating
// aggregates in one document write. Each user reviews a product at most
// once; the store enforces uniqueness, so two concurrent submissions cannot
// both land.
func (s *ProductService) AddReview(ctx context.Context, productID primitive.ObjectID, input AddReviewInput) (*domain.Product, error) {
	if input.Rating < 0 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 0 and 5")
	}

	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.HasReviewBy(input.UserID) {
		return nil, apperrors.Conflict("you have already reviewed this product")
	}

	review := domain.Review{
		UserID:    input.UserID,
		Name:      input.UserName,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	newRating := domain.AverageRating(append(product.Reviews, review))

	if err := s.products.AddReview(ctx, productID, review, newRating); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			return nil, apperrors.Conflict("you have already reviewed this product")
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.NotFound("product", productID.Hex())
		}
		return nil, fmt.Errorf("add review: %w", err)
	}

	s.events.ReviewCreated(ctx, productID.Hex(), review)

	return s.GetByID(ctx, productID)
}

func (s *ProductService) uploadImages(ctx context.Context, uploads []ImageUpload) ([]domain.Image, error) {
	images := make([]domain.Image, 0, len(uploads))
	for _, upload := range uploads {
		result, err := s.images.Upload(ctx, upload.Filename, bytes.NewReader(upload.Data))
		if err != nil {
			s.destroyImages(ctx, images)
			return nil, fmt.Errorf("upload image %s: %w", upload.Filename, err)
		}
		images = append(images, domain.Image{PublicID: result.PublicID, URL: result.URL})
	}
	return images, nil
}

func (s *ProductService) destroyImages(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if err := s.images.Destroy(ctx, img.PublicID); err != nil {
			s.log.WarnContext(ctx, "image cleanup failed",
				slog.String("public_id", img.PublicID), slog.String("error", err.Error()))
		}
	}
}
