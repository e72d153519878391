package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/domain"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/event"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/internal/repository"
	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/slug"
)

// CategoryService manages product categories.
type CategoryService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	events     event.Publisher
	log        *slog.Logger
}

// NewCategoryService creates a category service.
func NewCategoryService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	events event.Publisher,
	log *slog.Logger,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		products:   products,
		events:     events,
		log:        log,
	}
}

// Create adds a category. Duplicate names are rejected.
func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{
		Name: name,
		Slug: slug.Generate(name),
	}

	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict("a category with this name already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

// GetByID returns a single category.
func (s *CategoryService) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", id.Hex())
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// List returns every category sorted by name.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

// Rename changes a category's name and slug. Products keep their reference;
// a rename never touches product documents.
func (s *CategoryService) Rename(ctx context.Context, id primitive.ObjectID, name string) (*domain.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Slug = slug.Generate(name)

	if err := s.categories.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			return nil, apperrors.Conflict("a category with this name already exists")
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.NotFound("category", id.Hex())
		}
		return nil, fmt.Errorf("rename category: %w", err)
	}

	return category, nil
}

// Delete detaches every product that references the category and then removes
// the category record. Detachment runs product by product before the record
// goes away, so a failure mid-fan-out leaves the category in place and the
// delete can be retried; products are detached, never deleted.
func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	cleared, err := s.products.ClearCategoryRefs(ctx, id)
	if err != nil {
		s.log.ErrorContext(ctx, "category ref cleanup incomplete",
			slog.String("category_id", id.Hex()),
			slog.Int64("cleared", cleared),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("clear category refs: %w", err)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("category", id.Hex())
		}
		return fmt.Errorf("delete category: %w", err)
	}

	s.events.CategoryDeleted(ctx, id.Hex(), cleared)
	s.log.InfoContext(ctx, "category deleted",
		slog.String("category_id", id.Hex()), slog.Int64("products_cleared", cleared))

	return nil
}
