package service

import (
	"context"
	"errors"
	"fmt"

	"shopcore/internal/domain"
	"shopcore/internal/repository"

	"go.uber.org/zap"
)

// CategoryService keeps category rows and product links in step with lists of category names.
// The store is passed on every call so the caller decides which unit of work it runs in.
type CategoryService interface {
	// EnsureExist creates every category in names that is not already stored
	EnsureExist(ctx context.Context, store repository.CatalogStore, names []string) error
	// Sync links product to exactly the desired categories, touching only the difference
	Sync(ctx context.Context, store repository.CatalogStore, product *domain.Product, desired []string) error
}

type categoryService struct {
	logger *zap.Logger
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(logger *zap.Logger) CategoryService {
	return &categoryService{logger: logger}
}

// EnsureExist creates missing categories; names are compared case-insensitively
func (s *categoryService) EnsureExist(ctx context.Context, store repository.CatalogStore, names []string) error {
	for _, name := range domain.NormalizeNames(names) {
		_, err := store.GetCategoryByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrCategoryNotFound) {
			return fmt.Errorf("failed to check category %q: %w", name, err)
		}

		category := &domain.Category{Name: name}
		if err := store.CreateCategory(ctx, category); err != nil {
			// Lost a race with a concurrent creator
			if errors.Is(err, repository.ErrCategoryAlreadyExists) {
				s.logger.Debug("Category created concurrently", zap.String("category_name", name))
				continue
			}
			return fmt.Errorf("failed to create category %q: %w", name, err)
		}

		s.logger.Info("Created new category",
			zap.Int64("category_id", category.ID),
			zap.String("category_name", name),
		)
	}

	return nil
}

// Sync computes the add/remove diff between the product's links and desired, then applies it.
// Every desired category must already exist.
func (s *categoryService) Sync(ctx context.Context, store repository.CatalogStore, product *domain.Product, desired []string) error {
	desiredNames := domain.NormalizeNames(desired)

	wanted := make(map[string]struct{}, len(desiredNames))
	for _, name := range desiredNames {
		wanted[domain.CanonicalName(name)] = struct{}{}
	}

	current := make(map[string]struct{}, len(product.Categories))
	kept := make([]domain.Category, 0, len(product.Categories))
	for _, category := range product.Categories {
		key := domain.CanonicalName(category.Name)
		current[key] = struct{}{}

		if _, ok := wanted[key]; ok {
			kept = append(kept, category)
			continue
		}

		if err := store.UnlinkProductCategory(ctx, product.ID, category.ID); err != nil {
			return err
		}
		s.logger.Debug("Unlinked category from product",
			zap.Int64("product_id", product.ID),
			zap.String("category_name", category.Name),
		)
	}

	for _, name := range desiredNames {
		if _, ok := current[domain.CanonicalName(name)]; ok {
			continue
		}

		category, err := store.GetCategoryByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to resolve category %q: %w", name, err)
		}

		if err := store.LinkProductCategory(ctx, product.ID, category.ID); err != nil {
			return err
		}
		kept = append(kept, *category)

		s.logger.Debug("Linked category to product",
			zap.Int64("product_id", product.ID),
			zap.String("category_name", category.Name),
		)
	}

	product.Categories = kept
	s.logger.Debug("Product categories synchronized",
		zap.Int64("product_id", product.ID),
		zap.Strings("categories", product.CategoryNames()),
	)
	return nil
}
