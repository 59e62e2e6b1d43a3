package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopcore/internal/domain"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
)

// CategoryRepository defines the interface for category data access and product links
type CategoryRepository interface {
	GetCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	LinkProductCategory(ctx context.Context, productID, categoryID int64) error
	UnlinkProductCategory(ctx context.Context, productID, categoryID int64) error
}

type categoryRepository struct {
	db DBTX
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db DBTX) CategoryRepository {
	return &categoryRepository{db: db}
}

// GetCategoryByName retrieves a category by case-insensitive name match
func (r *categoryRepository) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM categories
		WHERE LOWER(name) = LOWER($1)
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by name: %w", err)
	}

	return category, nil
}

// CreateCategory inserts a new category and sets its generated ID.
// A name that already exists under any casing yields ErrCategoryAlreadyExists
// without failing the surrounding transaction.
func (r *categoryRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, description, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id
	`

	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	category.Name = strings.TrimSpace(category.Name)

	err := r.db.QueryRowContext(
		ctx,
		query,
		category.Name,
		nullString(category.Description),
		category.CreatedAt,
	).Scan(&category.ID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// LinkProductCategory associates a product with a category; an existing link is left as is
func (r *categoryRepository) LinkProductCategory(ctx context.Context, productID, categoryID int64) error {
	query := `
		INSERT INTO product_categories (product_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT (product_id, category_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, productID, categoryID); err != nil {
		return fmt.Errorf("failed to link product %d to category %d: %w", productID, categoryID, err)
	}

	return nil
}

// UnlinkProductCategory removes the association between a product and a category
func (r *categoryRepository) UnlinkProductCategory(ctx context.Context, productID, categoryID int64) error {
	query := `DELETE FROM product_categories WHERE product_id = $1 AND category_id = $2`

	if _, err := r.db.ExecContext(ctx, query, productID, categoryID); err != nil {
		return fmt.Errorf("failed to unlink product %d from category %d: %w", productID, categoryID, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	var description sql.NullString

	if err := row.Scan(
		&category.ID,
		&category.Name,
		&description,
		&category.CreatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		category.Description = &description.String
	}

	return category, nil
}
