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
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this name already exists")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	GetProductWithCategories(ctx context.Context, id int64) (*domain.Product, error)
	GetProductByName(ctx context.Context, name string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// GetProductWithCategories retrieves a product and its linked categories by ID
func (r *productRepository) GetProductWithCategories(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, quantity, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product, err := r.scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := r.loadCategories(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// GetProductByName retrieves a product by case-insensitive name match, with its categories
func (r *productRepository) GetProductByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, quantity, created_at, updated_at
		FROM products
		WHERE LOWER(name) = LOWER($1)
	`

	product, err := r.scanProduct(r.db.QueryRowContext(ctx, query, strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}

	if err := r.loadCategories(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// CreateProduct inserts a new product and sets its generated ID.
// Linked categories are not written here; they are attached separately.
func (r *productRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
		RETURNING id
	`

	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}
	product.Name = strings.TrimSpace(product.Name)

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		nullString(product.Description),
		product.Price,
		product.Quantity,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// UpdateProduct updates the scalar columns of an existing product
func (r *productRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5, updated_at = $6
		WHERE id = $1
	`

	product.Name = strings.TrimSpace(product.Name)
	product.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		nullString(product.Description),
		product.Price,
		product.Quantity,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) scanProduct(row *sql.Row) (*domain.Product, error) {
	product := &domain.Product{}
	var description sql.NullString

	err := row.Scan(
		&product.ID,
		&product.Name,
		&description,
		&product.Price,
		&product.Quantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		product.Description = &description.String
	}

	return product, nil
}

// loadCategories fills product.Categories ordered by category ID
func (r *productRepository) loadCategories(ctx context.Context, product *domain.Product) error {
	query := `
		SELECT c.id, c.name, c.description, c.created_at
		FROM categories c
		JOIN product_categories pc ON pc.category_id = c.id
		WHERE pc.product_id = $1
		ORDER BY c.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, product.ID)
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return fmt.Errorf("failed to scan product category: %w", err)
		}
		categories = append(categories, *category)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating product categories: %w", err)
	}

	product.Categories = categories
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
