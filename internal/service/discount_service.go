package service

import (
	"context"
	"errors"
	"fmt"

	"shopcore/internal/domain"
	"shopcore/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MessageNoDiscount         = "No discount applied (single item or single product type)."
	MessageNoCategoryDiscount = "No category discounts applicable based on basket contents."
)

// CategoryDiscountRate is taken off one unit of every product sharing a category with another basket unit
var CategoryDiscountRate = decimal.New(5, -2)

// DiscountService defines the interface for basket pricing
type DiscountService interface {
	Calculate(ctx context.Context, items []domain.BasketItem) (*domain.DiscountResult, error)
}

type discountService struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewDiscountService creates a new instance of DiscountService
func NewDiscountService(products repository.ProductRepository, logger *zap.Logger) DiscountService {
	return &discountService{
		products: products,
		logger:   logger,
	}
}

type basketLine struct {
	product  *domain.Product
	quantity int
}

// Calculate prices the basket. Unknown products and insufficient stock are
// reported through a result with Success=false; the first failing item stops
// evaluation. A non-nil error means the catalog could not be read.
func (s *discountService) Calculate(ctx context.Context, items []domain.BasketItem) (*domain.DiscountResult, error) {
	result := domain.NewDiscountResult()
	lines := make([]basketLine, 0, len(items))
	totalQuantity := 0

	for _, item := range items {
		product, err := s.products.GetProductWithCategories(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				s.logger.Warn("Discount calculation failed: product not found", zap.Int64("product_id", item.ProductID))
				return result.Reject(fmt.Sprintf("Product with ID %d not found.", item.ProductID)), nil
			}
			return nil, fmt.Errorf("failed to load product %d: %w", item.ProductID, err)
		}

		if product.Quantity < item.Quantity {
			s.logger.Warn("Discount calculation failed: insufficient stock",
				zap.Int64("product_id", product.ID),
				zap.String("product_name", product.Name),
				zap.Int("requested", item.Quantity),
				zap.Int("available", product.Quantity),
			)
			return result.Reject(fmt.Sprintf(
				"Not enough stock for product '%s'. Requested: %d, Available: %d.",
				product.Name, item.Quantity, product.Quantity,
			)), nil
		}

		result.OriginalTotal = result.OriginalTotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		totalQuantity += item.Quantity
		lines = append(lines, basketLine{product: product, quantity: item.Quantity})
	}

	if totalQuantity <= 1 && len(items) <= 1 {
		result.FinalTotal = result.OriginalTotal
		result.AppliedMessages = append(result.AppliedMessages, MessageNoDiscount)
		return result, nil
	}

	eligible := eligibleCategories(lines)
	considered := make(map[int64]struct{}, len(lines))

	for _, line := range lines {
		if _, ok := considered[line.product.ID]; ok {
			continue
		}
		considered[line.product.ID] = struct{}{}

		category, ok := firstEligibleCategory(line.product, eligible)
		if !ok {
			continue
		}

		// One unit only, whatever quantity was requested
		discount := line.product.Price.Mul(CategoryDiscountRate)
		result.DiscountAmount = result.DiscountAmount.Add(discount)
		result.AppliedMessages = append(result.AppliedMessages, fmt.Sprintf(
			"Applied 5%% discount (%s) to first copy of '%s' for category '%s'.",
			discount.StringFixed(2), line.product.Name, category.Name,
		))
	}

	result.FinalTotal = result.OriginalTotal.Sub(result.DiscountAmount)

	if result.DiscountAmount.IsZero() {
		result.AppliedMessages = append(result.AppliedMessages, MessageNoCategoryDiscount)
	}

	s.logger.Info("Discount calculation successful",
		zap.String("original_total", result.OriginalTotal.String()),
		zap.String("discount_amount", result.DiscountAmount.String()),
		zap.String("final_total", result.FinalTotal.String()),
	)

	return result, nil
}

// eligibleCategories returns the IDs of categories whose quantity summed over the
// whole basket exceeds one. Each line adds its full quantity to every category it carries.
func eligibleCategories(lines []basketLine) map[int64]struct{} {
	counts := make(map[int64]int)
	for _, line := range lines {
		for _, category := range line.product.Categories {
			counts[category.ID] += line.quantity
		}
	}

	eligible := make(map[int64]struct{}, len(counts))
	for id, count := range counts {
		if count > 1 {
			eligible[id] = struct{}{}
		}
	}
	return eligible
}

func firstEligibleCategory(product *domain.Product, eligible map[int64]struct{}) (domain.Category, bool) {
	for _, category := range product.Categories {
		if _, ok := eligible[category.ID]; ok {
			return category, true
		}
	}
	return domain.Category{}, false
}
