package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrInvalidQuantity   = errors.New("quantity cannot be negative")
	ErrPricePrecision    = fmt.Errorf("price cannot have more than %d decimal places", PriceScale)
	ErrNameTooLong       = fmt.Errorf("name cannot exceed %d characters", MaxProductNameLength)
	ErrCategoryTooLong   = fmt.Errorf("category name cannot exceed %d characters", MaxCategoryNameLength)
	ErrMissingCategories = errors.New("at least one category is required")
)

// ImportRow is one externally supplied inventory line
type ImportRow struct {
	Name       string
	Categories []string
	Price      decimal.Decimal
	Quantity   int
}

// IsBlank reports rows that carry no name or no categories at all.
// Such rows are skipped by the importer without being counted.
func (r ImportRow) IsBlank() bool {
	return strings.TrimSpace(r.Name) == "" || len(r.Categories) == 0
}

// Validate checks the value rules a row must satisfy before it may touch the catalog
func (r ImportRow) Validate() error {
	if !r.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if !r.Price.Equal(r.Price.Round(PriceScale)) {
		return ErrPricePrecision
	}
	if r.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.Name)) > MaxProductNameLength {
		return ErrNameTooLong
	}
	categories := NormalizeNames(r.Categories)
	if len(categories) == 0 {
		return ErrMissingCategories
	}
	for _, name := range categories {
		if utf8.RuneCountInString(name) > MaxCategoryNameLength {
			return ErrCategoryTooLong
		}
	}
	return nil
}

// ImportSummary counts the outcome of one stock import run
type ImportSummary struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
	Failed    int
	Message   string
}

// EmptyImportMessage is returned when an import run receives no rows
const EmptyImportMessage = "No stock items provided for import."

// FormatMessage renders the human readable summary line
func (s *ImportSummary) FormatMessage() string {
	return fmt.Sprintf(
		"Stock import finished. Processed: %d, Products Created: %d, Products Updated: %d.",
		s.Processed, s.Created, s.Updated,
	)
}
