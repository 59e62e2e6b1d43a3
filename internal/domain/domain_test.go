package domain

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeNames(t *testing.T) {
	got := NormalizeNames([]string{" CPU ", "cpu", "", "   ", "Gpu", "GPU", "Storage"})
	assert.Equal(t, []string{"CPU", "Gpu", "Storage"}, got)

	assert.Empty(t, NormalizeNames(nil))
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "graphics cards", CanonicalName("  Graphics Cards\t"))
}

func TestProperty_NormalizeNamesIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("normalizing twice equals normalizing once and leaves no duplicates", prop.ForAll(
		func(names []string) bool {
			once := NormalizeNames(names)
			twice := NormalizeNames(once)
			if len(once) != len(twice) {
				return false
			}

			seen := make(map[string]bool)
			for i, name := range once {
				if name != twice[i] || name == "" || name != strings.TrimSpace(name) {
					return false
				}
				key := CanonicalName(name)
				if seen[key] {
					return false
				}
				seen[key] = true
			}
			return true
		},
		gen.SliceOf(gen.OneGenOf(gen.AlphaString(), gen.OneConstOf(" a", "A ", "", "  "))),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestImportRow_IsBlank(t *testing.T) {
	assert.True(t, ImportRow{Name: " ", Categories: []string{"A"}}.IsBlank())
	assert.True(t, ImportRow{Name: "X"}.IsBlank())
	assert.False(t, ImportRow{Name: "X", Categories: []string{" "}}.IsBlank())
}

func TestImportRow_Validate(t *testing.T) {
	valid := ImportRow{Name: "X", Categories: []string{"A"}, Price: decimal.RequireFromString("0.01"), Quantity: 0}
	assert.NoError(t, valid.Validate())

	// Trailing zeros beyond the column scale are not extra precision
	twoPlaces := valid
	twoPlaces.Price = decimal.RequireFromString("19.990")
	assert.NoError(t, twoPlaces.Validate())

	longest := valid
	longest.Categories = []string{" " + strings.Repeat("é", MaxCategoryNameLength) + " "}
	assert.NoError(t, longest.Validate())

	tests := []struct {
		name   string
		mutate func(r *ImportRow)
		err    error
	}{
		{"zero price", func(r *ImportRow) { r.Price = decimal.Zero }, ErrInvalidPrice},
		{"negative price", func(r *ImportRow) { r.Price = decimal.NewFromInt(-3) }, ErrInvalidPrice},
		{"sub-cent price", func(r *ImportRow) { r.Price = decimal.RequireFromString("0.001") }, ErrPricePrecision},
		{"three decimal places", func(r *ImportRow) { r.Price = decimal.RequireFromString("19.999") }, ErrPricePrecision},
		{"negative quantity", func(r *ImportRow) { r.Quantity = -1 }, ErrInvalidQuantity},
		{"long name", func(r *ImportRow) { r.Name = strings.Repeat("n", MaxProductNameLength+1) }, ErrNameTooLong},
		{"long category", func(r *ImportRow) { r.Categories = []string{"A", strings.Repeat("c", MaxCategoryNameLength+1)} }, ErrCategoryTooLong},
		{"blank categories", func(r *ImportRow) { r.Categories = []string{"", "  "} }, ErrMissingCategories},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := valid
			row.Categories = append([]string(nil), valid.Categories...)
			tt.mutate(&row)
			assert.ErrorIs(t, row.Validate(), tt.err)
		})
	}
}

func TestImportSummary_FormatMessage(t *testing.T) {
	s := &ImportSummary{Processed: 3, Created: 1, Updated: 2}
	assert.Equal(t, "Stock import finished. Processed: 3, Products Created: 1, Products Updated: 2.", s.FormatMessage())
}

func TestDiscountResult_Reject(t *testing.T) {
	r := NewDiscountResult().Reject("nope")
	assert.False(t, r.Success)
	assert.Equal(t, "nope", r.ErrorMessage)
}
