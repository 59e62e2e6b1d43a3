package domain

import "github.com/shopspring/decimal"

// BasketItem is one line of a basket submitted for pricing. Baskets are never persisted.
type BasketItem struct {
	ProductID int64
	Quantity  int
}

// DiscountResult is the priced outcome of a basket.
// Success is false when a business rule rejected the basket; ErrorMessage then says why.
type DiscountResult struct {
	OriginalTotal   decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalTotal      decimal.Decimal
	AppliedMessages []string
	Success         bool
	ErrorMessage    string
}

// NewDiscountResult returns a successful, zero-valued result
func NewDiscountResult() *DiscountResult {
	return &DiscountResult{
		OriginalTotal:   decimal.Zero,
		DiscountAmount:  decimal.Zero,
		FinalTotal:      decimal.Zero,
		AppliedMessages: []string{},
		Success:         true,
	}
}

// Reject marks the result as a business-rule failure
func (r *DiscountResult) Reject(message string) *DiscountResult {
	r.Success = false
	r.ErrorMessage = message
	return r
}
