package transport

import (
	"net/http"

	"shopcore/internal/domain"
	"shopcore/internal/middleware"
	"shopcore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BasketItemRequest is one requested basket line
type BasketItemRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"min=1"`
}

// CalculateDiscountRequest represents the basket pricing payload
type CalculateDiscountRequest struct {
	Items []BasketItemRequest `json:"items" validate:"required,min=1,dive"`
}

// DiscountResponse is the priced basket. Amounts are encoded as JSON strings.
type DiscountResponse struct {
	OriginalTotal           decimal.Decimal `json:"originalTotal"`
	DiscountAmount          decimal.Decimal `json:"discountAmount"`
	FinalTotal              decimal.Decimal `json:"finalTotal"`
	AppliedDiscountMessages []string        `json:"appliedDiscountMessages"`
	Success                 bool            `json:"success"`
	ErrorMessage            string          `json:"errorMessage,omitempty"`
}

// BasketHandler handles HTTP requests for basket pricing
type BasketHandler struct {
	discountService service.DiscountService
	logger          *zap.Logger
}

// NewBasketHandler creates a new BasketHandler
func NewBasketHandler(discountService service.DiscountService, logger *zap.Logger) *BasketHandler {
	return &BasketHandler{
		discountService: discountService,
		logger:          logger,
	}
}

// RegisterRoutes registers all basket routes
func (h *BasketHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/basket", func(r chi.Router) {
		r.Post("/calculate-discount", h.CalculateDiscount)
	})
}

// CalculateDiscount prices a basket and applies category discounts
func (h *BasketHandler) CalculateDiscount(w http.ResponseWriter, r *http.Request) {
	var req CalculateDiscountRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Basket validation failed", zap.Error(err))

		if middleware.IsValidationError(err) {
			middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]domain.BasketItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.BasketItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	result, err := h.discountService.Calculate(r.Context(), items)
	if err != nil {
		h.logger.Error("Discount calculation failed", zap.Error(err), zap.Int("items", len(items)))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to calculate discount")
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
		h.logger.Info("Basket rejected", zap.String("reason", result.ErrorMessage))
	}

	middleware.RespondWithJSON(w, status, toDiscountResponse(result))
}

func toDiscountResponse(result *domain.DiscountResult) DiscountResponse {
	messages := result.AppliedMessages
	if messages == nil {
		messages = []string{}
	}

	return DiscountResponse{
		OriginalTotal:           result.OriginalTotal,
		DiscountAmount:          result.DiscountAmount,
		FinalTotal:              result.FinalTotal,
		AppliedDiscountMessages: messages,
		Success:                 result.Success,
		ErrorMessage:            result.ErrorMessage,
	}
}
