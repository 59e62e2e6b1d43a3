package transport

import (
	"encoding/json"
	"net/http"

	"shopcore/internal/domain"
	"shopcore/internal/middleware"
	"shopcore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockItemRequest is one row of a stock import. Rows are validated by the
// reconciler so that a bad row never rejects the whole batch.
type StockItemRequest struct {
	Name       string          `json:"name"`
	Categories []string        `json:"categories"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

// ImportResponse reports the outcome of an import run
type ImportResponse struct {
	Message   string `json:"message"`
	Processed int    `json:"processed"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

// StockHandler handles HTTP requests for stock imports
type StockHandler struct {
	stockService service.StockService
	maxRows      int
	logger       *zap.Logger
}

// NewStockHandler creates a new StockHandler. maxRows <= 0 disables the row limit.
func NewStockHandler(stockService service.StockService, maxRows int, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		maxRows:      maxRows,
		logger:       logger,
	}
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/stock", func(r chi.Router) {
		r.Post("/import", h.Import)
	})
}

// Import reconciles a batch of stock rows against the catalog
func (h *StockHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req []StockItemRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Stock import decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.maxRows > 0 && len(req) > h.maxRows {
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, "too many rows in import", map[string]interface{}{
			"max_rows": h.maxRows,
			"rows":     len(req),
		})
		return
	}

	rows := make([]domain.ImportRow, len(req))
	for i, item := range req {
		rows[i] = domain.ImportRow{
			Name:       item.Name,
			Categories: item.Categories,
			Price:      item.Price,
			Quantity:   item.Quantity,
		}
	}

	summary, err := h.stockService.Reconcile(r.Context(), rows)
	if err != nil {
		h.logger.Error("Stock import failed", zap.Error(err), zap.Int("rows", len(rows)))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to import stock")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ImportResponse{
		Message:   summary.Message,
		Processed: summary.Processed,
		Created:   summary.Created,
		Updated:   summary.Updated,
		Skipped:   summary.Skipped,
		Failed:    summary.Failed,
	})
}
