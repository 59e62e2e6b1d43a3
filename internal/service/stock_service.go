package service

import (
	"context"
	"errors"
	"strings"

	"shopcore/internal/domain"
	"shopcore/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockService defines the interface for bulk stock import
type StockService interface {
	Reconcile(ctx context.Context, rows []domain.ImportRow) (*domain.ImportSummary, error)
}

type stockService struct {
	store      repository.Store
	categories CategoryService
	logger     *zap.Logger
}

// NewStockService creates a new instance of StockService
func NewStockService(store repository.Store, categories CategoryService, logger *zap.Logger) StockService {
	return &stockService{
		store:      store,
		categories: categories,
		logger:     logger,
	}
}

// Reconcile merges import rows into the catalog: unknown names are created, known
// names (case-insensitive) get new price, quantity and categories. Each row is its
// own transaction, so a failing row is rolled back and skipped without touching
// the rows before or after it. Cancelling ctx does not stop a run once started.
func (s *stockService) Reconcile(ctx context.Context, rows []domain.ImportRow) (*domain.ImportSummary, error) {
	summary := &domain.ImportSummary{}
	if len(rows) == 0 {
		summary.Message = domain.EmptyImportMessage
		return summary, nil
	}

	log := s.logger.With(zap.String("run_id", uuid.NewString()))
	log.Info("Stock import started", zap.Int("rows", len(rows)))

	// A run always covers the whole batch, even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	for i, row := range rows {
		if row.IsBlank() {
			log.Warn("Skipping invalid stock import item",
				zap.Int("row", i),
				zap.String("product_name", row.Name),
				zap.Int("categories", len(row.Categories)),
			)
			summary.Skipped++
			continue
		}

		if err := row.Validate(); err != nil {
			log.Warn("Rejected stock import item", zap.Int("row", i), zap.String("product_name", row.Name), zap.Error(err))
			summary.Failed++
			continue
		}

		var created bool
		err := s.store.WithinTx(ctx, func(tx repository.CatalogStore) error {
			var err error
			created, err = s.reconcileRow(ctx, tx, row)
			return err
		})
		if err != nil {
			fields := []zap.Field{zap.Int("row", i), zap.String("product_name", row.Name), zap.Error(err)}
			if errors.Is(err, repository.ErrProductAlreadyExists) || errors.Is(err, repository.ErrProductNotFound) {
				log.Warn("Stock import item conflicted with a concurrent change", fields...)
			} else {
				log.Error("Error processing stock import item", fields...)
			}
			summary.Failed++
			continue
		}

		if created {
			summary.Created++
			log.Info("Created new product via stock import", zap.String("product_name", row.Name))
		} else {
			summary.Updated++
			log.Info("Updated existing product via stock import", zap.String("product_name", row.Name))
		}
		summary.Processed++
	}

	summary.Message = summary.FormatMessage()
	log.Info("Stock import finished",
		zap.Int("processed", summary.Processed),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)

	return summary, nil
}

// reconcileRow creates or updates the product for one row and reports whether it was created
func (s *stockService) reconcileRow(ctx context.Context, tx repository.CatalogStore, row domain.ImportRow) (bool, error) {
	categories := domain.NormalizeNames(row.Categories)

	if err := s.categories.EnsureExist(ctx, tx, categories); err != nil {
		return false, err
	}

	product, err := tx.GetProductByName(ctx, row.Name)
	if errors.Is(err, repository.ErrProductNotFound) {
		product = &domain.Product{
			Name:     strings.TrimSpace(row.Name),
			Price:    row.Price,
			Quantity: row.Quantity,
		}
		if err := tx.CreateProduct(ctx, product); err != nil {
			return false, err
		}
		if err := s.categories.Sync(ctx, tx, product, categories); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	// Name and description are owned by the catalog, the feed only moves price and stock
	product.Price = row.Price
	product.Quantity = row.Quantity
	if err := tx.UpdateProduct(ctx, product); err != nil {
		return false, err
	}
	if err := s.categories.Sync(ctx, tx, product, categories); err != nil {
		return false, err
	}

	return false, nil
}
