package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE for unique_violation
const uniqueViolationCode = "23505"

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run inside or outside a transaction
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CatalogStore is the persistence capability consumed by the catalog services
type CatalogStore interface {
	ProductRepository
	CategoryRepository
}

// Store is a CatalogStore that can also open a unit of work
type Store interface {
	CatalogStore
	// WithinTx runs fn against a transactional CatalogStore. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	WithinTx(ctx context.Context, fn func(CatalogStore) error) error
}

type catalogStore struct {
	ProductRepository
	CategoryRepository
}

func newCatalogStore(db DBTX) CatalogStore {
	return &catalogStore{
		ProductRepository:  NewProductRepository(db),
		CategoryRepository: NewCategoryRepository(db),
	}
}

type store struct {
	CatalogStore
	db *sql.DB
}

// NewStore creates a new Postgres backed Store
func NewStore(db *sql.DB) Store {
	return &store{
		CatalogStore: newCatalogStore(db),
		db:           db,
	}
}

// WithinTx runs fn inside a single database transaction
func (s *store) WithinTx(ctx context.Context, fn func(CatalogStore) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newCatalogStore(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
