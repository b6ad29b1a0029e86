package ports

import (
	"context"
	"time"

	"CatalogSync/internal/domain"
)

// ProductSource pulls the full product catalog from the commerce backend.
type ProductSource interface {
	FetchAll(ctx context.Context) ([]domain.Product, error)
}

// StockSource looks up per-warehouse stock records for a set of SKUs.
type StockSource interface {
	FetchLevels(ctx context.Context, skus []string) (domain.StockLevels, error)
}

// StockLoader resolves stock levels for fetched products (strategy-dependent).
type StockLoader interface {
	Load(ctx context.Context, products []domain.Product) (domain.StockLevels, error)
}

// KnowledgeBase replaces the published catalog document.
type KnowledgeBase interface {
	Cleanup(ctx context.Context, filename string) domain.CleanupReport
	Upload(ctx context.Context, doc domain.Document) (domain.UploadResult, error)
}

// RunReporter receives the outcome of every run (metrics, history, chat).
type RunReporter interface {
	Report(ctx context.Context, report domain.RunReport) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
