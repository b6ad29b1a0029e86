package stock

import (
	"context"
	"fmt"
	"log/slog"

	"CatalogSync/internal/domain"
	"CatalogSync/internal/ports"
)

// Stock modes selectable per profile.
const (
	ModeNone        = "none"
	ModeEmbedded    = "embedded"
	ModeSourceItems = "source-items"

	embeddedSource = "embedded"
)

// Strategy resolves stock levels for a fetched catalog.
type Strategy interface {
	ports.StockLoader
	Name() string
}

// Registry keeps a mapping from mode names to strategies.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("stock mode %s is not registered", name)
}

// None loads nothing; products carry no stock information.
type None struct{}

func (None) Name() string { return ModeNone }

func (None) Load(context.Context, []domain.Product) (domain.StockLevels, error) {
	return nil, nil
}

// Embedded reads the stock item embedded in each product.
type Embedded struct{}

func (Embedded) Name() string { return ModeEmbedded }

func (Embedded) Load(_ context.Context, products []domain.Product) (domain.StockLevels, error) {
	levels := domain.StockLevels{}
	for _, p := range products {
		if p.SKU == "" || p.Stock == nil {
			continue
		}
		status := 0
		if p.Stock.IsInStock {
			status = 1
		}
		levels[p.SKU] = domain.StockRecord{
			SKU:        p.SKU,
			Quantity:   p.Stock.Qty,
			Status:     status,
			SourceCode: embeddedSource,
		}
	}
	return levels, nil
}

// SourceItems queries a separate per-warehouse stock endpoint.
type SourceItems struct {
	source ports.StockSource
	logger *slog.Logger
}

// NewSourceItems wires a stock source into a strategy.
func NewSourceItems(source ports.StockSource, log *slog.Logger) *SourceItems {
	return &SourceItems{source: source, logger: log}
}

func (s *SourceItems) Name() string { return ModeSourceItems }

// Load collects the SKUs of every product and asks the source for their stock.
func (s *SourceItems) Load(ctx context.Context, products []domain.Product) (domain.StockLevels, error) {
	if s.source == nil {
		return nil, fmt.Errorf("stock source is not configured")
	}

	skus := make([]string, 0, len(products))
	for _, p := range products {
		if p.SKU != "" {
			skus = append(skus, p.SKU)
		}
	}

	if s.logger != nil {
		s.logger.Info("checking stock", "skus", len(skus))
	}
	return s.source.FetchLevels(ctx, skus)
}
