package magento

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"CatalogSync/internal/domain"
	"CatalogSync/internal/ports"
)

const (
	DefaultBatchSize  = 50
	DefaultBatchDelay = 300 * time.Millisecond

	filterPrefix = "searchCriteria[filter_groups][0][filters][0]"
)

// StockClient reads per-warehouse source items for batches of SKUs.
type StockClient struct {
	client    *Client
	endpoint  string
	warehouse string
	batchSize int
	delay     time.Duration
	logger    *slog.Logger
}

var _ ports.StockSource = (*StockClient)(nil)

// NewStockClient wires the stock reader. An empty warehouse keeps every source.
func NewStockClient(client *Client, endpoint, warehouse string, batchSize int, delay time.Duration, log *slog.Logger) *StockClient {
	if batchSize <= 0 || batchSize > DefaultBatchSize {
		batchSize = DefaultBatchSize
	}
	if delay < 0 {
		delay = DefaultBatchDelay
	}
	return &StockClient{
		client:    client,
		endpoint:  endpoint,
		warehouse: warehouse,
		batchSize: batchSize,
		delay:     delay,
		logger:    log,
	}
}

// FetchLevels queries stock batch by batch. Failed batches are logged and
// skipped; only cancellation aborts the scan.
func (s *StockClient) FetchLevels(ctx context.Context, skus []string) (domain.StockLevels, error) {
	levels := domain.StockLevels{}
	if len(skus) == 0 {
		return levels, nil
	}

	for start := 0; start < len(skus); start += s.batchSize {
		end := min(start+s.batchSize, len(skus))
		batch := skus[start:end]

		var resp sourceItemPage
		if err := s.client.get(ctx, s.endpoint, stockQuery(batch), &resp); err != nil {
			if ctx.Err() != nil {
				return levels, ctx.Err()
			}
			s.warn("stock batch failed", "from", start, "size", len(batch), "error", err)
		} else {
			for _, item := range resp.Items {
				if s.warehouse != "" && item.SourceCode != s.warehouse {
					continue
				}
				levels[item.SKU] = domain.StockRecord{
					SKU:        item.SKU,
					Quantity:   item.Quantity,
					Status:     item.Status,
					SourceCode: item.SourceCode,
				}
			}
		}

		if end < len(skus) {
			if err := sleep(ctx, s.delay); err != nil {
				return levels, err
			}
		}
	}

	if s.logger != nil {
		s.logger.Info("stock loaded", "records", len(levels), "warehouse", s.warehouse)
	}
	return levels, nil
}

func stockQuery(skus []string) url.Values {
	q := url.Values{}
	q.Set(filterPrefix+"[field]", "sku")
	q.Set(filterPrefix+"[condition_type]", "in")
	q.Set(filterPrefix+"[value]", strings.Join(skus, ","))
	return q
}

func (s *StockClient) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
