package magento

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"CatalogSync/internal/domain"
	"CatalogSync/internal/ports"
)

const (
	DefaultPageSize  = 100
	DefaultPageDelay = 500 * time.Millisecond
)

// ProductClient pages through the product list endpoint.
type ProductClient struct {
	client   *Client
	endpoint string
	pageSize int
	delay    time.Duration
	logger   *slog.Logger
}

var _ ports.ProductSource = (*ProductClient)(nil)

// NewProductClient wires the pager; zero page size and negative delay fall back to defaults.
func NewProductClient(client *Client, endpoint string, pageSize int, delay time.Duration, log *slog.Logger) *ProductClient {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if delay < 0 {
		delay = DefaultPageDelay
	}
	return &ProductClient{
		client:   client,
		endpoint: endpoint,
		pageSize: pageSize,
		delay:    delay,
		logger:   log,
	}
}

// FetchAll returns every product the API hands out. API and transport
// failures end pagination and the products gathered so far are returned;
// only cancellation is reported as an error.
func (p *ProductClient) FetchAll(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product

	for page := 1; ; page++ {
		var resp productPage
		if err := p.client.get(ctx, p.endpoint, pageQuery(p.pageSize, page), &resp); err != nil {
			if ctx.Err() != nil {
				return products, ctx.Err()
			}
			p.warn("product page failed", "page", page, "error", err)
			break
		}

		for _, item := range resp.Items {
			products = append(products, item.toDomain())
		}
		p.debug("product page fetched", "page", page, "items", len(resp.Items), "total", len(products))

		if len(resp.Items) == 0 || len(resp.Items) < p.pageSize {
			break
		}
		if resp.TotalCount != nil && len(products) >= *resp.TotalCount {
			break
		}

		if err := sleep(ctx, p.delay); err != nil {
			return products, err
		}
	}

	return products, nil
}

func pageQuery(pageSize, page int) url.Values {
	q := url.Values{}
	q.Set("searchCriteria[pageSize]", strconv.Itoa(pageSize))
	q.Set("searchCriteria[currentPage]", strconv.Itoa(page))
	return q
}

func (p *ProductClient) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *ProductClient) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
