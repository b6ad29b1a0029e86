package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"CatalogSync/internal/catalog"
	"CatalogSync/internal/domain"
	"CatalogSync/internal/ports"
)

const (
	topRejections = 3
	reportTimeout = 10 * time.Second
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Profile       string
	Filename      string
	Products      ports.ProductSource
	Stock         ports.StockLoader
	Formatter     *catalog.Formatter
	KnowledgeBase ports.KnowledgeBase
	Reporters     []ports.RunReporter
	Logger        *slog.Logger
	Now           func() time.Time
	NewID         func() string
}

// Pipeline implements the catalog synchronization workflow.
type Pipeline struct {
	profile       string
	filename      string
	products      ports.ProductSource
	stock         ports.StockLoader
	formatter     *catalog.Formatter
	knowledgeBase ports.KnowledgeBase
	reporters     []ports.RunReporter
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		profile:       deps.Profile,
		filename:      deps.Filename,
		products:      deps.Products,
		stock:         deps.Stock,
		formatter:     deps.Formatter,
		knowledgeBase: deps.KnowledgeBase,
		reporters:     deps.Reporters,
		logger:        deps.Logger,
		now:           deps.Now,
		newID:         deps.NewID,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.formatter == nil {
		p.formatter = catalog.NewFormatter(catalog.Options{})
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

// Run fetches, formats and republishes the catalog once. The returned report
// is complete even when err is not nil and has been handed to every reporter.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{
		ID:        p.newID(),
		Profile:   p.profile,
		Filename:  p.filename,
		StartedAt: p.now(),
	}
	p.logger.Info("run started", "run_id", report.ID, "profile", p.profile)

	doc, err := p.build(ctx, &report)
	if err == nil {
		err = p.publish(ctx, doc, &report)
	}

	report.FinishedAt = p.now()
	report.Outcome = domain.RunSucceeded
	if err != nil {
		report.Outcome = domain.RunFailed
		report.Error = err.Error()
		p.logger.Error("run failed", "run_id", report.ID, "error", err)
	} else {
		p.logger.Info("run finished", "run_id", report.ID, "duration", report.Duration())
	}

	p.report(ctx, report)
	return report, err
}

// Render builds the document without touching the knowledge base.
func (p *Pipeline) Render(ctx context.Context) (domain.Document, domain.FormatSummary, error) {
	var report domain.RunReport
	doc, err := p.build(ctx, &report)
	return doc, report.Summary, err
}

func (p *Pipeline) build(ctx context.Context, report *domain.RunReport) (domain.Document, error) {
	if p.products == nil {
		return domain.Document{}, fmt.Errorf("%w: product source is not configured", domain.ErrConfiguration)
	}

	products, err := p.products.FetchAll(ctx)
	if err != nil {
		return domain.Document{}, fmt.Errorf("fetch products: %w", err)
	}
	report.Fetched = len(products)
	if len(products) == 0 {
		return domain.Document{}, domain.ErrNoProducts
	}
	p.logger.Info("products fetched", "count", len(products))

	var levels domain.StockLevels
	if p.stock != nil {
		levels, err = p.stock.Load(ctx, products)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.Document{}, fmt.Errorf("load stock: %w", ctxErr)
			}
			p.logger.Warn("stock unavailable, continuing without it", "error", err)
			levels = nil
		}
		report.StockRecords = len(levels)
		p.logger.Info("stock loaded", "records", len(levels))
	}

	text, summary := p.formatter.Format(products, levels)
	report.Summary = summary
	p.logger.Info("products processed",
		"valid", summary.Valid,
		"skipped", summary.Skipped,
		"with_stock", summary.WithStock,
		"with_image", summary.WithImage,
	)
	for _, r := range summary.TopRejections(topRejections) {
		p.logger.Info("rejection reason", "reason", r.Reason, "count", r.Count)
	}

	if text == "" {
		return domain.Document{}, domain.ErrNoEligibleProducts
	}
	return domain.Document{Filename: p.filename, Text: text}, nil
}

func (p *Pipeline) publish(ctx context.Context, doc domain.Document, report *domain.RunReport) error {
	if p.knowledgeBase == nil {
		return fmt.Errorf("%w: knowledge base is not configured", domain.ErrConfiguration)
	}

	cleanup := p.knowledgeBase.Cleanup(ctx, doc.Filename)
	report.Cleanup = cleanup
	if cleanup.ListErr != nil {
		p.logger.Warn("listing old documents failed", "error", cleanup.ListErr)
	}
	for _, r := range cleanup.Results {
		if r.Outcome == domain.DeleteFailed {
			p.logger.Warn("old document not deleted", "document_id", r.DocumentID, "name", r.Name, "error", r.Err)
		}
	}
	p.logger.Info("old documents cleaned",
		"deleted", cleanup.Count(domain.DeleteDeleted),
		"not_found", cleanup.Count(domain.DeleteNotFound),
		"failed", cleanup.Count(domain.DeleteFailed),
	)

	result, err := p.knowledgeBase.Upload(ctx, doc)
	report.Upload = result
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUpload, err)
	}
	if result.Skipped {
		return fmt.Errorf("%w: empty document", domain.ErrUpload)
	}
	p.logger.Info("document uploaded", "filename", doc.Filename, "status", result.StatusCode, "document_id", result.DocumentID)
	return nil
}

func (p *Pipeline) report(ctx context.Context, report domain.RunReport) {
	if len(p.reporters) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()

	var errs []error
	for _, r := range p.reporters {
		if err := r.Report(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		p.logger.Warn("run report not delivered", "run_id", report.ID, "error", err)
	}
}
