package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"CatalogSync/internal/catalog"
	"CatalogSync/internal/config"
	"CatalogSync/internal/domain"
	"CatalogSync/internal/infrastructure/magento"
	"CatalogSync/internal/infrastructure/metrics"
	"CatalogSync/internal/infrastructure/scheduler"
	"CatalogSync/internal/infrastructure/storage"
	"CatalogSync/internal/infrastructure/telegram"
	"CatalogSync/internal/infrastructure/voiceflow"
	"CatalogSync/internal/logging"
	"CatalogSync/internal/ports"
	"CatalogSync/internal/stock"
	"CatalogSync/internal/usecase"
	"CatalogSync/pkg/logger"
)

const stopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	profile  config.ProfileConfig
	pipeline *usecase.Pipeline
	logger   *slog.Logger
	db       *sql.DB
}

// New builds the application for the active profile. Reporters are only
// wired when their settings are present.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	profile, err := cfg.ActiveProfile()
	if err != nil {
		return nil, err
	}
	log := baseLogger.With("profile", profile.Name)

	client := magento.NewClient(magento.Credentials{
		ConsumerKey:    cfg.Magento.ConsumerKey,
		ConsumerSecret: cfg.Magento.ConsumerSecret,
		AccessToken:    cfg.Magento.AccessToken,
		TokenSecret:    cfg.Magento.TokenSecret,
	}, cfg.Magento.Timeout)

	products := magento.NewProductClient(client, profile.ProductsURL, profile.PageSize, profile.PageDelay,
		log.With("component", "magento.products"))

	loader, err := stockLoader(client, profile, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	formatter := catalog.NewFormatter(catalog.Options{
		Currency:      profile.Currency,
		StorefrontURL: profile.StorefrontURL,
		MediaURL:      profile.MediaURL,
		LinkTemplate:  profile.LinkTemplate,
		RequireStock:  profile.RequireStock,
		TrackStock:    profile.TrackStock(),
		Labels:        labels(profile.CategoryLabels),
	})

	kb := voiceflow.NewClient(voiceflow.Config{
		BaseURL:   cfg.Voiceflow.BaseURL,
		APIKey:    cfg.Voiceflow.APIKey,
		ProjectID: cfg.Voiceflow.ProjectID,
		Timeout:   cfg.Voiceflow.Timeout,
	}, log.With("component", "voiceflow"))

	application := &Application{cfg: cfg, profile: profile, logger: log}

	reporters, err := application.reporters(ctx)
	if err != nil {
		return nil, err
	}

	application.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Profile:       profile.Name,
		Filename:      profile.Filename,
		Products:      products,
		Stock:         loader,
		Formatter:     formatter,
		KnowledgeBase: kb,
		Reporters:     reporters,
		Logger:        log.With("component", "pipeline"),
	})
	return application, nil
}

func stockLoader(client *magento.Client, profile config.ProfileConfig, log *slog.Logger) (ports.StockLoader, error) {
	registry := stock.NewRegistry()
	registry.Register(stock.None{})
	registry.Register(stock.Embedded{})
	registry.Register(stock.NewSourceItems(
		magento.NewStockClient(client, profile.Stock.URL, profile.Stock.Warehouse,
			profile.Stock.BatchSize, profile.Stock.BatchDelay, log.With("component", "magento.stock")),
		log.With("component", "stock"),
	))

	strategy, err := registry.Resolve(profile.Stock.Mode)
	if err != nil {
		return nil, err
	}
	if strategy.Name() == stock.ModeNone {
		return nil, nil
	}
	return strategy, nil
}

func labels(raw map[string]string) catalog.Labels {
	if len(raw) == 0 {
		return nil
	}
	out := make(catalog.Labels, len(raw))
	for k, v := range raw {
		out[catalog.Category(k)] = v
	}
	return out
}

func (a *Application) reporters(ctx context.Context) ([]ports.RunReporter, error) {
	var reporters []ports.RunReporter

	if url := a.cfg.Metrics.PushgatewayURL; url != "" {
		reporters = append(reporters, metrics.NewReporter(url))
	}

	if dsn := a.cfg.Database.DSN; dsn != "" {
		db, err := storage.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("run history: %w", err)
		}
		history := storage.NewRunHistory(db)
		if err := history.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run history: %w", err)
		}
		a.db = db
		reporters = append(reporters, history)
	}

	if tg := a.cfg.Notifications.Telegram; tg.Enabled() {
		reporters = append(reporters, telegram.NewNotifier(tg.BotToken, tg.ChatID, tg.APIBase))
	}

	return reporters, nil
}

// Run performs a single synchronization.
func (a *Application) Run(ctx context.Context) error {
	_, err := a.pipeline.Run(ctx)
	return err
}

// Render writes the document for the active profile to w without publishing it.
func (a *Application) Render(ctx context.Context, w io.Writer) (domain.FormatSummary, error) {
	doc, summary, err := a.pipeline.Render(ctx)
	if err != nil {
		return summary, err
	}
	if _, err := io.WriteString(w, doc.Text); err != nil {
		return summary, fmt.Errorf("write document: %w", err)
	}
	return summary, nil
}

// Schedule runs the pipeline on the configured cron expression until ctx is done.
func (a *Application) Schedule(ctx context.Context) error {
	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location(), logger.New("cron"))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	s := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"cron", a.cfg.Scheduler.CronExpression,
		"timezone", a.cfg.Scheduler.Location().String(),
		"next", driver.Next(time.Now()),
	)

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	return s.Stop(stopCtx)
}

// Profile returns the active profile.
func (a *Application) Profile() config.ProfileConfig {
	return a.profile
}

// Close releases the run history connection.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
