package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"

	"CatalogSync/internal/domain"
	"CatalogSync/internal/ports"
)

const runsTable = "catalog_sync_runs"

// Schema creates the append-only run history table.
const Schema = `CREATE TABLE IF NOT EXISTS catalog_sync_runs (
    id              UUID PRIMARY KEY,
    profile         TEXT NOT NULL,
    filename        TEXT NOT NULL,
    started_at      TIMESTAMPTZ NOT NULL,
    finished_at     TIMESTAMPTZ NOT NULL,
    outcome         TEXT NOT NULL,
    fetched         INTEGER NOT NULL,
    stock_records   INTEGER NOT NULL,
    valid           INTEGER NOT NULL,
    skipped         INTEGER NOT NULL,
    with_image      INTEGER NOT NULL,
    with_stock      INTEGER NOT NULL,
    rejections      JSONB NOT NULL DEFAULT '{}',
    deleted_docs    INTEGER NOT NULL,
    failed_deletes  INTEGER NOT NULL,
    upload_status   INTEGER,
    error           TEXT
)`

// RunHistory appends one row per synchronization run into Postgres.
type RunHistory struct {
	db *sql.DB
}

var _ ports.RunReporter = (*RunHistory)(nil)

// Open connects to Postgres through the pgx database/sql driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewRunHistory wires a sql.DB implementation.
func NewRunHistory(db *sql.DB) *RunHistory {
	return &RunHistory{db: db}
}

// EnsureSchema creates the history table when missing.
func (r *RunHistory) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create run history table: %w", err)
	}
	return nil
}

// Report inserts the run summary.
func (r *RunHistory) Report(ctx context.Context, report domain.RunReport) error {
	if r.db == nil {
		return nil
	}

	query, args, err := insertQuery(report)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run %s: %w", report.ID, err)
	}
	return nil
}

func insertQuery(report domain.RunReport) (string, []any, error) {
	rejections := report.Summary.Rejections
	if rejections == nil {
		rejections = map[string]int{}
	}
	rejectionsJSON, err := json.Marshal(rejections)
	if err != nil {
		return "", nil, fmt.Errorf("marshal rejections: %w", err)
	}

	var uploadStatus any
	if report.Upload.StatusCode != 0 {
		uploadStatus = report.Upload.StatusCode
	}
	var errText any
	if report.Error != "" {
		errText = report.Error
	}

	query, args, err := sq.Insert(runsTable).
		Columns(
			"id", "profile", "filename", "started_at", "finished_at", "outcome",
			"fetched", "stock_records", "valid", "skipped", "with_image", "with_stock",
			"rejections", "deleted_docs", "failed_deletes", "upload_status", "error",
		).
		Values(
			report.ID, report.Profile, report.Filename, report.StartedAt, report.FinishedAt, string(report.Outcome),
			report.Fetched, report.StockRecords, report.Summary.Valid, report.Summary.Skipped,
			report.Summary.WithImage, report.Summary.WithStock,
			string(rejectionsJSON),
			report.Cleanup.Count(domain.DeleteDeleted), report.Cleanup.Count(domain.DeleteFailed),
			uploadStatus, errText,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return query, args, nil
}
