package voiceflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"CatalogSync/internal/domain"
	"CatalogSync/internal/ports"
)

const (
	DefaultBaseURL = "https://api.voiceflow.com"

	docsPath     = "/v1/knowledge-base/docs"
	uploadPath   = "/v1/knowledge-base/docs/upload"
	maxErrorBody = 1024
)

// Config identifies the knowledge base of one project.
type Config struct {
	BaseURL   string
	APIKey    string
	ProjectID string
	Timeout   time.Duration
}

// Client replaces catalog documents in a Voiceflow knowledge base.
type Client struct {
	rest      *resty.Client
	projectID string
	logger    *slog.Logger
}

var _ ports.KnowledgeBase = (*Client)(nil)

type listResponse struct {
	Data []struct {
		DocumentID string `json:"documentID"`
		Name       string `json:"name"`
	} `json:"data"`
}

type uploadResponse struct {
	Data struct {
		DocumentID string `json:"documentID"`
	} `json:"data"`
}

// NewClient builds a client from configuration.
func NewClient(cfg Config, log *slog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	rest := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Authorization", cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &Client{rest: rest, projectID: cfg.ProjectID, logger: log}
}

// Cleanup deletes every document whose name contains filename. It never
// fails; listing and per-document errors are recorded in the report.
func (c *Client) Cleanup(ctx context.Context, filename string) domain.CleanupReport {
	var report domain.CleanupReport

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("projectID", c.projectID).
		Get(docsPath)
	if err != nil {
		report.ListErr = fmt.Errorf("list documents: %w", err)
		return report
	}
	if !resp.IsSuccess() {
		report.ListErr = statusError("list documents", resp)
		return report
	}

	var docs listResponse
	if err := json.Unmarshal(resp.Body(), &docs); err != nil {
		report.ListErr = fmt.Errorf("decode document list: %w", err)
		return report
	}

	for _, doc := range docs.Data {
		if !strings.Contains(doc.Name, filename) {
			continue
		}
		result := c.delete(ctx, doc.DocumentID)
		result.Name = doc.Name
		c.debug("document delete", "id", doc.DocumentID, "name", doc.Name, "outcome", result.Outcome)
		report.Results = append(report.Results, result)
	}

	return report
}

func (c *Client) delete(ctx context.Context, id string) domain.DeleteResult {
	result := domain.DeleteResult{DocumentID: id}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetQueryParam("projectID", c.projectID).
		Delete(docsPath + "/{id}")
	switch {
	case err != nil:
		result.Outcome = domain.DeleteFailed
		result.Err = fmt.Errorf("delete document %s: %w", id, err)
	case resp.StatusCode() == http.StatusNotFound:
		result.Outcome = domain.DeleteNotFound
	case !resp.IsSuccess():
		result.Outcome = domain.DeleteFailed
		result.Err = statusError("delete document "+id, resp)
	default:
		result.Outcome = domain.DeleteDeleted
	}
	return result
}

// Upload posts the document as a text/plain multipart file, overwriting any
// document of the same name. An empty document is skipped without a request.
func (c *Client) Upload(ctx context.Context, doc domain.Document) (domain.UploadResult, error) {
	if doc.Empty() {
		return domain.UploadResult{Skipped: true}, nil
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"projectID": c.projectID,
			"overwrite": "true",
		}).
		SetMultipartField("file", doc.Filename, "text/plain", bytes.NewReader([]byte(doc.Text))).
		Post(uploadPath)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("upload %s: %w", doc.Filename, err)
	}

	result := domain.UploadResult{StatusCode: resp.StatusCode()}
	if !resp.IsSuccess() {
		return result, statusError("upload "+doc.Filename, resp)
	}

	var body uploadResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		result.DocumentID = body.Data.DocumentID
	}
	return result, nil
}

func statusError(op string, resp *resty.Response) error {
	body := strings.TrimSpace(string(resp.Body()))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return fmt.Errorf("%s: voiceflow error %s: %s", op, resp.Status(), body)
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
