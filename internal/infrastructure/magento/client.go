package magento

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "CatalogSync/1.0"
	maxErrorBody   = 512
)

// Credentials are the OAuth1 integration tokens issued by the store admin.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	TokenSecret    string
}

// Client performs OAuth1 (HMAC-SHA256) signed GET requests against the REST API.
// Signing happens in the transport handed to resty.
type Client struct {
	rest *resty.Client
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %s", e.Status)
	}
	return fmt.Sprintf("unexpected status %s: %s", e.Status, e.Body)
}

// NewClient builds a signing client; timeout defaults to 30s.
func NewClient(creds Credentials, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := oauth1.Config{
		ConsumerKey:    creds.ConsumerKey,
		ConsumerSecret: creds.ConsumerSecret,
		Signer:         &oauth1.HMAC256Signer{ConsumerSecret: creds.ConsumerSecret},
	}
	token := oauth1.NewToken(creds.AccessToken, creds.TokenSecret)

	rest := resty.NewWithClient(cfg.Client(oauth1.NoContext, token)).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	return &Client{rest: rest}
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, v any) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(endpoint)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		body := resp.Body()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &StatusError{Code: resp.StatusCode(), Status: resp.Status(), Body: string(body)}
	}

	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
