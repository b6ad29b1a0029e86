package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"CatalogSync/internal/domain"
	"CatalogSync/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends a run summary to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *resty.Client
}

var _ ports.RunReporter = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier; apiBase defaults to the public bot API.
func NewNotifier(botToken, chatID, apiBase string) *Notifier {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  strings.TrimRight(apiBase, "/"),
		client:   resty.New().SetTimeout(5 * time.Second),
	}
}

// Report posts a plain text summary of the run.
func (n *Notifier) Report(ctx context.Context, report domain.RunReport) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	resp, err := n.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": n.chatID,
			"text":    Summary(report),
		}).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("telegram error: %s", resp.Status())
	}

	return nil
}

// Summary renders the message text for a run.
func Summary(report domain.RunReport) string {
	var sb strings.Builder
	if report.Outcome == domain.RunSucceeded {
		fmt.Fprintf(&sb, "Catalog %s updated (%s)\n", report.Profile, report.Filename)
	} else {
		fmt.Fprintf(&sb, "Catalog %s update FAILED (%s)\n", report.Profile, report.Filename)
	}
	fmt.Fprintf(&sb, "fetched %d, valid %d, skipped %d, with stock %d, with image %d\n",
		report.Fetched, report.Summary.Valid, report.Summary.Skipped,
		report.Summary.WithStock, report.Summary.WithImage)
	for _, r := range report.Summary.TopRejections(3) {
		fmt.Fprintf(&sb, "- %s: %d\n", r.Reason, r.Count)
	}
	if report.Error != "" {
		fmt.Fprintf(&sb, "error: %s\n", report.Error)
	}
	fmt.Fprintf(&sb, "took %s", report.Duration().Round(time.Second))
	return sb.String()
}
