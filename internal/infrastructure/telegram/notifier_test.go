package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CatalogSync/internal/domain"
)

func TestReportPostsSummary(t *testing.T) {
	t.Parallel()

	type sent struct {
		path   string
		chatID string
		text   string
	}
	got := make(chan sent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		got <- sent{path: r.URL.Path, chatID: r.PostForm.Get("chat_id"), text: r.PostForm.Get("text")}
	}))
	defer srv.Close()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	report := domain.RunReport{
		Profile:    "en",
		Filename:   "claus_catalogo_en.txt",
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Fetched:    5,
		Summary:    domain.FormatSummary{Valid: 4, Skipped: 1, Rejections: map[string]int{"Vis:1": 1}},
		Outcome:    domain.RunSucceeded,
	}

	n := NewNotifier("TOKEN", "42", srv.URL)
	require.NoError(t, n.Report(context.Background(), report))

	msg := <-got
	assert.Equal(t, "/botTOKEN/sendMessage", msg.path)
	assert.Equal(t, "42", msg.chatID)
	assert.Equal(t, "Catalog en updated (claus_catalogo_en.txt)\n"+
		"fetched 5, valid 4, skipped 1, with stock 0, with image 0\n"+
		"- Vis:1: 1\n"+
		"took 42s", msg.text)
}

func TestSummaryFailedRun(t *testing.T) {
	t.Parallel()

	text := Summary(domain.RunReport{Profile: "master", Filename: "c.txt", Outcome: domain.RunFailed, Error: "no products"})
	assert.Contains(t, text, "update FAILED")
	assert.Contains(t, text, "error: no products")
}

func TestReportMisconfigured(t *testing.T) {
	t.Parallel()

	err := NewNotifier("", "", "").Report(context.Background(), domain.RunReport{})
	assert.EqualError(t, err, "telegram notifier misconfigured")
}

func TestReportNon200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewNotifier("T", "1", srv.URL).Report(context.Background(), domain.RunReport{})
	assert.EqualError(t, err, "telegram error: 403 Forbidden")
}
