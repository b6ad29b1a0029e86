package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CatalogSync/internal/domain"
)

func TestInsertQuery(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	report := domain.RunReport{
		ID:         "7b0f1e54-4a38-4d2d-9a57-0c1f8e8d2a11",
		Profile:    "en",
		Filename:   "claus_catalogo_en.txt",
		StartedAt:  start,
		FinishedAt: start.Add(time.Minute),
		Outcome:    domain.RunSucceeded,
		Fetched:    10,
		Summary: domain.FormatSummary{
			Valid:      7,
			Skipped:    3,
			Rejections: map[string]int{"Vis:1": 3},
		},
		Cleanup: domain.CleanupReport{Results: []domain.DeleteResult{
			{DocumentID: "a", Outcome: domain.DeleteDeleted},
			{DocumentID: "b", Outcome: domain.DeleteFailed},
		}},
		Upload: domain.UploadResult{StatusCode: 200},
	}

	query, args, err := insertQuery(report)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO catalog_sync_runs (id,profile,filename,"), query)
	assert.Contains(t, query, "$17")
	assert.NotContains(t, query, "?")
	require.Len(t, args, 17)
	assert.Equal(t, "en", args[1])
	assert.Equal(t, "success", args[5])
	assert.Equal(t, `{"Vis:1":3}`, args[12])
	assert.Equal(t, 1, args[13])
	assert.Equal(t, 1, args[14])
	assert.Equal(t, 200, args[15])
	assert.Nil(t, args[16])
}

func TestInsertQueryFailedRun(t *testing.T) {
	t.Parallel()

	_, args, err := insertQuery(domain.RunReport{
		ID:      "id",
		Outcome: domain.RunFailed,
		Error:   "no products",
	})
	require.NoError(t, err)
	assert.Equal(t, "{}", args[12])
	assert.Nil(t, args[15])
	assert.Equal(t, "no products", args[16])
}

func TestReportWithoutDatabaseIsNoop(t *testing.T) {
	t.Parallel()

	h := NewRunHistory(nil)
	assert.NoError(t, h.EnsureSchema(context.Background()))
	assert.NoError(t, h.Report(context.Background(), domain.RunReport{ID: "x"}))
}
