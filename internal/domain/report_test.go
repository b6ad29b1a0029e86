package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopRejectionsOrdersByCountThenReason(t *testing.T) {
	t.Parallel()

	var s FormatSummary
	for _, reason := range []string{"Vis:1", "Type:bundle", "Vis:1", "Status:Disabled(2)", "Vis:1", "Type:bundle"} {
		s.Reject(reason)
	}

	top := s.TopRejections(2)
	require.Len(t, top, 2)
	assert.Equal(t, RejectionCount{Reason: "Vis:1", Count: 3}, top[0])
	assert.Equal(t, RejectionCount{Reason: "Type:bundle", Count: 2}, top[1])
	assert.Equal(t, 6, s.Skipped)
	assert.Len(t, s.TopRejections(-1), 3)
}

func TestResolveStockPrefersRecord(t *testing.T) {
	t.Parallel()

	p := Product{SKU: "A", Stock: &StockItem{Qty: 9, IsInStock: true}}

	got := ResolveStock(p, &StockRecord{SKU: "A", Quantity: 2, Status: 0})
	assert.Equal(t, StockState{Known: true, Quantity: 2, InStock: false, Status: 0}, got)

	got = ResolveStock(p, nil)
	assert.Equal(t, StockState{Known: true, Quantity: 9, InStock: true, Status: 1}, got)

	got = ResolveStock(Product{SKU: "B"}, nil)
	assert.False(t, got.Known)
}

func TestStockLevelsLookup(t *testing.T) {
	t.Parallel()

	var empty StockLevels
	assert.Nil(t, empty.Lookup("A"))

	levels := StockLevels{"A": {SKU: "A", Quantity: 1, Status: 1}}
	rec := levels.Lookup("A")
	require.NotNil(t, rec)
	assert.True(t, rec.Available())
	assert.Nil(t, levels.Lookup("B"))
}

func TestCleanupReportCount(t *testing.T) {
	t.Parallel()

	c := CleanupReport{Results: []DeleteResult{
		{DocumentID: "1", Outcome: DeleteDeleted},
		{DocumentID: "2", Outcome: DeleteNotFound},
		{DocumentID: "3", Outcome: DeleteFailed, Err: errors.New("boom")},
		{DocumentID: "4", Outcome: DeleteDeleted},
	}}

	assert.Equal(t, 2, c.Count(DeleteDeleted))
	assert.Equal(t, 1, c.Count(DeleteNotFound))
	assert.Equal(t, 1, c.Count(DeleteFailed))
}

func TestRunReportDuration(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := RunReport{StartedAt: start}
	assert.Zero(t, r.Duration())

	r.FinishedAt = start.Add(90 * time.Second)
	assert.Equal(t, 90*time.Second, r.Duration())
}

func TestCodeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", Code{}.String())
	assert.Equal(t, "4", NewCode("4").String())
}
