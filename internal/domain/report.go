package domain

import (
	"sort"
	"time"
)

// RejectionCount is one line of the rejection histogram.
type RejectionCount struct {
	Reason string
	Count  int
}

// FormatSummary collects counters produced while building the document.
type FormatSummary struct {
	Valid      int
	Skipped    int
	WithImage  int
	WithStock  int
	Rejections map[string]int
}

// Reject tallies a rejection reason.
func (s *FormatSummary) Reject(reason string) {
	if s.Rejections == nil {
		s.Rejections = map[string]int{}
	}
	s.Skipped++
	s.Rejections[reason]++
}

// TopRejections returns the n most frequent reasons, ties broken by reason.
func (s FormatSummary) TopRejections(n int) []RejectionCount {
	out := make([]RejectionCount, 0, len(s.Rejections))
	for reason, count := range s.Rejections {
		out = append(out, RejectionCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DeleteOutcome classifies one best-effort deletion.
type DeleteOutcome string

const (
	DeleteDeleted  DeleteOutcome = "deleted"
	DeleteNotFound DeleteOutcome = "not_found"
	DeleteFailed   DeleteOutcome = "failed"
)

// DeleteResult is the outcome of deleting one remote document.
type DeleteResult struct {
	DocumentID string
	Name       string
	Outcome    DeleteOutcome
	Err        error
}

// CleanupReport describes the delete phase of a publish.
type CleanupReport struct {
	ListErr error
	Results []DeleteResult
}

// Count returns how many deletions ended with outcome.
func (c CleanupReport) Count(outcome DeleteOutcome) int {
	n := 0
	for _, r := range c.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

// UploadResult describes the upload phase of a publish.
type UploadResult struct {
	Skipped    bool
	StatusCode int
	DocumentID string
}

// RunOutcome is the final state of one synchronization run.
type RunOutcome string

const (
	RunSucceeded RunOutcome = "success"
	RunFailed    RunOutcome = "failed"
)

// RunReport is handed to reporters after every run.
type RunReport struct {
	ID           string
	Profile      string
	Filename     string
	StartedAt    time.Time
	FinishedAt   time.Time
	Fetched      int
	StockRecords int
	Summary      FormatSummary
	Cleanup      CleanupReport
	Upload       UploadResult
	Outcome      RunOutcome
	Error        string
}

// Duration is the wall time of the run.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
