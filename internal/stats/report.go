package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/review"
	"github.com/verte-zerg/jsoj/internal/store"
)

const (
	timeLayout = "2006-01-02 15:04"
	titleWidth = 48
)

// RenderReviewTable prints the first limit entries of a review list. The
// entries must already be in review order.
func RenderReviewTable(w io.Writer, kind model.Kind, entries []model.ReviewEntry, now time.Time, limit int) error {
	reviewed := 0
	for _, e := range entries {
		if review.StatusAt(e, now) == review.StatusReviewed {
			reviewed++
		}
	}
	header := fmt.Sprintf("%s review: %d items, %d reviewed in the last 3 days", kind.Label(), len(entries), reviewed)
	if len(entries) == 0 {
		return writeLines(w, []string{header, "Nothing to review."})
	}

	visible := review.Page(entries, limit)
	rows := make([][]string, 0, len(visible))
	for i, e := range visible {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.ID,
			truncate(e.Title, titleWidth),
			string(review.StatusAt(e, now)),
			formatOptionalTime(e.LastReviewedAt, now),
			e.Link,
		})
	}
	lines := []string{header}
	lines = append(lines, formatTable([]string{"#", "ID", "Title", "Status", "Last reviewed", "Link"}, rows, map[int]bool{0: true})...)
	if hidden := len(entries) - len(visible); hidden > 0 {
		lines = append(lines, fmt.Sprintf("... %d more (raise --limit to see them)", hidden))
	}
	return writeLines(w, lines)
}

// RenderReviewedYesterday prints entries reviewed during the previous day.
func RenderReviewedYesterday(w io.Writer, entries []review.KindEntry) error {
	if len(entries) == 0 {
		return writeLines(w, []string{"Reviewed yesterday: none"})
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Kind.Label(),
			truncate(e.Title, titleWidth),
			e.LastReviewedAt.Local().Format("15:04"),
		})
	}
	lines := []string{fmt.Sprintf("Reviewed yesterday: %d", len(entries))}
	lines = append(lines, formatTable([]string{"Kind", "Title", "At"}, rows, nil)...)
	return writeLines(w, lines)
}

// RenderRecords prints each problem with its record.
func RenderRecords(w io.Writer, problems []model.Problem, records map[string]model.Record, inReview func(id string) bool) error {
	if len(problems) == 0 {
		_, err := fmt.Fprintln(w, "No problems found.")
		return err
	}
	rows := make([][]string, 0, len(problems))
	for _, p := range problems {
		record := records[p.ID]
		queued := ""
		if inReview != nil && inReview(p.ID) {
			queued = "review"
		}
		rows = append(rows, []string{
			p.ID,
			truncate(p.Title, titleWidth),
			string(p.Difficulty),
			RecordStatus(record),
			fmt.Sprintf("%d/%d", record.PassedCount, record.TotalAttempts),
			queued,
		})
	}
	lines := formatTable([]string{"ID", "Title", "Difficulty", "Status", "Passed", "Queue"}, rows, map[int]bool{4: true})
	return writeLines(w, lines)
}

// RenderSubmissions prints a submission history, newest first as given.
func RenderSubmissions(w io.Writer, subs []model.Submission, now time.Time) error {
	if len(subs) == 0 {
		_, err := fmt.Fprintln(w, "No submissions yet.")
		return err
	}
	rows := make([][]string, 0, len(subs))
	for i, s := range subs {
		rows = append(rows, []string{
			fmt.Sprintf("#%d", len(subs)-i),
			SubmissionStatus(s.Status),
			fmt.Sprintf("%d/%d", s.PassedTests, s.TotalTests),
			fmt.Sprintf("%.0fms", s.ExecutionTime),
			RelativeTime(s.SubmittedAt, now),
		})
	}
	lines := formatTable([]string{"", "Status", "Tests", "Time", "Submitted"}, rows, map[int]bool{2: true, 3: true})
	return writeLines(w, lines)
}

// SubmissionStatus maps backend status codes to labels.
func SubmissionStatus(status string) string {
	switch status {
	case "accepted":
		return "Accepted"
	case "wrong_answer":
		return "Wrong answer"
	case "runtime_error":
		return "Runtime error"
	case "timeout":
		return "Timeout"
	default:
		return status
	}
}

// RelativeTime formats t relative to now for recent times.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d min ago", int(diff/time.Minute))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(diff/time.Hour))
	default:
		return t.Local().Format(timeLayout)
	}
}

// RenderStorage lists the locally stored keys.
func RenderStorage(ctx context.Context, w io.Writer, st *store.Store) error {
	entries, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list local data: %w", err)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No local data.")
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, fmt.Sprintf("%d", e.Size), e.UpdatedAt.Local().Format(timeLayout)})
	}
	lines := []string{"Local data"}
	lines = append(lines, formatTable([]string{"Key", "Bytes", "Updated"}, rows, map[int]bool{1: true})...)
	return writeLines(w, lines)
}

func formatOptionalTime(t *time.Time, now time.Time) string {
	if t == nil {
		return "never"
	}
	return RelativeTime(*t, now)
}
