package review

import (
	"sort"
	"time"

	"github.com/verte-zerg/jsoj/internal/model"
)

// Window is how long an entry counts as reviewed after its last review.
const Window = 72 * time.Hour

// Status is the derived review state of an entry.
type Status string

const (
	StatusReviewed   Status = "reviewed"
	StatusUnreviewed Status = "unreviewed"
)

// StatusAt classifies entry at now.
func StatusAt(entry model.ReviewEntry, now time.Time) Status {
	if entry.LastReviewedAt == nil {
		return StatusUnreviewed
	}
	if now.Sub(*entry.LastReviewedAt) < Window {
		return StatusReviewed
	}
	return StatusUnreviewed
}

// Less orders entries for review: unreviewed first, then the least recently
// reviewed, then the oldest added.
func Less(a, b model.ReviewEntry, now time.Time) bool {
	aReviewed := StatusAt(a, now) == StatusReviewed
	bReviewed := StatusAt(b, now) == StatusReviewed
	if aReviewed != bReviewed {
		return !aReviewed
	}
	aLast, bLast := reviewedUnix(a), reviewedUnix(b)
	if aLast != bLast {
		return aLast < bLast
	}
	if !a.AddedAt.Equal(b.AddedAt) {
		return a.AddedAt.Before(b.AddedAt)
	}
	return a.ID < b.ID
}

// Sort returns a sorted copy of entries.
func Sort(entries []model.ReviewEntry, now time.Time) []model.ReviewEntry {
	sorted := make([]model.ReviewEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i], sorted[j], now)
	})
	return sorted
}

func reviewedUnix(entry model.ReviewEntry) int64 {
	if entry.LastReviewedAt == nil {
		return 0
	}
	return entry.LastReviewedAt.UnixNano()
}
