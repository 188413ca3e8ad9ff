package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/jsoj/internal/localstore"
	"github.com/verte-zerg/jsoj/internal/model"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disabled")
}
func (brokenBackend) Set(context.Context, string, string) error { return errors.New("disabled") }
func (brokenBackend) Delete(context.Context, string) error      { return errors.New("disabled") }

func newQueue(t *testing.T) (*Queue, *clock, *localstore.Adapter) {
	t.Helper()
	c := &clock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	adapter := localstore.New(localstore.NewMemoryBackend())
	return NewWithClock(adapter, c.Now), c, adapter
}

func at(t time.Time) *time.Time { return &t }

func TestEnqueueIsIdempotent(t *testing.T) {
	q, c, _ := newQueue(t)
	item := Item{ID: "1", Title: "Two Sum"}

	first := q.Enqueue(model.KindCode, item)
	added := first[model.KindCode]["1"].AddedAt

	c.Advance(time.Hour)
	q.MarkReviewed(model.KindCode, "1")
	reviewed := *q.Snapshot()[model.KindCode]["1"].LastReviewedAt

	c.Advance(time.Hour)
	second := q.Enqueue(model.KindCode, item)
	entry := second[model.KindCode]["1"]
	require.Len(t, second[model.KindCode], 1)
	assert.True(t, entry.AddedAt.Equal(added))
	require.NotNil(t, entry.LastReviewedAt)
	assert.True(t, entry.LastReviewedAt.Equal(reviewed))
}

func TestEnqueueRefreshesTitleAndLink(t *testing.T) {
	q, _, _ := newQueue(t)
	q.Enqueue(model.KindLeetCode, Item{ID: "x", Title: "old", Link: "https://a"})
	q.Enqueue(model.KindLeetCode, Item{ID: "x", Title: "new"})

	entry := q.Snapshot()[model.KindLeetCode]["x"]
	assert.Equal(t, "new", entry.Title)
	assert.Equal(t, "https://a", entry.Link)
}

func TestSameIDUnderDifferentKinds(t *testing.T) {
	q, _, _ := newQueue(t)
	q.Enqueue(model.KindCode, Item{ID: "1", Title: "code"})
	q.Enqueue(model.KindQuiz, Item{ID: "1", Title: "quiz"})

	assert.True(t, q.Contains(model.KindCode, "1"))
	assert.True(t, q.Contains(model.KindQuiz, "1"))
	assert.False(t, q.Contains(model.KindLeetCode, "1"))
}

func TestMarkReviewedUnknownIsNoop(t *testing.T) {
	q, _, adapter := newQueue(t)
	state := q.MarkReviewed(model.KindQuiz, "missing")
	assert.Empty(t, state[model.KindQuiz])
	_, stored := adapter.Read(Key)
	assert.False(t, stored)
}

func TestStatusWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		reviewed *time.Time
		want     Status
	}{
		{name: "never", reviewed: nil, want: StatusUnreviewed},
		{name: "two days ago", reviewed: at(now.Add(-48 * time.Hour)), want: StatusReviewed},
		{name: "just inside", reviewed: at(now.Add(-Window + time.Second)), want: StatusReviewed},
		{name: "exactly at window", reviewed: at(now.Add(-Window)), want: StatusUnreviewed},
		{name: "four days ago", reviewed: at(now.Add(-96 * time.Hour)), want: StatusUnreviewed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := model.ReviewEntry{ID: "e", LastReviewedAt: tt.reviewed}
			assert.Equal(t, tt.want, StatusAt(entry, now))
		})
	}
}

func TestStatusOfFollowsClock(t *testing.T) {
	q, c, _ := newQueue(t)
	q.Enqueue(model.KindQuiz, Item{ID: "q", Title: "closures"})
	assert.Equal(t, StatusUnreviewed, q.StatusOf(model.KindQuiz, "q"))

	q.MarkReviewed(model.KindQuiz, "q")
	c.Advance(48 * time.Hour)
	assert.Equal(t, StatusReviewed, q.StatusOf(model.KindQuiz, "q"))

	c.Advance(48 * time.Hour)
	assert.Equal(t, StatusUnreviewed, q.StatusOf(model.KindQuiz, "q"))
}

func TestSortOrder(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	t0 := now.Add(-10 * 24 * time.Hour)
	t1 := now.Add(-5 * 24 * time.Hour)
	a := model.ReviewEntry{ID: "A", AddedAt: t1}
	b := model.ReviewEntry{ID: "B", AddedAt: t0, LastReviewedAt: at(now.Add(-time.Hour))}
	c := model.ReviewEntry{ID: "C", AddedAt: t0}

	sorted := Sort([]model.ReviewEntry{a, b, c}, now)
	ids := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	require.Equal(t, []string{"C", "A", "B"}, ids)
}

func TestSortPutsStaleReviewsFirst(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	added := now.Add(-30 * 24 * time.Hour)
	stale := model.ReviewEntry{ID: "stale", AddedAt: added, LastReviewedAt: at(now.Add(-10 * 24 * time.Hour))}
	never := model.ReviewEntry{ID: "never", AddedAt: added.Add(time.Hour)}
	recent := model.ReviewEntry{ID: "recent", AddedAt: added, LastReviewedAt: at(now.Add(-2 * time.Hour))}
	older := model.ReviewEntry{ID: "older", AddedAt: added, LastReviewedAt: at(now.Add(-30 * time.Hour))}

	sorted := Sort([]model.ReviewEntry{recent, stale, older, never}, now)
	var ids []string
	for _, e := range sorted {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []string{"never", "stale", "older", "recent"}, ids)
}

func TestQueuePersistsAcrossInstances(t *testing.T) {
	q, c, adapter := newQueue(t)
	q.Enqueue(model.KindCode, Item{ID: "1", Title: "Two Sum"})
	q.MarkReviewed(model.KindCode, "1")

	reloaded := NewWithClock(adapter, c.Now)
	entries := reloaded.Entries(model.KindCode)
	require.Len(t, entries, 1)
	assert.Equal(t, "Two Sum", entries[0].Title)
	require.NotNil(t, entries[0].LastReviewedAt)
	assert.True(t, entries[0].LastReviewedAt.Equal(c.Now()))
}

func TestLegacyQueueWithEpochMillis(t *testing.T) {
	adapter := localstore.New(localstore.NewMemoryBackend())
	adapter.Write(Key, `{"code":{"1":{"id":"1","title":"Two Sum","addedAt":1700000000000,"lastReviewedAt":null}},`+
		`"quiz":{"q":{"id":"q","title":"this","addedAt":1700000000000,"lastReviewedAt":1700000500000}}}`)

	q := New(adapter)
	state := q.Snapshot()
	assert.Equal(t, time.UnixMilli(1700000000000).UnixNano(), state[model.KindCode]["1"].AddedAt.UnixNano())
	assert.Nil(t, state[model.KindCode]["1"].LastReviewedAt)
	require.NotNil(t, state[model.KindQuiz]["q"].LastReviewedAt)
	assert.NotNil(t, state[model.KindLeetCode])
}

func TestSnapshotIsDetached(t *testing.T) {
	q, _, _ := newQueue(t)
	q.Enqueue(model.KindCode, Item{ID: "1", Title: "Two Sum"})
	snap := q.Snapshot()
	delete(snap[model.KindCode], "1")
	assert.True(t, q.Contains(model.KindCode, "1"))
}

func TestReviewedBetween(t *testing.T) {
	q, c, _ := newQueue(t)
	dayStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	q.Enqueue(model.KindCode, Item{ID: "early", Title: "early"})
	q.Enqueue(model.KindQuiz, Item{ID: "late", Title: "late"})
	q.Enqueue(model.KindLeetCode, Item{ID: "today", Title: "today"})

	c.now = dayStart.Add(-20 * time.Hour)
	q.MarkReviewed(model.KindCode, "early")
	c.now = dayStart.Add(-2 * time.Hour)
	q.MarkReviewed(model.KindQuiz, "late")
	c.now = dayStart.Add(time.Hour)
	q.MarkReviewed(model.KindLeetCode, "today")

	got := q.ReviewedBetween(dayStart.Add(-24*time.Hour), dayStart)
	require.Len(t, got, 2)
	assert.Equal(t, "late", got[0].ID)
	assert.Equal(t, model.KindQuiz, got[0].Kind)
	assert.Equal(t, "early", got[1].ID)
}

func TestProgress(t *testing.T) {
	q, _, _ := newQueue(t)
	q.Enqueue(model.KindCode, Item{ID: "1"})
	q.Enqueue(model.KindCode, Item{ID: "2"})
	q.MarkReviewed(model.KindCode, "1")

	reviewed, unreviewed := q.Progress(model.KindCode, []string{"1", "2", "3"})
	assert.Equal(t, 1, reviewed)
	assert.Equal(t, 2, unreviewed)
}

func TestFailingStorageStillWorksInMemory(t *testing.T) {
	q := New(localstore.New(brokenBackend{}))
	require.NotPanics(t, func() {
		q.Enqueue(model.KindCode, Item{ID: "1", Title: "Two Sum"})
		q.MarkReviewed(model.KindCode, "1")
	})
	assert.Equal(t, StatusReviewed, q.StatusOf(model.KindCode, "1"))
	assert.Len(t, q.Entries(model.KindCode), 1)
}

func TestNormalizeLink(t *testing.T) {
	assert.Equal(t, "", NormalizeLink("   "))
	assert.Equal(t, "https://leetcode.com/problems/two-sum", NormalizeLink(" leetcode.com/problems/two-sum "))
	assert.Equal(t, "http://example.com", NormalizeLink("http://example.com"))
}

func TestLinkItemIsStable(t *testing.T) {
	a, err := LinkItem("Two Sum", "leetcode.com/problems/two-sum")
	require.NoError(t, err)
	b, err := LinkItem("Two Sum (again)", "https://leetcode.com/problems/two-sum")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "https://leetcode.com/problems/two-sum", a.Link)

	_, err = LinkItem("", "x.com")
	assert.ErrorIs(t, err, ErrIncompleteLink)
	_, err = LinkItem("title", " ")
	assert.ErrorIs(t, err, ErrIncompleteLink)
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Equal(t, []int{1, 2}, Page(items, 2))
	assert.Equal(t, items, Page(items, 10))
	assert.Empty(t, Page(items, -1))
}

func TestQueuesSharingStorageKeepEachOthersChanges(t *testing.T) {
	c := &clock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	adapter := localstore.New(localstore.NewMemoryBackend())
	tui := NewWithClock(adapter, c.Now)
	cli := NewWithClock(adapter, c.Now)

	tui.Enqueue(model.KindCode, Item{ID: "a", Title: "A"})
	cli.Enqueue(model.KindQuiz, Item{ID: "q", Title: "Closures"})
	c.Advance(time.Hour)
	cli.MarkReviewed(model.KindCode, "a")
	tui.Enqueue(model.KindCode, Item{ID: "b", Title: "B"})

	fresh := NewWithClock(adapter, c.Now)
	assert.True(t, fresh.Contains(model.KindQuiz, "q"))
	assert.True(t, fresh.Contains(model.KindCode, "a"))
	assert.True(t, fresh.Contains(model.KindCode, "b"))
	assert.Equal(t, StatusReviewed, fresh.StatusOf(model.KindCode, "a"))
	assert.True(t, tui.Contains(model.KindQuiz, "q"), "a mutation picks up entries written elsewhere")
}

// flakyBackend fails reads while failReads is set.
type flakyBackend struct {
	*localstore.MemoryBackend
	failReads bool
}

func (f *flakyBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failReads {
		return "", false, errors.New("busy")
	}
	return f.MemoryBackend.Get(ctx, key)
}

func TestUnreadableStorageIsNotOverwritten(t *testing.T) {
	c := &clock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	backend := &flakyBackend{MemoryBackend: localstore.NewMemoryBackend()}
	adapter := localstore.New(backend)
	NewWithClock(adapter, c.Now).Enqueue(model.KindQuiz, Item{ID: "q"})

	q := NewWithClock(adapter, c.Now)
	backend.failReads = true
	q.Enqueue(model.KindCode, Item{ID: "a"})
	require.True(t, q.Contains(model.KindCode, "a"))

	backend.failReads = false
	stored := NewWithClock(adapter, c.Now)
	assert.True(t, stored.Contains(model.KindQuiz, "q"))
	assert.False(t, stored.Contains(model.KindCode, "a"))

	q.Enqueue(model.KindCode, Item{ID: "b"})
	stored = NewWithClock(adapter, c.Now)
	assert.True(t, stored.Contains(model.KindQuiz, "q"))
	assert.True(t, stored.Contains(model.KindCode, "a"), "session entries are written once storage is back")
	assert.True(t, stored.Contains(model.KindCode, "b"))
}

func TestMergeEntryKeepsEarliestAddAndLatestReview(t *testing.T) {
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	stored := model.ReviewEntry{ID: "1", Title: "Stored", AddedAt: base.Add(time.Hour), LastReviewedAt: at(base.Add(2 * time.Hour))}
	local := model.ReviewEntry{ID: "1", Title: "Local", Link: "https://x", AddedAt: base, LastReviewedAt: at(base.Add(3 * time.Hour))}

	got := mergeEntry(stored, local)
	assert.True(t, got.AddedAt.Equal(base))
	require.NotNil(t, got.LastReviewedAt)
	assert.True(t, got.LastReviewedAt.Equal(base.Add(3*time.Hour)))
	assert.Equal(t, "Stored", got.Title)
	assert.Equal(t, "https://x", got.Link)
}
