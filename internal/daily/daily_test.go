package daily

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

type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disabled")
}
func (brokenBackend) Set(context.Context, string, string) error { return errors.New("disabled") }
func (brokenBackend) Delete(context.Context, string) error      { return errors.New("disabled") }

func fixedZone() *time.Location {
	return time.FixedZone("UTC+8", 8*60*60)
}

func TestDayKeyUsesLocalCalendar(t *testing.T) {
	// 20:30 UTC on March 9 is already March 10 at UTC+8.
	instant := time.Date(2024, 3, 9, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09", DayKey(instant))
	assert.Equal(t, "2024-03-10", DayKey(instant.In(fixedZone())))
	assert.Equal(t, "2024-01-05", DayKey(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
}

func TestLogIsDistinctPerDay(t *testing.T) {
	loc := fixedZone()
	now := time.Date(2024, 3, 10, 23, 0, 0, 0, loc)
	log := New(localstore.New(localstore.NewMemoryBackend()),
		WithClock(func() time.Time { return now }),
		WithLocation(loc),
	)

	log.Log(model.KindCode, model.Attempt{ID: "1", Title: "Two Sum"})
	log.Log(model.KindCode, model.Attempt{ID: "1", Title: "Two Sum"})
	require.Equal(t, 1, log.CountToday(model.KindCode))

	log.Log(model.KindCode, model.Attempt{ID: "2", Title: "array unique"})
	require.Equal(t, 2, log.CountToday(model.KindCode))
	require.Equal(t, 0, log.CountToday(model.KindQuiz))

	now = now.Add(2 * time.Hour)
	require.Equal(t, 0, log.CountToday(model.KindCode))

	log.Log(model.KindCode, model.Attempt{ID: "1", Title: "Two Sum"})
	require.Equal(t, 1, log.CountToday(model.KindCode))

	state := log.Snapshot()
	assert.Len(t, state[model.KindCode]["2024-03-10"], 2)
	assert.Len(t, state[model.KindCode]["2024-03-11"], 1)
}

func TestLogPersists(t *testing.T) {
	adapter := localstore.New(localstore.NewMemoryBackend())
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	clock := WithClock(func() time.Time { return now })

	New(adapter, clock, WithLocation(time.UTC)).Log(model.KindQuiz, model.Attempt{ID: "q1", Title: "closures"})

	reloaded := New(adapter, clock, WithLocation(time.UTC))
	require.Equal(t, 1, reloaded.CountToday(model.KindQuiz))
	assert.Equal(t, []model.Attempt{{ID: "q1", Title: "closures"}}, reloaded.Today(model.KindQuiz))
}

func TestTodaySortedByTitle(t *testing.T) {
	log := New(localstore.New(localstore.NewMemoryBackend()))
	log.Log(model.KindCode, model.Attempt{ID: "2", Title: "b"})
	log.Log(model.KindCode, model.Attempt{ID: "1", Title: "a"})

	got := log.Today(model.KindCode)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
}

func TestHistoryOldestFirst(t *testing.T) {
	now := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	log := New(localstore.New(localstore.NewMemoryBackend()),
		WithClock(func() time.Time { return now }),
		WithLocation(time.UTC),
	)
	log.Log(model.KindCode, model.Attempt{ID: "a"})
	now = now.AddDate(0, 0, 2)
	log.Log(model.KindCode, model.Attempt{ID: "a"})
	log.Log(model.KindCode, model.Attempt{ID: "b"})

	got := log.History(model.KindCode, 3)
	require.Equal(t, []DayCount{
		{Day: "2024-03-10", Count: 1},
		{Day: "2024-03-11", Count: 0},
		{Day: "2024-03-12", Count: 2},
	}, got)
	assert.Nil(t, log.History(model.KindCode, 0))
}

func TestFailingStorageStillCounts(t *testing.T) {
	log := New(localstore.New(brokenBackend{}))
	require.NotPanics(t, func() {
		log.Log(model.KindCode, model.Attempt{ID: "1"})
	})
	assert.Equal(t, 1, log.CountToday(model.KindCode))
}

func TestReminderOncePerDay(t *testing.T) {
	adapter := localstore.New(localstore.NewMemoryBackend())
	loc := fixedZone()
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, loc)
	clock := func() time.Time { return now }

	r := NewReminder(adapter, clock, loc)
	assert.True(t, r.ShouldShow())
	assert.False(t, r.ShouldShow())
	assert.False(t, NewReminder(adapter, clock, loc).ShouldShow())

	now = now.AddDate(0, 0, 1)
	assert.True(t, r.ShouldShow())
	stored, ok := adapter.Read(ReminderKey)
	require.True(t, ok)
	assert.Equal(t, "2024-03-11", stored)
}

func TestReminderWithoutStorageShowsOnce(t *testing.T) {
	r := NewReminder(localstore.New(brokenBackend{}), nil, nil)
	assert.True(t, r.ShouldShow())
	assert.False(t, r.ShouldShow())
}

func TestLogsSharingStorageKeepEachOthersAttempts(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := WithClock(func() time.Time { return now })
	adapter := localstore.New(localstore.NewMemoryBackend())
	tui := New(adapter, clock, WithLocation(time.UTC))
	cli := New(adapter, clock, WithLocation(time.UTC))

	tui.Log(model.KindCode, model.Attempt{ID: "1", Title: "Two Sum"})
	cli.Log(model.KindQuiz, model.Attempt{ID: "q", Title: "Closures"})
	tui.Log(model.KindCode, model.Attempt{ID: "2", Title: "array unique"})

	fresh := New(adapter, clock, WithLocation(time.UTC))
	assert.Equal(t, 2, fresh.CountToday(model.KindCode))
	assert.Equal(t, 1, fresh.CountToday(model.KindQuiz))
	assert.Equal(t, 1, tui.CountToday(model.KindQuiz))
}

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

func TestUnreadableLogIsNotOverwritten(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := WithClock(func() time.Time { return now })
	backend := &flakyBackend{MemoryBackend: localstore.NewMemoryBackend()}
	adapter := localstore.New(backend)
	New(adapter, clock, WithLocation(time.UTC)).Log(model.KindQuiz, model.Attempt{ID: "q"})

	log := New(adapter, clock, WithLocation(time.UTC))
	backend.failReads = true
	log.Log(model.KindCode, model.Attempt{ID: "1"})
	require.Equal(t, 1, log.CountToday(model.KindCode))

	backend.failReads = false
	stored := New(adapter, clock, WithLocation(time.UTC))
	assert.Equal(t, 1, stored.CountToday(model.KindQuiz))
	assert.Equal(t, 0, stored.CountToday(model.KindCode))
}
