package daily

import (
	"sync"
	"time"

	"github.com/verte-zerg/jsoj/internal/localstore"
)

// ReminderKey stores the day the review reminder was last shown.
const ReminderKey = "js-oj:reviewReminderDate"

// Reminder decides whether the daily review reminder is due.
type Reminder struct {
	mu    sync.Mutex
	store *localstore.Adapter
	now   func() time.Time
	loc   *time.Location
	shown string
}

// NewReminder returns a reminder persisted through store.
func NewReminder(store *localstore.Adapter, now func() time.Time, loc *time.Location) *Reminder {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Reminder{store: store, now: now, loc: loc}
}

// ShouldShow reports true the first time it is called on a local day and
// records that day.
func (r *Reminder) ShouldShow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	today := DayKey(r.now().In(r.loc))
	if r.shown == today {
		return false
	}
	if stored, ok := r.store.Read(ReminderKey); ok && stored == today {
		r.shown = today
		return false
	}
	r.shown = today
	r.store.Write(ReminderKey, today)
	return true
}
