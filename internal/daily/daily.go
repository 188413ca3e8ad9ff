// Package daily tracks which items were attempted on each local day.
package daily

import (
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/jsoj/internal/localstore"
	"github.com/verte-zerg/jsoj/internal/model"
)

// Key is the durable key of the attempt log.
const Key = "js-oj:dailyAttempts"

const dayLayout = "2006-01-02"

// State maps kind to day key to item id to attempt.
type State map[model.Kind]map[string]map[string]model.Attempt

// DayCount is the number of distinct items attempted on one day.
type DayCount struct {
	Day   string
	Count int
}

var schema = localstore.Schema[State]{
	Key:     Key,
	Version: 1,
	Default: func() State { return State{} },
	Normalize: func(s State) State {
		if s == nil {
			s = State{}
		}
		for _, kind := range model.Kinds {
			if s[kind] == nil {
				s[kind] = map[string]map[string]model.Attempt{}
			}
		}
		return s
	},
}

// DayKey formats t as a calendar date in t's location.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// AttemptLog is the persisted per-day attempt log.
type AttemptLog struct {
	mu    sync.Mutex
	store *localstore.Adapter
	now   func() time.Time
	loc   *time.Location
	state State
}

// Option configures an AttemptLog.
type Option func(*AttemptLog)

// WithClock sets the clock used to find today.
func WithClock(now func() time.Time) Option {
	return func(l *AttemptLog) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLocation sets the location whose calendar defines a day.
func WithLocation(loc *time.Location) Option {
	return func(l *AttemptLog) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// New loads the attempt log from store.
func New(store *localstore.Adapter, opts ...Option) *AttemptLog {
	l := &AttemptLog{store: store, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(l)
	}
	l.state = localstore.Load(store, schema)
	return l
}

// Log records attempt under today's key. Logging an id twice on one day
// keeps a single record.
func (l *AttemptLog) Log(kind model.Kind, attempt model.Attempt) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	if attempt.ID == "" {
		return l.state.clone()
	}
	// Reload first so attempts logged by other processes are kept.
	stored, read := localstore.Fetch(l.store, schema)
	if read {
		l.state = merge(stored, l.state)
	}
	l.state.day(kind, l.today())[attempt.ID] = attempt
	if read {
		localstore.Save(l.store, schema, l.state)
	}
	return l.state.clone()
}

// CountToday returns the number of distinct items of kind attempted today.
func (l *AttemptLog) CountToday(kind model.Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state[kind][l.today()])
}

// Today lists today's attempts of kind ordered by title.
func (l *AttemptLog) Today(kind model.Kind) []model.Attempt {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := l.state[kind][l.today()]
	out := make([]model.Attempt, 0, len(items))
	for _, attempt := range items {
		out = append(out, attempt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// History returns counts for the last days local days, oldest first,
// ending today.
func (l *AttemptLog) History(kind model.Kind, days int) []DayCount {
	l.mu.Lock()
	defer l.mu.Unlock()

	if days <= 0 {
		return nil
	}
	now := l.now().In(l.loc)
	out := make([]DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := DayKey(now.AddDate(0, 0, -i))
		out = append(out, DayCount{Day: key, Count: len(l.state[kind][key])})
	}
	return out
}

// Snapshot returns a deep copy of the log.
func (l *AttemptLog) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

func (l *AttemptLog) today() string {
	return DayKey(l.now().In(l.loc))
}

func (s State) day(kind model.Kind, key string) map[string]model.Attempt {
	days := s[kind]
	if days == nil {
		days = map[string]map[string]model.Attempt{}
		s[kind] = days
	}
	items := days[key]
	if items == nil {
		items = map[string]model.Attempt{}
		days[key] = items
	}
	return items
}

// merge adds the attempts of local missing from stored.
func merge(stored, local State) State {
	for kind, days := range local {
		for key, items := range days {
			target := stored.day(kind, key)
			for id, attempt := range items {
				if _, ok := target[id]; !ok {
					target[id] = attempt
				}
			}
		}
	}
	return stored
}

func (s State) clone() State {
	out := make(State, len(s))
	for kind, days := range s {
		copiedDays := make(map[string]map[string]model.Attempt, len(days))
		for day, items := range days {
			copied := make(map[string]model.Attempt, len(items))
			for id, attempt := range items {
				copied[id] = attempt
			}
			copiedDays[day] = copied
		}
		out[kind] = copiedDays
	}
	return out
}
