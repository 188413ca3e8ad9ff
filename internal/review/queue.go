// Package review manages the spaced review queue.
package review

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/jsoj/internal/localstore"
	"github.com/verte-zerg/jsoj/internal/model"
)

// Key is the durable key holding the whole queue.
const Key = "js-oj:reviewQueue"

// State maps kind to item id to entry.
type State map[model.Kind]map[string]model.ReviewEntry

// Item identifies something to enqueue.
type Item struct {
	ID    string
	Title string
	Link  string
}

// KindEntry is an entry tagged with its kind.
type KindEntry struct {
	Kind model.Kind
	model.ReviewEntry
}

var schema = localstore.Schema[State]{
	Key:     Key,
	Version: 1,
	Default: func() State { return State{} },
	// Unversioned queues stored timestamps as epoch milliseconds.
	Migrate: func(_ int, raw json.RawMessage) (State, error) {
		var legacy map[model.Kind]map[string]struct {
			ID             string `json:"id"`
			Title          string `json:"title"`
			Link           string `json:"link"`
			AddedAt        int64  `json:"addedAt"`
			LastReviewedAt *int64 `json:"lastReviewedAt"`
		}
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, err
		}
		state := State{}
		for kind, items := range legacy {
			state[kind] = map[string]model.ReviewEntry{}
			for id, item := range items {
				entry := model.ReviewEntry{
					ID:      item.ID,
					Title:   item.Title,
					Link:    item.Link,
					AddedAt: time.UnixMilli(item.AddedAt),
				}
				if entry.ID == "" {
					entry.ID = id
				}
				if item.LastReviewedAt != nil {
					reviewed := time.UnixMilli(*item.LastReviewedAt)
					entry.LastReviewedAt = &reviewed
				}
				state[kind][id] = entry
			}
		}
		return state, nil
	},
	Normalize: func(s State) State {
		if s == nil {
			s = State{}
		}
		for _, kind := range model.Kinds {
			if s[kind] == nil {
				s[kind] = map[string]model.ReviewEntry{}
			}
		}
		return s
	},
}

// Queue is the persisted review queue.
type Queue struct {
	mu    sync.Mutex
	store *localstore.Adapter
	now   func() time.Time
	state State
}

// New loads the queue from store.
func New(store *localstore.Adapter) *Queue {
	return NewWithClock(store, time.Now)
}

// NewWithClock loads the queue from store using now as the clock.
func NewWithClock(store *localstore.Adapter, now func() time.Time) *Queue {
	return &Queue{
		store: store,
		now:   now,
		state: localstore.Load(store, schema),
	}
}

// Enqueue adds item under kind. An existing entry keeps its timestamps;
// a non-empty title or link replaces the stored one.
func (q *Queue) Enqueue(kind model.Kind, item Item) State {
	q.mu.Lock()
	defer q.mu.Unlock()

	if item.ID == "" {
		return q.state.clone()
	}
	return q.update(func(s State) bool {
		items := s.kind(kind)
		entry, ok := items[item.ID]
		if !ok {
			entry = model.ReviewEntry{ID: item.ID, AddedAt: q.now()}
		}
		if item.Title != "" {
			entry.Title = item.Title
		}
		if item.Link != "" {
			entry.Link = item.Link
		}
		items[item.ID] = entry
		return true
	})
}

// MarkReviewed stamps the entry as reviewed now. Unknown ids are ignored.
func (q *Queue) MarkReviewed(kind model.Kind, id string) State {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.update(func(s State) bool {
		items := s.kind(kind)
		entry, ok := items[id]
		if !ok {
			return false
		}
		now := q.now()
		entry.LastReviewedAt = &now
		items[id] = entry
		return true
	})
}

// StatusOf derives the status of one entry. Missing entries are unreviewed.
func (q *Queue) StatusOf(kind model.Kind, id string) Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, ok := q.state[kind][id]
	if !ok {
		return StatusUnreviewed
	}
	return StatusAt(entry, q.now())
}

// Contains reports whether id is queued under kind.
func (q *Queue) Contains(kind model.Kind, id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.state[kind][id]
	return ok
}

// Entries returns the entries of kind in review order.
func (q *Queue) Entries(kind model.Kind) []model.ReviewEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.state[kind]
	entries := make([]model.ReviewEntry, 0, len(items))
	for _, entry := range items {
		entries = append(entries, cloneEntry(entry))
	}
	return Sort(entries, q.now())
}

// Snapshot returns a deep copy of the queue.
func (q *Queue) Snapshot() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state.clone()
}

// ReviewedBetween returns entries last reviewed in [from, to), newest first.
func (q *Queue) ReviewedBetween(from, to time.Time) []KindEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []KindEntry
	for _, kind := range model.Kinds {
		for _, entry := range q.state[kind] {
			if entry.LastReviewedAt == nil {
				continue
			}
			at := *entry.LastReviewedAt
			if at.Before(from) || !at.Before(to) {
				continue
			}
			out = append(out, KindEntry{Kind: kind, ReviewEntry: cloneEntry(entry)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := *out[i].LastReviewedAt, *out[j].LastReviewedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Progress counts reviewed and unreviewed ids of kind. Ids that were never
// queued count as unreviewed.
func (q *Queue) Progress(kind model.Kind, ids []string) (reviewed, unreviewed int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	for _, id := range ids {
		entry, ok := q.state[kind][id]
		if ok && StatusAt(entry, now) == StatusReviewed {
			reviewed++
			continue
		}
		unreviewed++
	}
	return reviewed, unreviewed
}

// update applies fn to the stored queue merged with this process's view, so
// changes made by other processes survive. fn reports whether it changed
// anything. If storage cannot be read only the in-memory queue changes.
func (q *Queue) update(fn func(State) bool) State {
	stored, read := localstore.Fetch(q.store, schema)
	if read {
		q.state = merge(stored, q.state)
	}
	if fn(q.state) && read {
		localstore.Save(q.store, schema, q.state)
	}
	return q.state.clone()
}

// merge adds the entries of local to stored. An entry present in both keeps
// the earliest AddedAt and the latest LastReviewedAt.
func merge(stored, local State) State {
	for kind, items := range local {
		target := stored.kind(kind)
		for id, entry := range items {
			current, ok := target[id]
			if !ok {
				target[id] = cloneEntry(entry)
				continue
			}
			target[id] = mergeEntry(current, entry)
		}
	}
	return stored
}

func mergeEntry(stored, local model.ReviewEntry) model.ReviewEntry {
	out := cloneEntry(stored)
	if !local.AddedAt.IsZero() && (out.AddedAt.IsZero() || local.AddedAt.Before(out.AddedAt)) {
		out.AddedAt = local.AddedAt
	}
	if local.LastReviewedAt != nil && (out.LastReviewedAt == nil || local.LastReviewedAt.After(*out.LastReviewedAt)) {
		at := *local.LastReviewedAt
		out.LastReviewedAt = &at
	}
	if out.Title == "" {
		out.Title = local.Title
	}
	if out.Link == "" {
		out.Link = local.Link
	}
	return out
}

func (s State) kind(kind model.Kind) map[string]model.ReviewEntry {
	items := s[kind]
	if items == nil {
		items = map[string]model.ReviewEntry{}
		s[kind] = items
	}
	return items
}

func (s State) clone() State {
	out := make(State, len(s))
	for kind, items := range s {
		copied := make(map[string]model.ReviewEntry, len(items))
		for id, entry := range items {
			copied[id] = cloneEntry(entry)
		}
		out[kind] = copied
	}
	return out
}

func cloneEntry(entry model.ReviewEntry) model.ReviewEntry {
	if entry.LastReviewedAt != nil {
		at := *entry.LastReviewedAt
		entry.LastReviewedAt = &at
	}
	return entry
}
