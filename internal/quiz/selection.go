package quiz

import (
	"sort"

	"github.com/verte-zerg/jsoj/internal/localstore"
	"github.com/verte-zerg/jsoj/internal/model"
)

const (
	// SelectedKey stores the last selected quiz.
	SelectedKey = "js-oj:selectedQuizId"
	// PendingKey stores a quiz to open once, set from the review list.
	PendingKey = "js-oj:pendingQuizId"
)

// Selection remembers which quiz is open.
type Selection struct {
	store *localstore.Adapter
}

// NewSelection returns a selection persisted through store.
func NewSelection(store *localstore.Adapter) *Selection {
	return &Selection{store: store}
}

// Restore picks the quiz to open: a pending jump first, then the last
// selection, then the first quiz. The pending jump is consumed even when
// the quiz no longer exists. It returns -1 for an empty list.
func (s *Selection) Restore(quizzes []model.Quiz) int {
	pending, hasPending := s.store.Read(PendingKey)
	if hasPending {
		s.store.Remove(PendingKey)
	}
	if len(quizzes) == 0 {
		return -1
	}
	target := pending
	if !hasPending || target == "" {
		target, _ = s.store.Read(SelectedKey)
	}
	if target != "" {
		for i, q := range quizzes {
			if q.ID == target {
				return i
			}
		}
	}
	return 0
}

// Select remembers id as the open quiz.
func (s *Selection) Select(id string) {
	if id == "" {
		return
	}
	s.store.Write(SelectedKey, id)
}

// SetPending asks the next Restore to open id.
func (s *Selection) SetPending(id string) {
	if id == "" {
		return
	}
	s.store.Write(PendingKey, id)
}

var categoryOrder = []string{"JavaScript", "React", "RN"}

// Category is a named group of quizzes.
type Category struct {
	Name    string
	Quizzes []model.Quiz
}

// GroupByCategory groups quizzes with the well-known categories first and
// the rest in name order. Quiz order inside a category is preserved.
func GroupByCategory(quizzes []model.Quiz) []Category {
	groups := map[string][]model.Quiz{}
	for _, q := range quizzes {
		name := q.Category
		if name == "" {
			name = "Other"
		}
		groups[name] = append(groups[name], q)
	}

	var out []Category
	for _, name := range categoryOrder {
		if qs, ok := groups[name]; ok {
			out = append(out, Category{Name: name, Quizzes: qs})
			delete(groups, name)
		}
	}
	rest := make([]string, 0, len(groups))
	for name := range groups {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, Category{Name: name, Quizzes: groups[name]})
	}
	return out
}
