package reviewui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/jsoj/internal/localstore"
	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/review"
)

func newTestModel(t *testing.T, codeItems int) (*Model, *review.Queue) {
	t.Helper()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	clock := now
	queue := review.NewWithClock(localstore.New(localstore.NewMemoryBackend()), func() time.Time { return clock })
	for i := 0; i < codeItems; i++ {
		clock = now.Add(time.Duration(i) * time.Minute)
		queue.Enqueue(model.KindCode, review.Item{ID: fmt.Sprintf("p%02d", i), Title: fmt.Sprintf("Problem %02d", i)})
	}
	clock = now.Add(time.Hour)
	m := NewModel(queue, 10, func() time.Time { return clock })
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, queue
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadMoreShowsNextPage(t *testing.T) {
	m, _ := newTestModel(t, 12)
	if got := len(m.table.Rows()); got != 10 {
		t.Fatalf("expected first page of 10 rows, got %d", got)
	}
	if !strings.Contains(m.renderBody(), "2 more") {
		t.Fatalf("expected hidden count in body:\n%s", m.renderBody())
	}
	m.Update(keyRunes("m"))
	if got := len(m.table.Rows()); got != 12 {
		t.Fatalf("expected all 12 rows after loading more, got %d", got)
	}
	m.Update(keyRunes("m"))
	if m.status != "Everything is already shown" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestMarkReviewedMovesEntryDown(t *testing.T) {
	m, queue := newTestModel(t, 3)
	first, ok := m.selected()
	if !ok || first.ID != "p00" {
		t.Fatalf("expected p00 selected, got %+v", first)
	}
	m.Update(keyRunes("r"))
	if queue.StatusOf(model.KindCode, "p00") != review.StatusReviewed {
		t.Fatalf("expected p00 to be reviewed")
	}
	rows := m.table.Rows()
	if rows[len(rows)-1][1] != "Problem 00" {
		t.Fatalf("expected reviewed entry last, got %v", rows)
	}
}

func TestEnterOpensSelection(t *testing.T) {
	m, _ := newTestModel(t, 2)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	opened, ok := m.Opened()
	if !ok || opened.Kind != model.KindCode || opened.ID != "p00" {
		t.Fatalf("unexpected opened entry %+v", opened)
	}
}

func TestAddLinkForm(t *testing.T) {
	m, queue := newTestModel(t, 0)
	m.Update(keyRunes("a"))
	if !m.formMode {
		t.Fatalf("expected form mode")
	}
	m.Update(keyRunes("LRU Cache"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(keyRunes("https://leetcode.cn/problems/lru-cache/"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.formMode {
		t.Fatalf("expected form to close, error %q", m.formError)
	}
	entries := queue.Entries(model.KindLeetCode)
	if len(entries) != 1 || entries[0].Title != "LRU Cache" {
		t.Fatalf("unexpected leetcode entries %+v", entries)
	}
	if m.kind() != model.KindLeetCode {
		t.Fatalf("expected leetcode tab, got %q", m.kind())
	}
}

func TestAddLinkFormRejectsIncomplete(t *testing.T) {
	m, _ := newTestModel(t, 0)
	m.Update(keyRunes("a"))
	m.Update(keyRunes("No link"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.formMode || m.formError == "" {
		t.Fatalf("expected form to stay open with an error")
	}
}

func TestTabsWrapAround(t *testing.T) {
	m, _ := newTestModel(t, 1)
	m.Update(keyRunes("h"))
	if !m.onYesterday() {
		t.Fatalf("expected yesterday tab after moving left from the first tab")
	}
	if !strings.Contains(m.renderBody(), "Reviewed yesterday") {
		t.Fatalf("unexpected yesterday body:\n%s", m.renderBody())
	}
	m.Update(keyRunes("l"))
	if m.kind() != model.KindCode {
		t.Fatalf("expected code tab, got %q", m.kind())
	}
}
