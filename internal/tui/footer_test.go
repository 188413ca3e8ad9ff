package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/practice"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		snap: practice.Snapshot{
			Problems:   []model.Problem{{ID: "1"}, {ID: "2"}},
			Index:      1,
			TodayCount: 3,
			Judging:    true,
			Notice:     "offline",
		},
	}
	out := m.renderFooter()
	if !containsAll(out, []string{"Problem 2/2", "Today 3", "Judging...", "offline", "^R run"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterPrefersStatus(t *testing.T) {
	m := &Model{
		snap:   practice.Snapshot{Index: -1, Notice: "offline"},
		status: "Run finished",
	}
	out := m.renderFooter()
	if !strings.Contains(out, "Run finished") || strings.Contains(out, "offline") {
		t.Fatalf("expected the status to replace the notice: %s", out)
	}
	if strings.Contains(out, "Problem") {
		t.Fatalf("expected no problem counter without a selection: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
