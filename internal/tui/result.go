package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/jsoj/internal/markdown"
	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/practice"
)

// RenderResult formats the judge state of snap for a terminal of the given
// width.
func RenderResult(snap practice.Snapshot, width int) string {
	if snap.Judging {
		return mutedStyle.Render("Judging...")
	}
	r := snap.Result
	if r == nil {
		return mutedStyle.Render("Run (ctrl+r) or submit (ctrl+s) to see results.")
	}

	head := statusStyle(r.Status).Render(r.Status)
	if r.PassedTests != nil && r.TotalTests != nil {
		head += fmt.Sprintf("  %d/%d tests passed", *r.PassedTests, *r.TotalTests)
	}
	lines := []string{head}
	if r.Message != "" {
		lines = append(lines, markdown.Render(r.Message, width))
	}
	if r.Error != "" {
		lines = append(lines, failStyle.Render(r.Error))
	}
	for i, tr := range snap.TestResults {
		lines = append(lines, testCaseLines(i, tr)...)
	}
	if r.HasAIAnalysis && strings.TrimSpace(r.AIAnalysis) != "" {
		lines = append(lines, "", accentStyle.Render("AI analysis"), markdown.Render(r.AIAnalysis, width))
	}
	return strings.Join(lines, "\n")
}

func statusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "accepted", "passed", "success":
		return passStyle
	case "error", "wrong answer", "wrong_answer", "failed", "runtime_error", "timeout":
		return failStyle
	default:
		return accentStyle
	}
}

func testCaseLines(i int, tr model.TestResult) []string {
	mark := passStyle.Render("✓")
	if !tr.Passed {
		mark = failStyle.Render("✗")
	}
	head := fmt.Sprintf("%s Case %d", mark, i+1)
	if tr.ExecutionTime > 0 {
		head += mutedStyle.Render(fmt.Sprintf("  %.0fms", tr.ExecutionTime))
	}
	out := []string{head}
	detail := func(label string, raw json.RawMessage) {
		if len(raw) > 0 {
			out = append(out, "    "+label+": "+compactJSON(raw))
		}
	}
	detail("input", tr.Input)
	detail("expected", tr.Expected)
	if !tr.Passed {
		detail("actual", tr.Actual)
	}
	if tr.Error != "" {
		out = append(out, "    error: "+failStyle.Render(tr.Error))
	}
	return out
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
