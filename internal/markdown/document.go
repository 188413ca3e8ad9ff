package markdown

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/jsoj/internal/model"
)

// Problem builds the Markdown description of a problem, with its examples,
// constraints and hints.
func Problem(p model.Problem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	if p.Difficulty != "" {
		fmt.Fprintf(&b, "*%s*\n\n", p.Difficulty)
	}
	if desc := strings.TrimSpace(p.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}
	for i, ex := range p.Examples {
		fmt.Fprintf(&b, "## Example %d\n\n```\nInput: %s\nOutput: %s\n```\n\n", i+1, ex.Input, ex.Output)
		if ex.Explanation != "" {
			fmt.Fprintf(&b, "%s\n\n", ex.Explanation)
		}
	}
	writeList(&b, "Constraints", p.Constraints)
	writeList(&b, "Hints", p.Hints)
	return strings.TrimSpace(b.String())
}

// Quiz builds the Markdown text of a quiz question.
func Quiz(q model.Quiz) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", q.Title)
	var meta []string
	for _, part := range []string{q.Category, string(q.Difficulty)} {
		if part != "" {
			meta = append(meta, part)
		}
	}
	if q.Points > 0 {
		meta = append(meta, fmt.Sprintf("%d points", q.Points))
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " · "))
	}
	if question := strings.TrimSpace(q.Question); question != "" {
		b.WriteString(question)
		b.WriteString("\n\n")
	}
	if len(q.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: `%s`\n\n", strings.Join(q.Tags, "`, `"))
	}
	writeList(&b, "Hints", q.Hints)
	return strings.TrimSpace(b.String())
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
