// Package markdown renders Markdown as wrapped terminal text.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB4CA"))
	linkStyle    = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#6CA0DC"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	plainStyle   = lipgloss.NewStyle()
)

const codeIndent = "    "

var parser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// Render formats src for a terminal of the given width. A width of zero or
// less disables wrapping.
func Render(src string, width int) string {
	return render(src, width, false)
}

// RenderPlain is Render without styling.
func RenderPlain(src string, width int) string {
	return render(src, width, true)
}

type span struct {
	text  string
	style lipgloss.Style
}

type renderer struct {
	source []byte
	plain  bool
}

func render(src string, width int, plain bool) string {
	source := []byte(src)
	doc := parser.Parse(text.NewReader(source))
	r := &renderer{source: source, plain: plain}
	return strings.Join(r.blocks(doc, width, true), "\n")
}

func (r *renderer) style(s lipgloss.Style, value string) string {
	if r.plain || value == "" {
		return value
	}
	return s.Render(value)
}

// blocks renders the children of parent, separated by blank lines when
// spaced is set.
func (r *renderer) blocks(parent ast.Node, width int, spaced bool) []string {
	var out []string
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		lines := r.block(c, width)
		if len(lines) == 0 {
			continue
		}
		if spaced && len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, lines...)
	}
	return out
}

func (r *renderer) block(n ast.Node, width int) []string {
	switch n := n.(type) {
	case *ast.Heading:
		spans := []span{{text: strings.Repeat("#", n.Level) + " ", style: headingStyle}}
		r.inline(n, headingStyle, &spans)
		return r.wrap(spans, width)
	case *ast.Paragraph, *ast.TextBlock:
		var spans []span
		r.inline(n, plainStyle, &spans)
		return r.wrap(spans, width)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return r.code(n)
	case *ast.List:
		return r.list(n, width)
	case *ast.Blockquote:
		inner := r.blocks(n, width-2, true)
		for i, line := range inner {
			inner[i] = r.style(mutedStyle, "> ") + line
		}
		return inner
	case *ast.ThematicBreak:
		w := width
		if w <= 0 || w > 40 {
			w = 40
		}
		return []string{r.style(mutedStyle, strings.Repeat("─", w))}
	case *ast.HTMLBlock:
		return r.rawLines(n)
	case *east.Table:
		return r.table(n)
	default:
		return r.blocks(n, width, true)
	}
}

func (r *renderer) code(n ast.Node) []string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(r.source)), "\r\n")
		out = append(out, codeIndent+r.style(codeStyle, line))
	}
	return out
}

func (r *renderer) rawLines(n ast.Node) []string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(r.source)), "\r\n"))
	}
	return out
}

func (r *renderer) list(n *ast.List, width int) []string {
	var out []string
	i := 0
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", n.Start+i)
		}
		indent := runewidth.StringWidth(marker)
		body := r.blocks(item, width-indent, !n.IsTight)
		if len(body) == 0 {
			body = []string{""}
		}
		for j, line := range body {
			switch {
			case j == 0:
				out = append(out, r.style(mutedStyle, marker)+line)
			case line == "":
				out = append(out, "")
			default:
				out = append(out, strings.Repeat(" ", indent)+line)
			}
		}
		if !n.IsTight && item.NextSibling() != nil {
			out = append(out, "")
		}
		i++
	}
	return out
}

func (r *renderer) table(n *east.Table) []string {
	var rows [][]string
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, r.plainText(c))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return nil
	}

	widths := make([]int, 0)
	for _, row := range rows {
		for i, c := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}
	format := func(row []string, style lipgloss.Style) string {
		var b strings.Builder
		for i, w := range widths {
			c := ""
			if i < len(row) {
				c = row[i]
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(r.style(style, c))
			b.WriteString(strings.Repeat(" ", w-runewidth.StringWidth(c)))
		}
		return strings.TrimRight(b.String(), " ")
	}

	out := []string{format(rows[0], headingStyle)}
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	out = append(out, format(rule, mutedStyle))
	for _, row := range rows[1:] {
		out = append(out, format(row, plainStyle))
	}
	return out
}

func (r *renderer) inline(parent ast.Node, style lipgloss.Style, spans *[]span) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			*spans = append(*spans, span{text: string(n.Segment.Value(r.source)), style: style})
			switch {
			case n.HardLineBreak():
				*spans = append(*spans, span{text: "\n"})
			case n.SoftLineBreak():
				*spans = append(*spans, span{text: " ", style: style})
			}
		case *ast.String:
			*spans = append(*spans, span{text: string(n.Value), style: style})
		case *ast.CodeSpan:
			*spans = append(*spans, span{text: r.plainText(n), style: codeStyle})
		case *ast.Emphasis:
			next := style.Italic(true)
			if n.Level >= 2 {
				next = style.Bold(true)
			}
			r.inline(n, next, spans)
		case *east.Strikethrough:
			r.inline(n, style.Strikethrough(true), spans)
		case *ast.Link:
			r.inline(n, linkStyle, spans)
			if dest := string(n.Destination); dest != "" && dest != r.plainText(n) {
				*spans = append(*spans, span{text: " (" + dest + ")", style: mutedStyle})
			}
		case *ast.AutoLink:
			*spans = append(*spans, span{text: string(n.URL(r.source)), style: linkStyle})
		case *east.TaskCheckBox:
			box := "[ ] "
			if n.IsChecked {
				box = "[x] "
			}
			*spans = append(*spans, span{text: box, style: mutedStyle})
		case *ast.RawHTML:
		default:
			r.inline(n, style, spans)
		}
	}
}

func (r *renderer) plainText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(r.source))
			if c.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
