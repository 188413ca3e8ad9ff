package markdown

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type cell struct {
	s       string
	width   int
	isSpace bool
	isBreak bool
}

// cellsOf turns styled spans into display cells, one per rune.
func (r *renderer) cellsOf(spans []span) []cell {
	out := make([]cell, 0, len(spans)*8)
	for _, sp := range spans {
		for _, ch := range sp.text {
			if ch == '\n' {
				out = append(out, cell{isBreak: true})
				continue
			}
			out = append(out, cell{
				s:       r.style(sp.style, string(ch)),
				width:   runewidth.RuneWidth(ch),
				isSpace: ch == ' ',
			})
		}
	}
	return out
}

func (r *renderer) wrap(spans []span, width int) []string {
	cells := r.cellsOf(spans)
	var out []string
	start := 0
	for i, c := range cells {
		if c.isBreak {
			out = append(out, wrapCells(cells[start:i], width)...)
			start = i + 1
		}
	}
	return append(out, wrapCells(cells[start:], width)...)
}

// wrapCells breaks at the last space that fits, or mid-word when a word is
// wider than the line. Spaces at a break are dropped.
func wrapCells(cells []cell, width int) []string {
	if width <= 0 {
		return []string{joinCells(cells)}
	}
	var out []string
	line := make([]cell, 0, len(cells))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(cells); {
		item := cells[i]
		if lineWidth+item.width > width && len(line) > 0 {
			switch {
			case item.isSpace:
				out = append(out, joinCells(line))
				line = line[:0]
				i++
			case lastSpaceIdx >= 0:
				out = append(out, joinCells(line[:lastSpaceIdx]))
				line = append([]cell{}, line[lastSpaceIdx+1:]...)
			default:
				out = append(out, joinCells(line))
				line = line[:0]
			}
			lineWidth = widthOf(line)
			lastSpaceIdx = lastSpaceIndex(line)
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	return append(out, joinCells(line))
}

func joinCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
	}
	return b.String()
}

func widthOf(line []cell) int {
	total := 0
	for _, c := range line {
		total += c.width
	}
	return total
}

func lastSpaceIndex(line []cell) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
