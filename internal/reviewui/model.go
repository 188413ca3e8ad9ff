// Package reviewui provides the Bubble Tea review queue browser.
package reviewui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/review"
	"github.com/verte-zerg/jsoj/internal/stats"
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea review browser.
type Model struct {
	queue    *review.Queue
	now      func() time.Time
	pageSize int

	tabs      []model.Kind
	activeTab int
	visible   map[model.Kind]int
	entries   []model.ReviewEntry
	table     table.Model
	yesterday viewport.Model

	width  int
	height int

	formMode   bool
	formInputs []textinput.Model
	formIndex  int
	formError  string

	status string
	opened *review.KindEntry
}

// NewModel constructs a review browser. A pageSize of zero or less uses
// review.DefaultPageSize.
func NewModel(queue *review.Queue, pageSize int, now func() time.Time) *Model {
	if pageSize <= 0 {
		pageSize = review.DefaultPageSize
	}
	if now == nil {
		now = time.Now
	}
	m := &Model{
		queue:     queue,
		now:       now,
		pageSize:  pageSize,
		tabs:      model.Kinds,
		visible:   map[model.Kind]int{},
		yesterday: viewport.New(0, 0),
	}
	for _, kind := range m.tabs {
		m.visible[kind] = pageSize
	}
	m.table = table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	m.table.SetStyles(tableStyles())
	m.formInputs = []textinput.Model{newInput("Title: "), newInput("Link: ")}
	m.refresh()
	return m
}

// Opened returns the entry chosen with enter, if any.
func (m *Model) Opened() (review.KindEntry, bool) {
	if m.opened == nil {
		return review.KindEntry{}, false
	}
	return *m.opened, true
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.formMode {
			return m.updateForm(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, nil
		case "right", "l":
			m.moveTab(1)
			return m, nil
		case "m":
			m.loadMore()
			return m, nil
		case "r":
			m.markSelected()
			return m, nil
		case "a":
			if m.onYesterday() {
				return m, nil
			}
			return m.startForm()
		case "enter":
			if entry, ok := m.selected(); ok {
				m.opened = &review.KindEntry{Kind: m.kind(), ReviewEntry: entry}
				return m, tea.Quit
			}
			return m, nil
		}
		var cmd tea.Cmd
		if m.onYesterday() {
			m.yesterday, cmd = m.yesterday.Update(msg)
			return m, cmd
		}
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) tabCount() int {
	return len(m.tabs) + 1
}

func (m *Model) onYesterday() bool {
	return m.activeTab == len(m.tabs)
}

func (m *Model) kind() model.Kind {
	if m.onYesterday() {
		return ""
	}
	return m.tabs[m.activeTab]
}

func (m *Model) moveTab(delta int) {
	count := m.tabCount()
	m.activeTab = (m.activeTab + delta + count) % count
	m.status = ""
	m.refresh()
}

func (m *Model) loadMore() {
	if m.onYesterday() {
		return
	}
	kind := m.kind()
	if m.visible[kind] >= len(m.entries) {
		m.status = "Everything is already shown"
		return
	}
	m.visible[kind] += m.pageSize
	m.refresh()
}

func (m *Model) selected() (model.ReviewEntry, bool) {
	if m.onYesterday() {
		return model.ReviewEntry{}, false
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) || idx >= m.visible[m.kind()] {
		return model.ReviewEntry{}, false
	}
	return m.entries[idx], true
}

func (m *Model) markSelected() {
	entry, ok := m.selected()
	if !ok {
		return
	}
	m.queue.MarkReviewed(m.kind(), entry.ID)
	m.status = fmt.Sprintf("Marked %q as reviewed", entry.Title)
	m.refresh()
}

// refresh reloads the entries of the active tab from the queue.
func (m *Model) refresh() {
	now := m.now()
	if m.onYesterday() {
		m.entries = nil
		m.yesterday.SetContent(renderYesterday(m.queue, now))
		return
	}
	m.entries = m.queue.Entries(m.kind())
	visible := review.Page(m.entries, m.visible[m.kind()])
	rows := make([]table.Row, 0, len(visible))
	for i, e := range visible {
		last := "never"
		if e.LastReviewedAt != nil {
			last = stats.RelativeTime(*e.LastReviewedAt, now)
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			e.Title,
			string(review.StatusAt(e, now)),
			last,
			e.AddedAt.Local().Format("2006-01-02"),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func renderYesterday(queue *review.Queue, now time.Time) string {
	local := now.Local()
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	var buf bytes.Buffer
	if err := stats.RenderReviewedYesterday(&buf, queue.ReviewedBetween(today.AddDate(0, 0, -1), today)); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.status != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.table.SetColumns(columns(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(bodyHeight-1, 1))
	m.yesterday.Width = m.width
	m.yesterday.Height = bodyHeight
	for i := range m.formInputs {
		promptWidth := lipgloss.Width(m.formInputs[i].Prompt)
		m.formInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func columns(width int) []table.Column {
	fixed := 4 + 12 + 14 + 11
	title := max(width-fixed-5, 12)
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Title", Width: title},
		{Title: "Status", Width: 12},
		{Title: "Last reviewed", Width: 14},
		{Title: "Added", Width: 11},
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, m.tabCount())
	for i := 0; i < m.tabCount(); i++ {
		label := "Yesterday"
		if i < len(m.tabs) {
			label = m.tabs[i].Label()
		}
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(label))
		} else {
			parts = append(parts, inactiveNavStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return padLines(m.renderTabs(), m.width) + "\n" + padLines(m.renderSummary(), m.width)
}

func (m *Model) renderSummary() string {
	if m.onYesterday() {
		return headerStyle.Render("Items reviewed during the previous day")
	}
	now := m.now()
	reviewed := 0
	for _, e := range m.entries {
		if review.StatusAt(e, now) == review.StatusReviewed {
			reviewed++
		}
	}
	shown := min(m.visible[m.kind()], len(m.entries))
	summary := fmt.Sprintf("%d items  %d reviewed in the last 3 days  showing %d", len(m.entries), reviewed, shown)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderBody() string {
	if m.formMode {
		return m.renderForm()
	}
	if m.onYesterday() {
		return m.yesterday.View()
	}
	if len(m.entries) == 0 {
		return "Nothing to review."
	}
	view := tableMutedStyle.Render(m.table.View())
	if hidden := len(m.entries) - m.visible[m.kind()]; hidden > 0 {
		view += "\n" + headerStyle.Render(fmt.Sprintf("%d more, press m to load more", hidden))
	}
	return view
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Move: up/down  Open: enter  Mark reviewed: r  More: m  Add link: a  Quit: q"
	if m.formMode {
		help = "tab/shift+tab: next field  enter: save  esc: cancel"
	}
	footer := headerStyle.Render(help)
	if m.status != "" {
		footer += "\n" + m.status
	}
	return footer
}
