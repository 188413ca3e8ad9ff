// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/jsoj/internal/markdown"
	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/practice"
	"github.com/verte-zerg/jsoj/internal/stats"
)

type pane int

const (
	paneEditor pane = iota
	paneDescription
)

// SnapshotMsg delivers a session snapshot to the program.
type SnapshotMsg practice.Snapshot

type actionDoneMsg struct {
	label string
	err   error
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	session *practice.Session
	ctx     context.Context

	width  int
	height int
	focus  pane

	editor textarea.Model
	desc   viewport.Model
	result viewport.Model

	snap      practice.Snapshot
	problemID string
	status    string
}

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

const keyHelp = "^N/^P problem  ^R run  ^S submit  ^G judge  ^O reset  tab pane  ^C quit"

// NewModel constructs the practice TUI for session. Backend calls run with
// ctx.
func NewModel(ctx context.Context, session *practice.Session) *Model {
	editor := textarea.New()
	editor.ShowLineNumbers = true
	editor.Prompt = ""
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Placeholder = "// write your solution here"
	editor.Focus()

	m := &Model{
		session: session,
		ctx:     ctx,
		editor:  editor,
		desc:    viewport.New(0, 0),
		result:  viewport.New(0, 0),
	}
	m.take(session.Snapshot())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil
	case SnapshotMsg:
		m.apply(practice.Snapshot(msg))
		return m, nil
	case actionDoneMsg:
		m.finishAction(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	leftWidth, rightWidth := m.columns()
	left := lipgloss.NewStyle().Width(leftWidth).Render(m.desc.View())
	separator := mutedStyle.Render(strings.Repeat("─", rightWidth))
	right := lipgloss.JoinVertical(lipgloss.Left, m.editor.View(), separator, m.result.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderFooter())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.session.Close()
		return m, tea.Quit
	case "ctrl+n":
		m.selectOffset(1)
		return m, nil
	case "ctrl+p":
		m.selectOffset(-1)
		return m, nil
	case "ctrl+r":
		return m, m.startAction("Run", m.session.Run)
	case "ctrl+s":
		return m, m.startAction("Submit", m.session.Submit)
	case "ctrl+g":
		return m, m.startAction("Judge", m.session.FullJudge)
	case "ctrl+o":
		m.session.ResetCode()
		m.apply(m.session.Snapshot())
		m.editor.SetValue(m.snap.Code)
		m.status = "Code reset to the template"
		return m, nil
	case "tab":
		m.toggleFocus()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == paneDescription {
		m.desc, cmd = m.desc.Update(msg)
		return m, cmd
	}
	before := m.editor.Value()
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.session.SetUserCode(after)
	}
	return m, cmd
}

func (m *Model) selectOffset(delta int) {
	n := len(m.snap.Problems)
	if n == 0 {
		return
	}
	next := (m.snap.Index + delta + n) % n
	if m.session.SelectProblem(next) {
		m.status = ""
		m.apply(m.session.Snapshot())
	}
}

func (m *Model) toggleFocus() {
	if m.focus == paneEditor {
		m.focus = paneDescription
		m.editor.Blur()
		return
	}
	m.focus = paneEditor
	m.editor.Focus()
}

func (m *Model) startAction(label string, fn func(context.Context) (*model.JudgeResult, error)) tea.Cmd {
	if m.snap.Judging {
		m.status = "Still judging, please wait"
		return nil
	}
	m.status = label + "..."
	ctx := m.ctx
	return func() tea.Msg {
		_, err := fn(ctx)
		return actionDoneMsg{label: label, err: err}
	}
}

func (m *Model) finishAction(msg actionDoneMsg) {
	switch {
	case errors.Is(msg.err, practice.ErrEmptyCode):
		m.status = "Write some code first"
	case msg.err != nil:
		m.status = msg.err.Error()
	default:
		m.status = msg.label + " finished"
	}
}

// apply takes a newer snapshot. The editor is only replaced when the
// problem changes, so typing is never overwritten by a late snapshot.
func (m *Model) apply(snap practice.Snapshot) {
	if snap.Version <= m.snap.Version {
		return
	}
	m.take(snap)
}

func (m *Model) take(snap practice.Snapshot) {
	m.snap = snap
	id := ""
	if snap.Current != nil {
		id = snap.Current.ID
	}
	if id != m.problemID {
		m.problemID = id
		m.editor.SetValue(snap.Code)
		m.refreshDescription()
		m.desc.GotoTop()
	}
	m.refreshResult()
}

func (m *Model) columns() (int, int) {
	left := m.width * 45 / 100
	right := m.width - left - 1
	return max(left, 1), max(right, 1)
}

func (m *Model) layout() {
	leftWidth, rightWidth := m.columns()
	bodyHeight := max(m.height-2, 2)
	editorHeight := max(bodyHeight*3/5, 1)

	m.desc.Width = leftWidth
	m.desc.Height = bodyHeight
	m.editor.SetWidth(rightWidth)
	m.editor.SetHeight(editorHeight)
	m.result.Width = rightWidth
	m.result.Height = max(bodyHeight-editorHeight-1, 1)

	m.refreshDescription()
	m.refreshResult()
}

func (m *Model) refreshDescription() {
	if m.snap.Current == nil {
		m.desc.SetContent(mutedStyle.Render("No problem loaded."))
		return
	}
	m.desc.SetContent(markdown.Render(markdown.Problem(*m.snap.Current), m.desc.Width))
}

func (m *Model) refreshResult() {
	m.result.SetContent(RenderResult(m.snap, m.result.Width))
}

func (m *Model) renderHeader() string {
	p := m.snap.Current
	if p == nil {
		return headerStyle.Render("jsoj")
	}
	segments := []string{headerStyle.Render(p.Title)}
	if p.Difficulty != "" {
		segments = append(segments, string(p.Difficulty))
	}
	if record, ok := m.snap.Records[p.ID]; ok {
		segments = append(segments, fmt.Sprintf("%s %d/%d", stats.RecordStatus(record), record.PassedCount, record.TotalAttempts))
	}
	if m.snap.InReview {
		segments = append(segments, accentStyle.Render("in review"))
	}
	return strings.Join(segments, " · ")
}

func (m *Model) renderFooter() string {
	var segments []string
	if m.snap.Index >= 0 && len(m.snap.Problems) > 0 {
		segments = append(segments, fmt.Sprintf("Problem %d/%d", m.snap.Index+1, len(m.snap.Problems)))
	}
	segments = append(segments, fmt.Sprintf("Today %d", m.snap.TodayCount))
	if m.snap.Judging {
		segments = append(segments, "Judging...")
	}
	switch {
	case m.status != "":
		segments = append(segments, m.status)
	case m.snap.Notice != "":
		segments = append(segments, m.snap.Notice)
	}
	segments = append(segments, keyHelp)
	return footerStyle.Render(strings.Join(segments, "  "))
}
