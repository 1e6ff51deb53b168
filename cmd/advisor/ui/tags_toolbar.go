package ui

import (
	"fmt"
	"strings"

	"advisor/internal/tags"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Toolbar titles.
const (
	titleFilterResults = "Filter results"
	titleAllSystems    = "All systems"
	titleNoTags        = "No tags"
	titleManageTags    = "Manage tags"
)

// TagsToolbarModel is the tag selector shown above every page.
type TagsToolbarModel struct {
	sync   *tags.Synchronizer
	search textinput.Model
	snap   tags.Snapshot
	cursor int
	styles Styles
	width  int
}

// NewTagsToolbarModel creates the toolbar for sync.
func NewTagsToolbarModel(sync *tags.Synchronizer, styles Styles) TagsToolbarModel {
	ti := textinput.New()
	ti.Placeholder = "Filter tags"
	ti.CharLimit = 100
	ti.Width = 30

	return TagsToolbarModel{
		sync:   sync,
		search: ti,
		snap:   sync.Snapshot(),
		styles: styles,
	}
}

// Open reports whether the selector is expanded.
func (m TagsToolbarModel) Open() bool {
	return m.snap.Open
}

// SetWidth updates the available width.
func (m *TagsToolbarModel) SetWidth(w int) {
	m.width = w
}

// Toggle opens or closes the selector. A toolbar without tags stays closed.
func (m TagsToolbarModel) Toggle() (TagsToolbarModel, tea.Cmd) {
	open := !m.snap.Open
	if open && m.snap.NoTags() {
		return m, nil
	}
	m.sync.SetOpen(open)
	m.search.SetValue("")
	m.cursor = 0
	var cmd tea.Cmd
	if open {
		cmd = m.search.Focus()
	} else {
		m.search.Blur()
	}
	m.snap = m.sync.Snapshot()
	return m, cmd
}

// Update handles messages.
func (m TagsToolbarModel) Update(msg tea.Msg) (TagsToolbarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tagsChangedMsg:
		m.snap = msg.snap
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if !m.snap.Open {
			return m, nil
		}
		shown, _ := m.sync.Visible()
		switch msg.String() {
		case "esc":
			return m.Toggle()
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			// The last row is the manage-tags link.
			if m.cursor < len(shown) {
				m.cursor++
			}
			return m, nil
		case "enter":
			// Space belongs to the search input.
			if m.cursor == len(shown) {
				return m, func() tea.Msg { return openManageTagsMsg{} }
			}
			if m.cursor < len(shown) {
				m.sync.Toggle(shown[m.cursor])
				m.snap = m.sync.Snapshot()
				return m, func() tea.Msg { return selectionChangedMsg{} }
			}
			return m, nil
		}

		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if v := m.search.Value(); v != before {
			m.sync.SetSearchText(v)
			m.cursor = 0
		}
		return m, cmd
	}
	return m, nil
}

func (m *TagsToolbarModel) clampCursor() {
	max := len(m.snap.Tags)
	if max > 0 {
		shown, _ := m.sync.Visible()
		max = len(shown)
	}
	if m.cursor > max {
		m.cursor = max
	}
}

// Title is the selector label.
func (m TagsToolbarModel) Title() string {
	if m.snap.NoTags() {
		return titleNoTags
	}
	if len(m.snap.Selected) == 0 {
		return titleFilterResults + " " + titleAllSystems
	}
	names := make([]string, len(m.snap.Selected))
	for i, t := range m.snap.Selected {
		names[i] = tags.DisplayTag(t)
	}
	return titleFilterResults + ": " + strings.Join(names, ", ")
}

// View renders the toolbar.
func (m TagsToolbarModel) View() string {
	var sb strings.Builder

	label := m.styles.Bold.Render("Tags ") + m.Title()
	if m.snap.NoTags() {
		label = m.styles.Muted.Render("Tags " + m.Title())
	}
	hint := "[t] select"
	if m.snap.Open {
		hint = "[esc] close"
	}
	sb.WriteString(label + "  " + m.styles.Muted.Render(hint))
	if m.snap.Loading {
		sb.WriteString(m.styles.Muted.Render("  loading..."))
	}
	if !m.snap.Open {
		return sb.String()
	}

	sb.WriteString("\n")
	sb.WriteString(m.search.View())
	sb.WriteString("\n")
	sb.WriteString(m.styles.RenderDivider(36))
	sb.WriteString("\n")

	shown, more := m.sync.Visible()
	selected := make(map[string]bool, len(m.snap.Selected))
	for _, t := range m.snap.Selected {
		selected[t] = true
	}
	for i, t := range shown {
		box := "[ ]"
		if selected[t] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, tags.DisplayTag(t))
		if i == m.cursor {
			line = m.styles.Title.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line + "\n")
	}

	link := titleManageTags
	if more > 0 {
		link = fmt.Sprintf("%d more", more)
	}
	link = m.styles.Link.Render(link)
	if m.cursor == len(shown) {
		link = "> " + link
	} else {
		link = "  " + link
	}
	sb.WriteString(link)
	return sb.String()
}
