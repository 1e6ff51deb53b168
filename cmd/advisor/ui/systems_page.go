package ui

import (
	"context"
	"fmt"
	"strings"

	"advisor/internal/store"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const systemsPageTitle = "Insights systems"

// SystemsPageModel lists the systems in the current tag scope.
type SystemsPageModel struct {
	backend       Backend
	store         *store.Store
	table         table.Model
	search        textinput.Model
	searchFocused bool
	loading       bool
	err           error
	styles        Styles
}

// NewSystemsPageModel creates the systems page.
func NewSystemsPageModel(backend Backend, st *store.Store, styles Styles) SystemsPageModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 40},
			{Title: "Recommendations", Width: 16},
			{Title: "Last seen", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	fi := textinput.New()
	fi.Placeholder = "Filter by name..."
	fi.CharLimit = 100
	fi.Width = 40

	return SystemsPageModel{
		backend: backend,
		store:   st,
		table:   t,
		search:  fi,
		styles:  styles,
	}
}

// Load fetches the systems for the selected tags and name filter.
func (m *SystemsPageModel) Load() tea.Cmd {
	m.loading = true
	backend := m.backend
	selected := m.store.SelectedTags()
	name := strings.TrimSpace(m.search.Value())
	return func() tea.Msg {
		systems, err := backend.ListSystems(context.Background(), selected, name)
		return systemsLoadedMsg{systems: systems, err: err}
	}
}

// SetSize updates the size.
func (m *SystemsPageModel) SetSize(w, h int) {
	m.table.SetWidth(w)
	th := h - 4
	if th < 3 {
		th = 3
	}
	m.table.SetHeight(th)
}

// InputFocused reports whether keystrokes go to the search field.
func (m SystemsPageModel) InputFocused() bool {
	return m.searchFocused
}

// Update handles messages.
func (m SystemsPageModel) Update(msg tea.Msg) (SystemsPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case systemsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.store.Dispatch(store.SetSystems{Systems: msg.systems})
			m.updateRows()
		}
		return m, nil

	case storeChangedMsg:
		m.updateRows()
		return m, nil

	case tea.KeyMsg:
		if m.searchFocused {
			switch msg.String() {
			case "esc":
				m.searchFocused = false
				m.search.Blur()
				return m, nil
			case "enter":
				m.searchFocused = false
				m.search.Blur()
				load := m.Load()
				return m, load
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "/":
			m.searchFocused = true
			cmd := m.search.Focus()
			return m, cmd
		case "r":
			load := m.Load()
			return m, load
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *SystemsPageModel) updateRows() {
	systems := m.store.State().OrderedSystems()
	rows := make([]table.Row, 0, len(systems))
	for _, sys := range systems {
		seen := "-"
		if !sys.LastSeen.IsZero() {
			seen = sys.LastSeen.Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{sys.DisplayName, fmt.Sprint(sys.Hits), seen})
	}
	m.table.SetRows(rows)
}

// View renders the page.
func (m SystemsPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(systemsPageTitle))
	sb.WriteString("  ")
	if m.searchFocused {
		sb.WriteString(m.search.View())
	} else if v := m.search.Value(); v != "" {
		sb.WriteString(m.styles.Muted.Render("name: " + v + "  [/] edit"))
	} else {
		sb.WriteString(m.styles.Muted.Render("[/] search  [r] reload"))
	}
	sb.WriteString("\n")

	systems := m.store.State().OrderedSystems()
	switch {
	case m.err != nil:
		sb.WriteString(m.styles.Error.Render("Could not load systems: " + m.err.Error()))
	case m.loading && len(systems) == 0:
		sb.WriteString(m.styles.Muted.Render("Loading systems..."))
	case len(systems) == 0:
		sb.WriteString(m.styles.Muted.Render("No systems found."))
	default:
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d systems", len(systems))))
	}
	return sb.String()
}
