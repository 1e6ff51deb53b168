package ui

import (
	"advisor/internal/filters"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const clearFiltersLabel = "Clear filters"

// FilterChipsModel renders the active filters as removable chips.
type FilterChipsModel struct {
	ctrl    *filters.Controller
	groups  []filters.ChipGroup
	cursor  int
	focused bool
	styles  Styles
}

// NewFilterChipsModel creates the chip row for ctrl.
func NewFilterChipsModel(ctrl *filters.Controller, styles Styles) FilterChipsModel {
	m := FilterChipsModel{ctrl: ctrl, styles: styles}
	m.Refresh()
	return m
}

// Refresh rereads the chips from the controller.
func (m *FilterChipsModel) Refresh() {
	m.groups = m.ctrl.Chips()
	if n := m.count(); m.cursor > n {
		m.cursor = n
	}
}

// Focus gives the chip row keyboard focus. Nothing to focus yields false.
func (m *FilterChipsModel) Focus() bool {
	if m.Empty() {
		return false
	}
	m.focused = true
	return true
}

// Blur releases focus.
func (m *FilterChipsModel) Blur() {
	m.focused = false
}

// Focused reports whether the row has focus.
func (m FilterChipsModel) Focused() bool {
	return m.focused
}

// Empty reports whether no chip is shown.
func (m FilterChipsModel) Empty() bool {
	return len(m.groups) == 0
}

func (m FilterChipsModel) count() int {
	n := 0
	for _, g := range m.groups {
		n += len(g.Chips)
	}
	return n
}

func (m FilterChipsModel) chipAt(i int) (filters.Chip, bool) {
	for _, g := range m.groups {
		if i < len(g.Chips) {
			return g.Chips[i], true
		}
		i -= len(g.Chips)
	}
	return filters.Chip{}, false
}

// Update handles messages.
func (m FilterChipsModel) Update(msg tea.Msg) (FilterChipsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case filtersChangedMsg:
		m.Refresh()
		if m.Empty() {
			m.focused = false
		}
		return m, nil

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch msg.String() {
		case "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor < m.count() {
				m.cursor++
			}
		case "esc":
			m.focused = false
		case "enter", "x", "backspace", "delete":
			if chip, ok := m.chipAt(m.cursor); ok {
				m.ctrl.RemoveFilterValue(string(chip.Key), chip.Value)
			} else {
				m.ctrl.RemoveAllFilters()
				m.cursor = 0
			}
			m.Refresh()
			if m.Empty() {
				m.focused = false
			}
		}
	}
	return m, nil
}

// View renders the chip row; empty when no filter is active.
func (m FilterChipsModel) View() string {
	if m.Empty() {
		return ""
	}
	var blocks []string
	idx := 0
	for _, g := range m.groups {
		blocks = append(blocks, m.styles.ChipGroup.Render(g.Title+":"))
		for _, c := range g.Chips {
			style := m.styles.Chip
			if m.focused && idx == m.cursor {
				style = m.styles.ChipSelected
			}
			blocks = append(blocks, style.Render(c.Label+" ×"), " ")
			idx++
		}
		blocks = append(blocks, " ")
	}
	clear := m.styles.Link.Render(clearFiltersLabel)
	if m.focused && m.cursor == idx {
		clear = m.styles.ChipSelected.Render(clearFiltersLabel)
	}
	blocks = append(blocks, clear)
	return lipgloss.JoinHorizontal(lipgloss.Center, blocks...)
}
