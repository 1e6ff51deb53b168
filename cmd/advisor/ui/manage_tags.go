package ui

import (
	"fmt"

	"advisor/internal/tags"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tagItem adapts a served tag to list.Item.
type tagItem struct {
	tag      string
	selected bool
}

func (i tagItem) Title() string {
	box := "[ ]"
	if i.selected {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s", box, tags.DisplayTag(i.tag))
}
func (i tagItem) Description() string { return i.tag }
func (i tagItem) FilterValue() string { return tags.DisplayTag(i.tag) }

// ManageTagsModel lists every tag with its selection state.
type ManageTagsModel struct {
	sync   *tags.Synchronizer
	list   list.Model
	styles Styles
}

// NewManageTagsModel creates the full tag management view.
func NewManageTagsModel(sync *tags.Synchronizer, styles Styles) ManageTagsModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false

	l := list.New(nil, delegate, 0, 0)
	l.Title = titleManageTags
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(styles.Theme.Primary)

	m := ManageTagsModel{sync: sync, list: l, styles: styles}
	m.Refresh()
	return m
}

// SetSize updates the list size.
func (m *ManageTagsModel) SetSize(w, h int) {
	m.list.SetSize(w, h)
}

// Refresh rebuilds the items from the synchronizer.
func (m *ManageTagsModel) Refresh() {
	snap := m.sync.Snapshot()
	selected := make(map[string]bool, len(snap.Selected))
	for _, t := range snap.Selected {
		selected[t] = true
	}
	items := make([]list.Item, len(snap.Tags))
	for i, t := range snap.Tags {
		items[i] = tagItem{tag: t, selected: selected[t]}
	}
	m.list.SetItems(items)
}

// Update handles messages.
func (m ManageTagsModel) Update(msg tea.Msg) (ManageTagsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tagsChangedMsg:
		m.Refresh()
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "esc", "q":
				if m.list.FilterState() == list.FilterApplied && msg.String() == "esc" {
					break
				}
				return m, func() tea.Msg { return closeManageTagsMsg{} }
			case "enter", " ":
				if item, ok := m.list.SelectedItem().(tagItem); ok {
					m.sync.Toggle(item.tag)
					m.Refresh()
					return m, func() tea.Msg { return selectionChangedMsg{} }
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list.
func (m ManageTagsModel) View() string {
	return m.list.View() + "\n" + m.styles.Muted.Render("[space] toggle  [/] filter  [esc] close")
}
