package ui

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"advisor/internal/ack"
	"advisor/internal/catalog"
	"advisor/internal/filters"
	"advisor/internal/store"
	"advisor/internal/types"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const rulesPageTitle = "Recommendations"

var riskLabels = map[int]string{4: "Critical", 3: "Important", 2: "Moderate", 1: "Low"}

// RulesPageModel lists recommendations under the active filters and tags.
type RulesPageModel struct {
	backend       Backend
	store         *store.Store
	ctrl          *filters.Controller
	chips         FilterChipsModel
	table         table.Model
	search        textinput.Model
	searchFocused bool
	order         []string
	loading       bool
	err           error
	styles        Styles
	width         int
	height        int
}

// NewRulesPageModel creates the rules page.
func NewRulesPageModel(backend Backend, st *store.Store, ctrl *filters.Controller, styles Styles) RulesPageModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 50},
			{Title: "Total risk", Width: 12},
			{Title: "Systems", Width: 8},
			{Title: "Status", Width: 10},
			{Title: "Ansible", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	fi := textinput.New()
	fi.Placeholder = "Filter by name..."
	fi.CharLimit = 100
	fi.Width = 40
	if v, ok := ctrl.Filters().Get("text"); ok {
		fi.SetValue(v)
	}

	return RulesPageModel{
		backend: backend,
		store:   st,
		ctrl:    ctrl,
		chips:   NewFilterChipsModel(ctrl, styles),
		table:   t,
		search:  fi,
		styles:  styles,
	}
}

// RulesQuery builds the rule listing query from filters and selected tags.
func RulesQuery(set *filters.Set, selectedTags []string) url.Values {
	q := set.Values()
	if len(selectedTags) > 0 {
		q.Set("tags", strings.Join(selectedTags, ","))
	}
	return q
}

// Load fetches the rules for the current filters and tags.
func (m *RulesPageModel) Load() tea.Cmd {
	m.loading = true
	backend := m.backend
	query := RulesQuery(m.ctrl.Filters(), m.store.SelectedTags())
	return func() tea.Msg {
		rules, err := backend.ListRules(context.Background(), query)
		return rulesLoadedMsg{rules: rules, err: err}
	}
}

// SetSize updates the size.
func (m *RulesPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetWidth(w)
	th := h - 8
	if th < 3 {
		th = 3
	}
	m.table.SetHeight(th)
}

// InputFocused reports whether keystrokes go to a text field.
func (m RulesPageModel) InputFocused() bool {
	return m.searchFocused
}

// Selected returns the rule under the cursor.
func (m RulesPageModel) Selected() (types.Rule, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.order) {
		return types.Rule{}, false
	}
	return m.store.Rule(m.order[i])
}

// Update handles messages.
func (m RulesPageModel) Update(msg tea.Msg) (RulesPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case rulesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.store.Dispatch(store.SetRules{Rules: msg.rules})
		m.order = m.order[:0]
		for _, r := range msg.rules {
			m.order = append(m.order, r.RuleID)
		}
		m.updateRows()
		return m, nil

	case filtersChangedMsg:
		var cmd tea.Cmd
		m.chips, cmd = m.chips.Update(msg)
		load := m.Load()
		return m, tea.Batch(cmd, load)

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
				m.ctrl.SetFilter("text", strings.TrimSpace(m.search.Value()))
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
		if m.chips.Focused() {
			var cmd tea.Cmd
			m.chips, cmd = m.chips.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.searchFocused = true
			cmd := m.search.Focus()
			return m, cmd
		case "f":
			m.chips.Focus()
			return m, nil
		case "c":
			m.ctrl.RemoveAllFilters()
			m.search.SetValue("")
			return m, nil
		case "r":
			load := m.Load()
			return m, load
		case "1", "2", "3", "4":
			toggleFilterValue(m.ctrl, string(catalog.TotalRisk), msg.String())
			return m, nil
		case "s":
			cycleRuleStatus(m.ctrl)
			return m, nil
		case "p":
			toggleFilterValue(m.ctrl, string(catalog.HasPlaybook), "true")
			return m, nil
		case "b":
			toggleFilterValue(m.ctrl, string(catalog.Reboot), "true")
			return m, nil
		case "i":
			toggleFilterValue(m.ctrl, string(catalog.Impacting), "true")
			return m, nil
		case "enter":
			if rule, ok := m.Selected(); ok {
				return m, func() tea.Msg { return openRuleMsg{ruleID: rule.RuleID} }
			}
			return m, nil
		case "d":
			if rule, ok := m.Selected(); ok {
				return m, func() tea.Msg { return openDisableMsg{sub: ack.Submission{Rule: rule}} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// toggleFilterValue adds value to the comma list under key, or removes it
// when present.
func toggleFilterValue(ctrl *filters.Controller, key, value string) {
	current, _ := ctrl.Filters().Get(key)
	for _, v := range types.SplitList(current) {
		if v == value {
			ctrl.RemoveFilterValue(key, value)
			return
		}
	}
	if current == "" {
		ctrl.SetFilter(key, value)
		return
	}
	ctrl.SetFilter(key, current+","+value)
}

// cycleRuleStatus steps rule_status through enabled, disabled, all and unset.
func cycleRuleStatus(ctrl *filters.Controller) {
	key := string(catalog.RuleStatus)
	current, _ := ctrl.Filters().Get(key)
	next := map[string]string{"": "enabled", "enabled": "disabled", "disabled": "all", "all": ""}[current]
	ctrl.SetFilter(key, next)
}

func (m *RulesPageModel) updateRows() {
	rows := make([]table.Row, 0, len(m.order))
	for _, id := range m.order {
		r, ok := m.store.Rule(id)
		if !ok {
			continue
		}
		ansible := "No"
		if r.PlaybookCount > 0 {
			ansible = "Yes"
		}
		status := "Enabled"
		if !r.Enabled() {
			status = "Disabled"
		}
		risk := riskLabels[r.TotalRisk]
		if risk == "" {
			risk = fmt.Sprint(r.TotalRisk)
		}
		rows = append(rows, table.Row{
			r.Description,
			risk,
			fmt.Sprint(r.ImpactedSystemsCount),
			status,
			ansible,
		})
	}
	m.table.SetRows(rows)
}

// View renders the page.
func (m RulesPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render(rulesPageTitle))
	sb.WriteString("  ")
	if m.searchFocused {
		sb.WriteString(m.search.View())
	} else {
		sb.WriteString(m.styles.Muted.Render("[/] search  [1-4] risk  [s] status  [p] ansible  [b] reboot  [i] impacting  [f] chips  [c] clear"))
	}
	sb.WriteString("\n")

	if chips := m.chips.View(); chips != "" {
		sb.WriteString(chips)
		sb.WriteString("\n")
	}

	switch {
	case m.err != nil:
		sb.WriteString(m.styles.Error.Render("Could not load recommendations: " + m.err.Error()))
	case m.loading && len(m.order) == 0:
		sb.WriteString(m.styles.Muted.Render("Loading recommendations..."))
	case len(m.order) == 0:
		sb.WriteString(m.styles.Muted.Render("No recommendations match the current filters."))
	default:
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d recommendations  [enter] details  [d] disable", len(m.order))))
	}
	return sb.String()
}
