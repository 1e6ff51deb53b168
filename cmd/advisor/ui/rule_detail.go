package ui

import (
	"context"
	"fmt"
	"strings"

	"advisor/internal/ack"
	"advisor/internal/notify"
	"advisor/internal/store"
	"advisor/internal/tags"
	"advisor/internal/types"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"golang.org/x/sync/errgroup"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

const descriptionHeight = 8

// RuleDetailModel shows one recommendation and the systems it affects.
type RuleDetailModel struct {
	backend  Backend
	store    *store.Store
	notifier notify.Dispatcher
	ruleID   string
	rule     types.Rule
	loaded   bool
	loading  bool
	err      error
	marked   map[string]bool
	table    table.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	styles   Styles
	width    int
}

// NewRuleDetailModel creates an empty detail page.
func NewRuleDetailModel(backend Backend, st *store.Store, notifier notify.Dispatcher, styles Styles) RuleDetailModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: " ", Width: 3},
			{Title: "Name", Width: 40},
			{Title: "Last seen", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	if notifier == nil {
		notifier = notify.Discard
	}
	m := RuleDetailModel{
		backend:  backend,
		store:    st,
		notifier: notifier,
		marked:   make(map[string]bool),
		table:    t,
		viewport: viewport.New(80, descriptionHeight),
		styles:   styles,
		width:    80,
	}
	m.renderer = newMarkdownRenderer(styles, 76)
	return m
}

func newMarkdownRenderer(styles Styles, wrap int) *glamour.TermRenderer {
	style := "light"
	if styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

// RuleID returns the rule being shown.
func (m RuleDetailModel) RuleID() string {
	return m.ruleID
}

// Open starts loading ruleID.
func (m RuleDetailModel) Open(ruleID string) (RuleDetailModel, tea.Cmd) {
	m.ruleID = ruleID
	m.rule = types.Rule{}
	m.loaded = false
	m.err = nil
	m.marked = make(map[string]bool)
	m.table.SetRows(nil)
	m.viewport.SetContent("")
	load := m.Load()
	return m, load
}

// Load fetches the rule, its affected hosts and the system records
// concurrently.
func (m *RuleDetailModel) Load() tea.Cmd {
	if m.ruleID == "" {
		return nil
	}
	m.loading = true
	backend := m.backend
	st := m.store
	ruleID := m.ruleID
	selected := st.SelectedTags()
	return func() tea.Msg {
		var (
			rule    types.Rule
			hostIDs []string
			systems []types.System
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			rule, err = backend.GetRule(ctx, ruleID)
			return err
		})
		g.Go(func() error {
			var err error
			hostIDs, err = backend.ListRuleSystems(ctx, ruleID, selected)
			return err
		})
		g.Go(func() error {
			var err error
			systems, err = backend.ListSystems(ctx, selected, "")
			return err
		})
		if err := g.Wait(); err != nil {
			return ruleDetailLoadedMsg{err: err}
		}

		affected := make(map[string]bool, len(hostIDs))
		for _, id := range hostIDs {
			affected[id] = true
		}
		listed := make([]types.System, 0, len(hostIDs))
		for _, sys := range systems {
			if affected[sys.ID] {
				listed = append(listed, sys)
			}
		}
		st.Dispatch(store.SetRule{Rule: rule})
		st.Dispatch(store.SetSystems{Systems: listed})
		return ruleDetailLoadedMsg{rule: rule, hostIDs: hostIDs}
	}
}

// SetSize updates the size.
func (m *RuleDetailModel) SetSize(w, h int) {
	m.width = w
	m.viewport.Width = w
	m.viewport.Height = descriptionHeight
	m.table.SetWidth(w)
	th := h - descriptionHeight - 7
	if th < 3 {
		th = 3
	}
	m.table.SetHeight(th)
	if w > 8 {
		m.renderer = newMarkdownRenderer(m.styles, w-4)
	}
	m.renderDescription()
}

// Marked returns the marked host ids in listing order.
func (m RuleDetailModel) Marked() []string {
	var out []string
	for _, sys := range m.store.State().OrderedSystems() {
		if m.marked[sys.ID] {
			out = append(out, sys.ID)
		}
	}
	return out
}

func (m RuleDetailModel) cursorSystem() (types.System, bool) {
	systems := m.store.State().OrderedSystems()
	i := m.table.Cursor()
	if i < 0 || i >= len(systems) {
		return types.System{}, false
	}
	return systems[i], true
}

// Update handles messages.
func (m RuleDetailModel) Update(msg tea.Msg) (RuleDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ruleDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.rule = msg.rule
		m.loaded = true
		m.renderDescription()
		m.updateRows()
		return m, nil

	case storeChangedMsg:
		if r, ok := m.store.Rule(m.ruleID); ok && m.loaded {
			m.rule = r
		}
		m.updateRows()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			return m, func() tea.Msg { return closeRuleMsg{} }
		case "r":
			load := m.Load()
			return m, load
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case " ":
			if sys, ok := m.cursorSystem(); ok {
				if m.marked[sys.ID] {
					delete(m.marked, sys.ID)
				} else {
					m.marked[sys.ID] = true
				}
				m.updateRows()
			}
			return m, nil
		case "a":
			for _, sys := range m.store.State().OrderedSystems() {
				m.marked[sys.ID] = true
			}
			m.updateRows()
			return m, nil
		case "d":
			if !m.loaded {
				return m, nil
			}
			sub := ack.Submission{Rule: m.rule}
			if marked := m.Marked(); len(marked) > 0 {
				sub.Hosts = marked
			} else if sys, ok := m.cursorSystem(); ok {
				host := sys
				sub.Host = &host
			}
			return m, func() tea.Msg { return openDisableMsg{sub: sub} }
		case "D":
			if !m.loaded {
				return m, nil
			}
			sub := ack.Submission{Rule: m.rule}
			return m, func() tea.Msg { return openDisableMsg{sub: sub} }
		case "y":
			if m.ruleID == "" {
				return m, nil
			}
			if err := clipboardWriteAll(m.ruleID); err != nil {
				notify.Failure(m.notifier, fmt.Errorf("copy rule id: %w", err))
			} else {
				m.notifier.Notify(notify.Notification{
					Variant: notify.VariantInfo,
					Title:   "Rule ID copied",
					Timeout: true,
				})
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *RuleDetailModel) renderDescription() {
	if !m.loaded {
		return
	}
	var md strings.Builder
	if m.rule.Summary != "" {
		md.WriteString(m.rule.Summary)
		md.WriteString("\n\n")
	}
	if m.rule.Reason != "" {
		md.WriteString("## Reason\n\n")
		md.WriteString(m.rule.Reason)
	}
	content := md.String()
	if m.renderer != nil {
		if out, err := m.renderer.Render(content); err == nil {
			content = out
		}
	}
	m.viewport.SetContent(content)
}

func (m *RuleDetailModel) updateRows() {
	systems := m.store.State().OrderedSystems()
	rows := make([]table.Row, 0, len(systems))
	for _, sys := range systems {
		mark := "[ ]"
		if m.marked[sys.ID] {
			mark = "[x]"
		}
		seen := "-"
		if !sys.LastSeen.IsZero() {
			seen = sys.LastSeen.Format("2006-01-02 15:04")
		}
		rows = append(rows, table.Row{mark, sys.DisplayName, seen})
	}
	// Drop marks for systems that are no longer listed.
	listed := make(map[string]bool, len(systems))
	for _, sys := range systems {
		listed[sys.ID] = true
	}
	for id := range m.marked {
		if !listed[id] {
			delete(m.marked, id)
		}
	}
	m.table.SetRows(rows)
}

// View renders the page.
func (m RuleDetailModel) View() string {
	var sb strings.Builder

	switch {
	case m.err != nil:
		sb.WriteString(m.styles.Error.Render("Could not load recommendation: " + m.err.Error()))
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render("[r] retry  [esc] back"))
		return sb.String()
	case !m.loaded:
		sb.WriteString(m.styles.Muted.Render("Loading recommendation..."))
		return sb.String()
	}

	sb.WriteString(m.styles.Title.Render(m.rule.Description))
	sb.WriteString("\n")
	status := m.styles.Success.Render("Enabled")
	if !m.rule.Enabled() {
		status = m.styles.Warning.Render("Disabled")
	}
	meta := []string{
		"Total risk: " + riskLabels[m.rule.TotalRisk],
		"Category: " + m.rule.Category.Name,
		status,
	}
	if m.rule.HostsAckedCount > 0 {
		meta = append(meta, fmt.Sprintf("Disabled for %d systems", m.rule.HostsAckedCount))
	}
	if m.rule.RebootRequired {
		meta = append(meta, "Reboot required")
	}
	sb.WriteString(m.styles.Subtitle.Render(strings.Join(meta, "  |  ")))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render(m.ruleID))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.styles.RenderDivider(m.width))
	sb.WriteString("\n")

	systems := m.store.State().OrderedSystems()
	if len(systems) == 0 {
		sb.WriteString(m.styles.Muted.Render("No affected systems."))
	} else {
		sb.WriteString(m.table.View())
	}
	sb.WriteString("\n")

	hint := "[space] mark  [a] mark all  [d] disable  [D] disable everywhere  [y] copy id  [esc] back"
	if len(m.marked) > 0 {
		hint = fmt.Sprintf("%d marked  ", len(m.marked)) + hint
	}
	if sel := tags.DisplayTag(strings.Join(m.store.SelectedTags(), ",")); sel != "" {
		hint += "  tags: " + sel
	}
	sb.WriteString(m.styles.Muted.Render(hint))
	return sb.String()
}
