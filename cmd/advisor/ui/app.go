package ui

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"advisor/internal/ack"
	"advisor/internal/filters"
	"advisor/internal/location"
	"advisor/internal/logging"
	"advisor/internal/notify"
	"advisor/internal/store"
	"advisor/internal/tags"
	"advisor/internal/types"

	tea "github.com/charmbracelet/bubbletea"
)

// Backend is the subset of the REST client the pages read from.
type Backend interface {
	ListRules(ctx context.Context, query url.Values) ([]types.Rule, error)
	GetRule(ctx context.Context, ruleID string) (types.Rule, error)
	ListRuleSystems(ctx context.Context, ruleID string, tags []string) ([]string, error)
	ListSystems(ctx context.Context, tags []string, displayName string) ([]types.System, error)
}

// Page identifies the visible page.
type Page int

const (
	PageRules Page = iota
	PageSystems
	PageRule
)

// Paths of the pages in the location.
const (
	RulesPath   = "/recommendations"
	SystemsPath = "/systems"
)

// Deps are the collaborators the app is built from.
type Deps struct {
	Backend  Backend
	Store    *store.Store
	Location *location.Location
	Tags     *tags.Synchronizer
	Filters  *filters.Controller
	Acks     *ack.Orchestrator
	Toasts   *notify.Center
	Styles   Styles
	// StartPage selects the first page.
	StartPage Page
}

// Model is the root bubbletea model.
type Model struct {
	deps    Deps
	bus     *eventBus
	unsubs  []func()
	log     *logging.Logger
	page    Page
	layout  LayoutConfig
	ready   bool
	tagsSet bool
	// lastTags is the selection the visible page was last loaded for.
	lastTags   []string
	filterKeys []string

	toolbar    TagsToolbarModel
	manageTags ManageTagsModel
	showManage bool
	modal      DisableRuleModel
	rules      RulesPageModel
	systems    SystemsPageModel
	detail     RuleDetailModel
	toasts     ToastsModel
}

// NewModel wires the pages to deps. Subscriptions are released by Close.
func NewModel(deps Deps) Model {
	m := Model{
		deps:       deps,
		bus:        newEventBus(),
		log:        logging.Get(logging.CategoryUI),
		page:       deps.StartPage,
		layout:     NewLayoutConfig(MinimumTerminalWidth, MinimumTerminalHeight),
		filterKeys: deps.Filters.Filters().Keys(),
		toolbar:    NewTagsToolbarModel(deps.Tags, deps.Styles),
		manageTags: NewManageTagsModel(deps.Tags, deps.Styles),
		modal:      NewDisableRuleModel(deps.Acks, deps.Styles),
		rules:      NewRulesPageModel(deps.Backend, deps.Store, deps.Filters, deps.Styles),
		systems:    NewSystemsPageModel(deps.Backend, deps.Store, deps.Styles),
		detail:     NewRuleDetailModel(deps.Backend, deps.Store, deps.Toasts, deps.Styles),
		toasts:     NewToastsModel(deps.Toasts, deps.Styles),
	}
	if m.page == PageRule {
		m.page = PageRules
	}

	bus := m.bus
	m.unsubs = append(m.unsubs,
		deps.Tags.Subscribe(func(s tags.Snapshot) { bus.send(tagsChangedMsg{snap: s}) }),
		deps.Store.Subscribe(func(store.State) { bus.send(storeChangedMsg{}) }),
		deps.Filters.Subscribe(func(*filters.Set) { bus.send(filtersChangedMsg{}) }),
		deps.Toasts.Subscribe(func(notify.Notification) { bus.send(toastMsg{}) }),
	)
	return m
}

// Close releases subscriptions and stops the tag synchronizer.
func (m Model) Close() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.deps.Tags.Close()
}

// Page returns the visible page.
func (m Model) Page() Page {
	return m.page
}

// Init mounts the tag synchronizer and starts listening to the bus.
func (m Model) Init() tea.Cmd {
	sync := m.deps.Tags
	return tea.Batch(
		m.bus.wait(),
		func() tea.Msg {
			return tagsMountedMsg{err: sync.Mount(context.Background())}
		},
	)
}

// loadPage reloads the visible page for the current selection.
func (m *Model) loadPage() tea.Cmd {
	m.lastTags = m.deps.Store.SelectedTags()
	switch m.page {
	case PageSystems:
		return m.systems.Load()
	case PageRule:
		return m.detail.Load()
	default:
		return m.rules.Load()
	}
}

// selectionChanged reports whether the selected tags differ from the ones
// the page was loaded for. The first initialization always counts.
func (m *Model) selectionChanged() bool {
	current := m.deps.Store.SelectedTags()
	if current == nil {
		return false
	}
	if !m.tagsSet {
		m.tagsSet = true
		return true
	}
	if len(current) != len(m.lastTags) {
		return true
	}
	for i := range current {
		if current[i] != m.lastTags[i] {
			return true
		}
	}
	return false
}

// navigate switches pages and moves the location with it.
func (m *Model) navigate(p Page) tea.Cmd {
	m.page = p
	target := RulesPath
	switch p {
	case PageSystems:
		target = SystemsPath
	case PageRules:
		if q := m.deps.Filters.Filters().Encode(); q != "" {
			target += "?" + q
		}
	case PageRule:
		target = RulesPath + "/" + url.PathEscape(m.detail.RuleID())
	}
	if err := m.deps.Tags.Navigate(target); err != nil {
		m.log.Warn("navigate %s: %v", target, err)
	}
	if p == PageRule {
		return nil
	}
	return m.loadPage()
}

// writeFilters mirrors the filter set into the location query.
func (m *Model) writeFilters() {
	if m.page != PageRules {
		return
	}
	set := m.deps.Filters.Filters()
	keys := set.Keys()
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
		raw, _ := set.Get(k)
		vals := types.SplitList(raw)
		for i, v := range vals {
			vals[i] = url.QueryEscape(v)
		}
		m.deps.Location.ReplaceParam(k, strings.Join(vals, ","))
	}
	for _, k := range m.filterKeys {
		if !present[k] {
			m.deps.Location.ReplaceParam(k, "")
		}
	}
	m.filterKeys = keys
}

func (m *Model) resize(w, h int) {
	m.layout = NewLayoutConfig(w, h)
	pw, ph := m.layout.PageWidth(), m.layout.PageHeight()
	m.toolbar.SetWidth(pw)
	m.toasts.SetWidth(pw)
	m.manageTags.SetSize(pw, ph)
	m.rules.SetSize(pw, ph)
	m.systems.SetSize(pw, ph)
	m.detail.SetSize(pw, ph)
}

// Update routes messages. Keys go to the first of: open tag selector, open
// modal, manage-tags view, visible page.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tagsMountedMsg:
		if msg.err != nil {
			m.log.Warn("tag mount: %v", msg.err)
		}
		if m.selectionChanged() {
			load := m.loadPage()
			return m, load
		}
		return m, nil

	case tagsChangedMsg:
		var cmd tea.Cmd
		m.toolbar, cmd = m.toolbar.Update(msg)
		cmds = append(cmds, cmd, m.bus.wait())
		if m.showManage {
			m.manageTags, cmd = m.manageTags.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case storeChangedMsg:
		cmds = append(cmds, m.bus.wait())
		if m.selectionChanged() {
			cmds = append(cmds, m.loadPage())
		}
		var cmd tea.Cmd
		switch m.page {
		case PageRules:
			m.rules, cmd = m.rules.Update(msg)
		case PageSystems:
			m.systems, cmd = m.systems.Update(msg)
		case PageRule:
			m.detail, cmd = m.detail.Update(msg)
		}
		return m, tea.Batch(append(cmds, cmd)...)

	case selectionChangedMsg:
		if m.selectionChanged() {
			load := m.loadPage()
			return m, load
		}
		return m, nil

	case filtersChangedMsg:
		m.writeFilters()
		var cmd tea.Cmd
		m.rules, cmd = m.rules.Update(msg)
		return m, tea.Batch(cmd, m.bus.wait())

	case toastMsg:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Update(msg)
		return m, tea.Batch(cmd, m.bus.wait())

	case expireToastsMsg:
		m.toasts, _ = m.toasts.Update(msg)
		return m, nil

	case rulesLoadedMsg:
		var cmd tea.Cmd
		m.rules, cmd = m.rules.Update(msg)
		return m, cmd

	case systemsLoadedMsg:
		var cmd tea.Cmd
		m.systems, cmd = m.systems.Update(msg)
		return m, cmd

	case ruleDetailLoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case openRuleMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Open(msg.ruleID)
		m.lastTags = m.deps.Store.SelectedTags()
		load := m.navigate(PageRule)
		return m, tea.Batch(cmd, load)

	case closeRuleMsg:
		// The rule page is only entered from the rules list, so history
		// holds that list with its filters.
		if m.deps.Tags.Back() {
			m.page = PageRules
			load := m.loadPage()
			return m, load
		}
		load := m.navigate(PageRules)
		return m, load

	case openManageTagsMsg:
		if m.toolbar.Open() {
			m.toolbar, _ = m.toolbar.Toggle()
		}
		m.showManage = true
		m.manageTags.Refresh()
		return m, nil

	case closeManageTagsMsg:
		m.showManage = false
		return m, nil

	case openDisableMsg:
		sub := msg.sub
		bus := m.bus
		sub.AfterFn = func() { bus.send(ackCompletedMsg{}) }
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Open(sub)
		return m, cmd

	case ackResultMsg:
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd

	case ackCompletedMsg:
		load := m.loadPage()
		return m, tea.Batch(m.bus.wait(), load)

	case closeModalMsg:
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Spinner ticks and other component messages.
	var cmd tea.Cmd
	if m.modal.IsOpen() {
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	}
	return m.updatePage(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch {
	case m.toolbar.Open():
		m.toolbar, cmd = m.toolbar.Update(msg)
		return m, cmd
	case m.modal.IsOpen():
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	case m.showManage:
		m.manageTags, cmd = m.manageTags.Update(msg)
		return m, cmd
	}

	if !m.pageInputFocused() {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "t":
			m.toolbar, cmd = m.toolbar.Toggle()
			return m, cmd
		case "X":
			m.toasts, cmd = m.toasts.Update(msg)
			return m, cmd
		case "tab":
			if m.page == PageSystems {
				load := m.navigate(PageRules)
				return m, load
			}
			load := m.navigate(PageSystems)
			return m, load
		}
	}
	return m.updatePage(msg)
}

func (m Model) pageInputFocused() bool {
	switch m.page {
	case PageRules:
		return m.rules.InputFocused()
	case PageSystems:
		return m.systems.InputFocused()
	}
	return false
}

func (m Model) updatePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case PageRules:
		m.rules, cmd = m.rules.Update(msg)
	case PageSystems:
		m.systems, cmd = m.systems.Update(msg)
	case PageRule:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

// View renders the header, tag toolbar, the page or an overlay, and toasts.
func (m Model) View() string {
	s := m.deps.Styles
	var sb strings.Builder

	tabs := []string{"Recommendations", "Systems"}
	active := 0
	if m.page == PageSystems {
		active = 1
	}
	for i, t := range tabs {
		if i == active {
			tabs[i] = s.Bold.Render("[" + t + "]")
		} else {
			tabs[i] = s.Muted.Render(" " + t + " ")
		}
	}
	sb.WriteString(s.Header.Render("Advisor  " + strings.Join(tabs, " ")))
	sb.WriteString("\n")
	sb.WriteString(m.toolbar.View())
	sb.WriteString("\n")

	switch {
	case m.modal.IsOpen():
		sb.WriteString(m.modal.View())
	case m.showManage:
		sb.WriteString(m.manageTags.View())
	default:
		switch m.page {
		case PageSystems:
			sb.WriteString(m.systems.View())
		case PageRule:
			sb.WriteString(m.detail.View())
		default:
			sb.WriteString(m.rules.View())
		}
	}

	if toasts := m.toasts.View(); toasts != "" {
		sb.WriteString("\n")
		sb.WriteString(toasts)
	}
	sb.WriteString("\n")
	sb.WriteString(s.Footer.Render(fmt.Sprintf("%s  [tab] switch  [t] tags  [q] quit", m.deps.Location.String())))
	return sb.String()
}
