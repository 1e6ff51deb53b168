package main

import (
	"fmt"
	"strings"

	"advisor/cmd/advisor/ui"
	"advisor/internal/ack"
	"advisor/internal/catalog"
	"advisor/internal/config"
	"advisor/internal/filters"
	"advisor/internal/location"
	"advisor/internal/logging"
	"advisor/internal/notify"
	"advisor/internal/store"
	"advisor/internal/tags"

	tea "github.com/charmbracelet/bubbletea"
)

// startURL is the initial dashboard location.
var startURL string

// buildDeps wires the dashboard collaborators for cfg, starting at raw.
func buildDeps(cfg *config.Config, raw string) (ui.Deps, error) {
	client, err := newClient(cfg)
	if err != nil {
		return ui.Deps{}, err
	}

	loc, err := location.New(raw)
	if err != nil {
		return ui.Deps{}, err
	}

	set, err := filters.ParseQuery(loc.RawQuery())
	if err != nil {
		return ui.Deps{}, fmt.Errorf("invalid filters in %q: %w", raw, err)
	}
	// Tags are owned by the tag synchronizer, not the filter set.
	set.Delete(location.TagsParam)
	ctrl := filters.NewController(set, catalog.Default(), filters.WithStrictCatalog(cfg.Filters.StrictCatalog))

	st := store.New()
	center := notify.NewCenter(5)

	sync, err := tags.New(tags.Options{
		DebounceDelay: cfg.GetDebounceDelay(),
		ShowMoreCount: cfg.GetShowMoreCount(),
		Location:      loc,
		Store:         st,
		Client:        client,
		Notifier:      center,
	})
	if err != nil {
		return ui.Deps{}, err
	}

	orch, err := ack.New(ack.Options{
		Client:            client,
		Store:             st,
		Notifier:          center,
		KeepOpenOnFailure: cfg.UI.KeepModalOpenOnFailure,
	})
	if err != nil {
		return ui.Deps{}, err
	}

	start := ui.PageRules
	if strings.HasPrefix(loc.String(), ui.SystemsPath) {
		start = ui.PageSystems
	}

	return ui.Deps{
		Backend:   client,
		Store:     st,
		Location:  loc,
		Tags:      sync,
		Filters:   ctrl,
		Acks:      orch,
		Toasts:    center,
		Styles:    ui.NewStyles(ui.ThemeByName(cfg.UI.Theme)),
		StartPage: start,
	}, nil
}

// runInteractive starts the dashboard
func runInteractive(raw string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging.Options()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()

	deps, err := buildDeps(cfg, raw)
	if err != nil {
		return err
	}
	model := ui.NewModel(deps)
	defer model.Close()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}
