package main

import (
	"fmt"

	"advisor/cmd/advisor/ui"
	"advisor/internal/location"
	"advisor/internal/notify"
	"advisor/internal/store"
	"advisor/internal/tags"

	"github.com/spf13/cobra"
)

var (
	tagsURL    string
	tagsSearch string
)

// tagsCmd groups tag commands
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags and edit tag selections",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backend tags, marking the ones selected in --url",
	Long: `Reconciles the tags parameter of --url with the backend tag list and
prints every tag. Unknown tags in the URL are dropped, as the dashboard does.

Example:
  advisor tags list --url "/systems?tags=web,env%253Dprod" --search env`,
	RunE: runTagsList,
}

var tagsToggleCmd = &cobra.Command{
	Use:   "toggle [tag]...",
	Short: "Toggle tags in the selection of --url and print the new URL",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTagsToggle,
}

func init() {
	for _, c := range []*cobra.Command{tagsListCmd, tagsToggleCmd} {
		c.Flags().StringVar(&tagsURL, "url", "/systems", "Location whose tags parameter holds the selection")
	}
	tagsListCmd.Flags().StringVar(&tagsSearch, "search", "", "Case-insensitive substring filter")
}

// mountTags reconciles the selection of raw against the backend.
func mountTags(cmd *cobra.Command, raw string) (*tags.Synchronizer, *location.Location, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	loc, err := location.New(raw)
	if err != nil {
		return nil, nil, nil, err
	}
	st := store.New()
	sync, err := tags.New(tags.Options{
		DebounceDelay: cfg.GetDebounceDelay(),
		ShowMoreCount: cfg.GetShowMoreCount(),
		Location:      loc,
		Store:         st,
		Client:        client,
		Notifier:      printNotifier(cmd),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := signalContext()
	defer cancel()
	if err := sync.Mount(ctx); err != nil {
		sync.Close()
		return nil, nil, nil, err
	}
	return sync, loc, st, nil
}

func runTagsList(cmd *cobra.Command, args []string) error {
	sync, loc, st, err := mountTags(cmd, tagsURL)
	if err != nil {
		return err
	}
	defer sync.Close()

	selected := make(map[string]bool)
	for _, t := range st.SelectedTags() {
		selected[t] = true
	}

	table := ui.NewSimpleTable("Tags", []string{"", "Tag", "Raw"})
	table.Empty = "No tags"
	for _, t := range tags.FilterTags(sync.Snapshot().Tags, tagsSearch) {
		mark := " "
		if selected[t] {
			mark = "x"
		}
		table.AddRow(mark, tags.DisplayTag(t), t)
	}
	fmt.Fprint(cmd.OutOrStdout(), table.View(ui.DefaultStyles()))
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", loc.String())
	return nil
}

func runTagsToggle(cmd *cobra.Command, args []string) error {
	sync, loc, _, err := mountTags(cmd, tagsURL)
	if err != nil {
		return err
	}
	defer sync.Close()

	for _, t := range args {
		sync.Toggle(t)
	}
	fmt.Fprintln(cmd.OutOrStdout(), loc.String())
	return nil
}

// printNotifier writes notifications to the command's error stream.
func printNotifier(cmd *cobra.Command) notify.Dispatcher {
	return notify.Func(func(n notify.Notification) {
		if n.Description != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", n.Title, n.Description)
			return
		}
		fmt.Fprintln(cmd.ErrOrStderr(), n.Title)
	})
}
