package main

import (
	"fmt"

	"advisor/cmd/advisor/ui"

	"github.com/spf13/cobra"
)

var (
	systemsTags []string
	systemsName string
)

// systemsCmd lists systems
var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List systems scoped to tags",
	RunE:  runSystems,
}

func init() {
	systemsCmd.Flags().StringSliceVar(&systemsTags, "tags", nil, "Selected tags, as served by the backend")
	systemsCmd.Flags().StringVar(&systemsName, "name", "", "Display name filter")
}

func runSystems(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	systems, err := client.ListSystems(ctx, systemsTags, systemsName)
	if err != nil {
		return fmt.Errorf("failed to list systems: %w", err)
	}

	table := ui.NewSimpleTable("Insights systems", []string{"UUID", "Name", "Recommendations", "Last seen"})
	table.Empty = "No systems found."
	for _, s := range systems {
		seen := "-"
		if !s.LastSeen.IsZero() {
			seen = s.LastSeen.Format("2006-01-02 15:04")
		}
		table.AddRow(s.ID, s.DisplayName, fmt.Sprint(s.Hits), seen)
	}
	fmt.Fprint(cmd.OutOrStdout(), table.View(ui.DefaultStyles()))
	return nil
}
