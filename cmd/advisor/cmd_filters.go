package main

import (
	"errors"
	"fmt"
	"strings"

	"advisor/cmd/advisor/ui"
	"advisor/internal/catalog"
	"advisor/internal/filters"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var strictCatalog bool

// filtersCmd groups filter commands
var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Inspect and edit recommendation filter queries",
	Long: `Works on a filter query string such as "total_risk=4,3&category=2".

Example:
  advisor filters chips "total_risk=4,3&category=2"
  advisor filters remove "total_risk=4,3" total_risk 4`,
}

var filtersChipsCmd = &cobra.Command{
	Use:   "chips [query]",
	Short: "Show the chips a filter query renders as",
	Args:  cobra.ExactArgs(1),
	RunE:  runFiltersChips,
}

var filtersRemoveCmd = &cobra.Command{
	Use:   "remove [query] [key] [value]",
	Short: "Remove one filter value and print the resulting query",
	Args:  cobra.ExactArgs(3),
	RunE:  runFiltersRemove,
}

var filtersClearCmd = &cobra.Command{
	Use:   "clear [query]",
	Short: "Remove every filter and print the resulting query",
	Args:  cobra.ExactArgs(1),
	RunE:  runFiltersClear,
}

func init() {
	filtersChipsCmd.Flags().BoolVar(&strictCatalog, "strict", false, "Fail on values missing from the category catalog")
}

func parseFilters(raw string) (*filters.Set, error) {
	set, err := filters.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return nil, fmt.Errorf("invalid filter query %q: %w", raw, err)
	}
	return set, nil
}

func runFiltersChips(cmd *cobra.Command, args []string) error {
	set, err := parseFilters(args[0])
	if err != nil {
		return err
	}

	groups, err := filters.Chips(set, catalog.Default())
	if errors.Is(err, catalog.ErrCatalogMismatch) {
		if strictCatalog {
			return err
		}
		logger.Warn("skipped filter values missing from the catalog", zap.Error(err))
	}

	table := ui.NewSimpleTable("Filters", []string{"Category", "Chip", "Key", "Value"})
	table.Empty = "No filters"
	for _, g := range groups {
		for _, c := range g.Chips {
			table.AddRow(g.Title, c.Label, string(c.Key), c.Value)
		}
	}
	fmt.Fprint(cmd.OutOrStdout(), table.View(ui.DefaultStyles()))
	return nil
}

func runFiltersRemove(cmd *cobra.Command, args []string) error {
	set, err := parseFilters(args[0])
	if err != nil {
		return err
	}
	ctrl := filters.NewController(set, catalog.Default())
	ctrl.RemoveFilterValue(args[1], args[2])
	fmt.Fprintln(cmd.OutOrStdout(), ctrl.Filters().Encode())
	return nil
}

func runFiltersClear(cmd *cobra.Command, args []string) error {
	set, err := parseFilters(args[0])
	if err != nil {
		return err
	}
	ctrl := filters.NewController(set, catalog.Default())
	ctrl.RemoveAllFilters()
	fmt.Fprintln(cmd.OutOrStdout(), ctrl.Filters().Encode())
	return nil
}
