package main

import (
	"fmt"
	"strings"

	"advisor/cmd/advisor/ui"
	"advisor/internal/ack"
	"advisor/internal/logging"
	"advisor/internal/store"
	"advisor/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rulesQuery    string
	rulesTags     []string
	ackHost       string
	ackHosts      []string
	justification string
	allSystems    bool
)

// rulesCmd groups recommendation commands
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List, show and disable recommendations",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recommendations matching a filter query",
	Long: `Lists recommendations for the filters in --query, scoped to --tags.

Example:
  advisor rules list --query "total_risk=4,3&rule_status=enabled" --tags web`,
	RunE: runRulesList,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show [rule-id]",
	Short: "Show one recommendation and its affected systems",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesShow,
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable [rule-id]",
	Short: "Disable a recommendation for a system, a set of systems or everywhere",
	Long: `Disables a recommendation.

  --host UUID            disable for one system (use --all-systems to disable
                         the rule everywhere from that system's context)
  --hosts UUID,UUID      disable for the listed systems in one request
  (neither)              disable the rule for the whole account`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesDisable,
}

func init() {
	rulesListCmd.Flags().StringVarP(&rulesQuery, "query", "q", "", "Filter query, e.g. total_risk=4,3")
	for _, c := range []*cobra.Command{rulesListCmd, rulesShowCmd, rulesDisableCmd} {
		c.Flags().StringSliceVar(&rulesTags, "tags", nil, "Selected tags, as served by the backend")
	}
	rulesDisableCmd.Flags().StringVar(&ackHost, "host", "", "System UUID to disable the rule for")
	rulesDisableCmd.Flags().StringSliceVar(&ackHosts, "hosts", nil, "System UUIDs to disable the rule for")
	rulesDisableCmd.Flags().StringVarP(&justification, "justification", "j", "", "Justification note")
	rulesDisableCmd.Flags().BoolVar(&allSystems, "all-systems", false, "With --host, disable for every system")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	set, err := parseFilters(rulesQuery)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	rules, err := client.ListRules(ctx, ui.RulesQuery(set, rulesTags))
	if err != nil {
		return fmt.Errorf("failed to list rules: %w", err)
	}

	table := ui.NewSimpleTable("Recommendations", []string{"Rule", "Description", "Risk", "Systems", "Status"})
	table.Empty = "No recommendations match the current filters."
	for _, r := range rules {
		table.AddRow(r.RuleID, r.Description, fmt.Sprint(r.TotalRisk), fmt.Sprint(r.ImpactedSystemsCount), r.RuleStatus)
	}
	fmt.Fprint(cmd.OutOrStdout(), table.View(ui.DefaultStyles()))
	logger.Debug("listed rules", zap.Int("count", len(rules)), zap.String("query", set.Encode()))
	return nil
}

func runRulesShow(cmd *cobra.Command, args []string) error {
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
	rule, err := client.GetRule(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get rule: %w", err)
	}
	hostIDs, err := client.ListRuleSystems(ctx, args[0], rulesTags)
	if err != nil {
		return fmt.Errorf("failed to list affected systems: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n%s\n\n", rule.RuleID, rule.Description)
	fmt.Fprintf(out, "Total risk: %d  Status: %s  Disabled for: %d systems\n", rule.TotalRisk, rule.RuleStatus, rule.HostsAckedCount)
	fmt.Fprintf(out, "Affected systems (%d):\n", len(hostIDs))
	for _, id := range hostIDs {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}

// disableSubmission maps the disable flags onto an orchestrator submission.
func disableSubmission(rule types.Rule) ack.Submission {
	sub := ack.Submission{Rule: rule, Justification: justification}
	switch {
	case len(ackHosts) > 0:
		sub.Hosts = ackHosts
		sub.SingleSystem = true
	case ackHost != "":
		sub.Host = &types.System{ID: ackHost}
		sub.SingleSystem = !allSystems
	}
	return sub
}

func runRulesDisable(cmd *cobra.Command, args []string) error {
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
	rule, err := client.GetRule(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get rule: %w", err)
	}

	st := store.New()
	if len(rulesTags) > 0 {
		st.Dispatch(store.SetSelectedTags{Tags: rulesTags})
	}
	st.Dispatch(store.SetRule{Rule: rule})

	orch, err := ack.New(ack.Options{
		Client:   client,
		Store:    st,
		Notifier: printNotifier(cmd),
		Logger:   logging.New(logging.CategoryAck, logger),
	})
	if err != nil {
		return err
	}

	sub := disableSubmission(rule)
	res := orch.Submit(ctx, sub)
	if res.Err != nil {
		return fmt.Errorf("failed to disable %s: %w", rule.RuleID, res.Err)
	}

	switch res.Path {
	case ack.PathBulk:
		updated, _ := st.Rule(rule.RuleID)
		fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s for %s (%d systems now disabled)\n",
			rule.RuleID, strings.Join(res.Acked.HostIDs, ", "), updated.HostsAckedCount)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s (%s)\n", rule.RuleID, res.Path)
	}
	return nil
}
