package mockapi

import (
	"time"

	"advisor/internal/types"
)

// Seed is the initial backend content.
type Seed struct {
	Tags       []string
	Rules      []types.Rule
	Systems    []types.System
	SystemTags map[string][]string // system uuid -> tags
	Affected   map[string][]string // rule id -> system uuids
}

// Host ids used by Default.
const (
	HostWeb1 = "7a9b6d4c-1f0e-4e0a-9a51-0d2c3e4f5a61"
	HostWeb2 = "0f1e2d3c-4b5a-4697-8887-96a5b4c3d2e1"
	HostDB1  = "5c4b3a29-1807-4f6e-9d8c-7b6a59483726"
	HostDev1 = "c2d3e4f5-a6b7-48c9-8d0e-1f2a3b4c5d6e"
)

// Default returns a small, self-consistent dataset.
func Default() Seed {
	seen := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return Seed{
		Tags: []string{"rhel-8", "rhel-9", "web", "database", "env%3Dprod", "env%3Ddev"},
		Rules: []types.Rule{
			{
				RuleID:         "network_bond_opts_config_issue|NETWORK_BONDING_OPTS_DOUBLE_QUOTES_ISSUE",
				Description:    "Bonding will not fail over when options are wrapped in double quotes",
				Summary:        "The **bonding options** are quoted twice in `ifcfg` files.",
				Reason:         "Failover is disabled on the affected bond.",
				RuleStatus:     types.RuleStatusEnabled,
				TotalRisk:      3,
				Impact:         3,
				Likelihood:     3,
				Category:       types.Category{ID: 1, Name: "Availability"},
				PlaybookCount:  1,
				RebootRequired: false,
			},
			{
				RuleID:         "hardening_ssh_root_login|SSH_ROOT_LOGIN_ENABLED",
				Description:    "Root login over SSH is permitted",
				Summary:        "`PermitRootLogin` is set to `yes` in `sshd_config`.",
				Reason:         "Remote root logins bypass per-user auditing.",
				RuleStatus:     types.RuleStatusEnabled,
				TotalRisk:      4,
				Impact:         3,
				Likelihood:     4,
				Category:       types.Category{ID: 2, Name: "Security"},
				PlaybookCount:  1,
				RebootRequired: false,
			},
			{
				RuleID:         "kernel_tuning_swappiness|HIGH_SWAPPINESS",
				Description:    "Database hosts run with a high vm.swappiness",
				Summary:        "Swapping evicts the **buffer pool** under memory pressure.",
				Reason:         "Query latency degrades when memory is swapped.",
				RuleStatus:     types.RuleStatusEnabled,
				TotalRisk:      2,
				Impact:         2,
				Likelihood:     2,
				Category:       types.Category{ID: 4, Name: "Performance"},
				RebootRequired: true,
			},
			{
				RuleID:      "deprecated_ntp|NTPD_IN_USE",
				Description: "ntpd is deprecated in favor of chronyd",
				Summary:     "Hosts still run `ntpd`.",
				RuleStatus:  types.RuleStatusDisabled,
				TotalRisk:   1,
				Impact:      1,
				Likelihood:  1,
				Category:    types.Category{ID: 3, Name: "Stability"},
			},
		},
		Systems: []types.System{
			{ID: HostWeb1, DisplayName: "web-01.example.com", Hits: 2, LastSeen: seen},
			{ID: HostWeb2, DisplayName: "web-02.example.com", Hits: 1, LastSeen: seen},
			{ID: HostDB1, DisplayName: "db-01.example.com", Hits: 2, LastSeen: seen},
			{ID: HostDev1, DisplayName: "dev-01.example.com", Hits: 1, LastSeen: seen},
		},
		SystemTags: map[string][]string{
			HostWeb1: {"rhel-8", "web", "env%3Dprod"},
			HostWeb2: {"rhel-9", "web", "env%3Dprod"},
			HostDB1:  {"rhel-8", "database", "env%3Dprod"},
			HostDev1: {"rhel-9", "env%3Ddev"},
		},
		Affected: map[string][]string{
			"network_bond_opts_config_issue|NETWORK_BONDING_OPTS_DOUBLE_QUOTES_ISSUE": {HostWeb1, HostDB1},
			"hardening_ssh_root_login|SSH_ROOT_LOGIN_ENABLED":                         {HostWeb1, HostWeb2, HostDev1},
			"kernel_tuning_swappiness|HIGH_SWAPPINESS":                                {HostDB1},
			"deprecated_ntp|NTPD_IN_USE":                                              {HostDev1},
		},
	}
}
