// Package types holds the records shared between the REST client, the
// application store and the UI: rules, systems and acknowledgement payloads.
package types

import (
	"strings"
	"time"
)

// RuleStatus values reported by the backend.
const (
	RuleStatusEnabled  = "enabled"
	RuleStatusDisabled = "disabled"
)

// Category is the rule category as embedded in rule payloads.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Rule is a recommendation definition. HostsAckedCount counts the systems
// for which the rule has been disabled individually.
type Rule struct {
	RuleID               string   `json:"rule_id"`
	Description          string   `json:"description"`
	Summary              string   `json:"summary,omitempty"`
	Reason               string   `json:"reason,omitempty"`
	RuleStatus           string   `json:"rule_status"`
	TotalRisk            int      `json:"total_risk"`
	Impact               int      `json:"impact,omitempty"`
	Likelihood           int      `json:"likelihood,omitempty"`
	Category             Category `json:"category"`
	PlaybookCount        int      `json:"playbook_count"`
	RebootRequired       bool     `json:"reboot_required"`
	ImpactedSystemsCount int      `json:"impacted_systems_count"`
	HostsAckedCount      int      `json:"hosts_acked_count"`
}

// Enabled reports whether the rule is active for the account.
func (r Rule) Enabled() bool {
	return r.RuleStatus == RuleStatusEnabled
}

// System is a registered host.
type System struct {
	ID          string    `json:"system_uuid"`
	DisplayName string    `json:"display_name"`
	Hits        int       `json:"hits"`
	LastSeen    time.Time `json:"last_seen"`
}

// AckType selects the scope of a single acknowledgement.
type AckType string

const (
	AckHost AckType = "HOST"
	AckRule AckType = "RULE"
)

// AckOptions carries the fields of a single acknowledgement. Rule and
// SystemUUID are used by HOST acks, RuleID by RULE acks. Justification is nil
// when the field must be left out of the request body.
type AckOptions struct {
	Rule          string
	RuleID        string
	SystemUUID    string
	Justification *string
}

// AckRequest is the dispatch payload of a single-host or rule-wide ack.
type AckRequest struct {
	Type    AckType
	Options AckOptions
}

// BulkAckRequest is the body of the bulk host acknowledgement endpoint.
type BulkAckRequest struct {
	Systems       []string `json:"systems"`
	Justification string   `json:"justification"`
}

// BulkAckResponse is returned by the bulk host acknowledgement endpoint.
type BulkAckResponse struct {
	HostIDs []string `json:"host_ids"`
	Count   int      `json:"count"`
}

// SplitList splits a comma-joined list, dropping empty items.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
