package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"advisor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefix = "/api/insights/v1"

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Default(), prefix, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body interface{}, out interface{}) int {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestListTags(t *testing.T) {
	_, ts := newTestServer(t)

	var resp struct {
		Tags []string `json:"tags"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+prefix+"/tag/", &resp))
	assert.Equal(t, Default().Tags, resp.Tags)
}

func TestListRules_FiltersAndTags(t *testing.T) {
	_, ts := newTestServer(t)

	var resp struct {
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
		Data []types.Rule `json:"data"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+prefix+"/rule/?total_risk=3,4", &resp))
	assert.Equal(t, 2, resp.Meta.Count)

	resp.Data = nil
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+prefix+"/rule/?rule_status=disabled", &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "deprecated_ntp|NTPD_IN_USE", resp.Data[0].RuleID)

	resp.Data = nil
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+prefix+"/rule/?impacting=true&tags=database", &resp))
	var ids []string
	for _, r := range resp.Data {
		ids = append(ids, r.RuleID)
		assert.Greater(t, r.ImpactedSystemsCount, 0)
	}
	assert.ElementsMatch(t, []string{
		"network_bond_opts_config_issue|NETWORK_BONDING_OPTS_DOUBLE_QUOTES_ISSUE",
		"kernel_tuning_swappiness|HIGH_SWAPPINESS",
	}, ids)
}

func TestAckHosts_UpdatesCounts(t *testing.T) {
	s, ts := newTestServer(t)
	ruleID := "hardening_ssh_root_login|SSH_ROOT_LOGIN_ENABLED"

	var resp types.BulkAckResponse
	status := postJSON(t, ts.URL+prefix+"/rule/"+ruleID+"/ack_hosts/",
		types.BulkAckRequest{Systems: []string{HostWeb1, HostWeb2}, Justification: "known"}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{HostWeb1, HostWeb2}, resp.HostIDs)

	rule, ok := s.Rule(ruleID)
	require.True(t, ok)
	assert.Equal(t, 2, rule.HostsAckedCount)

	// Acking the same host again is a no-op.
	status = postJSON(t, ts.URL+prefix+"/rule/"+ruleID+"/ack_hosts/",
		types.BulkAckRequest{Systems: []string{HostWeb1}}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, resp.Count)

	var systems struct {
		HostIDs []string `json:"host_ids"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+prefix+"/rule/"+ruleID+"/systems/", &systems))
	assert.Equal(t, []string{HostDev1}, systems.HostIDs)
}

func TestRuleAck_DisablesRule(t *testing.T) {
	s, ts := newTestServer(t)
	ruleID := "kernel_tuning_swappiness|HIGH_SWAPPINESS"

	require.Equal(t, http.StatusOK, postJSON(t, ts.URL+prefix+"/ack/", map[string]string{"rule_id": ruleID}, nil))

	rule, _ := s.Rule(ruleID)
	assert.Equal(t, types.RuleStatusDisabled, rule.RuleStatus)

	reqs := s.Requests()
	require.NotEmpty(t, reqs)
	last := reqs[len(reqs)-1]
	assert.Equal(t, RouteAck, last.Route)
	_, has := last.Body["justification"]
	assert.False(t, has)
}

func TestHostAck_RejectsInvalidUUID(t *testing.T) {
	_, ts := newTestServer(t)
	status := postJSON(t, ts.URL+prefix+"/hostack/", map[string]string{
		"rule": "deprecated_ntp|NTPD_IN_USE", "system_uuid": "not-a-uuid", "justification": "",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUnknownRule(t *testing.T) {
	_, ts := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+prefix+"/rule/missing/", nil))
}

func TestFail_InjectsStatus(t *testing.T) {
	s, ts := newTestServer(t)
	s.Fail(RouteTags, http.StatusServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+prefix+"/tag/", nil))

	s.Fail(RouteTags, 0)
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+prefix+"/tag/", nil))
}

func TestListSystems_ScopedByTagAndName(t *testing.T) {
	_, ts := newTestServer(t)

	var resp struct {
		Data []types.System `json:"data"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+prefix+"/system/?tags=web&display_name=WEB-02", &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, HostWeb2, resp.Data[0].ID)
}
