// Package mockapi is an in-memory advisor backend implementing the REST
// contract consumed by internal/api. It backs the package tests and the
// `advisor mock-server` command.
package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"advisor/internal/types"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Route names accepted by Fail.
const (
	RouteTags        = "tags"
	RouteRules       = "rules"
	RouteRule        = "rule"
	RouteRuleSystems = "rule_systems"
	RouteAckHosts    = "ack_hosts"
	RouteAck         = "ack"
	RouteHostAck     = "hostack"
	RouteSystems     = "systems"
)

// Request is a recorded call. Body holds the decoded JSON object for POSTs.
type Request struct {
	Route  string
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
}

// Server holds the backend state.
type Server struct {
	mu         sync.Mutex
	prefix     string
	tags       []string
	rules      map[string]types.Rule
	ruleOrder  []string
	systems    []types.System
	systemTags map[string][]string
	affected   map[string][]string
	hostAcks   map[string]map[string]string
	requests   []Request
	failures   map[string]int
	router     *mux.Router
	logger     *zap.SugaredLogger
}

// New builds a server from seed, mounted under prefix (e.g. "/api/insights/v1").
func New(seed Seed, prefix string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		prefix:     strings.TrimRight(prefix, "/"),
		tags:       append([]string(nil), seed.Tags...),
		rules:      make(map[string]types.Rule),
		systems:    append([]types.System(nil), seed.Systems...),
		systemTags: make(map[string][]string),
		affected:   make(map[string][]string),
		hostAcks:   make(map[string]map[string]string),
		failures:   make(map[string]int),
		router:     mux.NewRouter(),
		logger:     logger,
	}
	for _, r := range seed.Rules {
		s.rules[r.RuleID] = r
		s.ruleOrder = append(s.ruleOrder, r.RuleID)
	}
	for id, tags := range seed.SystemTags {
		s.systemTags[id] = append([]string(nil), tags...)
	}
	for id, hosts := range seed.Affected {
		s.affected[id] = append([]string(nil), hosts...)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router.PathPrefix(s.prefix).Subrouter()
	r.HandleFunc("/tag/", s.listTags).Methods("GET").Name(RouteTags)
	r.HandleFunc("/rule/", s.listRules).Methods("GET").Name(RouteRules)
	r.HandleFunc("/rule/{id}/", s.getRule).Methods("GET").Name(RouteRule)
	r.HandleFunc("/rule/{id}/systems/", s.ruleSystems).Methods("GET").Name(RouteRuleSystems)
	r.HandleFunc("/rule/{id}/ack_hosts/", s.ackHosts).Methods("POST").Name(RouteAckHosts)
	r.HandleFunc("/ack/", s.ackRule).Methods("POST").Name(RouteAck)
	r.HandleFunc("/hostack/", s.hostAck).Methods("POST").Name(RouteHostAck)
	r.HandleFunc("/system/", s.listSystems).Methods("GET").Name(RouteSystems)
	r.Use(s.recordMiddleware)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Fail makes every request to route answer with status until cleared with 0.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = status
}

// Requests returns the recorded calls.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Rule returns the current state of a rule.
func (s *Server) Rule(id string) (types.Rule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	return r, ok
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := ""
		if cur := mux.CurrentRoute(r); cur != nil {
			route = cur.GetName()
		}
		rec := Request{Route: route, Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if r.Method == http.MethodPost {
			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				s.record(rec)
				writeError(w, http.StatusBadRequest, "invalid JSON body", err, s.logger)
				return
			}
			rec.Body = body
		}
		s.record(rec)

		s.mu.Lock()
		status := s.failures[route]
		s.mu.Unlock()
		if status != 0 {
			writeError(w, status, "injected failure", nil, s.logger)
			return
		}
		next.ServeHTTP(w, withBody(r, rec.Body))
	})
}

func (s *Server) record(rec Request) {
	s.mu.Lock()
	s.requests = append(s.requests, rec)
	s.mu.Unlock()
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tags := append([]string{}, s.tags...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	scope := s.scopedHosts(types.SplitList(q.Get("tags")))
	var out []types.Rule
	for _, id := range s.ruleOrder {
		rule := s.rules[id]
		rule.ImpactedSystemsCount = len(s.impacted(id, scope))
		if matchesRule(rule, q) {
			out = append(out, rule)
		}
	}
	s.mu.Unlock()
	if out == nil {
		out = []types.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meta": map[string]int{"count": len(out)},
		"data": out,
	})
}

func (s *Server) getRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	rule, ok := s.rules[id]
	if ok {
		rule.ImpactedSystemsCount = len(s.impacted(id, nil))
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Rule not found", nil, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (s *Server) ruleSystems(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	_, ok := s.rules[id]
	hosts := s.impacted(id, s.scopedHosts(types.SplitList(r.URL.Query().Get("tags"))))
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Rule not found", nil, s.logger)
		return
	}
	if hosts == nil {
		hosts = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"host_ids": hosts})
}

func (s *Server) ackHosts(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	body := bodyOf(r)
	systems := stringList(body["systems"])
	justification, _ := body["justification"].(string)

	s.mu.Lock()
	rule, ok := s.rules[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Rule not found", nil, s.logger)
		return
	}
	acked := make([]string, 0, len(systems))
	for _, host := range systems {
		if s.ackHost(id, host, justification) {
			acked = append(acked, host)
		}
	}
	rule.HostsAckedCount += len(acked)
	s.rules[id] = rule
	s.mu.Unlock()

	s.logger.Infow("bulk host ack", "rule_id", id, "count", len(acked))
	writeJSON(w, http.StatusOK, types.BulkAckResponse{HostIDs: acked, Count: len(acked)})
}

func (s *Server) ackRule(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)
	id, _ := body["rule_id"].(string)

	s.mu.Lock()
	rule, ok := s.rules[id]
	if ok {
		rule.RuleStatus = types.RuleStatusDisabled
		s.rules[id] = rule
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Rule not found", nil, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) hostAck(w http.ResponseWriter, r *http.Request) {
	body := bodyOf(r)
	id, _ := body["rule"].(string)
	host, _ := body["system_uuid"].(string)
	justification, _ := body["justification"].(string)

	if _, err := uuid.Parse(host); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid system_uuid: %s", host), err, s.logger)
		return
	}

	s.mu.Lock()
	rule, ok := s.rules[id]
	if ok && s.ackHost(id, host, justification) {
		rule.HostsAckedCount++
		s.rules[id] = rule
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Rule not found", nil, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) listSystems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := strings.ToLower(q.Get("display_name"))
	s.mu.Lock()
	scope := s.scopedHosts(types.SplitList(q.Get("tags")))
	out := make([]types.System, 0, len(s.systems))
	for _, sys := range s.systems {
		if scope != nil && !scope[sys.ID] {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(sys.DisplayName), name) {
			continue
		}
		out = append(out, sys)
	}
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hits > out[j].Hits })
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meta": map[string]int{"count": len(out)},
		"data": out,
	})
}

// =============================================================================
// STATE HELPERS (callers hold s.mu)
// =============================================================================

// scopedHosts returns the hosts carrying any of tags; nil means unscoped.
func (s *Server) scopedHosts(tags []string) map[string]bool {
	if len(tags) == 0 {
		return nil
	}
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	scope := make(map[string]bool)
	for host, hostTags := range s.systemTags {
		for _, t := range hostTags {
			if want[t] {
				scope[host] = true
				break
			}
		}
	}
	return scope
}

// impacted returns the affected, unacknowledged hosts of a rule.
func (s *Server) impacted(ruleID string, scope map[string]bool) []string {
	var out []string
	for _, host := range s.affected[ruleID] {
		if _, acked := s.hostAcks[ruleID][host]; acked {
			continue
		}
		if scope != nil && !scope[host] {
			continue
		}
		out = append(out, host)
	}
	return out
}

func (s *Server) ackHost(ruleID, host, justification string) bool {
	acks := s.hostAcks[ruleID]
	if acks == nil {
		acks = make(map[string]string)
		s.hostAcks[ruleID] = acks
	}
	if _, done := acks[host]; done {
		return false
	}
	acks[host] = justification
	return true
}

func matchesRule(rule types.Rule, q map[string][]string) bool {
	get := func(k string) []string {
		if v, ok := q[k]; ok && len(v) > 0 {
			return types.SplitList(strings.Join(v, ","))
		}
		return nil
	}
	in := func(vals []string, v string) bool {
		if vals == nil {
			return true
		}
		for _, x := range vals {
			if x == v {
				return true
			}
		}
		return false
	}
	if !in(get("total_risk"), strconv.Itoa(rule.TotalRisk)) ||
		!in(get("impact"), strconv.Itoa(rule.Impact)) ||
		!in(get("likelihood"), strconv.Itoa(rule.Likelihood)) ||
		!in(get("category"), strconv.Itoa(rule.Category.ID)) ||
		!in(get("reboot"), strconv.FormatBool(rule.RebootRequired)) ||
		!in(get("has_playbook"), strconv.FormatBool(rule.PlaybookCount > 0)) {
		return false
	}
	if status := get("rule_status"); status != nil && status[0] != "all" && !in(status, rule.RuleStatus) {
		return false
	}
	if impacting := get("impacting"); impacting != nil && !in(impacting, strconv.FormatBool(rule.ImpactedSystemsCount > 0)) {
		return false
	}
	if text := strings.ToLower(strings.Join(q["text"], "")); text != "" &&
		!strings.Contains(strings.ToLower(rule.Description), text) &&
		!strings.Contains(strings.ToLower(rule.RuleID), text) {
		return false
	}
	return true
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
