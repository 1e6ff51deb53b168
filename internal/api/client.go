// Package api is the REST client for the advisor backend: tag listing, rule
// and system listings, and the acknowledgement endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"advisor/internal/logging"
	"advisor/internal/types"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// =============================================================================
// CLIENT
// =============================================================================

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, msg)
}

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == code
}

// Client talks to the backend rooted at baseURL.
type Client struct {
	baseURL  string
	identity string
	client   *http.Client
	tags     singleflight.Group
	log      *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithIdentity forwards an x-rh-identity header on every request.
func WithIdentity(identity string) Option {
	return func(c *Client) { c.identity = identity }
}

// WithLogger overrides the category logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		log:     logging.Get(logging.CategoryAPI),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.identity != "" {
		req.Header.Set("x-rh-identity", c.identity)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("%s %s failed: %v (req=%s)", method, endpoint, err, reqID)
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()
	c.log.Debug("%s %s -> %d in %v (req=%s)", method, endpoint, resp.StatusCode, time.Since(start), reqID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// =============================================================================
// TAGS
// =============================================================================

// ListTags returns every tag known to the backend, URL-encoded as served.
// Concurrent calls share one request.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	v, err, _ := c.tags.Do("tags", func() (interface{}, error) {
		var resp tagListResponse
		if err := c.do(ctx, http.MethodGet, c.endpoint("/tag/", nil), nil, &resp); err != nil {
			return nil, err
		}
		return resp.Tags, nil
	})
	if err != nil {
		return nil, err
	}
	tags := v.([]string)
	return append([]string(nil), tags...), nil
}

// =============================================================================
// RULES & SYSTEMS
// =============================================================================

// ListRules returns the rules matching query (filter keys plus tags).
func (c *Client) ListRules(ctx context.Context, query url.Values) ([]types.Rule, error) {
	var resp ruleListResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("/rule/", query), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetRule returns one rule.
func (c *Client) GetRule(ctx context.Context, ruleID string) (types.Rule, error) {
	var rule types.Rule
	err := c.do(ctx, http.MethodGet, c.endpoint("/rule/"+url.PathEscape(ruleID)+"/", nil), nil, &rule)
	return rule, err
}

// ListRuleSystems returns the ids of systems affected by a rule, scoped to
// tags when non-empty.
func (c *Client) ListRuleSystems(ctx context.Context, ruleID string, tags []string) ([]string, error) {
	var resp ruleSystemsResponse
	err := c.do(ctx, http.MethodGet, c.endpoint("/rule/"+url.PathEscape(ruleID)+"/systems/", tagQuery(tags)), nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.HostIDs, nil
}

// ListSystems returns systems scoped to tags, optionally filtered by name.
func (c *Client) ListSystems(ctx context.Context, tags []string, displayName string) ([]types.System, error) {
	q := tagQuery(tags)
	if displayName != "" {
		if q == nil {
			q = url.Values{}
		}
		q.Set("display_name", displayName)
	}
	var resp systemListResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("/system/", q), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func tagQuery(tags []string) url.Values {
	if len(tags) == 0 {
		return nil
	}
	return url.Values{"tags": {strings.Join(tags, ",")}}
}

// =============================================================================
// ACKNOWLEDGEMENTS
// =============================================================================

// AckHosts disables a rule for a list of hosts in one request.
func (c *Client) AckHosts(ctx context.Context, ruleID string, req types.BulkAckRequest) (types.BulkAckResponse, error) {
	if req.Systems == nil {
		req.Systems = []string{}
	}
	var resp types.BulkAckResponse
	err := c.do(ctx, http.MethodPost, c.endpoint("/rule/"+url.PathEscape(ruleID)+"/ack_hosts/", nil), req, &resp)
	return resp, err
}

// SetAck submits a single-host (HOST) or rule-wide (RULE) acknowledgement.
func (c *Client) SetAck(ctx context.Context, req types.AckRequest) error {
	switch req.Type {
	case types.AckHost:
		body := hostAckBody{Rule: req.Options.Rule, SystemUUID: req.Options.SystemUUID}
		if req.Options.Justification != nil {
			body.Justification = *req.Options.Justification
		}
		return c.do(ctx, http.MethodPost, c.endpoint("/hostack/", nil), body, nil)
	case types.AckRule:
		body := ruleAckBody{RuleID: req.Options.RuleID, Justification: req.Options.Justification}
		return c.do(ctx, http.MethodPost, c.endpoint("/ack/", nil), body, nil)
	default:
		return fmt.Errorf("unknown ack type %q", req.Type)
	}
}

// =============================================================================
// WIRE TYPES
// =============================================================================

type tagListResponse struct {
	Tags []string `json:"tags"`
}

type listMeta struct {
	Count int `json:"count"`
}

type ruleListResponse struct {
	Meta listMeta     `json:"meta"`
	Data []types.Rule `json:"data"`
}

type systemListResponse struct {
	Meta listMeta       `json:"meta"`
	Data []types.System `json:"data"`
}

type ruleSystemsResponse struct {
	HostIDs []string `json:"host_ids"`
}

type hostAckBody struct {
	Rule          string `json:"rule"`
	SystemUUID    string `json:"system_uuid"`
	Justification string `json:"justification"`
}

type ruleAckBody struct {
	RuleID        string  `json:"rule_id"`
	Justification *string `json:"justification,omitempty"`
}
