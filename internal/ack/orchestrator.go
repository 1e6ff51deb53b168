// Package ack disables rules: rule-wide, for one host, or for a list of
// hosts in one bulk request, and applies the resulting count changes to the
// shared store.
package ack

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"advisor/internal/logging"
	"advisor/internal/notify"
	"advisor/internal/store"
	"advisor/internal/types"
)

// SuccessTitle is the toast shown after a single-scope disable.
const SuccessTitle = "Recommendation successfully disabled"

// ErrSubmitInFlight is returned when a submission is already running.
var ErrSubmitInFlight = errors.New("ack: submission already in progress")

// Status of the orchestrator.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Path identifies which endpoint a submission used.
type Path string

const (
	PathHost Path = "host"
	PathRule Path = "rule"
	PathBulk Path = "bulk"
)

// Acker submits single-host and rule-wide acknowledgements.
type Acker interface {
	SetAck(ctx context.Context, req types.AckRequest) error
}

// BulkAcker submits bulk host acknowledgements.
type BulkAcker interface {
	AckHosts(ctx context.Context, ruleID string, req types.BulkAckRequest) (types.BulkAckResponse, error)
}

// Client is the subset of the REST client the orchestrator needs.
type Client interface {
	Acker
	BulkAcker
}

// Submission is one confirmed disable-rule form.
type Submission struct {
	Rule types.Rule
	// Host is the system in context, if any.
	Host *types.System
	// Hosts selects the bulk path when non-empty.
	Hosts         []string
	SingleSystem  bool
	Justification string
	// AfterFn is the completion callback, may be nil.
	AfterFn func()
}

// Result is the outcome of Submit.
type Result struct {
	Status Status
	Path   Path
	Err    error
	// Acked is the bulk response on the bulk path.
	Acked types.BulkAckResponse
	// ClearJustification tells the form to reset its text.
	ClearJustification bool
	// CloseModal tells the form to close.
	CloseModal bool
}

// Options configures an Orchestrator.
type Options struct {
	Client   Client
	Store    *store.Store
	Notifier notify.Dispatcher
	// KeepOpenOnFailure leaves the form open when a submission fails.
	KeepOpenOnFailure bool
	Logger            *logging.Logger
}

// Orchestrator runs disable submissions one at a time.
type Orchestrator struct {
	opts   Options
	log    *logging.Logger
	mu     sync.Mutex
	status Status
}

// New returns an idle orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Client == nil || opts.Store == nil {
		return nil, fmt.Errorf("ack: client and store are required")
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logging.Get(logging.CategoryAck)
	}
	return &Orchestrator{opts: opts, log: opts.Logger}, nil
}

// State returns the current status.
func (o *Orchestrator) State() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Reset returns a finished orchestrator to idle.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusSubmitting {
		o.status = StatusIdle
	}
}

// ChoosePath decides which endpoint a submission goes to.
func ChoosePath(sub Submission) Path {
	if sub.Rule.Enabled() && len(sub.Hosts) == 0 {
		if sub.SingleSystem && sub.Host != nil {
			return PathHost
		}
		return PathRule
	}
	return PathBulk
}

// Submit performs the submission and applies its effects. It blocks until
// the request completes.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) Result {
	o.mu.Lock()
	if o.status == StatusSubmitting {
		o.mu.Unlock()
		return Result{Status: StatusSubmitting, Err: ErrSubmitInFlight}
	}
	o.status = StatusSubmitting
	o.mu.Unlock()

	path := ChoosePath(sub)
	log := o.log.With("rule_id", sub.Rule.RuleID, "path", string(path))
	log.Info("disabling rule")

	var res Result
	if path == PathBulk {
		res = o.submitBulk(ctx, sub)
	} else {
		res = o.submitSingle(ctx, sub, path)
	}
	res.Path = path

	if res.Err != nil {
		log.Warn("disable failed: %v", res.Err)
		notify.Failure(o.opts.Notifier, res.Err)
		res.Status = StatusFailed
		res.CloseModal = !o.opts.KeepOpenOnFailure
	} else {
		res.Status = StatusSucceeded
		res.CloseModal = true
	}

	o.mu.Lock()
	o.status = res.Status
	o.mu.Unlock()
	return res
}

func (o *Orchestrator) submitSingle(ctx context.Context, sub Submission, path Path) Result {
	var req types.AckRequest
	if path == PathHost {
		justification := sub.Justification
		req = types.AckRequest{
			Type: types.AckHost,
			Options: types.AckOptions{
				Rule:          sub.Rule.RuleID,
				SystemUUID:    sub.Host.ID,
				Justification: &justification,
			},
		}
	} else {
		req = types.AckRequest{
			Type:    types.AckRule,
			Options: types.AckOptions{RuleID: sub.Rule.RuleID},
		}
		if sub.Justification != "" {
			justification := sub.Justification
			req.Options.Justification = &justification
		}
	}

	if err := o.opts.Client.SetAck(ctx, req); err != nil {
		return Result{Err: err}
	}

	notify.Success(o.opts.Notifier, SuccessTitle)
	if sub.AfterFn != nil {
		sub.AfterFn()
	}
	return Result{ClearJustification: true}
}

func (o *Orchestrator) submitBulk(ctx context.Context, sub Submission) Result {
	resp, err := o.opts.Client.AckHosts(ctx, sub.Rule.RuleID, types.BulkAckRequest{
		Systems:       sub.Hosts,
		Justification: sub.Justification,
	})
	if err != nil {
		return Result{Err: err}
	}

	// Counts under a tag scope cannot be derived client-side.
	if len(o.opts.Store.SelectedTags()) > 0 {
		if sub.AfterFn != nil {
			sub.AfterFn()
		}
		return Result{Acked: resp}
	}

	rule := sub.Rule
	if current, ok := o.opts.Store.Rule(rule.RuleID); ok {
		rule = current
	}
	rule.HostsAckedCount += resp.Count
	o.opts.Store.Dispatch(store.RemoveSystems{HostIDs: resp.HostIDs})
	o.opts.Store.Dispatch(store.SetRule{Rule: rule})
	o.log.Debug("rule %s hosts_acked_count now %d", rule.RuleID, rule.HostsAckedCount)
	return Result{Acked: resp}
}
