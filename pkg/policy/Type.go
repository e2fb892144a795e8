package policy

import (
	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/options"
	"github.com/zalan-axis/docker-map/pkg/resolver"
)

// Intent is the caller-driven desired operation for a node, expanded over the
// resolved dependency order by the engine.
type Intent string

const (
	IntentCreate Intent = "create"
	IntentStart  Intent = "start"
	IntentStop   Intent = "stop"
	IntentRemove Intent = "remove"
	IntentUpdate Intent = "update"
)

// Decision is everything the policy needs to act on one node: the desired
// configuration, the observed runtime state, and call-site overrides.
type Decision struct {
	Node        *resolver.Node
	Intent      Intent
	Observation *contracts.Observation
	Client      string

	CreateOverrides options.Options
	StartOverrides  options.Options

	// DependentRunning reports whether any dependent of the node is observed
	// Running. Attached volume nodes with running dependents are exempt from
	// removal.
	DependentRunning bool
}

// Plan is the policy's verdict for one node.
type Plan struct {
	Actions []*contracts.Action

	// Skipped marks nodes deliberately excluded (persistent containers and
	// still-referenced attached volumes on remove), as opposed to a plain
	// converged no-op.
	Skipped bool
	Reason  string
}

type OutcomeKind string

const (
	OutcomeActed   OutcomeKind = "acted"
	OutcomeNoop    OutcomeKind = "noop"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome records what happened to one node during a request.
type Outcome struct {
	Node    string                 `json:"node"`
	Kind    OutcomeKind            `json:"kind"`
	Actions []contracts.ActionKind `json:"actions,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Report is the final success or partial-failure account of one request.
type Report struct {
	Outcomes []*Outcome `json:"outcomes"`
}
