package contracts

import (
	"fmt"

	"github.com/zalan-axis/docker-map/pkg/options"
)

// State is the observed runtime state of a container.
type State string

const (
	Absent  State = "absent"
	Created State = "created"
	Running State = "running"
	Stopped State = "stopped"
)

type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionStart  ActionKind = "start"
	ActionStop   ActionKind = "stop"
	ActionRemove ActionKind = "remove"
	ActionWait   ActionKind = "wait"
)

// Action is one runtime operation for the transport collaborator to execute.
type Action struct {
	Name    string          `json:"name"`
	Kind    ActionKind      `json:"kind"`
	Client  string          `json:"client,omitempty"`
	Options options.Options `json:"options,omitempty"`

	// Auxiliary marks ephemeral fix-up containers synthesized by the policy.
	Auxiliary bool `json:"auxiliary,omitempty"`
}

// Fingerprint captures the configuration a container was created with, for
// drift detection against the desired configuration.
type Fingerprint struct {
	Image       string   `json:"image"`
	Volumes     []string `json:"volumes,omitempty"`
	Binds       []string `json:"binds,omitempty"`
	VolumesFrom []string `json:"volumesFrom,omitempty"`
	Links       []string `json:"links,omitempty"`
	Ports       []string `json:"ports,omitempty"`
	User        string   `json:"user,omitempty"`
}

// Observation is the transport's report of a container's live state. A
// container that does not exist observes as Absent with a nil fingerprint.
type Observation struct {
	Name        string       `json:"name"`
	State       State        `json:"state"`
	Fingerprint *Fingerprint `json:"fingerprint,omitempty"`
}

type ObservationError struct {
	Name string
	Err  error
}

func (e *ObservationError) Error() string {
	return fmt.Sprintf("observing %s: %v", e.Name, e.Err)
}

func (e *ObservationError) Unwrap() error {
	return e.Err
}

type ActionError struct {
	Action *Action
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("executing %s on %s: %v", e.Action.Kind, e.Action.Name, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
