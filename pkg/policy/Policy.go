package policy

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/r3labs/diff/v3"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/options"
	"github.com/zalan-axis/docker-map/pkg/resolver"
	"github.com/zalan-axis/docker-map/pkg/static"
)

// Decide computes the minimal action sequence converging one node from its
// observed state to the intent's desired state. It never mutates the model
// and only reads the observation handed to it.
func Decide(decision *Decision) (*Plan, error) {
	if decision.Observation == nil {
		return nil, errors.Errorf("no observation for %s", decision.Node.Name())
	}

	switch decision.Intent {
	case IntentCreate:
		return decideCreate(decision)
	case IntentStart:
		return decideStart(decision)
	case IntentStop:
		return decideStop(decision)
	case IntentRemove:
		return decideRemove(decision)
	case IntentUpdate:
		return decideUpdate(decision)
	}

	return nil, errors.Errorf("unknown intent %q", decision.Intent)
}

func decideCreate(decision *Decision) (*Plan, error) {
	observed := decision.Observation.State

	if observed == contracts.Absent {
		return &Plan{Actions: []*contracts.Action{createAction(decision)}}, nil
	}

	drifted, err := drifted(decision)

	if err != nil {
		return nil, err
	}

	if !drifted {
		return &Plan{}, nil
	}

	var actions []*contracts.Action

	if observed == contracts.Running {
		actions = append(actions, action(decision, contracts.ActionStop, nil))
	}

	actions = append(actions, action(decision, contracts.ActionRemove, nil))
	actions = append(actions, createAction(decision))

	return &Plan{Actions: actions}, nil
}

func decideStart(decision *Decision) (*Plan, error) {
	observed := decision.Observation.State

	if decision.Node.Kind == resolver.KindAttachedVolume {
		if observed != contracts.Absent {
			return &Plan{}, nil
		}

		actions := []*contracts.Action{createAction(decision)}
		actions = append(actions, fixupActions(decision)...)

		return &Plan{Actions: actions}, nil
	}

	if observed == contracts.Running {
		return &Plan{}, nil
	}

	var actions []*contracts.Action

	if observed == contracts.Absent {
		actions = append(actions, createAction(decision))
	}

	actions = append(actions, fixupActions(decision)...)
	actions = append(actions, startAction(decision))

	return &Plan{Actions: actions}, nil
}

func decideStop(decision *Decision) (*Plan, error) {
	if decision.Observation.State != contracts.Running {
		return &Plan{}, nil
	}

	return &Plan{Actions: []*contracts.Action{action(decision, contracts.ActionStop, nil)}}, nil
}

func decideRemove(decision *Decision) (*Plan, error) {
	if decision.Observation.State == contracts.Absent {
		return &Plan{}, nil
	}

	if decision.Node.Configuration.Persistent && decision.Node.Kind == resolver.KindContainer {
		return &Plan{Skipped: true, Reason: "persistent container"}, nil
	}

	if decision.Node.Kind == resolver.KindAttachedVolume && decision.DependentRunning {
		return &Plan{Skipped: true, Reason: "attached volume still in use by a running dependent"}, nil
	}

	var actions []*contracts.Action

	if decision.Observation.State == contracts.Running {
		actions = append(actions, action(decision, contracts.ActionStop, nil))
	}

	actions = append(actions, action(decision, contracts.ActionRemove, nil))

	return &Plan{Actions: actions}, nil
}

func decideUpdate(decision *Decision) (*Plan, error) {
	observed := decision.Observation.State

	if observed == contracts.Absent {
		return &Plan{Actions: []*contracts.Action{createAction(decision)}}, nil
	}

	drifted, err := drifted(decision)

	if err != nil {
		return nil, err
	}

	if !drifted {
		return &Plan{}, nil
	}

	var actions []*contracts.Action

	if observed == contracts.Running {
		actions = append(actions, action(decision, contracts.ActionStop, nil))
	}

	actions = append(actions, action(decision, contracts.ActionRemove, nil))
	actions = append(actions, createAction(decision))

	if observed == contracts.Running {
		actions = append(actions, fixupActions(decision)...)
		actions = append(actions, startAction(decision))
	}

	return &Plan{Actions: actions}, nil
}

func drifted(decision *Decision) (bool, error) {
	observed := decision.Observation.Fingerprint

	if observed == nil {
		return true, nil
	}

	desired := DeriveFingerprint(decision.Node, decision.Client)

	changelog, err := diff.Diff(observed, desired)

	if err != nil {
		return false, errors.Wrapf(err, "diffing configuration of %s", decision.Node.Name())
	}

	return len(changelog) > 0, nil
}

func action(decision *Decision, kind contracts.ActionKind, opts options.Options) *contracts.Action {
	return &contracts.Action{
		Name:    decision.Node.Name(),
		Kind:    kind,
		Client:  decision.Client,
		Options: opts,
	}
}

// createAction folds the start-derived layer into create: modern runtimes
// accept host configuration at create only, so binds, links, and published
// ports have to travel with the create action to be applied at all.
func createAction(decision *Decision) *contracts.Action {
	derived := options.Merge(
		DeriveCreateOptions(decision.Node, decision.Client),
		DeriveStartOptions(decision.Node))
	declared := decision.Node.Configuration.CreateOptions.Resolve()

	return action(decision, contracts.ActionCreate, options.Merge(derived, declared, decision.CreateOverrides))
}

func startAction(decision *Decision) *contracts.Action {
	derived := DeriveStartOptions(decision.Node)
	declared := decision.Node.Configuration.StartOptions.Resolve()

	return action(decision, contracts.ActionStart, options.Merge(derived, declared, decision.StartOverrides))
}

// fixupActions synthesizes the ephemeral ownership and permission fix-up
// containers for a node: ownership first, then permissions, each created,
// started, awaited, and removed within the same policy step.
func fixupActions(decision *Decision) []*contracts.Action {
	configuration := decision.Node.Configuration
	paths := volumePaths(decision.Node)

	if len(paths) == 0 {
		return nil
	}

	var actions []*contracts.Action

	if configuration.User != "" {
		command := append([]string{"chown", "-R", configuration.User}, paths...)
		actions = append(actions, auxiliarySequence(decision, "chown", command)...)
	}

	if configuration.Permissions != "" {
		command := append([]string{"chmod", "-R", configuration.Permissions}, paths...)
		actions = append(actions, auxiliarySequence(decision, "chmod", command)...)
	}

	return actions
}

func auxiliarySequence(decision *Decision, purpose string, command []string) []*contracts.Action {
	name := fmt.Sprintf("%s.%s.%s.%s",
		decision.Node.Name(), static.FIXUP_PREFIX, purpose, shortID())

	createOptions := options.Options{
		"image":        static.FIXUP_IMAGE,
		"command":      command,
		"volumes_from": []string{decision.Node.Name()},
	}

	auxiliary := func(kind contracts.ActionKind, opts options.Options) *contracts.Action {
		return &contracts.Action{
			Name:      name,
			Kind:      kind,
			Client:    decision.Client,
			Options:   opts,
			Auxiliary: true,
		}
	}

	return []*contracts.Action{
		auxiliary(contracts.ActionCreate, createOptions),
		auxiliary(contracts.ActionStart, nil),
		auxiliary(contracts.ActionWait, nil),
		auxiliary(contracts.ActionRemove, nil),
	}
}

func shortID() string {
	return strings.Split(uuid.NewString(), "-")[0]
}
