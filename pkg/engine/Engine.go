package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/logger"
	"github.com/zalan-axis/docker-map/pkg/maps"
	"github.com/zalan-axis/docker-map/pkg/metrics"
	"github.com/zalan-axis/docker-map/pkg/policy"
	"github.com/zalan-axis/docker-map/pkg/resolver"
	"github.com/zalan-axis/docker-map/pkg/state"
	"github.com/zalan-axis/docker-map/pkg/static"
)

func New(containerMap *maps.ContainerMap, transport contracts.Transport) *Engine {
	return &Engine{
		containerMap: containerMap,
		transport:    transport,
		machine:      state.NewMachine(),
	}
}

// Run executes one operation over the given roots in dependency order.
// Execution is fail-fast: the first failing node aborts the request, nodes
// after it are reported as skipped, and the partial report is returned
// alongside the error.
func (engine *Engine) Run(ctx context.Context, operation Operation, roots []string, overrides *Overrides) (*policy.Report, error) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	passes, err := passesFor(operation)

	if err != nil {
		return nil, err
	}

	started := time.Now()
	report := policy.NewReport()
	states := make(map[string]contracts.State)

	for _, pass := range passes {
		observed, err := engine.runPass(ctx, pass, engine.expandRoots(roots), overrides, report)

		if err != nil {
			return report, err
		}

		for name, observation := range observed {
			states[name] = observation.State
		}
	}

	recordStates(states)
	metrics.ConvergeDuration.Observe(time.Since(started).Seconds(), string(operation))

	return report, nil
}

// Plan resolves and decides without executing: the ordered action sequence the
// operation would run against the currently observed state. Planned actions
// advance the memoized observations, so later nodes and passes decide against
// the states the plan would produce.
func (engine *Engine) Plan(ctx context.Context, operation Operation, roots []string, overrides *Overrides) ([]*contracts.Action, error) {
	engine.mutex.Lock()
	defer engine.mutex.Unlock()

	passes, err := passesFor(operation)

	if err != nil {
		return nil, err
	}

	observations := make(map[string]*contracts.Observation)
	var actions []*contracts.Action

	for _, pass := range passes {
		nodes, err := resolver.Resolve(engine.containerMap, engine.expandRoots(roots), pass.direction)

		if err != nil {
			return nil, err
		}

		for _, node := range nodes {
			plan, err := engine.decideNode(ctx, pass.intent, node, overrides, observations)

			if err != nil {
				return nil, err
			}

			for _, planned := range plan.Actions {
				if !planned.Auxiliary {
					observations[node.Name()].State = state.ExpectedAfter(planned.Kind)
				}
			}

			actions = append(actions, plan.Actions...)
		}
	}

	return actions, nil
}

func passesFor(operation Operation) ([]pass, error) {
	switch operation {
	case OperationCreate:
		return []pass{{policy.IntentCreate, resolver.Forward}}, nil
	case OperationStart:
		return []pass{{policy.IntentStart, resolver.Forward}}, nil
	case OperationStartup:
		return []pass{
			{policy.IntentCreate, resolver.Forward},
			{policy.IntentStart, resolver.Forward},
		}, nil
	case OperationUpdate:
		return []pass{{policy.IntentUpdate, resolver.Forward}}, nil
	case OperationStop:
		return []pass{{policy.IntentStop, resolver.Reverse}}, nil
	case OperationRemove:
		return []pass{{policy.IntentRemove, resolver.Reverse}}, nil
	case OperationShutdown:
		return []pass{
			{policy.IntentStop, resolver.Reverse},
			{policy.IntentRemove, resolver.Reverse},
		}, nil
	case OperationRestart:
		return []pass{
			{policy.IntentStop, resolver.Reverse},
			{policy.IntentStart, resolver.Forward},
		}, nil
	}

	return nil, errors.Errorf("unknown operation %q", operation)
}

func (engine *Engine) expandRoots(roots []string) []string {
	if len(roots) == 0 {
		return engine.containerMap.Names()
	}

	for _, root := range roots {
		if root == static.ALL_CONTAINERS {
			return engine.containerMap.Names()
		}
	}

	return roots
}

func (engine *Engine) runPass(ctx context.Context, pass pass, roots []string, overrides *Overrides, report *policy.Report) (map[string]*contracts.Observation, error) {
	nodes, err := resolver.Resolve(engine.containerMap, roots, pass.direction)

	if err != nil {
		return nil, err
	}

	observations := make(map[string]*contracts.Observation)

	for index, node := range nodes {
		plan, err := engine.decideNode(ctx, pass.intent, node, overrides, observations)

		if err != nil {
			report.Failed(node.Name(), err)
			skipRemaining(nodes[index+1:], report)

			return observations, err
		}

		if plan.Skipped {
			logger.Log.Info("node skipped",
				zap.String("node", node.Name()), zap.String("reason", plan.Reason))
			report.Skipped(node.Name(), plan.Reason)

			continue
		}

		if len(plan.Actions) == 0 {
			report.Noop(node.Name())

			continue
		}

		if err = engine.executePlan(ctx, node, plan, observations); err != nil {
			report.Failed(node.Name(), err)
			skipRemaining(nodes[index+1:], report)

			return observations, err
		}

		report.Acted(node.Name(), plan.Actions)
	}

	return observations, nil
}

func (engine *Engine) decideNode(ctx context.Context, intent policy.Intent, node *resolver.Node, overrides *Overrides, observations map[string]*contracts.Observation) (*policy.Plan, error) {
	observation, err := engine.observe(ctx, node.Name(), observations)

	if err != nil {
		return nil, err
	}

	decision := &policy.Decision{
		Node:        node,
		Intent:      intent,
		Observation: observation,
		Client:      engine.containerMap.ClientsFor(node.Configuration)[0],
	}

	if overrides != nil {
		decision.CreateOverrides = overrides.Create
		decision.StartOverrides = overrides.Start
	}

	if intent == policy.IntentRemove && node.Kind == resolver.KindAttachedVolume {
		decision.DependentRunning, err = engine.dependentRunning(ctx, node, observations)

		if err != nil {
			return nil, err
		}
	}

	return policy.Decide(decision)
}

func (engine *Engine) executePlan(ctx context.Context, node *resolver.Node, plan *policy.Plan, observations map[string]*contracts.Observation) error {
	current := observations[node.Name()].State

	for _, action := range plan.Actions {
		if !action.Auxiliary {
			if err := engine.machine.Validate(current, action.Kind); err != nil {
				return err
			}
		}

		logger.Log.Info("executing action",
			zap.String("node", action.Name),
			zap.String("kind", string(action.Kind)),
			zap.Bool("auxiliary", action.Auxiliary))

		if err := engine.transport.Execute(ctx, action); err != nil {
			metrics.ActionFailures.Increment(string(action.Kind))

			return err
		}

		metrics.Actions.Increment(string(action.Kind))

		if !action.Auxiliary {
			current = state.ExpectedAfter(action.Kind)
		}
	}

	observations[node.Name()].State = current

	return nil
}

// observe memoizes per pass so dependent lookups see states already advanced
// by actions executed earlier in the same pass.
func (engine *Engine) observe(ctx context.Context, name string, observations map[string]*contracts.Observation) (*contracts.Observation, error) {
	if observation, found := observations[name]; found {
		return observation, nil
	}

	observation, err := engine.transport.Observe(ctx, name)

	if err != nil {
		return nil, err
	}

	observations[name] = observation

	return observation, nil
}

// dependentRunning reports whether any container using the attached volume is
// observed Running. Such a volume stays in place on remove.
func (engine *Engine) dependentRunning(ctx context.Context, node *resolver.Node, observations map[string]*contracts.Observation) (bool, error) {
	for _, name := range engine.containerMap.Names() {
		configuration := engine.containerMap.Get(name)

		if !usesAlias(configuration, node.Alias) {
			continue
		}

		for _, instance := range maps.InstancesOf(configuration) {
			observation, err := engine.observe(ctx, engine.containerMap.ContainerName(name, instance), observations)

			if err != nil {
				return false, err
			}

			if observation.State == contracts.Running {
				return true, nil
			}
		}
	}

	return false, nil
}

func usesAlias(configuration *maps.ContainerConfiguration, alias string) bool {
	for _, used := range configuration.Uses {
		if used == alias {
			return true
		}
	}

	return false
}

// recordStates publishes the per-state container gauge from the states the
// request last observed or produced.
func recordStates(states map[string]contracts.State) {
	counts := make(map[contracts.State]float64)

	for _, observed := range states {
		counts[observed]++
	}

	for _, observed := range []contracts.State{contracts.Absent, contracts.Created, contracts.Running, contracts.Stopped} {
		metrics.Containers.Set(counts[observed], string(observed))
	}
}

func skipRemaining(nodes []*resolver.Node, report *policy.Report) {
	for _, node := range nodes {
		report.Skipped(node.Name(), "not attempted after earlier failure")
	}
}
