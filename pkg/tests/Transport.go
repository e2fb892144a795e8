package tests

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/state"
)

// MockTransport is a testify mock of the runtime collaborator, for tests that
// assert exact call sequences or inject failures.
type MockTransport struct {
	mock.Mock
}

func (transport *MockTransport) Observe(ctx context.Context, name string) (*contracts.Observation, error) {
	arguments := transport.Called(ctx, name)

	observation, _ := arguments.Get(0).(*contracts.Observation)

	return observation, arguments.Error(1)
}

func (transport *MockTransport) Execute(ctx context.Context, action *contracts.Action) error {
	arguments := transport.Called(ctx, action)

	return arguments.Error(0)
}

// Runtime is an in-memory runtime fake: it tracks container states through
// executed actions and answers observations from that bookkeeping, so
// convergence tests can run whole engine requests without a daemon.
type Runtime struct {
	mutex        sync.Mutex
	states       map[string]contracts.State
	fingerprints map[string]*contracts.Fingerprint

	// Log records every executed action in order.
	Log []*contracts.Action

	// FailExecute makes Execute fail for the named container.
	FailExecute map[string]error
}

func NewRuntime() *Runtime {
	return &Runtime{
		states:       make(map[string]contracts.State),
		fingerprints: make(map[string]*contracts.Fingerprint),
		FailExecute:  make(map[string]error),
	}
}

func (runtime *Runtime) SetState(name string, observed contracts.State) {
	runtime.mutex.Lock()
	defer runtime.mutex.Unlock()

	runtime.states[name] = observed
}

func (runtime *Runtime) SetFingerprint(name string, fingerprint *contracts.Fingerprint) {
	runtime.mutex.Lock()
	defer runtime.mutex.Unlock()

	runtime.fingerprints[name] = fingerprint
}

func (runtime *Runtime) State(name string) contracts.State {
	runtime.mutex.Lock()
	defer runtime.mutex.Unlock()

	return runtime.stateOf(name)
}

func (runtime *Runtime) stateOf(name string) contracts.State {
	if observed, found := runtime.states[name]; found {
		return observed
	}

	return contracts.Absent
}

func (runtime *Runtime) Observe(ctx context.Context, name string) (*contracts.Observation, error) {
	runtime.mutex.Lock()
	defer runtime.mutex.Unlock()

	return &contracts.Observation{
		Name:        name,
		State:       runtime.stateOf(name),
		Fingerprint: runtime.fingerprints[name],
	}, nil
}

func (runtime *Runtime) Execute(ctx context.Context, action *contracts.Action) error {
	runtime.mutex.Lock()
	defer runtime.mutex.Unlock()

	if err, found := runtime.FailExecute[action.Name]; found {
		return err
	}

	if err := runtime.check(action); err != nil {
		return err
	}

	runtime.Log = append(runtime.Log, action)

	switch action.Kind {
	case contracts.ActionCreate:
		runtime.states[action.Name] = contracts.Created
		runtime.fingerprints[action.Name] = fingerprintOf(action)
	case contracts.ActionRemove:
		delete(runtime.states, action.Name)
		delete(runtime.fingerprints, action.Name)
	default:
		runtime.states[action.Name] = state.ExpectedAfter(action.Kind)
	}

	return nil
}

func (runtime *Runtime) check(action *contracts.Action) error {
	observed := runtime.stateOf(action.Name)

	switch action.Kind {
	case contracts.ActionCreate:
		if observed != contracts.Absent {
			return errors.Errorf("%s already exists", action.Name)
		}
	case contracts.ActionStart, contracts.ActionStop, contracts.ActionRemove, contracts.ActionWait:
		if observed == contracts.Absent {
			return errors.Errorf("%s does not exist", action.Name)
		}
	}

	if action.Kind == contracts.ActionStop && observed != contracts.Running {
		return errors.Errorf("%s is not running", action.Name)
	}

	return nil
}

// Kinds returns the kinds of all executed actions, in order.
func (runtime *Runtime) Kinds() []contracts.ActionKind {
	runtime.mutex.Lock()
	defer runtime.mutex.Unlock()

	kinds := make([]contracts.ActionKind, 0, len(runtime.Log))

	for _, action := range runtime.Log {
		kinds = append(kinds, action.Kind)
	}

	return kinds
}

// Names returns the container names of all executed actions, in order.
func (runtime *Runtime) Names() []string {
	runtime.mutex.Lock()
	defer runtime.mutex.Unlock()

	names := make([]string, 0, len(runtime.Log))

	for _, action := range runtime.Log {
		names = append(names, action.Name)
	}

	return names
}

// fingerprintOf reconstructs the configuration fingerprint the way a real
// transport reports it back from an inspect, sorted lists included.
func fingerprintOf(action *contracts.Action) *contracts.Fingerprint {
	fingerprint := &contracts.Fingerprint{}

	if image, ok := action.Options["image"].(string); ok {
		fingerprint.Image = image
	}

	if user, ok := action.Options["user"].(string); ok {
		fingerprint.User = user
	}

	fingerprint.Volumes = sorted(action.Options["volumes"])
	fingerprint.Binds = sorted(action.Options["binds"])
	fingerprint.VolumesFrom = sorted(action.Options["volumes_from"])
	fingerprint.Links = sorted(action.Options["links"])
	fingerprint.Ports = sorted(action.Options["exposed_ports"])

	return fingerprint
}

func sorted(value interface{}) []string {
	values, ok := value.([]string)

	if !ok {
		return nil
	}

	result := make([]string, len(values))
	copy(result, values)
	sort.Strings(result)

	return result
}
