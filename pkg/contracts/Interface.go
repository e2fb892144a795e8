package contracts

import "context"

// Observer reports the live state of containers by generated name. A failed
// observation is an error, never an Absent state.
type Observer interface {
	Observe(ctx context.Context, name string) (*Observation, error)
}

// Executor applies a single action against the runtime.
type Executor interface {
	Execute(ctx context.Context, action *Action) error
}

// Transport is the full runtime collaborator contract.
type Transport interface {
	Observer
	Executor
}
