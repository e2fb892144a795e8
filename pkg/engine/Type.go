package engine

import (
	"sync"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/maps"
	"github.com/zalan-axis/docker-map/pkg/options"
	"github.com/zalan-axis/docker-map/pkg/policy"
	"github.com/zalan-axis/docker-map/pkg/resolver"
	"github.com/zalan-axis/docker-map/pkg/state"
)

// Operation is the request vocabulary exposed to callers. Composite operations
// expand into ordered passes over the resolved dependency graph.
type Operation string

const (
	OperationCreate   Operation = "create"
	OperationStart    Operation = "start"
	OperationStop     Operation = "stop"
	OperationRemove   Operation = "remove"
	OperationUpdate   Operation = "update"
	OperationRestart  Operation = "restart"
	OperationStartup  Operation = "startup"
	OperationShutdown Operation = "shutdown"
)

// Overrides carries call-site option layers applied with the highest merge
// precedence to every node touched by the request.
type Overrides struct {
	Create options.Options
	Start  options.Options
}

// Engine drives one container map against a runtime transport. The mutex
// serializes requests per map; the model is treated as immutable while a
// request is in flight.
type Engine struct {
	containerMap *maps.ContainerMap
	transport    contracts.Transport
	machine      *state.Machine
	mutex        sync.Mutex
}

// pass is one resolve-and-act sweep: a policy intent applied over the
// dependency order in the given direction.
type pass struct {
	intent    policy.Intent
	direction resolver.Direction
}
