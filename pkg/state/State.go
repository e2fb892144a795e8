package state

import (
	"github.com/hmdsefi/gograph"
	"github.com/pkg/errors"

	"github.com/zalan-axis/docker-map/pkg/contracts"
)

func NewMachine() *Machine {
	machine := &Machine{}
	machine.createGraph()

	return machine
}

func (machine *Machine) createGraph() {
	machine.graph = gograph.New[contracts.State](gograph.Directed())

	absent := gograph.NewVertex(contracts.Absent)
	created := gograph.NewVertex(contracts.Created)
	running := gograph.NewVertex(contracts.Running)
	stopped := gograph.NewVertex(contracts.Stopped)

	machine.graph.AddEdge(absent, created)

	machine.graph.AddEdge(created, running)
	machine.graph.AddEdge(created, absent)

	machine.graph.AddEdge(running, stopped)

	machine.graph.AddEdge(stopped, running)
	machine.graph.AddEdge(stopped, absent)
}

func (machine *Machine) CanTransition(from contracts.State, to contracts.State) bool {
	if from == to {
		return true
	}

	vertices := machine.graph.GetAllVerticesByID(from)

	if len(vertices) == 0 {
		return false
	}

	for _, edge := range machine.graph.EdgesOf(vertices[0]) {
		if edge.Destination().Label() == to {
			return true
		}
	}

	return false
}

// ExpectedAfter returns the state an action leaves a container in when it
// succeeds.
func ExpectedAfter(kind contracts.ActionKind) contracts.State {
	switch kind {
	case contracts.ActionCreate:
		return contracts.Created
	case contracts.ActionStart:
		return contracts.Running
	case contracts.ActionStop, contracts.ActionWait:
		return contracts.Stopped
	case contracts.ActionRemove:
		return contracts.Absent
	}

	return contracts.Absent
}

// Validate checks that applying the action to a container in the observed
// state moves it along a legal edge.
func (machine *Machine) Validate(observed contracts.State, kind contracts.ActionKind) error {
	expected := ExpectedAfter(kind)

	if !machine.CanTransition(observed, expected) {
		return errors.Errorf("illegal transition %s -> %s via %s", observed, expected, kind)
	}

	return nil
}
