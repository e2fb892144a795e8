package state

import (
	"github.com/hmdsefi/gograph"

	"github.com/zalan-axis/docker-map/pkg/contracts"
)

// Machine holds the legal transitions between observed container states.
// Actions that would move a container along a missing edge indicate either a
// policy bug or a runtime drifting underneath the engine.
type Machine struct {
	graph gograph.Graph[contracts.State]
}
