package resolver

import (
	"strings"

	"github.com/zalan-axis/docker-map/pkg/maps"
)

type Direction int

const (
	Forward Direction = iota
	Reverse
)

type Kind int

const (
	KindContainer Kind = iota
	KindAttachedVolume
)

// Node is one element of the resolved processing order: either a configured
// container instance or an attached volume declared by its configuration.
type Node struct {
	Kind          Kind
	Configuration *maps.ContainerConfiguration

	// Instance is set for container nodes; empty for single unnamed instances.
	Instance string

	// Alias is set for attached volume nodes.
	Alias string
}

// Name returns the generated runtime container name for the node.
func (node *Node) Name() string {
	if node.Kind == KindAttachedVolume {
		return node.Configuration.Map.AttachedName(node.Alias)
	}

	return node.Configuration.Map.ContainerName(node.Configuration.Name, node.Instance)
}

// CycleError reports a dependency cycle with its minimal member list.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Members, " -> ")
}
