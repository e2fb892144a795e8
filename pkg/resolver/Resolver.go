package resolver

import (
	"github.com/pkg/errors"

	"github.com/zalan-axis/docker-map/pkg/maps"
)

// Resolve expands the given root container names into their full dependency
// closure and orders them. In the forward direction every prerequisite comes
// strictly before its dependents; the reverse direction is the exact reversal,
// used for stop and remove. Nodes with no ordering constraint between them
// keep first-seen traversal order, so resolution is deterministic.
func Resolve(containerMap *maps.ContainerMap, roots []string, direction Direction) ([]*Node, error) {
	resolution := newResolution(containerMap)

	rootNodes, err := resolution.rootNodes(roots)

	if err != nil {
		return nil, err
	}

	if direction == Forward {
		for _, node := range rootNodes {
			if err = resolution.visitForward(node); err != nil {
				return nil, err
			}
		}

		return resolution.ordered, nil
	}

	// Reverse: collect the dependent closure first, order it forward, then
	// flip the sequence.
	included := make(map[string]bool)
	seed := make([]*Node, 0)

	var collect func(node *Node)
	collect = func(node *Node) {
		if included[node.Name()] {
			return
		}

		included[node.Name()] = true
		seed = append(seed, node)

		for _, dependent := range resolution.dependentsOf(node) {
			collect(dependent)
		}
	}

	for _, node := range rootNodes {
		collect(node)
	}

	resolution.restrict = included

	for _, node := range seed {
		if err = resolution.visitForward(node); err != nil {
			return nil, err
		}
	}

	ordered := resolution.ordered
	reversed := make([]*Node, len(ordered))

	for i, node := range ordered {
		reversed[len(ordered)-1-i] = node
	}

	return reversed, nil
}

type resolution struct {
	containerMap *maps.ContainerMap
	nodes        map[string]*Node
	ordered      []*Node

	// restrict limits traversal to a precomputed node set (reverse direction).
	restrict map[string]bool

	visited map[string]bool
	active  map[string]bool
	stack   []string
}

func newResolution(containerMap *maps.ContainerMap) *resolution {
	return &resolution{
		containerMap: containerMap,
		nodes:        make(map[string]*Node),
		visited:      make(map[string]bool),
		active:       make(map[string]bool),
	}
}

func (resolution *resolution) node(candidate *Node) *Node {
	name := candidate.Name()

	if existing, found := resolution.nodes[name]; found {
		return existing
	}

	resolution.nodes[name] = candidate

	return candidate
}

func (resolution *resolution) containerNodes(configuration *maps.ContainerConfiguration) []*Node {
	instances := maps.InstancesOf(configuration)
	nodes := make([]*Node, 0, len(instances))

	for _, instance := range instances {
		nodes = append(nodes, resolution.node(&Node{
			Kind:          KindContainer,
			Configuration: configuration,
			Instance:      instance,
		}))
	}

	return nodes
}

func (resolution *resolution) attachedNode(alias string) (*Node, error) {
	owner := resolution.containerMap.AttachedOwner(alias)

	if owner == nil {
		return nil, errors.Errorf("attached volume %q is not declared by any container", alias)
	}

	return resolution.node(&Node{
		Kind:          KindAttachedVolume,
		Configuration: owner,
		Alias:         alias,
	}), nil
}

func (resolution *resolution) rootNodes(roots []string) ([]*Node, error) {
	nodes := make([]*Node, 0, len(roots))

	for _, root := range roots {
		if configuration := resolution.containerMap.Get(root); configuration != nil {
			nodes = append(nodes, resolution.containerNodes(configuration)...)
			continue
		}

		if resolution.containerMap.AttachedOwner(root) != nil {
			node, err := resolution.attachedNode(root)

			if err != nil {
				return nil, err
			}

			nodes = append(nodes, node)
			continue
		}

		return nil, errors.Errorf("unknown container %q in map %q", root, resolution.containerMap.Name)
	}

	return nodes, nil
}

// dependenciesOf lists the nodes that must exist or run before the given one,
// in declaration order.
func (resolution *resolution) dependenciesOf(node *Node) ([]*Node, error) {
	if node.Kind == KindAttachedVolume {
		return resolution.containerNodes(node.Configuration), nil
	}

	var dependencies []*Node

	for _, used := range node.Configuration.Uses {
		if configuration := resolution.containerMap.Get(used); configuration != nil {
			dependencies = append(dependencies, resolution.containerNodes(configuration)...)
			continue
		}

		attached, err := resolution.attachedNode(used)

		if err != nil {
			return nil, err
		}

		dependencies = append(dependencies, attached)
	}

	for _, link := range node.Configuration.Links {
		if configuration := resolution.containerMap.Get(link.Container); configuration != nil {
			dependencies = append(dependencies, resolution.containerNodes(configuration)...)
		}
	}

	return dependencies, nil
}

// dependentsOf lists the nodes that depend on the given one, walking every
// configuration in map declaration order.
func (resolution *resolution) dependentsOf(node *Node) []*Node {
	var dependents []*Node

	if node.Kind == KindContainer {
		for _, alias := range node.Configuration.Attaches {
			if attached, err := resolution.attachedNode(alias); err == nil {
				dependents = append(dependents, attached)
			}
		}
	}

	for _, name := range resolution.containerMap.Names() {
		configuration := resolution.containerMap.Get(name)

		if resolution.dependsOn(configuration, node) {
			dependents = append(dependents, resolution.containerNodes(configuration)...)
		}
	}

	return dependents
}

func (resolution *resolution) dependsOn(configuration *maps.ContainerConfiguration, node *Node) bool {
	for _, used := range configuration.Uses {
		if node.Kind == KindAttachedVolume && used == node.Alias {
			return true
		}

		if node.Kind == KindContainer && used == node.Configuration.Name {
			return true
		}
	}

	if node.Kind == KindContainer {
		for _, link := range configuration.Links {
			if link.Container == node.Configuration.Name {
				return true
			}
		}
	}

	return false
}

func (resolution *resolution) visitForward(node *Node) error {
	name := node.Name()

	if resolution.visited[name] {
		return nil
	}

	if resolution.active[name] {
		return &CycleError{Members: extractCycleMembers(resolution.stack, name)}
	}

	if resolution.restrict != nil && !resolution.restrict[name] {
		return nil
	}

	resolution.active[name] = true
	resolution.stack = append(resolution.stack, name)

	dependencies, err := resolution.dependenciesOf(node)

	if err != nil {
		return err
	}

	for _, dependency := range dependencies {
		if dependency.Name() == name {
			continue
		}

		if err = resolution.visitForward(dependency); err != nil {
			return err
		}
	}

	resolution.stack = resolution.stack[:len(resolution.stack)-1]
	delete(resolution.active, name)

	resolution.visited[name] = true
	resolution.ordered = append(resolution.ordered, node)

	return nil
}

func extractCycleMembers(stack []string, entry string) []string {
	for i, name := range stack {
		if name == entry {
			members := make([]string, len(stack)-i)
			copy(members, stack[i:])
			return members
		}
	}

	return []string{entry}
}
