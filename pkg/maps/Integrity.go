package maps

import (
	"fmt"
	"strings"

	"github.com/zalan-axis/docker-map/pkg/input"
)

// CheckIntegrity validates alias references, dependency targets, and graph
// acyclicity for the whole map. All violations are collected so that one
// fix-and-retry cycle can resolve everything.
func (containerMap *ContainerMap) CheckIntegrity() error {
	var violations []string

	if containerMap.Name == "" {
		violations = append(violations, "container map has no name")
	}

	attachedOwners := make(map[string]string)

	for _, name := range containerMap.order {
		configuration := containerMap.containers[name]

		for _, alias := range configuration.Attaches {
			if owner, taken := attachedOwners[alias]; taken {
				violations = append(violations,
					fmt.Sprintf("attached volume %q declared by both %q and %q", alias, owner, name))
				continue
			}

			attachedOwners[alias] = name

			if _, found := containerMap.Volumes[alias]; !found {
				violations = append(violations,
					fmt.Sprintf("container %q attaches undefined volume alias %q", name, alias))
			}
		}
	}

	for _, name := range containerMap.order {
		configuration := containerMap.containers[name]

		violations = append(violations, containerMap.checkVolumes(name, configuration)...)
		violations = append(violations, containerMap.checkReferences(name, configuration, attachedOwners)...)

		seen := make(map[string]bool)
		for _, instance := range configuration.Instances {
			if seen[instance] {
				violations = append(violations,
					fmt.Sprintf("container %q declares instance %q more than once", name, instance))
			}
			seen[instance] = true
		}
	}

	violations = append(violations, containerMap.checkCycles(attachedOwners)...)

	if len(violations) > 0 {
		return &IntegrityError{Violations: violations}
	}

	return nil
}

func (containerMap *ContainerMap) checkVolumes(name string, configuration *ContainerConfiguration) []string {
	var violations []string

	for _, bind := range configuration.Binds {
		if input.IsPath(bind.Volume) {
			if bind.Host == "" {
				violations = append(violations,
					fmt.Sprintf("container %q binds path %q without a host path", name, bind.Volume))
			}
			continue
		}

		if _, found := containerMap.Volumes[bind.Volume]; !found {
			violations = append(violations,
				fmt.Sprintf("container %q binds undefined volume alias %q", name, bind.Volume))
			continue
		}

		if _, resolvable := containerMap.HostPath(bind.Volume, ""); !resolvable {
			resolved := false

			for _, instance := range configuration.Instances {
				if _, found := containerMap.HostPath(bind.Volume, instance); found {
					resolved = true
					break
				}
			}

			if !resolved {
				violations = append(violations,
					fmt.Sprintf("container %q binds volume alias %q which has no host path assignment", name, bind.Volume))
			}
		}
	}

	for _, share := range configuration.Shares {
		if !input.IsPath(share) {
			violations = append(violations,
				fmt.Sprintf("container %q shares %q which is not a path", name, share))
		}
	}

	return violations
}

func (containerMap *ContainerMap) checkReferences(name string, configuration *ContainerConfiguration, attachedOwners map[string]string) []string {
	var violations []string

	for _, used := range configuration.Uses {
		if _, found := containerMap.containers[used]; found {
			continue
		}

		if _, found := attachedOwners[used]; found {
			continue
		}

		violations = append(violations,
			fmt.Sprintf("container %q uses %q which is neither a container nor an attached volume", name, used))
	}

	for _, link := range configuration.Links {
		if _, found := containerMap.containers[link.Container]; !found {
			violations = append(violations,
				fmt.Sprintf("container %q links to undefined container %q", name, link.Container))
		}
	}

	return violations
}

// checkCycles walks the name-level dependency graph. The resolver repeats this
// per-node at resolution time; here every cycle becomes one violation entry.
func (containerMap *ContainerMap) checkCycles(attachedOwners map[string]string) []string {
	adjacency := make(map[string][]string)

	addEdge := func(from string, to string) {
		adjacency[from] = append(adjacency[from], to)
	}

	for _, name := range containerMap.order {
		configuration := containerMap.containers[name]

		for _, alias := range configuration.Attaches {
			addEdge(name, alias)
		}

		for _, used := range configuration.Uses {
			addEdge(used, name)
		}

		for _, link := range configuration.Links {
			addEdge(link.Container, name)
		}
	}

	var violations []string

	const (
		unvisited = 0
		active    = 1
		done      = 2
	)

	colors := make(map[string]int)
	var stack []string

	var visit func(node string)
	visit = func(node string) {
		colors[node] = active
		stack = append(stack, node)

		for _, next := range adjacency[node] {
			switch colors[next] {
			case unvisited:
				visit(next)
			case active:
				cycle := extractCycle(stack, next)
				violations = append(violations,
					fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")))
			}
		}

		stack = stack[:len(stack)-1]
		colors[node] = done
	}

	for _, name := range containerMap.order {
		if colors[name] == unvisited {
			visit(name)
		}
	}

	return violations
}

func extractCycle(stack []string, entry string) []string {
	for i, node := range stack {
		if node == entry {
			cycle := make([]string, 0, len(stack)-i+1)
			cycle = append(cycle, stack[i:]...)
			cycle = append(cycle, entry)
			return cycle
		}
	}

	return []string{entry}
}
