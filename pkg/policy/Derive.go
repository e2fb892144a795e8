package policy

import (
	"fmt"
	"sort"

	"github.com/zalan-axis/docker-map/pkg/contracts"
	"github.com/zalan-axis/docker-map/pkg/input"
	"github.com/zalan-axis/docker-map/pkg/maps"
	"github.com/zalan-axis/docker-map/pkg/options"
	"github.com/zalan-axis/docker-map/pkg/resolver"
	"github.com/zalan-axis/docker-map/pkg/static"
)

// volumePaths lists the in-container paths a node exposes: shares, bind
// targets, and attached volume paths for the node's own aliases.
func volumePaths(node *resolver.Node) []string {
	containerMap := node.Configuration.Map

	if node.Kind == resolver.KindAttachedVolume {
		if path, found := containerMap.Volumes[node.Alias]; found {
			return []string{path}
		}

		return nil
	}

	var paths []string
	paths = append(paths, node.Configuration.Shares...)

	for _, bind := range node.Configuration.Binds {
		paths = append(paths, bindContainerPath(containerMap, bind))
	}

	return paths
}

func bindContainerPath(containerMap *maps.ContainerMap, bind input.SharedVolume) string {
	if input.IsPath(bind.Volume) {
		return bind.Volume
	}

	return containerMap.Volumes[bind.Volume]
}

// DeriveCreateOptions builds the model-derived create option layer for a node.
func DeriveCreateOptions(node *resolver.Node, client string) options.Options {
	containerMap := node.Configuration.Map
	derived := options.Options{}

	if node.Kind == resolver.KindAttachedVolume {
		derived["image"] = static.FIXUP_IMAGE
	} else {
		derived["image"] = containerMap.Image(node.Configuration)
	}

	if paths := volumePaths(node); len(paths) > 0 {
		derived["volumes"] = paths
	}

	if node.Kind == resolver.KindContainer {
		if node.Configuration.User != "" {
			derived["user"] = node.Configuration.User
		}

		if len(node.Configuration.Exposes) > 0 {
			exposed := make([]string, 0, len(node.Configuration.Exposes))
			for _, binding := range node.Configuration.Exposes {
				exposed = append(exposed, binding.Exposed)
			}
			derived["exposed_ports"] = exposed
		}

		if hostname := containerMap.Hostname(client, node.Configuration.Name); hostname != "" {
			derived["hostname"] = hostname
		}
	}

	return derived
}

// DeriveStartOptions builds the model-derived start option layer: host binds,
// volumes-from for used containers, link entries, and published ports.
func DeriveStartOptions(node *resolver.Node) options.Options {
	if node.Kind == resolver.KindAttachedVolume {
		return options.Options{}
	}

	derived := options.Options{}

	if binds := deriveBinds(node); len(binds) > 0 {
		derived["binds"] = binds
	}

	if volumesFrom := deriveVolumesFrom(node); len(volumesFrom) > 0 {
		derived["volumes_from"] = volumesFrom
	}

	if links := deriveLinks(node); len(links) > 0 {
		derived["links"] = links
	}

	portBindings := map[string]interface{}{}
	for _, binding := range node.Configuration.Exposes {
		if binding.HostPort == nil {
			continue
		}

		entry := map[string]interface{}{"host_port": *binding.HostPort}

		if binding.Interface != nil {
			entry["interface"] = *binding.Interface
		}

		portBindings[binding.Exposed] = entry
	}

	if len(portBindings) > 0 {
		derived["port_bindings"] = portBindings
	}

	return derived
}

func deriveBinds(node *resolver.Node) []string {
	containerMap := node.Configuration.Map
	var binds []string

	for _, bind := range node.Configuration.Binds {
		containerPath := bindContainerPath(containerMap, bind)

		hostPath := bind.Host
		if hostPath == "" {
			resolved, found := containerMap.HostPath(bind.Volume, node.Instance)

			if !found {
				continue
			}

			hostPath = resolved
		}

		access := "rw"
		if bind.ReadOnly {
			access = "ro"
		}

		binds = append(binds, fmt.Sprintf("%s:%s:%s", hostPath, containerPath, access))
	}

	return binds
}

func deriveVolumesFrom(node *resolver.Node) []string {
	containerMap := node.Configuration.Map
	var volumesFrom []string

	for _, used := range node.Configuration.Uses {
		if configuration := containerMap.Get(used); configuration != nil {
			for _, instance := range maps.InstancesOf(configuration) {
				volumesFrom = append(volumesFrom, containerMap.ContainerName(used, instance))
			}
			continue
		}

		if containerMap.AttachedOwner(used) != nil {
			volumesFrom = append(volumesFrom, containerMap.AttachedName(used))
		}
	}

	return volumesFrom
}

// deriveLinks resolves link entries to generated names. A defaulted alias is
// the target's own name, so the map prefix never leaks into the alias.
func deriveLinks(node *resolver.Node) []string {
	containerMap := node.Configuration.Map
	var links []string

	for _, link := range node.Configuration.Links {
		target := containerMap.Get(link.Container)

		if target == nil {
			continue
		}

		instances := maps.InstancesOf(target)

		for _, instance := range instances {
			alias := link.Alias

			if len(instances) > 1 && instance != "" {
				alias = fmt.Sprintf("%s.%s", link.Alias, instance)
			}

			links = append(links, fmt.Sprintf("%s:%s", containerMap.ContainerName(link.Container, instance), alias))
		}
	}

	return links
}

// DeriveFingerprint captures the desired configuration of a node in the same
// shape the transport reports for existing containers.
func DeriveFingerprint(node *resolver.Node, client string) *contracts.Fingerprint {
	createOptions := DeriveCreateOptions(node, client)
	startOptions := DeriveStartOptions(node)

	fingerprint := &contracts.Fingerprint{
		Image: createOptions["image"].(string),
	}

	if volumes, ok := createOptions["volumes"].([]string); ok {
		fingerprint.Volumes = sortedCopy(volumes)
	}

	if binds, ok := startOptions["binds"].([]string); ok {
		fingerprint.Binds = sortedCopy(binds)
	}

	if volumesFrom, ok := startOptions["volumes_from"].([]string); ok {
		fingerprint.VolumesFrom = sortedCopy(volumesFrom)
	}

	if links, ok := startOptions["links"].([]string); ok {
		fingerprint.Links = sortedCopy(links)
	}

	if node.Kind == resolver.KindContainer {
		for _, binding := range node.Configuration.Exposes {
			fingerprint.Ports = append(fingerprint.Ports, binding.Exposed)
		}
		sort.Strings(fingerprint.Ports)

		fingerprint.User = node.Configuration.User
	}

	return fingerprint
}

func sortedCopy(values []string) []string {
	result := make([]string, len(values))
	copy(result, values)
	sort.Strings(result)

	return result
}
