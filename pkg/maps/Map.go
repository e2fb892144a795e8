package maps

import (
	"fmt"
	"path"
	"strings"

	"github.com/zalan-axis/docker-map/pkg/static"
)

func New(name string) *ContainerMap {
	return &ContainerMap{
		Name:       name,
		Volumes:    make(map[string]string),
		Host:       HostVolumeConfiguration{Volumes: make(map[string]HostPath)},
		containers: make(map[string]*ContainerConfiguration),
	}
}

// GetOrCreate returns the configuration for the given container name. The
// second return value reports whether the configuration already existed.
// Undefined names are created explicitly here, never on plain access.
func (containerMap *ContainerMap) GetOrCreate(name string) (*ContainerConfiguration, bool) {
	if existing, found := containerMap.containers[name]; found {
		return existing, true
	}

	configuration := &ContainerConfiguration{
		Name: name,
		Map:  containerMap,
	}

	containerMap.containers[name] = configuration
	containerMap.order = append(containerMap.order, name)

	return configuration, false
}

func (containerMap *ContainerMap) Get(name string) *ContainerConfiguration {
	return containerMap.containers[name]
}

// Names returns the container names in declaration order.
func (containerMap *ContainerMap) Names() []string {
	names := make([]string, len(containerMap.order))
	copy(names, containerMap.order)

	return names
}

// ContainerName generates the runtime name <map>.<container>[.<instance>].
func (containerMap *ContainerMap) ContainerName(container string, instance string) string {
	if instance == "" {
		return fmt.Sprintf("%s.%s", containerMap.Name, container)
	}

	return fmt.Sprintf("%s.%s.%s", containerMap.Name, container, instance)
}

// AttachedName generates the runtime name of an attached volume container.
func (containerMap *ContainerMap) AttachedName(alias string) string {
	return fmt.Sprintf("%s.%s", containerMap.Name, alias)
}

// Hostname generates <client>-<container> when hostname generation is enabled.
func (containerMap *ContainerMap) Hostname(client string, container string) string {
	if !containerMap.GenerateHostnames {
		return ""
	}

	hostname := fmt.Sprintf("%s-%s", client, container)

	if containerMap.DefaultDomain != "" {
		return fmt.Sprintf("%s.%s", hostname, containerMap.DefaultDomain)
	}

	return hostname
}

// Image resolves a configured image reference against the map's repository
// prefix and appends the default tag when none is given. An empty reference
// falls back to the container name.
func (containerMap *ContainerMap) Image(configuration *ContainerConfiguration) string {
	image := configuration.Image

	if image == "" {
		image = configuration.Name
	}

	if containerMap.Repository != "" && !strings.Contains(image, "/") {
		image = fmt.Sprintf("%s/%s", containerMap.Repository, image)
	}

	if !strings.Contains(image[strings.LastIndex(image, "/")+1:], ":") {
		image = fmt.Sprintf("%s:%s", image, static.DEFAULT_TAG)
	}

	return image
}

// ClientsFor returns the configuration's target clients, falling back to the
// map-level client set when the configuration declares none.
func (containerMap *ContainerMap) ClientsFor(configuration *ContainerConfiguration) []string {
	if len(configuration.Clients) > 0 {
		return configuration.Clients
	}

	if len(containerMap.Clients) > 0 {
		return containerMap.Clients
	}

	return []string{static.DEFAULT_CLIENT}
}

// AttachedOwner returns the configuration declaring the given attached volume
// alias, or nil when no container attaches it.
func (containerMap *ContainerMap) AttachedOwner(alias string) *ContainerConfiguration {
	for _, name := range containerMap.order {
		configuration := containerMap.containers[name]

		for _, attached := range configuration.Attaches {
			if attached == alias {
				return configuration
			}
		}
	}

	return nil
}

// HostPath resolves the host path for a volume alias and instance name.
// Instance-specific assignments win over the default; relative paths resolve
// against the host root.
func (containerMap *ContainerMap) HostPath(alias string, instance string) (string, bool) {
	entry, found := containerMap.Host.Volumes[alias]

	if !found {
		return "", false
	}

	resolved := entry.Default

	if instance != "" {
		if override, exists := entry.Instances[instance]; exists {
			resolved = override
		}
	}

	if resolved == "" {
		return "", false
	}

	if !strings.HasPrefix(resolved, "/") && containerMap.Host.Root != "" {
		resolved = path.Join(containerMap.Host.Root, resolved)
	}

	return resolved, true
}

// InstancesOf lists the instance names a configuration expands to. A
// configuration without instances runs as a single unnamed one.
func InstancesOf(configuration *ContainerConfiguration) []string {
	if len(configuration.Instances) == 0 {
		return []string{""}
	}

	return configuration.Instances
}
